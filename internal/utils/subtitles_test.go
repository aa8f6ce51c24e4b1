package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("sub"), 0644))
}

func TestFindExistingSubtitleBareExtension(t *testing.T) {
	dir := t.TempDir()
	videoPath := filepath.Join(dir, "Movie.mkv")
	touch(t, filepath.Join(dir, "Movie.srt"))

	path, found := FindExistingSubtitle(videoPath)

	require.True(t, found)
	assert.Equal(t, filepath.Join(dir, "Movie.srt"), path)
}

func TestFindExistingSubtitleCombinedTags(t *testing.T) {
	// Only a quality+language tagged sibling exists; it must still be found
	dir := t.TempDir()
	videoPath := filepath.Join(dir, "Movie.mkv")
	touch(t, filepath.Join(dir, "Movie.1080p.es.srt"))

	path, found := FindExistingSubtitle(videoPath)

	require.True(t, found)
	assert.Equal(t, filepath.Join(dir, "Movie.1080p.es.srt"), path)
}

func TestFindExistingSubtitlePriorityOrder(t *testing.T) {
	// Bare extensions outrank language-tagged names
	dir := t.TempDir()
	videoPath := filepath.Join(dir, "Movie.mkv")
	touch(t, filepath.Join(dir, "Movie.es.srt"))
	touch(t, filepath.Join(dir, "Movie.sub"))

	path, found := FindExistingSubtitle(videoPath)

	require.True(t, found)
	assert.Equal(t, filepath.Join(dir, "Movie.sub"), path)
}

func TestFindExistingSubtitleNone(t *testing.T) {
	dir := t.TempDir()
	videoPath := filepath.Join(dir, "Movie.mkv")
	touch(t, filepath.Join(dir, "Other.srt"))

	path, found := FindExistingSubtitle(videoPath)

	assert.False(t, found)
	assert.Empty(t, path)
}

func TestSubtitleCandidatesOrder(t *testing.T) {
	candidates := subtitleCandidates("Movie")

	// 5 bare + 3 language + 4 quality + 12 combined
	require.Len(t, candidates, 24)
	assert.Equal(t, "Movie.srt", candidates[0])
	assert.Equal(t, "Movie.vtt", candidates[4])
	assert.Equal(t, "Movie.es.srt", candidates[5])
	assert.Equal(t, "Movie.720p.srt", candidates[8])
	assert.Equal(t, "Movie.720p.es.srt", candidates[12])
	assert.Equal(t, "Movie.BluRay.spanish.srt", candidates[23])
}
