package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadIgnoreListMissingFile(t *testing.T) {
	list, err := LoadIgnoreList(filepath.Join(t.TempDir(), "missing.txt"))

	require.NoError(t, err)
	ignored, _ := list.IsIgnored("Movie.Sample.mkv")
	assert.False(t, ignored)
}

func TestIgnoreListMatching(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ignore.txt")
	require.NoError(t, os.WriteFile(path, []byte("# junk\nsample\n\ntrailer\n"), 0644))

	list, err := LoadIgnoreList(path)
	require.NoError(t, err)

	ignored, term := list.IsIgnored("Movie.SAMPLE.mkv")
	assert.True(t, ignored)
	assert.Equal(t, "sample", term)

	ignored, _ = list.IsIgnored("Movie.2020.mkv")
	assert.False(t, ignored)
}
