package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subtitlarr/internal/models"
)

func TestDetectContentTypeTVShow(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		season   int
		episode  int
	}{
		{"standard marker", "Show.S01E02.720p.mkv", 1, 2},
		{"lowercase marker", "show.s01e02.mkv", 1, 2},
		{"x separator", "Show.1x02.mkv", 1, 2},
		{"season episode words", "Show.Season.1.Episode.2.mkv", 1, 2},
		{"two digit numbers", "Show.S12E24.mkv", 12, 24},
		{"single digit marker", "Show.S1E2.mkv", 1, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := DetectContentType(tt.fileName)

			require.Equal(t, models.ContentTypeTVShow, info.Type)
			require.NotNil(t, info.Season)
			require.NotNil(t, info.Episode)
			assert.Equal(t, tt.season, *info.Season)
			assert.Equal(t, tt.episode, *info.Episode)
		})
	}
}

func TestDetectContentTypeMovie(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
	}{
		{"plain title", "Some.Movie.2019.1080p.mkv"},
		{"no markers", "movie.mp4"},
		{"season without episode", "Show.Season.1.mkv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := DetectContentType(tt.fileName)

			assert.Equal(t, models.ContentTypeMovie, info.Type)
			assert.Nil(t, info.Season)
			assert.Nil(t, info.Episode)
		})
	}
}

func TestDetectContentTypeFirstPatternWins(t *testing.T) {
	// Both S01E02 and 3x04 appear; the S##E## pattern is tried first
	info := DetectContentType("Show.S01E02.3x04.mkv")

	require.Equal(t, models.ContentTypeTVShow, info.Type)
	assert.Equal(t, 1, *info.Season)
	assert.Equal(t, 2, *info.Episode)
}
