package utils

import (
	"os"
	"path/filepath"
	"strings"
)

var (
	subtitleExtensions = []string{".srt", ".sub", ".ssa", ".ass", ".vtt"}
	languageTags       = []string{"es", "spa", "spanish"}
	qualityTags        = []string{"720p", "1080p", "WEBRip", "BluRay"}
)

// subtitleCandidates builds the sibling file names that may hold a subtitle
// for the given video base name, in priority order: bare extensions first,
// then language-tagged, quality-tagged and finally quality+language names.
// Cheap generic names come first so the common case needs few stat calls.
func subtitleCandidates(videoName string) []string {
	var candidates []string

	for _, ext := range subtitleExtensions {
		candidates = append(candidates, videoName+ext)
	}
	for _, lang := range languageTags {
		candidates = append(candidates, videoName+"."+lang+".srt")
	}
	for _, quality := range qualityTags {
		candidates = append(candidates, videoName+"."+quality+".srt")
	}
	for _, quality := range qualityTags {
		for _, lang := range languageTags {
			candidates = append(candidates, videoName+"."+quality+"."+lang+".srt")
		}
	}

	return candidates
}

// FindExistingSubtitle looks for a subtitle file next to the video,
// returning the first candidate present on disk.
func FindExistingSubtitle(videoPath string) (string, bool) {
	videoDir := filepath.Dir(videoPath)
	videoName := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))

	for _, candidate := range subtitleCandidates(videoName) {
		subtitlePath := filepath.Join(videoDir, candidate)
		if _, err := os.Stat(subtitlePath); err == nil {
			return subtitlePath, true
		}
	}

	return "", false
}
