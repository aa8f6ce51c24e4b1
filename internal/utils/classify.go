package utils

import (
	"regexp"
	"strconv"

	"subtitlarr/internal/models"
)

// ContentInfo is the result of classifying a video file name
type ContentInfo struct {
	Type    models.ContentType
	Season  *int
	Episode *int
}

// Episode naming conventions, tried in order. First match wins.
var tvPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)S(\d{1,2})E(\d{1,2})`),                  // S01E02
	regexp.MustCompile(`(?i)(\d{1,2})x(\d{1,2})`),                   // 1x02
	regexp.MustCompile(`(?i)Season\.(\d{1,2})\.Episode\.(\d{1,2})`), // Season.1.Episode.2
}

// DetectContentType infers whether a file name belongs to a movie or a
// TV episode. Anything without a recognizable episode marker is a movie.
func DetectContentType(fileName string) ContentInfo {
	for _, pattern := range tvPatterns {
		matches := pattern.FindStringSubmatch(fileName)
		if matches == nil {
			continue
		}

		season, _ := strconv.Atoi(matches[1])
		episode, _ := strconv.Atoi(matches[2])
		return ContentInfo{
			Type:    models.ContentTypeTVShow,
			Season:  &season,
			Episode: &episode,
		}
	}

	return ContentInfo{Type: models.ContentTypeMovie}
}
