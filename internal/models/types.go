package models

// ContentType classifies a video as a standalone movie or a series episode
type ContentType string

const (
	ContentTypeMovie  ContentType = "movie"
	ContentTypeTVShow ContentType = "tvshow"
)

// Status represents the current subtitle-acquisition state of a video
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// ScanResult aggregates the counters of a directory scan
type ScanResult struct {
	Found          int `json:"found"`
	Added          int `json:"added"`
	WithSubtitles  int `json:"with_subtitles"`
	SkippedSpanish int `json:"skipped_spanish"`
}
