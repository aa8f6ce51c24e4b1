package models

import "time"

// Video represents a tracked video file and its subtitle state
type Video struct {
	ID       uint64 `json:"id" boltholdKey:"ID"`
	FilePath string `json:"file_path" boltholdIndex:"FilePath"`
	FileName string `json:"file_name"`

	// Detected audio language (2-letter code), empty when undetected
	Language string `json:"language,omitempty"`

	ContentType ContentType `json:"content_type"`

	// TV show specific fields, nil for movies
	Season  *int `json:"season,omitempty"`
	Episode *int `json:"episode,omitempty"`

	Status       Status `json:"status" boltholdIndex:"Status"`
	SubtitlePath string `json:"subtitle_path,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
