package ffprobe

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Lines look like "0|spa", one per audio stream.
var trackLineRegex = regexp.MustCompile(`^(\d+)\|([a-zA-Z]+)$`)

// Track is one audio stream with its language tag
type Track struct {
	Index    int
	Language string // lower-cased tag as reported by the tool, e.g. "spa"
}

// Result holds the parsed output of a probe run
type Result struct {
	Tracks []Track
	Raw    []string
}

// Primary returns the language code of the first tagged track, truncated
// to its 2-letter form. Empty when no language was detected.
func (r *Result) Primary() string {
	if len(r.Tracks) == 0 {
		return ""
	}

	language := r.Tracks[0].Language
	if len(language) > 2 {
		language = language[:2]
	}
	return language
}

// HasSpanish reports whether any audio track is tagged Spanish
func (r *Result) HasSpanish() bool {
	for _, track := range r.Tracks {
		if track.Language == "spa" || track.Language == "es" {
			return true
		}
	}
	return false
}

// Prober invokes ffprobe to read audio-stream language tags
type Prober struct {
	binary  string
	timeout time.Duration
	logger  *logrus.Logger
}

// NewProber creates a new prober. binary must be on PATH or an absolute path.
func NewProber(binary string, timeout time.Duration, logger *logrus.Logger) *Prober {
	return &Prober{
		binary:  binary,
		timeout: timeout,
		logger:  logger,
	}
}

// Detect runs ffprobe against the file and parses the per-stream language
// tags. Tool failures return an error; callers treat that as "no language
// detected" rather than a fatal condition.
func (p *Prober) Detect(ctx context.Context, filePath string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	args := []string{
		filePath,
		"-show_entries", "stream=index:stream_tags=language",
		"-select_streams", "a",
		"-of", "compact=p=0:nk=1",
	}

	p.logger.WithFields(logrus.Fields{
		"binary": p.binary,
		"file":   filePath,
	}).Debug("Running ffprobe")

	cmd := exec.CommandContext(ctx, p.binary, args...)
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed for %s: %w", filePath, err)
	}

	result := parseOutput(string(output))

	p.logger.WithFields(logrus.Fields{
		"file":     filePath,
		"tracks":   len(result.Tracks),
		"language": result.Primary(),
	}).Debug("ffprobe completed")

	return result, nil
}

// parseOutput extracts "index|language" lines. Tracks tagged "und" carry
// no signal and are dropped.
func parseOutput(output string) *Result {
	result := &Result{}

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		result.Raw = append(result.Raw, line)

		matches := trackLineRegex.FindStringSubmatch(line)
		if matches == nil {
			continue
		}

		language := strings.ToLower(matches[2])
		if language == "und" {
			continue
		}

		index, _ := strconv.Atoi(matches[1])
		result.Tracks = append(result.Tracks, Track{
			Index:    index,
			Language: language,
		})
	}

	return result
}
