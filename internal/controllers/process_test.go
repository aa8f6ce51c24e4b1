package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subtitlarr/internal/config"
	"subtitlarr/internal/models"
	"subtitlarr/internal/services/opensubtitles"
)

// newProviderServer starts a fake subtitle provider that always accepts
// logins. Endpoints beyond /login are registered per test on the mux.
func newProviderServer(t *testing.T) (*http.ServeMux, string) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"token": "test-token"})
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return mux, server.URL
}

func newProcessController(t *testing.T, db *models.Database, baseURL string) (*ProcessController, *[]time.Duration) {
	t.Helper()
	client, err := opensubtitles.NewClient(&config.Config{
		OpenSubtitlesURL:      baseURL,
		OpenSubtitlesAPIKey:   "test-key",
		OpenSubtitlesUsername: "user",
		OpenSubtitlesPassword: "pass",
	}, testLogger())
	require.NoError(t, err)

	controller := NewProcessController(db, client, testLogger())
	sleeps := &[]time.Duration{}
	controller.sleep = func(d time.Duration) { *sleeps = append(*sleeps, d) }
	return controller, sleeps
}

func createPendingVideo(t *testing.T, db *models.Database, dir, name string) *models.Video {
	t.Helper()
	video := &models.Video{
		FilePath:    writeVideoFile(t, dir, name),
		FileName:    name,
		ContentType: models.ContentTypeMovie,
		Status:      models.StatusPending,
	}
	require.NoError(t, db.CreateVideo(video))
	return video
}

func writeSearchResult(w http.ResponseWriter, fileID int) {
	fmt.Fprintf(w, `{"total_count":1,"data":[{"id":"1","type":"subtitle","attributes":{"language":"es","files":[{"file_id":%d,"file_name":"movie.es.srt"}]}}]}`, fileID)
}

func TestProcessDownloadsSubtitle(t *testing.T) {
	dir := t.TempDir()
	mux, baseURL := newProviderServer(t)

	mux.HandleFunc("/subtitles", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Movie.2019.mkv", r.URL.Query().Get("query"))
		assert.Equal(t, "spa", r.URL.Query().Get("languages"))
		writeSearchResult(w, 111)
	})
	mux.HandleFunc("/download", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"link":      baseURL + "/files/sub.srt",
			"file_name": "movie.es.srt",
			"remaining": 95,
		})
	})
	mux.HandleFunc("/files/sub.srt", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("1\n00:00:01,000 --> 00:00:02,000\nHola\n"))
	})

	db := newTestDB(t)
	video := createPendingVideo(t, db, dir, "Movie.2019.mkv")
	controller, sleeps := newProcessController(t, db, baseURL)

	outcome, err := controller.Process(context.Background(), video)

	require.NoError(t, err)
	assert.Equal(t, OutcomeDownloaded, outcome)
	assert.Empty(t, *sleeps)

	subtitlePath := filepath.Join(dir, "Movie.2019.srt")
	data, err := os.ReadFile(subtitlePath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Hola")

	stored, err := db.GetVideoByID(video.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, stored.Status)
	assert.Equal(t, subtitlePath, stored.SubtitlePath)
}

func TestProcessSendsEpisodeParams(t *testing.T) {
	dir := t.TempDir()
	mux, baseURL := newProviderServer(t)

	var gotSeason, gotEpisode string
	mux.HandleFunc("/subtitles", func(w http.ResponseWriter, r *http.Request) {
		gotSeason = r.URL.Query().Get("season")
		gotEpisode = r.URL.Query().Get("episode")
		fmt.Fprint(w, `{"total_count":0,"data":[]}`)
	})

	db := newTestDB(t)
	season, episode := 1, 2
	video := &models.Video{
		FilePath:    writeVideoFile(t, dir, "Show.S01E02.mkv"),
		FileName:    "Show.S01E02.mkv",
		ContentType: models.ContentTypeTVShow,
		Season:      &season,
		Episode:     &episode,
		Status:      models.StatusPending,
	}
	require.NoError(t, db.CreateVideo(video))
	controller, _ := newProcessController(t, db, baseURL)

	outcome, err := controller.Process(context.Background(), video)

	require.NoError(t, err)
	assert.Equal(t, OutcomeNotFound, outcome)
	assert.Equal(t, "1", gotSeason)
	assert.Equal(t, "2", gotEpisode)
}

func TestProcessRetriesAfterRateLimit(t *testing.T) {
	dir := t.TempDir()
	mux, baseURL := newProviderServer(t)

	mux.HandleFunc("/subtitles", func(w http.ResponseWriter, r *http.Request) {
		writeSearchResult(w, 111)
	})
	downloads := 0
	mux.HandleFunc("/download", func(w http.ResponseWriter, r *http.Request) {
		downloads++
		if downloads == 1 {
			w.Header().Set("Ratelimit-Reset", "2")
			w.WriteHeader(http.StatusNotAcceptable)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"link": baseURL + "/files/sub.srt"})
	})
	mux.HandleFunc("/files/sub.srt", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("sub"))
	})

	db := newTestDB(t)
	video := createPendingVideo(t, db, dir, "Movie.mkv")
	controller, sleeps := newProcessController(t, db, baseURL)

	outcome, err := controller.Process(context.Background(), video)

	require.NoError(t, err)
	assert.Equal(t, OutcomeDownloaded, outcome)
	assert.Equal(t, 2, downloads)
	require.Len(t, *sleeps, 1)
	assert.Equal(t, 3*time.Second, (*sleeps)[0])
}

func TestProcessGivesUpAfterRepeatedRateLimits(t *testing.T) {
	dir := t.TempDir()
	mux, baseURL := newProviderServer(t)

	mux.HandleFunc("/subtitles", func(w http.ResponseWriter, r *http.Request) {
		writeSearchResult(w, 111)
	})
	downloads := 0
	mux.HandleFunc("/download", func(w http.ResponseWriter, r *http.Request) {
		downloads++
		w.WriteHeader(http.StatusNotAcceptable)
	})

	db := newTestDB(t)
	video := createPendingVideo(t, db, dir, "Movie.mkv")
	controller, sleeps := newProcessController(t, db, baseURL)

	outcome, err := controller.Process(context.Background(), video)

	require.NoError(t, err)
	assert.Equal(t, OutcomeNotFound, outcome)
	assert.Equal(t, maxDownloadAttempts, downloads)
	assert.Len(t, *sleeps, maxDownloadAttempts-1)

	assert.NoFileExists(t, filepath.Join(dir, "Movie.srt"))

	stored, err := db.GetVideoByID(video.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, stored.Status)
}

func TestProcessNoResults(t *testing.T) {
	dir := t.TempDir()
	mux, baseURL := newProviderServer(t)

	mux.HandleFunc("/subtitles", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"total_count":0,"data":[]}`)
	})

	db := newTestDB(t)
	video := createPendingVideo(t, db, dir, "Movie.mkv")
	controller, _ := newProcessController(t, db, baseURL)

	outcome, err := controller.Process(context.Background(), video)

	require.NoError(t, err)
	assert.Equal(t, OutcomeNotFound, outcome)

	stored, err := db.GetVideoByID(video.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, stored.Status)
}

func TestProcessSearchErrorIsSoftFailure(t *testing.T) {
	dir := t.TempDir()
	mux, baseURL := newProviderServer(t)

	mux.HandleFunc("/subtitles", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	db := newTestDB(t)
	video := createPendingVideo(t, db, dir, "Movie.mkv")
	controller, _ := newProcessController(t, db, baseURL)

	outcome, err := controller.Process(context.Background(), video)

	require.NoError(t, err)
	assert.Equal(t, OutcomeNotFound, outcome)

	stored, err := db.GetVideoByID(video.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, stored.Status)
}

func TestProcessAuthFailure(t *testing.T) {
	dir := t.TempDir()
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	db := newTestDB(t)
	video := createPendingVideo(t, db, dir, "Movie.mkv")
	controller, _ := newProcessController(t, db, server.URL)

	outcome, err := controller.Process(context.Background(), video)

	require.Error(t, err)
	var authErr *opensubtitles.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, OutcomeNotFound, outcome)

	stored, err := db.GetVideoByID(video.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, stored.Status)
}

func TestProcessPicksUpLocalSubtitle(t *testing.T) {
	dir := t.TempDir()
	mux, baseURL := newProviderServer(t)

	searches := 0
	mux.HandleFunc("/subtitles", func(w http.ResponseWriter, r *http.Request) {
		searches++
		fmt.Fprint(w, `{"total_count":0,"data":[]}`)
	})

	db := newTestDB(t)
	video := createPendingVideo(t, db, dir, "Movie.mkv")
	subtitlePath := filepath.Join(dir, "Movie.es.srt")
	require.NoError(t, os.WriteFile(subtitlePath, []byte("sub"), 0644))
	controller, _ := newProcessController(t, db, baseURL)

	outcome, err := controller.Process(context.Background(), video)

	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyHadSubtitle, outcome)
	assert.Equal(t, 0, searches)

	stored, err := db.GetVideoByID(video.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, stored.Status)
	assert.Equal(t, "es", stored.Language)
	assert.Equal(t, subtitlePath, stored.SubtitlePath)
}

func TestProcessCompletedVideoIsUntouched(t *testing.T) {
	dir := t.TempDir()
	mux, baseURL := newProviderServer(t)

	requests := 0
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusInternalServerError)
	})

	db := newTestDB(t)
	subtitlePath := filepath.Join(dir, "Movie.srt")
	require.NoError(t, os.WriteFile(subtitlePath, []byte("sub"), 0644))

	video := &models.Video{
		FilePath:     writeVideoFile(t, dir, "Movie.mkv"),
		FileName:     "Movie.mkv",
		ContentType:  models.ContentTypeMovie,
		Status:       models.StatusCompleted,
		SubtitlePath: subtitlePath,
	}
	require.NoError(t, db.CreateVideo(video))
	controller, _ := newProcessController(t, db, baseURL)

	outcome, err := controller.Process(context.Background(), video)

	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyHadSubtitle, outcome)
	assert.Equal(t, 0, requests)

	stored, err := db.GetVideoByID(video.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, stored.Status)
	assert.Equal(t, subtitlePath, stored.SubtitlePath)
}

func TestProcessReprocessesCompletedWithMissingSubtitle(t *testing.T) {
	dir := t.TempDir()
	mux, baseURL := newProviderServer(t)

	mux.HandleFunc("/subtitles", func(w http.ResponseWriter, r *http.Request) {
		writeSearchResult(w, 111)
	})
	mux.HandleFunc("/download", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"link": baseURL + "/files/sub.srt"})
	})
	mux.HandleFunc("/files/sub.srt", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("sub"))
	})

	db := newTestDB(t)
	video := &models.Video{
		FilePath:     writeVideoFile(t, dir, "Movie.mkv"),
		FileName:     "Movie.mkv",
		ContentType:  models.ContentTypeMovie,
		Status:       models.StatusCompleted,
		SubtitlePath: filepath.Join(dir, "gone.srt"),
	}
	require.NoError(t, db.CreateVideo(video))
	controller, _ := newProcessController(t, db, baseURL)

	outcome, err := controller.Process(context.Background(), video)

	require.NoError(t, err)
	assert.Equal(t, OutcomeDownloaded, outcome)

	stored, err := db.GetVideoByID(video.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, stored.Status)
	assert.Equal(t, filepath.Join(dir, "Movie.srt"), stored.SubtitlePath)
}
