package models

import (
	"fmt"
	"time"

	"github.com/timshannon/bolthold"
	"go.etcd.io/bbolt"
)

// Database wraps the bolthold store
type Database struct {
	store *bolthold.Store
}

// NewDatabase creates a new database connection
func NewDatabase(path string) (*Database, error) {
	store, err := bolthold.Open(path, 0600, &bolthold.Options{
		Options: &bbolt.Options{
			Timeout: 1 * time.Second,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Database{store: store}, nil
}

// Close closes the database connection
func (db *Database) Close() error {
	return db.store.Close()
}

// CreateVideo creates a new video record
func (db *Database) CreateVideo(video *Video) error {
	video.CreatedAt = time.Now()
	video.UpdatedAt = time.Now()
	return db.store.Insert(bolthold.NextSequence(), video)
}

// UpdateVideo updates an existing video record
func (db *Database) UpdateVideo(video *Video) error {
	video.UpdatedAt = time.Now()
	return db.store.Update(video.ID, video)
}

// GetVideoByID retrieves a video record by ID
func (db *Database) GetVideoByID(id uint64) (*Video, error) {
	var video Video
	err := db.store.Get(id, &video)
	if err != nil {
		return nil, err
	}
	return &video, nil
}

// GetVideoByPath retrieves a video record by its file path.
// Returns bolthold.ErrNotFound when the path is untracked.
func (db *Database) GetVideoByPath(path string) (*Video, error) {
	var video Video
	err := db.store.FindOne(&video, bolthold.Where("FilePath").Eq(path))
	if err != nil {
		return nil, err
	}
	return &video, nil
}

// GetPendingVideos retrieves all videos with pending status
func (db *Database) GetPendingVideos() ([]*Video, error) {
	var videos []*Video
	err := db.store.Find(&videos, bolthold.Where("Status").Eq(StatusPending))
	return videos, err
}

// GetAllVideos retrieves all video records
func (db *Database) GetAllVideos() ([]*Video, error) {
	var videos []*Video
	err := db.store.Find(&videos, nil)
	return videos, err
}

// ListVideos retrieves one page of videos sorted by the given record field.
// sortField is a Go struct field name (FileName, Language, Status, CreatedAt).
// Returns the page, the total record count and an error.
func (db *Database) ListVideos(sortField string, descending bool, page, pageSize int) ([]*Video, int, error) {
	if page < 1 {
		page = 1
	}

	total, err := db.store.Count(&Video{}, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count videos: %w", err)
	}

	// IDs are assigned from NextSequence and start at 1, so this
	// matches every record while giving the query a sortable shape.
	query := bolthold.Where("ID").Gt(uint64(0)).
		SortBy(sortField).
		Skip((page - 1) * pageSize).
		Limit(pageSize)
	if descending {
		query = query.Reverse()
	}

	var videos []*Video
	if err := db.store.Find(&videos, query); err != nil {
		return nil, 0, err
	}

	return videos, total, nil
}
