package cache

import (
	"time"

	"github.com/dewey/feed-directory/feed"
)

// Repository is an interface for the preview cache
type Repository interface {
	Get(key string) (*Entry, bool, error)
	Set(entry Entry) error
}

// Entry is a struct for a cache entry
type Entry struct {
	Key      string
	Preview  *feed.Preview
	StoredAt time.Time
}
