package feed

import (
	"context"
	"time"
)

// Repository is an interface for a RSS Feed fetcher
type Repository interface {
	Latest(ctx context.Context, feedURL string, n int) (*Preview, error)
}

// Preview is a short summary of a feed and its most recent items
type Preview struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Link        string    `json:"link,omitempty"`
	FeedType    string    `json:"feed_type,omitempty"`
	Items       []Item    `json:"items"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// Item is a single entry of a previewed feed
type Item struct {
	Title     string     `json:"title"`
	Link      string     `json:"link,omitempty"`
	Author    string     `json:"author,omitempty"`
	Published *time.Time `json:"published,omitempty"`
}
