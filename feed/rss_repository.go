package feed

import (
	"context"
	"net/http"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/mmcdole/gofeed"
	"github.com/pkg/errors"
)

type repository struct {
	l      log.Logger
	client *http.Client
}

// NewRepository initializes a new gofeed backed preview repository
func NewRepository(l log.Logger, timeout time.Duration) *repository {
	return &repository{
		l:      l,
		client: &http.Client{Timeout: timeout},
	}
}

// Latest fetches feedURL and returns at most n of its items, newest first as published by the feed
func (s *repository) Latest(ctx context.Context, feedURL string, n int) (*Preview, error) {
	// gofeed parsers keep state while parsing, so every request gets its own
	fp := gofeed.NewParser()
	fp.UserAgent = "feed-directory/1.0"
	fp.Client = s.client
	f, err := fp.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing feed %s", feedURL)
	}
	level.Debug(s.l).Log("msg", "fetched feed preview", "feed_url", feedURL, "items", len(f.Items))
	return newPreview(f, n), nil
}

func newPreview(f *gofeed.Feed, n int) *Preview {
	p := &Preview{
		Title:       f.Title,
		Description: f.Description,
		Link:        f.Link,
		FeedType:    f.FeedType,
		Items:       []Item{},
		FetchedAt:   time.Now().UTC(),
	}
	for _, item := range f.Items {
		if n > 0 && len(p.Items) >= n {
			break
		}
		it := Item{
			Title:     item.Title,
			Link:      item.Link,
			Published: item.PublishedParsed,
		}
		if item.Author != nil {
			it.Author = item.Author.Name
		}
		p.Items = append(p.Items, it)
	}
	return p
}
