package listing

import (
	"context"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"github.com/dewey/feed-directory/cache"
	"github.com/dewey/feed-directory/directory"
	"github.com/dewey/feed-directory/feed"
)

// ErrUnknownEntry is returned for ids that are not part of the loaded directory
var ErrUnknownEntry = errors.New("unknown feed entry")

// Service is an interface for the feed directory listing
type Service interface {
	Snapshot() directory.Snapshot
	Search(query string) ([]directory.Entry, error)
	Preview(ctx context.Context, id string) (*feed.Preview, error)
	Reload(ctx context.Context) error
}

type purger interface {
	Purge()
}

type service struct {
	l            log.Logger
	d            *directory.Directory
	fr           feed.Repository
	cr           cache.Repository
	previewItems int
}

// NewService initializes a new feed directory service
func NewService(l log.Logger, d *directory.Directory, fr feed.Repository, cr cache.Repository, previewItems int) *service {
	return &service{
		l:            l,
		d:            d,
		fr:           fr,
		cr:           cr,
		previewItems: previewItems,
	}
}

func (s *service) Snapshot() directory.Snapshot {
	return s.d.Snapshot()
}

func (s *service) Search(query string) ([]directory.Entry, error) {
	return s.d.Search(query)
}

// Reload loads the directory again and drops cached previews
func (s *service) Reload(ctx context.Context) error {
	if err := s.d.Load(ctx); err != nil {
		return err
	}
	if p, ok := s.cr.(purger); ok {
		p.Purge()
	}
	return nil
}

// Preview returns the latest items of an entry's feed, served from cache when possible
func (s *service) Preview(ctx context.Context, id string) (*feed.Preview, error) {
	e, ok := s.d.Entry(id)
	if !ok {
		return nil, ErrUnknownEntry
	}

	cached, exists, err := s.cr.Get(id)
	if err != nil {
		level.Error(s.l).Log("msg", "reading preview cache", "id", id, "err", err)
	}
	if exists {
		return cached.Preview, nil
	}

	p, err := s.fr.Latest(ctx, e.FeedURL, s.previewItems)
	if err != nil {
		return nil, err
	}
	if err := s.cr.Set(cache.Entry{Key: id, Preview: p}); err != nil {
		level.Error(s.l).Log("msg", "writing preview cache", "id", id, "err", err)
	}
	return p, nil
}
