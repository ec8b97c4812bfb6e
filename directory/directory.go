package directory

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/samber/lo"
)

// Status is the state of the directory's view
type Status string

const (
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusError   Status = "error"
)

// Snapshot is an immutable view of the directory at one point in time
type Snapshot struct {
	Status   Status
	Err      error
	Entries  []Entry
	LoadedAt time.Time
	Source   string
}

// Message returns the human readable error of a failed load, empty otherwise
func (s Snapshot) Message() string {
	if s.Err == nil {
		return ""
	}
	return s.Err.Error()
}

// Directory holds the feed entries loaded from a Source
type Directory struct {
	l    log.Logger
	src  Source
	opts LinkOptions

	// loadMu serializes loads, mu guards the published snapshot
	loadMu sync.Mutex
	mu     sync.RWMutex
	snap   Snapshot
	byID   map[string]Entry
}

// New initializes a directory in the loading state. Nothing is fetched until Load is called.
func New(l log.Logger, src Source, opts LinkOptions) *Directory {
	return &Directory{
		l:    l,
		src:  src,
		opts: opts.withDefaults(),
		snap: Snapshot{Status: StatusLoading, Source: src.String()},
	}
}

// Load fetches and parses the csv once and publishes the result. On failure the error is
// published and all entries are dropped. There is no retry.
func (d *Directory) Load(ctx context.Context) error {
	d.loadMu.Lock()
	defer d.loadMu.Unlock()

	start := time.Now()
	b, err := d.src.Fetch(ctx)
	if err != nil {
		return d.fail(&Error{Kind: KindLoad, Err: err})
	}
	entries, dropped, err := ParseStats(bytes.NewReader(b), d.opts)
	if err != nil {
		return d.fail(&Error{Kind: KindParse, Err: err})
	}

	byID := lo.SliceToMap(entries, func(e Entry) (string, Entry) {
		return e.ID, e
	})

	d.mu.Lock()
	d.snap = Snapshot{
		Status:   StatusReady,
		Entries:  entries,
		LoadedAt: time.Now(),
		Source:   d.src.String(),
	}
	d.byID = byID
	d.mu.Unlock()

	level.Info(d.l).Log("msg", "feed directory loaded", "source", d.src.String(), "entries", len(entries), "dropped", dropped, "took", time.Since(start))
	return nil
}

func (d *Directory) fail(err *Error) error {
	d.mu.Lock()
	d.snap = Snapshot{
		Status:   StatusError,
		Err:      err,
		LoadedAt: time.Now(),
		Source:   d.src.String(),
	}
	d.byID = nil
	d.mu.Unlock()

	level.Error(d.l).Log("msg", "feed directory load failed", "source", d.src.String(), "kind", err.Kind, "err", err.Err)
	return err
}

// Snapshot returns the currently published state
func (d *Directory) Snapshot() Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.snap
}

// Search returns the published entries whose title contains query
func (d *Directory) Search(query string) ([]Entry, error) {
	snap := d.Snapshot()
	switch snap.Status {
	case StatusLoading:
		return nil, ErrNotReady
	case StatusError:
		return nil, snap.Err
	}
	return Filter(snap.Entries, query), nil
}

// Entry looks up a published entry by its id
func (d *Directory) Entry(id string) (Entry, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	e, ok := d.byID[id]
	return e, ok
}
