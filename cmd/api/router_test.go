package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-kit/log"
	"github.com/stretchr/testify/assert"

	"github.com/dewey/feed-directory/directory"
	"github.com/dewey/feed-directory/feed"
)

type stubListing struct {
	reloads int
}

func (s *stubListing) Snapshot() directory.Snapshot {
	return directory.Snapshot{Status: directory.StatusReady, Entries: []directory.Entry{{ID: "a", FeedTitle: "ACME News", FeedURL: "http://a.com/rss"}}}
}

func (s *stubListing) Search(query string) ([]directory.Entry, error) {
	return directory.Filter(s.Snapshot().Entries, query), nil
}

func (s *stubListing) Preview(context.Context, string) (*feed.Preview, error) {
	return &feed.Preview{Title: "ACME News"}, nil
}

func (s *stubListing) Reload(context.Context) error {
	s.reloads++
	return nil
}

func TestNewRouter(t *testing.T) {
	tests := []struct {
		name           string
		hookToken      string
		wantHookStatus int
		wantReloads    int
	}{
		{"hook disabled without token", "", http.StatusNotFound, 0},
		{"hook mounted with token", "secret", http.StatusAccepted, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ls := &stubListing{}
			r := newRouter(log.NewNopLogger(), ls, routerConfig{hookToken: tt.hookToken, hookRef: "main", reloadTimeout: time.Second})

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/incoming-hooks/secret", nil))
			assert.Equal(t, tt.wantHookStatus, rec.Code)
			assert.Equal(t, tt.wantReloads, ls.reloads)

			rec = httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), "ACME News")

			rec = httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/feeds?q=acme", nil))
			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}
}
