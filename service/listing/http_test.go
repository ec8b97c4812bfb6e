package listing

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-kit/log"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dewey/feed-directory/cache"
	"github.com/dewey/feed-directory/directory"
	"github.com/dewey/feed-directory/feed"
)

type stubSource struct {
	body string
	err  error
}

func (s *stubSource) Fetch(context.Context) ([]byte, error) { return []byte(s.body), s.err }
func (s *stubSource) String() string                        { return "stub" }

type stubFeeds struct {
	calls int
	err   error
}

func (f *stubFeeds) Latest(_ context.Context, feedURL string, n int) (*feed.Preview, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &feed.Preview{Title: "preview of " + feedURL, Items: []feed.Item{{Title: "First"}}}, nil
}

const testCSV = "feed_title,feed_url,website_url\nACME News,http://a.com/rss,https://a.com\n,http://untitled.example/rss,\nOther <b>,http://b.com/rss,nope\n"

func newTestService(t *testing.T, src *stubSource, load bool) (*service, *stubFeeds) {
	t.Helper()
	l := log.NewNopLogger()
	d := directory.New(l, src, directory.DefaultLinkOptions())
	if load {
		d.Load(context.Background())
	}
	fr := &stubFeeds{}
	return NewService(l, d, fr, cache.NewRepository(l, 10, time.Minute), 5), fr
}

func get(t *testing.T, h http.Handler, target string) (*http.Response, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	resp := rec.Result()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(b)
}

func TestIndexHandler(t *testing.T) {
	s, _ := newTestService(t, &stubSource{body: testCSV}, true)
	h := NewHandler(log.NewNopLogger(), s)

	resp, body := get(t, h, "/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "ACME News")
	assert.Contains(t, body, directory.UntitledFeed)
	assert.Contains(t, body, "Other &lt;b&gt;", "titles are escaped")
	assert.Contains(t, body, "https://feedly.com/i/subscription/feed%2Fhttp%3A%2F%2Fa.com%2Frss")
	assert.Contains(t, body, `href="https://a.com"`)
	assert.Contains(t, body, "https://www.google.com/s2/favicons?domain=a.com&amp;sz=32")
	assert.Contains(t, body, `src="/static/placeholder.svg"`, "rows without a website host use the placeholder")
	assert.Equal(t, 3, strings.Count(body, "Subscribe</a>"))
	assert.Equal(t, 2, strings.Count(body, "Visit site</a>"), "only rows with a website get a visit link")

	assert.Equal(t, 0, strings.Count(body, "data-title=\"ACME News\" hidden"))
	assert.Contains(t, body, `id="no-match" hidden`)
}

func TestIndexHandlerQueryKeepsAllRows(t *testing.T) {
	s, _ := newTestService(t, &stubSource{body: testCSV}, true)
	h := NewHandler(log.NewNopLogger(), s)

	_, body := get(t, h, "/?q=acme")
	assert.Equal(t, 3, strings.Count(body, "data-title="), "every entry is in the page so clearing the search box shows them again")
	assert.Equal(t, 3, strings.Count(body, "Subscribe</a>"))
	assert.Contains(t, body, `data-title="ACME News">`)
	assert.Contains(t, body, `data-title="Other &lt;b&gt;" hidden>`)
	assert.Contains(t, body, `data-title="Untitled Feed" hidden>`)
	assert.Contains(t, body, `<span id="count">1</span> of 3 feeds`)
	assert.Contains(t, body, `id="no-match" hidden`)

	_, body = get(t, h, "/?q=zzz")
	assert.Equal(t, 3, strings.Count(body, "hidden>"))
	assert.Contains(t, body, `<span id="count">0</span> of 3 feeds`)
	assert.Contains(t, body, `<li class="meta" id="no-match">`)
}

func TestIndexHandlerError(t *testing.T) {
	s, _ := newTestService(t, &stubSource{err: errors.New("connection refused")}, true)
	resp, body := get(t, NewHandler(log.NewNopLogger(), s), "/")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, body, `role="alert"`)
	assert.Contains(t, body, "could not load feed directory: connection refused")
	assert.NotContains(t, body, "Subscribe</a>")
}

func TestIndexHandlerLoading(t *testing.T) {
	s, _ := newTestService(t, &stubSource{body: testCSV}, false)
	resp, body := get(t, NewHandler(log.NewNopLogger(), s), "/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Loading feeds")
}

func TestFeedsHandler(t *testing.T) {
	s, _ := newTestService(t, &stubSource{body: testCSV}, true)
	h := NewHandler(log.NewNopLogger(), s)

	tests := []struct {
		query      string
		wantTitles []string
	}{
		{"", []string{"ACME News", directory.UntitledFeed, "Other <b>"}},
		{"acme", []string{"ACME News"}},
		{"UNTITLED", []string{directory.UntitledFeed}},
		{"missing", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			resp, body := get(t, h, "/api/feeds?q="+tt.query)
			require.Equal(t, http.StatusOK, resp.StatusCode)

			var fr feedsResponse
			require.NoError(t, json.Unmarshal([]byte(body), &fr))
			titles := []string{}
			for _, e := range fr.Entries {
				titles = append(titles, e.FeedTitle)
				assert.NotEmpty(t, e.FeedURL)
			}
			assert.Equal(t, tt.wantTitles, titles)
			assert.Equal(t, len(tt.wantTitles), fr.Count)
		})
	}
}

func TestFeedsHandlerError(t *testing.T) {
	s, _ := newTestService(t, &stubSource{body: "feed_title,feed_url\n\"broken"}, true)
	resp, body := get(t, NewHandler(log.NewNopLogger(), s), "/api/feeds")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, body, "could not parse feed directory")
}

func TestPreviewHandler(t *testing.T) {
	s, fr := newTestService(t, &stubSource{body: testCSV}, true)
	h := NewHandler(log.NewNopLogger(), s)

	entries, err := s.Search("acme")
	require.NoError(t, err)
	require.Len(t, entries, 1)

	for i := 0; i < 2; i++ {
		resp, body := get(t, h, "/feeds/"+entries[0].ID+"/preview")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var p feed.Preview
		require.NoError(t, json.Unmarshal([]byte(body), &p))
		assert.Equal(t, "preview of http://a.com/rss", p.Title)
	}
	assert.Equal(t, 1, fr.calls, "second request is served from cache")

	resp, _ := get(t, h, "/feeds/unknown/preview")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	fr.err = errors.New("timeout")
	require.NoError(t, s.Reload(context.Background()))
	resp, _ = get(t, h, "/feeds/"+entries[0].ID+"/preview")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode, "reload purges cached previews")
}

func TestStaticAndHealth(t *testing.T) {
	s, _ := newTestService(t, &stubSource{body: testCSV}, true)
	h := NewHandler(log.NewNopLogger(), s)

	resp, body := get(t, h, PlaceholderPath)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "<svg")

	resp, body = get(t, h, "/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ready","entries":3}`, body)
}
