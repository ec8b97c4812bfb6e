package directory

import (
	"context"
	"net/url"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

// Source is where the directory csv is fetched from
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
	String() string
}

// NewSource returns an HTTPSource for http(s) locations and a FileSource for everything else
func NewSource(location string, timeout time.Duration) Source {
	if u, err := url.Parse(location); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return NewHTTPSource(resty.New().SetTimeout(timeout), location)
	}
	return FileSource{Path: location}
}

// FileSource reads the csv from the local filesystem
type FileSource struct {
	Path string
}

func (s FileSource) String() string {
	return s.Path
}

// Fetch reads the whole file
func (s FileSource) Fetch(_ context.Context) ([]byte, error) {
	b, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", s.Path)
	}
	return b, nil
}

// HTTPSource issues a single GET for the csv
type HTTPSource struct {
	c   *resty.Client
	url string
}

// NewHTTPSource initializes a new source fetching location with the given client
func NewHTTPSource(c *resty.Client, location string) *HTTPSource {
	return &HTTPSource{
		c:   c,
		url: location,
	}
}

func (s *HTTPSource) String() string {
	return s.url
}

// Fetch returns the response body, non-2xx responses are errors
func (s *HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	resp, err := s.c.R().
		SetContext(ctx).
		SetHeader("Accept", "text/csv, text/plain;q=0.9, */*;q=0.5").
		Get(s.url)
	if err != nil {
		return nil, errors.Wrapf(err, "fetching %s", s.url)
	}
	if resp.IsError() {
		return nil, errors.Errorf("fetching %s: unexpected status code %d", s.url, resp.StatusCode())
	}
	return resp.Body(), nil
}
