package directory

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/pkg/errors"
)

const (
	columnFeedTitle  = "feed_title"
	columnFeedURL    = "feed_url"
	columnWebsiteURL = "website_url"
)

// Parse reads header-delimited csv and maps every row to an Entry. Rows without a feed url
// are dropped. A malformed document returns an error and no entries.
func Parse(r io.Reader, opts LinkOptions) ([]Entry, error) {
	entries, _, err := parse(r, opts)
	return entries, err
}

// ParseStats is like Parse but also returns the number of rows that were dropped
func ParseStats(r io.Reader, opts LinkOptions) ([]Entry, int, error) {
	return parse(r, opts)
}

func parse(r io.Reader, opts LinkOptions) ([]Entry, int, error) {
	opts = opts.withDefaults()

	cr := csv.NewReader(r)
	// Ragged rows are fine, missing cells get defaulted like missing columns
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, 0, errors.New("missing header row")
	}
	if err != nil {
		return nil, 0, errors.Wrap(err, "reading header row")
	}
	columns := columnIndex(header)

	var (
		entries []Entry
		dropped int
		row     int
	)
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, errors.Wrapf(err, "reading row %d", row+1)
		}
		row++

		e, ok := newEntry(record, columns, row, opts)
		if !ok {
			dropped++
			continue
		}
		entries = append(entries, e)
	}
	return entries, dropped, nil
}

// columnIndex maps the recognized column names to their position in the header
func columnIndex(header []string) map[string]int {
	m := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		switch name {
		case columnFeedTitle, columnFeedURL, columnWebsiteURL:
			// First occurrence wins on duplicate headers
			if _, ok := m[name]; !ok {
				m[name] = i
			}
		}
	}
	return m
}

func newEntry(record []string, columns map[string]int, row int, opts LinkOptions) (Entry, bool) {
	field := func(name string) string {
		i, ok := columns[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	feedURL := field(columnFeedURL)
	if feedURL == "" {
		return Entry{}, false
	}
	title := field(columnFeedTitle)
	if title == "" {
		title = UntitledFeed
	}
	website := field(columnWebsiteURL)
	favicon, _ := FaviconURL(opts.FaviconTemplate, website)

	return Entry{
		ID:           entryID(feedURL, row),
		FeedTitle:    title,
		FeedURL:      feedURL,
		WebsiteURL:   website,
		FaviconURL:   favicon,
		SubscribeURL: SubscribeURL(opts.SubscribeTemplate, feedURL),
	}, true
}
