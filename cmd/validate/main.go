package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/peterbourgon/ff/v3"

	"github.com/dewey/feed-directory/directory"
)

// Checks a feed directory csv before it gets deployed. Exits non-zero if it can't be parsed.
func main() {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	var (
		csvSource    = fs.String("csv-source", "feeds.csv", "path or http(s) url of the feed directory csv")
		fetchTimeout = fs.Duration("fetch-timeout", 30*time.Second, "timeout for fetching the csv")
		verbose      = fs.Bool("verbose", false, "log every parsed entry")
	)
	ff.Parse(fs, os.Args[1:], ff.WithEnvVarPrefix("FD"))

	l := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	if *verbose {
		l = level.NewFilter(l, level.AllowDebug())
	} else {
		l = level.NewFilter(l, level.AllowInfo())
	}
	l = log.With(l, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)

	if fs.NArg() > 0 {
		*csvSource = fs.Arg(0)
	}
	os.Exit(run(context.Background(), l, directory.NewSource(*csvSource, *fetchTimeout)))
}

func run(ctx context.Context, l log.Logger, src directory.Source) int {
	b, err := src.Fetch(ctx)
	if err != nil {
		level.Error(l).Log("msg", "error fetching csv", "source", src.String(), "err", err)
		return 1
	}
	entries, dropped, err := directory.ParseStats(bytes.NewReader(b), directory.DefaultLinkOptions())
	if err != nil {
		level.Error(l).Log("msg", "error parsing csv", "source", src.String(), "err", err)
		return 1
	}

	seen := make(map[string]int, len(entries))
	for i, e := range entries {
		level.Debug(l).Log("msg", "entry", "id", e.ID, "title", e.FeedTitle, "feed_url", e.FeedURL, "website_url", e.WebsiteURL)
		if first, ok := seen[e.ID]; ok {
			level.Warn(l).Log("msg", "duplicate feed url", "feed_url", e.FeedURL, "entry", i+1, "first_entry", first+1)
			continue
		}
		seen[e.ID] = i
		if e.FeedTitle == directory.UntitledFeed {
			level.Warn(l).Log("msg", "entry without title", "feed_url", e.FeedURL)
		}
	}
	level.Info(l).Log("msg", fmt.Sprintf("%d entries, %d rows dropped without feed url", len(entries), dropped), "source", src.String())
	return 0
}
