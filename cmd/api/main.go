package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/peterbourgon/ff/v3"
	"golang.org/x/sync/errgroup"

	"github.com/dewey/feed-directory/cache"
	"github.com/dewey/feed-directory/directory"
	"github.com/dewey/feed-directory/feed"
	"github.com/dewey/feed-directory/service/listing"
)

type maxBytesHandler struct {
	h http.Handler
	n int64
}

func (h *maxBytesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.n)
	h.h.ServeHTTP(w, r)
}

func main() {
	fs := flag.NewFlagSet("feed-directory", flag.ExitOnError)
	var (
		environment       = fs.String("environment", "develop", "the environment we are running in")
		port              = fs.String("port", "8080", "the port feed-directory is running on")
		csvSource         = fs.String("csv-source", "feeds.csv", "path or http(s) url of the feed directory csv")
		subscribeTemplate = fs.String("subscribe-template", directory.DefaultSubscribeTemplate, "subscribe link template, {url} is replaced with the encoded feed url")
		faviconTemplate   = fs.String("favicon-template", directory.DefaultFaviconTemplate, "favicon service template, {host} is replaced with the website host")
		hookToken         = fs.String("hook-token", "", "the secret token for the reload hook, empty disables the hook")
		hookRef           = fs.String("hook-ref", "main", "the git ref whose successful gitlab pipelines trigger a reload")
		previewTTL        = fs.Duration("preview-ttl", 15*time.Minute, "how long feed previews are cached, 0 disables caching")
		previewItems      = fs.Int("preview-items", 5, "number of items shown in a feed preview")
		previewSize       = fs.Int("preview-size", cache.DefaultSize, "maximum number of feed previews kept in memory")
		fetchTimeout      = fs.Duration("fetch-timeout", 30*time.Second, "timeout for fetching the csv and feed previews")
		_                 = fs.String("config", "", "config file (optional)")
	)

	ff.Parse(fs, os.Args[1:],
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ff.PlainParser),
		ff.WithEnvVarPrefix("FD"),
	)

	// Heroku doesn't support EnvVarPrefixes so we have to overwrite this
	if os.Getenv("PORT") != "" {
		*port = os.Getenv("PORT")
	}

	l := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	switch strings.ToLower(*environment) {
	case "development":
		l = level.NewFilter(l, level.AllowInfo())
	case "prod":
		l = level.NewFilter(l, level.AllowError())
	}
	l = log.With(l, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src := directory.NewSource(*csvSource, *fetchTimeout)
	d := directory.New(l, src, directory.LinkOptions{
		SubscribeTemplate: *subscribeTemplate,
		FaviconTemplate:   *faviconTemplate,
	})
	fr := feed.NewRepository(l, *fetchTimeout)
	cr := cache.NewRepository(l, *previewSize, *previewTTL)
	listingService := listing.NewService(l, d, fr, cr, *previewItems)

	// Set up HTTP API
	r := newRouter(l, listingService, routerConfig{
		hookToken:     *hookToken,
		hookRef:       *hookRef,
		reloadTimeout: *fetchTimeout,
	})

	srv := &http.Server{
		Addr: fmt.Sprintf(":%s", *port),
		// Set max body size to 1MB, only hooks send bodies
		Handler:           &maxBytesHandler{h: r, n: 1024 * 1024},
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// The page renders a loading notice until this finishes, a failed load stays failed until the hook reloads
		d.Load(ctx)
		return nil
	})
	g.Go(func() error {
		level.Info(l).Log("msg", fmt.Sprintf("feed-directory is running on :%s", *port), "environment", *environment, "csv_source", src.String())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		level.Error(l).Log("err", err)
		os.Exit(1)
	}
	level.Info(l).Log("msg", "feed-directory stopped")
}
