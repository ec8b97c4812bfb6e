package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/dewey/feed-directory/service/hooklistener"
	"github.com/dewey/feed-directory/service/listing"
)

type routerConfig struct {
	hookToken     string
	hookRef       string
	reloadTimeout time.Duration
}

// newRouter mounts the directory pages and, if a hook token is configured, the reload hook
func newRouter(l log.Logger, ls listing.Service, cfg routerConfig) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(logRequests(l))

	r.Mount("/", listing.NewHandler(l, ls))
	if cfg.hookToken != "" {
		listenerService := hooklistener.NewService(l, ls, cfg.hookToken, cfg.hookRef, cfg.reloadTimeout)
		r.Mount("/incoming-hooks", hooklistener.NewHandler(*listenerService))
	} else {
		level.Info(l).Log("msg", "no hook token configured, reload hook disabled")
	}
	return r
}

func logRequests(l log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			level.Debug(l).Log("msg", "request", "method", r.Method, "path", r.URL.Path, "status", ww.Status(), "bytes", ww.BytesWritten(), "took", time.Since(start))
		})
	}
}
