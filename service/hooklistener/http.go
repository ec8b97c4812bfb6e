package hooklistener

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
)

// NewHandler initializes a new reload hook handler
func NewHandler(s service) *chi.Mux {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Post("/{token}", webHookHandler(s))
	})

	return r
}

func webHookHandler(s service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Checking if the token matches the configured one
		valid, err := s.ValidToken(chi.URLParam(r, "token"))
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			level.Error(s.l).Log("err", err)
			return
		}
		if !valid {
			level.Info(s.l).Log("msg", "received invalid token on webhook endpoint")
			w.WriteHeader(http.StatusForbidden)
			return
		}

		var payload GitlabWebhookPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && err != io.EOF {
			// Not every sender posts json, those reload unconditionally
			level.Debug(s.l).Log("msg", "hook body is not a gitlab payload", "err", err)
			payload = GitlabWebhookPayload{}
		}
		if !s.shouldReload(payload) {
			level.Info(s.l).Log("msg", "gitlab hook not actionable, skipping reload", "ref", payload.ObjectAttributes.Ref, "status", payload.ObjectAttributes.Status)
			w.WriteHeader(http.StatusOK)
			return
		}

		level.Info(s.l).Log("msg", "received valid token on webhook endpoint, reloading feed directory")
		if err := s.reload(r.Context()); err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			level.Error(s.l).Log("err", errors.Wrap(err, "reloading feed directory"))
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}
}
