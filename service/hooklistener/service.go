package hooklistener

import (
	"context"
	"crypto/subtle"
	"time"

	"github.com/go-kit/log"
)

// Reloader reloads the feed directory from its source
type Reloader interface {
	Reload(ctx context.Context) error
}

// DefaultReloadTimeout bounds a reload when no timeout is configured
const DefaultReloadTimeout = 30 * time.Second

type service struct {
	l             log.Logger
	rl            Reloader
	hookToken     string
	ref           string
	reloadTimeout time.Duration
}

// NewService initializes a new hook listener service. An empty hook token disables the hook.
func NewService(l log.Logger, rl Reloader, hookToken string, ref string, reloadTimeout time.Duration) *service {
	if reloadTimeout <= 0 {
		reloadTimeout = DefaultReloadTimeout
	}
	return &service{
		l:             l,
		rl:            rl,
		hookToken:     hookToken,
		ref:           ref,
		reloadTimeout: reloadTimeout,
	}
}

// ValidToken checks if the given token is a valid token. Only we can trigger logic via the received webhook.
func (s *service) ValidToken(token string) (bool, error) {
	if token == "" || s.hookToken == "" {
		return false, nil
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.hookToken)) == 1, nil
}

// reload runs the reload detached from ctx's cancellation, a sender hanging up must not
// leave the directory in the error state
func (s *service) reload(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.reloadTimeout)
	defer cancel()
	return s.rl.Reload(ctx)
}

// shouldReload decides based on the optional GitLab payload if a reload is warranted
func (s *service) shouldReload(p GitlabWebhookPayload) bool {
	if !p.IsGitlab() {
		return true
	}
	return p.IsActionable(s.ref)
}
