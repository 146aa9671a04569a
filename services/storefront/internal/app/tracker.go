package app

import (
	"context"
	"fmt"
	"log/slog"

	"onlinemall/internal/ratelimit"
	"onlinemall/pkg/domain"
	"onlinemall/services/storefront/internal/state"
)

type behaviorTracker interface {
	TrackBehavior(ctx context.Context, productID int64, eventType domain.EventType) error
}

// Tracker records user behavior events for recommendations. Tracking is
// best-effort: failures are logged and never reach the user.
type Tracker struct {
	api     behaviorTracker
	session *state.Session
	limiter ratelimit.Limiter
	logger  *slog.Logger
}

func NewTracker(api behaviorTracker, session *state.Session, limiter ratelimit.Limiter, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{api: api, session: session, limiter: limiter, logger: logger}
}

// Track sends one event. Anonymous sessions are not tracked. It reports
// whether the event was sent.
func (t *Tracker) Track(ctx context.Context, productID int64, eventType domain.EventType) bool {
	if t == nil || t.api == nil || t.session == nil || !t.session.IsLoggedIn() {
		return false
	}
	if t.limiter != nil {
		user, _ := t.session.UserInfo()
		key := fmt.Sprintf("%d:%d:%s", user.ID, productID, eventType)
		if !t.limiter.Allow(ctx, key) {
			t.logger.Debug("behavior tracking throttled", "product_id", productID, "event_type", eventType)
			return false
		}
	}
	if err := t.api.TrackBehavior(ctx, productID, eventType); err != nil {
		t.logger.Warn("behavior tracking failed", "product_id", productID, "event_type", eventType, "err", err)
		return false
	}
	return true
}
