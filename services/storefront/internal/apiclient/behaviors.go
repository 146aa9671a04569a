package apiclient

import (
	"context"
	"net/http"

	"onlinemall/pkg/domain"
)

// timestampLayout matches JavaScript's Date.toISOString.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// TrackBehavior records a user event, stamped with the client clock in UTC.
func (c *Client) TrackBehavior(ctx context.Context, productID int64, eventType domain.EventType) error {
	payload := domain.BehaviorEvent{
		ProductID: productID,
		EventType: eventType,
		Timestamp: c.now().UTC().Format(timestampLayout),
	}
	return c.doJSON(ctx, http.MethodPost, "/behaviors/track", nil, payload, nil)
}
