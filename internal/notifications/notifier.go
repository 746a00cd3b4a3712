// Package notifications publishes post lifecycle events to Redis.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"postboard/internal/observability"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// PostEventsChannel is the Redis channel post events are published on.
const PostEventsChannel = "posts:events"

// Post event types.
const (
	EventPostCreated = "post.created"
	EventPostUpdated = "post.updated"
	EventPostDeleted = "post.deleted"
)

// PostEvent is the JSON payload published for every successful mutation.
type PostEvent struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	PostID     uint      `json:"post_id"`
	Status     string    `json:"status,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Notifier publishes post events into Redis.
type Notifier struct {
	rdb *redis.Client
	now func() time.Time
}

// NewNotifier creates a Notifier. A nil client turns every publish into a no-op.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb, now: time.Now}
}

// Enabled reports whether events are actually delivered.
func (n *Notifier) Enabled() bool {
	return n != nil && n.rdb != nil
}

// PublishPostEvent publishes eventType for postID. status may be empty for deletes.
func (n *Notifier) PublishPostEvent(ctx context.Context, eventType string, postID uint, status string) error {
	if !n.Enabled() {
		observability.EventPublishTotal.WithLabelValues(eventType, "skipped").Inc()
		return nil
	}

	payload, err := json.Marshal(PostEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		PostID:     postID,
		Status:     status,
		OccurredAt: n.now().UTC(),
	})
	if err != nil {
		observability.EventPublishTotal.WithLabelValues(eventType, "error").Inc()
		return fmt.Errorf("marshal post event: %w", err)
	}

	if err := n.rdb.Publish(ctx, PostEventsChannel, string(payload)).Err(); err != nil {
		observability.EventPublishTotal.WithLabelValues(eventType, "error").Inc()
		return fmt.Errorf("publish %s: %w", eventType, err)
	}
	observability.EventPublishTotal.WithLabelValues(eventType, "published").Inc()
	return nil
}
