package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event types for the notification stream
const (
	EventPostPublished = "post_published"
)

// Stream names
const (
	StreamNotifications = "stream:notifications"
)

// Consumer group name for notification workers
const (
	ConsumerGroupNotifications = "notification_workers"
)

// Event represents an event published to the notification stream.
type Event struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"` // Unix timestamp when event occurred

	// Post published event
	PostID   uuid.UUID `json:"post_id,omitempty"`
	Slug     string    `json:"slug,omitempty"`
	Title    string    `json:"title,omitempty"`
	AuthorID uuid.UUID `json:"author_id,omitempty"`
}

// NewPostPublishedEvent creates an event for a freshly published post.
// Workers fan out NEW_POST notifications to subscribed users.
func NewPostPublishedEvent(postID uuid.UUID, slug, title string, authorID uuid.UUID) Event {
	return Event{
		Type:      EventPostPublished,
		Timestamp: time.Now().Unix(),
		PostID:    postID,
		Slug:      slug,
		Title:     title,
		AuthorID:  authorID,
	}
}

// ToMap converts the event to a map for Redis XADD.
// Redis Streams store field-value pairs, so we serialize to JSON in a "data" field.
func (e Event) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return map[string]interface{}{
		"type": e.Type,
		"data": string(data),
	}, nil
}

// ParseEvent parses an Event from Redis stream message values.
func ParseEvent(values map[string]interface{}) (Event, error) {
	data, ok := values["data"].(string)
	if !ok {
		return Event{}, fmt.Errorf("missing or invalid 'data' field")
	}

	var event Event
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return Event{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return event, nil
}
