package services

import (
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"
)

// Publisher delivers domain events to a message broker.
type Publisher interface {
	Publish(routingKey string, body []byte) error
}

// Routing keys of the published events.
const (
	EventUserRegistered = "user.registered"
	EventPostCreated    = "post.created"
	EventPostUpdated    = "post.updated"
	EventPostDeleted    = "post.deleted"
	EventCommentCreated = "comment.created"
	EventCommentUpdated = "comment.updated"
	EventCommentDeleted = "comment.deleted"
)

// Event is the JSON body of every published message.
type Event struct {
	Event  string    `json:"event"`
	ID     uint      `json:"id"`
	UserID uint      `json:"user_id,omitempty"`
	PostID uint      `json:"post_id,omitempty"`
	At     time.Time `json:"at"`
}

// publish sends e when a publisher is configured. Failures are logged and
// never fail the operation that produced the event.
func publish(log *logrus.Logger, pub Publisher, e Event) {
	if pub == nil {
		return
	}
	body, err := json.Marshal(e)
	if err != nil {
		log.WithError(err).WithField("event", e.Event).Warn("failed to marshal event")
		return
	}
	if err := pub.Publish(e.Event, body); err != nil {
		log.WithError(err).WithFields(logrus.Fields{"event": e.Event, "id": e.ID}).Warn("failed to publish event")
	}
}
