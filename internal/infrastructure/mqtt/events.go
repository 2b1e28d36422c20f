package mqtt

import (
	"strings"
	"time"

	"github.com/nerrad567/datacollector/internal/person"
)

// JSONPublisher is the part of Client that EventPublisher needs.
type JSONPublisher interface {
	PublishJSON(topic string, v any) error
}

// EventMessage is the broker payload for a person change. It names the
// record but carries none of its fields; subscribers fetch the record
// through the API if they are entitled to it.
type EventMessage struct {
	Type      person.EventType `json:"type"`
	ID        int64            `json:"id"`
	Timestamp time.Time        `json:"timestamp"`
}

// EventPublisher forwards committed person events to the broker as
// {prefix}/people/{created|updated|deleted}.
//
// It implements person.Notifier. Publish failures are logged and dropped;
// the database write has already succeeded.
type EventPublisher struct {
	pub    JSONPublisher
	topics Topics
	logger Logger
}

var _ person.Notifier = (*EventPublisher)(nil)

// NewEventPublisher creates a notifier publishing through pub.
// logger may be nil.
func NewEventPublisher(pub JSONPublisher, topics Topics, logger Logger) *EventPublisher {
	return &EventPublisher{pub: pub, topics: topics, logger: logger}
}

// Notify publishes e.
func (p *EventPublisher) Notify(e person.Event) {
	topic := p.topics.PeopleEvent(EventAction(e.Type))
	msg := EventMessage{Type: e.Type, ID: e.ID, Timestamp: e.Timestamp}
	if err := p.pub.PublishJSON(topic, msg); err != nil && p.logger != nil {
		p.logger.Warn("publishing person event failed", "topic", topic, "id", e.ID, "error", err)
	}
}

// EventAction maps an event type to its topic suffix, e.g.
// "person.created" to "created".
func EventAction(t person.EventType) string {
	return strings.TrimPrefix(string(t), "person.")
}
