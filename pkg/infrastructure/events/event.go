package events

import (
	"time"
)

type Event interface {
	Type() string
	StreamID() string
	Data() interface{}
	Timestamp() time.Time
	Version() int
}

type EventHandler interface {
	Handle(event Event) error
	CanHandle(eventType string) bool
}

type EventStore interface {
	AppendEvent(streamID string, event Event) error
	ReadEvents(streamID string, fromVersion int) ([]Event, error)
	ReadAllEvents(fromPosition int) ([]Event, error)
	Subscribe(eventTypes []string, handler EventHandler) error
	Unsubscribe(handler EventHandler) error
}

type BaseEvent struct {
	EventType    string
	Stream       string
	EventData    interface{}
	EventTime    time.Time
	EventVersion int
}

func (e BaseEvent) Type() string {
	return e.EventType
}

func (e BaseEvent) StreamID() string {
	return e.Stream
}

func (e BaseEvent) Data() interface{} {
	return e.EventData
}

func (e BaseEvent) Timestamp() time.Time {
	return e.EventTime
}

func (e BaseEvent) Version() int {
	return e.EventVersion
}

func NewEvent(eventType, streamID string, data interface{}, at time.Time) Event {
	return BaseEvent{
		EventType:    eventType,
		Stream:       streamID,
		EventData:    data,
		EventTime:    at,
		EventVersion: 1,
	}
}

// Recorder buffers events raised inside a transaction. They are appended to
// the store only after the transaction commits.
type Recorder struct {
	pending []Event
}

// Record buffers one event
func (r *Recorder) Record(eventType, streamID string, data interface{}, at time.Time) {
	r.pending = append(r.pending, NewEvent(eventType, streamID, data, at))
}

// Events returns the buffered events in recording order
func (r *Recorder) Events() []Event {
	return r.pending
}

// Reset drops buffered events
func (r *Recorder) Reset() {
	r.pending = nil
}
