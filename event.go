package fsmkit

// Event is the immutable trigger pushed into an interpreter. Payload carries
// free-form data for guards and actions; the engine never inspects it.
//
// Events are value types. Consumers must not mutate a delivered Event.
type Event struct {
	Type    EventType
	Payload any
}

// NewEvent creates an Event.
func NewEvent(eventType EventType, payload any) Event {
	return Event{Type: eventType, Payload: payload}
}
