package publishers

import "time"

// Event describes the outcome of one API call, published downstream.
type Event struct {
	Operation   string    `json:"operation"`
	ResourceID  string    `json:"resource_id,omitempty"`
	Environment string    `json:"environment"`
	Outcome     string    `json:"outcome"`
	StatusCode  int       `json:"status_code,omitempty"`
	Message     string    `json:"message,omitempty"`
	JournalID   string    `json:"journal_id,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// NewEvent constructs an Event stamped with the current time.
func NewEvent(operation, environment, outcome string) Event {
	return Event{
		Operation:   operation,
		Environment: environment,
		Outcome:     outcome,
		OccurredAt:  time.Now().UTC(),
	}
}

// attributes returns the routing attributes sent alongside the payload.
func (e Event) attributes() map[string]string {
	return map[string]string{
		"operation": e.Operation,
		"outcome":   e.Outcome,
	}
}
