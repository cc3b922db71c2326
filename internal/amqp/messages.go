package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Kind names a domain event published after a successful mutation.
type Kind string

const (
	CategoryCreated    Kind = "category.created"
	TransactionCreated Kind = "transaction.created"
	TransactionUpdated Kind = "transaction.updated"
	TransactionDeleted Kind = "transaction.deleted"
	GoalCreated        Kind = "goal.created"
	GoalUpdated        Kind = "goal.updated"
	GoalDeleted        Kind = "goal.deleted"
	DemoSeeded         Kind = "demo.seeded"
)

var knownKinds = map[Kind]bool{
	CategoryCreated:    true,
	TransactionCreated: true,
	TransactionUpdated: true,
	TransactionDeleted: true,
	GoalCreated:        true,
	GoalUpdated:        true,
	GoalDeleted:        true,
	DemoSeeded:         true,
}

// Valid reports whether k is one of the published kinds.
func (k Kind) Valid() bool { return knownKinds[k] }

var (
	ErrMissingEventID = errors.New("event has no id")
	ErrUnknownKind    = errors.New("unknown event kind")
)

// Event is the message body. Subject scopes the event to the user or session
// whose feed should show it. The worker only needs the event itself; it never
// calls back into the budgeting API.
type Event struct {
	ID         string    `json:"id"`
	Kind       Kind      `json:"kind"`
	Subject    string    `json:"subject"`
	EntityID   int64     `json:"entity_id"`
	Summary    string    `json:"summary"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewEvent stamps a fresh id and the current time.
func NewEvent(kind Kind, subject string, entityID int64, summary string) *Event {
	return &Event{
		ID:         uuid.NewString(),
		Kind:       kind,
		Subject:    subject,
		EntityID:   entityID,
		Summary:    summary,
		OccurredAt: time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EventFromJSON decodes and checks an event body.
func EventFromJSON(data []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	if e.ID == "" {
		return nil, ErrMissingEventID
	}
	if !e.Kind.Valid() {
		return nil, ErrUnknownKind
	}
	return &e, nil
}
