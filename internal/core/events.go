package core

import (
	"time"

	"farmcore/pkg/domain"
)

// EventInput carries the caller-supplied parts of a new audit event.
type EventInput struct {
	ProductionType domain.ProductionType
	EntityType     domain.EntityKind
	EntityID       string
	EventType      domain.EventType
	Date           time.Time
	Payload        map[string]any
	Notes          string
	UserID         string
}

// NewEvent constructs an audit event. Payload and notes default when
// omitted; a zero date defaults to now. The caller appends the result to
// the draft's events inside the same transaction as the mutation it
// describes.
func NewEvent(now time.Time, in EventInput) domain.Event {
	payload := in.Payload
	if payload == nil {
		payload = map[string]any{}
	}
	date := in.Date
	if date.IsZero() {
		date = now
	}
	return domain.Event{
		ID:             newID("evt"),
		ProductionType: in.ProductionType,
		EntityType:     in.EntityType,
		EntityID:       in.EntityID,
		EventType:      in.EventType,
		Date:           date,
		Payload:        payload,
		Notes:          in.Notes,
		UserID:         in.UserID,
		CreatedAt:      now,
		UpdatedAt:      now,
		UpdatedBy:      in.UserID,
	}
}

// AmendEventNotes rewrites the notes of an existing event in the draft.
// Identity fields (entityId, eventType, date) are never touched; only
// notes, updatedAt and updatedBy change.
func AmendEventNotes(draft *domain.Document, eventID, notes, userID string, now time.Time) error {
	for i := range draft.Events {
		if draft.Events[i].ID == eventID {
			draft.Events[i].Notes = notes
			draft.Events[i].UpdatedAt = now
			draft.Events[i].UpdatedBy = userID
			return nil
		}
	}
	return domain.NotFoundError{Kind: domain.KindEvent, ID: eventID}
}

// eventIndex locates an event's position in the draft, -1 when absent.
func eventIndex(draft *domain.Document, eventID string) int {
	for i := range draft.Events {
		if draft.Events[i].ID == eventID {
			return i
		}
	}
	return -1
}
