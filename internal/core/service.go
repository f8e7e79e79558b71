package core

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"farmcore/pkg/domain"
)

// ErrNotOwner is returned when a settings operation is attempted by a
// non-owner active user.
var ErrNotOwner = errors.New("operation requires the owner role")

// Service exposes the business operations collaborators perform against the
// store. Every mutating method is exactly one transaction.
type Service struct {
	store *Store
}

// NewService constructs a service backed by the supplied store.
func NewService(store *Store) *Service {
	return &Service{store: store}
}

// Store returns the underlying document store.
func (s *Service) Store() *Store { return s.store }

// actor resolves the active user inside a draft. The document invariant
// keeps ActiveUserID pointing at an existing, active user; a miss here means
// the document was corrupted outside the store.
func actor(draft *domain.Document) (domain.User, error) {
	u, ok := draft.ActiveUser()
	if !ok || !u.Active {
		return domain.User{}, fmt.Errorf("active user %q missing or inactive", draft.ActiveUserID)
	}
	return u, nil
}

func requireOwner(draft *domain.Document) (domain.User, error) {
	u, err := actor(draft)
	if err != nil {
		return domain.User{}, err
	}
	if u.Role != domain.RoleOwner {
		return domain.User{}, ErrNotOwner
	}
	return u, nil
}

// AnimalInput carries the editable attributes of an animal and its sheep
// detail notes.
type AnimalInput struct {
	EarTag    string
	Sex       domain.Sex
	Status    domain.AnimalStatus
	BirthDate string
	Notes     string
}

// CreateAnimal records a new sheep: the animal, its sheep detail, and one
// "opprettet" event, all in the same transaction.
func (s *Service) CreateAnimal(ctx context.Context, in AnimalInput) (domain.Animal, error) {
	var created domain.Animal
	err := s.store.Transaction(ctx, func(draft *domain.Document) error {
		user, err := actor(draft)
		if err != nil {
			return err
		}
		now := s.store.now()
		animalID := newID("animal")
		detailID := newID("sheep")
		externalID := in.EarTag
		if externalID == "" {
			externalID = animalID
		}
		animal := domain.Animal{
			Base: domain.Base{
				ID:        animalID,
				Active:    true,
				CreatedAt: now,
				UpdatedAt: now,
				CreatedBy: user.ID,
				UpdatedBy: user.ID,
			},
			ProductionType: domain.ProductionSheep,
			ExternalID:     externalID,
			EarTag:         in.EarTag,
			Sex:            in.Sex,
			BirthDate:      in.BirthDate,
			Status:         in.Status,
		}
		draft.Animals[animalID] = animal
		draft.SheepDetails[detailID] = domain.SheepDetail{
			Base: domain.Base{
				ID:        detailID,
				Active:    true,
				CreatedAt: now,
				UpdatedAt: now,
				CreatedBy: user.ID,
				UpdatedBy: user.ID,
			},
			AnimalID: animalID,
			Notes:    in.Notes,
		}
		draft.Events = append(draft.Events, NewEvent(now, EventInput{
			ProductionType: domain.ProductionSheep,
			EntityType:     domain.KindAnimal,
			EntityID:       animalID,
			EventType:      domain.EventCreated,
			Payload: map[string]any{
				"earTag":    in.EarTag,
				"sex":       string(in.Sex),
				"status":    string(in.Status),
				"birthDate": in.BirthDate,
			},
			UserID: user.ID,
		}))
		created = animal
		return nil
	})
	return created, err
}

// UpdateAnimal rewrites an animal's editable attributes and its sheep
// detail notes, appending an "endret" event.
func (s *Service) UpdateAnimal(ctx context.Context, animalID string, in AnimalInput) (domain.Animal, error) {
	var updated domain.Animal
	err := s.store.Transaction(ctx, func(draft *domain.Document) error {
		user, err := actor(draft)
		if err != nil {
			return err
		}
		cur, ok := draft.Animals[animalID]
		if !ok || cur.Deleted() {
			return domain.NotFoundError{Kind: domain.KindAnimal, ID: animalID}
		}
		now := s.store.now()
		cur.EarTag = in.EarTag
		if in.EarTag != "" {
			cur.ExternalID = in.EarTag
		} else if cur.ExternalID == "" {
			cur.ExternalID = cur.ID
		}
		cur.Sex = in.Sex
		cur.Status = in.Status
		cur.BirthDate = in.BirthDate
		cur.UpdatedAt = now
		cur.UpdatedBy = user.ID
		draft.Animals[animalID] = cur

		for id, det := range draft.SheepDetails {
			if det.AnimalID == animalID && !det.Deleted() {
				det.Notes = in.Notes
				det.UpdatedAt = now
				det.UpdatedBy = user.ID
				draft.SheepDetails[id] = det
				break
			}
		}

		draft.Events = append(draft.Events, NewEvent(now, EventInput{
			ProductionType: domain.ProductionSheep,
			EntityType:     domain.KindAnimal,
			EntityID:       animalID,
			EventType:      domain.EventUpdated,
			Payload: map[string]any{
				"earTag":    in.EarTag,
				"sex":       string(in.Sex),
				"status":    string(in.Status),
				"birthDate": in.BirthDate,
			},
			UserID: user.ID,
		}))
		updated = cur
		return nil
	})
	return updated, err
}

// DeleteAnimal soft-deletes an animal: deletedAt and the trash marker are
// written together and an "slettet" event is appended.
func (s *Service) DeleteAnimal(ctx context.Context, animalID string) error {
	return s.store.Transaction(ctx, func(draft *domain.Document) error {
		user, err := actor(draft)
		if err != nil {
			return err
		}
		cur, ok := draft.Animals[animalID]
		if !ok || cur.Deleted() {
			return domain.NotFoundError{Kind: domain.KindAnimal, ID: animalID}
		}
		now := s.store.now()
		cur.DeletedAt = &now
		cur.UpdatedAt = now
		cur.UpdatedBy = user.ID
		draft.Animals[animalID] = cur
		draft.Trash.Animals = pushMarker(draft.Trash.Animals, animalID, now)
		draft.Events = append(draft.Events, NewEvent(now, EventInput{
			ProductionType: cur.ProductionType,
			EntityType:     domain.KindAnimal,
			EntityID:       animalID,
			EventType:      domain.EventDeleted,
			UserID:         user.ID,
		}))
		return nil
	})
}

// RestoreAnimal clears an animal's deletedAt and removes its trash marker in
// the same transaction, appending a "gjenopprettet" event.
func (s *Service) RestoreAnimal(ctx context.Context, animalID string) error {
	return s.store.Transaction(ctx, func(draft *domain.Document) error {
		user, err := actor(draft)
		if err != nil {
			return err
		}
		cur, ok := draft.Animals[animalID]
		if !ok || !cur.Deleted() {
			return domain.NotFoundError{Kind: domain.KindAnimal, ID: animalID}
		}
		now := s.store.now()
		cur.DeletedAt = nil
		cur.UpdatedAt = now
		cur.UpdatedBy = user.ID
		draft.Animals[animalID] = cur
		draft.Trash.Animals, _ = removeMarker(draft.Trash.Animals, animalID)
		draft.Events = append(draft.Events, NewEvent(now, EventInput{
			ProductionType: cur.ProductionType,
			EntityType:     domain.KindAnimal,
			EntityID:       animalID,
			EventType:      domain.EventRestored,
			UserID:         user.ID,
		}))
		return nil
	})
}

// ListAnimals returns live animals of one production type, most recently
// updated first.
func (s *Service) ListAnimals(productionType domain.ProductionType) []domain.Animal {
	doc := s.store.Get()
	out := make([]domain.Animal, 0, len(doc.Animals))
	for _, a := range doc.Animals {
		if !a.Deleted() && a.ProductionType == productionType {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out
}

// GetAnimal returns a live animal by id.
func (s *Service) GetAnimal(animalID string) (domain.Animal, bool) {
	a, ok := s.store.Get().Animals[animalID]
	if !ok || a.Deleted() {
		return domain.Animal{}, false
	}
	return a, true
}

// SheepDetailFor returns the live sheep detail of an animal.
func (s *Service) SheepDetailFor(animalID string) (domain.SheepDetail, bool) {
	for _, det := range s.store.Get().SheepDetails {
		if det.AnimalID == animalID && !det.Deleted() {
			return det, true
		}
	}
	return domain.SheepDetail{}, false
}

// AddEvent appends a domain event authored by the active user. The event's
// UserID always reflects the actor, regardless of the input.
func (s *Service) AddEvent(ctx context.Context, in EventInput) (domain.Event, error) {
	var added domain.Event
	err := s.store.Transaction(ctx, func(draft *domain.Document) error {
		user, err := actor(draft)
		if err != nil {
			return err
		}
		if in.EntityType == domain.KindAnimal {
			if a, ok := draft.Animals[in.EntityID]; !ok || a.Deleted() {
				return domain.NotFoundError{Kind: domain.KindAnimal, ID: in.EntityID}
			}
		}
		in.UserID = user.ID
		added = NewEvent(s.store.now(), in)
		draft.Events = append(draft.Events, added)
		return nil
	})
	return added, err
}

// AmendEventNotes rewrites the notes of an existing event; identity fields
// stay untouched.
func (s *Service) AmendEventNotes(ctx context.Context, eventID, notes string) error {
	return s.store.Transaction(ctx, func(draft *domain.Document) error {
		user, err := actor(draft)
		if err != nil {
			return err
		}
		return AmendEventNotes(draft, eventID, notes, user.ID, s.store.now())
	})
}

// DeleteEvent soft-deletes an event into the events trash bucket.
func (s *Service) DeleteEvent(ctx context.Context, eventID string) error {
	return s.store.Transaction(ctx, func(draft *domain.Document) error {
		user, err := actor(draft)
		if err != nil {
			return err
		}
		i := eventIndex(draft, eventID)
		if i < 0 || draft.Events[i].DeletedAt != nil {
			return domain.NotFoundError{Kind: domain.KindEvent, ID: eventID}
		}
		now := s.store.now()
		draft.Events[i].DeletedAt = &now
		draft.Events[i].UpdatedAt = now
		draft.Events[i].UpdatedBy = user.ID
		draft.Trash.Events = pushMarker(draft.Trash.Events, eventID, now)
		return nil
	})
}

// RestoreEvent brings a soft-deleted event back from the trash.
func (s *Service) RestoreEvent(ctx context.Context, eventID string) error {
	return s.store.Transaction(ctx, func(draft *domain.Document) error {
		user, err := actor(draft)
		if err != nil {
			return err
		}
		i := eventIndex(draft, eventID)
		if i < 0 || draft.Events[i].DeletedAt == nil {
			return domain.NotFoundError{Kind: domain.KindEvent, ID: eventID}
		}
		now := s.store.now()
		draft.Events[i].DeletedAt = nil
		draft.Events[i].UpdatedAt = now
		draft.Events[i].UpdatedBy = user.ID
		draft.Trash.Events, _ = removeMarker(draft.Trash.Events, eventID)
		return nil
	})
}

// ListAnimalEvents returns the live events of one animal, newest date
// first. Events are stored in append order; date order is a display
// concern, so it is applied here.
func (s *Service) ListAnimalEvents(animalID string) []domain.Event {
	doc := s.store.Get()
	var out []domain.Event
	for _, ev := range doc.Events {
		if ev.DeletedAt == nil && ev.EntityType == domain.KindAnimal && ev.EntityID == animalID {
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}
