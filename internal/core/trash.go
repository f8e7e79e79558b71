package core

import (
	"fmt"
	"time"

	"farmcore/pkg/domain"
)

// pushMarker appends a trash marker for a freshly soft-deleted record.
func pushMarker(bucket []domain.TrashMarker, id string, deletedAt time.Time) []domain.TrashMarker {
	return append(bucket, domain.TrashMarker{ID: id, DeletedAt: deletedAt})
}

// removeMarker drops the marker for id, reporting whether it was present.
func removeMarker(bucket []domain.TrashMarker, id string) ([]domain.TrashMarker, bool) {
	for i := range bucket {
		if bucket[i].ID == id {
			return append(bucket[:i:i], bucket[i+1:]...), true
		}
	}
	return bucket, false
}

// hasMarker reports whether the bucket references id.
func hasMarker(bucket []domain.TrashMarker, id string) bool {
	for i := range bucket {
		if bucket[i].ID == id {
			return true
		}
	}
	return false
}

// ListTrash returns a copy of the trash buckets from the latest committed
// snapshot.
func (s *Service) ListTrash() domain.Trash {
	t := s.store.Get().Trash
	return domain.Trash{
		Animals: append([]domain.TrashMarker(nil), t.Animals...),
		Fields:  append([]domain.TrashMarker(nil), t.Fields...),
		Events:  append([]domain.TrashMarker(nil), t.Events...),
	}
}

// VerifyTrash checks the soft-delete invariant on a document: every record
// with deletedAt set has exactly one marker in the matching trash bucket,
// and every marker points at a deleted record. The flag and the marker are
// one fact; the store's delete/restore operations always write them
// together, so a violation here means state was mutated outside them.
func VerifyTrash(doc *domain.Document) error {
	if err := verifyBucket(doc.Trash.Animals, domain.KindAnimal, func(id string) (deleted bool, exists bool) {
		a, ok := doc.Animals[id]
		return ok && a.Deleted(), ok
	}); err != nil {
		return err
	}
	for id, a := range doc.Animals {
		if a.Deleted() != hasMarker(doc.Trash.Animals, id) {
			return fmt.Errorf("animal %q: deletedAt and trash marker disagree", id)
		}
	}

	if err := verifyBucket(doc.Trash.Fields, domain.KindField, func(id string) (bool, bool) {
		f, ok := doc.Fields[id]
		return ok && f.Deleted(), ok
	}); err != nil {
		return err
	}
	for id, f := range doc.Fields {
		if f.Deleted() != hasMarker(doc.Trash.Fields, id) {
			return fmt.Errorf("field %q: deletedAt and trash marker disagree", id)
		}
	}

	if err := verifyBucket(doc.Trash.Events, domain.KindEvent, func(id string) (bool, bool) {
		if i := eventIndex(doc, id); i >= 0 {
			return doc.Events[i].DeletedAt != nil, true
		}
		return false, false
	}); err != nil {
		return err
	}
	for i := range doc.Events {
		ev := &doc.Events[i]
		if (ev.DeletedAt != nil) != hasMarker(doc.Trash.Events, ev.ID) {
			return fmt.Errorf("event %q: deletedAt and trash marker disagree", ev.ID)
		}
	}
	return nil
}

func verifyBucket(bucket []domain.TrashMarker, kind domain.EntityKind, lookup func(id string) (deleted, exists bool)) error {
	seen := make(map[string]bool, len(bucket))
	for _, m := range bucket {
		if seen[m.ID] {
			return fmt.Errorf("%s %q: duplicate trash marker", kind, m.ID)
		}
		seen[m.ID] = true
		deleted, exists := lookup(m.ID)
		if !exists {
			return fmt.Errorf("%s %q: trash marker for unknown record", kind, m.ID)
		}
		if !deleted {
			return fmt.Errorf("%s %q: trash marker for live record", kind, m.ID)
		}
	}
	return nil
}
