package domain

import "fmt"

// CorruptStateError reports that durable bytes could not be decoded into a
// document. Startup must surface it rather than proceed with a partial store.
type CorruptStateError struct {
	Err error
}

func (e CorruptStateError) Error() string {
	return fmt.Sprintf("corrupt state: %v", e.Err)
}

func (e CorruptStateError) Unwrap() error { return e.Err }

// PersistenceError reports an adapter read or write failure. The in-memory
// snapshot and the durable state are unchanged when it is returned.
type PersistenceError struct {
	Op  string
	Err error
}

func (e PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s: %v", e.Op, e.Err)
}

func (e PersistenceError) Unwrap() error { return e.Err }

// NotFoundError reports that a mutator addressed a record id absent from the
// draft.
type NotFoundError struct {
	Kind EntityKind
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// OrderingViolationError indicates two transactions observed interleaved
// drafts. The engine's admission queue makes this impossible; seeing it
// means the engine itself is defective.
type OrderingViolationError struct{}

func (OrderingViolationError) Error() string {
	return "transaction ordering violation: concurrent drafts observed"
}
