package domain

import "context"

// Adapter reads and writes the serialized document blob under one logical
// key. It has no domain knowledge; the payload is opaque bytes.
//
// Save must be atomic at the adapter boundary: a failure midway through a
// write must leave the previously durable snapshot intact.
type Adapter interface {
	// Load returns the stored blob. ok is false when nothing has been
	// stored yet, which is not an error.
	Load(ctx context.Context) (data []byte, ok bool, err error)
	// Save durably replaces the stored blob.
	Save(ctx context.Context, data []byte) error
}

// DocumentStore is the narrow API business modules consume. They never
// touch the Adapter directly.
type DocumentStore interface {
	// Init loads the durable document or seeds a default one. Idempotent.
	Init(ctx context.Context) error
	// Get returns the latest committed snapshot. Callers must treat it as
	// read-only; mutating it outside a transaction is a contract violation.
	Get() *Document
	// Set unconditionally overwrites the document. Used only by seeding.
	Set(ctx context.Context, doc *Document) error
	// Transaction runs fn against a deep-cloned draft and commits the draft
	// atomically when fn returns nil. See the transaction engine contract.
	Transaction(ctx context.Context, fn func(draft *Document) error) error
}
