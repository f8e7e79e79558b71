// Package core implements the transactional document store: load-or-seed
// startup, non-blocking read snapshots, and a single-writer transaction
// engine that commits the whole document atomically.
package core

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"farmcore/pkg/domain"
)

// Compile-time contract assertion.
var _ domain.DocumentStore = (*Store)(nil)

var errNotInitialized = errors.New("store not initialized; call Init first")

// Store holds the current committed document and serializes all mutation
// through Transaction. Reads never block on writers: Get loads the snapshot
// pointer atomically and always sees the latest committed state.
type Store struct {
	adapter domain.Adapter
	logger  zerolog.Logger
	metrics MetricsRecorder
	nowFn   func() time.Time

	snapshot atomic.Pointer[domain.Document]

	// queueMu guards tail. tail is the settle-signal of the most recently
	// enqueued transaction; each new transaction chains behind it, giving
	// strict FIFO admission.
	queueMu sync.Mutex
	tail    chan struct{}

	// inFlight guards against overlapping drafts. The admission queue makes
	// overlap impossible; tripping this guard means the engine is broken.
	inFlight atomic.Int32

	// lastStamp is the latest timestamp issued by now. Serialized by the
	// admission queue; only transaction code touches it.
	lastStamp time.Time

	initMu sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithLogger attaches a logger. Commits log at debug, failures at error.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithMetrics attaches a metrics recorder for store operations.
func WithMetrics(m MetricsRecorder) Option {
	return func(s *Store) { s.metrics = m }
}

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.nowFn = now }
}

// NewStore constructs a store over the given persistence adapter.
func NewStore(adapter domain.Adapter, opts ...Option) *Store {
	s := &Store{
		adapter: adapter,
		logger:  zerolog.Nop(),
		nowFn:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init loads the durable document, seeding a default one when the adapter
// holds nothing or an unversioned document. Calling Init on an initialized
// store is a no-op.
func (s *Store) Init(ctx context.Context) error {
	s.initMu.Lock()
	defer s.initMu.Unlock()
	if s.snapshot.Load() != nil {
		return nil
	}

	start := s.nowFn()
	err := s.load(ctx)
	s.observe(ctx, "init", err == nil, s.nowFn().Sub(start))
	if err != nil {
		s.logger.Error().Err(err).Msg("store init failed")
		return err
	}
	doc := s.snapshot.Load()
	s.logger.Debug().Int("schema_version", doc.SchemaVersion).Msg("store initialized")
	return nil
}

func (s *Store) load(ctx context.Context) error {
	data, ok, err := s.adapter.Load(ctx)
	if err != nil {
		return domain.PersistenceError{Op: "load", Err: err}
	}
	if ok {
		var doc domain.Document
		if err := json.Unmarshal(data, &doc); err != nil {
			return domain.CorruptStateError{Err: err}
		}
		// The schema version is the seed gate: a stored document that has
		// one is never re-seeded.
		if doc.SchemaVersion > 0 {
			s.snapshot.Store(normalize(&doc))
			return nil
		}
	}
	return s.Set(ctx, DefaultDocument(s.nowFn()))
}

// Get returns the latest committed snapshot. It never waits on in-flight
// transactions and never exposes a half-applied draft. Callers must treat
// the returned document as read-only.
func (s *Store) Get() *domain.Document {
	return s.snapshot.Load()
}

// Set unconditionally overwrites both the durable blob and the in-memory
// snapshot. Seeding is its only intended caller; everything else goes
// through Transaction.
func (s *Store) Set(ctx context.Context, doc *domain.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return domain.PersistenceError{Op: "encode", Err: err}
	}
	if err := s.adapter.Save(ctx, data); err != nil {
		return domain.PersistenceError{Op: "save", Err: err}
	}
	s.snapshot.Store(normalize(doc.Clone()))
	return nil
}

// Transaction runs fn against a deep clone of the current snapshot. When fn
// returns nil the draft is stamped, durably saved, and published as the new
// snapshot; when fn or the adapter fails, the draft is discarded and neither
// the snapshot nor durable state changes.
//
// Admission is strict FIFO: a call is admitted only once every earlier call
// has fully settled, so each draft is cloned from the latest committed
// snapshot and no update is lost. Context cancellation is honored only while
// queued; an admitted transaction runs to completion. A stalled mutator
// stalls the queue — the accepted trade-off of the single-writer design.
func (s *Store) Transaction(ctx context.Context, fn func(draft *domain.Document) error) error {
	settled, err := s.admit(ctx)
	if err != nil {
		return err
	}
	defer close(settled)

	start := s.nowFn()
	err = s.commit(ctx, fn)
	s.observe(ctx, "transaction", err == nil, s.nowFn().Sub(start))
	if err != nil {
		s.logger.Error().Err(err).Msg("transaction failed")
		return err
	}
	s.logger.Debug().Dur("duration", s.nowFn().Sub(start)).Msg("transaction committed")
	return nil
}

// admit enqueues the caller behind the current tail and blocks until every
// earlier transaction has settled. The returned channel must be closed when
// this transaction settles (committed or failed).
func (s *Store) admit(ctx context.Context) (chan struct{}, error) {
	settled := make(chan struct{})
	s.queueMu.Lock()
	prev := s.tail
	s.tail = settled
	s.queueMu.Unlock()

	if prev != nil {
		select {
		case <-prev:
		case <-ctx.Done():
			// Successors are already chained behind settled; it must still
			// fire, but only after the predecessor settles so FIFO order
			// survives the abandoned slot.
			go func() {
				<-prev
				close(settled)
			}()
			return nil, ctx.Err()
		}
	}
	return settled, nil
}

func (s *Store) commit(ctx context.Context, fn func(draft *domain.Document) error) error {
	if !s.inFlight.CompareAndSwap(0, 1) {
		return domain.OrderingViolationError{}
	}
	defer s.inFlight.Store(0)

	cur := s.snapshot.Load()
	if cur == nil {
		return errNotInitialized
	}

	draft := cur.Clone()
	if err := fn(draft); err != nil {
		return err
	}

	draft.UpdatedAt = s.now()
	data, err := json.Marshal(draft)
	if err != nil {
		return domain.PersistenceError{Op: "encode", Err: err}
	}
	if err := s.adapter.Save(ctx, data); err != nil {
		return domain.PersistenceError{Op: "save", Err: err}
	}
	s.snapshot.Store(draft)
	return nil
}

// now returns the clock reading clamped monotonic: never below the committed
// root updatedAt and never below an earlier stamp issued in the same draft.
// Entity stamps and the commit's root stamp both come from here, so every
// updatedAt in the document is non-decreasing across commits and the root
// never trails its entities, even when the wall clock steps backwards.
func (s *Store) now() time.Time {
	t := s.nowFn()
	if cur := s.snapshot.Load(); cur != nil && cur.UpdatedAt.After(t) {
		t = cur.UpdatedAt
	}
	if s.lastStamp.After(t) {
		t = s.lastStamp
	}
	s.lastStamp = t
	return t
}

func (s *Store) observe(ctx context.Context, op string, success bool, d time.Duration) {
	if s.metrics != nil {
		s.metrics.Observe(ctx, op, success, d)
	}
}

// normalize fills nil collections so mutators can index them directly.
// Documents written before a collection existed decode with nil maps; they
// are rewritten complete on the next commit.
func normalize(doc *domain.Document) *domain.Document {
	if doc.Animals == nil {
		doc.Animals = map[string]domain.Animal{}
	}
	if doc.SheepDetails == nil {
		doc.SheepDetails = map[string]domain.SheepDetail{}
	}
	if doc.Fields == nil {
		doc.Fields = map[string]domain.Field{}
	}
	if doc.FieldPlans == nil {
		doc.FieldPlans = map[string]domain.FieldPlan{}
	}
	if doc.FertilizerPlans == nil {
		doc.FertilizerPlans = map[string]domain.FertilizerPlan{}
	}
	if doc.Features.ProductionModules == nil {
		doc.Features.ProductionModules = map[domain.ProductionType]bool{}
	}
	return doc
}
