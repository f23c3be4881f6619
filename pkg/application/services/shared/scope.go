package shared

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Rushen88/PDM-sub000/pkg/domain/repositories"
	"github.com/Rushen88/PDM-sub000/pkg/infrastructure/events"
)

// Clock returns the current time
type Clock func() time.Time

// SystemClock is the wall clock in UTC
func SystemClock() time.Time {
	return time.Now().UTC()
}

// NewID returns a fresh entity identifier
func NewID() string {
	return uuid.NewString()
}

// Scope is what a unit of work sees: one transaction, its pending events and
// a single timestamp shared by everything the unit writes
type Scope struct {
	Tx     repositories.Tx
	Events *events.Recorder
	Now    time.Time
}

// Record buffers an event stamped with the scope time
func (s *Scope) Record(eventType, streamID string, data interface{}) {
	s.Events.Record(eventType, streamID, data, s.Now)
}

// Runner opens scopes on a store and publishes their events after commit
type Runner struct {
	store  repositories.Store
	events events.EventStore
	clock  Clock
	logger *zap.Logger
}

// NewRunner creates a runner. A nil event store drops events.
func NewRunner(store repositories.Store, eventStore events.EventStore, clock Clock, logger *zap.Logger) *Runner {
	if clock == nil {
		clock = SystemClock
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{store: store, events: eventStore, clock: clock, logger: logger}
}

// Now returns the runner clock time
func (r *Runner) Now() time.Time {
	return r.clock()
}

// Write runs fn in a write transaction
func (r *Runner) Write(ctx context.Context, fn func(ctx context.Context, s *Scope) error) error {
	rec := &events.Recorder{}
	err := r.store.WithinTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		rec.Reset()
		return fn(ctx, &Scope{Tx: tx, Events: rec, Now: r.clock()})
	})
	if err != nil {
		return err
	}
	if r.events == nil {
		return nil
	}
	if err := events.Publish(r.events, rec); err != nil {
		// the transaction is committed; losing an audit event must not fail it
		r.logger.Error("failed to publish events", zap.Error(err))
	}
	return nil
}

// Read runs fn in a read-only transaction; recorded events are discarded
func (r *Runner) Read(ctx context.Context, fn func(ctx context.Context, s *Scope) error) error {
	return r.store.Read(ctx, func(ctx context.Context, tx repositories.Tx) error {
		return fn(ctx, &Scope{Tx: tx, Events: &events.Recorder{}, Now: r.clock()})
	})
}

// Sequence names
const (
	DisplayNumberSequence      = "tree_node_display_number"
	PurchaseOrderSequence      = "purchase_order"
	GoodsReceiptSequence       = "goods_receipt"
	ContractorWriteOffSequence = "contractor_write_off"
	ContractorReceiptSequence  = "contractor_receipt"
	StockTransferSequence      = "stock_transfer"
	InventoryCountSequence     = "inventory_count"
)

var documentPrefixes = map[string]string{
	PurchaseOrderSequence:      "PO",
	GoodsReceiptSequence:       "GR",
	ContractorWriteOffSequence: "CW",
	ContractorReceiptSequence:  "CR",
	StockTransferSequence:      "ST",
	InventoryCountSequence:     "IC",
}

// NextDisplayNumber takes the next global tree node number
func NextDisplayNumber(s *Scope) (int64, error) {
	n, err := s.Tx.Sequences().Next(DisplayNumberSequence)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate display number: %w", err)
	}
	return n, nil
}

// NextDocumentNumber formats the next number of a document sequence, e.g. PO-000042
func NextDocumentNumber(s *Scope, sequence string) (string, error) {
	n, err := s.Tx.Sequences().Next(sequence)
	if err != nil {
		return "", fmt.Errorf("failed to allocate %s number: %w", sequence, err)
	}
	prefix, ok := documentPrefixes[sequence]
	if !ok {
		prefix = "DOC"
	}
	return fmt.Sprintf("%s-%06d", prefix, n), nil
}
