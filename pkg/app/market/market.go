package market

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/uhyunpark/orderboard/pkg/board"
	"github.com/uhyunpark/orderboard/pkg/util"
)

// EventKind is the board mutation an Event records.
type EventKind string

const (
	EventRegister EventKind = "register"
	EventCancel   EventKind = "cancel"
)

// Event is one accepted register or cancel.
type Event struct {
	ID    uuid.UUID
	Seq   uint64
	Kind  EventKind
	Order board.Order
	Time  time.Time
}

// Snapshot is the board summary right after an Event was applied.
type Snapshot struct {
	Seq     uint64
	EventID uuid.UUID
	Kind    EventKind
	Lines   []string
	Levels  []board.Level
	Time    time.Time
}

// Journal records accepted events for audit. It never feeds state back
// into the board.
type Journal interface {
	Append(e Event) error
}

// Publisher pushes snapshots to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, s Snapshot) error
}

var ErrJournal = errors.New("journal append failed")

// Market is the service wrapper around a board.Board. One mutex guards the
// whole register/cancel/summary surface so every summary sees a consistent
// board.
type Market struct {
	mu    sync.Mutex
	board *board.Board
	seq   uint64

	// dispatchMu is taken before mu is released so snapshots reach the
	// publisher and OnChange in seq order.
	dispatchMu sync.Mutex

	journal   Journal
	publisher Publisher
	clock     util.Clock
	logger    *zap.SugaredLogger

	// OnChange is called with every snapshot after a successful mutation,
	// in seq order and outside the board lock. It must not call back into
	// the Market.
	OnChange func(Snapshot)
}

type Option func(*Market)

func WithJournal(j Journal) Option     { return func(m *Market) { m.journal = j } }
func WithPublisher(p Publisher) Option { return func(m *Market) { m.publisher = p } }
func WithClock(c util.Clock) Option    { return func(m *Market) { m.clock = c } }

// WithStartSeq continues numbering after seq, the last sequence a journal
// already holds.
func WithStartSeq(seq uint64) Option { return func(m *Market) { m.seq = seq } }

func New(logger *zap.SugaredLogger, opts ...Option) *Market {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	m := &Market{
		board:  board.New(),
		clock:  util.RealClock{},
		logger: logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Register validates and adds o to the board.
func (m *Market) Register(ctx context.Context, o *board.Order) error {
	m.logger.Infow("order_register_attempt", orderFields(o)...)

	m.mu.Lock()
	if err := m.board.Register(o); err != nil {
		m.mu.Unlock()
		m.logger.Warnw("order_register_rejected", append(orderFields(o), "err", err)...)
		return err
	}
	snap, err := m.commitLocked(EventRegister, *o)
	m.dispatchMu.Lock()
	m.mu.Unlock()
	defer m.dispatchMu.Unlock()

	m.logger.Infow("order_registered", "seq", snap.Seq, "levels", len(snap.Levels))
	return m.afterCommit(ctx, snap, err)
}

// Cancel removes one registered order value-equal to o.
func (m *Market) Cancel(ctx context.Context, o *board.Order) error {
	m.logger.Infow("order_cancel_attempt", orderFields(o)...)

	m.mu.Lock()
	if err := m.board.Cancel(o); err != nil {
		m.mu.Unlock()
		m.logger.Warnw("order_cancel_rejected", append(orderFields(o), "err", err)...)
		return err
	}
	snap, err := m.commitLocked(EventCancel, *o)
	m.dispatchMu.Lock()
	m.mu.Unlock()
	defer m.dispatchMu.Unlock()

	m.logger.Infow("order_cancelled", "seq", snap.Seq)
	return m.afterCommit(ctx, snap, err)
}

// Summary returns the board's formatted summary lines.
func (m *Market) Summary() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	lines, err := m.board.Summary()
	if err != nil {
		m.logger.Errorw("summary_failed", "err", err)
		return nil, err
	}
	m.logger.Debugw("summary", "lines", len(lines))
	return lines, nil
}

// Snapshot returns the summary lines and levels taken under one lock.
func (m *Market) Snapshot() (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	levels, err := m.board.Levels()
	if err != nil {
		m.logger.Errorw("snapshot_failed", "err", err)
		return Snapshot{}, err
	}
	return Snapshot{
		Seq:    m.seq,
		Lines:  formatLevels(levels),
		Levels: levels,
		Time:   m.clock.Now(),
	}, nil
}

// Len returns the number of registered orders.
func (m *Market) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.board.Len()
}

// commitLocked stamps the event, journals it and captures the summary the
// board now shows. Caller holds m.mu.
func (m *Market) commitLocked(kind EventKind, o board.Order) (Snapshot, error) {
	m.seq++
	ev := Event{
		ID:    uuid.New(),
		Seq:   m.seq,
		Kind:  kind,
		Order: o,
		Time:  m.clock.Now(),
	}

	var journalErr error
	if m.journal != nil {
		if err := m.journal.Append(ev); err != nil {
			journalErr = fmt.Errorf("%w: seq %d: %v", ErrJournal, ev.Seq, err)
		}
	}

	snap := Snapshot{Seq: ev.Seq, EventID: ev.ID, Kind: kind, Time: ev.Time}
	levels, err := m.board.Levels()
	if err != nil {
		return snap, errors.Join(journalErr, err)
	}
	snap.Levels = levels
	snap.Lines = formatLevels(levels)
	return snap, journalErr
}

// afterCommit fans the snapshot out. The board mutation has already
// happened; errors here are reported but do not undo it. Caller holds
// m.dispatchMu.
func (m *Market) afterCommit(ctx context.Context, snap Snapshot, commitErr error) error {
	if commitErr != nil {
		m.logger.Errorw("commit_failed", "seq", snap.Seq, "kind", snap.Kind, "err", commitErr)
		if snap.Lines == nil {
			return commitErr
		}
	}

	if m.publisher != nil {
		if err := m.publisher.Publish(ctx, snap); err != nil {
			m.logger.Errorw("snapshot_publish_failed", "seq", snap.Seq, "err", err)
		}
	}
	if m.OnChange != nil {
		m.OnChange(snap)
	}
	return commitErr
}

func formatLevels(levels []board.Level) []string {
	lines := make([]string, len(levels))
	for i, l := range levels {
		lines[i] = l.String()
	}
	return lines
}

func orderFields(o *board.Order) []interface{} {
	if o == nil {
		return []interface{}{"order", nil}
	}
	return []interface{}{
		"participant", o.ParticipantID,
		"quantity", o.Quantity.String(),
		"unit_price", o.UnitPrice,
		"side", o.Side.String(),
	}
}
