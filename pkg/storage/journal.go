package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/uhyunpark/orderboard/pkg/app/market"
	"github.com/uhyunpark/orderboard/pkg/board"
)

// PebbleJournal is an append-only audit log of accepted board events.
// Keys: j:<8-byte seq>
type PebbleJournal struct {
	db *pebble.DB
}

func NewPebbleJournal(path string) (*PebbleJournal, error) {
	return openPebbleJournal(path, &pebble.Options{})
}

func openPebbleJournal(path string, opts *pebble.Options) (*PebbleJournal, error) {
	db, err := pebble.Open(path, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal at %s: %w", path, err)
	}
	return &PebbleJournal{db: db}, nil
}

func (j *PebbleJournal) Close() error { return j.db.Close() }

// record is the stored form of market.Event.
type record struct {
	ID            uuid.UUID        `json:"id"`
	Seq           uint64           `json:"seq"`
	Kind          market.EventKind `json:"kind"`
	ParticipantID string           `json:"participantId"`
	Quantity      decimal.Decimal  `json:"quantity"`
	UnitPrice     int64            `json:"unitPrice"`
	Side          board.Side       `json:"side"`
	Time          time.Time        `json:"time"`
}

func (j *PebbleJournal) Append(e market.Event) error {
	val, err := json.Marshal(record{
		ID:            e.ID,
		Seq:           e.Seq,
		Kind:          e.Kind,
		ParticipantID: e.Order.ParticipantID,
		Quantity:      e.Order.Quantity,
		UnitPrice:     e.Order.UnitPrice,
		Side:          e.Order.Side,
		Time:          e.Time,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := j.db.Set(journalKey(e.Seq), val, pebble.Sync); err != nil {
		return fmt.Errorf("failed to save event %d: %w", e.Seq, err)
	}
	return nil
}

// Recent returns up to limit events, newest first. limit <= 0 returns all.
func (j *PebbleJournal) Recent(limit int) ([]market.Event, error) {
	iter, err := j.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(prefixJournal),
		UpperBound: keyUpperBound([]byte(prefixJournal)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open journal iterator: %w", err)
	}
	defer iter.Close()

	events := make([]market.Event, 0)
	for iter.Last(); iter.Valid(); iter.Prev() {
		if limit > 0 && len(events) == limit {
			break
		}
		var r record
		if err := json.Unmarshal(iter.Value(), &r); err != nil {
			return nil, fmt.Errorf("failed to unmarshal event at %x: %w", iter.Key(), err)
		}
		events = append(events, market.Event{
			ID:    r.ID,
			Seq:   r.Seq,
			Kind:  r.Kind,
			Order: board.NewOrder(r.ParticipantID, r.Quantity, r.UnitPrice, r.Side),
			Time:  r.Time,
		})
	}
	return events, iter.Error()
}

// LastSeq returns the highest stored sequence number, 0 when empty.
func (j *PebbleJournal) LastSeq() (uint64, error) {
	iter, err := j.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(prefixJournal),
		UpperBound: keyUpperBound([]byte(prefixJournal)),
	})
	if err != nil {
		return 0, err
	}
	defer iter.Close()

	if !iter.Last() {
		return 0, iter.Error()
	}
	return seqFromKey(iter.Key()), nil
}

var _ market.Journal = (*PebbleJournal)(nil)
