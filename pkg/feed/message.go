package feed

import (
	"encoding/json"

	"github.com/uhyunpark/orderboard/pkg/app/market"
	"github.com/uhyunpark/orderboard/pkg/board"
)

// Message is the wire form of a summary snapshot.
type Message struct {
	V         int              `json:"v"`
	Seq       uint64           `json:"seq"`
	EventID   string           `json:"eventId"`
	Event     market.EventKind `json:"event"`
	Lines     []string         `json:"lines"`
	Levels    []board.Level    `json:"levels"`
	Timestamp int64            `json:"timestamp"` // Unix milliseconds
}

const messageVersion = 1

// Encode returns the record key (event id) and JSON value for s.
func Encode(s market.Snapshot) (key, value []byte, err error) {
	msg := Message{
		V:         messageVersion,
		Seq:       s.Seq,
		EventID:   s.EventID.String(),
		Event:     s.Kind,
		Lines:     s.Lines,
		Levels:    s.Levels,
		Timestamp: s.Time.UnixMilli(),
	}
	if msg.Lines == nil {
		msg.Lines = []string{}
	}
	if msg.Levels == nil {
		msg.Levels = []board.Level{}
	}
	value, err = json.Marshal(msg)
	if err != nil {
		return nil, nil, err
	}
	return []byte(msg.EventID), value, nil
}
