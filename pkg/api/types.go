package api

import (
	"github.com/shopspring/decimal"

	"github.com/uhyunpark/orderboard/pkg/board"
)

// API request/response types for REST endpoints and WebSocket messages

// ==============================
// REST Types
// ==============================

// OrderRequest describes an order to register or cancel. Cancellation
// matches on all four fields.
type OrderRequest struct {
	ParticipantID string          `json:"participantId"`
	Quantity      decimal.Decimal `json:"quantity"`  // kg, number or string
	UnitPrice     int64           `json:"unitPrice"` // £ per kg
	Side          string          `json:"side"`      // "SELL" or "BUY"
}

// OrderResponse acknowledges a register or cancel
type OrderResponse struct {
	Status  string `json:"status"`            // "registered" or "cancelled"
	Warning string `json:"warning,omitempty"` // set when the change applied but was not journaled
}

// SummaryResponse is the current board summary
type SummaryResponse struct {
	Lines     []string      `json:"lines"`
	Levels    []board.Level `json:"levels"`
	Seq       uint64        `json:"seq"`
	Timestamp int64         `json:"timestamp"` // Unix milliseconds
}

// JournalEntry is one audited register/cancel
type JournalEntry struct {
	ID            string          `json:"id"`
	Seq           uint64          `json:"seq"`
	Kind          string          `json:"kind"`
	ParticipantID string          `json:"participantId"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitPrice     int64           `json:"unitPrice"`
	Side          string          `json:"side"`
	Timestamp     int64           `json:"timestamp"`
}

type HealthResponse struct {
	Status string `json:"status"`
	Orders int    `json:"orders"`
}

// ErrorResponse represents an API error
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// ==============================
// WebSocket Types
// ==============================

// WSSubscribeRequest is sent by clients to manage subscriptions
type WSSubscribeRequest struct {
	Op       string   `json:"op"`       // "subscribe" or "unsubscribe"
	Channels []string `json:"channels"` // e.g. ["summary"]
}

// SummaryUpdate is pushed to "summary" subscribers after every change
type SummaryUpdate struct {
	Type      string        `json:"type"` // "summary"
	Event     string        `json:"event"`
	Seq       uint64        `json:"seq"`
	Lines     []string      `json:"lines"`
	Levels    []board.Level `json:"levels"`
	Timestamp int64         `json:"timestamp"`
}

const ChannelSummary = "summary"
