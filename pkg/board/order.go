package board

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Side classifies an order as SELL or BUY. The zero value means the side
// was never supplied.
type Side int8

const (
	SideUnset Side = 0
	Sell      Side = 1
	Buy       Side = 2
)

func (s Side) String() string {
	switch s {
	case Sell:
		return "SELL"
	case Buy:
		return "BUY"
	default:
		return "UNSET"
	}
}

// Valid reports whether s is SELL or BUY.
func (s Side) Valid() bool { return s == Sell || s == Buy }

// ParseSide accepts "SELL"/"BUY" in any case.
func ParseSide(s string) (Side, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SELL":
		return Sell, nil
	case "BUY":
		return Buy, nil
	case "":
		return SideUnset, nil
	}
	return SideUnset, fmt.Errorf("unknown side %q", s)
}

func (s Side) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return []byte(""), nil
	}
	return []byte(s.String()), nil
}

func (s *Side) UnmarshalText(b []byte) error {
	v, err := ParseSide(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Order is a single registered order. It is a plain value: the board keeps
// its own copy and never hands out references to it.
type Order struct {
	ParticipantID string
	Quantity      decimal.Decimal // kg
	UnitPrice     int64           // £ per kg
	Side          Side
}

// NewOrder builds an order with every field supplied at once. No validation
// happens here; Board.Register is the gatekeeper.
func NewOrder(participantID string, quantity decimal.Decimal, unitPrice int64, side Side) Order {
	return Order{
		ParticipantID: participantID,
		Quantity:      quantity,
		UnitPrice:     unitPrice,
		Side:          side,
	}
}

// Equal is value equality over all four fields. Quantities compare
// numerically, so 10 and 10.000 are the same quantity.
func (o Order) Equal(other Order) bool {
	return o.ParticipantID == other.ParticipantID &&
		o.Quantity.Equal(other.Quantity) &&
		o.UnitPrice == other.UnitPrice &&
		o.Side == other.Side
}

func (o Order) String() string {
	return fmt.Sprintf("Order{participant=%q, quantity=%s, unitPrice=%d, side=%s}",
		o.ParticipantID, o.Quantity.String(), o.UnitPrice, o.Side)
}

// Compare orders a before b for the summary: SELL before BUY, SELL by
// ascending price, BUY by descending price. It returns a *ComparisonError
// when either operand has no side.
func Compare(a, b Order) (int, error) {
	if !a.Side.Valid() || !b.Side.Valid() {
		return 0, &ComparisonError{Left: a, Right: b}
	}

	if a.Side != b.Side {
		if a.Side == Sell {
			return -1, nil
		}
		return 1, nil
	}

	c := comparePrice(a.UnitPrice, b.UnitPrice)
	if a.Side == Buy {
		return -c, nil
	}
	return c, nil
}

func comparePrice(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
