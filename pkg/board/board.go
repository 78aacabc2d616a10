package board

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Level is one line of the summary: the summed quantity of every registered
// order sharing a side and unit price.
type Level struct {
	Side      Side            `json:"side"`
	UnitPrice int64           `json:"unitPrice"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// String renders the level as "SELL: 15.0 kg for £100".
func (l Level) String() string {
	return fmt.Sprintf("%s: %s kg for £%d", l.Side, l.Quantity.StringFixed(1), l.UnitPrice)
}

// Board holds the live registered orders. Storage is unordered; ordering is
// computed on every read.
//
// Board is not safe for concurrent use. Callers sharing one must serialize
// access to Register, Cancel and Summary.
type Board struct {
	orders []Order
}

func New() *Board {
	return &Board{orders: make([]Order, 0)}
}

// Register validates o and stores a copy of it. Value-equal duplicates are
// allowed.
func (b *Board) Register(o *Order) error {
	if err := validate(o); err != nil {
		return err
	}
	b.orders = append(b.orders, *o)
	return nil
}

// Cancel removes the first registered order value-equal to o.
func (b *Board) Cancel(o *Order) error {
	if o == nil {
		return fmt.Errorf("%w: no order given", ErrOrderNotFound)
	}
	for i := range b.orders {
		if b.orders[i].Equal(*o) {
			b.orders = append(b.orders[:i], b.orders[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrOrderNotFound, o)
}

// Len returns the number of registered orders, duplicates included.
func (b *Board) Len() int { return len(b.orders) }

// Summary returns the formatted summary lines: SELL levels by ascending
// price, then BUY levels by descending price.
func (b *Board) Summary() ([]string, error) {
	levels, err := b.Levels()
	if err != nil {
		return nil, err
	}
	lines := make([]string, len(levels))
	for i, l := range levels {
		lines[i] = l.String()
	}
	return lines, nil
}

// Levels returns the merged, ordered representatives behind Summary.
func (b *Board) Levels() ([]Level, error) {
	reps, err := b.representatives()
	if err != nil {
		return nil, err
	}
	levels := make([]Level, len(reps))
	for i, r := range reps {
		levels[i] = Level{Side: r.Side, UnitPrice: r.UnitPrice, Quantity: r.Quantity}
	}
	return levels, nil
}

func (b *Board) representatives() ([]Order, error) {
	var sells, buys []Order
	for _, o := range b.orders {
		switch o.Side {
		case Sell:
			sells = append(sells, o)
		case Buy:
			buys = append(buys, o)
		default:
			// only reachable by bypassing Register; a lone straggler never
			// meets the comparator inside the sort, so ask it directly
			if _, err := Compare(o, o); err != nil {
				return nil, err
			}
		}
	}

	combined := append(mergeByPrice(sells), mergeByPrice(buys)...)
	if err := sortOrders(combined); err != nil {
		return nil, err
	}
	return combined, nil
}

// mergeByPrice folds orders of one side into one representative per unit
// price. Representatives keep first-seen price order.
func mergeByPrice(orders []Order) []Order {
	totals := make(map[int64]decimal.Decimal, len(orders))
	var prices []int64
	for _, o := range orders {
		sum, seen := totals[o.UnitPrice]
		if !seen {
			prices = append(prices, o.UnitPrice)
		}
		totals[o.UnitPrice] = sum.Add(o.Quantity)
	}

	reps := make([]Order, 0, len(prices))
	for _, p := range prices {
		reps = append(reps, Order{
			Quantity:  totals[p],
			UnitPrice: p,
			Side:      orders[0].Side,
		})
	}
	return reps
}

func sortOrders(orders []Order) error {
	var cmpErr error
	sort.SliceStable(orders, func(i, j int) bool {
		c, err := Compare(orders[i], orders[j])
		if err != nil && cmpErr == nil {
			cmpErr = err
		}
		return c < 0
	})
	return cmpErr
}

func validate(o *Order) error {
	switch {
	case o == nil:
		return &ValidationError{Reason: "order is missing"}
	case !o.Side.Valid():
		return &ValidationError{Reason: "side is missing"}
	case o.ParticipantID == "":
		return &ValidationError{Reason: "participant id is missing"}
	case o.UnitPrice <= 0:
		return &ValidationError{Reason: "unit price must be positive"}
	case !o.Quantity.IsPositive():
		return &ValidationError{Reason: "quantity must be positive"}
	}
	return nil
}
