package storage

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uhyunpark/orderboard/pkg/app/market"
	"github.com/uhyunpark/orderboard/pkg/board"
)

func openMem(t *testing.T, fs vfs.FS) *PebbleJournal {
	t.Helper()
	j, err := openPebbleJournal("journal", &pebble.Options{FS: fs})
	require.NoError(t, err, "open journal")
	return j
}

func newMemJournal(t *testing.T) *PebbleJournal {
	t.Helper()
	j := openMem(t, vfs.NewMem())
	t.Cleanup(func() { j.Close() })
	return j
}

func event(seq uint64, kind market.EventKind, qty string, price int64, side board.Side) market.Event {
	return market.Event{
		ID:    uuid.New(),
		Seq:   seq,
		Kind:  kind,
		Order: board.NewOrder("some-user", decimal.RequireFromString(qty), price, side),
		Time:  time.Date(2026, 10, 19, 9, 30, int(seq), 0, time.UTC),
	}
}

func TestPebbleJournal_AppendAndRecent(t *testing.T) {
	j := newMemJournal(t)

	in := []market.Event{
		event(1, market.EventRegister, "22.35", 200, board.Sell),
		event(2, market.EventRegister, "10.0", 100, board.Buy),
		event(3, market.EventCancel, "22.35", 200, board.Sell),
	}
	for _, e := range in {
		require.NoError(t, j.Append(e), "Append(%d)", e.Seq)
	}

	all, err := j.Recent(0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i, got := range all {
		want := in[len(in)-1-i]
		assert.Equal(t, want.ID, got.ID)
		assert.Equal(t, want.Seq, got.Seq)
		assert.Equal(t, want.Kind, got.Kind)
		assert.True(t, got.Time.Equal(want.Time), "event %d time = %s", i, got.Time)
		assert.True(t, got.Order.Equal(want.Order), "event %d order = %s, want %s", i, got.Order, want.Order)
	}

	two, err := j.Recent(2)
	require.NoError(t, err)
	require.Len(t, two, 2)
	assert.Equal(t, uint64(3), two[0].Seq)
	assert.Equal(t, uint64(2), two[1].Seq)

	last, err := j.LastSeq()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), last)
}

func TestPebbleJournal_Empty(t *testing.T) {
	j := newMemJournal(t)

	events, err := j.Recent(10)
	require.NoError(t, err)
	assert.Empty(t, events)

	last, err := j.LastSeq()
	require.NoError(t, err)
	assert.Zero(t, last)
}

func TestPebbleJournal_WithMarket(t *testing.T) {
	j := newMemJournal(t)
	m := market.New(nil, market.WithJournal(j))

	o := board.NewOrder("alice", decimal.RequireFromString("3.5"), 150, board.Sell)
	require.NoError(t, m.Register(context.Background(), &o))
	require.NoError(t, m.Cancel(context.Background(), &o))

	events, err := j.Recent(0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, market.EventCancel, events[0].Kind)
	assert.Equal(t, market.EventRegister, events[1].Kind)
}

// A restarted process resumes numbering after the journal's last entry
// instead of overwriting earlier ones.
func TestPebbleJournal_SurvivesRestart(t *testing.T) {
	fs := vfs.NewMem()
	ctx := context.Background()

	first := openMem(t, fs)
	alice := board.NewOrder("alice", decimal.RequireFromString("3.5"), 150, board.Sell)
	require.NoError(t, market.New(nil, market.WithJournal(first)).Register(ctx, &alice))
	require.NoError(t, first.Close())

	second := openMem(t, fs)
	defer second.Close()
	last, err := second.LastSeq()
	require.NoError(t, err)
	require.Equal(t, uint64(1), last)

	m := market.New(nil, market.WithJournal(second), market.WithStartSeq(last))
	bob := board.NewOrder("bob", decimal.RequireFromString("2"), 90, board.Buy)
	require.NoError(t, m.Register(ctx, &bob))

	events, err := second.Recent(0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, uint64(2), events[0].Seq)
	assert.Equal(t, "bob", events[0].Order.ParticipantID)
	assert.Equal(t, uint64(1), events[1].Seq)
	assert.Equal(t, "alice", events[1].Order.ParticipantID)
}

func TestKeys(t *testing.T) {
	k := journalKey(258)
	assert.True(t, bytes.HasPrefix(k, []byte(prefixJournal)), "key %x lacks prefix", k)
	assert.Equal(t, uint64(258), seqFromKey(k))
	assert.Negative(t, bytes.Compare(journalKey(2), journalKey(10)), "journal keys must sort by sequence")
	assert.Equal(t, []byte("j;"), keyUpperBound([]byte("j:")))
}
