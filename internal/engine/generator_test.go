package engine

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"me_msggen/internal/domain"
	"me_msggen/internal/loader"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var xyz = domain.Instrument{Number: 1, Symbol: "XYZ", InstrumentID: 100}

func newTestGenerator(t *testing.T, codes ...string) *Generator {
	t.Helper()
	reg := domain.DefaultRegistry()
	plan, err := loader.NewPlan(reg, codes...)
	require.NoError(t, err)

	g, err := NewGenerator(reg, loader.NewCatalog(xyz), plan, DefaultOptions())
	require.NoError(t, err)
	return g
}

func events(n int) []domain.Event {
	evs := make([]domain.Event, n)
	for i := range evs {
		evs[i] = domain.Event{Seq: int64(i + 1), Time: int64(i+1) * 1000, Instrument: 1}
	}
	return evs
}

func TestGenerator_SingleNewRests(t *testing.T) {
	g := newTestGenerator(t, "A")

	require.NoError(t, g.Run(context.Background(), events(1)))

	require.Len(t, g.TestMessages(), 1)
	msg := g.TestMessages()[0]
	assert.Equal(t, domain.SideBuy, msg.Side)
	assert.Equal(t, "49.99", msg.PriceString())
	assert.Equal(t, int64(100), msg.Qty)
	assert.Equal(t, "1:B:LMM:00000001", msg.ClOrdID)
	assert.Empty(t, msg.OrigClOrdID)

	key := domain.BookKey{Account: domain.AccountLMM, Side: domain.SideBuy, Symbol: "XYZ", Price: "49.99"}
	assert.True(t, g.Book().Contains(key, msg.ClOrdID))
	assert.Empty(t, g.Seeds())
}

func TestGenerator_CancelResolvesFromBook(t *testing.T) {
	// Steps alternate B,S,B,S so the cancels at steps 2 and 3 hit the news of steps 0 and 1
	g := newTestGenerator(t, "A", "A", "D", "D")

	require.NoError(t, g.Run(context.Background(), events(4)))

	msgs := g.TestMessages()
	assert.Equal(t, msgs[0].ClOrdID, msgs[2].OrigClOrdID)
	assert.Equal(t, msgs[1].ClOrdID, msgs[3].OrigClOrdID)
	assert.Empty(t, g.Seeds())
	assert.Empty(t, g.Book().NonEmpty())
}

func TestGenerator_CancelOnOtherSideSeeds(t *testing.T) {
	// A buys at step 0; D at step 1 cancels on the sell side, which is empty
	g := newTestGenerator(t, "A", "D")

	require.NoError(t, g.Run(context.Background(), events(2)))

	cancel := g.TestMessages()[1]
	require.Len(t, g.Seeds(), 1)
	assert.Equal(t, g.Seeds()[0].ClOrdID, cancel.OrigClOrdID)
	assert.Len(t, g.Book().NonEmpty(), 1)
}

func TestGenerator_LoneCancelSynthesizesSeed(t *testing.T) {
	g := newTestGenerator(t, "D")

	require.NoError(t, g.Run(context.Background(), []domain.Event{{Seq: 5, Time: 5000, Instrument: 1}}))

	require.Len(t, g.Seeds(), 1)
	seed := g.Seeds()[0]
	cancel := g.TestMessages()[0]

	assert.Equal(t, seed.ClOrdID, cancel.OrigClOrdID)
	assert.Equal(t, "1:B:LMM:Seed:00000005", seed.ClOrdID)
	assert.Equal(t, domain.KindNew, seed.Kind)
	assert.Equal(t, domain.PostureBehind, seed.Posture)
	assert.Equal(t, int64(100), seed.Qty)
	assert.Equal(t, int64(0), seed.Time)
	assert.Equal(t, cancel.BookKey(), seed.BookKey())
}

func TestGenerator_CancelReplaceSeeds(t *testing.T) {
	tests := []struct {
		code    string
		posture domain.Posture
		qty     int64
		account string
	}{
		{"F", domain.PostureBehind, 200, domain.AccountLMM},
		{"G", domain.PostureAtBest, 200, domain.AccountLMM},
		{"H", domain.PostureAtBest, 100, domain.AccountLMM},
		{"T", domain.PostureBehind, 200, domain.AccountDAST},
		{"V", domain.PostureAtBest, 100, domain.AccountDAST},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			g := newTestGenerator(t, tt.code)
			require.NoError(t, g.Run(context.Background(), events(1)))

			require.Len(t, g.Seeds(), 1)
			seed := g.Seeds()[0]
			assert.Equal(t, tt.posture, seed.Posture)
			assert.Equal(t, tt.qty, seed.Qty)
			assert.Equal(t, tt.account, seed.Account)
			assert.Equal(t, domain.TIFDay, seed.TIF)
			assert.Equal(t, seed.ClOrdID, g.TestMessages()[0].OrigClOrdID)
		})
	}
}

func TestGenerator_CancelReplaceRestsAfterResolving(t *testing.T) {
	// G rests at best; it must reference a prior order, not itself
	g := newTestGenerator(t, "G")

	require.NoError(t, g.Run(context.Background(), events(1)))

	msg := g.TestMessages()[0]
	assert.NotEqual(t, msg.ClOrdID, msg.OrigClOrdID)
	assert.True(t, g.Book().Contains(msg.BookKey(), msg.ClOrdID))
}

func TestGenerator_MarketableContraLiquidity(t *testing.T) {
	// Two marketable buys (steps 0 and 2) need sell-side liquidity on XYZ
	g := newTestGenerator(t, "C", "A")

	require.NoError(t, g.Run(context.Background(), events(3)))

	require.Equal(t, 1, g.Contra().Len())
	rec, ok := g.Contra().Get("XYZ", domain.SideSell)
	require.True(t, ok)
	assert.Equal(t, int64(200), rec.Qty)
	assert.Equal(t, domain.ClassMatch, rec.Class)
	assert.Equal(t, "50.01", rec.PriceString())

	// Marketable orders never rest
	for _, msg := range g.TestMessages() {
		if msg.Posture == domain.PostureMarketable {
			assert.False(t, g.Book().Contains(msg.BookKey(), msg.ClOrdID))
		}
	}
}

func TestGenerator_IOCDoesNotRest(t *testing.T) {
	g := newTestGenerator(t, "L", "M")

	require.NoError(t, g.Run(context.Background(), events(2)))

	assert.Empty(t, g.Book().NonEmpty())
	assert.Zero(t, g.Contra().Len())
}

func TestGenerator_UnknownInstrument(t *testing.T) {
	g := newTestGenerator(t, "A")

	err := g.Run(context.Background(), []domain.Event{{Seq: 1, Time: 1, Instrument: 42}})
	require.ErrorIs(t, err, domain.ErrUnknownInstrument)
	assert.Empty(t, g.TestMessages())
}

func TestGenerator_RejectsReusedSequence(t *testing.T) {
	tests := []struct {
		name string
		seqs []int64
	}{
		{"repeated", []int64{7, 8, 7}},
		{"sign flipped", []int64{3, 8, -3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGenerator(t, "A", "B", "A")
			evs := make([]domain.Event, len(tt.seqs))
			for i, seq := range tt.seqs {
				evs[i] = domain.Event{Seq: seq, Time: int64(i) * 1000, Instrument: 1}
			}

			err := g.Run(context.Background(), evs)
			require.ErrorIs(t, err, domain.ErrSequenceReused)

			require.Len(t, g.TestMessages(), 2)
			seen := make(map[string]bool)
			for _, ids := range g.Book().Snapshot() {
				for _, id := range ids {
					assert.False(t, seen[id], "identifier %s rests twice", id)
					seen[id] = true
				}
			}
		})
	}
}

func TestGenerator_ContextCancelled(t *testing.T) {
	g := newTestGenerator(t, "A")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := g.Run(ctx, events(3))
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, g.TestMessages())
}

func TestGenerator_FinalizeOrder(t *testing.T) {
	g := newTestGenerator(t, "C", "D", "F")

	require.NoError(t, g.Run(context.Background(), events(6)))

	out := g.Finalize()
	require.Len(t, out, g.Contra().Len()+len(g.Seeds()))
	for i, msg := range out {
		assert.Equal(t, int64(i), msg.Seq)
		assert.Equal(t, int64(i)*100, msg.Time)
	}
	assert.Equal(t, domain.ClassMatch, out[0].Class)
	assert.Equal(t, domain.ClassSeeded, out[len(out)-1].Class)
}

func TestGenerator_Summary(t *testing.T) {
	g := newTestGenerator(t, "A", "B", "D")

	require.NoError(t, g.Run(context.Background(), events(3)))

	s := g.Summary()
	assert.Equal(t, 3, s.Events)
	assert.Equal(t, 3, s.Test)
	assert.Equal(t, 8, s.BookKeys)
	assert.Equal(t, uint64(3), s.Metrics.EventsProcessed)
	assert.Equal(t, uint64(2), s.Metrics.RestingRecorded)
}

func TestGenerator_DumpState(t *testing.T) {
	g := newTestGenerator(t, "A", "C")
	require.NoError(t, g.Run(context.Background(), events(2)))

	path := filepath.Join(t.TempDir(), "dump.json")
	g.DumpState(path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var dump struct {
		Step   int                 `json:"step"`
		Book   map[string][]string `json:"book"`
		Contra []contraDump        `json:"contra"`
	}
	require.NoError(t, json.Unmarshal(data, &dump))
	assert.Equal(t, 2, dump.Step)
	assert.Equal(t, []string{"1:B:LMM:00000001"}, dump.Book["LMM:B:XYZ:49.99"])
	require.Len(t, dump.Contra, 1)
	assert.Equal(t, "B", dump.Contra[0].Side)
}
