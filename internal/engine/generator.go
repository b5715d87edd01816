// Package engine turns the event feed into test and seeded message streams
// against a simulated book of resting orders.
//
// Output differs from the legacy generator in two deliberate ways, so a
// byte-for-byte comparison with its files will not match:
//
//   - A cancel or cancel-replace takes its prior order from the book before
//     its own identifier is recorded. The legacy tool recorded first, so a
//     resting cancel-replace could pop and reference itself.
//   - A synthesized seed uses the cancelling message's own account and
//     price posture (new, DAY). The legacy tool always seeded on LMM with
//     the behind-best and at-best postures swapped.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"me_msggen/internal/domain"
	"me_msggen/internal/infra"
	"me_msggen/internal/loader"
)

// Options tunes message synthesis
type Options struct {
	Sender          int
	Quantity        int64 // Quantity of every test message
	ContraIncrement int64 // Growth of a contra record per marketable order
	DumpPath        string
	Metrics         *infra.Metrics
}

// DefaultOptions matches the reference generator
func DefaultOptions() Options {
	return Options{Sender: 1, Quantity: 100, ContraIncrement: 100}
}

// Generator is the generation context. It owns the simulated book, the
// contra-liquidity records and both output collections; it is stepped
// through the event feed by a single goroutine.
type Generator struct {
	registry *domain.Registry
	catalog  *loader.Catalog
	plan     *loader.Plan
	opts     Options
	metrics  *infra.Metrics

	book   *Book
	contra *ContraBook

	step   int
	used   map[int64]struct{} // Event sequences already turned into identifiers
	test   []*domain.Message
	seeded []*domain.Message
}

// NewGenerator creates a generator with an empty book for every catalog instrument.
func NewGenerator(reg *domain.Registry, catalog *loader.Catalog, plan *loader.Plan, opts Options) (*Generator, error) {
	contraTmpl, ok := reg.Find(domain.AccountLMM, domain.KindNew, domain.PostureAtBest, domain.TIFDay)
	if !ok {
		return nil, fmt.Errorf("%w: no at-best template for contra liquidity", domain.ErrUnknownGroup)
	}
	if opts.Quantity <= 0 {
		opts.Quantity = DefaultOptions().Quantity
	}
	if opts.ContraIncrement <= 0 {
		opts.ContraIncrement = DefaultOptions().ContraIncrement
	}
	m := opts.Metrics
	if m == nil {
		m = &infra.Metrics{}
	}

	return &Generator{
		registry: reg,
		catalog:  catalog,
		plan:     plan,
		opts:     opts,
		metrics:  m,
		book:     NewBook(catalog.Instruments()),
		contra:   NewContraBook(contraTmpl, opts.Sender, opts.ContraIncrement),
		used:     make(map[int64]struct{}),
	}, nil
}

// Run processes events in order. It stops early if ctx is cancelled or an
// event cannot be processed. A panic dumps the state before propagating.
func (g *Generator) Run(ctx context.Context, events []domain.Event) error {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("CRITICAL_PANIC_DETECTED", slog.Any("panic", r), slog.Int("step", g.step))
			if g.opts.DumpPath != "" {
				g.DumpState(g.opts.DumpPath)
			}
			panic(fmt.Sprintf("HALTED: %v", r))
		}
	}()

	for _, ev := range events {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := g.Process(ev); err != nil {
			g.metrics.RecordError()
			return err
		}
	}
	return nil
}

// Process turns one event into a test message and updates the book.
func (g *Generator) Process(ev domain.Event) error {
	start := time.Now()

	inst, ok := g.catalog.Get(ev.Instrument)
	if !ok {
		return fmt.Errorf("event %d: %w: stock number %d", ev.Seq, domain.ErrUnknownInstrument, ev.Instrument)
	}
	if _, dup := g.used[ev.Seq]; dup || ev.Seq < 0 {
		return fmt.Errorf("event %d: %w", ev.Seq, domain.ErrSequenceReused)
	}
	g.used[ev.Seq] = struct{}{}

	// 1. Template from the model sequence, side alternating B/S
	tmpl := g.plan.At(g.step)
	side := domain.SideBuy
	if g.step%2 == 1 {
		side = domain.SideSell
	}

	msg := domain.NewMessage(domain.ClassTest, g.opts.Sender, ev.Seq, ev.Time, side, g.opts.Quantity, inst, tmpl)
	key := msg.BookKey()

	// 2. Link cancel/replace to a prior order before this message can rest
	if tmpl.Amends() {
		g.resolveOrig(msg, key)
	}

	// 3. Resting orders enter the book
	if tmpl.Enters() && tmpl.IsResting() {
		g.book.RecordResting(key, msg.ClOrdID)
		g.metrics.RecordResting()
	}

	// 4. Marketable orders need contra liquidity
	if tmpl.Enters() && tmpl.Posture == domain.PostureMarketable {
		g.metrics.RecordContra(g.contra.Require(msg))
	}

	g.test = append(g.test, msg)
	g.step++
	g.metrics.RecordEvent(time.Since(start).Nanoseconds())
	return nil
}

func (g *Generator) resolveOrig(msg *domain.Message, key domain.BookKey) {
	if id, ok := g.book.ResolveAndConsume(key); ok {
		msg.OrigClOrdID = id
		g.metrics.RecordBookHit()
		return
	}

	seed := g.seedFor(msg)
	if seed == nil {
		g.metrics.RecordSeedSkipped()
		slog.Warn("No resting order or seed for cancel",
			slog.String("clordid", msg.ClOrdID),
			slog.String("key", key.String()))
		return
	}
	msg.OrigClOrdID = seed.ClOrdID
	g.seeded = append(g.seeded, seed)
	g.metrics.RecordSeed()
}

// seedFor synthesizes the prior order a cancel or cancel-replace refers to.
// The seed rests at the message's own posture, so it shares the message's book key.
// Returns nil for a marketable cancel.
func (g *Generator) seedFor(msg *domain.Message) *domain.Message {
	posture := msg.Posture
	qty := g.opts.Quantity

	switch msg.Kind {
	case domain.KindCancel:
		if posture == domain.PostureMarketable {
			return nil
		}
	case domain.KindCancelReplace:
		if posture == domain.PostureMarketable {
			posture = domain.PostureAtBest
		} else {
			// The replace changes quantity, so the original is larger
			qty = 2 * g.opts.Quantity
		}
	default:
		return nil
	}

	tmpl, ok := g.registry.Find(msg.Account, domain.KindNew, posture, domain.TIFDay)
	if !ok {
		return nil
	}
	return domain.NewMessage(domain.ClassSeeded, g.opts.Sender, -msg.Seq, 0, msg.Side, qty, msg.Instrument, tmpl)
}

// Book exposes the simulated book (read-only use)
func (g *Generator) Book() *Book {
	return g.book
}

// Contra exposes the contra-liquidity records
func (g *Generator) Contra() *ContraBook {
	return g.contra
}

// TestMessages returns the test stream in generation order
func (g *Generator) TestMessages() []*domain.Message {
	return g.test
}

// Seeds returns the synthesized seed orders in generation order
func (g *Generator) Seeds() []*domain.Message {
	return g.seeded
}

// Finalize renumbers contra records then seeds and returns the seeded stream.
func (g *Generator) Finalize() []*domain.Message {
	return Finalize(g.contra.Records(), g.seeded)
}

// Summary returns the diagnostic report of the run so far
func (g *Generator) Summary() Summary {
	return Summary{
		Events:   g.step,
		Test:     len(g.test),
		Seeds:    len(g.seeded),
		Contra:   g.contra.Len(),
		BookKeys: g.book.Keys(),
		OpenKeys: g.book.NonEmpty(),
		Metrics:  g.metrics.Snapshot(),
	}
}

// DumpState writes the generation state to a file (for post-mortem).
func (g *Generator) DumpState(filename string) {
	slog.Info("Dumping generator state...", slog.String("file", filename))

	data := struct {
		Step   int                 `json:"step"`
		Book   map[string][]string `json:"book"`
		Contra []contraDump        `json:"contra"`
		Seeds  []string            `json:"seeds"`
	}{
		Step: g.step,
		Book: g.book.Snapshot(),
	}
	for _, rec := range g.contra.Records() {
		data.Contra = append(data.Contra, contraDump{
			Symbol:  rec.Instrument.Symbol,
			Side:    string(rec.Side),
			Qty:     rec.Qty,
			ClOrdID: rec.ClOrdID,
		})
	}
	for _, s := range g.seeded {
		data.Seeds = append(data.Seeds, s.ClOrdID)
	}

	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		slog.Error("Failed to marshal state", slog.Any("error", err))
		return
	}

	err = os.WriteFile(filename, b, 0644)
	if err != nil {
		slog.Error("Failed to write state dump", slog.Any("error", err))
	}
}

type contraDump struct {
	Symbol  string `json:"symbol"`
	Side    string `json:"side"`
	Qty     int64  `json:"qty"`
	ClOrdID string `json:"clordid"`
}
