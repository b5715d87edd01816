package engine

import (
	"log/slog"

	"me_msggen/internal/domain"
	"me_msggen/internal/infra"
)

// Finalize assigns the seeded stream its own numbering: contra records
// first, then seeds, with seq 0..N-1 and time = seq * 100. Identifiers
// are not recomputed.
func Finalize(contra, seeds []*domain.Message) []*domain.Message {
	out := make([]*domain.Message, 0, len(contra)+len(seeds))
	out = append(out, contra...)
	out = append(out, seeds...)

	for i, msg := range out {
		msg.Seq = int64(i)
		msg.Time = int64(i) * 100
	}
	return out
}

// Summary is the end-of-run diagnostic report
type Summary struct {
	Events   int
	Test     int
	Seeds    int
	Contra   int
	BookKeys int
	OpenKeys []KeyDepth
	Metrics  infra.MetricsSnapshot
}

// Log writes the summary through slog
func (s Summary) Log() {
	slog.Info("Generation summary",
		slog.Int("events", s.Events),
		slog.Int("test_messages", s.Test),
		slog.Int("seed_orders", s.Seeds),
		slog.Int("contra_records", s.Contra),
		slog.Int("book_keys", s.BookKeys),
		slog.Int("open_keys", len(s.OpenKeys)))

	for _, kd := range s.OpenKeys {
		slog.Info("Open book key", slog.String("key", kd.Key), slog.Int("size", len(kd.IDs)))
	}
}
