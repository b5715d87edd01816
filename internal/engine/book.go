package engine

import (
	"me_msggen/internal/domain"
)

// bookAccounts and bookLevels define the pre-created queues per instrument.
var bookAccounts = []string{domain.AccountLMM, domain.AccountDAST}

var bookLevels = []struct {
	side    domain.Side
	posture domain.Posture
}{
	{domain.SideBuy, domain.PostureAtBest},
	{domain.SideBuy, domain.PostureBehind},
	{domain.SideSell, domain.PostureAtBest},
	{domain.SideSell, domain.PostureBehind},
}

// Book simulates the engine's resting orders as one queue of order ids per key.
// Consumption takes the most recently recorded id, so each queue behaves as a stack.
type Book struct {
	queues map[domain.BookKey][]string
	keys   []domain.BookKey // Creation order, for deterministic reports
}

// KeyDepth is a book key with its outstanding ids
type KeyDepth struct {
	Key string   `json:"key"`
	IDs []string `json:"ids"`
}

// NewBook creates empty queues for every instrument and the four price points of each account.
func NewBook(instruments []domain.Instrument) *Book {
	b := &Book{queues: make(map[domain.BookKey][]string, len(instruments)*len(bookAccounts)*len(bookLevels))}
	for _, inst := range instruments {
		for _, acct := range bookAccounts {
			for _, lvl := range bookLevels {
				b.ensure(domain.BookKey{
					Account: acct,
					Side:    lvl.side,
					Symbol:  inst.Symbol,
					Price:   domain.PriceFor(lvl.side, lvl.posture).StringFixed(2),
				})
			}
		}
	}
	return b
}

func (b *Book) ensure(key domain.BookKey) {
	if _, ok := b.queues[key]; !ok {
		b.queues[key] = nil
		b.keys = append(b.keys, key)
	}
}

// RecordResting appends id to the queue for key
func (b *Book) RecordResting(key domain.BookKey, id string) {
	b.ensure(key)
	b.queues[key] = append(b.queues[key], id)
}

// ResolveAndConsume removes and returns the most recently recorded id for key.
// ok is false when the queue is empty; the caller must then synthesize a seed.
func (b *Book) ResolveAndConsume(key domain.BookKey) (string, bool) {
	q := b.queues[key]
	if len(q) == 0 {
		return "", false
	}
	id := q[len(q)-1]
	b.queues[key] = q[:len(q)-1]
	return id, true
}

// Contains reports whether id is outstanding under key
func (b *Book) Contains(key domain.BookKey, id string) bool {
	for _, v := range b.queues[key] {
		if v == id {
			return true
		}
	}
	return false
}

// Depth returns the number of outstanding ids for key
func (b *Book) Depth(key domain.BookKey) int {
	return len(b.queues[key])
}

// Keys returns the number of queues, empty or not
func (b *Book) Keys() int {
	return len(b.keys)
}

// NonEmpty returns every key still holding ids, in creation order
func (b *Book) NonEmpty() []KeyDepth {
	var result []KeyDepth
	for _, key := range b.keys {
		if q := b.queues[key]; len(q) > 0 {
			ids := make([]string, len(q))
			copy(ids, q)
			result = append(result, KeyDepth{Key: key.String(), IDs: ids})
		}
	}
	return result
}

// Snapshot returns a copy of all non-empty queues keyed by their string form
func (b *Book) Snapshot() map[string][]string {
	result := make(map[string][]string)
	for _, kd := range b.NonEmpty() {
		result[kd.Key] = kd.IDs
	}
	return result
}
