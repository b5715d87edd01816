package engine

import (
	"me_msggen/internal/domain"
)

type contraKey struct {
	symbol string
	side   domain.Side
}

// ContraBook aggregates the resting liquidity marketable test orders need.
// One synthetic at-best order exists per (symbol, contra side); it grows by
// a fixed increment for every marketable order that crosses into it.
type ContraBook struct {
	template  domain.Template
	sender    int
	increment int64
	records   map[contraKey]*domain.Message
	order     []*domain.Message
}

// NewContraBook creates an empty aggregator. tmpl is the at-best template
// the synthetic orders are built from.
func NewContraBook(tmpl domain.Template, sender int, increment int64) *ContraBook {
	return &ContraBook{
		template:  tmpl,
		sender:    sender,
		increment: increment,
		records:   make(map[contraKey]*domain.Message),
	}
}

// Require adds one increment of contra liquidity for a marketable message.
// It reports whether a new record was created.
func (c *ContraBook) Require(msg *domain.Message) bool {
	key := contraKey{symbol: msg.Instrument.Symbol, side: msg.ContraSide()}
	if rec, ok := c.records[key]; ok {
		rec.Qty += c.increment
		return false
	}

	// Creation ordinal keeps Match identifiers distinct across keys
	ordinal := int64(len(c.order))
	rec := domain.NewMessage(domain.ClassMatch, c.sender, ordinal, 0, key.side, c.increment, msg.Instrument, c.template)
	c.records[key] = rec
	c.order = append(c.order, rec)
	return true
}

// Get returns the record for (symbol, side)
func (c *ContraBook) Get(symbol string, side domain.Side) (*domain.Message, bool) {
	rec, ok := c.records[contraKey{symbol: symbol, side: side}]
	return rec, ok
}

// Records returns all records in creation order
func (c *ContraBook) Records() []*domain.Message {
	return c.order
}

// Len returns the number of records
func (c *ContraBook) Len() int {
	return len(c.order)
}
