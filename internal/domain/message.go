package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Instrument is one row of the stock table
type Instrument struct {
	Number       int    `json:"number"`
	Symbol       string `json:"symbol"`
	InstrumentID int    `json:"instrument_id"`
}

// Event drives one generation step
type Event struct {
	Seq        int64 `json:"seq"`
	Time       int64 `json:"time"`
	Instrument int   `json:"instrument"`
}

// Side of an order
type Side string

const (
	SideBuy  Side = "B"
	SideSell Side = "S"
)

// Contra returns the opposite side
func (s Side) Contra() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// Class tells which stream produced a message; it tags the order identifier.
type Class string

const (
	ClassTest   Class = "test"
	ClassSeeded Class = "seeded"
	ClassMatch  Class = "match"
)

var (
	priceBid       = decimal.RequireFromString("50.00")
	priceBehindBid = decimal.RequireFromString("49.99")
	priceAsk       = decimal.RequireFromString("50.01")
	priceBehindAsk = decimal.RequireFromString("50.02")
)

// PriceFor maps (side, posture) onto the four fixed price points.
// A marketable order crosses to the opposite side's at-best price.
func PriceFor(side Side, posture Posture) decimal.Decimal {
	if side == SideBuy {
		switch posture {
		case PostureAtBest:
			return priceBid
		case PostureBehind:
			return priceBehindBid
		default:
			return priceAsk
		}
	}
	switch posture {
	case PostureAtBest:
		return priceAsk
	case PostureBehind:
		return priceBehindAsk
	default:
		return priceBid
	}
}

// BookKey identifies one resting-order queue
type BookKey struct {
	Account string
	Side    Side
	Symbol  string
	Price   string // Fixed two-decimal rendering
}

func (k BookKey) String() string {
	return k.Account + ":" + string(k.Side) + ":" + k.Symbol + ":" + k.Price
}

// Message is a single order-entry record
type Message struct {
	Template

	Class       Class
	Sender      int
	Seq         int64 // Always non-negative; the class carries the seed tag
	Time        int64
	Side        Side
	Qty         int64
	Instrument  Instrument
	Price       decimal.Decimal
	ClOrdID     string
	OrigClOrdID string // Set only for cancel and cancel-replace
}

// NewMessage builds a message and derives its price and identifier.
// A negative seq is stored as its absolute value.
func NewMessage(class Class, sender int, seq, mtime int64, side Side, qty int64, inst Instrument, tmpl Template) *Message {
	if seq < 0 {
		seq = -seq
	}
	m := &Message{
		Template:   tmpl,
		Class:      class,
		Sender:     sender,
		Seq:        seq,
		Time:       mtime,
		Side:       side,
		Qty:        qty,
		Instrument: inst,
		Price:      PriceFor(side, tmpl.Posture),
	}
	m.ClOrdID = ClOrdID(class, sender, side, tmpl.Account, seq)
	return m
}

// ClOrdID derives the order identifier: sender:side:account:[Seed:|Match:]seq
func ClOrdID(class Class, sender int, side Side, account string, seq int64) string {
	if seq < 0 {
		seq = -seq
	}
	tag := ""
	switch class {
	case ClassSeeded:
		tag = "Seed:"
	case ClassMatch:
		tag = "Match:"
	}
	return fmt.Sprintf("%d:%s:%s:%s%08d", sender, side, account, tag, seq)
}

// PriceString renders the price with two decimals
func (m *Message) PriceString() string {
	return m.Price.StringFixed(2)
}

// BookKey returns the queue this message rests in or cancels against.
// Marketable messages key on their own side's at-best price.
func (m *Message) BookKey() BookKey {
	price := m.Price
	if m.Posture == PostureMarketable {
		price = PriceFor(m.Side, PostureAtBest)
	}
	return BookKey{
		Account: m.Account,
		Side:    m.Side,
		Symbol:  m.Instrument.Symbol,
		Price:   price.StringFixed(2),
	}
}

// ContraSide returns the side a counter-order must rest on
func (m *Message) ContraSide() Side {
	return m.Side.Contra()
}
