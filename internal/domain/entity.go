package domain

import (
	"fmt"
	"time"
)

// RunRecord is the archived summary of one generation run
type RunRecord struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	StockFile    string    `json:"stock_file"`
	EventFile    string    `json:"event_file"`
	ModelSeqFile string    `json:"model_seq_file"`
	TestCount    int       `json:"test_count"`
	SeededCount  int       `json:"seeded_count"`
	OpenKeys     int       `json:"open_keys"` // Book keys still holding resting orders
	CreatedAt    time.Time `json:"created_at"`
}

// ArchivedMessage is one formatted record of a run, in emission order
type ArchivedMessage struct {
	ID          uint   `gorm:"primaryKey" json:"-"`
	RunID       string `gorm:"index" json:"run_id"`
	Stream      string `gorm:"index" json:"stream"` // "test" or "seeded"
	Ordinal     int    `json:"ordinal"`
	Seq         int64  `json:"seq"`
	Time        int64  `json:"time"`
	Kind        string `json:"kind"`
	Symbol      string `json:"symbol"`
	Price       string `json:"price"`
	TIF         string `json:"tif"`
	Account     string `json:"account"`
	ClOrdID     string `gorm:"column:clordid;index" json:"clordid"`
	OrigClOrdID string `gorm:"column:orig_clordid" json:"orig_clordid,omitempty"`
}

const (
	StreamTest   = "test"
	StreamSeeded = "seeded"
)

// Record renders the archived row back into its wire record
func (m ArchivedMessage) Record() string {
	rec := fmt.Sprintf("%d,%d,%s,%s,%s,%s,%s,%s", m.Seq, m.Time, m.Kind, m.Symbol, m.Price, m.TIF, m.Account, m.ClOrdID)
	if m.Kind == string(KindCancel) || m.Kind == string(KindCancelReplace) {
		rec += "," + m.OrigClOrdID
	}
	return rec
}
