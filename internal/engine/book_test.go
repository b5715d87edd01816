package engine

import (
	"testing"

	"me_msggen/internal/domain"
)

func TestNewBook_PrecreatesKeys(t *testing.T) {
	book := NewBook([]domain.Instrument{{Number: 1, Symbol: "XYZ"}, {Number: 2, Symbol: "ABC"}})

	// 2 instruments x 2 accounts x 4 price points
	if book.Keys() != 16 {
		t.Fatalf("Expected 16 keys, got %d", book.Keys())
	}
	if len(book.NonEmpty()) != 0 {
		t.Error("Expected all queues empty")
	}
}

func TestBook_ResolveAndConsumeIsLIFO(t *testing.T) {
	book := NewBook([]domain.Instrument{{Number: 1, Symbol: "XYZ"}})
	key := domain.BookKey{Account: domain.AccountLMM, Side: domain.SideBuy, Symbol: "XYZ", Price: "49.99"}

	book.RecordResting(key, "first")
	book.RecordResting(key, "second")

	if book.Depth(key) != 2 {
		t.Fatalf("Expected depth 2, got %d", book.Depth(key))
	}

	id, ok := book.ResolveAndConsume(key)
	if !ok || id != "second" {
		t.Errorf("Expected most recent id 'second', got %q (%v)", id, ok)
	}
	id, ok = book.ResolveAndConsume(key)
	if !ok || id != "first" {
		t.Errorf("Expected 'first', got %q (%v)", id, ok)
	}

	if _, ok := book.ResolveAndConsume(key); ok {
		t.Error("Expected not found on empty queue")
	}
}

func TestBook_NonEmptyReport(t *testing.T) {
	book := NewBook([]domain.Instrument{{Number: 1, Symbol: "XYZ"}})
	key := domain.BookKey{Account: domain.AccountDAST, Side: domain.SideSell, Symbol: "XYZ", Price: "50.02"}
	book.RecordResting(key, "id-1")

	open := book.NonEmpty()
	if len(open) != 1 {
		t.Fatalf("Expected 1 open key, got %d", len(open))
	}
	if open[0].Key != "DAST:S:XYZ:50.02" || len(open[0].IDs) != 1 {
		t.Errorf("Unexpected report %+v", open[0])
	}

	// Report is a copy
	open[0].IDs[0] = "mutated"
	if !book.Contains(key, "id-1") {
		t.Error("NonEmpty must not expose internal queues")
	}
}

func TestContraBook_Accumulates(t *testing.T) {
	reg := domain.DefaultRegistry()
	tmplB, _ := reg.Lookup("B")
	tmplC, _ := reg.Lookup("C")
	xyz := domain.Instrument{Number: 1, Symbol: "XYZ"}
	abc := domain.Instrument{Number: 2, Symbol: "ABC"}

	cb := NewContraBook(tmplB, 1, 100)

	buy := domain.NewMessage(domain.ClassTest, 1, 1, 0, domain.SideBuy, 100, xyz, tmplC)
	if !cb.Require(buy) {
		t.Error("First Require should create a record")
	}
	if cb.Require(buy) {
		t.Error("Second Require should grow the record")
	}
	cb.Require(domain.NewMessage(domain.ClassTest, 1, 2, 0, domain.SideBuy, 100, abc, tmplC))

	rec, ok := cb.Get("XYZ", domain.SideSell)
	if !ok {
		t.Fatal("Expected contra record on sell side")
	}
	if rec.Qty != 200 {
		t.Errorf("Expected qty 200, got %d", rec.Qty)
	}
	if rec.PriceString() != "50.01" || rec.Posture != domain.PostureAtBest {
		t.Errorf("Contra record should rest at best: %s %s", rec.PriceString(), rec.Posture)
	}
	if cb.Len() != 2 {
		t.Errorf("Expected 2 records, got %d", cb.Len())
	}

	other, _ := cb.Get("ABC", domain.SideSell)
	if other.ClOrdID == rec.ClOrdID {
		t.Errorf("Contra identifiers collide: %s", rec.ClOrdID)
	}
}

func TestFinalize(t *testing.T) {
	reg := domain.DefaultRegistry()
	tmpl, _ := reg.Lookup("B")
	inst := domain.Instrument{Number: 1, Symbol: "XYZ"}

	contra := []*domain.Message{domain.NewMessage(domain.ClassMatch, 1, 0, 0, domain.SideSell, 100, inst, tmpl)}
	seeds := []*domain.Message{
		domain.NewMessage(domain.ClassSeeded, 1, -9, 0, domain.SideBuy, 100, inst, tmpl),
		domain.NewMessage(domain.ClassSeeded, 1, -4, 0, domain.SideSell, 200, inst, tmpl),
	}
	seedID := seeds[0].ClOrdID

	out := Finalize(contra, seeds)

	if len(out) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(out))
	}
	if out[0] != contra[0] {
		t.Error("Contra records must come first")
	}
	for i, msg := range out {
		if msg.Seq != int64(i) || msg.Time != int64(i)*100 {
			t.Errorf("record %d: seq=%d time=%d", i, msg.Seq, msg.Time)
		}
	}
	if out[1].ClOrdID != seedID {
		t.Error("Finalize must not change identifiers")
	}
}
