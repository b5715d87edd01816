package loader

import (
	"io"
	"log/slog"
	"sort"

	"me_msggen/internal/domain"
)

// Catalog maps stock numbers to instruments
type Catalog struct {
	byNumber map[int]domain.Instrument
}

// NewCatalog builds a catalog from instruments; later duplicates win.
func NewCatalog(instruments ...domain.Instrument) *Catalog {
	c := &Catalog{byNumber: make(map[int]domain.Instrument, len(instruments))}
	for _, inst := range instruments {
		c.byNumber[inst.Number] = inst
	}
	return c
}

// LoadCatalog reads the stock table: numeric_id,symbol,instrument_id
func LoadCatalog(path string) (*Catalog, error) {
	f, err := openTable(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c, err := ParseCatalog(path, f)
	if err != nil {
		return nil, err
	}
	slog.Info("Stock table loaded", slog.String("file", path), slog.Int("stocks", c.Len()))
	return c, nil
}

// ParseCatalog parses stock table lines from r; name labels errors.
func ParseCatalog(name string, r io.Reader) (*Catalog, error) {
	rows, err := readRows(name, r, 3)
	if err != nil {
		return nil, err
	}

	c := &Catalog{byNumber: make(map[int]domain.Instrument, len(rows))}
	for _, row := range rows {
		num, err := parseInt(name, row.line, "stock number", row.fields[0])
		if err != nil {
			return nil, err
		}
		instID, err := parseInt(name, row.line, "instrument id", row.fields[2])
		if err != nil {
			return nil, err
		}
		if _, dup := c.byNumber[int(num)]; dup {
			slog.Debug("Duplicate stock number overwritten", slog.Int64("number", num), slog.Int("line", row.line))
		}
		c.byNumber[int(num)] = domain.Instrument{
			Number:       int(num),
			Symbol:       row.fields[1],
			InstrumentID: int(instID),
		}
	}
	return c, nil
}

// Get returns the instrument for a stock number
func (c *Catalog) Get(number int) (domain.Instrument, bool) {
	inst, ok := c.byNumber[number]
	return inst, ok
}

// Len returns the number of instruments
func (c *Catalog) Len() int {
	return len(c.byNumber)
}

// Instruments returns all instruments ordered by stock number
func (c *Catalog) Instruments() []domain.Instrument {
	result := make([]domain.Instrument, 0, len(c.byNumber))
	for _, inst := range c.byNumber {
		result = append(result, inst)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Number < result[j].Number
	})
	return result
}
