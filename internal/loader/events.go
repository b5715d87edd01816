package loader

import (
	"fmt"
	"io"
	"log/slog"

	"me_msggen/internal/domain"
)

// LoadEvents reads the event file: sequence,timestamp,instrument_id
func LoadEvents(path string) ([]domain.Event, error) {
	f, err := openTable(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	events, err := ParseEvents(path, f)
	if err != nil {
		return nil, err
	}
	slog.Info("Events loaded", slog.String("file", path), slog.Int("events", len(events)))
	return events, nil
}

// ParseEvents parses event lines in file order. Sequence numbers must be
// non-negative and unique within the file: they become order identifiers.
func ParseEvents(name string, r io.Reader) ([]domain.Event, error) {
	rows, err := readRows(name, r, 3)
	if err != nil {
		return nil, err
	}

	events := make([]domain.Event, 0, len(rows))
	seen := make(map[int64]int, len(rows))
	for _, row := range rows {
		seq, err := parseInt(name, row.line, "sequence", row.fields[0])
		if err != nil {
			return nil, err
		}
		if seq < 0 {
			return nil, domain.NewLineError(name, row.line,
				fmt.Errorf("%w: sequence %d is negative", domain.ErrMalformedLine, seq))
		}
		if first, dup := seen[seq]; dup {
			return nil, domain.NewLineError(name, row.line,
				fmt.Errorf("%w: sequence %d already used on line %d", domain.ErrMalformedLine, seq, first))
		}
		seen[seq] = row.line
		mtime, err := parseInt(name, row.line, "timestamp", row.fields[1])
		if err != nil {
			return nil, err
		}
		num, err := parseInt(name, row.line, "stock number", row.fields[2])
		if err != nil {
			return nil, err
		}
		events = append(events, domain.Event{Seq: seq, Time: mtime, Instrument: int(num)})
	}
	return events, nil
}
