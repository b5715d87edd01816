package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"me_msggen/internal/domain"
)

// row is one parsed input line with its 1-based line number
type row struct {
	line   int
	fields []string
}

// openTable opens an input table, mapping any open failure onto ErrMissingInput.
func openTable(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, domain.NewInputError(path, fmt.Errorf("%w: %v", domain.ErrMissingInput, err))
	}
	return f, nil
}

// readRows reads comma-separated lines without header. Blank lines are
// skipped, every field is trimmed, and any line with a field count other
// than want aborts the read.
func readRows(name string, r io.Reader, want int) ([]row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true

	var rows []row
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, domain.NewLineError(name, pe.Line, fmt.Errorf("%w: %v", domain.ErrMalformedLine, pe.Err))
			}
			return nil, domain.NewInputError(name, err)
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		line, _ := cr.FieldPos(0)
		if len(rec) != want {
			return nil, domain.NewLineError(name, line,
				fmt.Errorf("%w: want %d fields, got %d", domain.ErrMalformedLine, want, len(rec)))
		}
		fields := make([]string, len(rec))
		for i, f := range rec {
			fields[i] = strings.TrimSpace(f)
		}
		rows = append(rows, row{line: line, fields: fields})
	}
	return rows, nil
}

func parseInt(name string, line int, field, value string) (int64, error) {
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, domain.NewLineError(name, line,
			fmt.Errorf("%w: %s %q is not numeric", domain.ErrMalformedLine, field, value))
	}
	return n, nil
}
