package loader

import (
	"fmt"
	"io"
	"log/slog"

	"me_msggen/internal/domain"
)

// Plan is the model sequence: position in stream -> message group.
// It repeats with period Len() across the whole event stream.
type Plan struct {
	templates []domain.Template
}

// NewPlan builds a plan from group codes in index order.
func NewPlan(reg *domain.Registry, codes ...string) (*Plan, error) {
	if len(codes) == 0 {
		return nil, domain.ErrEmptyPlan
	}
	p := &Plan{templates: make([]domain.Template, len(codes))}
	for i, code := range codes {
		tmpl, ok := reg.Lookup(code)
		if !ok {
			return nil, fmt.Errorf("%w: %q at index %d", domain.ErrUnknownGroup, code, i)
		}
		p.templates[i] = tmpl
	}
	return p, nil
}

// LoadPlan reads the model sequence file: index,group_code
func LoadPlan(path string, reg *domain.Registry) (*Plan, error) {
	f, err := openTable(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p, err := ParsePlan(path, f, reg)
	if err != nil {
		return nil, err
	}
	slog.Info("Model sequence loaded", slog.String("file", path), slog.Int("entries", p.Len()))
	return p, nil
}

// ParsePlan parses model sequence lines. Indices must cover 0..n-1 exactly;
// a repeated index overwrites the earlier entry.
func ParsePlan(name string, r io.Reader, reg *domain.Registry) (*Plan, error) {
	rows, err := readRows(name, r, 2)
	if err != nil {
		return nil, err
	}

	byIndex := make(map[int]string, len(rows))
	for _, row := range rows {
		idx, err := parseInt(name, row.line, "index", row.fields[0])
		if err != nil {
			return nil, err
		}
		code := row.fields[1]
		if _, ok := reg.Lookup(code); !ok {
			return nil, domain.NewLineError(name, row.line, fmt.Errorf("%w: %q", domain.ErrUnknownGroup, code))
		}
		byIndex[int(idx)] = code
	}
	if len(byIndex) == 0 {
		return nil, domain.NewInputError(name, domain.ErrEmptyPlan)
	}

	codes := make([]string, len(byIndex))
	for i := range codes {
		code, ok := byIndex[i]
		if !ok {
			return nil, domain.NewInputError(name, fmt.Errorf("%w: index %d missing", domain.ErrPlanGap, i))
		}
		codes[i] = code
	}
	return NewPlan(reg, codes...)
}

// At returns the template for a generation step
func (p *Plan) At(step int) domain.Template {
	return p.templates[step%len(p.templates)]
}

// Len returns the cycle length
func (p *Plan) Len() int {
	return len(p.templates)
}
