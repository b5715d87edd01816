package domain

import "sort"

// Kind is the message type of a template
type Kind string

// Posture is the price posture relative to the assumed best price
type Posture string

const (
	KindNew           Kind = "new"
	KindCancel        Kind = "cxl"
	KindCancelReplace Kind = "cxlrpl"

	PostureBehind     Posture = "behind_nbbo"
	PostureAtBest     Posture = "on_nbbo"
	PostureMarketable Posture = "marketable"

	TIFDay = "DAY"
	TIFIOC = "IOC"

	AccountLMM  = "LMM"
	AccountDAST = "DAST"
)

// Template is one message group: the fixed attributes shared by every message of that group.
type Template struct {
	Code    string
	Account string
	Kind    Kind
	Posture Posture
	TIF     string
}

// IsResting reports whether an accepted order of this template rests in the book.
func (t Template) IsResting() bool {
	return t.TIF != TIFIOC && t.Posture != PostureMarketable
}

// Amends reports whether the template references a prior order (cancel or cancel-replace).
func (t Template) Amends() bool {
	return t.Kind == KindCancel || t.Kind == KindCancelReplace
}

// Enters reports whether the template enters a new order (new or cancel-replace).
func (t Template) Enters() bool {
	return t.Kind == KindNew || t.Kind == KindCancelReplace
}

// Registry is the immutable table of templates keyed by group code.
type Registry struct {
	groups map[string]Template
}

// DefaultRegistry returns the 22 message groups A..V.
func DefaultRegistry() *Registry {
	all := []Template{
		{"A", AccountLMM, KindNew, PostureBehind, TIFDay},
		{"B", AccountLMM, KindNew, PostureAtBest, TIFDay},
		{"C", AccountLMM, KindNew, PostureMarketable, TIFDay},

		{"D", AccountLMM, KindCancel, PostureBehind, TIFDay},
		{"E", AccountLMM, KindCancel, PostureAtBest, TIFDay},

		{"F", AccountLMM, KindCancelReplace, PostureBehind, TIFDay},
		{"G", AccountLMM, KindCancelReplace, PostureAtBest, TIFDay},
		{"H", AccountLMM, KindCancelReplace, PostureMarketable, TIFDay},

		{"I", AccountDAST, KindNew, PostureBehind, TIFDay},
		{"J", AccountDAST, KindNew, PostureAtBest, TIFDay},
		{"K", AccountDAST, KindNew, PostureMarketable, TIFDay},

		{"L", AccountDAST, KindNew, PostureBehind, TIFIOC},
		{"M", AccountDAST, KindNew, PostureAtBest, TIFIOC},
		{"N", AccountDAST, KindNew, PostureMarketable, TIFIOC},

		{"O", AccountDAST, KindCancel, PostureBehind, TIFDay},
		{"P", AccountDAST, KindCancel, PostureAtBest, TIFDay},

		{"Q", AccountDAST, KindCancelReplace, PostureBehind, TIFDay},
		{"R", AccountDAST, KindCancelReplace, PostureAtBest, TIFDay},
		{"S", AccountDAST, KindCancelReplace, PostureMarketable, TIFDay},

		{"T", AccountDAST, KindCancelReplace, PostureBehind, TIFIOC},
		{"U", AccountDAST, KindCancelReplace, PostureAtBest, TIFIOC},
		{"V", AccountDAST, KindCancelReplace, PostureMarketable, TIFIOC},
	}

	r := &Registry{groups: make(map[string]Template, len(all))}
	for _, t := range all {
		r.groups[t.Code] = t
	}
	return r
}

// Lookup returns the template for a group code
func (r *Registry) Lookup(code string) (Template, bool) {
	t, ok := r.groups[code]
	return t, ok
}

// Find returns the first template, in code order, matching all attributes.
func (r *Registry) Find(account string, kind Kind, posture Posture, tif string) (Template, bool) {
	for _, code := range r.Codes() {
		t := r.groups[code]
		if t.Account == account && t.Kind == kind && t.Posture == posture && t.TIF == tif {
			return t, true
		}
	}
	return Template{}, false
}

// Codes returns all group codes sorted
func (r *Registry) Codes() []string {
	codes := make([]string, 0, len(r.groups))
	for c := range r.groups {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

// Len returns the number of templates.
func (r *Registry) Len() int {
	return len(r.groups)
}
