// Package pattern evaluates boolean classification rules over sets of
// account codes.
package pattern

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Kind tags the pattern variant.
type Kind int

const (
	KindAnd Kind = iota + 1
	KindOr
	KindCode
)

func (k Kind) String() string {
	switch k {
	case KindAnd:
		return "and"
	case KindOr:
		return "or"
	case KindCode:
		return "code"
	default:
		return "invalid"
	}
}

// Pattern is a tagged union of AND, OR and CODE rules. The zero value never
// matches.
type Pattern struct {
	Kind     Kind
	Patterns []Pattern
	Regexes  []*regexp.Regexp
}

// ErrInvalidPattern indicates a malformed rule definition.
var ErrInvalidPattern = errors.New("pattern: invalid definition")

// And matches when every sub-pattern matches.
func And(patterns ...Pattern) Pattern {
	return Pattern{Kind: KindAnd, Patterns: patterns}
}

// Or matches when at least one sub-pattern matches.
func Or(patterns ...Pattern) Pattern {
	return Pattern{Kind: KindOr, Patterns: patterns}
}

// Code compiles the expressions into a CODE pattern.
func Code(exprs ...string) (Pattern, error) {
	regexes := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		re, err := regexp.Compile(expr)
		if err != nil {
			return Pattern{}, fmt.Errorf("%w: code %q: %v", ErrInvalidPattern, expr, err)
		}
		regexes = append(regexes, re)
	}
	return Pattern{Kind: KindCode, Regexes: regexes}, nil
}

// MustCode is Code for statically known expressions.
func MustCode(exprs ...string) Pattern {
	p, err := Code(exprs...)
	if err != nil {
		panic(err)
	}
	return p
}

// CodeSet is a set of account codes.
type CodeSet map[string]struct{}

// NewCodeSet builds a set from codes.
func NewCodeSet(codes ...string) CodeSet {
	s := make(CodeSet, len(codes))
	for _, c := range codes {
		s[c] = struct{}{}
	}
	return s
}

// Add inserts a code.
func (s CodeSet) Add(code string) { s[code] = struct{}{} }

// Matches evaluates p against codes. CODE is existential over both the
// regexes and the codes; AND over an empty list is true; OR over an empty
// list is false.
func Matches(p Pattern, codes CodeSet) bool {
	switch p.Kind {
	case KindAnd:
		for _, sub := range p.Patterns {
			if !Matches(sub, codes) {
				return false
			}
		}
		return true
	case KindOr:
		for _, sub := range p.Patterns {
			if Matches(sub, codes) {
				return true
			}
		}
		return false
	case KindCode:
		for _, re := range p.Regexes {
			for code := range codes {
				if re.MatchString(code) {
					return true
				}
			}
		}
		return false
	default:
		return false
	}
}

// Either constrains one or both legs of a voucher.
type Either struct {
	Debit  *Pattern `json:"debit,omitempty"`
	Credit *Pattern `json:"credit,omitempty"`
}

// IsZero reports whether no side is constrained.
func (e *Either) IsZero() bool {
	return e == nil || (e.Debit == nil && e.Credit == nil)
}

// MatchesEither is true when e is absent, or when the debit pattern matches
// the debit codes, or the credit pattern matches the credit codes.
func MatchesEither(e *Either, debitCodes, creditCodes CodeSet) bool {
	if e.IsZero() {
		return true
	}
	if e.Debit != nil && Matches(*e.Debit, debitCodes) {
		return true
	}
	return e.Credit != nil && Matches(*e.Credit, creditCodes)
}

// String renders the pattern in a compact prefix form.
func (p Pattern) String() string {
	switch p.Kind {
	case KindAnd, KindOr:
		parts := make([]string, 0, len(p.Patterns))
		for _, sub := range p.Patterns {
			parts = append(parts, sub.String())
		}
		return p.Kind.String() + "(" + strings.Join(parts, ", ") + ")"
	case KindCode:
		parts := make([]string, 0, len(p.Regexes))
		for _, re := range p.Regexes {
			parts = append(parts, "/"+re.String()+"/")
		}
		return "code(" + strings.Join(parts, ", ") + ")"
	default:
		return "invalid()"
	}
}

type wirePattern struct {
	And  []Pattern `json:"and,omitempty"`
	Or   []Pattern `json:"or,omitempty"`
	Code []string  `json:"code,omitempty"`
}

// UnmarshalJSON decodes {"and":[...]}, {"or":[...]} or {"code":["regex"]}.
// Exactly one key must be present.
func (p *Pattern) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	if len(raw) != 1 {
		return fmt.Errorf("%w: expected exactly one of and/or/code, got %d keys", ErrInvalidPattern, len(raw))
	}
	var wire wirePattern
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	switch {
	case raw["and"] != nil:
		*p = And(wire.And...)
	case raw["or"] != nil:
		*p = Or(wire.Or...)
	case raw["code"] != nil:
		if len(wire.Code) == 0 {
			return fmt.Errorf("%w: code requires at least one expression", ErrInvalidPattern)
		}
		compiled, err := Code(wire.Code...)
		if err != nil {
			return err
		}
		*p = compiled
	default:
		return fmt.Errorf("%w: unknown key", ErrInvalidPattern)
	}
	return nil
}

// MarshalJSON encodes the pattern in the same shape UnmarshalJSON accepts.
func (p Pattern) MarshalJSON() ([]byte, error) {
	switch p.Kind {
	case KindAnd:
		return json.Marshal(map[string][]Pattern{"and": nonNil(p.Patterns)})
	case KindOr:
		return json.Marshal(map[string][]Pattern{"or": nonNil(p.Patterns)})
	case KindCode:
		exprs := make([]string, 0, len(p.Regexes))
		for _, re := range p.Regexes {
			exprs = append(exprs, re.String())
		}
		return json.Marshal(map[string][]string{"code": exprs})
	default:
		return nil, fmt.Errorf("%w: cannot encode zero pattern", ErrInvalidPattern)
	}
}

func nonNil(ps []Pattern) []Pattern {
	if ps == nil {
		return []Pattern{}
	}
	return ps
}
