// Package selection parses column-selection lists and answers membership queries.
//
// Grammar:
//
//	List  = Token { "," Token } ;
//	Token = Index [ "-" [ Index ] ] | "-" Index ;
//	Index = Digit { Digit } ;
//
// "N" selects one column, "N-M" an inclusive range, "N-" every column from N
// on, and "-M" is shorthand for "0-M". Whitespace is not allowed.
package selection

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrMalformed is wrapped by every parse failure.
var ErrMalformed = errors.New("malformed column selection")

// Error describes where a selection list failed to parse.
type Error struct {
	// Spec is the full text that was parsed.
	Spec string
	// Offset is the byte offset of the offending token.
	Offset int
	// Reason says what was wrong with it.
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v %q at offset %d: %s", ErrMalformed, e.Spec, e.Offset, e.Reason)
}

// Unwrap returns ErrMalformed.
func (e *Error) Unwrap() error {
	return ErrMalformed
}

// Range is an inclusive span of column indices.
type Range struct {
	Low, High int
}

// Selection is a parsed column-selection list.
// A nil *Selection selects every column.
type Selection struct {
	ranges    []Range
	openEnded bool
	floor     int
}

// Parse parses spec. Parsing is atomic: on error no Selection is returned.
func Parse(spec string) (*Selection, error) {
	p := &parser{spec: spec}
	sel, err := p.parseList()
	if err != nil {
		return nil, err
	}
	sel.normalize()
	return sel, nil
}

// MustParse is like Parse but panics on error.
func MustParse(spec string) *Selection {
	sel, err := Parse(spec)
	if err != nil {
		panic(err)
	}
	return sel
}

// Contains reports whether column col is selected.
func (s *Selection) Contains(col int) bool {
	if s == nil {
		return true
	}
	if col < 0 {
		return false
	}
	if s.openEnded && col >= s.floor {
		return true
	}
	i := sort.Search(len(s.ranges), func(i int) bool { return s.ranges[i].High >= col })
	return i < len(s.ranges) && s.ranges[i].Low <= col
}

// Ranges returns the closed ranges in ascending order, excluding the open-ended tail.
func (s *Selection) Ranges() []Range {
	if s == nil {
		return nil
	}
	out := make([]Range, len(s.ranges))
	copy(out, s.ranges)
	return out
}

// OpenFloor returns the first column of the open-ended tail, if any.
func (s *Selection) OpenFloor() (int, bool) {
	if s == nil {
		return 0, true
	}
	return s.floor, s.openEnded
}

// String renders the selection in canonical form.
func (s *Selection) String() string {
	if s == nil {
		return "0-"
	}
	parts := make([]string, 0, len(s.ranges)+1)
	for _, r := range s.ranges {
		if r.Low == r.High {
			parts = append(parts, strconv.Itoa(r.Low))
		} else {
			parts = append(parts, strconv.Itoa(r.Low)+"-"+strconv.Itoa(r.High))
		}
	}
	if s.openEnded {
		parts = append(parts, strconv.Itoa(s.floor)+"-")
	}
	return strings.Join(parts, ",")
}

// normalize sorts and merges ranges and folds those touching the open tail into it.
func (s *Selection) normalize() {
	sort.Slice(s.ranges, func(i, j int) bool { return s.ranges[i].Low < s.ranges[j].Low })
	merged := s.ranges[:0]
	for _, r := range s.ranges {
		if n := len(merged); n > 0 && r.Low <= merged[n-1].High+1 {
			if r.High > merged[n-1].High {
				merged[n-1].High = r.High
			}
			continue
		}
		merged = append(merged, r)
	}
	s.ranges = merged
	if !s.openEnded {
		return
	}
	for n := len(s.ranges); n > 0 && s.ranges[n-1].High >= s.floor-1; n = len(s.ranges) {
		if s.ranges[n-1].Low < s.floor {
			s.floor = s.ranges[n-1].Low
		}
		s.ranges = s.ranges[:n-1]
	}
}

// parser is a recursive descent parser over the selection grammar.
type parser struct {
	spec string
	pos  int
}

// parseList parses List = Token { "," Token }.
func (p *parser) parseList() (*Selection, error) {
	sel := &Selection{}
	for {
		if err := p.parseToken(sel); err != nil {
			return nil, err
		}
		if p.pos == len(p.spec) {
			return sel, nil
		}
		if p.spec[p.pos] != ',' {
			return nil, p.fail(p.pos, fmt.Sprintf("unexpected %q", p.spec[p.pos]))
		}
		p.pos++
	}
}

// parseToken parses Token = Index [ "-" [ Index ] ] | "-" Index.
func (p *parser) parseToken(sel *Selection) error {
	start := p.pos
	if p.peek() == '-' {
		p.pos++
		high, err := p.parseIndex()
		if err != nil {
			return err
		}
		sel.ranges = append(sel.ranges, Range{Low: 0, High: high})
		return nil
	}

	low, err := p.parseIndex()
	if err != nil {
		return err
	}
	if p.peek() != '-' {
		sel.ranges = append(sel.ranges, Range{Low: low, High: low})
		return nil
	}
	p.pos++

	if c := p.peek(); c == ',' || c == 0 {
		if !sel.openEnded || low < sel.floor {
			sel.floor = low
		}
		sel.openEnded = true
		return nil
	}

	high, err := p.parseIndex()
	if err != nil {
		return err
	}
	if high < low {
		return p.fail(start, fmt.Sprintf("range %d-%d is descending", low, high))
	}
	sel.ranges = append(sel.ranges, Range{Low: low, High: high})
	return nil
}

// parseIndex parses Index = Digit { Digit }.
func (p *parser) parseIndex() (int, error) {
	start := p.pos
	for p.pos < len(p.spec) && p.spec[p.pos] >= '0' && p.spec[p.pos] <= '9' {
		p.pos++
	}
	if p.pos == start {
		if p.pos == len(p.spec) {
			return 0, p.fail(start, "expected column index")
		}
		return 0, p.fail(start, fmt.Sprintf("expected column index, got %q", p.spec[p.pos]))
	}
	n, err := strconv.Atoi(p.spec[start:p.pos])
	if err != nil {
		return 0, p.fail(start, "column index out of range")
	}
	return n, nil
}

// peek returns the current byte, or 0 at the end of input.
func (p *parser) peek() byte {
	if p.pos >= len(p.spec) {
		return 0
	}
	return p.spec[p.pos]
}

func (p *parser) fail(offset int, reason string) error {
	return &Error{Spec: p.spec, Offset: offset, Reason: reason}
}
