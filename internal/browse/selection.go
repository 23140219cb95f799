package browse

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrInvalidSelection indicates malformed or out-of-range selection input.
// The caller reports it and prompts again; it is never fatal.
var ErrInvalidSelection = errors.New("invalid selection")

// SelectionKind discriminates what a parsed selection asks for.
type SelectionKind int

const (
	// SelectIndices resolves to one or more 1-based entry indices.
	SelectIndices SelectionKind = iota

	// SelectParent is the lone ".." token: navigate to the parent.
	SelectParent

	// SelectCurrent is a lone "." or "d" token: confirm the current path.
	SelectCurrent
)

// Selection is the result of parsing one line of selection input.
type Selection struct {
	Kind SelectionKind

	// Indices holds the resolved 1-based indices, deduplicated and sorted.
	// Only set when Kind is SelectIndices.
	Indices []int
}

// ParseSelection parses a raw token string against n listed entries.
//
// Grammar: comma-separated tokens, each a bare integer or a "lo-hi" range.
// The literals ".." (parent) and "."/"d" (confirm current) are only valid
// when they make up the entire input. Parsing is atomic: one bad token
// rejects the whole input, valid tokens alongside it are not applied.
//
// Parameters:
//   - raw: the user-entered token string
//   - n: the current entry count; indices must fall within [1, n]
//
// Returns:
//   - Selection: the parsed selection
//   - error: ErrInvalidSelection (wrapped with detail) on any bad input
func ParseSelection(raw string, n int) (Selection, error) {
	trimmed := strings.TrimSpace(raw)

	switch strings.ToLower(trimmed) {
	case "..":
		return Selection{Kind: SelectParent}, nil
	case ".", "d":
		return Selection{Kind: SelectCurrent}, nil
	}

	seen := make(map[int]bool)
	for _, token := range strings.Split(trimmed, ",") {
		token = strings.TrimSpace(token)

		// Navigation literals cannot be mixed with numeric tokens.
		if token == ".." || strings.EqualFold(token, ".") || strings.EqualFold(token, "d") {
			return Selection{}, fmt.Errorf("%w: %q cannot be combined with other tokens", ErrInvalidSelection, token)
		}

		lo, hi, err := parseToken(token)
		if err != nil {
			return Selection{}, err
		}
		if lo < 1 || hi > n {
			return Selection{}, fmt.Errorf("%w: %q is outside 1-%d", ErrInvalidSelection, token, n)
		}
		for i := lo; i <= hi; i++ {
			seen[i] = true
		}
	}

	if len(seen) == 0 {
		return Selection{}, fmt.Errorf("%w: empty input", ErrInvalidSelection)
	}

	indices := make([]int, 0, len(seen))
	for i := range seen {
		indices = append(indices, i)
	}
	sort.Ints(indices)

	return Selection{Kind: SelectIndices, Indices: indices}, nil
}

// parseToken parses a single token into an inclusive [lo, hi] span.
// A bare integer yields lo == hi.
func parseToken(token string) (lo, hi int, err error) {
	if lo, hi, ok := parseRange(token); ok {
		if lo > hi {
			return 0, 0, fmt.Errorf("%w: range %q is inverted", ErrInvalidSelection, token)
		}
		return lo, hi, nil
	}

	i, convErr := strconv.Atoi(token)
	if convErr != nil {
		return 0, 0, fmt.Errorf("%w: %q is not a number or range", ErrInvalidSelection, token)
	}
	return i, i, nil
}

// parseRange splits a "lo-hi" token. Returns ok == false when the token is
// not shaped like a range at all (so it can be retried as a bare integer).
func parseRange(token string) (lo, hi int, ok bool) {
	dash := strings.Index(token, "-")
	if dash <= 0 || dash == len(token)-1 {
		return 0, 0, false
	}

	lo, errLo := strconv.Atoi(strings.TrimSpace(token[:dash]))
	hi, errHi := strconv.Atoi(strings.TrimSpace(token[dash+1:]))
	if errLo != nil || errHi != nil {
		return 0, 0, false
	}
	return lo, hi, true
}
