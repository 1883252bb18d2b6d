// Package lines implements the compact line-range notation used when
// re-presenting document windows ("5-10,15,20-22") and the omission
// compression applied to numbered line listings.
package lines

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// MarkerNumber is the line number assigned to synthetic omission markers.
const MarkerNumber = -1

// Line pairs a 1-based line number with its content. Markers produced by
// Compress carry MarkerNumber instead of a real line number.
type Line struct {
	Number  int
	Content string
}

// FormatError reports a malformed range specification token.
type FormatError struct {
	Spec   string
	Token  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid range spec %q: token %q: %s", e.Spec, e.Token, e.Reason)
}

// ParseRanges expands a comma-separated range spec into the set of line
// numbers it covers. Each token is a single integer or an inclusive "a-b"
// range. An empty spec yields an empty set. Reversed ranges are rejected.
func ParseRanges(spec string) (map[int]bool, error) {
	set := make(map[int]bool)
	trimmed := strings.TrimSpace(spec)
	if trimmed == "" {
		return set, nil
	}

	for _, token := range strings.Split(trimmed, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			return nil, &FormatError{Spec: spec, Token: token, Reason: "empty token"}
		}
		if idx := strings.Index(token, "-"); idx > 0 {
			start, err := parseBound(spec, token, token[:idx])
			if err != nil {
				return nil, err
			}
			end, err := parseBound(spec, token, token[idx+1:])
			if err != nil {
				return nil, err
			}
			if end < start {
				return nil, &FormatError{Spec: spec, Token: token, Reason: "reversed range"}
			}
			for n := start; n <= end; n++ {
				set[n] = true
			}
			continue
		}
		n, err := parseBound(spec, token, token)
		if err != nil {
			return nil, err
		}
		set[n] = true
	}
	return set, nil
}

func parseBound(spec, token, raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, &FormatError{Spec: spec, Token: token, Reason: "non-numeric bound"}
	}
	if n < 1 {
		return 0, &FormatError{Spec: spec, Token: token, Reason: "line numbers start at 1"}
	}
	return n, nil
}

// FormatRanges renders a set of line numbers in the compact notation parsed
// by ParseRanges: contiguous runs collapse to "a-b", singletons stay bare,
// runs appear in ascending order.
func FormatRanges(set map[int]bool) string {
	if len(set) == 0 {
		return ""
	}

	nums := make([]int, 0, len(set))
	for n := range set {
		nums = append(nums, n)
	}
	sort.Ints(nums)

	var tokens []string
	start, end := nums[0], nums[0]
	flush := func() {
		if start == end {
			tokens = append(tokens, strconv.Itoa(start))
		} else {
			tokens = append(tokens, fmt.Sprintf("%d-%d", start, end))
		}
	}
	for _, n := range nums[1:] {
		if n == end+1 {
			end = n
			continue
		}
		flush()
		start, end = n, n
	}
	flush()

	return strings.Join(tokens, ",")
}

// Compress replaces every maximal contiguous run of omitted lines with a
// single marker entry labeled with the run's extent. Non-omitted entries pass
// through unchanged, order preserved. An empty omission set is a no-op.
func Compress(ls []Line, omitted map[int]bool) []Line {
	if len(omitted) == 0 {
		return ls
	}

	out := make([]Line, 0, len(ls))
	for i := 0; i < len(ls); {
		if !omitted[ls[i].Number] {
			out = append(out, ls[i])
			i++
			continue
		}

		runStart := ls[i].Number
		runEnd := runStart
		i++
		for i < len(ls) && omitted[ls[i].Number] && ls[i].Number == runEnd+1 {
			runEnd = ls[i].Number
			i++
		}

		label := fmt.Sprintf("[omitted lines: %d]", runStart)
		if runEnd != runStart {
			label = fmt.Sprintf("[omitted lines: %d-%d]", runStart, runEnd)
		}
		out = append(out, Line{Number: MarkerNumber, Content: label})
	}
	return out
}

// Expand materializes a set of line numbers into ordered placeholder lines.
// It is the inverse companion of Compress used by tests and callers that need
// a synthetic window.
func Expand(set map[int]bool) []Line {
	nums := make([]int, 0, len(set))
	for n := range set {
		nums = append(nums, n)
	}
	sort.Ints(nums)

	out := make([]Line, 0, len(nums))
	for _, n := range nums {
		out = append(out, Line{Number: n})
	}
	return out
}
