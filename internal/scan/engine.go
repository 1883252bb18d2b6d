package scan

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/graphscout-dev/graphscout/internal/logger"
	"github.com/graphscout-dev/graphscout/internal/oracle"
	"github.com/graphscout-dev/graphscout/internal/vfs"
)

// DefaultChunkSize is the number of lines presented per window.
const DefaultChunkSize = 30

// span is one blacked line range. The per-level blacked set stays sorted and
// non-overlapping.
type span struct {
	start, end int
}

// window is the mutable scan state for one (target, line-range) invocation.
// It is local to scanLevel: recursion into children constructs a fresh window
// from the parent result's span, so no state leaks between levels.
type window struct {
	start, end   int
	lower, upper int
	omitSpec     string
}

// Engine executes the scanning state machine. One engine runs one scan at a
// time; all oracle traffic is sequential.
type Engine struct {
	oracle  oracle.Oracle
	fs      *vfs.FS
	log     *logger.Logger
	chunk   int
	metrics Metrics
}

// NewEngine creates an engine with the default chunk size.
func NewEngine(o oracle.Oracle, fs *vfs.FS, log *logger.Logger) *Engine {
	return &Engine{oracle: o, fs: fs, log: log, chunk: DefaultChunkSize, metrics: newMetrics()}
}

// SetChunkSize overrides the window size. Values below 1 are ignored.
func (e *Engine) SetChunkSize(n int) {
	if n >= 1 {
		e.chunk = n
	}
}

// Metrics returns a snapshot of accumulated oracle usage.
func (e *Engine) Metrics() Metrics {
	return e.metrics
}

// Discover scans one document for every top-level target in order and returns
// the forest of results, children attached in discovery order.
func (e *Engine) Discover(ctx context.Context, targets []*Target, file string) ([]*Result, error) {
	total, err := e.fs.LineCount(file)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, nil
	}

	forest := make([]*Result, 0)
	for _, target := range targets {
		found, err := e.scanLevel(ctx, target, file, 1, total)
		if err != nil {
			return nil, fmt.Errorf("scan %s for target %s: %w", file, target.ID, err)
		}
		forest = append(forest, found...)
	}
	return forest, nil
}

// scanLevel runs the state machine for one target over [lower, upper] and
// returns the results found at this level, recursing into child targets
// bounded by each result's span.
func (e *Engine) scanLevel(ctx context.Context, t *Target, file string, lower, upper int) ([]*Result, error) {
	e.log.Debugf("scanning %s lines %d-%d for target %s", file, lower, upper, t.ID)

	found := make([]*Result, 0)
	blacked := make([]span, 0)
	w := window{lower: lower, upper: upper}
	w.start = max(1, lower)
	w.end = min(w.start+e.chunk-1, upper)

	for {
		// POSITIONING: shrink or shift the window off already-blacked spans.
		resume := 0
		for _, b := range blacked {
			if w.start <= b.start && b.start <= w.end {
				resume = b.end + 1
				w.end = b.start - 1
				e.log.Debugf("window truncated to %d-%d to skip blacked %d-%d", w.start, w.end, b.start, b.end)
				break
			}
			if w.start <= b.end && b.end <= w.end {
				w.start = b.end + 1
				e.log.Debugf("window shifted to %d-%d to skip blacked %d-%d", w.start, w.end, b.start, b.end)
				break
			}
		}
		if w.start > w.end {
			// Whole candidate chunk is blacked.
			if resume > 0 {
				w.start = resume + 1
			}
			if w.start > w.upper {
				break
			}
			w.end = min(w.start+e.chunk-1, w.upper)
			continue
		}

		// READING
		content, err := e.fs.ReadWindow(file, w.start, w.end, true, w.omitSpec)
		if err != nil {
			return nil, err
		}
		w.omitSpec = ""

		// AWAITING_ORACLE
		actions, err := e.turn(ctx, e.levelSpecs(t), e.levelRequest(t, file, content, upper-lower+1),
			ActionFoundTarget, ActionRetryWith)
		if err != nil {
			return nil, fmt.Errorf("window %d-%d: %w", w.start, w.end, err)
		}

		// APPLYING_ACTIONS
		var retry *RetryWith
		for _, action := range actions {
			switch act := action.(type) {
			case FoundTarget:
				result, blackedSpan, err := e.applyFound(t, act)
				if err != nil {
					return nil, fmt.Errorf("window %d-%d: %w", w.start, w.end, err)
				}
				if blackedSpan != nil {
					blacked = insertSpan(blacked, *blackedSpan)
				}
				found = append(found, result)
			case RetryWith:
				r := act
				retry = &r
			}
		}

		// Termination and advancement.
		if w.end >= w.upper {
			break
		}
		if retry != nil {
			w.start, w.end, w.omitSpec = retry.Start, retry.End, retry.OmittedLines
			e.log.Debugf("retrying with window %d-%d (omitted %q)", w.start, w.end, w.omitSpec)
			continue
		}
		w.start = w.end + 1
		w.end = min(w.start+e.chunk-1, w.upper)
	}

	// RECURSING_CHILDREN: each result's span bounds its children's scans.
	if len(t.Children) > 0 {
		for _, result := range found {
			childLower, childUpper := resultSpan(result, lower, upper)
			for _, child := range t.Children {
				kids, err := e.scanLevel(ctx, child, file, childLower, childUpper)
				if err != nil {
					return nil, err
				}
				result.Children = append(result.Children, kids...)
			}
		}
	}

	return found, nil
}

// SingleTurn submits one request against the given action registry and
// returns the decoded actions; used for bounded, non-windowed extractions.
func (e *Engine) SingleTurn(ctx context.Context, specs []ActionSpec, userInput string, allowed ...string) ([]Action, error) {
	return e.turn(ctx, specs, userInput, allowed...)
}

func (e *Engine) turn(ctx context.Context, specs []ActionSpec, userInput string, allowed ...string) ([]Action, error) {
	prompt := BuildPrompt(specs, userInput)

	e.metrics.Calls++
	e.metrics.InTokens += estimateTokens(prompt)
	started := time.Now()
	completion, err := e.oracle.Complete(ctx, prompt)
	e.metrics.Elapsed += time.Since(started)
	if err != nil {
		return nil, err
	}
	e.metrics.OutTokens += estimateTokens(completion)
	e.log.Debugf("oracle completion: %q", completion)

	return DecodeActions(completion, allowed...)
}

func (e *Engine) levelSpecs(t *Target) []ActionSpec {
	return []ActionSpec{FoundTargetSpec(t.Schema), RetryWithSpec()}
}

func (e *Engine) levelRequest(t *Target, file, content string, totalLines int) string {
	return fmt.Sprintf(
		"Extract all targets matching the definition %q from the following document.\n"+
			"Document Path: %s\n"+
			"Current Part of Document:\n%s\n"+
			"The document has %d lines in total.\n"+
			"If a target is found but not finished, return a retry_with action with an appropriate line range.\n"+
			"At most one retry_with action can be returned each time. Request at most %d more lines (fewer when reaching the end of the document).",
		t.Description, file, content, totalLines, e.chunk)
}

// applyFound validates the reported fields, blacks out the reported span when
// one is present, and builds the Result.
func (e *Engine) applyFound(t *Target, act FoundTarget) (*Result, *span, error) {
	for _, required := range t.Schema.Required {
		if _, ok := act.Fields[required]; !ok {
			return nil, nil, fmt.Errorf("%w: found_target for %s missing required field %q", ErrProtocol, t.ID, required)
		}
	}

	var blackedSpan *span
	start, startOK := intField(act.Fields, "start_line")
	end, endOK := intField(act.Fields, "end_line")
	if startOK && endOK {
		blackedSpan = &span{start: start, end: end}
	}

	data := act.Fields
	if t.MapFields != nil {
		data = t.MapFields(act.Fields)
	}
	e.log.Debugf("found target %s: %v", t.ID, data)

	return &Result{TargetID: t.ID, Data: data}, blackedSpan, nil
}

// insertSpan adds s to the sorted set, clipping away any portions already
// covered so the set stays non-overlapping.
func insertSpan(set []span, s span) []span {
	if s.start > s.end {
		return set
	}

	pieces := []span{s}
	for _, existing := range set {
		next := pieces[:0:0]
		for _, p := range pieces {
			if p.end < existing.start || p.start > existing.end {
				next = append(next, p)
				continue
			}
			if p.start < existing.start {
				next = append(next, span{start: p.start, end: existing.start - 1})
			}
			if p.end > existing.end {
				next = append(next, span{start: existing.end + 1, end: p.end})
			}
		}
		pieces = next
		if len(pieces) == 0 {
			return set
		}
	}

	set = append(set, pieces...)
	sort.Slice(set, func(i, j int) bool { return set[i].start < set[j].start })
	return set
}

// resultSpan extracts a result's reported span, falling back to the enclosing
// bounds when the fields are absent.
func resultSpan(result *Result, lower, upper int) (int, int) {
	start, startOK := intField(result.Data, "start_line")
	end, endOK := intField(result.Data, "end_line")
	if !startOK {
		start = lower
	}
	if !endOK {
		end = upper
	}
	if start < lower {
		start = lower
	}
	if end > upper {
		end = upper
	}
	return start, end
}

func intField(data map[string]any, key string) (int, bool) {
	switch v := data[key].(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
