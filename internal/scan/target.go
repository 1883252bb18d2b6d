// Package scan implements the windowed document-scanning engine: it presents
// bounded line windows of a document to an oracle, accumulates reported
// findings into a result forest, and recurses into nested target kinds
// bounded by their parents' spans.
package scan

import "encoding/json"

// Property describes one field of a target schema.
type Property struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// Schema is the minimal JSON-schema subset rendered into prompts.
type Schema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required"`
}

// JSON renders the schema for inclusion in a prompt.
func (s Schema) JSON() string {
	data, err := json.Marshal(s)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// Target describes one kind of entity to search for. Targets form an explicit
// tree via Children and are immutable during a run.
type Target struct {
	ID          string
	Description string
	Schema      Schema

	// MapFields optionally transforms the oracle-reported fields before they
	// are stored on a Result.
	MapFields func(map[string]any) map[string]any

	Children []*Target
}

// Result is one discovered instance of a Target. A run returns an ordered
// forest of top-level Results; children are owned by their parent and the
// whole forest is immutable once returned.
type Result struct {
	TargetID string         `json:"target_id"`
	Data     map[string]any `json:"data"`
	Children []*Result      `json:"children,omitempty"`
}
