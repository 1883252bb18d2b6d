package scan

import (
	"time"

	"github.com/google/uuid"
)

// Metrics accumulates per-engine oracle usage. Token counts are approximate
// (bytes/4); they exist for cost tracking, not billing.
type Metrics struct {
	RunID     string        `json:"run_id"`
	Calls     int           `json:"calls"`
	InTokens  int           `json:"in_tokens"`
	OutTokens int           `json:"out_tokens"`
	Elapsed   time.Duration `json:"elapsed_ns"`
}

func newMetrics() Metrics {
	return Metrics{RunID: uuid.NewString()}
}

func estimateTokens(s string) int {
	n := len(s)
	if n == 0 {
		return 0
	}
	return (n + 3) / 4
}
