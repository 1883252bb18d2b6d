package oracle

import (
	"context"
	"strings"
	"sync"
)

type scriptRule struct {
	substr     string
	completion string
}

// Script is a deterministic oracle for tests: completions come from substring
// rules first, then a FIFO queue. When both are exhausted it returns an empty
// completion, which the engine treats as zero actions. Every prompt is
// recorded for assertions.
type Script struct {
	mu      sync.Mutex
	rules   []scriptRule
	queue   []string
	Prompts []string
}

// On registers a canned completion returned whenever the prompt contains
// substr. Rules are checked in registration order before the queue.
func (s *Script) On(substr, completion string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = append(s.rules, scriptRule{substr: substr, completion: completion})
}

// Push appends completions to the FIFO queue.
func (s *Script) Push(completions ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = append(s.queue, completions...)
}

// Calls reports how many prompts have been submitted.
func (s *Script) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Prompts)
}

// Complete implements Oracle.
func (s *Script) Complete(_ context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Prompts = append(s.Prompts, prompt)

	for _, rule := range s.rules {
		if strings.Contains(prompt, rule.substr) {
			return rule.completion, nil
		}
	}
	if len(s.queue) > 0 {
		next := s.queue[0]
		s.queue = s.queue[1:]
		return next, nil
	}
	return "", nil
}
