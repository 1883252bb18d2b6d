package scan

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Action names understood across scan contexts. Which names are valid in a
// given turn depends on the actions advertised in that turn's prompt.
const (
	ActionFoundTarget = "found_target"
	ActionRetryWith   = "retry_with"
	ActionRecordCall  = "record_function_call"
)

// ErrProtocol marks a mismatch between the advertised action registry and the
// oracle's response: unknown action names, malformed envelopes, or missing
// required fields. Always fatal.
var ErrProtocol = errors.New("action protocol violation")

// ActionSpec is one registry entry: a named operation the oracle may invoke,
// rendered into the prompt with its description and input schema.
type ActionSpec struct {
	Name        string
	Description string
	Schema      Schema
}

// Action is the decoded form of one oracle-invoked operation.
type Action interface {
	name() string
}

// FoundTarget reports one discovered entity with its extracted fields.
type FoundTarget struct {
	Fields map[string]any
}

func (FoundTarget) name() string { return ActionFoundTarget }

// RetryWith overrides the next window, bypassing normal advancement. It is a
// semantic retry declared by the oracle, not error recovery.
type RetryWith struct {
	Start        int
	End          int
	OmittedLines string
}

func (RetryWith) name() string { return ActionRetryWith }

// RecordCall reports a call to a named function at a source line.
type RecordCall struct {
	Callee string
	Line   int
}

func (RecordCall) name() string { return ActionRecordCall }

// RetryWithSpec is the registry entry for the retry_with action.
func RetryWithSpec() ActionSpec {
	return ActionSpec{
		Name:        ActionRetryWith,
		Description: "Retry with a more fine-grained line range to complete finding the target. If too many lines are read, specify omitted lines.",
		Schema: Schema{
			Type: "object",
			Properties: map[string]Property{
				"start":         {Type: "integer", Description: "Starting line number to read from."},
				"end":           {Type: "integer", Description: "Ending line number to read to."},
				"omitted_lines": {Type: "string", Description: "Lines to omit from the new read. Optional. E.g. '5-10,15-20'."},
			},
			Required: []string{"start", "end"},
		},
	}
}

// FoundTargetSpec is the registry entry for the found_target action; its
// schema is the currently active target's schema.
func FoundTargetSpec(schema Schema) ActionSpec {
	return ActionSpec{
		Name:        ActionFoundTarget,
		Description: "Indicates the target definition has been found.",
		Schema:      schema,
	}
}

// RecordCallSpec is the registry entry for the record_function_call action.
func RecordCallSpec() ActionSpec {
	return ActionSpec{
		Name:        ActionRecordCall,
		Description: "Record a function call relationship between two functions.",
		Schema: Schema{
			Type: "object",
			Properties: map[string]Property{
				"name":      {Type: "string", Description: "Name of the function being called."},
				"file_line": {Type: "integer", Description: "Line number where the call occurs."},
			},
			Required: []string{"name", "file_line"},
		},
	}
}

// TrimJSONMarkers strips markdown code fences an oracle may wrap around its
// JSON body.
func TrimJSONMarkers(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

type rawAction struct {
	Name  string          `json:"name"`
	Input json.RawMessage `json:"input"`
}

type actionEnvelope struct {
	Actions []rawAction `json:"actions"`
}

// DecodeActions parses a completion into the actions it invokes. The stripped
// body must be empty (zero actions) or a JSON object with an "actions" list.
// Names outside the allowed set for this scan context are protocol
// violations, as are missing required inputs.
func DecodeActions(completion string, allowed ...string) ([]Action, error) {
	body := TrimJSONMarkers(completion)
	if body == "" {
		return nil, nil
	}

	var envelope actionEnvelope
	if err := json.Unmarshal([]byte(body), &envelope); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", ErrProtocol, err)
	}

	allowedSet := make(map[string]bool, len(allowed))
	for _, name := range allowed {
		allowedSet[name] = true
	}

	actions := make([]Action, 0, len(envelope.Actions))
	for _, raw := range envelope.Actions {
		if !allowedSet[raw.Name] {
			return nil, fmt.Errorf("%w: unknown action %q", ErrProtocol, raw.Name)
		}
		action, err := decodeAction(raw)
		if err != nil {
			return nil, err
		}
		actions = append(actions, action)
	}
	return actions, nil
}

func decodeAction(raw rawAction) (Action, error) {
	switch raw.Name {
	case ActionFoundTarget:
		fields := make(map[string]any)
		if len(raw.Input) > 0 {
			if err := json.Unmarshal(raw.Input, &fields); err != nil {
				return nil, fmt.Errorf("%w: found_target input: %v", ErrProtocol, err)
			}
		}
		return FoundTarget{Fields: fields}, nil

	case ActionRetryWith:
		var input struct {
			Start        *int   `json:"start"`
			End          *int   `json:"end"`
			OmittedLines string `json:"omitted_lines"`
		}
		if err := json.Unmarshal(raw.Input, &input); err != nil {
			return nil, fmt.Errorf("%w: retry_with input: %v", ErrProtocol, err)
		}
		if input.Start == nil || input.End == nil {
			return nil, fmt.Errorf("%w: retry_with requires start and end", ErrProtocol)
		}
		return RetryWith{Start: *input.Start, End: *input.End, OmittedLines: input.OmittedLines}, nil

	case ActionRecordCall:
		var input struct {
			Name     string `json:"name"`
			FileLine *int   `json:"file_line"`
		}
		if err := json.Unmarshal(raw.Input, &input); err != nil {
			return nil, fmt.Errorf("%w: record_function_call input: %v", ErrProtocol, err)
		}
		if input.Name == "" || input.FileLine == nil {
			return nil, fmt.Errorf("%w: record_function_call requires name and file_line", ErrProtocol)
		}
		return RecordCall{Callee: input.Name, Line: *input.FileLine}, nil

	default:
		return nil, fmt.Errorf("%w: unknown action %q", ErrProtocol, raw.Name)
	}
}

// BuildPrompt renders the action registry and the request into the single
// prompt submitted to the oracle each turn.
func BuildPrompt(specs []ActionSpec, userInput string) string {
	var sb strings.Builder
	sb.WriteString("You are an intelligent agent. You can perform the following actions to help answer the user's input.\n")
	sb.WriteString("Available Actions:\n")
	for _, spec := range specs {
		fmt.Fprintf(&sb, "- %s: %s\n", spec.Name, spec.Description)
		fmt.Fprintf(&sb, "  Input Schema: %s\n", spec.Schema.JSON())
	}
	sb.WriteString("\n")
	sb.WriteString(userInput)
	sb.WriteString("\n\nRespond with a JSON object:\n")
	sb.WriteString(`{"actions": [{"name": "action_name", "input": {}}]}`)
	return sb.String()
}
