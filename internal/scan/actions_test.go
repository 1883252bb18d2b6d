package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrimJSONMarkers(t *testing.T) {
	cases := map[string]string{
		"{\"actions\": []}":                          `{"actions": []}`,
		"```json\n{\"actions\": []}\n```":            `{"actions": []}`,
		"```\n{\"actions\": []}\n```":                `{"actions": []}`,
		"  \n```json\n{\"actions\": []}\n```\n\n":    `{"actions": []}`,
		"":                                           "",
		"   \n\t":                                    "",
	}
	for in, want := range cases {
		assert.Equal(t, want, TrimJSONMarkers(in), "input %q", in)
	}
}

func TestDecodeActionsEmptyBodyMeansZeroActions(t *testing.T) {
	actions, err := DecodeActions("", ActionFoundTarget)
	require.NoError(t, err)
	assert.Empty(t, actions)

	actions, err = DecodeActions("```json\n```", ActionFoundTarget)
	require.NoError(t, err)
	assert.Empty(t, actions)
}

func TestDecodeActionsEnvelope(t *testing.T) {
	completion := "```json\n" + `{
		"actions": [
			{"name": "found_target", "input": {"function_name": "foo", "start_line": 1, "end_line": 2}},
			{"name": "retry_with", "input": {"start": 5, "end": 12, "omitted_lines": "7-9"}}
		]
	}` + "\n```"

	actions, err := DecodeActions(completion, ActionFoundTarget, ActionRetryWith)
	require.NoError(t, err)
	require.Len(t, actions, 2)

	found, ok := actions[0].(FoundTarget)
	require.True(t, ok)
	assert.Equal(t, "foo", found.Fields["function_name"])

	retry, ok := actions[1].(RetryWith)
	require.True(t, ok)
	assert.Equal(t, RetryWith{Start: 5, End: 12, OmittedLines: "7-9"}, retry)
}

func TestDecodeActionsRejectsUnknownName(t *testing.T) {
	_, err := DecodeActions(`{"actions": [{"name": "self_destruct", "input": {}}]}`, ActionFoundTarget)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProtocol)
}

func TestDecodeActionsRejectsNameOutsideContext(t *testing.T) {
	// found_target is a real action, but not registered for this context.
	_, err := DecodeActions(`{"actions": [{"name": "found_target", "input": {}}]}`, ActionRecordCall)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProtocol)
}

func TestDecodeActionsRejectsMalformedJSON(t *testing.T) {
	_, err := DecodeActions(`{"actions": [`, ActionFoundTarget)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProtocol)
}

func TestDecodeActionsRejectsMissingRequiredInputs(t *testing.T) {
	cases := []string{
		`{"actions": [{"name": "retry_with", "input": {"start": 5}}]}`,
		`{"actions": [{"name": "record_function_call", "input": {"name": "foo"}}]}`,
		`{"actions": [{"name": "record_function_call", "input": {"file_line": 2}}]}`,
	}
	for _, completion := range cases {
		_, err := DecodeActions(completion, ActionRetryWith, ActionRecordCall)
		require.Error(t, err, "completion %s", completion)
		assert.ErrorIs(t, err, ErrProtocol)
	}
}

func TestDecodeRecordCall(t *testing.T) {
	actions, err := DecodeActions(
		`{"actions": [{"name": "record_function_call", "input": {"name": "bar", "file_line": 2}}]}`,
		ActionRecordCall)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, RecordCall{Callee: "bar", Line: 2}, actions[0])
}

func TestBuildPromptListsRegisteredActions(t *testing.T) {
	specs := []ActionSpec{
		FoundTargetSpec(Schema{
			Type:       "object",
			Properties: map[string]Property{"function_name": {Type: "string"}},
			Required:   []string{"function_name"},
		}),
		RetryWithSpec(),
	}
	prompt := BuildPrompt(specs, "Find the things.")

	assert.Contains(t, prompt, "Available Actions:")
	assert.Contains(t, prompt, "- found_target:")
	assert.Contains(t, prompt, "- retry_with:")
	assert.Contains(t, prompt, `"function_name"`)
	assert.Contains(t, prompt, "Find the things.")
	assert.Contains(t, prompt, `{"actions": [{"name": "action_name", "input": {}}]}`)
}
