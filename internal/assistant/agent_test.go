package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/go-deepseek/deepseek/request"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talkassist/internal/api"
)

// scriptedProvider returns canned responses in order and records every
// request it sees.
type scriptedProvider struct {
	responses []*api.MessageResponse
	err       error
	requests  []api.MessageRequest
}

func (p *scriptedProvider) SendMessage(_ context.Context, req api.MessageRequest) (*api.MessageResponse, error) {
	p.requests = append(p.requests, req)
	if p.err != nil {
		return nil, p.err
	}
	if len(p.responses) == 0 {
		return nil, errors.New("script exhausted")
	}
	resp := p.responses[0]
	p.responses = p.responses[1:]
	return resp, nil
}

func (p *scriptedProvider) Name() string { return "scripted" }
func (p *scriptedProvider) Close() error { return nil }

type fakeTools struct {
	defs   []request.Tool
	calls  []string
	result string
	err    error
}

func (f *fakeTools) Tools() []request.Tool {
	return f.defs
}

func (f *fakeTools) Call(_ context.Context, name, _ string) (string, error) {
	f.calls = append(f.calls, name)
	return f.result, f.err
}

func textResponse(content string) *api.MessageResponse {
	return &api.MessageResponse{
		Content:    content,
		StopReason: "stop",
		Usage:      api.Usage{InputTokens: 10, OutputTokens: 5},
	}
}

func toolCallResponse(id, name string) *api.MessageResponse {
	return &api.MessageResponse{
		StopReason: "tool_calls",
		Usage:      api.Usage{InputTokens: 7, OutputTokens: 3},
		ToolCalls:  []api.ToolCall{{ID: id, Name: name, Arguments: "{}"}},
	}
}

func TestAgentDirectAnswer(t *testing.T) {
	t.Parallel()

	provider := &scriptedProvider{responses: []*api.MessageResponse{
		textResponse("Hello! How can I help?"),
	}}
	tools := &fakeTools{defs: []request.Tool{
		{Type: "function", Function: &request.ToolFunction{Name: "set_reminder"}},
	}}

	agent := NewAgent(provider, tools, newTestSession())
	answer, err := agent.Ask(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "Hello! How can I help?", answer)

	// Tools were advertised even though none were called.
	require.Len(t, provider.requests, 1)
	require.Len(t, provider.requests[0].Tools, 1)
	assert.Equal(t, "set_reminder", provider.requests[0].Tools[0].Function.Name)
	assert.Empty(t, tools.calls)

	msgs := agent.Session().GetMessages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "user", msgs[0].Role)
	assert.Equal(t, "assistant", msgs[1].Role)
}

func TestAgentToolRound(t *testing.T) {
	t.Parallel()

	provider := &scriptedProvider{responses: []*api.MessageResponse{
		toolCallResponse("call_1", "list_reminders"),
		textResponse("You have one reminder."),
	}}
	tools := &fakeTools{result: `{"reminders": []}`}

	agent := NewAgent(provider, tools, newTestSession())
	var observed []string
	agent.OnToolCall = func(name string) { observed = append(observed, name) }

	answer, err := agent.Ask(context.Background(), "what reminders do I have?")
	require.NoError(t, err)
	assert.Equal(t, "You have one reminder.", answer)
	assert.Equal(t, []string{"list_reminders"}, tools.calls)
	assert.Equal(t, []string{"list_reminders"}, observed)

	msgs := agent.Session().GetMessages()
	require.Len(t, msgs, 4)
	assert.Equal(t, "user", msgs[0].Role)
	assert.Equal(t, "assistant", msgs[1].Role)
	require.Len(t, msgs[1].ToolCalls, 1)
	assert.Equal(t, "tool", msgs[2].Role)
	assert.Equal(t, "call_1", msgs[2].ToolCallID)
	assert.Equal(t, `{"reminders": []}`, msgs[2].Content)
	assert.Equal(t, "assistant", msgs[3].Role)
}

func TestAgentToolError(t *testing.T) {
	t.Parallel()

	provider := &scriptedProvider{responses: []*api.MessageResponse{
		toolCallResponse("call_1", "get_weather"),
		textResponse("I could not fetch the weather."),
	}}
	tools := &fakeTools{err: errors.New("boom")}

	agent := NewAgent(provider, tools, newTestSession())
	_, err := agent.Ask(context.Background(), "weather in paris?")
	require.NoError(t, err)

	// The failure goes back to the model as a tool result, not up to
	// the caller.
	msgs := agent.Session().GetMessages()
	require.Len(t, msgs, 4)
	assert.Equal(t, "tool", msgs[2].Role)
	assert.Equal(t, "Error: boom", msgs[2].Content)
}

func TestAgentMaxRounds(t *testing.T) {
	t.Parallel()

	var responses []*api.MessageResponse
	for i := 0; i < maxToolRounds; i++ {
		responses = append(responses, toolCallResponse("call_x", "list_reminders"))
	}
	provider := &scriptedProvider{responses: responses}
	tools := &fakeTools{result: "ok"}

	agent := NewAgent(provider, tools, newTestSession())
	_, err := agent.Ask(context.Background(), "loop forever")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max rounds")
	assert.Len(t, provider.requests, maxToolRounds)
}

func TestAgentProviderError(t *testing.T) {
	t.Parallel()

	provider := &scriptedProvider{err: errors.New("connection refused")}
	agent := NewAgent(provider, nil, newTestSession())

	_, err := agent.Ask(context.Background(), "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API request failed (round 0)")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestAgentNoToolSource(t *testing.T) {
	t.Parallel()

	provider := &scriptedProvider{responses: []*api.MessageResponse{
		textResponse("Just chatting."),
	}}
	agent := NewAgent(provider, nil, newTestSession())

	answer, err := agent.Ask(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "Just chatting.", answer)
	assert.Empty(t, provider.requests[0].Tools)
}

func TestAgentTruncatesHugeToolResult(t *testing.T) {
	t.Parallel()

	provider := &scriptedProvider{responses: []*api.MessageResponse{
		toolCallResponse("call_1", "search_web"),
		textResponse("Summarized."),
	}}
	tools := &fakeTools{result: strings.Repeat("a", maxToolResultSize+1000)}

	agent := NewAgent(provider, tools, newTestSession())
	_, err := agent.Ask(context.Background(), "search for something huge")
	require.NoError(t, err)

	msgs := agent.Session().GetMessages()
	toolMsg := msgs[2]
	assert.Equal(t, "tool", toolMsg.Role)
	assert.True(t, strings.HasSuffix(toolMsg.Content, "[... truncated]"))
	assert.Less(t, len(toolMsg.Content), maxToolResultSize+100)
}

func TestAgentUsageAccumulates(t *testing.T) {
	t.Parallel()

	provider := &scriptedProvider{responses: []*api.MessageResponse{
		toolCallResponse("call_1", "list_reminders"), // 7 in, 3 out
		textResponse("Done."),                        // 10 in, 5 out
	}}
	tools := &fakeTools{result: "ok"}

	agent := NewAgent(provider, tools, newTestSession())
	_, err := agent.Ask(context.Background(), "list")
	require.NoError(t, err)

	usage, calls := agent.LastUsage()
	assert.Equal(t, 17, usage.InputTokens)
	assert.Equal(t, 8, usage.OutputTokens)
	assert.Equal(t, 2, calls)
}
