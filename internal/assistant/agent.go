package assistant

import (
	"context"
	"fmt"

	"github.com/go-deepseek/deepseek/request"

	"talkassist/internal/api"
)

const (
	maxToolRounds     = 10
	maxToolResultSize = 32000
)

// ToolSource supplies tool definitions for the model and executes the
// calls it makes. Implemented by the builtin tool set and by the MCP
// manager adapter.
type ToolSource interface {
	Tools() []request.Tool
	Call(ctx context.Context, name, argsJSON string) (string, error)
}

// Agent drives the tool-calling loop: send the conversation, execute
// any tool calls the model makes, append results, re-send — until the
// model answers in plain text.
type Agent struct {
	provider  api.Provider
	tools     ToolSource
	session   *Session
	lastUsage api.Usage
	lastCalls int

	// OnToolCall, when set, is invoked before each tool execution.
	// The REPL uses it to show what the model is doing.
	OnToolCall func(name string)
}

func NewAgent(provider api.Provider, tools ToolSource, session *Session) *Agent {
	return &Agent{
		provider: provider,
		tools:    tools,
		session:  session,
	}
}

// Session returns the conversation this agent appends to.
func (a *Agent) Session() *Session {
	return a.session
}

// Ask adds the user message to the session and runs rounds until the
// model stops requesting tools or the round limit is hit.
func (a *Agent) Ask(ctx context.Context, text string) (string, error) {
	a.session.AddUserMessage(text)
	a.lastUsage = api.Usage{}
	a.lastCalls = 0

	for round := 0; round < maxToolRounds; round++ {
		req := a.session.BuildAPIRequest()
		if a.tools != nil {
			req.Tools = a.tools.Tools()
		}

		resp, err := a.provider.SendMessage(ctx, req)
		if err != nil {
			return "", fmt.Errorf("API request failed (round %d): %w", round, err)
		}

		a.lastUsage.InputTokens += resp.Usage.InputTokens
		a.lastUsage.OutputTokens += resp.Usage.OutputTokens
		a.lastCalls++

		// No tool calls — we have the final answer
		if len(resp.ToolCalls) == 0 {
			a.session.AddAssistantMessage(resp.Content)
			return resp.Content, nil
		}

		// Without a tool source the calls cannot be executed.
		if a.tools == nil {
			a.session.AddAssistantMessage(resp.Content)
			return resp.Content, nil
		}

		a.session.AddAssistantMessageWithToolCalls(resp.Content, resp.ToolCalls)

		for _, tc := range resp.ToolCalls {
			if a.OnToolCall != nil {
				a.OnToolCall(tc.Name)
			}

			result, err := a.tools.Call(ctx, tc.Name, tc.Arguments)
			if err != nil {
				result = fmt.Sprintf("Error: %v", err)
			}

			if len(result) > maxToolResultSize {
				result = result[:maxToolResultSize] + "\n\n[... truncated]"
			}

			a.session.AddToolResult(tc.ID, result)
		}
	}

	return "", fmt.Errorf("agent reached max rounds (%d) without a final answer", maxToolRounds)
}

// LastUsage reports token usage accumulated over the rounds of the most
// recent Ask, and how many API calls it took.
func (a *Agent) LastUsage() (api.Usage, int) {
	return a.lastUsage, a.lastCalls
}
