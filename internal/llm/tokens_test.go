package llm

import "testing"

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"empty", "", 0},
		{"short", "hi", 1},
		{"exactly four chars", "test", 1},
		{"five chars rounds up", "hello", 2},
		{"typical sentence", "The quick brown fox jumps over the lazy dog.", 11},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EstimateTokens(tt.input)
			if got != tt.want {
				t.Errorf("EstimateTokens(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestEstimateMessageTokens(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
		want int
	}{
		{
			name: "simple user message",
			msg:  Message{Role: "user", Content: "hello"},
			want: 4 + 2, // overhead + "hello"
		},
		{
			name: "empty message",
			msg:  Message{Role: "assistant"},
			want: 4, // just overhead
		},
		{
			name: "message with tool call",
			msg: Message{
				Role: "assistant",
				ToolCalls: []ToolCall{
					{ID: "call_1", Name: "list_tasks", Params: map[string]any{"status": "WIP"}},
				},
			},
			// overhead(4) + name(3) + params_json(4) + tool_framing(4)
			want: 4 + 3 + 4 + 4,
		},
		{
			name: "tool result message",
			msg:  Message{Role: "tool", Content: `[{"id":1,"title":"Fix bug"}]`, ToolCallID: "call_1"},
			// overhead(4) + content(7) + toolcallid(2) + framing(2)
			want: 4 + 7 + 2 + 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EstimateMessageTokens(tt.msg)
			if got != tt.want {
				t.Errorf("EstimateMessageTokens() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestEstimateMessagesTokens(t *testing.T) {
	messages := []Message{
		{Role: "user", Content: "hello"},
		{Role: "assistant", Content: "hi there"},
	}
	got := EstimateMessagesTokens(messages)
	// msg1: 4+2=6, msg2: 4+2=6
	want := 12
	if got != want {
		t.Errorf("EstimateMessagesTokens() = %d, want %d", got, want)
	}
}

func TestEstimateToolsTokens(t *testing.T) {
	tools := []Tool{
		{
			Name:        "get_board_summary",
			Description: "Get a summary of the board.",
			Parameters:  map[string]any{"type": "object", "properties": map[string]any{}},
		},
	}
	got := EstimateToolsTokens(tools)
	if got <= 10 {
		t.Errorf("EstimateToolsTokens() = %d, expected > 10 for a tool with name+desc+schema", got)
	}
}
