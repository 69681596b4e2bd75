package bridge

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/tavlaapp/tavla/internal/llm"
	"github.com/tavlaapp/tavla/internal/tools"
)

// Degraded replies. The end user always gets a plain assistant message, no
// matter which backend failed; raw errors stay in the logs.
const (
	ReplyQuotaExceeded = "The AI service is temporarily unavailable: the usage quota has been exceeded. Please try again later or contact your administrator."
	ReplyUnavailable   = "The assistant couldn't be reached right now. Your board is unaffected — please try again in a moment."
	ReplyMaxRounds     = "I hit the maximum number of tool rounds before finishing. Here's what I have so far."
)

// Bridge runs one chat turn: it advertises the registry's tools to the
// model, executes whatever tool calls come back, and loops until the model
// produces a textual answer or the round budget runs out.
type Bridge struct {
	registry *tools.Registry
	executor *tools.Executor
	client   llm.Client
	logger   *slog.Logger

	maxRounds        int
	maxContextTokens int
}

func New(registry *tools.Registry, executor *tools.Executor, client llm.Client, logger *slog.Logger, maxRounds, maxContextTokens int) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	if maxRounds < 1 {
		maxRounds = 1
	}
	return &Bridge{
		registry:         registry,
		executor:         executor,
		client:           client,
		logger:           logger,
		maxRounds:        maxRounds,
		maxContextTokens: maxContextTokens,
	}
}

// Run executes one turn over the given conversation and returns the final
// assistant reply plus the extended message list. Provider and registry
// failures degrade into a readable reply rather than an error; the only
// error returned is the caller's own context ending, in which case no
// further completion calls are made.
func (b *Bridge) Run(ctx context.Context, history []llm.Message) (string, []llm.Message, error) {
	messages := make([]llm.Message, len(history))
	copy(messages, history)

	// Tools are re-fetched every turn; the registry may change between turns.
	toolList, err := b.registry.List(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return "", messages, ctx.Err()
		}
		b.logger.Error("listing tools", "err", err)
		return b.degrade(err, messages)
	}

	// Fixed costs: system prompt + tool definitions.
	messageBudget := b.maxContextTokens - llm.EstimateTokens(llm.SystemPrompt) - llm.EstimateToolsTokens(toolList)
	if messageBudget < 1000 {
		messageBudget = 1000 // floor so the current turn always fits
	}

	for round := 0; round < b.maxRounds; round++ {
		if ctx.Err() != nil {
			return "", messages, ctx.Err()
		}

		trimmed := llm.TrimMessages(messages, messageBudget)
		if len(trimmed) < len(messages) {
			b.logger.Info("context trimmed", "from", len(messages), "to", len(trimmed))
		}

		resp, err := b.client.Chat(ctx, llm.SystemPrompt, trimmed, toolList)
		if err != nil {
			if ctx.Err() != nil {
				return "", messages, ctx.Err()
			}
			b.logger.Error("completion failed", "round", round, "err", err)
			return b.degrade(err, messages)
		}

		// No tool calls — final answer. A textual preamble next to tool
		// calls is not final; the calls win.
		if len(resp.ToolCalls) == 0 {
			messages = append(messages, llm.Message{Role: "assistant", Content: resp.Content})
			return resp.Content, messages, nil
		}

		messages = append(messages, llm.Message{
			Role:      "assistant",
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})

		// Independent calls fan out; results land back in request order,
		// which some models rely on for positional correlation.
		results := make([]tools.Result, len(resp.ToolCalls))
		var wg sync.WaitGroup
		for i, tc := range resp.ToolCalls {
			wg.Add(1)
			go func(i int, tc llm.ToolCall) {
				defer wg.Done()
				results[i] = b.executor.Execute(ctx, tc.ID, tc.Name, tc.Params)
			}(i, tc)
		}
		wg.Wait()

		for i, res := range results {
			b.logger.Info("tool call",
				"tool", resp.ToolCalls[i].Name,
				"error", res.IsError,
				"result", truncate(res.Content, 200))
			messages = append(messages, llm.Message{
				Role:       "tool",
				Content:    res.Content,
				ToolCallID: res.ToolCallID,
			})
		}
	}

	// Round budget exhausted: fail closed with a best-effort answer instead
	// of looping on a model that keeps asking for tools.
	messages = append(messages, llm.Message{Role: "assistant", Content: ReplyMaxRounds})
	return ReplyMaxRounds, messages, nil
}

// degrade turns a backend failure into the user-facing reply for it.
func (b *Bridge) degrade(err error, messages []llm.Message) (string, []llm.Message, error) {
	reply := ReplyUnavailable
	if errors.Is(err, llm.ErrQuotaExceeded) {
		reply = ReplyQuotaExceeded
	}
	messages = append(messages, llm.Message{Role: "assistant", Content: reply})
	return reply, messages, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
