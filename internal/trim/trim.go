// Package trim implements katamari's context-window budgeting engine:
// given a conversation and a token budget, it selects the largest-value
// subset of messages that fits the budget while keeping the latest turn,
// pinned priority roles, and the leading system prompt intact.
//
// The engine is pure: identical inputs produce identical outputs, no state
// carries across calls, and Trim never fails for well-formed input —
// tokenizer trouble degrades the cost estimate, never availability.
package trim

import (
	"math"

	"github.com/katamari-chat/katamari/internal/schema"
)

// Options configure a single Trim call.
type Options struct {
	// TargetTokens is the requested budget. Values at or below the floor
	// are clamped up to it.
	TargetTokens int
	// Model selects the token cost profile.
	Model string
	// MinTurns switches to the turn-preserving strategy when positive:
	// at least this many recent turns survive even past the budget.
	// Negative values are treated as zero.
	MinTurns int
	// PriorityRoles lists roles whose messages must never be dropped.
	PriorityRoles []string
	// Registry resolves token encodings. Nil uses the shared default.
	Registry EncodingRegistry
}

// Metrics reports compression statistics for one Trim call.
// SemanticRetention is reserved for the external scorer; Trim leaves it
// unset.
type Metrics struct {
	InputTokens       int         `json:"input_tokens"`
	OutputTokens      int         `json:"output_tokens"`
	CompressRatio     float64     `json:"compress_ratio"`
	TokenCounter      CounterInfo `json:"token_counter"`
	SemanticRetention *float64    `json:"semantic_retention"`
}

// Result is the outcome of one Trim call. Messages is an order-preserving
// subsequence of the input.
type Result struct {
	Messages []schema.Message `json:"messages"`
	Metrics  Metrics          `json:"metrics"`
}

// Trim selects the subset of messages to send for the next model call.
func Trim(messages []schema.Message, opts Options) Result {
	reg := opts.Registry
	if reg == nil {
		reg = DefaultRegistry()
	}
	counter := NewCounter(opts.Model, reg)

	priority := make(map[string]bool, len(opts.PriorityRoles))
	for _, role := range opts.PriorityRoles {
		priority[role] = true
	}

	var systemMessages, conversation []schema.Message
	for _, m := range messages {
		if m.Role == schema.RoleSystem {
			systemMessages = append(systemMessages, m)
		} else {
			conversation = append(conversation, m)
		}
	}

	keptSystem, budget := allocate(opts.TargetTokens, systemMessages, priority, counter)

	var keptConversation []schema.Message
	if minTurns := max(0, opts.MinTurns); minTurns > 0 {
		keptConversation = selectTurns(conversation, budget, minTurns, priority, counter)
	} else {
		keptConversation = selectRecent(conversation, budget, priority, counter)
	}

	output := make([]schema.Message, 0, len(keptSystem)+len(keptConversation))
	output = append(output, keptSystem...)
	output = append(output, keptConversation...)

	inputTokens := 0
	for _, m := range messages {
		inputTokens += counter.Count(m.Content)
	}
	outputTokens := 0
	for _, m := range output {
		outputTokens += counter.Count(m.Content)
	}

	return Result{
		Messages: output,
		Metrics: Metrics{
			InputTokens:   inputTokens,
			OutputTokens:  outputTokens,
			CompressRatio: round3(float64(outputTokens) / float64(max(1, inputTokens))),
			TokenCounter:  counter.Describe(),
		},
	}
}

func round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}
