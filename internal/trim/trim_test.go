package trim

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katamari-chat/katamari/internal/schema"
)

// isSubsequence reports whether sub appears in full in the same relative
// order without duplication.
func isSubsequence(sub, full []schema.Message) bool {
	j := 0
	for _, m := range full {
		if j < len(sub) && sub[j] == m {
			j++
		}
	}
	return j == len(sub)
}

func TestTrim_SubsequenceProperty(t *testing.T) {
	messages := []schema.Message{
		schema.NewSystemMessage("be helpful"),
		schema.NewUserMessage(strings.Repeat("q1 ", 100)),
		schema.NewAssistantMessage(strings.Repeat("a1 ", 100)),
		schema.NewUserMessage(strings.Repeat("q2 ", 100)),
		schema.NewAssistantMessage(strings.Repeat("a2 ", 100)),
		schema.NewUserMessage("latest question"),
	}
	for _, target := range []int{1, 256, 500, 10_000} {
		res := Trim(messages, Options{
			TargetTokens: target,
			Model:        "test-model",
			Registry:     charRegistry("test-model"),
		})
		assert.True(t, isSubsequence(res.Messages, messages), "target %d", target)
	}
}

func TestTrim_LatestTurnAlwaysKept(t *testing.T) {
	latestUser := schema.NewUserMessage(strings.Repeat("x", 5000))
	latestReply := schema.NewAssistantMessage(strings.Repeat("y", 5000))
	messages := []schema.Message{
		schema.NewSystemMessage("sys"),
		schema.NewUserMessage("old"),
		schema.NewAssistantMessage("old reply"),
		latestUser,
		latestReply,
	}
	res := Trim(messages, Options{
		TargetTokens: 1, // far below the latest turn's cost
		Model:        "test-model",
		Registry:     charRegistry("test-model"),
	})
	assert.Contains(t, res.Messages, latestUser)
	assert.Contains(t, res.Messages, latestReply)
}

func TestTrim_PriorityRolesAlwaysKept(t *testing.T) {
	pinned := schema.Message{Role: "developer", Content: strings.Repeat("rules ", 200)}
	messages := []schema.Message{
		schema.NewSystemMessage("sys"),
		schema.NewUserMessage("q1"),
		pinned,
		schema.NewAssistantMessage(strings.Repeat("filler ", 500)),
		schema.NewUserMessage("latest"),
	}
	res := Trim(messages, Options{
		TargetTokens:  1,
		Model:         "test-model",
		PriorityRoles: []string{"developer"},
		Registry:      charRegistry("test-model"),
	})
	assert.Contains(t, res.Messages, pinned)
}

func TestTrim_OversizedMessageDoesNotBlock(t *testing.T) {
	// Regression: a huge non-priority message between a pinned developer
	// message and the final user turn must be skipped without terminating
	// the scan — both neighbours survive.
	developer := schema.Message{Role: "developer", Content: strings.Repeat("details", 400)}
	oversized := schema.NewAssistantMessage(strings.Repeat("overflow", 4000))
	latest := schema.NewUserMessage("latest")
	messages := []schema.Message{
		schema.NewSystemMessage("sys"),
		developer,
		oversized,
		latest,
	}
	res := Trim(messages, Options{
		TargetTokens:  256,
		Model:         "unknown-model", // heuristic counting
		PriorityRoles: []string{"developer"},
		Registry:      newFakeRegistry(),
	})
	assert.Contains(t, res.Messages, developer)
	assert.Contains(t, res.Messages, latest)
	assert.NotContains(t, res.Messages, oversized)
}

func TestTrim_BudgetFloor(t *testing.T) {
	// target_tokens=1 is clamped to the floor, so a conversation that fits
	// in the floor budget survives whole.
	messages := []schema.Message{
		schema.NewSystemMessage("sys!"),
		schema.NewUserMessage(strings.Repeat("a", 100)),
		schema.NewAssistantMessage(strings.Repeat("b", 100)),
		schema.NewUserMessage(strings.Repeat("c", 40)),
	}
	res := Trim(messages, Options{
		TargetTokens: 1,
		Model:        "test-model",
		Registry:     charRegistry("test-model"),
	})
	assert.Equal(t, messages, res.Messages)
}

func TestTrim_CompressionMath(t *testing.T) {
	messages := []schema.Message{
		schema.NewSystemMessage("sys!"),                       // 4 tokens
		schema.NewUserMessage(strings.Repeat("a", 300)),       // 300
		schema.NewAssistantMessage(strings.Repeat("b", 300)),  // 300
		schema.NewUserMessage("hi"),                           // 2
	}
	res := Trim(messages, Options{
		TargetTokens: 300,
		Model:        "test-model",
		Registry:     charRegistry("test-model"),
	})

	// Only the system message and the latest turn fit: 4 + 2 tokens out of
	// 606 in, so the ratio is round(6/606, 3).
	require.Len(t, res.Messages, 2)
	assert.Equal(t, 606, res.Metrics.InputTokens)
	assert.Equal(t, 6, res.Metrics.OutputTokens)
	assert.Equal(t, 0.01, res.Metrics.CompressRatio)
	assert.Nil(t, res.Metrics.SemanticRetention)
}

func TestTrim_MinTurnsKeepsTurnsPastBudget(t *testing.T) {
	var messages []schema.Message
	for i := 0; i < 4; i++ {
		messages = append(messages,
			schema.NewUserMessage(strings.Repeat("q", 100)),
			schema.NewAssistantMessage(strings.Repeat("a", 100)),
		)
	}
	res := Trim(messages, Options{
		TargetTokens: 256,
		Model:        "test-model",
		MinTurns:     3,
		Registry:     charRegistry("test-model"),
	})
	// Three turns survive even though two of them blow the budget.
	assert.Len(t, res.Messages, 6)
	assert.True(t, isSubsequence(res.Messages, messages))
	assert.Equal(t, messages[2:], res.Messages)
}

func TestTrim_MinTurnsPriorityTurnKept(t *testing.T) {
	pinned := schema.Message{Role: "developer", Content: strings.Repeat("pin", 100)}
	messages := []schema.Message{
		schema.NewUserMessage(strings.Repeat("old", 100)),
		pinned,
		schema.NewUserMessage(strings.Repeat("mid", 100)),
		schema.NewAssistantMessage(strings.Repeat("mid", 100)),
		schema.NewUserMessage("latest"),
	}
	res := Trim(messages, Options{
		TargetTokens:  256,
		Model:         "test-model",
		MinTurns:      1,
		PriorityRoles: []string{"developer"},
		Registry:      charRegistry("test-model"),
	})
	assert.Contains(t, res.Messages, pinned)
	assert.Contains(t, res.Messages, messages[4])
	assert.NotContains(t, res.Messages, messages[2])
}

func TestTrim_SecondSystemMessageRule(t *testing.T) {
	first := schema.NewSystemMessage("first")
	second := schema.NewSystemMessage("second")
	messages := []schema.Message{first, second, schema.NewUserMessage("hi")}

	res := Trim(messages, Options{
		TargetTokens: 4096,
		Model:        "test-model",
		Registry:     charRegistry("test-model"),
	})
	assert.Contains(t, res.Messages, first)
	assert.NotContains(t, res.Messages, second)

	// The second system message survives only when "system" itself is a
	// priority role.
	res = Trim(messages, Options{
		TargetTokens:  4096,
		Model:         "test-model",
		PriorityRoles: []string{"system"},
		Registry:      charRegistry("test-model"),
	})
	assert.Contains(t, res.Messages, second)
}

func TestTrim_EmptyInput(t *testing.T) {
	res := Trim(nil, Options{TargetTokens: 4096, Model: "test-model", Registry: charRegistry("test-model")})
	assert.Empty(t, res.Messages)
	assert.Equal(t, 0, res.Metrics.InputTokens)
	assert.Equal(t, 0, res.Metrics.OutputTokens)
	assert.Equal(t, 0.0, res.Metrics.CompressRatio)
}

func TestTrim_Deterministic(t *testing.T) {
	messages := []schema.Message{
		schema.NewSystemMessage("sys"),
		schema.NewUserMessage(strings.Repeat("q", 400)),
		schema.NewAssistantMessage(strings.Repeat("a", 400)),
		schema.NewUserMessage("latest"),
	}
	opts := Options{
		TargetTokens: 300,
		Model:        "test-model",
		MinTurns:     0,
		Registry:     charRegistry("test-model"),
	}
	first := Trim(messages, opts)
	second := Trim(messages, opts)
	assert.Equal(t, first, second)
}

func TestTrim_NegativeMinTurnsClamped(t *testing.T) {
	messages := []schema.Message{
		schema.NewUserMessage("q"),
		schema.NewAssistantMessage("a"),
	}
	res := Trim(messages, Options{
		TargetTokens: 4096,
		Model:        "test-model",
		MinTurns:     -5,
		Registry:     charRegistry("test-model"),
	})
	assert.Equal(t, messages, res.Messages)
}
