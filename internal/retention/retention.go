// Package retention scores how much meaning survives context trimming.
//
// The score is the cosine similarity between embeddings of the aggregated
// conversation text before and after trimming, in [0, 1]. Scoring is
// optional: a disabled scorer or degenerate input yields a nil score,
// which the caller reports as "absent" rather than zero.
package retention

import (
	"math"
	"strings"

	"github.com/kshard/vector"

	"github.com/katamari-chat/katamari/internal/schema"
)

// Embedder maps text to a fixed-dimension vector. Implementations must be
// deterministic for identical input.
type Embedder interface {
	Embed(text string) []float32
}

// Scorer computes semantic retention between a conversation and its
// trimmed form.
type Scorer struct {
	embedder Embedder
}

// NewScorer builds a Scorer around embedder. A nil embedder disables
// scoring entirely.
func NewScorer(embedder Embedder) *Scorer {
	return &Scorer{embedder: embedder}
}

// Disabled provider values, matching the service configuration contract.
var disabledProviders = map[string]bool{
	"": true, "none": true, "off": true, "0": true, "false": true,
}

// ForProvider resolves a provider name from configuration into a Scorer,
// or nil when scoring is disabled or the provider is unknown. "lexical"
// is the only built-in provider; network-backed embedders plug in through
// NewScorer.
func ForProvider(name string, dims int) *Scorer {
	key := strings.ToLower(strings.TrimSpace(name))
	if disabledProviders[key] {
		return nil
	}
	if key == "lexical" {
		return NewScorer(NewLexicalEmbedder(dims))
	}
	return nil
}

// Score returns the retention score for a trim, rounded to three decimals,
// or nil when scoring is disabled or either side embeds to nothing.
func (s *Scorer) Score(before, after []schema.Message) *float64 {
	if s == nil || s.embedder == nil {
		return nil
	}
	beforeText := aggregate(before)
	afterText := aggregate(after)
	if beforeText == "" || afterText == "" {
		return nil
	}

	a := s.embedder.Embed(beforeText)
	b := s.embedder.Embed(afterText)
	if isZero(a) || isZero(b) {
		return nil
	}

	similarity := 1 - float64(vector.Cosine().Distance(a, b))
	similarity = math.Round(math.Max(0, math.Min(1, similarity))*1000) / 1000
	return &similarity
}

// aggregate joins non-empty message contents with newlines.
func aggregate(messages []schema.Message) string {
	var parts []string
	for _, m := range messages {
		if m.Content != "" {
			parts = append(parts, m.Content)
		}
	}
	return strings.Join(parts, "\n")
}

func isZero(vec []float32) bool {
	for _, v := range vec {
		if v != 0 {
			return false
		}
	}
	return true
}
