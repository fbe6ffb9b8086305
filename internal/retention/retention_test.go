package retention

import (
	"testing"

	"github.com/katamari-chat/katamari/internal/schema"
)

func messagesOf(contents ...string) []schema.Message {
	var out []schema.Message
	for _, c := range contents {
		out = append(out, schema.NewUserMessage(c))
	}
	return out
}

func TestScore_IdenticalIsOne(t *testing.T) {
	s := NewScorer(NewLexicalEmbedder(0))
	before := messagesOf("the quick brown fox", "jumps over the lazy dog")
	got := s.Score(before, before)
	if got == nil {
		t.Fatal("expected a score, got nil")
	}
	if *got != 1.0 {
		t.Errorf("identical inputs should score 1.0, got %v", *got)
	}
}

func TestScore_SubsetRetainsMost(t *testing.T) {
	s := NewScorer(NewLexicalEmbedder(0))
	before := messagesOf(
		"alpha beta gamma delta",
		"alpha beta gamma delta",
		"epsilon zeta",
	)
	after := messagesOf("alpha beta gamma delta", "alpha beta gamma delta")
	got := s.Score(before, after)
	if got == nil {
		t.Fatal("expected a score, got nil")
	}
	if *got <= 0.5 || *got > 1.0 {
		t.Errorf("dropping a small tail should keep a high score, got %v", *got)
	}
}

func TestScore_DisjointIsLow(t *testing.T) {
	s := NewScorer(NewLexicalEmbedder(1024))
	got := s.Score(messagesOf("red orange yellow"), messagesOf("violin cello bass"))
	if got == nil {
		t.Fatal("expected a score, got nil")
	}
	if *got > 0.2 {
		t.Errorf("disjoint vocabularies should score near zero, got %v", *got)
	}
}

func TestScore_DegenerateInputs(t *testing.T) {
	s := NewScorer(NewLexicalEmbedder(0))
	if got := s.Score(nil, messagesOf("text")); got != nil {
		t.Errorf("empty before should yield nil, got %v", *got)
	}
	if got := s.Score(messagesOf("text"), messagesOf("")); got != nil {
		t.Errorf("empty after should yield nil, got %v", *got)
	}
	// Punctuation-only text embeds to a zero vector.
	if got := s.Score(messagesOf("?!… - -"), messagesOf("text")); got != nil {
		t.Errorf("zero-vector side should yield nil, got %v", *got)
	}
}

func TestScore_NilScorerDisabled(t *testing.T) {
	var s *Scorer
	if got := s.Score(messagesOf("a"), messagesOf("a")); got != nil {
		t.Errorf("nil scorer must be a no-op, got %v", *got)
	}
}

func TestForProvider(t *testing.T) {
	for _, name := range []string{"", "none", "off", "0", "false", "NONE", " Off "} {
		if ForProvider(name, 0) != nil {
			t.Errorf("provider %q should disable scoring", name)
		}
	}
	if ForProvider("lexical", 128) == nil {
		t.Error("lexical provider should build a scorer")
	}
	if ForProvider("openai", 0) != nil {
		t.Error("unknown providers should disable scoring")
	}
}

func TestLexicalEmbedder_Deterministic(t *testing.T) {
	e := NewLexicalEmbedder(64)
	a := e.Embed("Hello, World! hello")
	b := e.Embed("Hello, World! hello")
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("embedding not deterministic at dim %d", i)
		}
	}
	// "hello" appears twice after lowercasing.
	total := float32(0)
	for _, v := range a {
		total += v
	}
	if total != 3 {
		t.Errorf("expected 3 tokens total, got %v", total)
	}
}
