package trim

import "strings"

// Counter modes reported by Describe. Observability only: selection logic
// never branches on them.
const (
	ModeTiktoken  = "tiktoken"
	ModeHeuristic = "heuristic"
)

// CounterInfo describes how a Counter resolves token costs.
type CounterInfo struct {
	Mode     string `json:"mode"`
	Encoding string `json:"encoding,omitempty"`
}

// modelPrefixEncodings maps model family prefixes to encoding profiles.
// Longest prefixes first so "gpt-4o" wins over "gpt-4".
var modelPrefixEncodings = []struct {
	prefix   string
	encoding string
}{
	{"gpt-5", "o200k_base"},
	{"gpt-4o", "o200k_base"},
	{"gpt-4", "cl100k_base"},
	{"gpt-3.5", "cl100k_base"},
}

// Counter estimates the cost, in tokens, of text for one model family.
// Construction never fails: an unknown model or unloadable encoding
// degrades to the byte-level fallback or the character heuristic.
type Counter struct {
	encodingName string
	codec        Codec
}

// NewCounter resolves an encoding for model against reg. The prefix table
// is consulted first, then the registry's exact-model mapping. When the
// resolved encoding cannot be loaded, a deterministic byte-level codec is
// synthesized and registered under the same name so repeat constructions
// reuse it. When no name resolves at all, the counter runs in heuristic
// mode.
func NewCounter(model string, reg EncodingRegistry) *Counter {
	name := resolveEncodingName(model, reg)
	if name == "" {
		return &Counter{}
	}
	codec, ok := reg.Lookup(name)
	if !ok {
		codec = newByteCodec()
		reg.Register(name, codec)
	}
	return &Counter{encodingName: name, codec: codec}
}

func resolveEncodingName(model string, reg EncodingRegistry) string {
	normalized := strings.ToLower(model)
	for _, e := range modelPrefixEncodings {
		if strings.HasPrefix(normalized, e.prefix) {
			return e.encoding
		}
	}
	if name, ok := reg.LookupModel(model); ok {
		return name
	}
	return ""
}

// Count returns the token cost of text. In heuristic mode the estimate is
// max(1, len/4): never zero, so downstream budget math has no division or
// starvation edge cases.
func (c *Counter) Count(text string) int {
	if c.codec != nil {
		return c.codec.CountTokens(text)
	}
	return max(1, len(text)/4)
}

// Describe reports the resolved mode and encoding for observability.
func (c *Counter) Describe() CounterInfo {
	info := CounterInfo{Mode: ModeHeuristic, Encoding: c.encodingName}
	if c.codec != nil {
		info.Mode = ModeTiktoken
	}
	return info
}
