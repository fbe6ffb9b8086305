package retention

import (
	"hash/fnv"
	"strings"
	"unicode"
)

// defaultDims is the embedding width used when the configuration leaves it
// unset. Wide enough that short conversations rarely collide.
const defaultDims = 256

// LexicalEmbedder is a deterministic offline embedder: a hashed
// bag-of-words over lowercased alphanumeric tokens. It trades semantic
// depth for reproducibility with no external services or model assets.
type LexicalEmbedder struct {
	dims int
}

func NewLexicalEmbedder(dims int) *LexicalEmbedder {
	if dims <= 0 {
		dims = defaultDims
	}
	return &LexicalEmbedder{dims: dims}
}

func (e *LexicalEmbedder) Embed(text string) []float32 {
	vec := make([]float32, e.dims)
	for _, token := range tokenize(text) {
		h := fnv.New32a()
		h.Write([]byte(token))
		vec[h.Sum32()%uint32(e.dims)]++
	}
	return vec
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
