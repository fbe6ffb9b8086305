package trim

import (
	"strings"
	"sync"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

// Codec turns text into a token count. It abstracts over real tiktoken
// encodings and the synthesized byte-level fallback so the Counter never
// cares which one loaded.
type Codec interface {
	CountTokens(text string) int
}

// EncodingRegistry resolves encoding profile names to codecs. It replaces
// the usual module-level encoding cache with an explicit object so tests
// can inject fakes. Implementations signal failure by returning ok=false;
// they never panic.
type EncodingRegistry interface {
	// Lookup returns the codec registered under an encoding profile name.
	Lookup(name string) (Codec, bool)
	// LookupModel returns the encoding profile name registered for the
	// exact model string.
	LookupModel(model string) (string, bool)
	// Register stores a codec under name, making later Lookups hit it.
	Register(name string, codec Codec)
}

// TiktokenRegistry is the production EncodingRegistry, backed by
// pkoukk/tiktoken-go with a read-through cache of resolved codecs. Safe for
// concurrent use; caching is a performance optimization only.
type TiktokenRegistry struct {
	codecs sync.Map // encoding name → Codec
}

func NewRegistry() *TiktokenRegistry {
	return &TiktokenRegistry{}
}

var (
	defaultRegistry     *TiktokenRegistry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the registry shared by callers that do not
// inject their own.
func DefaultRegistry() *TiktokenRegistry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

func (r *TiktokenRegistry) Lookup(name string) (Codec, bool) {
	if v, ok := r.codecs.Load(name); ok {
		return v.(Codec), true
	}
	enc, err := tiktoken.GetEncoding(name)
	if err != nil {
		return nil, false
	}
	actual, _ := r.codecs.LoadOrStore(name, Codec(tiktokenCodec{enc: enc}))
	return actual.(Codec), true
}

func (r *TiktokenRegistry) LookupModel(model string) (string, bool) {
	if name, ok := tiktoken.MODEL_TO_ENCODING[model]; ok {
		return name, true
	}
	for prefix, name := range tiktoken.MODEL_PREFIX_TO_ENCODING {
		if strings.HasPrefix(model, prefix) {
			return name, true
		}
	}
	return "", false
}

func (r *TiktokenRegistry) Register(name string, codec Codec) {
	r.codecs.Store(name, codec)
}

// tiktokenCodec counts tokens with a loaded tiktoken encoding.
type tiktokenCodec struct {
	enc *tiktoken.Tiktoken
}

func (c tiktokenCodec) CountTokens(text string) int {
	return len(c.enc.Encode(text, nil, nil))
}

// byteCodec is the deterministic fallback profile synthesized when an
// encoding asset cannot be loaded: one token per byte value 0–255 plus a
// terminal special token. It is reproducible with no external assets, so
// counting degrades in precision but never in availability.
type byteCodec struct{}

func newByteCodec() Codec { return byteCodec{} }

func (byteCodec) CountTokens(text string) int { return len(text) }
