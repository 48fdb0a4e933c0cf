package llm

import (
	"github.com/tiktoken-go/tokenizer"
)

// TokenCounter estimates prompt sizes for logging and tracing.
// A nil counter or unknown model counts zero.
type TokenCounter struct {
	codec tokenizer.Codec
}

func NewTokenCounter(model string) *TokenCounter {
	codec, err := tokenizer.ForModel(tokenizer.Model(model))
	if err != nil {
		codec, err = tokenizer.Get(tokenizer.Cl100kBase)
		if err != nil {
			return &TokenCounter{}
		}
	}
	return &TokenCounter{codec: codec}
}

func (t *TokenCounter) Count(text string) int {
	if t == nil || t.codec == nil || text == "" {
		return 0
	}

	ids, _, err := t.codec.Encode(text)
	if err != nil {
		return 0
	}
	return len(ids)
}
