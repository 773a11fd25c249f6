// Package embeddingtest provides deterministic embedding doubles for tests.
package embeddingtest

import (
	"context"
	"strings"
	"sync"
	"unicode"

	"ai-sqlagent-be/pkg/embedding"
)

// Vocabulary embeds text as normalized word counts over a fixed vocabulary.
// Texts sharing more vocabulary words end up closer in cosine space.
type Vocabulary struct {
	Words []string
	Err   error

	mu    sync.Mutex
	calls int
}

var _ embedding.EmbeddingProvider = &Vocabulary{}

func NewVocabulary(words ...string) *Vocabulary {
	return &Vocabulary{Words: words}
}

func (v *Vocabulary) Embed(_ context.Context, text string, _ embedding.TaskType) ([]float32, error) {
	v.mu.Lock()
	v.calls++
	v.mu.Unlock()

	if v.Err != nil {
		return nil, v.Err
	}

	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
	vec := make([]float32, len(v.Words))
	for _, tok := range tokens {
		for i, w := range v.Words {
			if tok == w {
				vec[i]++
			}
		}
	}
	return embedding.Normalize(vec), nil
}

// Calls reports how many texts were embedded.
func (v *Vocabulary) Calls() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.calls
}
