package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStandardTokenizer(t *testing.T) {
	tokenizer := NewStandardTokenizer()
	tokenizer.Reset([]byte("Hello, World! near-death  café"))

	tokens := make([]string, 0)
	for {
		token, ok := tokenizer.NextToken()
		if !ok {
			break
		}
		tokens = append(tokens, string(token.Text))
	}

	assert.Equal(t, []string{"hello", "world", "near", "death", "café"}, tokens)
}

func TestEnglishAnalyzer(t *testing.T) {
	analyzer := NewEnglishAnalyzer()

	assert.Equal(t, []string{"quick", "brown", "dog"}, analyzer.Analyze("The quick brown dogs"))
	assert.Empty(t, analyzer.Analyze("the of and"))
}

func TestKeywordAnalyzer(t *testing.T) {
	analyzer := NewKeywordAnalyzer()

	assert.Equal(t, []string{"the", "dogs"}, analyzer.Analyze("The dogs"))
}
