package index

import (
	"unicode"
	"unicode/utf8"

	"github.com/reiver/go-porterstemmer"
	"golang.org/x/text/unicode/norm"
)

type Token struct {
	Text []byte
}

type StandardTokenizer struct {
	input           []byte
	inputIndex      int
	token           *Token
	tokenBuffer     []rune
	tokenTextBuffer []byte
}

func NewStandardTokenizer() *StandardTokenizer {
	return &StandardTokenizer{
		token:           &Token{},
		tokenBuffer:     make([]rune, 0, 100),
		tokenTextBuffer: make([]byte, 100),
	}
}

func (t *StandardTokenizer) Reset(input []byte) {
	t.input = norm.NFC.Bytes(input)
	t.inputIndex = 0
}

func runesToBytes(rs []rune, out []byte) ([]byte, []byte) {
	size := 0
	for _, r := range rs {
		size += utf8.RuneLen(r)
	}

	if cap(out) < size {
		out = make([]byte, size)
	}

	count := 0
	for _, r := range rs {
		count += utf8.EncodeRune(out[count:], r)
	}

	return out, out[:size]
}

// Token is valid until the next call to NextToken
func (t *StandardTokenizer) NextToken() (*Token, bool) {
	t.tokenBuffer = t.tokenBuffer[:0]

	for t.inputIndex < len(t.input) {
		r, size := utf8.DecodeRune(t.input[t.inputIndex:])
		t.inputIndex += size

		normalizedRune := unicode.ToLower(r)

		if unicode.IsSpace(normalizedRune) || unicode.IsPunct(normalizedRune) || unicode.IsSymbol(normalizedRune) {
			if len(t.tokenBuffer) > 0 {
				t.tokenTextBuffer, t.token.Text = runesToBytes(t.tokenBuffer, t.tokenTextBuffer)
				return t.token, true
			}
			continue
		}

		t.tokenBuffer = append(t.tokenBuffer, normalizedRune)
	}

	if len(t.tokenBuffer) > 0 {
		t.tokenTextBuffer, t.token.Text = runesToBytes(t.tokenBuffer, t.tokenTextBuffer)
		return t.token, true
	}

	return nil, false
}

var englishStopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {}, "but": {}, "by": {},
	"for": {}, "if": {}, "in": {}, "into": {}, "is": {}, "it": {}, "no": {}, "not": {}, "of": {},
	"on": {}, "or": {}, "such": {}, "that": {}, "the": {}, "their": {}, "then": {}, "there": {},
	"these": {}, "they": {}, "this": {}, "to": {}, "was": {}, "will": {}, "with": {},
}

// Analyzer turns raw text into the terms stored in the index. Queries must go
// through the same analyzer as documents for terms to match.
type Analyzer struct {
	stopwords map[string]struct{}
	stem      bool
}

func NewEnglishAnalyzer() *Analyzer {
	return &Analyzer{stopwords: englishStopwords, stem: true}
}

// NewKeywordAnalyzer lowercases and splits but keeps every token as is.
func NewKeywordAnalyzer() *Analyzer {
	return &Analyzer{stopwords: map[string]struct{}{}}
}

// Analyze is safe for concurrent use.
func (a *Analyzer) Analyze(text string) []string {
	tokenizer := NewStandardTokenizer()
	tokenizer.Reset([]byte(text))

	terms := make([]string, 0, 8)
	for {
		token, ok := tokenizer.NextToken()
		if !ok {
			break
		}

		term := string(token.Text)
		if _, stop := a.stopwords[term]; stop {
			continue
		}

		if a.stem {
			term = stem(term)
		}

		if term == "" {
			continue
		}

		terms = append(terms, term)
	}

	return terms
}

func stem(term string) (stemmed string) {
	// The stemmer panics on some non-ASCII input.
	defer func() {
		if r := recover(); r != nil {
			stemmed = term
		}
	}()

	return porterstemmer.StemString(term)
}
