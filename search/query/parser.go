package query

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Analyzer turns a query word into index terms, the same way documents were
// analyzed.
type Analyzer interface {
	Analyze(text string) []string
}

// AnalyzedTerms takes every word as an index term. Text rendered by String
// holds analyzed terms already and must be parsed with it: analyzers such as
// stemmers are not idempotent.
var AnalyzedTerms Analyzer = analyzedTerms{}

type analyzedTerms struct{}

func (analyzedTerms) Analyze(text string) []string {
	if text == "" {
		return nil
	}
	return []string{text}
}

const DefaultField = "body"

// DefaultFields are the fields a term may be qualified with.
var DefaultFields = []string{"body", "title", "url", "inlink", "keywords"}

// frame is an operator being parsed.
type frame struct {
	op       Operator
	distance int
	args     []Node
	weights  []float64
	// Weighted operators alternate weight and argument.
	weightExpected bool
}

func (f *frame) weighted() bool {
	return f.op == OpWand || f.op == OpWsum
}

func (f *frame) appendArg(arg Node) error {
	if f.op.Indexed() {
		if !arg.Operator().Indexed() {
			return fmt.Errorf("%w: %s cannot hold %s", ErrSyntax, f.op, arg.Operator())
		}
	} else if arg.Operator().Indexed() {
		arg = &ScoreNode{Arg: arg}
	}

	f.args = append(f.args, arg)
	if f.weighted() {
		f.weightExpected = true
	}

	return nil
}

func (f *frame) node() (Node, error) {
	switch f.op {
	case OpSyn:
		return &SynNode{Children: f.args}, nil
	case OpNear:
		return &NearNode{Distance: f.distance, Children: f.args}, nil
	case OpWindow:
		return &WindowNode{Distance: f.distance, Children: f.args}, nil
	case OpAnd:
		return &AndNode{Children: f.args}, nil
	case OpOr:
		return &OrNode{Children: f.args}, nil
	case OpSum:
		return &SumNode{Children: f.args}, nil
	}

	if len(f.weights) != len(f.args) {
		return nil, fmt.Errorf("%w: %s has %d weights for %d arguments", ErrSyntax, f.op, len(f.weights), len(f.args))
	}

	if f.op == OpWand {
		return &WandNode{Children: f.args, Weights: f.weights}, nil
	}
	return &WsumNode{Children: f.args, Weights: f.weights}, nil
}

// parseOperator returns false when token is not an operator.
func parseOperator(token string) (*frame, bool, error) {
	if !strings.HasPrefix(token, "#") {
		return nil, false, nil
	}

	name, distanceText, hasDistance := strings.Cut(strings.ToLower(token), "/")

	simple := map[string]Operator{
		"#and":  OpAnd,
		"#or":   OpOr,
		"#sum":  OpSum,
		"#wand": OpWand,
		"#wsum": OpWsum,
		"#syn":  OpSyn,
	}

	if op, exists := simple[name]; exists && !hasDistance {
		return &frame{op: op, weightExpected: op == OpWand || op == OpWsum}, true, nil
	}

	if name == "#near" || name == "#window" {
		distance, err := strconv.Atoi(distanceText)
		if err != nil || distance < 1 {
			return nil, true, fmt.Errorf("%w: %s needs a positive distance", ErrSyntax, token)
		}

		op := OpNear
		if name == "#window" {
			op = OpWindow
		}
		return &frame{op: op, distance: distance}, true, nil
	}

	return nil, true, fmt.Errorf("%w: unknown operator %s", ErrSyntax, token)
}

// tokenize splits on whitespace and commas, and keeps parentheses as tokens.
func tokenize(text string) []string {
	tokens := make([]string, 0, 16)

	start := -1
	flush := func(end int) {
		if start >= 0 {
			tokens = append(tokens, text[start:end])
			start = -1
		}
	}

	for i, r := range text {
		switch r {
		case ' ', '\t', '\n', '\r', ',':
			flush(i)
		case '(', ')':
			flush(i)
			tokens = append(tokens, string(r))
		default:
			if start < 0 {
				start = i
			}
		}
	}
	flush(len(text))

	return tokens
}

type parser struct {
	analyzer Analyzer
	fields   []string
	stack    []*frame
}

func (p *parser) top() *frame {
	return p.stack[len(p.stack)-1]
}

func (p *parser) term(token string) error {
	current := p.top()

	if current.weightExpected {
		weight, err := strconv.ParseFloat(token, 64)
		if err != nil {
			return fmt.Errorf("%w: %s expects a weight, got %q", ErrSyntax, current.op, token)
		}
		current.weights = append(current.weights, weight)
		current.weightExpected = false
		return nil
	}

	word, field, qualified := strings.Cut(token, ".")
	if !qualified {
		field = DefaultField
	}
	field = strings.ToLower(field)

	if !slices.Contains(p.fields, field) {
		return fmt.Errorf("%w: unknown field in %q", ErrSyntax, token)
	}

	terms := p.analyzer.Analyze(word)

	if current.weighted() {
		weight := current.weights[len(current.weights)-1]
		if len(terms) == 0 {
			// Stopwords take their weight with them.
			current.weights = current.weights[:len(current.weights)-1]
			current.weightExpected = true
			return nil
		}

		// Every token of a split word gets the word's weight.
		for range len(terms) - 1 {
			current.weights = append(current.weights, weight)
		}
	}

	for _, term := range terms {
		if err := current.appendArg(&TermNode{Field: field, Term: term}); err != nil {
			return err
		}
	}

	return nil
}

// Parse wraps text in the model's default operator and builds its tree.
// Indexed operators under scoring operators are wrapped in ScoreNode. fields
// lists the allowed field qualifiers, DefaultFields when nil.
//
// The tree is validated against model but not optimized.
func Parse(text string, model RetrievalModel, analyzer Analyzer, fields []string) (Node, error) {
	if fields == nil {
		fields = DefaultFields
	}

	p := &parser{analyzer: analyzer, fields: fields}

	tokens := tokenize(model.DefaultOperator().String() + "(" + text + ")")

	var root Node

	for i := 0; i < len(tokens); i++ {
		token := tokens[i]

		if root != nil {
			return nil, fmt.Errorf("%w: unexpected %q after the query", ErrSyntax, token)
		}

		switch token {
		case "(":
			return nil, fmt.Errorf("%w: unexpected '('", ErrSyntax)

		case ")":
			if len(p.stack) == 0 {
				return nil, fmt.Errorf("%w: unbalanced ')'", ErrSyntax)
			}

			current := p.top()
			p.stack = p.stack[:len(p.stack)-1]

			node, err := current.node()
			if err != nil {
				return nil, err
			}

			if len(p.stack) == 0 {
				root = node
				continue
			}

			parent := p.top()
			if parent.weightExpected {
				return nil, fmt.Errorf("%w: %s expects a weight before %s", ErrSyntax, parent.op, current.op)
			}
			if err := parent.appendArg(node); err != nil {
				return nil, err
			}

		default:
			opFrame, isOperator, err := parseOperator(token)
			if err != nil {
				return nil, err
			}

			if !isOperator {
				if len(p.stack) == 0 {
					return nil, fmt.Errorf("%w: %q outside of an operator", ErrSyntax, token)
				}
				if err := p.term(token); err != nil {
					return nil, err
				}
				continue
			}

			if i+1 == len(tokens) || tokens[i+1] != "(" {
				return nil, fmt.Errorf("%w: %s must be followed by '('", ErrSyntax, token)
			}
			i++

			if len(p.stack) > 0 && p.top().weightExpected {
				return nil, fmt.Errorf("%w: %s expects a weight before %s", ErrSyntax, p.top().op, token)
			}

			p.stack = append(p.stack, opFrame)
		}
	}

	if root == nil {
		return nil, fmt.Errorf("%w: unbalanced '('", ErrSyntax)
	}

	if err := Validate(root, model); err != nil {
		return nil, err
	}

	return root, nil
}
