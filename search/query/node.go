package query

import (
	"strconv"
	"strings"
)

// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -
// Operator
// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -

type Operator byte

const (
	OpTerm Operator = iota
	OpSyn
	OpNear
	OpWindow
	OpScore
	OpAnd
	OpOr
	OpSum
	OpWand
	OpWsum
)

var operatorNames = map[Operator]string{
	OpTerm:   "term",
	OpSyn:    "#syn",
	OpNear:   "#near",
	OpWindow: "#window",
	OpScore:  "#score",
	OpAnd:    "#and",
	OpOr:     "#or",
	OpSum:    "#sum",
	OpWand:   "#wand",
	OpWsum:   "#wsum",
}

func (op Operator) String() string {
	return operatorNames[op]
}

// Indexed operators produce postings, the others produce scores.
func (op Operator) Indexed() bool {
	return op <= OpWindow
}

// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -
// Node
// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -

// Node is one operator of a query tree. Trees are immutable once built: the
// optimizer returns a new tree.
//
// The concrete types are TermNode, SynNode, NearNode, WindowNode, ScoreNode,
// AndNode, OrNode, SumNode, WandNode and WsumNode.
type Node interface {
	Operator() Operator
	Args() []Node
	// String renders the textual form, with analyzed terms. Parse it back
	// with AnalyzedTerms.
	String() string
}

func renderArgs(name string, args []Node, weights []float64) string {
	var builder strings.Builder

	builder.WriteString(name)
	builder.WriteByte('(')
	for i, arg := range args {
		if i > 0 {
			builder.WriteByte(' ')
		}
		if weights != nil {
			builder.WriteString(strconv.FormatFloat(weights[i], 'f', -1, 64))
			builder.WriteByte(' ')
		}
		builder.WriteString(arg.String())
	}
	builder.WriteByte(')')

	return builder.String()
}

// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -
// TermNode
// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -

// TermNode holds an analyzed term.
type TermNode struct {
	Field string
	Term  string
}

func (n *TermNode) Operator() Operator { return OpTerm }
func (n *TermNode) Args() []Node       { return nil }
func (n *TermNode) String() string     { return n.Term + "." + n.Field }

// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -
// Indexed operators
// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -

type SynNode struct {
	Children []Node
}

func (n *SynNode) Operator() Operator { return OpSyn }
func (n *SynNode) Args() []Node       { return n.Children }
func (n *SynNode) String() string     { return renderArgs("#syn", n.Children, nil) }

// NearNode matches its children in order, each within Distance positions of
// the previous one.
type NearNode struct {
	Distance int
	Children []Node
}

func (n *NearNode) Operator() Operator { return OpNear }
func (n *NearNode) Args() []Node       { return n.Children }
func (n *NearNode) String() string {
	return renderArgs("#near/"+strconv.Itoa(n.Distance), n.Children, nil)
}

// WindowNode matches its children in any order within a span narrower than
// Distance.
type WindowNode struct {
	Distance int
	Children []Node
}

func (n *WindowNode) Operator() Operator { return OpWindow }
func (n *WindowNode) Args() []Node       { return n.Children }
func (n *WindowNode) String() string {
	return renderArgs("#window/"+strconv.Itoa(n.Distance), n.Children, nil)
}

// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -
// ScoreNode
// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -

// ScoreNode turns the postings of an indexed operator into scores.
type ScoreNode struct {
	Arg Node
}

func (n *ScoreNode) Operator() Operator { return OpScore }
func (n *ScoreNode) Args() []Node       { return []Node{n.Arg} }

// The parser adds score nodes itself, so the wrapper is not rendered.
func (n *ScoreNode) String() string { return n.Arg.String() }
