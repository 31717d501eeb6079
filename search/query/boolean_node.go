package query

type AndNode struct {
	Children []Node
}

func (n *AndNode) Operator() Operator { return OpAnd }
func (n *AndNode) Args() []Node       { return n.Children }
func (n *AndNode) String() string     { return renderArgs("#and", n.Children, nil) }

type OrNode struct {
	Children []Node
}

func (n *OrNode) Operator() Operator { return OpOr }
func (n *OrNode) Args() []Node       { return n.Children }
func (n *OrNode) String() string     { return renderArgs("#or", n.Children, nil) }

type SumNode struct {
	Children []Node
}

func (n *SumNode) Operator() Operator { return OpSum }
func (n *SumNode) Args() []Node       { return n.Children }
func (n *SumNode) String() string     { return renderArgs("#sum", n.Children, nil) }

// WandNode is a weighted geometric mean. Weights[i] pairs with Children[i].
type WandNode struct {
	Children []Node
	Weights  []float64
}

func (n *WandNode) Operator() Operator { return OpWand }
func (n *WandNode) Args() []Node       { return n.Children }
func (n *WandNode) String() string     { return renderArgs("#wand", n.Children, n.Weights) }

// WsumNode is a weighted arithmetic mean. Weights[i] pairs with Children[i].
type WsumNode struct {
	Children []Node
	Weights  []float64
}

func (n *WsumNode) Operator() Operator { return OpWsum }
func (n *WsumNode) Args() []Node       { return n.Children }
func (n *WsumNode) String() string     { return renderArgs("#wsum", n.Children, n.Weights) }

func weightsOf(node Node) []float64 {
	switch n := node.(type) {
	case *WandNode:
		return n.Weights
	case *WsumNode:
		return n.Weights
	}
	return nil
}

func sum(values []float64) float64 {
	total := 0.0
	for _, value := range values {
		total += value
	}
	return total
}

// withArgs returns a node of the same operator over args. weights is
// ignored for unweighted operators.
func withArgs(node Node, args []Node, weights []float64) Node {
	switch n := node.(type) {
	case *SynNode:
		return &SynNode{Children: args}
	case *NearNode:
		return &NearNode{Distance: n.Distance, Children: args}
	case *WindowNode:
		return &WindowNode{Distance: n.Distance, Children: args}
	case *ScoreNode:
		return &ScoreNode{Arg: args[0]}
	case *AndNode:
		return &AndNode{Children: args}
	case *OrNode:
		return &OrNode{Children: args}
	case *SumNode:
		return &SumNode{Children: args}
	case *WandNode:
		return &WandNode{Children: args, Weights: weights}
	case *WsumNode:
		return &WsumNode{Children: args, Weights: weights}
	}
	return node
}
