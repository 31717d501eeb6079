package query

// Optimize returns a new tree without degenerate operators, or nil when
// nothing is left. An operator whose arguments were all removed is removed,
// and an operator left with one argument is replaced by it, except
// ScoreNode. A removed argument of a weighted operator takes its weight
// with it.
func Optimize(node Node) Node {
	if node == nil {
		return nil
	}

	if _, ok := node.(*TermNode); ok {
		return node
	}

	args := node.Args()
	weights := weightsOf(node)

	optimizedArgs := make([]Node, 0, len(args))
	var optimizedWeights []float64
	if weights != nil {
		optimizedWeights = make([]float64, 0, len(weights))
	}

	for i, arg := range args {
		optimized := Optimize(arg)
		if optimized == nil {
			continue
		}

		optimizedArgs = append(optimizedArgs, optimized)
		if weights != nil && i < len(weights) {
			optimizedWeights = append(optimizedWeights, weights[i])
		}
	}

	if len(optimizedArgs) == 0 {
		return nil
	}

	if _, ok := node.(*ScoreNode); !ok && len(optimizedArgs) == 1 {
		return optimizedArgs[0]
	}

	return withArgs(node, optimizedArgs, optimizedWeights)
}
