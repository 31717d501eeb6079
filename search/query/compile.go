package query

import (
	"fmt"
	"slices"
)

var allModels = []ModelKind{UnrankedBoolean, RankedBoolean, BM25, Indri}

var indexedRules = map[Operator][]ModelKind{
	OpTerm:   allModels,
	OpSyn:    allModels,
	OpNear:   allModels,
	OpWindow: {BM25, Indri},
	OpScore:  allModels,
}

// Supports reports whether op can be evaluated under kind.
func Supports(op Operator, kind ModelKind) bool {
	if models, exists := indexedRules[op]; exists {
		return slices.Contains(models, kind)
	}

	_, exists := combinationRules[op][kind]
	return exists
}

// Validate checks the structure of the tree and that the model supports
// every operator. Operators without arguments are allowed, they match
// nothing.
func Validate(node Node, model RetrievalModel) error {
	if node == nil {
		return fmt.Errorf("%w: missing operator argument", ErrSyntax)
	}

	op := node.Operator()
	if !Supports(op, model.Kind) {
		return fmt.Errorf("%w: %s under %s", ErrModelMismatch, op, model.Kind)
	}

	switch n := node.(type) {
	case *TermNode:
		if n.Term == "" || n.Field == "" {
			return fmt.Errorf("%w: empty term or field", ErrSyntax)
		}
		return nil

	case *NearNode:
		if n.Distance < 1 {
			return fmt.Errorf("%w: %s distance must be positive", ErrSyntax, op)
		}
	case *WindowNode:
		if n.Distance < 1 {
			return fmt.Errorf("%w: %s distance must be positive", ErrSyntax, op)
		}

	case *ScoreNode:
		if n.Arg == nil || !n.Arg.Operator().Indexed() {
			return fmt.Errorf("%w: %s needs one indexed argument", ErrSyntax, op)
		}

	case *WandNode, *WsumNode:
		weights := weightsOf(n)
		if len(weights) != len(n.Args()) {
			return fmt.Errorf("%w: %s has %d weights for %d arguments", ErrSyntax, op, len(weights), len(n.Args()))
		}
		// Positive weights keep every optimized subset valid.
		for _, weight := range weights {
			if !(weight > 0) {
				return fmt.Errorf("%w: %s weight %g is not positive", ErrSyntax, op, weight)
			}
		}
	}

	args := node.Args()
	for _, arg := range args {
		if err := Validate(arg, model); err != nil {
			return err
		}

		if op.Indexed() && !arg.Operator().Indexed() {
			return fmt.Errorf("%w: %s cannot hold %s", ErrSyntax, op, arg.Operator())
		}
	}

	if op.Indexed() {
		// Empty arguments have no field.
		field := ""
		for _, arg := range args {
			argField := fieldOf(arg)
			if argField == "" {
				continue
			}
			if field != "" && argField != field {
				return fmt.Errorf("%w: %s mixes fields %s and %s", ErrSyntax, op, field, argField)
			}
			field = argField
		}
	}

	return nil
}

// Compile validates root and builds its scorers. An indexed root is scored
// through a ScoreNode. Postings are read here, so I/O errors surface before
// evaluation starts.
func Compile(root Node, model RetrievalModel, ix Index) (Scorer, error) {
	if err := Validate(root, model); err != nil {
		return nil, err
	}

	if root.Operator().Indexed() {
		root = &ScoreNode{Arg: root}
	}

	context, err := GenerateExecutionContext(NewQueryContext(root), ix, model)
	if err != nil {
		return nil, err
	}

	return compileScorer(context, root)
}

func compileScorer(context *ExecutionContext, node Node) (Scorer, error) {
	if node.Operator().Indexed() {
		node = &ScoreNode{Arg: node}
	}

	if score, ok := node.(*ScoreNode); ok {
		list, err := materialize(context, score.Arg)
		if err != nil {
			return nil, err
		}

		return newTermScorer(context, fieldOf(score.Arg), NewInvertedCursor(list)), nil
	}

	args := node.Args()
	children := make([]Scorer, 0, len(args))
	for _, arg := range args {
		child, err := compileScorer(context, arg)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}

	return newCombinedScorer(children, weightsOf(node), combinationRules[node.Operator()][context.Model.Kind]), nil
}
