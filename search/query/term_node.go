package query

import (
	"fmt"
	"slices"

	"github.com/larose/qryeval/search/index"
)

// fieldOf returns the field an indexed node reads. Validate guarantees the
// children of an indexed operator share it.
func fieldOf(node Node) string {
	if term, ok := node.(*TermNode); ok {
		return term.Field
	}

	for _, arg := range node.Args() {
		if field := fieldOf(arg); field != "" {
			return field
		}
	}
	return ""
}

// materialize builds the postings list of an indexed node. Every call reads
// the index again: lists are owned by one node of one query.
func materialize(context *ExecutionContext, node Node) (*index.PostingList, error) {
	switch n := node.(type) {
	case *TermNode:
		list, err := context.Index.Postings(n.Field, n.Term)
		if err != nil {
			return nil, fmt.Errorf("postings %s: %w", n, err)
		}
		return list, nil

	case *SynNode:
		cursors, err := materializeArgs(context, n.Children)
		if err != nil {
			return nil, err
		}
		return mergeSynonyms(fieldOf(n), n.String(), cursors), nil

	case *NearNode:
		cursors, err := materializeArgs(context, n.Children)
		if err != nil {
			return nil, err
		}
		return matchProximity(fieldOf(n), n.String(), cursors, func(positions [][]uint32) []uint32 {
			return matchNear(positions, n.Distance)
		}), nil

	case *WindowNode:
		cursors, err := materializeArgs(context, n.Children)
		if err != nil {
			return nil, err
		}
		return matchProximity(fieldOf(n), n.String(), cursors, func(positions [][]uint32) []uint32 {
			return matchWindow(positions, n.Distance)
		}), nil
	}

	return nil, fmt.Errorf("%w: %s is not an indexed operator", ErrSyntax, node.Operator())
}

func materializeArgs(context *ExecutionContext, args []Node) ([]*InvertedCursor, error) {
	cursors := make([]*InvertedCursor, 0, len(args))

	for _, arg := range args {
		list, err := materialize(context, arg)
		if err != nil {
			return nil, err
		}
		cursors = append(cursors, NewInvertedCursor(list))
	}

	return cursors, nil
}

func asDocCursors(cursors []*InvertedCursor) []DocCursor {
	docCursors := make([]DocCursor, len(cursors))
	for i, cursor := range cursors {
		docCursors[i] = cursor
	}
	return docCursors
}

// mergeSynonyms sums term frequencies: positions of the children at one
// document are merged in ascending order.
func mergeSynonyms(field, name string, cursors []*InvertedCursor) *index.PostingList {
	list := index.NewPostingList(field, name)
	disjunction := NewDisjunctionCursor(asDocCursors(cursors))

	for disjunction.HasMatch() {
		docId := disjunction.Match()

		positions := make([]uint32, 0, 4)
		for _, cursor := range cursors {
			if matchesAt(cursor, docId) {
				positions = append(positions, cursor.Posting().Positions...)
			}
		}
		slices.Sort(positions)

		list.Append(docId, positions)
		disjunction.AdvancePast(docId)
	}

	return list
}
