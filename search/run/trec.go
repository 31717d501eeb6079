package run

import (
	"fmt"
	"io"
	"strconv"

	"github.com/larose/qryeval/search/query"
)

// WriteTrecResults writes the first maxResults documents of a sorted
// ScoreList as "qid Q0 externalId rank score runId", tab separated. A query
// without results gets one dummy line so evaluation tools still see it.
func WriteTrecResults(w io.Writer, queryId string, scores *query.ScoreList, ix query.Index, runId string, maxResults int) error {
	if scores == nil || scores.Size() == 0 {
		_, err := fmt.Fprintf(w, "%s\tQ0\tdummy\t1\t0\t%s\n", queryId, runId)
		return err
	}

	for rank := 0; rank < scores.Size() && rank < maxResults; rank++ {
		externalId, err := ix.ExternalId(scores.DocIdAt(rank))
		if err != nil {
			return err
		}

		score := strconv.FormatFloat(scores.ScoreAt(rank), 'g', -1, 64)
		if _, err := fmt.Fprintf(w, "%s\tQ0\t%s\t%d\t%s\t%s\n", queryId, externalId, rank+1, score, runId); err != nil {
			return err
		}
	}

	return nil
}

// WriteExpansion writes "qid: expansion query". A query without expansion
// terms gets an empty #wand.
func WriteExpansion(w io.Writer, queryId string, expansion *query.WandNode) error {
	if expansion == nil {
		expansion = &query.WandNode{}
	}

	_, err := fmt.Fprintf(w, "%s: %s\n", queryId, expansion)
	return err
}
