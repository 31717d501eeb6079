package run

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/larose/qryeval/search/index"
	"github.com/larose/qryeval/search/query"
)

// ReadRankings reads a TREC run, "qid Q0 externalId rank score runId" per
// line, into one sorted ScoreList per query. Documents unknown to ix are
// skipped.
func ReadRankings(r io.Reader, ix query.Index, logger *slog.Logger) (map[string]*query.ScoreList, error) {
	rankings := make(map[string]*query.ScoreList)

	scanner := bufio.NewScanner(r)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 5 {
			return nil, fmt.Errorf("%w: ranking line %d has %d fields", ErrMalformedLine, lineNumber, len(fields))
		}

		queryId, externalId := fields[0], fields[2]

		score, err := strconv.ParseFloat(fields[4], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: ranking line %d: %w", ErrMalformedLine, lineNumber, err)
		}

		docId, err := ix.InternalId(externalId)
		if errors.Is(err, index.ErrNotFound) {
			logger.Warn("skipping unknown document", "qid", queryId, "externalId", externalId)
			continue
		}
		if err != nil {
			return nil, err
		}

		ranking, exists := rankings[queryId]
		if !exists {
			ranking = query.NewScoreList()
			rankings[queryId] = ranking
		}
		ranking.Add(docId, score)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	for _, ranking := range rankings {
		ranking.Sort()
	}

	return rankings, nil
}
