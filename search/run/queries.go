package run

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

var ErrMalformedLine = errors.New("malformed line")

type Query struct {
	Id   string
	Text string
}

// ReadQueries reads one "qid:query" per line. Blank lines are skipped.
func ReadQueries(r io.Reader) ([]Query, error) {
	queries := make([]Query, 0, 100)

	scanner := bufio.NewScanner(r)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		id, text, found := strings.Cut(line, ":")
		if !found {
			return nil, fmt.Errorf("%w: query line %d has no ':'", ErrMalformedLine, lineNumber)
		}

		queries = append(queries, Query{Id: strings.TrimSpace(id), Text: text})
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return queries, nil
}
