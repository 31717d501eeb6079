package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/larose/qryeval/search/index"
	"github.com/larose/qryeval/search/logger"
	"github.com/larose/qryeval/search/metrics"
)

const batchSize = 10_000

// Each line is one JSON object. externalId names the document, every other
// string member is a text field.
type documentIterator struct {
	file       *os.File
	reader     *bufio.Reader
	lineNumber int
}

func newDocumentIterator(filePath string) (*documentIterator, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}

	return &documentIterator{
		file:   file,
		reader: bufio.NewReader(file),
	}, nil
}

func (it *documentIterator) NextBatch(maxItems int) ([]index.Document, error) {
	var batch []index.Document

	eof := false
	for !eof && len(batch) < maxItems {
		lineBytes, err := it.reader.ReadBytes('\n')
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return nil, err
			}
			eof = true
		}

		if len(lineBytes) == 0 {
			continue
		}
		it.lineNumber++

		var values map[string]string
		if err := json.Unmarshal(lineBytes, &values); err != nil {
			return nil, fmt.Errorf("line %d: %w", it.lineNumber, err)
		}

		batch = append(batch, convertToDocument(values))
	}

	return batch, nil
}

func (it *documentIterator) Close() error {
	return it.file.Close()
}

func convertToDocument(values map[string]string) index.Document {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	slices.Sort(names)

	doc := make(index.Document, 0, len(values))
	for _, name := range names {
		fieldType := index.TextFieldType
		if name == index.ExternalIdField {
			fieldType = index.ByteFieldType
		}

		doc = append(doc, index.Field{
			FieldType: fieldType,
			Name:      name,
			Value:     []byte(values[name]),
		})
	}

	return doc
}

func indexDocuments(ctx context.Context, directory string, input string, m *metrics.Metrics) error {
	log := logger.WithComponent("index")

	if directory == "" || input == "" {
		return errors.New("index mode needs -index and -input")
	}

	if err := os.RemoveAll(directory); err != nil {
		return err
	}
	if err := os.MkdirAll(directory, 0700); err != nil {
		return err
	}

	iterator, err := newDocumentIterator(input)
	if err != nil {
		return err
	}
	defer iterator.Close()

	indexWriter := index.NewIndexWriter(directory, index.NewEnglishAnalyzer())

	start := time.Now()
	totalProcessed := 0

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		docs, err := iterator.NextBatch(batchSize)
		if err != nil {
			return err
		}

		if len(docs) == 0 {
			break
		}

		if err := indexWriter.AddDocuments(docs); err != nil {
			return err
		}

		totalProcessed += len(docs)
		m.DocsIndexed.Add(float64(len(docs)))
		log.Info("segment written", "documents", len(docs), "totalProcessed", totalProcessed)
	}

	log.Info("indexing done", "documents", totalProcessed, "elapsed", time.Since(start))
	return nil
}
