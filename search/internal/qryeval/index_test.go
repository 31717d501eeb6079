package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/larose/qryeval/search/index"
	"github.com/larose/qryeval/search/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertToDocument(t *testing.T) {
	doc := convertToDocument(map[string]string{"title": "Cats", "externalId": "d1", "body": "cats purr"})

	assert.Equal(t, index.Document{
		{FieldType: index.TextFieldType, Name: "body", Value: []byte("cats purr")},
		{FieldType: index.ByteFieldType, Name: "externalId", Value: []byte("d1")},
		{FieldType: index.TextFieldType, Name: "title", Value: []byte("Cats")},
	}, doc)
}

func TestIndexDocuments(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "docs.jsonl")
	indexDir := filepath.Join(dir, "index")

	require.NoError(t, os.WriteFile(input, []byte(
		`{"externalId": "d1", "body": "cats purr"}`+"\n"+
			`{"externalId": "d2", "body": "dogs bark"}`,
	), 0600))

	require.NoError(t, indexDocuments(context.Background(), indexDir, input, metrics.New(prometheus.NewRegistry())))

	reader, err := index.NewIndexReader(indexDir)
	require.NoError(t, err)
	defer reader.Close()

	numDocs, err := reader.NumDocs()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), numDocs)

	docId, err := reader.InternalId("d2")
	require.NoError(t, err)

	postings, err := reader.Postings("body", "dog")
	require.NoError(t, err)
	require.Len(t, postings.Postings, 1)
	assert.Equal(t, docId, postings.Postings[0].DocId)
}

func TestIndexDocumentsBadLine(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "docs.jsonl")
	require.NoError(t, os.WriteFile(input, []byte("not json\n"), 0600))

	err := indexDocuments(context.Background(), filepath.Join(dir, "index"), input, metrics.New(prometheus.NewRegistry()))
	assert.ErrorContains(t, err, "line 1")
}
