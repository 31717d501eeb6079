package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestPostings(t *testing.T, directory string, docIds []uint32) *TermInfo {
	writer, err := newFieldFreqsWriter(directory, "1", "body")
	require.NoError(t, err)

	termInfo := &TermInfo{DocFreq: uint32(len(docIds))}
	for i := 0; i < len(docIds); i += blockSize {
		end := min(i+blockSize, len(docIds))

		positions := make([][]uint32, 0, end-i)
		for _, docId := range docIds[i:end] {
			positions = append(positions, []uint32{docId % 7, docId%7 + 3})
		}

		start, blockEnd, err := writer.WriteBlock(docIds[i:end], positions)
		require.NoError(t, err)
		if i == 0 {
			termInfo.FreqsFileStartOffset = start
		}
		termInfo.FreqsFileEndOffset = blockEnd
	}

	require.NoError(t, writer.Close())
	return termInfo
}

func TestTermFreqsIterator(t *testing.T) {
	directory := t.TempDir()

	docIds := make([]uint32, 0, 300)
	for i := range uint32(300) {
		docIds = append(docIds, i*2)
	}

	termInfo := writeTestPostings(t, directory, docIds)

	reader, err := newFieldFreqsReader(directory, "1", "body")
	require.NoError(t, err)
	defer reader.Close()

	t.Run("all docs", func(t *testing.T) {
		it := reader.TermFreqsIterator(termInfo)

		got := make([]uint32, 0, len(docIds))
		docId := DocumentId(0)
		for it.Next(docId) {
			got = append(got, uint32(it.DocId()))
			assert.Equal(t, uint32(2), it.TermFreq())
			assert.Equal(t, []uint32{uint32(it.DocId()) % 7, uint32(it.DocId())%7 + 3}, it.Positions())
			docId = it.DocId() + 1
		}

		require.NoError(t, it.Err())
		assert.Equal(t, docIds, got)
	})

	t.Run("skips to target", func(t *testing.T) {
		it := reader.TermFreqsIterator(termInfo)

		require.True(t, it.Next(301))
		assert.Equal(t, DocumentId(302), it.DocId())

		// Same block
		require.True(t, it.Next(303))
		assert.Equal(t, DocumentId(304), it.DocId())

		// Last doc
		require.True(t, it.Next(598))
		assert.Equal(t, DocumentId(598), it.DocId())

		assert.False(t, it.Next(599))
		assert.NoError(t, it.Err())
	})
}

func TestTermFreqsIteratorCorrupt(t *testing.T) {
	data := make([]byte, headerSize)
	data[0] = 1
	// Block length larger than the data
	data[12] = 200

	it := newTermFreqsIterator(data)
	assert.False(t, it.Next(0))
	assert.ErrorIs(t, it.Err(), errCorruptBlock)
}
