package index

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
)

func readCommit(directory string) (*Commit, error) {
	commitFile, err := os.Open(filepath.Join(directory, "commit"))
	if errors.Is(err, os.ErrNotExist) {
		return &Commit{SegmentIds: make([]uint32, 0)}, nil
	}
	if err != nil {
		return nil, err
	}
	defer commitFile.Close()

	var commit Commit
	if err := json.NewDecoder(commitFile).Decode(&commit); err != nil {
		return nil, err
	}

	return &commit, nil
}

func ToGlobalDocId(segmentId, localDocId uint32) uint64 {
	return uint64(segmentId)<<32 | uint64(localDocId)
}

func ToSegmentId(docId uint64) uint32 {
	return uint32(docId >> 32)
}

func toLocalDocId(docId uint64) DocumentId {
	return DocumentId(uint32(docId))
}

// IndexReader is a read-only view of the last commit. It is safe for
// concurrent use. Collection statistics (doc freq, collection term freq,
// field sums) count deleted documents until their segment is rewritten;
// postings and term vectors never return them.
type IndexReader struct {
	// Ordered by id, so global doc ids ascend across segments.
	SegmentReaders []*SegmentReader
}

func NewIndexReader(directory string) (*IndexReader, error) {
	commit, err := readCommit(directory)
	if err != nil {
		return nil, err
	}

	deletedReader, err := openDeletedReader(directory, commit.DeletedId)
	if err != nil {
		return nil, err
	}
	defer deletedReader.Close()

	segmentIds := slices.Clone(commit.SegmentIds)
	slices.Sort(segmentIds)

	reader := &IndexReader{SegmentReaders: make([]*SegmentReader, 0, len(segmentIds))}

	for _, segmentId := range segmentIds {
		deletedDocIdsForSegment, err := deletedReader.GetDeletedDocIdsForSegment(segmentId)
		if err != nil {
			_ = reader.Close()
			return nil, err
		}

		if deletedDocIdsForSegment == nil {
			deletedDocIdsForSegment = roaring.NewBitmap()
		}

		segmentReader, err := newSegmentReader(directory, segmentId, deletedDocIdsForSegment)
		if err != nil {
			_ = reader.Close()
			return nil, fmt.Errorf("segment %d: %w", segmentId, err)
		}

		reader.SegmentReaders = append(reader.SegmentReaders, segmentReader)
	}

	return reader, nil
}

func (reader *IndexReader) segment(docId uint64) (*SegmentReader, DocumentId, error) {
	segmentId := ToSegmentId(docId)

	i, found := slices.BinarySearchFunc(reader.SegmentReaders, segmentId, func(segmentReader *SegmentReader, id uint32) int {
		switch {
		case segmentReader.Id < id:
			return -1
		case segmentReader.Id > id:
			return 1
		}
		return 0
	})
	if !found {
		return nil, 0, fmt.Errorf("document %d: %w", docId, ErrNotFound)
	}

	segmentReader := reader.SegmentReaders[i]
	localDocId := toLocalDocId(docId)
	if uint32(localDocId) >= segmentReader.Info.DocCount || segmentReader.IsDeleted(localDocId) {
		return nil, 0, fmt.Errorf("document %d: %w", docId, ErrNotFound)
	}

	return segmentReader, localDocId, nil
}

// Postings reads the live documents of (field, term). An absent term yields an
// empty list.
func (reader *IndexReader) Postings(field, term string) (*PostingList, error) {
	postings := NewPostingList(field, term)

	for _, segmentReader := range reader.SegmentReaders {
		it, err := segmentReader.TermFreqsIterator(field, []byte(term))
		if err != nil {
			return nil, err
		}
		if it == nil {
			continue
		}

		docId := DocumentId(0)
		for it.Next(docId) {
			if !segmentReader.IsDeleted(it.DocId()) {
				postings.Append(ToGlobalDocId(segmentReader.Id, uint32(it.DocId())), it.Positions())
			}
			docId = it.DocId() + 1
		}

		if err := it.Err(); err != nil {
			return nil, fmt.Errorf("postings %s.%s segment %d: %w", term, field, segmentReader.Id, err)
		}
	}

	return postings, nil
}

func (reader *IndexReader) FieldLength(field string, docId uint64) (int, error) {
	segmentReader, localDocId, err := reader.segment(docId)
	if err != nil {
		return 0, err
	}

	if !segmentReader.HasField(field) {
		return 0, nil
	}

	fieldLengthReader, err := segmentReader.FieldLengthReader(field)
	if err != nil {
		return 0, err
	}

	length, err := fieldLengthReader.Get(localDocId)
	return int(length), err
}

func (reader *IndexReader) SumFieldLengths(field string) (uint64, error) {
	var sum uint64

	for _, segmentReader := range reader.SegmentReaders {
		stats, err := segmentReader.FieldStats(field)
		if err != nil {
			return 0, err
		}
		sum += stats.SumTermFreq
	}

	return sum, nil
}

// DocCount is the number of documents with at least one term in field.
func (reader *IndexReader) DocCount(field string) (int, error) {
	count := 0

	for _, segmentReader := range reader.SegmentReaders {
		stats, err := segmentReader.FieldStats(field)
		if err != nil {
			return 0, err
		}
		count += int(stats.DocCount)
	}

	return count, nil
}

func (reader *IndexReader) NumDocs() (uint64, error) {
	var numDocs uint64

	for _, segmentReader := range reader.SegmentReaders {
		numDocs += segmentReader.LiveDocCount()
	}

	return numDocs, nil
}

func (reader *IndexReader) termStats(field, term string) (uint64, uint64, error) {
	var docFreq, totalTermFreq uint64

	for _, segmentReader := range reader.SegmentReaders {
		termInfo, err := segmentReader.TermInfo(field, []byte(term))
		if err != nil {
			return 0, 0, err
		}
		if termInfo == nil {
			continue
		}

		docFreq += uint64(termInfo.DocFreq)
		totalTermFreq += termInfo.TotalTermFreq
	}

	return docFreq, totalTermFreq, nil
}

func (reader *IndexReader) CollectionTermFreq(field, term string) (uint64, error) {
	_, totalTermFreq, err := reader.termStats(field, term)
	return totalTermFreq, err
}

func (reader *IndexReader) DocFreq(field, term string) (int, error) {
	docFreq, _, err := reader.termStats(field, term)
	return int(docFreq), err
}

// TermVector returns nil when the document has no value for field.
func (reader *IndexReader) TermVector(field string, docId uint64) ([]TermFreq, error) {
	segmentReader, localDocId, err := reader.segment(docId)
	if err != nil {
		return nil, err
	}

	if !segmentReader.HasField(field) {
		return nil, nil
	}

	termVectorReader, err := segmentReader.TermVectorReader(field)
	if err != nil {
		return nil, err
	}

	return termVectorReader.Get(localDocId)
}

func (reader *IndexReader) ExternalId(docId uint64) (string, error) {
	value, err := reader.Value(ExternalIdField, docId)
	if err != nil {
		return "", err
	}

	if value == nil {
		return "", fmt.Errorf("document %d: %w", docId, ErrNotFound)
	}

	return string(value), nil
}

func (reader *IndexReader) InternalId(externalId string) (uint64, error) {
	docIds, err := reader.SearchByExactValues(ExternalIdField, [][]byte{[]byte(externalId)})
	if err != nil {
		return 0, err
	}

	if len(docIds) == 0 {
		return 0, fmt.Errorf("external id %q: %w", externalId, ErrNotFound)
	}

	return docIds[0], nil
}

// SearchByExactValues returns the live documents holding one of values as a
// term of fieldName, in ascending order.
func (reader *IndexReader) SearchByExactValues(fieldName string, values [][]byte) ([]uint64, error) {
	results := make([]uint64, 0, len(values))

	for _, segmentReader := range reader.SegmentReaders {
		segmentDocIds := roaring.NewBitmap()

		for _, value := range values {
			it, err := segmentReader.TermFreqsIterator(fieldName, value)
			if err != nil {
				return nil, err
			}
			if it == nil {
				continue
			}

			docId := DocumentId(0)
			for it.Next(docId) {
				segmentDocIds.Add(uint32(it.DocId()))
				docId = it.DocId() + 1
			}

			if err := it.Err(); err != nil {
				return nil, err
			}
		}

		segmentDocIds.AndNot(segmentReader.DeletedDocIds)

		for _, docId := range segmentDocIds.ToArray() {
			results = append(results, ToGlobalDocId(segmentReader.Id, docId))
		}
	}

	return results, nil
}

// Value returns the stored value of fieldName, nil when the document has none.
func (reader *IndexReader) Value(fieldName string, docId uint64) ([]byte, error) {
	segmentReader, localDocId, err := reader.segment(docId)
	if err != nil {
		return nil, err
	}

	if !segmentReader.HasField(fieldName) {
		return nil, nil
	}

	fieldStoreReader, err := segmentReader.FieldStoreReader(fieldName)
	if err != nil {
		return nil, err
	}

	return fieldStoreReader.Value(localDocId), nil
}

func (reader *IndexReader) Close() error {
	var errs []error

	for _, segmentReader := range reader.SegmentReaders {
		if err := segmentReader.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
