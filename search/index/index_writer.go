package index

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/larose/qryeval/search/utils"
	"golang.org/x/exp/rand"
)

type IndexWriter struct {
	directory string
	mutex     sync.Mutex
	analyzer  *Analyzer
}

type Commit struct {
	SegmentIds []uint32 `json:"segmentIds"`
	DeletedId  *uint32  `json:"deletedId,omitempty"`
}

// NewIndexWriter analyzes TextFieldType values with analyzer. The same
// analyzer must be used on queries.
func NewIndexWriter(directory string, analyzer *Analyzer) *IndexWriter {
	return &IndexWriter{
		directory: directory,
		analyzer:  analyzer,
	}
}

// AddDocuments writes docs as a new segment and commits it. Every document
// must carry an ExternalIdField.
func (writer *IndexWriter) AddDocuments(docs []Document) error {
	writer.mutex.Lock()
	defer writer.mutex.Unlock()

	invertedIndexWriter := newInvertedIndexWriter()
	segmentComponentWriters := []SegmentComponentWriter{invertedIndexWriter, newStoreWriter(), newTermVectorWriter()}

	for docId, doc := range docs {
		if _, ok := doc.ExternalId(); !ok {
			return fmt.Errorf("document %d has no %s field", docId, ExternalIdField)
		}

		for _, segmentComponentWriter := range segmentComponentWriters {
			segmentComponentWriter.Doc(DocumentId(docId))
		}

		for _, field := range doc {
			for _, segmentComponentWriter := range segmentComponentWriters {
				segmentComponentWriter.Field(field.Name, field.Value)
			}

			switch field.FieldType {
			case TextFieldType:
				for _, term := range writer.analyzer.Analyze(string(field.Value)) {
					for _, segmentComponentWriter := range segmentComponentWriters {
						segmentComponentWriter.Term([]byte(term))
					}
				}
			case ByteFieldType:
				for _, segmentComponentWriter := range segmentComponentWriters {
					segmentComponentWriter.Term(field.Value)
				}
			default:
				return fmt.Errorf("unknown field type %d", field.FieldType)
			}

			for _, segmentComponentWriter := range segmentComponentWriters {
				segmentComponentWriter.EndField()
			}
		}
	}

	commit, err := readCommit(writer.directory)
	if err != nil {
		return err
	}

	newSegmentId := rand.Uint32()
	for slices.Contains(commit.SegmentIds, newSegmentId) {
		newSegmentId = rand.Uint32()
	}
	segment := utils.Uint32ToString(newSegmentId)

	for _, segmentComponentWriter := range segmentComponentWriters {
		if err := segmentComponentWriter.Write(writer.directory, segment); err != nil {
			return err
		}
	}

	info := &SegmentInfo{DocCount: uint32(len(docs)), Fields: invertedIndexWriter.Fields()}
	if err := writeSegmentInfo(writer.directory, segment, info); err != nil {
		return err
	}

	return writer.commit(append(commit.SegmentIds, newSegmentId), commit.DeletedId)
}

func (writer *IndexWriter) commit(segmentIds []uint32, deletedId *uint32) error {
	tempFilePath := filepath.Join(writer.directory, ".commit")
	tempFile, err := os.Create(tempFilePath)
	if err != nil {
		return err
	}

	commit := Commit{
		SegmentIds: segmentIds,
		DeletedId:  deletedId,
	}

	if err := json.NewEncoder(tempFile).Encode(commit); err != nil {
		_ = tempFile.Close()
		return err
	}

	if err := tempFile.Close(); err != nil {
		return err
	}

	return os.Rename(tempFilePath, filepath.Join(writer.directory, "commit"))
}

// DeleteDocuments marks every live document whose fieldName holds one of
// values as deleted. Deletions of earlier commits are carried over.
func (writer *IndexWriter) DeleteDocuments(fieldName string, values [][]byte) error {
	writer.mutex.Lock()
	defer writer.mutex.Unlock()

	indexReader, err := NewIndexReader(writer.directory)
	if err != nil {
		return err
	}
	defer indexReader.Close()

	docIdsToDelete, err := indexReader.SearchByExactValues(fieldName, values)
	if err != nil {
		return err
	}

	commit, err := readCommit(writer.directory)
	if err != nil {
		return err
	}

	deletedReader, err := openDeletedReader(writer.directory, commit.DeletedId)
	if err != nil {
		return err
	}
	defer deletedReader.Close()

	nextDeletedId := uint32(0)
	if commit.DeletedId != nil {
		nextDeletedId = *commit.DeletedId + 1
	}

	deletedDocIdsBySegment, err := deletedReader.All()
	if err != nil {
		return err
	}

	for _, docId := range docIdsToDelete {
		segmentId := ToSegmentId(docId)

		deletedDocIdsForSegment, exists := deletedDocIdsBySegment[segmentId]
		if !exists {
			deletedDocIdsForSegment = roaring.NewBitmap()
			deletedDocIdsBySegment[segmentId] = deletedDocIdsForSegment
		}

		deletedDocIdsForSegment.Add(uint32(toLocalDocId(docId)))
	}

	if err := newDeletedWriter(deletedDocIdsBySegment).Write(writer.directory, utils.Uint32ToString(nextDeletedId)); err != nil {
		return err
	}

	return writer.commit(commit.SegmentIds, &nextDeletedId)
}
