package index

import (
	"errors"
	"slices"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/larose/qryeval/search/utils"
)

// SegmentReader opens field files lazily. It is safe for concurrent use.
// Fields the segment never saw read as empty.
type SegmentReader struct {
	DeletedDocIds *roaring.Bitmap
	Id            uint32
	IdString      string
	Info          *SegmentInfo
	directory     string

	mutex              sync.Mutex
	dictionaryReaders  map[string]*DictionaryReader
	fieldFreqsReaders  map[string]*FieldFreqsReader
	fieldLengthReaders map[string]*FieldLengthReader
	fieldStats         map[string]FieldStats
	fieldStoreReaders  map[string]*FieldStoreReader
	termVectorReaders  map[string]*TermVectorReader
}

func newSegmentReader(directory string, segmentId uint32, deletedDocIds *roaring.Bitmap) (*SegmentReader, error) {
	segment := utils.Uint32ToString(segmentId)

	info, err := readSegmentInfo(directory, segment)
	if err != nil {
		return nil, err
	}

	return &SegmentReader{
		DeletedDocIds:      deletedDocIds,
		Id:                 segmentId,
		IdString:           segment,
		Info:               info,
		directory:          directory,
		dictionaryReaders:  make(map[string]*DictionaryReader),
		fieldFreqsReaders:  make(map[string]*FieldFreqsReader),
		fieldLengthReaders: make(map[string]*FieldLengthReader),
		fieldStats:         make(map[string]FieldStats),
		fieldStoreReaders:  make(map[string]*FieldStoreReader),
		termVectorReaders:  make(map[string]*TermVectorReader),
	}, nil
}

func (reader *SegmentReader) HasField(fieldName string) bool {
	return slices.Contains(reader.Info.Fields, fieldName)
}

// LiveDocCount excludes deleted documents.
func (reader *SegmentReader) LiveDocCount() uint64 {
	return uint64(reader.Info.DocCount) - reader.DeletedDocIds.GetCardinality()
}

func (reader *SegmentReader) IsDeleted(docId DocumentId) bool {
	return reader.DeletedDocIds.Contains(uint32(docId))
}

// lazyOpen returns the cached reader for fieldName or opens it. Callers hold
// no lock.
func lazyOpen[T any](reader *SegmentReader, cache map[string]T, fieldName string, open func() (T, error)) (T, error) {
	reader.mutex.Lock()
	defer reader.mutex.Unlock()

	value, exists := cache[fieldName]
	if exists {
		return value, nil
	}

	value, err := open()
	if err != nil {
		return value, err
	}

	cache[fieldName] = value
	return value, nil
}

func (reader *SegmentReader) DictionaryReader(fieldName string) (*DictionaryReader, error) {
	return lazyOpen(reader, reader.dictionaryReaders, fieldName, func() (*DictionaryReader, error) {
		return newDictionaryReader(reader.directory, reader.IdString, fieldName)
	})
}

func (reader *SegmentReader) FieldFreqsReader(fieldName string) (*FieldFreqsReader, error) {
	return lazyOpen(reader, reader.fieldFreqsReaders, fieldName, func() (*FieldFreqsReader, error) {
		return newFieldFreqsReader(reader.directory, reader.IdString, fieldName)
	})
}

func (reader *SegmentReader) FieldLengthReader(fieldName string) (*FieldLengthReader, error) {
	return lazyOpen(reader, reader.fieldLengthReaders, fieldName, func() (*FieldLengthReader, error) {
		return newFieldLengthReader(reader.directory, reader.IdString, fieldName)
	})
}

func (reader *SegmentReader) FieldStats(fieldName string) (FieldStats, error) {
	if !reader.HasField(fieldName) {
		return FieldStats{}, nil
	}

	return lazyOpen(reader, reader.fieldStats, fieldName, func() (FieldStats, error) {
		return readFieldStats(reader.directory, reader.IdString, fieldName)
	})
}

func (reader *SegmentReader) FieldStoreReader(fieldName string) (*FieldStoreReader, error) {
	return lazyOpen(reader, reader.fieldStoreReaders, fieldName, func() (*FieldStoreReader, error) {
		return newFieldStoreReader(reader.directory, reader.IdString, fieldName)
	})
}

func (reader *SegmentReader) TermVectorReader(fieldName string) (*TermVectorReader, error) {
	return lazyOpen(reader, reader.termVectorReaders, fieldName, func() (*TermVectorReader, error) {
		return newTermVectorReader(reader.directory, reader.IdString, fieldName)
	})
}

// TermInfo returns nil when the term or the field is absent.
func (reader *SegmentReader) TermInfo(fieldName string, term []byte) (*TermInfo, error) {
	if !reader.HasField(fieldName) {
		return nil, nil
	}

	dictionaryReader, err := reader.DictionaryReader(fieldName)
	if err != nil {
		return nil, err
	}

	return dictionaryReader.Get(term), nil
}

// TermFreqsIterator returns nil when the term or the field is absent.
func (reader *SegmentReader) TermFreqsIterator(fieldName string, term []byte) (*TermFreqsIterator, error) {
	termInfo, err := reader.TermInfo(fieldName, term)
	if err != nil || termInfo == nil {
		return nil, err
	}

	fieldFreqsReader, err := reader.FieldFreqsReader(fieldName)
	if err != nil {
		return nil, err
	}

	return fieldFreqsReader.TermFreqsIterator(termInfo), nil
}

type closer interface {
	Close() error
}

func closeAll[T closer](cache map[string]T, errs []error) []error {
	for _, value := range cache {
		if err := value.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func (reader *SegmentReader) Close() error {
	reader.mutex.Lock()
	defer reader.mutex.Unlock()

	var errs []error
	errs = closeAll(reader.dictionaryReaders, errs)
	errs = closeAll(reader.fieldFreqsReaders, errs)
	errs = closeAll(reader.fieldLengthReaders, errs)
	errs = closeAll(reader.fieldStoreReaders, errs)
	errs = closeAll(reader.termVectorReaders, errs)

	return errors.Join(errs...)
}
