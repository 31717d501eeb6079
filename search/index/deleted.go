package index

import (
	"encoding/binary"
	"path/filepath"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/larose/qryeval/search/utils"
)

type DeletedWriter struct {
	deletedDocIdsBySegment map[uint32]*roaring.Bitmap
}

func newDeletedWriter(deletedDocIdsBySegment map[uint32]*roaring.Bitmap) *DeletedWriter {
	return &DeletedWriter{deletedDocIdsBySegment: deletedDocIdsBySegment}
}

func (writer *DeletedWriter) Write(directory string, deletedId string) error {
	kvStoreWriter, err := newKVStoreWriter(filepath.Join(directory, "deleted."+deletedId))
	if err != nil {
		return err
	}

	sortedSegmentIds := make([]uint32, 0, len(writer.deletedDocIdsBySegment))
	for segmentId := range writer.deletedDocIdsBySegment {
		sortedSegmentIds = append(sortedSegmentIds, segmentId)
	}

	slices.Sort(sortedSegmentIds)

	for _, segmentId := range sortedSegmentIds {
		deletedDocsForSegment := writer.deletedDocIdsBySegment[segmentId]

		buffer, err := deletedDocsForSegment.ToBytes()
		if err != nil {
			_ = kvStoreWriter.Close()
			return err
		}

		if err := kvStoreWriter.Append(utils.Uint32ToBytes(segmentId), buffer); err != nil {
			_ = kvStoreWriter.Close()
			return err
		}
	}

	return kvStoreWriter.Close()
}

type DeletedReader interface {
	GetDeletedDocIdsForSegment(segmentId uint32) (*roaring.Bitmap, error)
	// All returns a copy of every segment's deleted docs.
	All() (map[uint32]*roaring.Bitmap, error)
	Close() error
}

type NullDeletedReader struct {
}

func newNullDeletedReader() *NullDeletedReader {
	return &NullDeletedReader{}
}

func (reader *NullDeletedReader) GetDeletedDocIdsForSegment(segmentId uint32) (*roaring.Bitmap, error) {
	return nil, nil
}

func (reader *NullDeletedReader) All() (map[uint32]*roaring.Bitmap, error) {
	return make(map[uint32]*roaring.Bitmap), nil
}

func (reader *NullDeletedReader) Close() error {
	return nil
}

type FileDeletedReader struct {
	kvStoreReader *KVStoreReader
}

func newFileDeletedReader(directory, deletedId string) (*FileDeletedReader, error) {
	kvStoreReader, err := newKVStoreReader(filepath.Join(directory, "deleted."+deletedId))
	if err != nil {
		return nil, err
	}

	return &FileDeletedReader{kvStoreReader: kvStoreReader}, nil
}

func unmarshalBitmap(value []byte) (*roaring.Bitmap, error) {
	// value aliases the mapped file, the bitmap must own its memory.
	deletedDocs := roaring.NewBitmap()
	if err := deletedDocs.UnmarshalBinary(slices.Clone(value)); err != nil {
		return nil, err
	}

	return deletedDocs, nil
}

func (reader *FileDeletedReader) GetDeletedDocIdsForSegment(segmentId uint32) (*roaring.Bitmap, error) {
	value := reader.kvStoreReader.Get(utils.Uint32ToBytes(segmentId))
	if value == nil {
		return nil, nil
	}

	return unmarshalBitmap(value)
}

func (reader *FileDeletedReader) All() (map[uint32]*roaring.Bitmap, error) {
	all := make(map[uint32]*roaring.Bitmap, reader.kvStoreReader.Len())

	for i := range reader.kvStoreReader.Len() {
		key, value := reader.kvStoreReader.At(i)

		deletedDocs, err := unmarshalBitmap(value)
		if err != nil {
			return nil, err
		}

		all[binary.BigEndian.Uint32(key)] = deletedDocs
	}

	return all, nil
}

func (reader *FileDeletedReader) Close() error {
	return reader.kvStoreReader.Close()
}

func openDeletedReader(directory string, deletedId *uint32) (DeletedReader, error) {
	if deletedId == nil {
		return newNullDeletedReader(), nil
	}

	return newFileDeletedReader(directory, utils.Uint32ToString(*deletedId))
}
