package index

import (
	"bufio"
	"encoding/binary"
	"os"
	"path/filepath"
)

type FieldFreqsWriter struct {
	file   *os.File
	offset int64
	writer *bufio.Writer
}

func newFieldFreqsWriter(directory, segment, fieldName string) (*FieldFreqsWriter, error) {
	file, err := createFile(filepath.Join(directory, "segment."+segment+"."+fieldName+".frequencies"))
	if err != nil {
		return nil, err
	}

	return &FieldFreqsWriter{
		file:   file,
		writer: bufio.NewWriter(file),
	}, nil
}

/*
Block:
  - Header:
	- [0] num docs (byte)
	- [1] first doc id (uint32)
	- [5] last doc id (uint32)
	- [9] block length in bytes, header included (uint32)
  - Doc id deltas (uvarint)
  - Term freqs (uvarint)
  - Positions, per doc, delta encoded (uvarint)
*/
const (
	headerSize = 13
	blockSize  = 128
)

// WriteBlock writes at most blockSize docs. positions[i] holds the ascending
// positions of docIds[i].
func (writer *FieldFreqsWriter) WriteBlock(docIds []uint32, positions [][]uint32) (uint64, uint64, error) {
	blockStartOffset := writer.offset

	buffer := make([]byte, headerSize, headerSize+len(docIds)*8)

	buffer[0] = byte(len(docIds))
	binary.BigEndian.PutUint32(buffer[1:], docIds[0])
	binary.BigEndian.PutUint32(buffer[5:], docIds[len(docIds)-1])

	previous := uint32(0)
	for _, docId := range docIds {
		buffer = binary.AppendUvarint(buffer, uint64(docId-previous))
		previous = docId
	}

	for _, docPositions := range positions {
		buffer = binary.AppendUvarint(buffer, uint64(len(docPositions)))
	}

	for _, docPositions := range positions {
		previous = 0
		for _, position := range docPositions {
			buffer = binary.AppendUvarint(buffer, uint64(position-previous))
			previous = position
		}
	}

	binary.BigEndian.PutUint32(buffer[9:], uint32(len(buffer)))

	if _, err := writer.writer.Write(buffer); err != nil {
		return 0, 0, err
	}

	writer.offset = blockStartOffset + int64(len(buffer))

	return uint64(blockStartOffset), uint64(writer.offset), nil
}

func (w *FieldFreqsWriter) Close() error {
	if err := w.writer.Flush(); err != nil {
		_ = w.file.Close()
		return err
	}

	return w.file.Close()
}

type FieldFreqsReader struct {
	fileReader *FileReader
}

func newFieldFreqsReader(directory, segment, fieldName string) (*FieldFreqsReader, error) {
	fileReader, err := newFileReader(filepath.Join(directory, "segment."+segment+"."+fieldName+".frequencies"))
	if err != nil {
		return nil, err
	}

	return &FieldFreqsReader{
		fileReader: fileReader,
	}, nil
}

func (reader *FieldFreqsReader) TermFreqsIterator(termInfo *TermInfo) *TermFreqsIterator {
	return newTermFreqsIterator(reader.fileReader.Slice(termInfo.FreqsFileStartOffset, termInfo.FreqsFileEndOffset))
}

func (reader *FieldFreqsReader) Close() error {
	return reader.fileReader.Close()
}
