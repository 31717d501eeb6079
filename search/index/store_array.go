package index

import (
	"bufio"
	"encoding/binary"
	"os"

	"github.com/edsrzf/mmap-go"
)

// ArrayStoreWriter appends fixed size uint32 elements.
type ArrayStoreWriter struct {
	file   *os.File
	writer *bufio.Writer
}

func newArrayStoreWriter(filename string) (*ArrayStoreWriter, error) {
	file, err := createFile(filename)
	if err != nil {
		return nil, err
	}

	return &ArrayStoreWriter{
		file:   file,
		writer: bufio.NewWriter(file),
	}, nil
}

func (writer *ArrayStoreWriter) AppendUint32(values []uint32) error {
	buffer := make([]byte, 0, 4*len(values))
	for _, value := range values {
		buffer = binary.BigEndian.AppendUint32(buffer, value)
	}

	_, err := writer.writer.Write(buffer)
	return err
}

func (writer *ArrayStoreWriter) Close() error {
	if err := writer.writer.Flush(); err != nil {
		_ = writer.file.Close()
		return err
	}

	return writer.file.Close()
}

type ArrayStoreReader struct {
	data mmap.MMap
	file *os.File
}

func newArrayStoreReader(filename string) (*ArrayStoreReader, error) {
	file, data, err := mapFile(filename)
	if err != nil {
		return nil, err
	}

	return &ArrayStoreReader{
		data: data,
		file: file,
	}, nil
}

func (reader *ArrayStoreReader) Len() int {
	return len(reader.data) / 4
}

func (reader *ArrayStoreReader) GetUint32(position uint32) (uint32, bool) {
	if int(position) >= reader.Len() {
		return 0, false
	}

	return binary.BigEndian.Uint32(reader.data[position*4:]), true
}

func (reader *ArrayStoreReader) Close() error {
	if reader.data != nil {
		if err := reader.data.Unmap(); err != nil {
			_ = reader.file.Close()
			return err
		}
	}

	return reader.file.Close()
}
