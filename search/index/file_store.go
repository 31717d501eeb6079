package index

import (
	"os"

	"github.com/edsrzf/mmap-go"
)

func createFile(filename string) (*os.File, error) {
	return os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0600)
}

// mapFile maps the whole file read-only. Empty files cannot be mapped, they
// come back as a nil region.
func mapFile(filename string) (*os.File, mmap.MMap, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, nil, err
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, nil, err
	}

	if info.Size() == 0 {
		return file, nil, nil
	}

	data, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		_ = file.Close()
		return nil, nil, err
	}

	return file, data, nil
}

type FileReader struct {
	data mmap.MMap
	file *os.File
}

func newFileReader(filename string) (*FileReader, error) {
	file, data, err := mapFile(filename)
	if err != nil {
		return nil, err
	}

	return &FileReader{
		data: data,
		file: file,
	}, nil
}

func (reader *FileReader) Slice(start, end uint64) []byte {
	return reader.data[start:end]
}

func (reader *FileReader) Close() error {
	if reader.data != nil {
		if err := reader.data.Unmap(); err != nil {
			_ = reader.file.Close()
			return err
		}
	}

	return reader.file.Close()
}
