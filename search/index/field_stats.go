package index

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
)

// FieldStats aggregates one field over one segment.
type FieldStats struct {
	// Documents with at least one term in the field
	DocCount    uint32
	SumTermFreq uint64
}

const fieldStatsSize = 12

func fieldStatsFilename(directory, segment, fieldName string) string {
	return filepath.Join(directory, "segment."+segment+"."+fieldName+".stats")
}

func writeFieldStats(directory, segment, fieldName string, stats FieldStats) error {
	file, err := createFile(fieldStatsFilename(directory, segment, fieldName))
	if err != nil {
		return err
	}

	buffer := make([]byte, fieldStatsSize)
	binary.BigEndian.PutUint32(buffer, stats.DocCount)
	binary.BigEndian.PutUint64(buffer[4:], stats.SumTermFreq)

	if _, err := file.Write(buffer); err != nil {
		_ = file.Close()
		return err
	}

	return file.Close()
}

func readFieldStats(directory, segment, fieldName string) (FieldStats, error) {
	buffer, err := os.ReadFile(fieldStatsFilename(directory, segment, fieldName))
	if err != nil {
		return FieldStats{}, err
	}

	if len(buffer) != fieldStatsSize {
		return FieldStats{}, fmt.Errorf("field stats %s/%s: unexpected size %d", segment, fieldName, len(buffer))
	}

	return FieldStats{
		DocCount:    binary.BigEndian.Uint32(buffer),
		SumTermFreq: binary.BigEndian.Uint64(buffer[4:]),
	}, nil
}
