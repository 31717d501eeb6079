package index

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Caller calls in order:
// - Doc()
// - Field()
// - Term()
// - Term()
// - ...
// - EndField()
// - Field()
// - Term()
// - ...
// - EndField()
// - Doc()
// - ...
// - Write()
type SegmentComponentWriter interface {
	Doc(docId DocumentId)
	Field(fieldName string, value []byte)
	EndField()
	Term(term []byte)
	Write(directory, segmentId string) error
}

// SegmentInfo is written last, once every component of the segment is on
// disk.
type SegmentInfo struct {
	DocCount uint32   `json:"docCount"`
	Fields   []string `json:"fields"`
}

func segmentInfoFilename(directory, segmentId string) string {
	return filepath.Join(directory, "segment."+segmentId+".info")
}

func writeSegmentInfo(directory, segmentId string, info *SegmentInfo) error {
	file, err := createFile(segmentInfoFilename(directory, segmentId))
	if err != nil {
		return err
	}

	if err := json.NewEncoder(file).Encode(info); err != nil {
		_ = file.Close()
		return err
	}

	return file.Close()
}

func readSegmentInfo(directory, segmentId string) (*SegmentInfo, error) {
	file, err := os.Open(segmentInfoFilename(directory, segmentId))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var info SegmentInfo
	if err := json.NewDecoder(file).Decode(&info); err != nil {
		return nil, err
	}

	return &info, nil
}
