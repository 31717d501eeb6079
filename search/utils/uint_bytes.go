package utils

import (
	"encoding/binary"
	"strconv"
)

// Big endian, so byte order matches numeric order for KV store keys.
func Uint32ToBytes(val uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, val)
	return b
}

func Uint32ToString(val uint32) string {
	return strconv.FormatUint(uint64(val), 10)
}
