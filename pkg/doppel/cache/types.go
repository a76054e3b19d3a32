package cache

import (
	"bytes"
	"encoding/gob"

	"github.com/doppelkit/doppel/pkg/doppel/types"
)

// Version is incremented when the cache format changes.
const Version = 1

// Entry is a cached digest for one file, valid only while the file's size
// and mtime both still match.
type Entry struct {
	Size   int64
	Mtime  int64 // modification time as UnixNano
	Digest types.Digest
}

// Encode serializes the entry to bytes using gob.
func (e *Entry) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(e); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode deserializes bytes into the entry using gob.
func (e *Entry) Decode(data []byte) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(e)
}

// MakeKey creates the store key for an absolute file path.
func MakeKey(path string) []byte {
	return []byte(path)
}
