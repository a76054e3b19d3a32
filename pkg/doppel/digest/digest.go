// Package digest computes content fingerprints for duplicate confirmation.
// Full-content SHA-256 is the only grouping criterion; the cheaper xxHash
// quick hash exists purely to split same-size candidates before the full
// read.
package digest

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/doppelkit/doppel/pkg/doppel/types"
)

// bufferSize is the read buffer used when streaming file content.
const bufferSize = 32 * 1024

// quickLen is how many leading bytes the quick hash covers.
const quickLen = 64 * 1024

// Sum computes the SHA-256 digest of the file's full content by streaming.
func Sum(path string) (types.Digest, error) {
	var d types.Digest

	f, err := os.Open(path)
	if err != nil {
		return d, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	buf := make([]byte, bufferSize)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return d, fmt.Errorf("read %s: %w", path, err)
		}
	}

	copy(d[:], h.Sum(nil))
	return d, nil
}

// SumWithSize is Sum plus the number of bytes read, for hashing statistics.
func SumWithSize(path string) (types.Digest, int64, error) {
	var d types.Digest

	f, err := os.Open(path)
	if err != nil {
		return d, 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.CopyBuffer(h, f, make([]byte, bufferSize))
	if err != nil {
		return d, 0, fmt.Errorf("read %s: %w", path, err)
	}

	copy(d[:], h.Sum(nil))
	return d, n, nil
}

// Quick computes the xxHash64 of the leading bytes of the file. Files with
// differing quick hashes cannot be content-identical, so same-size candidates
// are partitioned by quick hash before any full read happens. Equal quick
// hashes prove nothing.
func Quick(path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := xxhash.New()
	if _, err := io.CopyN(h, f, quickLen); err != nil && err != io.EOF {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}

	return h.Sum64(), nil
}
