//go:build !unix

package scanner

import "os"

// fileIdentity is unavailable on this platform; hardlinked names are treated
// as distinct files.
func fileIdentity(_ os.FileInfo) (dev, ino uint64, ok bool) {
	return 0, 0, false
}
