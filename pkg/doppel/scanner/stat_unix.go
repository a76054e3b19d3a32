//go:build unix

package scanner

import (
	"os"
	"syscall"
)

// fileIdentity returns the (device, inode) pair identifying the underlying
// file. Two names sharing an identity are hardlinks to the same content and
// must be counted once.
func fileIdentity(info os.FileInfo) (dev, ino uint64, ok bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, 0, false
	}
	return uint64(stat.Dev), uint64(stat.Ino), true
}
