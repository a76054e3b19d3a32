//go:build darwin

package tuner

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"
)

// Detect detects available system resources (CPU and RAM).
// On darwin it uses runtime.NumCPU() for CPU cores and sysctl for memory.
func Detect() (SystemResources, error) {
	resources := SystemResources{
		CPUCores: runtime.NumCPU(),
	}

	memsize, err := unix.SysctlUint64("hw.memsize")
	if err != nil {
		return resources, fmt.Errorf("sysctl hw.memsize: %w", err)
	}
	resources.TotalRAM = int64(memsize)

	// Precise available memory on macOS needs host_statistics; a
	// conservative half-of-total estimate is enough for queue sizing.
	resources.AvailableRAM = resources.TotalRAM / 2

	return resources, nil
}
