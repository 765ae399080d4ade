//go:build linux

package xalloc

import (
	"math"

	"fortio.org/safecast"
	"golang.org/x/sys/unix"
)

// physicalMemory returns total RAM in bytes, or 0 when it cannot be read.
func physicalMemory() int {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return 0
	}
	total := uint64(info.Totalram) * uint64(info.Unit)
	n, err := safecast.Conv[int](total)
	if err != nil {
		return math.MaxInt
	}
	return n
}
