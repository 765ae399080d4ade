//go:build !linux

package xalloc

// physicalMemory is unknown off Linux; requests rely on the runtime's own
// size check.
func physicalMemory() int { return 0 }
