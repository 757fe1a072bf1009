//go:build linux

package worker

import "golang.org/x/sys/unix"

// threadID returns the kernel id of the calling thread.
// The caller must be locked to its OS thread for the value to stay meaningful.
func threadID(_ int) int {
	return unix.Gettid()
}
