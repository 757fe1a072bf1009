//go:build !linux

package worker

func threadID(index int) int {
	return index
}
