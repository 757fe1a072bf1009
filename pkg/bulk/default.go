package bulk

import (
	"sync"

	"github.com/bft-labs/bulk/pkg/log"
)

// DefaultThreadsPerConnection is the file worker count used by Connect.
const DefaultThreadsPerConnection = 2

var (
	defaultOnce   sync.Once
	defaultEngine *Engine
)

// Default returns the process-wide engine used by Connect, Receive and Disconnect.
// It logs to stderr and writes artifacts to the working directory.
func Default() *Engine {
	defaultOnce.Do(func() {
		defaultEngine = New(WithLogger(log.NewZerologAdapter()))
	})
	return defaultEngine
}

// Connect opens a connection on the default engine.
func Connect(blockSize int) Handle {
	return Default().Open(blockSize, DefaultThreadsPerConnection)
}

// Receive feeds data into a connection of the default engine.
func Receive(h Handle, data []byte) {
	Default().Feed(h, data)
}

// Disconnect closes a connection of the default engine.
func Disconnect(h Handle) {
	Default().Close(h)
}
