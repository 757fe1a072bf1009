package server

import (
	"context"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/bulk/internal/domain"
	"github.com/bft-labs/bulk/pkg/bulk"
	"github.com/bft-labs/bulk/pkg/log"
)

type fakeEngine struct {
	mu     sync.Mutex
	next   domain.Handle
	opened []int
	data   map[domain.Handle][]byte
	closed map[domain.Handle]bool
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		data:   make(map[domain.Handle][]byte),
		closed: make(map[domain.Handle]bool),
	}
}

func (f *fakeEngine) Open(blockSize, threads int) domain.Handle {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	f.opened = append(f.opened, blockSize, threads)
	return f.next
}

func (f *fakeEngine) Feed(h domain.Handle, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[h] = append(f.data[h], data...)
}

func (f *fakeEngine) Close(h domain.Handle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed[h] = true
}

func (f *fakeEngine) snapshot(h domain.Handle) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return string(f.data[h]), f.closed[h]
}

func listen(t *testing.T) net.Listener {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	return ln
}

func serve(t *testing.T, s *Server, ln net.Listener) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()
	t.Cleanup(cancel)
	return cancel, done
}

func TestServer_FeedsAndClosesPerConnection(t *testing.T) {
	eng := newFakeEngine()
	s := New(Config{BlockSize: 3, Threads: 2, ReadBuffer: 4}, eng, nil)
	ln := listen(t)
	serve(t, s, ln)

	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	_, err = conn.Write([]byte("first\nsecond\n"))
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	require.Eventually(t, func() bool {
		_, closed := eng.snapshot(1)
		return closed
	}, 2*time.Second, 5*time.Millisecond)

	data, _ := eng.snapshot(1)
	assert.Equal(t, "first\nsecond\n", data)

	eng.mu.Lock()
	assert.Equal(t, []int{3, 2}, eng.opened)
	eng.mu.Unlock()
}

func TestServer_ConnectionsAreIndependent(t *testing.T) {
	eng := newFakeEngine()
	s := New(Config{BlockSize: 1, Threads: 1}, eng, nil)
	ln := listen(t)
	serve(t, s, ln)

	a, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		eng.mu.Lock()
		defer eng.mu.Unlock()
		return eng.next == 1
	}, 2*time.Second, 5*time.Millisecond)

	b, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		eng.mu.Lock()
		defer eng.mu.Unlock()
		return eng.next == 2
	}, 2*time.Second, 5*time.Millisecond)

	_, err = a.Write([]byte("from-a\n"))
	require.NoError(t, err)
	_, err = b.Write([]byte("from-b\n"))
	require.NoError(t, err)
	require.NoError(t, a.Close())
	require.NoError(t, b.Close())

	require.Eventually(t, func() bool {
		_, c1 := eng.snapshot(1)
		_, c2 := eng.snapshot(2)
		return c1 && c2
	}, 2*time.Second, 5*time.Millisecond)

	d1, _ := eng.snapshot(1)
	d2, _ := eng.snapshot(2)
	assert.Equal(t, "from-a\n", d1)
	assert.Equal(t, "from-b\n", d2)
}

func TestServer_CancelClosesOpenConnections(t *testing.T) {
	eng := newFakeEngine()
	rec := log.NewRecorder()
	s := New(Config{BlockSize: 1, Threads: 1}, eng, rec)
	ln := listen(t)
	cancel, done := serve(t, s, ln)

	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	_, err = conn.Write([]byte("pending\n"))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		data, _ := eng.snapshot(1)
		return data == "pending\n"
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}

	_, closed := eng.snapshot(1)
	assert.True(t, closed, "open connection should be closed on shutdown")
	assert.NotEmpty(t, rec.Matching("server stopped"))
}

func TestServer_Reconfigure(t *testing.T) {
	eng := newFakeEngine()
	s := New(Config{BlockSize: 3, Threads: 2}, eng, nil)
	s.Reconfigure(5, 1)
	ln := listen(t)
	serve(t, s, ln)

	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	require.Eventually(t, func() bool {
		_, closed := eng.snapshot(1)
		return closed
	}, 2*time.Second, 5*time.Millisecond)

	eng.mu.Lock()
	assert.Equal(t, []int{5, 1}, eng.opened)
	eng.mu.Unlock()
}

func TestServer_WithEngine(t *testing.T) {
	rec := log.NewRecorder()
	eng := bulk.New(bulk.WithLogger(rec), bulk.WithOutputDir(t.TempDir()))
	s := New(Config{BlockSize: 2, Threads: 1}, eng, nil)
	ln := listen(t)
	serve(t, s, ln)

	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	_, err = conn.Write([]byte("a\nb\nc\n"))
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	require.Eventually(t, func() bool {
		for _, e := range rec.Entries() {
			if strings.Contains(e.Message, "Metrics") {
				return true
			}
		}
		return false
	}, 2*time.Second, 5*time.Millisecond)

	var summaries []string
	for _, e := range rec.Entries() {
		if strings.Contains(e.Message, "bulk: ") {
			summaries = append(summaries, e.Message[strings.Index(e.Message, "bulk: "):])
		}
	}
	assert.ElementsMatch(t, []string{"bulk: a, b", "bulk: c"}, summaries)
}

func TestBackoff(t *testing.T) {
	b := newBackoff(time.Millisecond, 4*time.Millisecond)
	ctx := context.Background()

	require.NoError(t, b.Wait(ctx))
	assert.Equal(t, 2*time.Millisecond, b.Current())
	require.NoError(t, b.Wait(ctx))
	require.NoError(t, b.Wait(ctx))
	assert.Equal(t, 4*time.Millisecond, b.Current())

	b.Reset()
	assert.Equal(t, time.Millisecond, b.Current())

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	long := newBackoff(time.Hour, time.Hour)
	assert.ErrorIs(t, long.Wait(cancelled), context.Canceled)
}
