package server

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"

	"github.com/bft-labs/bulk/internal/domain"
	"github.com/bft-labs/bulk/pkg/log"
)

// DefaultReadBuffer is the socket read size used when none is configured.
const DefaultReadBuffer = 4096

// Engine is the part of the engine the server drives.
type Engine interface {
	Open(blockSize, threads int) domain.Handle
	Feed(h domain.Handle, data []byte)
	Close(h domain.Handle)
}

// Config holds server settings.
type Config struct {
	// BlockSize and Threads are passed to Engine.Open for each connection.
	BlockSize int
	Threads   int

	// ReadBuffer is the size of each socket read.
	ReadBuffer int
}

// Server accepts TCP connections and streams them into an Engine.
type Server struct {
	cfg    Config
	engine Engine
	logger log.Logger

	// mu guards conns and the per-connection fields of cfg.
	mu    sync.Mutex
	conns map[net.Conn]struct{}
	wg    sync.WaitGroup
}

// New creates a server. A nil logger disables logging.
func New(cfg Config, engine Engine, logger log.Logger) *Server {
	if cfg.ReadBuffer < 1 {
		cfg.ReadBuffer = DefaultReadBuffer
	}
	if logger == nil {
		logger = log.NoopLogger{}
	}
	return &Server{
		cfg:    cfg,
		engine: engine,
		logger: logger,
		conns:  make(map[net.Conn]struct{}),
	}
}

// Serve accepts connections on ln until ctx is done or ln is closed.
// It may be called once. Before returning it closes every open connection and waits for their
// engine connections to be closed.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = ln.Close()
		case <-stop:
		}
	}()

	s.logger.Info("server listening", log.String("addr", ln.Addr().String()))

	b := newBackoff(DefaultBackoffInitial, DefaultBackoffMax)
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break
			}
			s.logger.Warn("accept failed",
				log.Err(err),
				log.Duration("backoff", b.Current()),
			)
			if b.Wait(ctx) != nil {
				break
			}
			continue
		}
		b.Reset()

		if !s.track(conn) {
			_ = conn.Close()
			continue
		}
		s.wg.Add(1)
		go s.handle(conn)
	}

	s.closeConns()
	s.wg.Wait()
	s.logger.Info("server stopped")
	return nil
}

// Reconfigure changes the block size and thread count of connections accepted afterwards.
func (s *Server) Reconfigure(blockSize, threads int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.BlockSize = blockSize
	s.cfg.Threads = threads
}

func (s *Server) track(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conns == nil {
		return false
	}
	s.conns[conn] = struct{}{}
	return true
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, conn)
}

func (s *Server) closeConns() {
	s.mu.Lock()
	conns := s.conns
	s.conns = nil
	s.mu.Unlock()

	for c := range conns {
		_ = c.Close()
	}
}

func (s *Server) handle(conn net.Conn) {
	defer s.wg.Done()
	defer s.untrack(conn)
	defer conn.Close()

	s.mu.Lock()
	blockSize, threads := s.cfg.BlockSize, s.cfg.Threads
	s.mu.Unlock()

	h := s.engine.Open(blockSize, threads)
	remote := conn.RemoteAddr().String()
	s.logger.Debug("connection opened",
		log.String("remote", remote),
		log.String("handle", h.String()),
	)

	buf := make([]byte, s.cfg.ReadBuffer)
	var total int
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			s.engine.Feed(h, buf[:n])
			total += n
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				s.logger.Warn("connection read failed",
					log.String("remote", remote),
					log.Err(err),
				)
			}
			break
		}
	}

	s.engine.Close(h)
	s.logger.Debug("connection closed",
		log.String("remote", remote),
		log.String("handle", h.String()),
		log.Int("bytes", total),
	)
}
