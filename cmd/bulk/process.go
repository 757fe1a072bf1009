package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/bft-labs/bulk/internal/cliconfig"
	"github.com/bft-labs/bulk/internal/metrics"
	"github.com/bft-labs/bulk/internal/server"
	logAdapter "github.com/bft-labs/bulk/pkg/log"
	"github.com/bft-labs/bulk/pkg/bulk"
	"github.com/bft-labs/bulk/plugins/configwatcher"
)

const shutdownTimeout = 5 * time.Second

// process is one CLI invocation: resolved config, logger and engine.
type process struct {
	flagCfg cliconfig.Config
	cfgFile string
	changed map[string]bool

	cfg    cliconfig.Config
	log    zerolog.Logger
	logger *logAdapter.ZerologAdapter
	reg    *prometheus.Registry
	engine *bulk.Engine
}

// newProcess resolves the configuration (flags > env > file > defaults)
// and builds the engine.
func newProcess(flagCfg cliconfig.Config, cfgPath string, changed map[string]bool) (*process, error) {
	cfgFile := cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}

	p := &process{flagCfg: flagCfg, cfgFile: cfgFile, changed: changed}
	cfg, err := p.resolve()
	if err != nil {
		return nil, err
	}
	p.cfg = cfg

	p.log, err = cliconfig.Logger(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		return nil, err
	}
	p.log.Info().Interface("config", cfg).Msg("configuration")
	p.logger = logAdapter.NewZerologAdapterWithLogger(p.log)

	sc := cfg.SessionConfig()
	opts := []bulk.Option{
		bulk.WithLogger(p.logger),
		bulk.WithOutputDir(sc.OutputDir),
		bulk.WithLineCapacity(sc.LineCapacity),
		bulk.WithOverflowPolicy(sc.Overflow),
	}
	if cfg.MetricsAddr != "" {
		p.reg = metrics.NewRegistry()
		opts = append(opts, bulk.WithRegisterer(p.reg))
	}
	p.engine = bulk.New(opts...)
	return p, nil
}

func (p *process) resolve() (cliconfig.Config, error) {
	cfg := p.flagCfg
	if p.cfgFile != "" && cliconfig.FileExists(p.cfgFile) {
		fc, err := cliconfig.LoadFileConfig(p.cfgFile)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		cliconfig.ApplyFileConfig(&cfg, fc, p.changed)
	}

	// Environment overrides the file but not explicit flags
	if err := cliconfig.ApplyEnvConfig(&cfg, p.changed); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// runStdin streams r through a single connection until EOF or ctx is done.
func (p *process) runStdin(ctx context.Context, r io.Reader) error {
	stopMetrics := p.startMetrics()
	defer stopMetrics()

	h := p.engine.Open(p.cfg.BlockSize, p.cfg.FileThreads)

	done := make(chan error, 1)
	go func() { done <- p.pump(h, r) }()

	var err error
	select {
	case err = <-done:
		if err != nil {
			err = fmt.Errorf("read input: %w", err)
		}
	case <-ctx.Done():
		p.log.Info().Msg("received signal, stopping...")
	}

	p.engine.Shutdown()
	return err
}

func (p *process) pump(h bulk.Handle, r io.Reader) error {
	buf := make([]byte, p.cfg.ReadBuffer)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			p.engine.Feed(h, buf[:n])
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// runServe accepts TCP connections until ctx is done.
func (p *process) runServe(ctx context.Context) error {
	stopMetrics := p.startMetrics()
	defer stopMetrics()

	ln, err := net.Listen("tcp", p.cfg.Listen)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	srv := server.New(server.Config{
		BlockSize:  p.cfg.BlockSize,
		Threads:    p.cfg.FileThreads,
		ReadBuffer: p.cfg.ReadBuffer,
	}, p.engine, p.logger)

	if p.cfg.WatchConfig {
		stopWatch, err := p.watchConfig(ctx, srv)
		if err != nil {
			p.log.Warn().Err(err).Msg("config watcher disabled")
		} else {
			defer stopWatch()
		}
	}

	err = srv.Serve(ctx, ln)
	p.engine.Shutdown()
	return err
}

func (p *process) watchConfig(ctx context.Context, srv *server.Server) (func(), error) {
	if p.cfgFile == "" || !cliconfig.FileExists(p.cfgFile) {
		return nil, fmt.Errorf("no config file at %q", p.cfgFile)
	}

	w := configwatcher.New(configwatcher.DefaultConfig(), configwatcher.WithLogger(p.logger))
	err := w.Start(ctx, p.cfgFile, func() error {
		next, err := p.resolve()
		if err != nil {
			return err
		}
		srv.Reconfigure(next.BlockSize, next.FileThreads)
		p.log.Info().
			Int("block_size", next.BlockSize).
			Int("threads", next.FileThreads).
			Msg("new connections use reloaded settings")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = w.Shutdown(sctx)
	}, nil
}

// startMetrics serves Prometheus metrics when an address is configured.
func (p *process) startMetrics() func() {
	if p.cfg.MetricsAddr == "" || p.reg == nil {
		return func() {}
	}

	hs := &http.Server{
		Addr:              p.cfg.MetricsAddr,
		Handler:           metrics.Handler(p.reg),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			p.log.Error().Err(err).Str("addr", p.cfg.MetricsAddr).Msg("metrics server failed")
		}
	}()
	p.log.Info().Str("addr", p.cfg.MetricsAddr).Msg("metrics server listening")

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = hs.Shutdown(ctx)
	}
}
