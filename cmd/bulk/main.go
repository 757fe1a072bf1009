package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/bulk/internal/cliconfig"
)

const helpDescription = `
Group a stream of commands into blocks and run every block through two sinks:
a log line per block and a bulk_<nanos>_<tid>.log file per block.

A line "{" opens a dynamic block that ends at the matching "}". Outside dynamic
blocks commands are grouped into static blocks of block-size commands.
When the input ends, each connection logs a metrics report.
`

var exampleUsage = strings.TrimSpace(`
  printf 'a\nb\nc\n' | bulk 2
  bulk serve --listen 127.0.0.1:9000 --threads 4 --metrics-addr :2112
  bulk --config $HOME/.bulk/config.toml
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	root := &cobra.Command{
		Use:          "bulk [block-size]",
		Short:        "Group commands into blocks and fan them out to a logger and files",
		Long:         strings.TrimSpace(helpDescription),
		Example:      exampleUsage,
		Version:      fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			changed := changedFlags(cmd)
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("block size %q is not a number", args[0])
				}
				cfg.BlockSize = n
				changed["block-size"] = true
			}

			p, err := newProcess(cfg, cfgPath, changed)
			if err != nil {
				return err
			}
			return p.runStdin(cmd.Context(), os.Stdin)
		},
	}

	serve := &cobra.Command{
		Use:          "serve",
		Short:        "Accept TCP connections, one engine connection each",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newProcess(cfg, cfgPath, changedFlags(cmd))
			if err != nil {
				return err
			}
			return p.runServe(cmd.Context())
		},
	}
	root.AddCommand(serve)

	// Flags shared by both modes
	flags := root.PersistentFlags()
	flags.StringVar(&cfgPath, "config", "", "path to config file, .toml or .yaml (default: $HOME/.bulk/config.toml)")
	flags.IntVar(&cfg.BlockSize, "block-size", cfg.BlockSize, "statements per static block")
	flags.IntVar(&cfg.FileThreads, "threads", cfg.FileThreads, "file writer threads per connection")
	flags.StringVar(&cfg.OutputDir, "output-dir", cfg.OutputDir, "directory for block artifacts")
	flags.IntVar(&cfg.LineCapacity, "line-capacity", cfg.LineCapacity, "line buffer capacity in bytes")
	flags.StringVar(&cfg.Overflow, "overflow", cfg.Overflow, "long line policy: truncate or grow")
	flags.IntVar(&cfg.ReadBuffer, "read-buffer", cfg.ReadBuffer, "bytes per read from stdin or a socket")
	flags.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "serve Prometheus metrics on this address (disabled when empty)")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	flags.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format: console or json")

	serve.Flags().StringVar(&cfg.Listen, "listen", cfg.Listen, "TCP listen address")
	serve.Flags().BoolVar(&cfg.WatchConfig, "watch-config", cfg.WatchConfig, "reload the config file when it changes")

	// SIGINT/SIGTERM cancel the command context, which closes every connection
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := root.ExecuteContext(ctx)
	stop()
	if err != nil {
		log.Error().Err(err).Msg("bulk")
		os.Exit(1)
	}
}

func changedFlags(cmd *cobra.Command) map[string]bool {
	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })
	return changed
}
