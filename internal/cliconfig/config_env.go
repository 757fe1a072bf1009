package cliconfig

import "os"

// EnvPrefix is the prefix of every environment variable read by ApplyEnvConfig.
const EnvPrefix = "BULK_"

// ApplyEnvConfig applies configuration from environment variables (BULK_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("output-dir", os.Getenv(EnvPrefix+"OUTPUT_DIR"), &cfg.OutputDir)
	s.setString("overflow", os.Getenv(EnvPrefix+"OVERFLOW"), &cfg.Overflow)
	s.setString("listen", os.Getenv(EnvPrefix+"LISTEN"), &cfg.Listen)
	s.setString("metrics-addr", os.Getenv(EnvPrefix+"METRICS_ADDR"), &cfg.MetricsAddr)
	s.setString("log-level", os.Getenv(EnvPrefix+"LOG_LEVEL"), &cfg.LogLevel)
	s.setString("log-format", os.Getenv(EnvPrefix+"LOG_FORMAT"), &cfg.LogFormat)

	if err := s.setIntFromString("block-size", os.Getenv(EnvPrefix+"BLOCK_SIZE"), &cfg.BlockSize); err != nil {
		return err
	}
	if err := s.setIntFromString("threads", os.Getenv(EnvPrefix+"THREADS"), &cfg.FileThreads); err != nil {
		return err
	}
	if err := s.setIntFromString("line-capacity", os.Getenv(EnvPrefix+"LINE_CAPACITY"), &cfg.LineCapacity); err != nil {
		return err
	}
	if err := s.setIntFromString("read-buffer", os.Getenv(EnvPrefix+"READ_BUFFER"), &cfg.ReadBuffer); err != nil {
		return err
	}

	s.setBoolFromString("watch-config", os.Getenv(EnvPrefix+"WATCH_CONFIG"), &cfg.WatchConfig)

	return nil
}
