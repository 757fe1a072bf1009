package cliconfig

import (
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// FileConfig mirrors Config for TOML and YAML config files.
// Pointer fields distinguish "unset" from an explicit false.
type FileConfig struct {
	BlockSize    int    `toml:"block_size" yaml:"block_size"`
	FileThreads  int    `toml:"threads" yaml:"threads"`
	OutputDir    string `toml:"output_dir" yaml:"output_dir"`
	LineCapacity int    `toml:"line_capacity" yaml:"line_capacity"`
	Overflow     string `toml:"overflow" yaml:"overflow"`
	Listen       string `toml:"listen" yaml:"listen"`
	MetricsAddr  string `toml:"metrics_addr" yaml:"metrics_addr"`
	ReadBuffer   int    `toml:"read_buffer" yaml:"read_buffer"`
	LogLevel     string `toml:"log_level" yaml:"log_level"`
	LogFormat    string `toml:"log_format" yaml:"log_format"`
	WatchConfig  *bool  `toml:"watch_config" yaml:"watch_config"`
}

// LoadFileConfig reads and parses a config file from the given path.
// Files ending in .yaml or .yml are parsed as YAML, anything else as TOML.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if isYAML(path) {
		err = yaml.Unmarshal(b, &fc)
	} else {
		err = toml.Unmarshal(b, &fc)
	}
	if err != nil {
		return fc, err
	}
	return fc, nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.bulk/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".bulk", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) {
	s := newConfigSetter(changed)

	s.setString("output-dir", fc.OutputDir, &cfg.OutputDir)
	s.setString("overflow", fc.Overflow, &cfg.Overflow)
	s.setString("listen", fc.Listen, &cfg.Listen)
	s.setString("metrics-addr", fc.MetricsAddr, &cfg.MetricsAddr)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setString("log-format", fc.LogFormat, &cfg.LogFormat)

	s.setInt("block-size", fc.BlockSize, &cfg.BlockSize)
	s.setInt("threads", fc.FileThreads, &cfg.FileThreads)
	s.setInt("line-capacity", fc.LineCapacity, &cfg.LineCapacity)
	s.setInt("read-buffer", fc.ReadBuffer, &cfg.ReadBuffer)

	s.setBool("watch-config", fc.WatchConfig, &cfg.WatchConfig)
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
