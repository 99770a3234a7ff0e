package threads

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// EnvLogLevel overrides Config.LogLevel when set.
const EnvLogLevel = "THREADS_LOG_LEVEL"

// Config holds process-wide settings.
//
// Example YAML:
//
//	max_threads: 64
//	lock_os_thread: true
//	log_level: debug
//	log_format: json
type Config struct {
	// MaxThreads caps the number of spawned threads that have not been freed.
	// Zero means unlimited.
	MaxThreads int `yaml:"max_threads" json:"max_threads"`

	// LockOSThread pins each spawned thread's goroutine to its own OS thread
	// for its whole life, which makes Thread.ID a real OS thread id.
	LockOSThread bool `yaml:"lock_os_thread" json:"lock_os_thread"`

	// LogLevel is one of debug, info, warning, error, quiet.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// LogFormat is text or json.
	LogFormat string `yaml:"log_format" json:"log_format"`
}

// DefaultConfig returns the settings used when Configure is never called.
func DefaultConfig() Config {
	return Config{
		LockOSThread: true,
		LogLevel:     "info",
		LogFormat:    "text",
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.MaxThreads < 0 {
		return fmt.Errorf("%w: max_threads must be >= 0 (got %d)", ErrInvalidArguments, c.MaxThreads)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: unknown log format %q", ErrInvalidArguments, c.LogFormat)
	}
	return nil
}

// ParseConfig decodes YAML on top of DefaultConfig and validates the result.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("yaml unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads and parses a YAML configuration file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

var (
	configMu sync.Mutex
	current  = DefaultConfig()
)

// Configure applies cfg process-wide and installs a logger on stderr built
// from its log settings. THREADS_LOG_LEVEL, when set, overrides LogLevel.
// Threads already running keep the settings they were spawned with.
func Configure(cfg Config) error {
	if lvl := os.Getenv(EnvLogLevel); lvl != "" {
		cfg.LogLevel = lvl
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	l, err := NewLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}

	configMu.Lock()
	current = cfg
	configMu.Unlock()
	SetLogger(l)
	return nil
}

// CurrentConfig returns the active configuration.
func CurrentConfig() Config {
	configMu.Lock()
	defer configMu.Unlock()
	return current
}
