package threads

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/obinnaokechukwu/threads/logging"
)

// LogLevel selects which records the default logger writes.
type LogLevel int32

// Log levels, ordered like slog's.
const (
	LogDebug   LogLevel = LogLevel(slog.LevelDebug)
	LogInfo    LogLevel = LogLevel(slog.LevelInfo)
	LogWarning LogLevel = LogLevel(slog.LevelWarn)
	LogError   LogLevel = LogLevel(slog.LevelError)
	LogQuiet   LogLevel = LogLevel(slog.LevelError + 64) // Print no output
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch {
	case l <= LogDebug:
		return "debug"
	case l <= LogInfo:
		return "info"
	case l <= LogWarning:
		return "warning"
	case l <= LogError:
		return "error"
	default:
		return "quiet"
	}
}

// ParseLogLevel parses a level name as written by String. "warn" is accepted
// as an alias for "warning".
func ParseLogLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LogDebug, nil
	case "info", "":
		return LogInfo, nil
	case "warn", "warning":
		return LogWarning, nil
	case "error":
		return LogError, nil
	case "quiet", "off", "none":
		return LogQuiet, nil
	default:
		return LogInfo, fmt.Errorf("%w: unknown log level %q", ErrInvalidArguments, s)
	}
}

var (
	loggerMu sync.Mutex
	logger   = logging.New(nil)
)

// SetLogger replaces the logger used for thread failures and primitive
// lifecycle records. Pass nil to restore the slog.Default() binding.
func SetLogger(l logging.Logger) {
	if l == nil {
		l = logging.New(nil)
	}
	loggerMu.Lock()
	logger = l
	loggerMu.Unlock()
}

// Logger returns the current logger.
func Logger() logging.Logger {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	return logger
}

// NewLogger builds the logger described by cfg writing to w.
func NewLogger(cfg Config, w io.Writer) (logging.Logger, error) {
	level, err := ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: slog.Level(level)}

	var h slog.Handler
	switch strings.ToLower(cfg.LogFormat) {
	case "", "text":
		h = slog.NewTextHandler(w, opts)
	case "json":
		h = slog.NewJSONHandler(w, opts)
	default:
		return nil, fmt.Errorf("%w: unknown log format %q", ErrInvalidArguments, cfg.LogFormat)
	}
	return logging.New(slog.New(h)), nil
}
