package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/gommon/log"
)

const header = `${time_rfc3339} ${level} ${short_file}:${line} ${prefix}`

// Logger is the subset of the gommon logger the application depends on.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// New builds a logger writing to stderr and, when file is set, appending
// to that file as well. The returned closer releases the file.
func New(level, file string) (*log.Logger, io.Closer, error) {
	logger := log.New("leadfinder")
	logger.SetHeader(header)
	logger.SetLevel(ParseLevel(level))

	if file == "" {
		logger.SetOutput(os.Stderr)
		return logger, io.NopCloser(nil), nil
	}

	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return nil, nil, err
	}

	f, err := os.OpenFile(file, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}

	logger.SetOutput(io.MultiWriter(os.Stderr, f))
	return logger, f, nil
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	logger := log.New("discard")
	logger.SetOutput(io.Discard)
	logger.SetLevel(log.OFF)
	return logger
}

func ParseLevel(level string) log.Lvl {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return log.INFO
	}
}
