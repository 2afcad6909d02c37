package pkg

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// levelWriter only forwards events at or above a minimum level, so the
// console and the log file can use different levels.
type levelWriter struct {
	io.Writer
	level zerolog.Level
}

func (w levelWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level < w.level {
		return len(p), nil
	}
	return w.Writer.Write(p)
}

// NewLogger builds the run logger. Console output is human readable at info
// level, or debug when verbose. When logFile is set, JSON lines at debug
// level are appended to it as well. The returned closer releases the file.
func NewLogger(console io.Writer, logFile string, verbose bool) (zerolog.Logger, io.Closer, error) {
	consoleLevel := zerolog.InfoLevel
	if verbose {
		consoleLevel = zerolog.DebugLevel
	}

	writers := []io.Writer{
		levelWriter{Writer: zerolog.ConsoleWriter{Out: console, NoColor: true, TimeFormat: "15:04:05"}, level: consoleLevel},
	}

	var closer io.Closer = nopCloser{}
	if logFile != "" {
		if err := os.MkdirAll(filepath.Dir(logFile), 0755); err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("failed to open log file: %w", err)
		}
		writers = append(writers, levelWriter{Writer: f, level: zerolog.DebugLevel})
		closer = f
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(zerolog.DebugLevel).
		With().Timestamp().Logger()
	return logger, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
