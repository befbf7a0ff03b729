package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rpggio/defectlog/internal/config"
)

// newLogger builds the process logger. With a log path configured, output
// goes to a size-capped file instead of out.
func newLogger(cfg config.LogConfig, out io.Writer) (*slog.Logger, func() error, error) {
	closeFn := func() error { return nil }
	var fileErr error

	writer := out
	if cfg.Path != "" {
		fileWriter, err := newLogFileWriter(cfg.Path)
		if err != nil {
			fileErr = err
		} else {
			writer = fileWriter
			closeFn = fileWriter.Close
		}
	}

	logger := slog.New(slog.NewTextHandler(writer, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Level),
	}))
	if fileErr != nil {
		logger.Warn("log file unavailable, logging to console", "path", cfg.Path, "error", fileErr)
	}
	return logger, closeFn, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

const (
	maxLogSizeBytes  = 6 * 1024 * 1024
	keepLogSizeBytes = 5 * 1024 * 1024
)

// logFileWriter appends to a file and drops the oldest bytes once it grows
// past maxLogSizeBytes, keeping the last keepLogSizeBytes.
type logFileWriter struct {
	file *os.File
	max  int64
	keep int64
	mu   sync.Mutex
}

func newLogFileWriter(path string) (*logFileWriter, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	w := &logFileWriter{file: file, max: maxLogSizeBytes, keep: keepLogSizeBytes}
	if err := w.truncateIfNeeded(); err != nil {
		file.Close()
		return nil, err
	}
	return w, nil
}

func (w *logFileWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n, err := w.file.Write(p)
	if err != nil {
		return n, err
	}
	return n, w.truncateIfNeeded()
}

func (w *logFileWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}

func (w *logFileWriter) truncateIfNeeded() error {
	info, err := w.file.Stat()
	if err != nil {
		return err
	}
	size := info.Size()
	if size <= w.max {
		return nil
	}

	buf := make([]byte, w.keep)
	n, err := w.file.ReadAt(buf, size-w.keep)
	if err != nil && err != io.EOF {
		return err
	}
	buf = buf[:n]

	if err := w.file.Truncate(0); err != nil {
		return err
	}
	// O_APPEND writes land at the new end of file after truncation.
	_, err = w.file.Write(buf)
	return err
}
