// Package rotate writes events to a size-rotated log file backed by
// lumberjack, rendering lines the same way sink/console does.
package rotate

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/trickstertwo/xbus"
	"github.com/trickstertwo/xbus/sink/console"
)

// Config describes the rotated file.
type Config struct {
	FilePath   string
	MaxSize    int  // megabytes; default 100
	MaxBackups int  // default 3
	MaxAge     int  // days; default 7
	Compress   bool // gzip rotated files
}

// New builds a rotating file sink. An empty FilePath falls back to
// stderr with a warning rather than losing logs silently; a directory
// that cannot be created does the same.
func New(cfg Config) (xbus.Sink, error) {
	return console.New(newWriter(cfg), console.Options{}), nil
}

func newWriter(cfg Config) io.Writer {
	if cfg.FilePath == "" {
		fmt.Fprintln(os.Stderr, "xbus: file sink has empty filePath, falling back to stderr")
		return os.Stderr
	}
	if dir := filepath.Dir(cfg.FilePath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			fmt.Fprintf(os.Stderr, "xbus: cannot create log directory %q: %v, falling back to stderr\n", dir, err)
			return os.Stderr
		}
	}
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = 100
	}
	if cfg.MaxBackups <= 0 {
		cfg.MaxBackups = 3
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = 7
	}
	return &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}
}
