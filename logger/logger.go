// Package logger builds a process logger.
//
// There is no global logger: Open returns a handle which has to be passed
// to components explicitly and closed on exit.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/portseal/portseal/fwdlib"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	// DefaultMaxSizeMegabytes is a size of a log file which triggers
	// rotation.
	DefaultMaxSizeMegabytes = 1

	// DefaultMaxBackups is a number of rotated files to keep.
	DefaultMaxBackups = 10

	bytesInMegabyte = 1024 * 1024
)

// Options defines where logs go.
type Options struct {
	// Debug enables debug level.
	Debug bool

	// Console writes human-readable logs to stderr. If File is empty,
	// console output is always enabled.
	Console bool

	// File is a path to a log file. Files are rotated by size.
	File string

	// MaxSize is a size of a log file in bytes which triggers rotation.
	// It is rounded up to megabytes.
	MaxSize uint64

	// MaxBackups is a number of rotated files to keep.
	MaxBackups int
}

func (o Options) getMaxSizeMegabytes() int {
	if o.MaxSize == 0 {
		return DefaultMaxSizeMegabytes
	}

	return int((o.MaxSize + bytesInMegabyte - 1) / bytesInMegabyte)
}

func (o Options) getMaxBackups() int {
	if o.MaxBackups <= 0 {
		return DefaultMaxBackups
	}

	return o.MaxBackups
}

type nopCloser struct{}

func (nopCloser) Close() error {
	return nil
}

// Open builds a logger. Returned closer flushes and closes a log file.
func Open(opts Options) (fwdlib.Logger, io.Closer, error) {
	writers := []io.Writer{}

	var closer io.Closer = nopCloser{}

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil { //nolint: gomnd
			return nil, nil, fmt.Errorf("cannot create log directory: %w", err)
		}

		fileWriter := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.getMaxSizeMegabytes(),
			MaxBackups: opts.getMaxBackups(),
		}

		writers = append(writers, fileWriter)
		closer = fileWriter
	}

	if opts.Console || opts.File == "" {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		})
	}

	level := zerolog.InfoLevel
	if opts.Debug {
		level = zerolog.DebugLevel
	}

	log := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Logger()

	return NewZeroLogger(log), closer, nil
}
