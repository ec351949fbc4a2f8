package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	charmLog "github.com/charmbracelet/log"

	"github.com/andrescamacho/empire-go/internal/infrastructure/config"
)

// NewLogger builds a structured logger from the logging config.
// The returned close func releases the log file when output is "file".
func NewLogger(cfg config.LoggingConfig, prefix string) (*charmLog.Logger, func() error, error) {
	level, err := charmLog.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("parse logging level %q: %w", cfg.Level, err)
	}

	var (
		out       io.Writer
		closeFunc = func() error { return nil }
	)
	switch cfg.Output {
	case "stdout":
		out = os.Stdout
	case "", "stderr":
		out = os.Stderr
	case "file":
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log dir: %w", err)
		}
		f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		out = f
		closeFunc = f.Close
	default:
		return nil, nil, fmt.Errorf("unsupported log output: %s", cfg.Output)
	}

	return newLogger(out, level, cfg.Format, prefix, cfg.IncludeCaller), closeFunc, nil
}

// NewWriterLogger builds a logger on an arbitrary writer, used by tests and the CLI
func NewWriterLogger(out io.Writer, level string, format string) *charmLog.Logger {
	parsed, err := charmLog.ParseLevel(level)
	if err != nil {
		parsed = charmLog.InfoLevel
	}
	return newLogger(out, parsed, format, "", false)
}

func newLogger(out io.Writer, level charmLog.Level, format string, prefix string, reportCaller bool) *charmLog.Logger {
	formatter := charmLog.TextFormatter
	switch format {
	case "json":
		formatter = charmLog.JSONFormatter
	case "logfmt":
		formatter = charmLog.LogfmtFormatter
	}

	return charmLog.NewWithOptions(out, charmLog.Options{
		Level:           level,
		Prefix:          prefix,
		ReportTimestamp: true,
		ReportCaller:    reportCaller,
		TimeFormat:      time.RFC3339,
		Formatter:       formatter,
	})
}
