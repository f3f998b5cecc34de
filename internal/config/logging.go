package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// NewLogger builds the process logger: JSON on stdout, debug level in dev.
// When LogDir is set, output is also written to a timestamped file there.
// The returned closer must be called on shutdown; it is a no-op without LogDir.
func NewLogger(cfg *Config) (*slog.Logger, func() error, error) {
	level := slog.LevelInfo
	if cfg.Environment == "dev" {
		level = slog.LevelDebug
	}

	var out io.Writer = os.Stdout
	closer := func() error { return nil }

	if cfg.LogDir != "" {
		f, err := SetupLogFile(cfg.LogDir, cfg.LogKeep)
		if err != nil {
			return nil, nil, err
		}
		out = io.MultiWriter(os.Stdout, f)
		closer = f.Close
	}

	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: level,
	}))
	return logger, closer, nil
}

// SetupLogFile creates a new timestamped log file and prunes old ones,
// keeping at most keep files. Caller must close the file.
func SetupLogFile(dir string, keep int) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	name := filepath.Join(dir, fmt.Sprintf("docconv-%s.log",
		time.Now().Format("2006-01-02T15-04-05")))

	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create log file: %w", err)
	}

	if err := pruneLogs(dir, keep); err != nil {
		// logging still works without pruning
		fmt.Fprintf(os.Stderr, "warning: failed to prune old logs: %v\n", err)
	}

	return f, nil
}

func pruneLogs(dir string, keep int) error {
	if keep < 1 {
		keep = 1
	}
	files, err := filepath.Glob(filepath.Join(dir, "docconv-*.log"))
	if err != nil {
		return err
	}
	if len(files) <= keep {
		return nil
	}

	// timestamp format sorts chronologically
	sort.Strings(files)

	for _, f := range files[:len(files)-keep] {
		if err := os.Remove(f); err != nil {
			return fmt.Errorf("remove %s: %w", f, err)
		}
	}
	return nil
}
