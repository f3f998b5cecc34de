package conversion

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"docconv/internal/config"
	"docconv/internal/domain"
	"docconv/internal/domain/models"
	"docconv/internal/domain/services"
)

// noExportFilter is what LibreOffice writes to stderr when it has no export
// filter for the requested target and this kind of input.
const noExportFilter = "Error: no export filter for"

// Config is the orchestrator's explicit configuration.
type Config struct {
	// TempDir is the base for workspaces; empty means os.TempDir().
	TempDir string
	// DeleteFiles removes each workspace once it is no longer needed.
	DeleteFiles bool
	// Binary is the converter executable, e.g. "libreoffice" or "soffice".
	Binary string
	// Timeout bounds one converter run.
	Timeout time.Duration
	// IsolateProfile gives every run its own LibreOffice user profile
	// inside the workspace, so concurrent runs do not share a profile lock.
	IsolateProfile bool
}

// ConfigFrom maps process configuration onto the orchestrator's.
func ConfigFrom(cfg *config.Config) Config {
	return Config{
		TempDir:        cfg.TempDir,
		DeleteFiles:    cfg.DeleteFiles,
		Binary:         cfg.ConverterBinary,
		Timeout:        cfg.ConversionTimeout,
		IsolateProfile: cfg.IsolateProfile,
	}
}

// Service runs one external conversion per call, each in its own workspace.
// It holds no mutable state and is safe for concurrent use.
type Service struct {
	cfg    Config
	runner services.CommandRunner
	now    func() time.Time
	logger *slog.Logger
}

// Option customizes a Service.
type Option func(*Service)

// WithRunner replaces the subprocess runner.
func WithRunner(r services.CommandRunner) Option {
	return func(s *Service) {
		s.runner = r
	}
}

// WithClock replaces the clock used for workspace timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a conversion service.
func NewService(cfg Config, logger *slog.Logger, opts ...Option) *Service {
	if cfg.Binary == "" {
		cfg.Binary = "libreoffice"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = config.DefaultConversionTimeout
	}
	s := &Service{
		cfg:    cfg,
		runner: NewExecRunner(),
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Convert saves the upload into a fresh workspace, runs the converter and
// returns its single output, or a zip of all outputs when there are several.
//
// The converted/ directory decides success, not the exit status: LibreOffice
// exits non-zero after successful conversions and zero after failed ones.
// On error the workspace is already cleaned up; on success cleanup happens
// when the returned Result is closed.
func (s *Service) Convert(ctx context.Context, req *models.ConversionRequest) (_ *models.Result, err error) {
	if req == nil || req.Content == nil {
		return nil, &domain.ValidationError{Message: "no file provided"}
	}
	if req.Format.Name == "" {
		return nil, &domain.ValidationError{Message: "no format provided"}
	}

	start := time.Now()
	filename := SanitizeFilename(req.Filename)
	logger := s.logger.With(
		"source", req.Filename,
		"format", req.Format.String(),
	)

	ws, err := newWorkspace(s.cfg.TempDir, s.now())
	if ws != nil {
		defer func() {
			if err != nil {
				s.release(ws, logger)
			}
		}()
	}
	if err != nil {
		logger.Error("failed to create workspace", "error", err)
		return nil, domain.NewInternalError("create workspace", err)
	}
	logger = logger.With("workspace", ws.root)

	source, err := ws.saveSource(filename, req.Content)
	if err != nil {
		logger.Error("failed to save upload", "error", err)
		return nil, domain.NewInternalError("save upload", err)
	}

	out, err := s.run(ctx, ws, source, req.Format)
	if err != nil {
		logger.Error("converter did not complete", "error", err)
		return nil, err
	}

	files, err := ws.outputs()
	if err != nil {
		logger.Error("failed to list outputs", "error", err)
		return nil, domain.NewInternalError("list outputs", err)
	}

	var (
		resultPath string
		resultName string
		archive    bool
	)
	switch len(files) {
	case 0:
		logger.Warn("conversion failed",
			"stdout", string(out.Stdout),
			"stderr", string(out.Stderr),
			"exit_code", out.ExitCode,
		)
		if bytes.Contains(out.Stderr, []byte(noExportFilter)) {
			return nil, &domain.UnsupportedFormatError{Format: req.Format.String()}
		}
		return nil, &domain.ConversionError{Filename: filename, Format: req.Format.String()}
	case 1:
		resultPath = filepath.Join(ws.convertedDir, filepath.FromSlash(files[0]))
		resultName = filepath.Base(resultPath)
	default:
		resultName = bundleName(filename, req.Format)
		resultPath, err = bundleOutputs(ws, files, resultName)
		if err != nil {
			logger.Error("failed to bundle outputs", "error", err, "outputs", len(files))
			return nil, domain.NewInternalError("bundle outputs", err)
		}
		archive = true
	}

	result, err := s.open(resultPath, resultName, archive, ws, logger)
	if err != nil {
		logger.Error("failed to open result", "error", err)
		return nil, domain.NewInternalError("open result", err)
	}

	logger.Info("converted file",
		"result", resultName,
		"size", result.Size(),
		"outputs", len(files),
		"exit_code", out.ExitCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

// run invokes the converter under the configured timeout and classifies
// failures to start or finish. It does not look at the outputs.
func (s *Service) run(ctx context.Context, ws *workspace, source string, format models.TargetFormat) (*services.RunOutput, error) {
	runCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	out, err := s.runner.Run(runCtx, services.Invocation{
		Binary: s.cfg.Binary,
		Args:   s.args(ws, source, format),
		Dir:    ws.root,
	})
	if err == nil {
		return out, nil
	}

	switch {
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		return nil, &domain.TimeoutError{Format: format.String(), Timeout: s.cfg.Timeout}
	case ctx.Err() != nil:
		return nil, domain.NewInternalError("conversion canceled", ctx.Err())
	default:
		return nil, domain.NewInternalError("start converter", err)
	}
}

// args builds: [-env:UserInstallation=...] --headless --convert-to <fmt> --outdir <converted> <source>
func (s *Service) args(ws *workspace, source string, format models.TargetFormat) []string {
	var args []string
	if s.cfg.IsolateProfile {
		profile := url.URL{Scheme: "file", Path: filepath.ToSlash(filepath.Join(ws.root, "profile"))}
		args = append(args, "-env:UserInstallation="+profile.String())
	}
	return append(args,
		"--headless",
		"--convert-to", format.String(),
		"--outdir", ws.convertedDir,
		source,
	)
}

// open returns the result handle. With DeleteFiles the workspace goes away
// when the handle is closed, after the caller has finished reading.
func (s *Service) open(path, name string, archive bool, ws *workspace, logger *slog.Logger) (*models.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	var cleanup func() error
	if s.cfg.DeleteFiles {
		cleanup = func() error {
			if err := ws.remove(); err != nil {
				logger.Warn("failed to remove workspace", "error", err)
				return err
			}
			return nil
		}
	}
	return models.NewResult(f, name, info.Size(), archive, cleanup), nil
}

// release disposes of a workspace after a failed conversion.
func (s *Service) release(ws *workspace, logger *slog.Logger) {
	if !s.cfg.DeleteFiles {
		logger.Debug("workspace retained")
		return
	}
	if err := ws.remove(); err != nil {
		logger.Warn("failed to remove workspace", "error", err)
	}
}

// Probe runs "<binary> --version" and returns the first line it prints.
func (s *Service) Probe(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, config.ProbeTimeout)
	defer cancel()

	out, err := s.runner.Run(ctx, services.Invocation{
		Binary: s.cfg.Binary,
		Args:   []string{"--version"},
	})
	if err != nil {
		return "", fmt.Errorf("probe %s: %w", s.cfg.Binary, err)
	}
	if out.ExitCode != 0 {
		return "", fmt.Errorf("probe %s: exit status %d", s.cfg.Binary, out.ExitCode)
	}

	line, _ := bufio.NewReader(bytes.NewReader(out.Stdout)).ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		return "", fmt.Errorf("probe %s: no version output", s.cfg.Binary)
	}
	return line, nil
}

var _ services.Converter = (*Service)(nil)
