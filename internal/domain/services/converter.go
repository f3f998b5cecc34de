package services

import (
	"context"
	"time"

	"docconv/internal/domain/models"
)

// Converter turns an uploaded document into the requested target format.
//
// Implementations return a *models.Result the caller must close, or one of the
// classified errors from the domain package. They never return both.
type Converter interface {
	Convert(ctx context.Context, req *models.ConversionRequest) (*models.Result, error)

	// Probe checks that the external converter can be started and returns
	// its version line.
	Probe(ctx context.Context) (string, error)
}

// Invocation describes one run of the external converter.
type Invocation struct {
	Binary string
	Args   []string
	Dir    string
	// Env entries are appended to the inherited environment.
	Env []string
}

// RunOutput is what the converter left on its standard streams.
type RunOutput struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	Duration time.Duration
}

// CommandRunner starts the external converter and waits for it.
//
// Run returns an error only when the process could not be started or was
// killed because ctx ended. A non-zero exit status is reported in ExitCode.
type CommandRunner interface {
	Run(ctx context.Context, inv Invocation) (*RunOutput, error)
}
