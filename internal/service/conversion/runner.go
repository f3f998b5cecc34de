package conversion

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"docconv/internal/domain/services"
)

// defaultWaitDelay bounds how long Run waits for the converter's output
// pipes after the process exits or is killed. Office suites fork helpers
// that can inherit the pipes and outlive the main process.
const defaultWaitDelay = 5 * time.Second

// ExecRunner runs the converter as a local subprocess.
type ExecRunner struct {
	WaitDelay time.Duration
}

// NewExecRunner creates a runner with the default wait delay.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{WaitDelay: defaultWaitDelay}
}

// Run starts the process, captures both streams and waits for it. The
// process group is killed when ctx ends.
func (r *ExecRunner) Run(ctx context.Context, inv services.Invocation) (*services.RunOutput, error) {
	cmd := exec.CommandContext(ctx, inv.Binary, inv.Args...)
	cmd.Dir = inv.Dir
	if len(inv.Env) > 0 {
		cmd.Env = append(os.Environ(), inv.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = r.WaitDelay
	killProcessGroup(cmd)

	start := time.Now()
	err := cmd.Run()

	out := &services.RunOutput{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Duration: time.Since(start),
	}
	if cmd.ProcessState != nil {
		out.ExitCode = cmd.ProcessState.ExitCode()
	}

	if err == nil {
		return out, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil && cmd.Process != nil {
		return out, ctxErr
	}

	var exitErr *exec.ExitError
	switch {
	case errors.As(err, &exitErr):
		out.ExitCode = exitErr.ExitCode()
		return out, nil
	case errors.Is(err, exec.ErrWaitDelay):
		// exited cleanly; a forked helper kept the pipes open
		return out, nil
	default:
		return out, fmt.Errorf("start %s: %w", inv.Binary, err)
	}
}

var _ services.CommandRunner = (*ExecRunner)(nil)
