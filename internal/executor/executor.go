// Package executor runs generated assertion scripts through an external
// test framework and reports pass/fail.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

// defaultTimeoutSeconds bounds a single script execution when the
// configuration does not say otherwise.
const defaultTimeoutSeconds = 120

// Runner executes one assertion script. A nil error means the script's
// assertions passed; *ExitError means they failed; any other error is an
// infrastructure problem (missing interpreter, timeout).
type Runner interface {
	Run(ctx context.Context, scriptPath string) error
}

// ExitError reports a script that ran to completion and failed.
type ExitError struct {
	Code   int
	Output string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("script exited with code %d", e.Code)
}

// Options configures the pytest runner. Decoded from the config file's
// free-form executor map.
type Options struct {
	// Command is the test-framework binary. Defaults to "pytest".
	Command string `mapstructure:"command"`
	// Args are prepended before the script path.
	Args []string `mapstructure:"args"`
	// Timeout is the per-script limit in seconds.
	Timeout int `mapstructure:"timeout"`
}

// pytestRunner shells out to pytest (or a configured substitute) per script.
type pytestRunner struct {
	command string
	args    []string
	timeout time.Duration
}

// New builds a Runner from a free-form options map.
func New(params map[string]any) (Runner, error) {
	var opts Options
	if err := mapstructure.Decode(params, &opts); err != nil {
		return nil, fmt.Errorf("executor: decode options: %w", err)
	}
	return NewWithOptions(opts), nil
}

// NewWithOptions builds a Runner from explicit options.
func NewWithOptions(opts Options) Runner {
	command := opts.Command
	if command == "" {
		command = "pytest"
	}
	args := opts.Args
	if args == nil {
		args = []string{"--maxfail=1", "-q"}
	}
	timeout := time.Duration(opts.Timeout) * time.Second
	if timeout <= 0 {
		timeout = defaultTimeoutSeconds * time.Second
	}
	return &pytestRunner{command: command, args: args, timeout: timeout}
}

func (r *pytestRunner) Run(ctx context.Context, scriptPath string) error {
	timeoutCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	args := append(append([]string{}, r.args...), scriptPath)
	cmd := exec.CommandContext(timeoutCtx, r.command, args...)

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	err := cmd.Run()
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{Code: exitErr.ExitCode(), Output: output.String()}
	}
	return fmt.Errorf("executor: run %s: %w", scriptPath, err)
}
