package host

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/matzehuels/protocomposer/pkg/observability"
)

// ExecCommandInput describes a command the host should run.
type ExecCommandInput struct {
	Command    string            `json:"command"`
	Args       []string          `json:"args,omitempty"`
	Env        map[string]string `json:"env,omitempty"`
	WorkingDir string            `json:"working_dir,omitempty"`
}

// ExecCommandOutput is the result of a command that ran to completion.
type ExecCommandOutput struct {
	ExitCode int    `json:"exit_code"`
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
}

// Executor runs commands on behalf of the plugin.
//
// A command that starts and exits, whatever its exit code, is reported via
// ExecCommandOutput with a nil error. An error means the command could not
// be run at all.
type Executor interface {
	Exec(ctx context.Context, in ExecCommandInput) (ExecCommandOutput, error)
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, in ExecCommandInput) (ExecCommandOutput, error)

// Exec calls f.
func (f ExecutorFunc) Exec(ctx context.Context, in ExecCommandInput) (ExecCommandOutput, error) {
	return f(ctx, in)
}

// OSExecutor runs commands as child processes of the current process.
type OSExecutor struct{}

// Exec runs the command synchronously and captures its output.
func (OSExecutor) Exec(ctx context.Context, in ExecCommandInput) (ExecCommandOutput, error) {
	cmd := exec.CommandContext(ctx, in.Command, in.Args...)
	if in.WorkingDir != "" {
		cmd.Dir = in.WorkingDir
	}
	if len(in.Env) > 0 {
		cmd.Env = os.Environ()
		for k, v := range in.Env {
			cmd.Env = append(cmd.Env, k+"="+v)
		}
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	out := ExecCommandOutput{Stdout: stdout.String(), Stderr: stderr.String()}

	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			observability.Command().OnCommand(ctx, in.Command, in.Args, -1, time.Since(start), err)
			return ExecCommandOutput{}, fmt.Errorf("exec %s: %w", in.Command, err)
		}
		out.ExitCode = exitErr.ExitCode()
	}
	observability.Command().OnCommand(ctx, in.Command, in.Args, out.ExitCode, time.Since(start), nil)
	return out, nil
}
