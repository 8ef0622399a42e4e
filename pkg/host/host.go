package host

import (
	"context"
	"encoding/json"

	"github.com/matzehuels/protocomposer/pkg/errors"
)

// Host supplies the environment facts, configuration and command execution
// capability an entry point needs.
type Host interface {
	Executor

	// Environment returns the facts about the target machine.
	Environment(ctx context.Context) (Environment, error)

	// ToolConfig returns the raw tool configuration. An empty result means
	// the user configured nothing.
	ToolConfig(ctx context.Context) (json.RawMessage, error)
}

// Static is a Host with fixed facts.
type Static struct {
	Env    *Environment
	Config json.RawMessage
	Runner Executor
}

// Environment returns the configured facts. A missing environment or one
// without an OS is reported as HOST_UNAVAILABLE.
func (s *Static) Environment(ctx context.Context) (Environment, error) {
	if s.Env == nil || s.Env.OS == "" {
		return Environment{}, errors.New(errors.ErrCodeHostUnavailable, "host environment not provided")
	}
	return *s.Env, nil
}

// ToolConfig returns the configured tool config.
func (s *Static) ToolConfig(ctx context.Context) (json.RawMessage, error) {
	return s.Config, nil
}

// Exec delegates to the configured runner. Without one the host cannot run
// commands and HOST_UNAVAILABLE is returned.
func (s *Static) Exec(ctx context.Context, in ExecCommandInput) (ExecCommandOutput, error) {
	if s.Runner == nil {
		return ExecCommandOutput{}, errors.New(errors.ErrCodeHostUnavailable, "host cannot execute commands")
	}
	out, err := s.Runner.Exec(ctx, in)
	if err != nil {
		return ExecCommandOutput{}, errors.Wrap(errors.ErrCodeHostUnavailable, err, "run %s", in.Command)
	}
	return out, nil
}

// Ensure Static implements Host.
var _ Host = (*Static)(nil)
