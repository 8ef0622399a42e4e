package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/matzehuels/protocomposer/internal/cli"
	perrors "github.com/matzehuels/protocomposer/pkg/errors"
)

// Exit statuses. Hosts treat 2 as a problem with what they sent rather than
// with the plugin.
const (
	exitOK          = 0
	exitFailure     = 1
	exitBadInput    = 2
	exitInterrupted = 130
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stderr)
	cancel()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stderr io.Writer) int {
	c := cli.New(stderr, cli.LogInfo)
	cli.RegisterHooks(c.Logger)

	root := c.RootCommand()
	root.SetArgs(args)
	root.SetErr(stderr)
	root.SilenceErrors = true

	err := root.ExecuteContext(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		if code := perrors.GetCode(err); code != "" {
			c.Logger.Error(perrors.UserMessage(err), "code", code)
		} else {
			c.Logger.Error(err.Error())
		}
	}
	return exitCode(err)
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, context.Canceled):
		return exitInterrupted
	}
	switch perrors.GetCode(err) {
	case perrors.ErrCodeInvalidInput, perrors.ErrCodeInvalidVersion,
		perrors.ErrCodeInvalidConfig, perrors.ErrCodeInvalidPath,
		perrors.ErrCodeUnknownFunction:
		return exitBadInput
	}
	return exitFailure
}
