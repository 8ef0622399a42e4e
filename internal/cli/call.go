package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/protocomposer/pkg/config"
	"github.com/matzehuels/protocomposer/pkg/host"
	"github.com/matzehuels/protocomposer/pkg/pdk"
)

// callCommand creates the command that answers a single plugin call.
func (c *CLI) callCommand() *cobra.Command {
	var inputPath string

	cmd := &cobra.Command{
		Use:   "call <function>",
		Short: "Run one plugin entry point",
		Long: `Run one plugin entry point and print its JSON output.

The request envelope is read from stdin (or --input) as JSON:

  {"host": {"os": "linux", "arch": "x64"}, "config": {...}, "input": {...}}

Every field is optional. A missing host is filled in from the current machine
and a missing config from the nearest .prototools file.

Examples:
  echo '{}' | protocomposer call load_versions
  echo '{"input":{"initial":"stable"}}' | protocomposer call resolve_version`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var in io.Reader = cmd.InOrStdin()
			if inputPath != "" && inputPath != "-" {
				f, err := os.Open(inputPath)
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			call, err := pdk.DecodeCall(in)
			if err != nil {
				return err
			}
			if err := fillCall(&call); err != nil {
				return err
			}

			reg, closeFn, err := c.newRegistry(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			return runCall(ctx, reg, args[0], call, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "-", "file holding the request envelope")
	return cmd
}

// newRegistry registers a fully wired plugin. closeFn releases its cache.
func (c *CLI) newRegistry(ctx context.Context) (*pdk.Registry, func(), error) {
	p, store, err := c.newPlugin(ctx)
	if err != nil {
		return nil, nil, err
	}
	reg := pdk.NewRegistry()
	if err := p.Register(reg); err != nil {
		store.Close()
		return nil, nil, err
	}
	return reg, func() { store.Close() }, nil
}

// fillCall completes an envelope from the local machine.
func fillCall(call *pdk.Call) error {
	if call.Host == nil {
		env := host.Detect()
		call.Host = &env
	}
	if len(call.Config) == 0 {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		pt, err := config.Discover(wd)
		if err != nil {
			return err
		}
		if call.Config, err = pt.ToolConfig(); err != nil {
			return err
		}
	}
	return nil
}

// runCall dispatches name and writes the output, or the error body, as JSON
// to w. The call error is returned so the process exits non-zero.
func runCall(ctx context.Context, reg *pdk.Registry, name string, call pdk.Call, w io.Writer) error {
	if call.Function != "" && call.Function != name {
		return fmt.Errorf("envelope names %q but %q was requested", call.Function, name)
	}

	h := &host.Static{Env: call.Host, Config: call.Config, Runner: host.OSExecutor{}}
	out, callErr := reg.Call(ctx, name, h, call.Input)

	var body any = out
	if callErr != nil {
		body = pdk.NewErrorBody(callErr)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(body); err != nil {
		return err
	}
	return callErr
}
