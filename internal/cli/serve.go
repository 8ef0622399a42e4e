package cli

import (
	"net"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/protocomposer/internal/server"
)

// defaultServeAddr keeps the server on the loopback interface unless told
// otherwise.
const defaultServeAddr = "127.0.0.1:8787"

// serveCommand creates the command that serves plugin calls over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var addr, root string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve plugin calls over HTTP",
		Long: `Serve plugin calls over HTTP.

Each entry point is available as POST /v1/functions/<name> and takes the same
envelope as "protocomposer call". Unlike the call command, the server never
guesses host facts: requests that need them must send a host object.

The server has no authentication and native_install writes executables to
the directory named in the request. It listens on 127.0.0.1 by default; use
--root to restrict installs to one directory tree when exposing it further.

Use --redis to share one tag cache between several servers.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if root != "" {
				abs, err := filepath.Abs(root)
				if err != nil {
					return err
				}
				c.installRoot = abs
			}
			if !isLoopback(addr) {
				c.Logger.Warn("serving on a non-loopback address without authentication", "addr", addr)
				if c.installRoot == "" {
					c.Logger.Warn("native_install may write to any directory; consider --root")
				}
			}

			reg, closeFn, err := c.newRegistry(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			srv := server.New(reg, server.WithLogger(c.Logger))
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultServeAddr, "listen address")
	cmd.Flags().StringVar(&root, "root", "", "only allow native_install below this directory")
	return cmd
}

// isLoopback reports whether addr binds only the loopback interface.
// An empty host (":8787") binds every interface.
func isLoopback(addr string) bool {
	h, _, err := net.SplitHostPort(addr)
	if err != nil || h == "" {
		return false
	}
	if h == "localhost" {
		return true
	}
	ip := net.ParseIP(h)
	return ip != nil && ip.IsLoopback()
}
