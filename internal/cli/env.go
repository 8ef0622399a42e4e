package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/protocomposer/pkg/pdk"
)

// envCommand creates the command that prints shell profile lines.
func (c *CLI) envCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "Print the shell profile lines for Composer",
		Long: `Print the shell profile lines for Composer.

The output is POSIX shell and can be evaluated directly:

  eval "$(protocomposer env)"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			h, _, err := localHost(nil)
			if err != nil {
				return err
			}
			p, store, err := c.newPlugin(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			out, err := p.SyncShellProfile(ctx, h, pdk.SyncShellProfileInput{})
			if err != nil {
				return err
			}
			for _, line := range shellLines(out) {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
}

// shellLines renders a profile update as POSIX shell statements. Exports
// come first, in name order, followed by the PATH extension.
func shellLines(out pdk.SyncShellProfileOutput) []string {
	if out.SkipSync {
		return nil
	}

	names := make([]string, 0, len(out.ExportVars))
	for name := range out.ExportVars {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, 0, len(names)+1)
	for _, name := range names {
		lines = append(lines, fmt.Sprintf("export %s=%q", name, out.ExportVars[name]))
	}
	if len(out.ExtendPath) > 0 {
		lines = append(lines, fmt.Sprintf(`export PATH="%s:$PATH"`, strings.Join(out.ExtendPath, ":")))
	}
	return lines
}
