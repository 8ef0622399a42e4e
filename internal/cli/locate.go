package cli

import (
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/protocomposer/pkg/pdk"
)

// locateCommand creates the command that shows executable locations.
func (c *CLI) locateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "locate",
		Short: "Show where Composer and its global packages are looked up",
		Args:  cobra.NoArgs,
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

			out, err := p.LocateExecutables(ctx, h, pdk.LocateExecutablesInput{})
			if err != nil {
				return err
			}

			names := make([]string, 0, len(out.Exes))
			for name := range out.Exes {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				exe := out.Exes[name]
				label := exe.ExePath
				if exe.Primary {
					label += StyleDim.Render(" (primary)")
				}
				printKeyValue(name, label)
			}
			printKeyValue("exes dirs", strings.Join(out.ExesDirs, ", "))
			printInfo("Global packages")
			for _, dir := range out.GlobalsLookupDirs {
				printFile(dir)
			}
			return nil
		},
	}
}
