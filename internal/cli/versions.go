package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/protocomposer/pkg/pdk"
	"github.com/matzehuels/protocomposer/pkg/version"
)

// versionsCommand creates the command that lists installable releases.
func (c *CLI) versionsCommand() *cobra.Command {
	var (
		pre   bool
		limit int
	)

	cmd := &cobra.Command{
		Use:   "versions",
		Short: "List installable Composer releases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			h, _, err := localHost(preReleaseOverride(pre))
			if err != nil {
				return err
			}
			p, store, err := c.newPlugin(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			prog := newProgress(loggerFromContext(ctx))
			sp := startSpinner(ctx, fmt.Sprintf("Listing Composer tags (%s)...", c.source))
			out, err := p.LoadVersions(ctx, h, pdk.LoadVersionsInput{})
			sp.stop()
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Loaded %d releases", len(out.Versions)))

			fmt.Println(renderVersions(out.Set(), limit))
			return nil
		},
	}

	cmd.Flags().BoolVar(&pre, "pre", false, "include rc, alpha and beta releases")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of releases to show (0 for all)")
	return cmd
}

// renderVersions draws the newest releases as a table.
func renderVersions(set version.Set, limit int) string {
	sorted := set.Sorted()
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}

	rows := make([][]string, 0, len(sorted))
	channels := make([]channel, 0, len(sorted))
	for _, v := range sorted {
		ch := channelOf(v, set.Latest)
		row := []string{v.String(), channelStable.label(), ""}
		switch ch {
		case channelLatest:
			row[2] = ch.label()
		case channelPreRelease:
			row[1] = ch.label()
		}
		rows = append(rows, row)
		channels = append(channels, ch)
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Version", "Channel", "Alias").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return channels[row].style().Padding(0, 1)
		})
	return t.Render()
}
