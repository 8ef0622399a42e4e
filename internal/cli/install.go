package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/protocomposer/pkg/composer"
	"github.com/matzehuels/protocomposer/pkg/host"
	"github.com/matzehuels/protocomposer/pkg/pdk"
	"github.com/matzehuels/protocomposer/pkg/version"
)

// installOpts holds the flags of the install command.
type installOpts struct {
	dir  string // install directory (default ~/.proto/tools/composer/<version>)
	pick bool   // choose the release interactively
	pre  bool   // consider pre-releases
}

// installCommand creates the standalone install command.
func (c *CLI) installCommand() *cobra.Command {
	var opts installOpts

	cmd := &cobra.Command{
		Use:   "install [version]",
		Short: "Install a Composer release",
		Long: `Install a Composer release on this machine.

The version may be an exact release, a requirement such as "^2.7", or an
alias such as "latest" or "stable". Without one, the version pinned in the
nearest .prototools is used, and "latest" otherwise.

Examples:
  protocomposer install
  protocomposer install 2.8.6
  protocomposer install "^2.7" --dir ./bin
  protocomposer install --pick --pre`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInstall(cmd.Context(), opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.dir, "dir", "d", "", "install directory")
	cmd.Flags().BoolVar(&opts.pick, "pick", false, "choose the release interactively")
	cmd.Flags().BoolVar(&opts.pre, "pre", false, "include rc, alpha and beta releases")
	return cmd
}

func (c *CLI) runInstall(ctx context.Context, opts installOpts, args []string) error {
	logger := loggerFromContext(ctx)

	h, pt, err := localHost(preReleaseOverride(opts.pre))
	if err != nil {
		return err
	}
	p, store, err := c.newPlugin(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	sp := startSpinner(ctx, fmt.Sprintf("Listing Composer tags (%s)...", c.source))
	loaded, err := p.LoadVersions(ctx, h, pdk.LoadVersionsInput{})
	sp.stop()
	if err != nil {
		return err
	}
	set := loaded.Set()

	var target version.Spec
	if opts.pick {
		picked, err := pickVersion(set)
		if err != nil {
			return err
		}
		if picked == nil {
			printInfo("Nothing selected")
			return nil
		}
		target = *picked
	} else {
		req, err := installRequest(args, pt.Pin)
		if err != nil {
			return err
		}
		if target, err = resolveRequest(ctx, p, h, set, req); err != nil {
			return err
		}
		logger.Debug("resolved version", "request", req.String(), "version", target.String())
	}

	dir, err := installDir(opts.dir, target)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create install dir: %w", err)
	}

	sp = startSpinner(ctx, fmt.Sprintf("Downloading %s...", composer.DownloadURL(target.String())))
	out, err := p.NativeInstall(ctx, h, pdk.NativeInstallInput{
		Context:    pdk.PluginContext{Version: &target},
		InstallDir: host.VirtualPath{Virtual: dir},
	})
	if err != nil {
		sp.stop()
		return err
	}
	if err := sp.finishInstall(target.String(), out); err != nil {
		return err
	}
	printFile(filepath.Join(dir, composer.ExecutableName(h.Env.OS)))
	return nil
}

// installRequest picks the version request from the arguments, the
// .prototools pin or the latest alias, in that order.
func installRequest(args []string, pin *version.UnresolvedSpec) (version.UnresolvedSpec, error) {
	switch {
	case len(args) > 0:
		return version.ParseUnresolved(args[0])
	case pin != nil:
		return *pin, nil
	default:
		return version.NewAlias(version.LatestAlias), nil
	}
}

// resolveRequest lets the plugin rewrite the request, then resolves it
// against the loaded versions.
func resolveRequest(ctx context.Context, p *composer.Plugin, h host.Host, set version.Set, req version.UnresolvedSpec) (version.Spec, error) {
	res, err := p.ResolveVersion(ctx, h, pdk.ResolveVersionInput{Initial: req})
	if err != nil {
		return version.Spec{}, err
	}
	if res.Version != nil {
		return *res.Version, nil
	}
	if res.Candidate != nil {
		req = *res.Candidate
	}
	return set.Resolve(req)
}

// installDir returns dir, or the proto tools directory for v.
func installDir(dir string, v version.Spec) (string, error) {
	if dir != "" {
		return filepath.Abs(dir)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".proto", "tools", "composer", v.String()), nil
}

// pickVersion runs the interactive picker. A nil result means the user quit.
func pickVersion(set version.Set) (*version.Spec, error) {
	versions := set.Sorted()
	if len(versions) == 0 {
		return nil, errors.New("no versions to choose from")
	}
	final, err := tea.NewProgram(NewVersionListModel(versions, set.Latest)).Run()
	if err != nil {
		return nil, err
	}
	return final.(VersionListModel).Selected, nil
}
