package composer

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/protocomposer/pkg/buildinfo"
	perrors "github.com/matzehuels/protocomposer/pkg/errors"
	"github.com/matzehuels/protocomposer/pkg/host"
	"github.com/matzehuels/protocomposer/pkg/integrations"
	"github.com/matzehuels/protocomposer/pkg/observability"
	"github.com/matzehuels/protocomposer/pkg/pdk"
)

// Tool metadata reported by register_tool.
const (
	ToolName            = "Composer"
	MinimumProtoVersion = "0.46.0"

	// RepositoryURL is the git repository whose tags are Composer releases.
	RepositoryURL = "https://github.com/composer/composer"
)

// TagSource lists the tags of a remote repository in source order.
type TagSource interface {
	ListTags(ctx context.Context, repoURL string, refresh bool) ([]string, error)
}

// TagSourceFunc adapts a function to the TagSource interface.
type TagSourceFunc func(ctx context.Context, repoURL string, refresh bool) ([]string, error)

// ListTags calls f.
func (f TagSourceFunc) ListTags(ctx context.Context, repoURL string, refresh bool) ([]string, error) {
	return f(ctx, repoURL, refresh)
}

// Plugin implements the Composer entry points. It holds no per-call state
// and can serve concurrent calls.
type Plugin struct {
	tags    TagSource
	logger  *log.Logger
	refresh bool
	root    string
}

// Option configures a Plugin.
type Option func(*Plugin)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *log.Logger) Option {
	return func(p *Plugin) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithRefresh makes load_versions bypass cached tag listings.
func WithRefresh(refresh bool) Option {
	return func(p *Plugin) { p.refresh = refresh }
}

// WithInstallRoot confines native_install to directories below root.
// An empty root allows any directory.
func WithInstallRoot(root string) Option {
	return func(p *Plugin) { p.root = root }
}

// New creates a Plugin that lists releases through tags.
func New(tags TagSource, opts ...Option) *Plugin {
	p := &Plugin{
		tags:   tags,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Register adds every entry point to reg.
func (p *Plugin) Register(reg *pdk.Registry) error {
	handlers := map[string]pdk.Handler{
		pdk.FuncRegisterTool:       pdk.Handle(p.RegisterTool),
		pdk.FuncDefineToolConfig:   pdk.Handle(p.DefineToolConfig),
		pdk.FuncDetectVersionFiles: pdk.Handle(p.DetectVersionFiles),
		pdk.FuncParseVersionFile:   pdk.Handle(p.ParseVersionFile),
		pdk.FuncLoadVersions:       pdk.Handle(p.LoadVersions),
		pdk.FuncResolveVersion:     pdk.Handle(p.ResolveVersion),
		pdk.FuncNativeInstall:      pdk.Handle(p.NativeInstall),
		pdk.FuncLocateExecutables:  pdk.Handle(p.LocateExecutables),
		pdk.FuncSyncShellProfile:   pdk.Handle(p.SyncShellProfile),
	}
	for name, h := range handlers {
		if err := reg.Register(name, h); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Metadata
// =============================================================================

// RegisterTool describes Composer to the host.
func (p *Plugin) RegisterTool(ctx context.Context, h host.Host, in pdk.RegisterToolInput) (pdk.RegisterToolOutput, error) {
	return pdk.RegisterToolOutput{
		Name:                ToolName,
		Type:                pdk.TypeDependencyManager,
		MinimumProtoVersion: MinimumProtoVersion,
		PluginVersion:       pluginVersion(),
		Requires:            []string{"php"},
	}, nil
}

// pluginVersion reports the build version when it is a semantic version.
// Development builds report none.
func pluginVersion() string {
	v, err := semver.NewVersion(strings.TrimPrefix(buildinfo.Version, "v"))
	if err != nil {
		return ""
	}
	return v.String()
}

// DefineToolConfig returns the configuration schema.
func (p *Plugin) DefineToolConfig(ctx context.Context, h host.Host, _ struct{}) (pdk.DefineToolConfigOutput, error) {
	return pdk.DefineToolConfigOutput{Schema: []byte(ConfigSchema)}, nil
}

// DetectVersionFiles names the project files that indicate Composer is used.
func (p *Plugin) DetectVersionFiles(ctx context.Context, h host.Host, _ struct{}) (pdk.DetectVersionOutput, error) {
	return pdk.DetectVersionOutput{
		Files:  []string{"composer.json"},
		Ignore: []string{"vendor"},
	}, nil
}

// ParseVersionFile never extracts a version: composer.json does not pin the
// Composer release that manages it.
func (p *Plugin) ParseVersionFile(ctx context.Context, h host.Host, in pdk.ParseVersionFileInput) (pdk.ParseVersionFileOutput, error) {
	return pdk.ParseVersionFileOutput{}, nil
}

// =============================================================================
// Versions
// =============================================================================

// LoadVersions lists the Composer releases the user may install.
func (p *Plugin) LoadVersions(ctx context.Context, h host.Host, in pdk.LoadVersionsInput) (pdk.LoadVersionsOutput, error) {
	cfg, err := p.config(ctx, h)
	if err != nil {
		return pdk.LoadVersionsOutput{}, err
	}

	tags, err := p.tags.ListTags(ctx, RepositoryURL, p.refresh)
	if err != nil {
		return pdk.LoadVersionsOutput{}, classifyTagError(err)
	}
	filtered := FilterTags(tags, Policy{AllowPreReleases: cfg.AllowPreReleases})
	p.logger.Debug("loaded composer tags",
		"tags", len(tags),
		"versions", len(filtered),
		"pre_releases", cfg.AllowPreReleases)

	return pdk.LoadVersionsFrom(filtered)
}

func classifyTagError(err error) error {
	switch {
	case perrors.GetCode(err) != "":
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return perrors.Wrap(perrors.ErrCodeTimeout, err, "list composer tags")
	case errors.Is(err, integrations.ErrNotFound):
		return perrors.Wrap(perrors.ErrCodeNotFound, err, "list composer tags")
	default:
		return perrors.Wrap(perrors.ErrCodeNetwork, err, "list composer tags")
	}
}

// ResolveVersion maps stable aliases onto latest.
func (p *Plugin) ResolveVersion(ctx context.Context, h host.Host, in pdk.ResolveVersionInput) (pdk.ResolveVersionOutput, error) {
	return pdk.ResolveVersionOutput{Candidate: ResolveAlias(in.Initial)}, nil
}

// =============================================================================
// Installation
// =============================================================================

// NativeInstall downloads the requested release into the install directory.
func (p *Plugin) NativeInstall(ctx context.Context, h host.Host, in pdk.NativeInstallInput) (pdk.NativeInstallOutput, error) {
	env, err := h.Environment(ctx)
	if err != nil {
		return pdk.NativeInstallOutput{}, err
	}
	if in.Context.Version == nil {
		return pdk.NativeInstallOutput{}, perrors.New(perrors.ErrCodeInvalidInput, "no version to install")
	}
	dir := in.InstallDir.RealPath()
	if err := perrors.ValidateInstallDir(dir); err != nil {
		return pdk.NativeInstallOutput{}, err
	}
	if p.root != "" {
		if err := perrors.ValidatePathWithin(p.root, dir); err != nil {
			return pdk.NativeInstallOutput{}, err
		}
	}

	ver := in.Context.Version.String()
	hooks := observability.Install()
	hooks.OnInstallStart(ctx, ver, string(env.OS))
	start := time.Now()

	out, err := InstallerFor(env.OS, h).Install(ctx, InstallRequest{Version: ver, Dir: dir})
	hooks.OnInstallComplete(ctx, ver, string(env.OS), out.Installed, out.Error, time.Since(start), err)
	if err != nil {
		return pdk.NativeInstallOutput{}, err
	}

	if out.Installed {
		p.logger.Debug("installed composer", "version", ver, "dir", dir, "os", env.OS)
	} else {
		p.logger.Warn("composer install failed", "version", ver, "reason", out.Error)
	}
	return out, nil
}

// LocateExecutables reports the executable name and global package dirs.
func (p *Plugin) LocateExecutables(ctx context.Context, h host.Host, in pdk.LocateExecutablesInput) (pdk.LocateExecutablesOutput, error) {
	env, err := h.Environment(ctx)
	if err != nil {
		return pdk.LocateExecutablesOutput{}, err
	}
	cfg, err := p.config(ctx, h)
	if err != nil {
		return pdk.LocateExecutablesOutput{}, err
	}
	return Locate(env.OS, cfg.ComposerHome), nil
}

// SyncShellProfile reports the shell profile changes for Composer.
func (p *Plugin) SyncShellProfile(ctx context.Context, h host.Host, in pdk.SyncShellProfileInput) (pdk.SyncShellProfileOutput, error) {
	cfg, err := p.config(ctx, h)
	if err != nil {
		return pdk.SyncShellProfileOutput{}, err
	}
	return SyncProfile(cfg.ComposerHome), nil
}

func (p *Plugin) config(ctx context.Context, h host.Host) (Config, error) {
	raw, err := h.ToolConfig(ctx)
	if err != nil {
		if perrors.GetCode(err) != "" {
			return Config{}, err
		}
		return Config{}, perrors.Wrap(perrors.ErrCodeHostUnavailable, err, "read tool config")
	}
	return DecodeConfig(raw)
}
