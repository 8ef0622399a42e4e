// Package pdk defines the entry-point contract between a version-manager
// host and a tool plugin: the function names, their JSON inputs and outputs,
// the request envelope and a registry that dispatches calls by name.
package pdk

import (
	"encoding/json"

	"github.com/matzehuels/protocomposer/pkg/host"
	"github.com/matzehuels/protocomposer/pkg/version"
)

// Entry point names as the host calls them.
const (
	FuncRegisterTool       = "register_tool"
	FuncDefineToolConfig   = "define_tool_config"
	FuncDetectVersionFiles = "detect_version_files"
	FuncParseVersionFile   = "parse_version_file"
	FuncLoadVersions       = "load_versions"
	FuncResolveVersion     = "resolve_version"
	FuncNativeInstall      = "native_install"
	FuncLocateExecutables  = "locate_executables"
	FuncSyncShellProfile   = "sync_shell_profile"
)

// PluginType classifies the tool a plugin manages.
type PluginType string

const (
	TypeLanguage          PluginType = "language"
	TypeDependencyManager PluginType = "dependency-manager"
	TypeCommandLine       PluginType = "command-line"
)

// PluginContext carries the per-call facts about the tool being operated on.
type PluginContext struct {
	ToolDir host.VirtualPath `json:"tool_dir"`
	TempDir host.VirtualPath `json:"temp_dir"`
	Version *version.Spec    `json:"version,omitempty"`
}

// RegisterToolInput is the input of register_tool.
type RegisterToolInput struct {
	ID string `json:"id"`
}

// RegisterToolOutput describes the tool to the host.
type RegisterToolOutput struct {
	Name                string     `json:"name"`
	Type                PluginType `json:"type"`
	MinimumProtoVersion string     `json:"minimum_proto_version,omitempty"`
	PluginVersion       string     `json:"plugin_version,omitempty"`
	Requires            []string   `json:"requires,omitempty"`
}

// DefineToolConfigOutput carries the JSON schema of the tool configuration.
type DefineToolConfigOutput struct {
	Schema json.RawMessage `json:"schema"`
}

// DetectVersionOutput lists the files that pin a tool version in a project.
type DetectVersionOutput struct {
	Files  []string `json:"files"`
	Ignore []string `json:"ignore"`
}

// ParseVersionFileInput is a detected file handed back for parsing.
type ParseVersionFileInput struct {
	Content string           `json:"content"`
	File    string           `json:"file"`
	Path    host.VirtualPath `json:"path"`
}

// ParseVersionFileOutput holds the version found in a file, if any.
type ParseVersionFileOutput struct {
	Version *version.UnresolvedSpec `json:"version"`
}

// LoadVersionsInput is the input of load_versions.
type LoadVersionsInput struct {
	Context PluginContext           `json:"context"`
	Initial *version.UnresolvedSpec `json:"initial,omitempty"`
}

// LoadVersionsOutput lists installable versions and aliases.
type LoadVersionsOutput struct {
	Latest   *version.UnresolvedSpec           `json:"latest,omitempty"`
	Aliases  map[string]version.UnresolvedSpec `json:"aliases"`
	Versions []version.Spec                    `json:"versions"`
}

// LoadVersionsFrom parses tags into a LoadVersionsOutput, keeping their
// order. The highest stable version becomes latest.
func LoadVersionsFrom(tags []string) (LoadVersionsOutput, error) {
	set, err := version.Collect(tags)
	if err != nil {
		return LoadVersionsOutput{}, err
	}
	out := LoadVersionsOutput{
		Aliases:  set.Aliases,
		Versions: set.Versions,
	}
	if set.Latest != nil {
		latest := set.Latest.ToUnresolved()
		out.Latest = &latest
	}
	return out, nil
}

// Set converts the output back into a resolvable version set.
func (o LoadVersionsOutput) Set() version.Set {
	set := version.Set{Versions: o.Versions, Aliases: o.Aliases}
	if o.Latest != nil {
		if latest, err := version.Parse(o.Latest.String()); err == nil {
			set.Latest = &latest
		}
	}
	return set
}

// ResolveVersionInput is the input of resolve_version.
type ResolveVersionInput struct {
	Context PluginContext          `json:"context"`
	Initial version.UnresolvedSpec `json:"initial"`
}

// ResolveVersionOutput carries either a replacement request (Candidate) or
// a final answer (Version). Both empty means the plugin has no opinion.
type ResolveVersionOutput struct {
	Candidate *version.UnresolvedSpec `json:"candidate,omitempty"`
	Version   *version.Spec           `json:"version,omitempty"`
}

// NativeInstallInput is the input of native_install.
type NativeInstallInput struct {
	Context    PluginContext    `json:"context"`
	InstallDir host.VirtualPath `json:"install_dir"`
}

// NativeInstallOutput reports whether the tool is now installed. Error holds
// a human-readable reason when it is not.
type NativeInstallOutput struct {
	Installed bool   `json:"installed"`
	Error     string `json:"error,omitempty"`
}

// LocateExecutablesInput is the input of locate_executables.
type LocateExecutablesInput struct {
	Context    PluginContext    `json:"context"`
	InstallDir host.VirtualPath `json:"install_dir"`
}

// ExecutableConfig describes one executable inside the install directory.
type ExecutableConfig struct {
	ExePath string `json:"exe_path,omitempty"`
	Primary bool   `json:"primary,omitempty"`
	NoBin   bool   `json:"no_bin,omitempty"`
	NoShim  bool   `json:"no_shim,omitempty"`
}

// NewPrimaryExecutable returns the config of the tool's primary executable.
func NewPrimaryExecutable(exePath string) ExecutableConfig {
	return ExecutableConfig{ExePath: exePath, Primary: true}
}

// LocateExecutablesOutput tells the host where executables and globally
// installed packages live.
type LocateExecutablesOutput struct {
	Exes              map[string]ExecutableConfig `json:"exes"`
	ExesDirs          []string                    `json:"exes_dirs"`
	GlobalsLookupDirs []string                    `json:"globals_lookup_dirs"`
}

// SyncShellProfileInput is the input of sync_shell_profile.
type SyncShellProfileInput struct {
	Context         PluginContext `json:"context"`
	PassthroughArgs []string      `json:"passthrough_args,omitempty"`
}

// SyncShellProfileOutput tells the host how to update the user's shell
// profile. ExportVars is omitted entirely when there is nothing to export.
type SyncShellProfileOutput struct {
	CheckVar   string            `json:"check_var"`
	ExportVars map[string]string `json:"export_vars,omitempty"`
	ExtendPath []string          `json:"extend_path,omitempty"`
	SkipSync   bool              `json:"skip_sync"`
}
