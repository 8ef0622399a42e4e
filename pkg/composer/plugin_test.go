package composer

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"testing"

	"github.com/matzehuels/protocomposer/pkg/errors"
	"github.com/matzehuels/protocomposer/pkg/host"
	"github.com/matzehuels/protocomposer/pkg/integrations"
	"github.com/matzehuels/protocomposer/pkg/pdk"
	"github.com/matzehuels/protocomposer/pkg/version"
)

var composerTags = []string{
	"1.10.27", "2.0.0-RC1", "2.0.0", "2.7.9", "2.8.0-beta1", "2.8.6",
}

func staticTags(tags ...string) TagSource {
	return TagSourceFunc(func(ctx context.Context, repoURL string, refresh bool) ([]string, error) {
		if repoURL != RepositoryURL {
			return nil, fmt.Errorf("unexpected repository %s", repoURL)
		}
		return tags, nil
	})
}

func newRegistry(t *testing.T, p *Plugin) *pdk.Registry {
	t.Helper()
	reg := pdk.NewRegistry()
	if err := p.Register(reg); err != nil {
		t.Fatalf("Register: %v", err)
	}
	return reg
}

func linuxHost(config string, exec host.Executor) *host.Static {
	return &host.Static{
		Env:    &host.Environment{OS: host.Linux, Arch: host.X64},
		Config: json.RawMessage(config),
		Runner: exec,
	}
}

func TestRegisterAllEntryPoints(t *testing.T) {
	reg := newRegistry(t, New(staticTags()))
	want := []string{
		"define_tool_config", "detect_version_files", "load_versions",
		"locate_executables", "native_install", "parse_version_file",
		"register_tool", "resolve_version", "sync_shell_profile",
	}
	if got := reg.Names(); !slices.Equal(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
	if err := New(staticTags()).Register(reg); err == nil {
		t.Error("registering twice should fail")
	}
}

func TestRegisterTool(t *testing.T) {
	out, err := New(staticTags()).RegisterTool(context.Background(), nil, pdk.RegisterToolInput{ID: "composer"})
	if err != nil {
		t.Fatalf("RegisterTool: %v", err)
	}
	if out.Name != "Composer" || out.Type != pdk.TypeDependencyManager {
		t.Errorf("metadata = %+v", out)
	}
	if !slices.Equal(out.Requires, []string{"php"}) {
		t.Errorf("Requires = %v, want [php]", out.Requires)
	}
	if out.PluginVersion != "" {
		t.Errorf("PluginVersion = %q, want empty for development builds", out.PluginVersion)
	}
}

func TestDetectAndParseVersionFiles(t *testing.T) {
	ctx := context.Background()
	reg := newRegistry(t, New(staticTags()))

	out, err := reg.Call(ctx, pdk.FuncDetectVersionFiles, nil, nil)
	if err != nil {
		t.Fatalf("detect_version_files: %v", err)
	}
	detect := out.(pdk.DetectVersionOutput)
	if !slices.Equal(detect.Files, []string{"composer.json"}) || !slices.Equal(detect.Ignore, []string{"vendor"}) {
		t.Errorf("detect = %+v", detect)
	}

	out, err = reg.Call(ctx, pdk.FuncParseVersionFile, nil,
		json.RawMessage(`{"content":"{\"require\":{\"php\":\"^8.2\"}}","file":"composer.json","path":"/work/composer.json"}`))
	if err != nil {
		t.Fatalf("parse_version_file: %v", err)
	}
	data, _ := json.Marshal(out)
	if string(data) != `{"version":null}` {
		t.Errorf("parse_version_file = %s, want {\"version\":null}", data)
	}
}

func TestDefineToolConfig(t *testing.T) {
	out, err := New(staticTags()).DefineToolConfig(context.Background(), nil, struct{}{})
	if err != nil {
		t.Fatalf("DefineToolConfig: %v", err)
	}
	if string(out.Schema) != ConfigSchema {
		t.Error("schema does not match ConfigSchema")
	}
}

func TestLoadVersions(t *testing.T) {
	tests := []struct {
		name   string
		config string
		want   []string
	}{
		{name: "stable", want: []string{"2.0.0", "2.7.9", "2.8.6"}},
		{
			name:   "pre-releases",
			config: `{"allow-pre-releases":true}`,
			want:   []string{"2.0.0-RC1", "2.0.0", "2.7.9", "2.8.0-beta1", "2.8.6"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := newRegistry(t, New(staticTags(composerTags...)))
			out, err := reg.Call(context.Background(), pdk.FuncLoadVersions, linuxHost(tt.config, nil), nil)
			if err != nil {
				t.Fatalf("load_versions: %v", err)
			}
			res := out.(pdk.LoadVersionsOutput)

			got := make([]string, len(res.Versions))
			for i, v := range res.Versions {
				got[i] = v.String()
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("versions = %v, want %v", got, tt.want)
			}
			if res.Latest == nil || res.Latest.String() != "2.8.6" {
				t.Errorf("latest = %v, want 2.8.6", res.Latest)
			}
			if alias, ok := res.Aliases["latest"]; !ok || alias.String() != "2.8.6" {
				t.Errorf("latest alias = %v", res.Aliases)
			}
		})
	}
}

func TestLoadVersionsNoStable(t *testing.T) {
	p := New(staticTags("1.10.27", "2.0.0-RC1"))
	out, err := p.LoadVersions(context.Background(), linuxHost("", nil), pdk.LoadVersionsInput{})
	if err != nil {
		t.Fatalf("LoadVersions: %v", err)
	}
	if len(out.Versions) != 0 || out.Latest != nil || len(out.Aliases) != 0 {
		t.Errorf("output = %+v, want empty", out)
	}
}

func TestLoadVersionsErrors(t *testing.T) {
	tests := []struct {
		name   string
		tags   TagSource
		config string
		want   errors.Code
	}{
		{
			name: "repository missing",
			tags: TagSourceFunc(func(context.Context, string, bool) ([]string, error) {
				return nil, integrations.ErrNotFound
			}),
			want: errors.ErrCodeNotFound,
		},
		{
			name: "network",
			tags: TagSourceFunc(func(context.Context, string, bool) ([]string, error) {
				return nil, fmt.Errorf("%w: connection reset", integrations.ErrNetwork)
			}),
			want: errors.ErrCodeNetwork,
		},
		{
			name: "deadline",
			tags: TagSourceFunc(func(context.Context, string, bool) ([]string, error) {
				return nil, context.DeadlineExceeded
			}),
			want: errors.ErrCodeTimeout,
		},
		{
			name: "malformed tag",
			tags: staticTags("2.8.6", "2.x"),
			want: errors.ErrCodeInvalidVersion,
		},
		{
			name:   "bad config",
			tags:   staticTags("2.8.6"),
			config: `{"allow-prereleases":true}`,
			want:   errors.ErrCodeInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.tags).LoadVersions(context.Background(), linuxHost(tt.config, nil), pdk.LoadVersionsInput{})
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %s", err, tt.want)
			}
		})
	}
}

func TestLoadVersionsPassesRefresh(t *testing.T) {
	var sawRefresh bool
	src := TagSourceFunc(func(ctx context.Context, repoURL string, refresh bool) ([]string, error) {
		sawRefresh = refresh
		return nil, nil
	})
	if _, err := New(src, WithRefresh(true)).LoadVersions(context.Background(), linuxHost("", nil), pdk.LoadVersionsInput{}); err != nil {
		t.Fatalf("LoadVersions: %v", err)
	}
	if !sawRefresh {
		t.Error("refresh was not passed to the tag source")
	}
}

func TestResolveVersionThroughRegistry(t *testing.T) {
	reg := newRegistry(t, New(staticTags()))
	tests := []struct {
		input string
		want  string
	}{
		{`{"initial":"lts"}`, `{"candidate":"latest"}`},
		{`{"initial":"stable"}`, `{"candidate":"latest"}`},
		{`{"initial":"2.8.6"}`, `{}`},
		{`{"initial":"latest"}`, `{}`},
	}
	for _, tt := range tests {
		out, err := reg.Call(context.Background(), pdk.FuncResolveVersion, nil, json.RawMessage(tt.input))
		if err != nil {
			t.Fatalf("resolve_version(%s): %v", tt.input, err)
		}
		data, _ := json.Marshal(out)
		if string(data) != tt.want {
			t.Errorf("resolve_version(%s) = %s, want %s", tt.input, data, tt.want)
		}
	}
}

func TestNativeInstall(t *testing.T) {
	rec := &recorder{}
	reg := newRegistry(t, New(staticTags()))
	input := json.RawMessage(`{
		"context": {"version": "2.8.6"},
		"install_dir": {"virtual": "/proto/tools/composer/2.8.6", "real": "/home/u/.proto/tools/composer/2.8.6"}
	}`)

	out, err := reg.Call(context.Background(), pdk.FuncNativeInstall, linuxHost("", rec), input)
	if err != nil {
		t.Fatalf("native_install: %v", err)
	}
	if res := out.(pdk.NativeInstallOutput); !res.Installed {
		t.Errorf("output = %+v, want installed", res)
	}
	if len(rec.calls) != 2 {
		t.Fatalf("got %d commands, want 2", len(rec.calls))
	}
	if got := rec.calls[0].Args[2]; got != "/home/u/.proto/tools/composer/2.8.6/composer" {
		t.Errorf("download target = %q, want the real install dir", got)
	}
}

func TestNativeInstallApostropheDirOnLinux(t *testing.T) {
	rec := &recorder{}
	dir := "/home/o'neil/.proto/tools/composer/2.8.6"
	out, err := New(staticTags()).NativeInstall(context.Background(), linuxHost("", rec), pdk.NativeInstallInput{
		Context:    pdk.PluginContext{Version: mustSpec(t, "2.8.6")},
		InstallDir: host.VirtualPath{Virtual: dir},
	})
	if err != nil {
		t.Fatalf("NativeInstall: %v", err)
	}
	if !out.Installed {
		t.Errorf("output = %+v, want installed", out)
	}
	if len(rec.calls) != 2 {
		t.Fatalf("got %d commands, want 2", len(rec.calls))
	}
	if got := rec.calls[1].Args[1]; got != dir+"/composer" {
		t.Errorf("chmod target = %q", got)
	}
}

func TestNativeInstallInstallRoot(t *testing.T) {
	p := New(staticTags(), WithInstallRoot("/srv/proto/tools"))
	tests := []struct {
		dir     string
		wantErr bool
	}{
		{"/srv/proto/tools/composer/2.8.6", false},
		{"/srv/proto/tools/../../../usr/local/bin", true},
		{"/etc/cron.hourly", true},
	}

	for _, tt := range tests {
		rec := &recorder{}
		_, err := p.NativeInstall(context.Background(), linuxHost("", rec), pdk.NativeInstallInput{
			Context:    pdk.PluginContext{Version: mustSpec(t, "2.8.6")},
			InstallDir: host.VirtualPath{Virtual: tt.dir},
		})
		if tt.wantErr {
			if !errors.Is(err, errors.ErrCodeInvalidPath) {
				t.Errorf("%s: err = %v, want INVALID_PATH", tt.dir, err)
			}
			if len(rec.calls) != 0 {
				t.Errorf("%s: ran %d commands, want none", tt.dir, len(rec.calls))
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: unexpected error %v", tt.dir, err)
		}
	}
}

func TestNativeInstallFailureIsOutput(t *testing.T) {
	rec := &recorder{results: []host.ExecCommandOutput{{ExitCode: 22, Stderr: "404"}}}
	out, err := New(staticTags()).NativeInstall(context.Background(), linuxHost("", rec), pdk.NativeInstallInput{
		Context:    pdk.PluginContext{Version: mustSpec(t, "9.9.9")},
		InstallDir: host.VirtualPath{Virtual: "/tools/composer/9.9.9"},
	})
	if err != nil {
		t.Fatalf("NativeInstall: %v", err)
	}
	if out.Installed || out.Error != "Failed to download composer.phar: 404" {
		t.Errorf("output = %+v", out)
	}
}

func TestNativeInstallErrors(t *testing.T) {
	valid := pdk.NativeInstallInput{
		Context:    pdk.PluginContext{Version: mustSpec(t, "2.8.6")},
		InstallDir: host.VirtualPath{Virtual: "/tools/composer/2.8.6"},
	}
	tests := []struct {
		name string
		host host.Host
		in   pdk.NativeInstallInput
		want errors.Code
	}{
		{name: "no environment", host: &host.Static{Runner: &recorder{}}, in: valid, want: errors.ErrCodeHostUnavailable},
		{name: "no executor", host: linuxHost("", nil), in: valid, want: errors.ErrCodeHostUnavailable},
		{
			name: "no version",
			host: linuxHost("", &recorder{}),
			in:   pdk.NativeInstallInput{InstallDir: valid.InstallDir},
			want: errors.ErrCodeInvalidInput,
		},
		{
			name: "no install dir",
			host: linuxHost("", &recorder{}),
			in:   pdk.NativeInstallInput{Context: valid.Context},
			want: errors.ErrCodeInvalidPath,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(staticTags()).NativeInstall(context.Background(), tt.host, tt.in)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %s", err, tt.want)
			}
		})
	}
}

func TestLocateExecutablesUsesConfig(t *testing.T) {
	h := &host.Static{
		Env:    &host.Environment{OS: host.Windows},
		Config: json.RawMessage(`{"composer-home":"C:/composer"}`),
	}
	out, err := New(staticTags()).LocateExecutables(context.Background(), h, pdk.LocateExecutablesInput{})
	if err != nil {
		t.Fatalf("LocateExecutables: %v", err)
	}
	if out.Exes["composer"].ExePath != "composer.bat" {
		t.Errorf("exe = %+v", out.Exes["composer"])
	}
	if len(out.GlobalsLookupDirs) != 3 || out.GlobalsLookupDirs[0] != "C:/composer/vendor/bin" {
		t.Errorf("GlobalsLookupDirs = %v", out.GlobalsLookupDirs)
	}
}

func TestEmptyComposerHomeIsUnset(t *testing.T) {
	p := New(staticTags())
	h := linuxHost(`{"composer-home":""}`, nil)

	loc, err := p.LocateExecutables(context.Background(), h, pdk.LocateExecutablesInput{})
	if err != nil {
		t.Fatalf("LocateExecutables: %v", err)
	}
	want := []string{"$HOME/.composer/vendor/bin", "$COMPOSER_HOME/vendor/bin"}
	if !slices.Equal(loc.GlobalsLookupDirs, want) {
		t.Errorf("GlobalsLookupDirs = %v, want %v", loc.GlobalsLookupDirs, want)
	}

	prof, err := p.SyncShellProfile(context.Background(), h, pdk.SyncShellProfileInput{})
	if err != nil {
		t.Fatalf("SyncShellProfile: %v", err)
	}
	if _, ok := prof.ExportVars["COMPOSER_HOME"]; ok {
		t.Errorf("ExportVars = %v, want no COMPOSER_HOME", prof.ExportVars)
	}
}

func TestSyncShellProfileThroughRegistry(t *testing.T) {
	reg := newRegistry(t, New(staticTags()))
	tests := []struct {
		config string
		want   string
	}{
		{"", `{"check_var":"PROTO_COMPOSER_VERSION","extend_path":["$HOME/.composer/vendor/bin"],"skip_sync":false}`},
		{
			`{"composer-home":"/opt/composer"}`,
			`{"check_var":"PROTO_COMPOSER_VERSION","export_vars":{"COMPOSER_HOME":"/opt/composer"},"extend_path":["$HOME/.composer/vendor/bin"],"skip_sync":false}`,
		},
	}
	for _, tt := range tests {
		out, err := reg.Call(context.Background(), pdk.FuncSyncShellProfile, linuxHost(tt.config, nil), nil)
		if err != nil {
			t.Fatalf("sync_shell_profile: %v", err)
		}
		data, _ := json.Marshal(out)
		if string(data) != tt.want {
			t.Errorf("sync_shell_profile = %s, want %s", data, tt.want)
		}
	}
}

func mustSpec(t *testing.T, raw string) *version.Spec {
	t.Helper()
	s, err := version.Parse(raw)
	if err != nil {
		t.Fatalf("Parse(%q): %v", raw, err)
	}
	return &s
}
