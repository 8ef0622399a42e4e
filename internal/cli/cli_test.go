package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"slices"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/protocomposer/pkg/cache"
	"github.com/matzehuels/protocomposer/pkg/composer"
	"github.com/matzehuels/protocomposer/pkg/host"
	"github.com/matzehuels/protocomposer/pkg/integrations/github"
	"github.com/matzehuels/protocomposer/pkg/integrations/gitremote"
	"github.com/matzehuels/protocomposer/pkg/observability"
	"github.com/matzehuels/protocomposer/pkg/pdk"
	"github.com/matzehuels/protocomposer/pkg/version"
)

func TestNewTagSource(t *testing.T) {
	store := cache.NewNullCache()

	src, err := newTagSource("git", store, nil)
	if err != nil {
		t.Fatalf("git: %v", err)
	}
	if _, ok := src.(*gitremote.Source); !ok {
		t.Errorf("git source = %T", src)
	}

	src, err = newTagSource("github", store, nil)
	if err != nil {
		t.Fatalf("github: %v", err)
	}
	if _, ok := src.(*github.Client); !ok {
		t.Errorf("github source = %T", src)
	}

	if _, err := newTagSource("svn", store, nil); err == nil {
		t.Error("unknown source should fail")
	}
}

func TestKeyerScopedForRedis(t *testing.T) {
	c := &CLI{}
	if _, ok := c.keyer().(cache.DefaultKeyer); !ok {
		t.Errorf("keyer() = %T, want DefaultKeyer", c.keyer())
	}

	c.redisURL = "redis://localhost:6379/0"
	k := c.keyer()
	if got := k.TagsKey("git", "https://github.com/composer/composer"); !strings.HasPrefix(got, appName+":tags:git:") {
		t.Errorf("TagsKey() = %q, want %s: prefix", got, appName)
	}
}

func TestNewCacheDisabled(t *testing.T) {
	c := &CLI{Logger: log.New(&bytes.Buffer{}), noCache: true}
	store, err := c.newCache(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := store.(*cache.NullCache); !ok {
		t.Errorf("cache = %T, want *cache.NullCache", store)
	}
}

func TestNewCacheFile(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	c := &CLI{Logger: log.New(&bytes.Buffer{})}
	store, err := c.newCache(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	if _, ok := store.(*cache.FileCache); !ok {
		t.Errorf("cache = %T, want *cache.FileCache", store)
	}
}

func TestShellLines(t *testing.T) {
	tests := []struct {
		name string
		out  pdk.SyncShellProfileOutput
		want []string
	}{
		{
			name: "path only",
			out:  composer.SyncProfile(""),
			want: []string{`export PATH="$HOME/.composer/vendor/bin:$PATH"`},
		},
		{
			name: "with home",
			out:  composer.SyncProfile("/opt/composer"),
			want: []string{
				`export COMPOSER_HOME="/opt/composer"`,
				`export PATH="$HOME/.composer/vendor/bin:$PATH"`,
			},
		},
		{
			name: "skipped",
			out:  pdk.SyncShellProfileOutput{SkipSync: true, ExtendPath: []string{"/x"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shellLines(tt.out); !slices.Equal(got, tt.want) {
				t.Errorf("shellLines() = %q, want %q", got, tt.want)
			}
		})
	}
}

func loadedSet(t *testing.T, tags ...string) version.Set {
	t.Helper()
	out, err := pdk.LoadVersionsFrom(tags)
	if err != nil {
		t.Fatal(err)
	}
	return out.Set()
}

func TestRenderVersions(t *testing.T) {
	set := loadedSet(t, "2.0.0", "2.8.0-RC1", "2.7.9", "2.8.6")

	out := renderVersions(set, 0)
	for _, want := range []string{"2.8.6", "2.8.0-RC1", "2.7.9", "2.0.0", "latest", "pre-release"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "2.8.6") > strings.Index(out, "2.7.9") {
		t.Error("versions should be listed newest first")
	}

	limited := renderVersions(set, 2)
	if strings.Contains(limited, "2.0.0") {
		t.Errorf("limit 2 should hide 2.0.0:\n%s", limited)
	}
}

func TestInstallRequest(t *testing.T) {
	pin, err := version.ParseUnresolved("^2.7")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
		pin  *version.UnresolvedSpec
		want string
	}{
		{"argument wins", []string{"2.8.6"}, &pin, "2.8.6"},
		{"pin", nil, &pin, "^2.7"},
		{"default", nil, nil, "latest"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := installRequest(tt.args, tt.pin)
			if err != nil {
				t.Fatal(err)
			}
			if got.String() != tt.want {
				t.Errorf("installRequest() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveRequest(t *testing.T) {
	set := loadedSet(t, "2.0.0", "2.7.9", "2.8.0-RC1", "2.8.6")
	p := composer.New(composer.TagSourceFunc(func(context.Context, string, bool) ([]string, error) {
		return nil, nil
	}))

	tests := []struct {
		req  string
		want string
	}{
		{"stable", "2.8.6"},
		{"lts", "2.8.6"},
		{"latest", "2.8.6"},
		{"~2.7", "2.7.9"},
		{"2.0.0", "2.0.0"},
	}
	for _, tt := range tests {
		req, err := version.ParseUnresolved(tt.req)
		if err != nil {
			t.Fatal(err)
		}
		got, err := resolveRequest(context.Background(), p, nil, set, req)
		if err != nil {
			t.Fatalf("resolveRequest(%q): %v", tt.req, err)
		}
		if got.String() != tt.want {
			t.Errorf("resolveRequest(%q) = %s, want %s", tt.req, got, tt.want)
		}
	}
}

func TestRunCall(t *testing.T) {
	reg := pdk.NewRegistry()
	p := composer.New(composer.TagSourceFunc(func(context.Context, string, bool) ([]string, error) {
		return []string{"2.8.6"}, nil
	}))
	if err := p.Register(reg); err != nil {
		t.Fatal(err)
	}
	env := host.Environment{OS: host.Linux}

	var buf bytes.Buffer
	call := pdk.Call{Host: &env, Input: json.RawMessage(`{"initial":"stable"}`)}
	if err := runCall(context.Background(), reg, "resolve_version", call, &buf); err != nil {
		t.Fatalf("runCall: %v", err)
	}
	var out map[string]string
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out["candidate"] != "latest" {
		t.Errorf("output = %s", buf.String())
	}

	buf.Reset()
	err := runCall(context.Background(), reg, "uninstall", pdk.Call{Host: &env}, &buf)
	if err == nil {
		t.Fatal("unknown function should fail")
	}
	var body pdk.ErrorBody
	if err := json.Unmarshal(buf.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Code != "UNKNOWN_FUNCTION" {
		t.Errorf("error body = %s", buf.String())
	}

	if err := runCall(context.Background(), reg, "load_versions", pdk.Call{Function: "resolve_version"}, &buf); err == nil {
		t.Error("mismatched function should fail")
	}
}

func TestFillCall(t *testing.T) {
	t.Chdir(t.TempDir())

	var call pdk.Call
	if err := fillCall(&call); err != nil {
		t.Fatal(err)
	}
	if call.Host == nil || call.Host.OS == "" {
		t.Errorf("host = %+v, want detected", call.Host)
	}

	given := host.Environment{OS: host.Windows}
	call = pdk.Call{Host: &given, Config: json.RawMessage(`{}`)}
	if err := fillCall(&call); err != nil {
		t.Fatal(err)
	}
	if call.Host.OS != host.Windows || string(call.Config) != "{}" {
		t.Errorf("fillCall overwrote given fields: %+v", call)
	}
}

func TestVersionListModel(t *testing.T) {
	set := loadedSet(t, "2.7.9", "2.8.6", "2.0.0")
	m := NewVersionListModel(set.Sorted(), set.Latest)

	var model tea.Model = m
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyDown})
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyDown})
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyDown})
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyUp})

	if got := model.(VersionListModel).Cursor; got != 1 {
		t.Errorf("cursor = %d, want 1", got)
	}

	model, cmd := model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Error("enter should quit")
	}
	selected := model.(VersionListModel).Selected
	if selected == nil || selected.String() != "2.7.9" {
		t.Errorf("selected = %v, want 2.7.9", selected)
	}

	if view := m.View(); !strings.Contains(view, "2.8.6") || !strings.Contains(view, "latest") {
		t.Errorf("view missing versions:\n%s", view)
	}
}

func TestVersionListModelQuit(t *testing.T) {
	m := NewVersionListModel(loadedSet(t, "2.8.6").Sorted(), nil)
	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Error("q should quit")
	}
	if model.(VersionListModel).Selected != nil {
		t.Error("quitting should not select")
	}
}

func TestRegisterHooks(t *testing.T) {
	defer observability.Reset()

	var buf bytes.Buffer
	logger := newLogger(&buf, log.DebugLevel)
	RegisterHooks(logger)

	observability.Install().OnInstallStart(context.Background(), "2.8.6", "linux")
	observability.Cache().OnCacheHit(context.Background(), "tags")
	observability.Command().OnCommand(context.Background(), "curl", []string{"-sSL"}, 0, 0, nil)

	out := buf.String()
	for _, want := range []string{"install started", "cache hit", "curl -sSL"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestIsLoopback(t *testing.T) {
	tests := []struct {
		addr string
		want bool
	}{
		{defaultServeAddr, true},
		{"localhost:8787", true},
		{"[::1]:8787", true},
		{":8787", false},
		{"0.0.0.0:8787", false},
		{"192.168.1.10:8787", false},
		{"8787", false},
	}
	for _, tt := range tests {
		if got := isLoopback(tt.addr); got != tt.want {
			t.Errorf("isLoopback(%q) = %v, want %v", tt.addr, got, tt.want)
		}
	}
}

func TestServeCommandDefaults(t *testing.T) {
	cmd := (&CLI{Logger: newLogger(&bytes.Buffer{}, LogInfo)}).serveCommand()
	if got := cmd.Flags().Lookup("addr").DefValue; got != "127.0.0.1:8787" {
		t.Errorf("--addr default = %q, want loopback", got)
	}
	if cmd.Flags().Lookup("root") == nil {
		t.Error("serve should offer --root")
	}
}
