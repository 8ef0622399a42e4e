package cli

import (
	"encoding/json"
	"maps"
	"os"

	"github.com/matzehuels/protocomposer/pkg/config"
	"github.com/matzehuels/protocomposer/pkg/host"
)

// localHost describes the current machine as a plugin host. Tool config
// comes from the nearest .prototools; overrides are applied on top.
func localHost(overrides map[string]any) (*host.Static, *config.ProtoTools, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, nil, err
	}
	pt, err := config.Discover(wd)
	if err != nil {
		return nil, nil, err
	}

	settings := maps.Clone(pt.Settings)
	if len(overrides) > 0 {
		if settings == nil {
			settings = make(map[string]any, len(overrides))
		}
		maps.Copy(settings, overrides)
	}

	var raw json.RawMessage
	if settings != nil {
		if raw, err = json.Marshal(settings); err != nil {
			return nil, nil, err
		}
	}

	env := host.Detect()
	return &host.Static{Env: &env, Config: raw, Runner: host.OSExecutor{}}, pt, nil
}

// preReleaseOverride turns the --pre flag into a config override.
func preReleaseOverride(pre bool) map[string]any {
	if !pre {
		return nil
	}
	return map[string]any{"allow-pre-releases": true}
}
