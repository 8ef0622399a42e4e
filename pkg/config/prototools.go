// Package config reads the user's proto configuration for Composer from
// .prototools files.
//
// A .prototools file pins tool versions at the top level and carries per-tool
// settings in [tools.<id>] tables:
//
//	composer = "2.8.6"
//
//	[tools.composer]
//	composer-home = "/opt/composer"
//	allow-pre-releases = false
//
// The CLI uses it to fill in the tool config of a call when none is given.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	perrors "github.com/matzehuels/protocomposer/pkg/errors"
	"github.com/matzehuels/protocomposer/pkg/version"
)

// FileName is the name of proto's configuration file.
const FileName = ".prototools"

// ToolID is the key Composer is configured under.
const ToolID = "composer"

// ProtoTools is the Composer-related content of a .prototools file.
type ProtoTools struct {
	// Path is the file the settings were read from. Empty when no file
	// was found.
	Path string

	// Pin is the version pinned for Composer, if any.
	Pin *version.UnresolvedSpec

	// Settings holds the [tools.composer] table.
	Settings map[string]any
}

// Find walks up from dir and returns the path of the nearest .prototools
// file. It returns "" when none exists.
func Find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		path := filepath.Join(dir, FileName)
		info, err := os.Stat(path)
		switch {
		case err == nil && !info.IsDir():
			return path, nil
		case err != nil && !errors.Is(err, fs.ErrNotExist):
			return "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// Load parses the file at path.
func Load(path string) (*ProtoTools, error) {
	var doc map[string]any
	if _, err := toml.DecodeFile(path, &doc); err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInvalidConfig, err, "parse %s", path)
	}

	pt := &ProtoTools{Path: path}
	if raw, ok := doc[ToolID]; ok {
		s, ok := raw.(string)
		if !ok {
			return nil, perrors.New(perrors.ErrCodeInvalidConfig, "%s: %s must be a version string", path, ToolID)
		}
		pin, err := version.ParseUnresolved(s)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		pt.Pin = &pin
	}

	if tools, ok := doc["tools"].(map[string]any); ok {
		if settings, ok := tools[ToolID]; ok {
			table, ok := settings.(map[string]any)
			if !ok {
				return nil, perrors.New(perrors.ErrCodeInvalidConfig, "%s: tools.%s must be a table", path, ToolID)
			}
			pt.Settings = table
		}
	}
	return pt, nil
}

// Discover finds and loads the nearest .prototools above dir. Without one
// it returns an empty ProtoTools.
func Discover(dir string) (*ProtoTools, error) {
	path, err := Find(dir)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return &ProtoTools{}, nil
	}
	return Load(path)
}

// ToolConfig returns the [tools.composer] table as JSON, or nil when the
// table is absent.
func (p *ProtoTools) ToolConfig() (json.RawMessage, error) {
	if p == nil || p.Settings == nil {
		return nil, nil
	}
	data, err := json.Marshal(p.Settings)
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInvalidConfig, err, "encode tools.%s", ToolID)
	}
	return data, nil
}
