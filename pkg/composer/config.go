package composer

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/matzehuels/protocomposer/pkg/errors"
)

// Config is the user's tool configuration.
type Config struct {
	// ComposerHome overrides the directory Composer keeps global packages in.
	// An empty string is the same as leaving it unset.
	ComposerHome string `json:"composer-home,omitempty"`

	// AllowPreReleases keeps rc, alpha and beta tags in load_versions.
	AllowPreReleases bool `json:"allow-pre-releases,omitempty"`
}

// ConfigSchema is the JSON schema returned by define_tool_config.
const ConfigSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "title": "Composer",
  "type": "object",
  "properties": {
    "composer-home": {
      "type": ["string", "null"],
      "description": "Directory Composer stores global packages in (COMPOSER_HOME)."
    },
    "allow-pre-releases": {
      "type": "boolean",
      "default": false,
      "description": "Include rc, alpha and beta releases when listing versions."
    }
  },
  "additionalProperties": false
}`

const schemaURL = "protocomposer://composer/config.schema.json"

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(ConfigSchema))
	if err != nil {
		return nil, err
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, doc); err != nil {
		return nil, err
	}
	return c.Compile(schemaURL)
})

// DecodeConfig validates raw against [ConfigSchema] and decodes it. Empty
// input and JSON null yield the zero Config.
func DecodeConfig(raw json.RawMessage) (Config, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return Config{}, nil
	}

	schema, err := compiledSchema()
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInternal, err, "compile config schema")
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "config is not valid JSON")
	}
	if err := schema.Validate(inst); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid composer config")
	}

	var cfg struct {
		ComposerHome     *string `json:"composer-home"`
		AllowPreReleases bool    `json:"allow-pre-releases"`
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode composer config")
	}

	out := Config{AllowPreReleases: cfg.AllowPreReleases}
	if cfg.ComposerHome != nil {
		out.ComposerHome = *cfg.ComposerHome
	}
	return out, nil
}
