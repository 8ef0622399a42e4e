// Package version models the version specifiers exchanged with the host.
//
// Two shapes exist. An [UnresolvedSpec] is what a user or a version file
// asks for: an alias such as "stable", a fully-qualified version, or a
// requirement such as "^2.7 || ~2.5". A [Spec] is what can actually be
// installed: an alias, "canary" or a fully-qualified semantic version.
//
// Semantic versions and requirements are handled by
// github.com/Masterminds/semver/v3.
package version

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/matzehuels/protocomposer/pkg/errors"
)

// Canary is the reserved alias for nightly builds.
const Canary = "canary"

var (
	aliasPattern    = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]*$`)
	vPrefixPattern  = regexp.MustCompile(`^[vV][0-9]`)
	fullVersionExpr = regexp.MustCompile(`^[0-9]+\.[0-9]+\.[0-9]+(-[0-9A-Za-z.-]+)?(\+[0-9A-Za-z.-]+)?$`)
)

// IsAlias reports whether s is shaped like an alias rather than a version.
func IsAlias(s string) bool {
	return aliasPattern.MatchString(s) && !vPrefixPattern.MatchString(s)
}

func clean(raw string) string {
	s := strings.TrimSpace(raw)
	if vPrefixPattern.MatchString(s) {
		s = s[1:]
	}
	return s
}

// =============================================================================
// Unresolved specifiers
// =============================================================================

// UnresolvedSpec is a version request that may still need resolving.
// Exactly one of Alias, Version or Req is set.
type UnresolvedSpec struct {
	Alias   string
	Version *semver.Version
	Req     *semver.Constraints

	raw string
}

// NewAlias returns an alias specifier.
func NewAlias(alias string) UnresolvedSpec {
	return UnresolvedSpec{Alias: alias, raw: alias}
}

// ParseUnresolved parses a user-supplied specifier.
// Malformed input yields an INVALID_VERSION error.
func ParseUnresolved(raw string) (UnresolvedSpec, error) {
	if err := errors.ValidateVersionText(raw); err != nil {
		return UnresolvedSpec{}, err
	}
	s := strings.TrimSpace(raw)
	if IsAlias(s) {
		return NewAlias(s), nil
	}

	s = clean(s)
	if fullVersionExpr.MatchString(s) {
		v, err := semver.StrictNewVersion(s)
		if err != nil {
			return UnresolvedSpec{}, errors.Wrap(errors.ErrCodeInvalidVersion, err, "invalid version %q", raw)
		}
		return UnresolvedSpec{Version: v, raw: s}, nil
	}

	c, err := semver.NewConstraint(s)
	if err != nil {
		return UnresolvedSpec{}, errors.Wrap(errors.ErrCodeInvalidVersion, err, "invalid version requirement %q", raw)
	}
	return UnresolvedSpec{Req: c, raw: s}, nil
}

// IsAlias reports whether the specifier is an alias (including canary).
func (u UnresolvedSpec) IsAlias() bool { return u.Alias != "" }

// IsCanary reports whether the specifier is the canary alias.
func (u UnresolvedSpec) IsCanary() bool { return u.Alias == Canary }

// IsVersion reports whether the specifier is a fully-qualified version.
func (u UnresolvedSpec) IsVersion() bool { return u.Version != nil }

// IsReq reports whether the specifier is a requirement.
func (u UnresolvedSpec) IsReq() bool { return u.Req != nil }

// String returns the canonical text of the specifier.
func (u UnresolvedSpec) String() string {
	switch {
	case u.Alias != "":
		return u.Alias
	case u.Version != nil:
		return u.Version.String()
	default:
		return u.raw
	}
}

// MarshalJSON encodes the specifier as a string.
func (u UnresolvedSpec) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.String())
}

// UnmarshalJSON decodes a specifier from a string.
func (u *UnresolvedSpec) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidVersion, err, "version must be a string")
	}
	parsed, err := ParseUnresolved(s)
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

// =============================================================================
// Resolved specifiers
// =============================================================================

// Spec is an installable version: an alias, canary or a semantic version.
type Spec struct {
	Alias   string
	Version *semver.Version
}

// Parse parses a resolved specifier. Requirements are rejected.
func Parse(raw string) (Spec, error) {
	if err := errors.ValidateVersionText(raw); err != nil {
		return Spec{}, err
	}
	s := strings.TrimSpace(raw)
	if IsAlias(s) {
		return Spec{Alias: s}, nil
	}
	s = clean(s)
	if !fullVersionExpr.MatchString(s) {
		return Spec{}, errors.New(errors.ErrCodeInvalidVersion, "invalid version %q: expected major.minor.patch", raw)
	}
	v, err := semver.StrictNewVersion(s)
	if err != nil {
		return Spec{}, errors.Wrap(errors.ErrCodeInvalidVersion, err, "invalid version %q", raw)
	}
	return Spec{Version: v}, nil
}

// IsAlias reports whether the spec is an alias (including canary).
func (s Spec) IsAlias() bool { return s.Alias != "" }

// IsCanary reports whether the spec is the canary alias.
func (s Spec) IsCanary() bool { return s.Alias == Canary }

// IsStable reports whether the spec is a semantic version without
// pre-release or build metadata.
func (s Spec) IsStable() bool {
	return s.Version != nil && s.Version.Prerelease() == "" && s.Version.Metadata() == ""
}

// String returns the canonical text of the spec.
func (s Spec) String() string {
	if s.Version != nil {
		return s.Version.String()
	}
	return s.Alias
}

// ToUnresolved converts the spec back into a request for itself.
func (s Spec) ToUnresolved() UnresolvedSpec {
	if s.Version != nil {
		return UnresolvedSpec{Version: s.Version, raw: s.Version.String()}
	}
	return NewAlias(s.Alias)
}

// MarshalJSON encodes the spec as a string.
func (s Spec) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a spec from a string.
func (s *Spec) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidVersion, err, "version must be a string")
	}
	parsed, err := Parse(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
