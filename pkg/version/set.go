package version

import (
	"slices"

	"github.com/matzehuels/protocomposer/pkg/errors"
)

// LatestAlias is the alias every version set defines when it has at least
// one stable version.
const LatestAlias = "latest"

const maxAliasDepth = 8

// Set is the list of installable versions of a tool together with the
// aliases that point into it.
type Set struct {
	Versions []Spec
	Latest   *Spec
	Aliases  map[string]UnresolvedSpec
}

// Collect parses values in order. The highest stable version becomes Latest
// and the target of the "latest" alias. Any value that is not a valid
// version fails the whole collection with INVALID_VERSION.
func Collect(values []string) (Set, error) {
	set := Set{
		Versions: make([]Spec, 0, len(values)),
		Aliases:  map[string]UnresolvedSpec{},
	}
	for _, raw := range values {
		spec, err := Parse(raw)
		if err != nil {
			return Set{}, err
		}
		set.Versions = append(set.Versions, spec)
		if spec.IsStable() && (set.Latest == nil || spec.Version.GreaterThan(set.Latest.Version)) {
			latest := spec
			set.Latest = &latest
		}
	}
	if set.Latest != nil {
		set.Aliases[LatestAlias] = set.Latest.ToUnresolved()
	}
	return set, nil
}

// Sorted returns the semantic versions of the set, highest first.
func (s Set) Sorted() []Spec {
	out := make([]Spec, 0, len(s.Versions))
	for _, v := range s.Versions {
		if v.Version != nil {
			out = append(out, v)
		}
	}
	slices.SortStableFunc(out, func(a, b Spec) int {
		return b.Version.Compare(a.Version)
	})
	return out
}

// Resolve finds the installable version a request refers to:
//   - aliases are followed through Aliases; canary resolves to itself
//   - fully-qualified versions must be present in the set
//   - requirements resolve to the highest matching version
func (s Set) Resolve(req UnresolvedSpec) (Spec, error) {
	for depth := 0; depth < maxAliasDepth; depth++ {
		switch {
		case req.IsCanary():
			return Spec{Alias: Canary}, nil
		case req.IsAlias():
			next, ok := s.Aliases[req.Alias]
			if !ok {
				return Spec{}, errors.New(errors.ErrCodeNotFound, "unknown alias %q", req.Alias)
			}
			req = next
		case req.IsVersion():
			for _, v := range s.Versions {
				if v.Version != nil && v.Version.Equal(req.Version) {
					return v, nil
				}
			}
			return Spec{}, errors.New(errors.ErrCodeNotFound, "version %s is not available", req.Version)
		case req.IsReq():
			for _, v := range s.Sorted() {
				if req.Req.Check(v.Version) {
					return v, nil
				}
			}
			return Spec{}, errors.New(errors.ErrCodeNotFound, "no version matches %q", req.String())
		default:
			return Spec{}, errors.New(errors.ErrCodeInvalidVersion, "empty version request")
		}
	}
	return Spec{}, errors.New(errors.ErrCodeInvalidVersion, "alias chain too deep")
}
