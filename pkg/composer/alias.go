package composer

import "github.com/matzehuels/protocomposer/pkg/version"

// stableAliases are the aliases users reach for that mean "the newest
// stable release" for Composer.
var stableAliases = map[string]bool{
	"lts":    true,
	"stable": true,
}

// ResolveAlias maps "lts" and "stable" to the "latest" alias. Every other
// request yields nil, leaving resolution to the host.
func ResolveAlias(req version.UnresolvedSpec) *version.UnresolvedSpec {
	if req.IsAlias() && stableAliases[req.Alias] {
		candidate := version.NewAlias(version.LatestAlias)
		return &candidate
	}
	return nil
}
