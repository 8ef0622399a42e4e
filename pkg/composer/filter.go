package composer

import "strings"

// supportedMajor is the release line load_versions offers. Composer 1.x is
// end-of-life and excluded unconditionally.
const supportedMajor = "2"

var preReleaseMarkers = []string{"rc", "alpha", "beta"}

// Policy controls which tags become installable versions.
type Policy struct {
	AllowPreReleases bool
}

// FilterTags keeps the tags that start with the supported major version and,
// unless the policy allows pre-releases, do not mention rc, alpha or beta in
// any letter case. Order is preserved and duplicates are kept. Matching is
// purely textual.
func FilterTags(tags []string, p Policy) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if !strings.HasPrefix(tag, supportedMajor) {
			continue
		}
		if !p.AllowPreReleases && IsPreRelease(tag) {
			continue
		}
		out = append(out, tag)
	}
	return out
}

// IsPreRelease reports whether tag carries a pre-release marker.
func IsPreRelease(tag string) bool {
	lower := strings.ToLower(tag)
	for _, marker := range preReleaseMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
