package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Keyer builds cache keys for the different kinds of cached data.
type Keyer interface {
	// TagsKey generates a key for the tag list of a repository as seen by
	// a given tag source ("git", "github").
	TagsKey(source, repo string) string
}

// DefaultKeyer produces unprefixed, human-readable keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// TagsKey generates a key for a repository tag listing. Repository URLs are
// normalised so that "https://github.com/composer/composer.git" and
// "https://github.com/composer/composer" share an entry.
func (DefaultKeyer) TagsKey(source, repo string) string {
	repo = strings.TrimSuffix(strings.TrimRight(strings.TrimSpace(repo), "/"), ".git")
	return "tags:" + source + ":" + digest(strings.ToLower(repo))
}

// ScopedKeyer wraps a Keyer with a prefix so that several deployments can
// share one backend (for example one Redis instance) without collisions.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "protocomposer:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// TagsKey generates a prefixed key for a tag listing.
func (k *ScopedKeyer) TagsKey(source, repo string) string {
	return k.prefix + k.inner.TagsKey(source, repo)
}

// digest returns the hex SHA-256 of s. It keeps keys and file names a fixed
// length regardless of repository URL.
func digest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
