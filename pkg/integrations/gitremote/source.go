// Package gitremote lists repository tags over the git smart protocol.
//
// It is the in-process equivalent of
//
//	git ls-remote --tags --refs --sort=version:refname <url>
//
// and needs neither a git binary nor a clone: only the advertised refs are
// fetched and kept in memory.
package gitremote

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/storage/memory"

	"github.com/matzehuels/protocomposer/pkg/cache"
	perrors "github.com/matzehuels/protocomposer/pkg/errors"
	"github.com/matzehuels/protocomposer/pkg/integrations"
)

// SourceName identifies this source in cache keys and logs.
const SourceName = "git"

const defaultTimeout = 30 * time.Second

// Source lists the tags of remote git repositories.
type Source struct {
	cache   cache.Cache
	keyer   cache.Keyer
	ttl     time.Duration
	timeout time.Duration
	list    func(ctx context.Context, url string) ([]*plumbing.Reference, error)
}

// New creates a Source that caches listings in c for ttl.
func New(c cache.Cache, ttl time.Duration) *Source {
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Source{
		cache:   c,
		keyer:   cache.NewDefaultKeyer(),
		ttl:     ttl,
		timeout: defaultTimeout,
		list:    lsRemote,
	}
}

// WithKeyer replaces the keyer used for cache entries.
func (s *Source) WithKeyer(k cache.Keyer) *Source {
	if k != nil {
		s.keyer = k
	}
	return s
}

// ListTags returns the tag names of repoURL sorted by version:refname.
// If refresh is true, cached data is bypassed.
func (s *Source) ListTags(ctx context.Context, repoURL string, refresh bool) ([]string, error) {
	if err := perrors.ValidateURL(repoURL); err != nil {
		return nil, err
	}
	var tags []string
	err := integrations.Cached(ctx, s.cache, s.keyer.TagsKey(SourceName, repoURL), s.ttl, refresh, &tags, func() error {
		ctxWt, cf := context.WithTimeout(ctx, s.timeout)
		defer cf()

		refs, err := s.list(ctxWt, repoURL)
		if err != nil {
			return classify(repoURL, err)
		}
		tags = TagNames(refs)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tags, nil
}

func lsRemote(ctx context.Context, url string) ([]*plumbing.Reference, error) {
	remote := git.NewRemote(memory.NewStorage(), &config.RemoteConfig{
		Name: "origin",
		URLs: []string{url},
	})
	return remote.ListContext(ctx, &git.ListOptions{PeelingOption: git.IgnorePeeled})
}

func classify(url string, err error) error {
	switch {
	case errors.Is(err, transport.ErrEmptyRemoteRepository):
		return nil
	case errors.Is(err, transport.ErrRepositoryNotFound):
		return fmt.Errorf("%w: git repository %s", integrations.ErrNotFound, url)
	case errors.Is(err, context.Canceled):
		return err
	default:
		return cache.Retryable(fmt.Errorf("%w: ls-remote %s: %v", integrations.ErrNetwork, url, err))
	}
}

// TagNames extracts the short names of tag references, skipping peeled
// entries ("^{}"), and sorts them like git's version:refname ordering.
func TagNames(refs []*plumbing.Reference) []string {
	tags := make([]string, 0, len(refs))
	for _, ref := range refs {
		if !ref.Name().IsTag() {
			continue
		}
		name := ref.Name().Short()
		if strings.HasSuffix(name, "^{}") {
			continue
		}
		tags = append(tags, name)
	}
	slices.SortStableFunc(tags, compareVersionRefs)
	return slices.Compact(tags)
}

// compareVersionRefs orders strings treating runs of digits as numbers,
// so "2.10.0" sorts after "2.9.0".
func compareVersionRefs(a, b string) int {
	for a != "" && b != "" {
		da, db := isDigit(a[0]), isDigit(b[0])
		switch {
		case da && db:
			na, ra := splitDigits(a)
			nb, rb := splitDigits(b)
			na, nb = strings.TrimLeft(na, "0"), strings.TrimLeft(nb, "0")
			if len(na) != len(nb) {
				return len(na) - len(nb)
			}
			if c := strings.Compare(na, nb); c != 0 {
				return c
			}
			a, b = ra, rb
		case a[0] != b[0]:
			return int(a[0]) - int(b[0])
		default:
			a, b = a[1:], b[1:]
		}
	}
	return len(a) - len(b)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func splitDigits(s string) (digits, rest string) {
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	return s[:i], s[i:]
}
