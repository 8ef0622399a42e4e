// Package integrations provides the remote tag sources used by load_versions.
//
// # Overview
//
// Composer releases are published as tags of the composer/composer git
// repository. Two sources can enumerate them:
//
//   - [gitremote]: the git smart protocol (the equivalent of git ls-remote --tags)
//   - [github]: the GitHub REST API, for environments where only HTTPS APIs are reachable
//
// Both return tag names in the order the remote reports them and never
// filter; filtering is the job of the composer package.
//
// # Shared Infrastructure
//
// The [Client] type provides shared HTTP functionality (default headers,
// status classification, retries for transient failures) and the [Cached]
// helper stores results through [cache.Cache].
//
// [gitremote]: github.com/matzehuels/protocomposer/pkg/integrations/gitremote
// [github]: github.com/matzehuels/protocomposer/pkg/integrations/github
// [cache.Cache]: github.com/matzehuels/protocomposer/pkg/cache.Cache
package integrations
