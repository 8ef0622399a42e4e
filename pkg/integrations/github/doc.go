// Package github lists repository tags through the GitHub REST API.
//
// # Overview
//
// [Client.ListTags] pages through /repos/{owner}/{repo}/tags (100 tags per
// page, following the Link header) and returns the tag names in API order.
// It is the HTTPS alternative to the git protocol source in gitremote.
//
// # Usage
//
//	client := github.NewClient(c, os.Getenv("GITHUB_TOKEN"), time.Hour)
//	tags, err := client.ListTags(ctx, "https://github.com/composer/composer", false)
//
// # Authentication
//
// A GitHub personal access token is optional but recommended to avoid rate
// limits. Without a token, the client is limited to 60 requests/hour.
//
// # Caching
//
// Tag lists are cached under [cache.Keyer.TagsKey] with the TTL given at
// construction. Pass refresh=true to bypass the cache.
//
// [cache.Keyer.TagsKey]: github.com/matzehuels/protocomposer/pkg/cache.Keyer
package github
