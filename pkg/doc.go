// Package pkg provides the libraries behind protocomposer, a plugin that
// teaches the proto version manager to list, resolve and install Composer.
//
// # Overview
//
// The pkg directory is organized into four areas:
//
//  1. [pdk] and [host] - The plugin contract: entry-point names, their JSON
//     inputs and outputs, and the host capabilities a call may use.
//  2. [composer] - The Composer plugin itself.
//  3. [version] - Version specifiers and version sets.
//  4. [integrations], [cache] and [config] - Tag listing from git or the
//     GitHub API, response caching and .prototools loading.
//
// # Data Flow
//
//	host call (name, host facts, config, input)
//	         ↓
//	    [pdk.Registry] (dispatch by name)
//	         ↓
//	    [composer.Plugin] entry point
//	         ↓
//	    tag source / host executor
//	         ↓
//	    JSON output or coded error
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/protocomposer/pkg/composer"
//	    "github.com/matzehuels/protocomposer/pkg/integrations/gitremote"
//	    "github.com/matzehuels/protocomposer/pkg/pdk"
//	)
//
//	reg := pdk.NewRegistry()
//	plugin := composer.New(gitremote.New(nil, time.Hour))
//	if err := plugin.Register(reg); err != nil {
//	    return err
//	}
//	out, err := reg.Call(ctx, pdk.FuncLoadVersions, h, nil)
//
// # Errors
//
// Every failure carries a code from [errors]; transports map codes to exit
// statuses or HTTP status codes.
package pkg
