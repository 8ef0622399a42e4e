// Package composer teaches a version-manager host how to list, resolve,
// install and locate Composer, the PHP dependency manager.
//
// # Entry Points
//
// [Plugin] implements every entry point the host calls; [Plugin.Register]
// wires them into a [pdk.Registry] under their host names:
//
//	register_tool         metadata: name, type, requirements
//	define_tool_config    JSON schema of [Config]
//	detect_version_files  composer.json, ignoring vendor/
//	parse_version_file    always reports no version
//	load_versions         remote tags -> [FilterTags] -> version list
//	resolve_version       [ResolveAlias]
//	native_install        [InstallerFor] the host OS
//	locate_executables    [Locate]
//	sync_shell_profile    [SyncProfile]
//
// Entry points are stateless: host facts, configuration and the
// command-execution capability all arrive through [host.Host].
//
// # Pure Components
//
// Filtering, alias resolution, location and profile synchronisation are
// pure functions and can be used without a host.
//
// [pdk.Registry]: github.com/matzehuels/protocomposer/pkg/pdk.Registry
// [host.Host]: github.com/matzehuels/protocomposer/pkg/host.Host
package composer
