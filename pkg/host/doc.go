// Package host describes what the plugin needs from the version-manager host.
//
// The plugin core is stateless. Everything it knows about the machine arrives
// through a [Host]:
//
//   - [Environment]: operating system, architecture and home directory
//   - tool configuration as raw JSON, validated by the caller
//   - [Executor]: the capability to run a command and collect its exit code,
//     stdout and stderr
//
// [Static] is the Host used by the CLI and the HTTP transport: its facts come
// from the request envelope (or [Detect] for local invocations) and commands
// run through [OSExecutor].
package host
