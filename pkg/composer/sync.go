package composer

import "github.com/matzehuels/protocomposer/pkg/pdk"

// CheckVar is the variable whose presence in a shell profile marks it as
// already configured.
const CheckVar = "PROTO_COMPOSER_VERSION"

// SyncProfile describes the shell profile changes for Composer: PATH gains
// the user's global vendor/bin, and COMPOSER_HOME is exported only when the
// user configured one.
func SyncProfile(composerHome string) pdk.SyncShellProfileOutput {
	out := pdk.SyncShellProfileOutput{
		CheckVar:   CheckVar,
		ExtendPath: []string{userGlobalsDir},
		SkipSync:   false,
	}
	if composerHome != "" {
		out.ExportVars = map[string]string{"COMPOSER_HOME": composerHome}
	}
	return out
}
