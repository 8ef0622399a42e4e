package composer

import (
	"github.com/matzehuels/protocomposer/pkg/host"
	"github.com/matzehuels/protocomposer/pkg/pdk"
)

// Global package directories, in lookup order after a configured home.
const (
	userGlobalsDir = "$HOME/.composer/vendor/bin"
	envGlobalsDir  = "$COMPOSER_HOME/vendor/bin"
)

// ExecutableName returns the primary executable file name for an OS.
func ExecutableName(os host.OS) string {
	if os.IsWindows() {
		return "composer.bat"
	}
	return "composer"
}

// Locate describes where the installed tool and globally installed
// packages live. A configured composerHome is searched first.
func Locate(os host.OS, composerHome string) pdk.LocateExecutablesOutput {
	globals := make([]string, 0, 3)
	if composerHome != "" {
		globals = append(globals, composerHome+"/vendor/bin")
	}
	globals = append(globals, userGlobalsDir, envGlobalsDir)

	return pdk.LocateExecutablesOutput{
		Exes: map[string]pdk.ExecutableConfig{
			"composer": pdk.NewPrimaryExecutable(ExecutableName(os)),
		},
		ExesDirs:          []string{"."},
		GlobalsLookupDirs: globals,
	}
}
