package composer

import (
	"context"
	"fmt"

	perrors "github.com/matzehuels/protocomposer/pkg/errors"
	"github.com/matzehuels/protocomposer/pkg/host"
	"github.com/matzehuels/protocomposer/pkg/pdk"
)

// DownloadURL returns the location of the composer.phar of a release.
func DownloadURL(version string) string {
	return fmt.Sprintf("https://getcomposer.org/download/%s/composer.phar", version)
}

// windowsLauncher is the content of composer.bat; it runs the phar next to
// it with PHP and forwards all arguments.
const windowsLauncher = `@php "%~dp0composer.phar" %*`

// InstallRequest names the release to install and the directory to put it in.
type InstallRequest struct {
	Version string
	Dir     string
}

// Installer places an executable Composer into a directory.
//
// An unsuccessful command yields an output with Installed=false and a
// reason; later steps are skipped and nothing is cleaned up or retried. An
// error is returned only when the executor itself fails or the directory
// cannot be written into the installer's commands.
type Installer interface {
	Install(ctx context.Context, req InstallRequest) (pdk.NativeInstallOutput, error)
}

// InstallerFor picks the installation strategy for a host OS. Windows gets
// composer.phar plus a batch launcher; every other OS gets a single
// executable named composer.
func InstallerFor(os host.OS, exec host.Executor) Installer {
	if os.IsWindows() {
		return &windowsInstaller{exec: exec}
	}
	return &unixInstaller{exec: exec}
}

type step struct {
	failure string
	cmd     host.ExecCommandInput
}

// runSteps executes steps in order and stops at the first non-zero exit.
func runSteps(ctx context.Context, exec host.Executor, steps []step) (pdk.NativeInstallOutput, error) {
	for _, s := range steps {
		out, err := exec.Exec(ctx, s.cmd)
		if err != nil {
			return pdk.NativeInstallOutput{}, err
		}
		if out.ExitCode != 0 {
			return pdk.NativeInstallOutput{
				Installed: false,
				Error:     fmt.Sprintf("%s: %s", s.failure, out.Stderr),
			}, nil
		}
	}
	return pdk.NativeInstallOutput{Installed: true}, nil
}

type unixInstaller struct {
	exec host.Executor
}

func (i *unixInstaller) Install(ctx context.Context, req InstallRequest) (pdk.NativeInstallOutput, error) {
	target := req.Dir + "/composer"
	return runSteps(ctx, i.exec, []step{
		{
			failure: "Failed to download composer.phar",
			cmd: host.ExecCommandInput{
				Command: "curl",
				Args:    []string{"-sSL", "-o", target, DownloadURL(req.Version)},
			},
		},
		{
			failure: "Failed to chmod composer",
			cmd: host.ExecCommandInput{
				Command: "chmod",
				Args:    []string{"+x", target},
			},
		},
	})
}

type windowsInstaller struct {
	exec host.Executor
}

func (i *windowsInstaller) Install(ctx context.Context, req InstallRequest) (pdk.NativeInstallOutput, error) {
	if err := perrors.ValidateScriptPath(req.Dir); err != nil {
		return pdk.NativeInstallOutput{}, err
	}
	phar := req.Dir + `\composer.phar`
	bat := req.Dir + `\composer.bat`
	return runSteps(ctx, i.exec, []step{
		{
			failure: "Failed to download composer.phar",
			cmd: host.ExecCommandInput{
				Command: "powershell",
				Args: []string{
					"-Command",
					fmt.Sprintf("Invoke-WebRequest -Uri '%s' -OutFile '%s'", DownloadURL(req.Version), phar),
				},
			},
		},
		{
			failure: "Failed to create composer.bat",
			cmd: host.ExecCommandInput{
				Command: "cmd",
				Args:    []string{"/c", fmt.Sprintf(`echo %s> "%s"`, windowsLauncher, bat)},
			},
		},
	})
}
