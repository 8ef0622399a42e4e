package host

import (
	"os"
	"runtime"
)

// OS identifies a host operating system using the host's naming.
type OS string

// Known operating systems.
const (
	Linux     OS = "linux"
	MacOS     OS = "macos"
	Windows   OS = "windows"
	FreeBSD   OS = "freebsd"
	NetBSD    OS = "netbsd"
	OpenBSD   OS = "openbsd"
	DragonFly OS = "dragonfly"
	Solaris   OS = "solaris"
	Illumos   OS = "illumos"
	Android   OS = "android"
	IOS       OS = "ios"
)

// IsWindows reports whether os is Windows. Every other value, including
// unknown ones, is treated as a Unix-like system.
func (o OS) IsWindows() bool { return o == Windows }

// Arch identifies a CPU architecture using the host's naming.
type Arch string

// Known architectures.
const (
	X86         Arch = "x86"
	X64         Arch = "x64"
	Arm         Arch = "arm"
	Arm64       Arch = "arm64"
	LoongArch64 Arch = "loongarch64"
	PowerPC64   Arch = "powerpc64"
	RiscV64     Arch = "riscv64"
	S390x       Arch = "s390x"
	Mips64      Arch = "mips64"
)

// Environment holds the facts about the machine the tool is installed on.
type Environment struct {
	OS      OS     `json:"os"`
	Arch    Arch   `json:"arch,omitempty"`
	HomeDir string `json:"home_dir,omitempty"`
}

var goosNames = map[string]OS{
	"linux":     Linux,
	"darwin":    MacOS,
	"windows":   Windows,
	"freebsd":   FreeBSD,
	"netbsd":    NetBSD,
	"openbsd":   OpenBSD,
	"dragonfly": DragonFly,
	"solaris":   Solaris,
	"illumos":   Illumos,
	"android":   Android,
	"ios":       IOS,
}

var goarchNames = map[string]Arch{
	"386":      X86,
	"amd64":    X64,
	"arm":      Arm,
	"arm64":    Arm64,
	"loong64":  LoongArch64,
	"ppc64":    PowerPC64,
	"ppc64le":  PowerPC64,
	"riscv64":  RiscV64,
	"s390x":    S390x,
	"mips64":   Mips64,
	"mips64le": Mips64,
}

// OSFromGOOS converts a runtime.GOOS value. Unknown values pass through.
func OSFromGOOS(goos string) OS {
	if o, ok := goosNames[goos]; ok {
		return o
	}
	return OS(goos)
}

// ArchFromGOARCH converts a runtime.GOARCH value. Unknown values pass through.
func ArchFromGOARCH(goarch string) Arch {
	if a, ok := goarchNames[goarch]; ok {
		return a
	}
	return Arch(goarch)
}

// Detect describes the machine the current process runs on.
func Detect() Environment {
	home, _ := os.UserHomeDir()
	return Environment{
		OS:      OSFromGOOS(runtime.GOOS),
		Arch:    ArchFromGOARCH(runtime.GOARCH),
		HomeDir: home,
	}
}
