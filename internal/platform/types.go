// Package platform identifies the host operating system and CPU architecture
// and converts the raw values reported by the host into the closed set of
// families leakguard can download a scanner build for.
//
// Raw values are converted at this boundary. Anything outside the supported
// families is rejected with ErrUnsupportedPlatform or ErrUnsupportedArch so
// the rest of the code never sees an unknown value. On Linux the package
// also uses gopsutil to report the distribution, which is informational and
// exposed to the Lua configuration through InjectPlatformTable.
package platform

import (
	"context"
	"errors"
)

var (
	// ErrUnsupportedPlatform is returned for an OS the scanner is not released for.
	ErrUnsupportedPlatform = errors.New("unsupported platform")
	// ErrUnsupportedArch is returned for a CPU architecture the scanner is not released for.
	ErrUnsupportedArch = errors.New("unsupported architecture")
)

// OSFamily is one of the operating system families a release exists for.
type OSFamily string

const (
	Windows OSFamily = "windows"
	Linux   OSFamily = "linux"
	Darwin  OSFamily = "darwin"
)

// String returns the release token of the family.
func (f OSFamily) String() string {
	return string(f)
}

// Token returns the platform token used in release artifact names.
func (f OSFamily) Token() string {
	return string(f)
}

// ArchiveExt returns the archive extension releases use for the family.
func (f OSFamily) ArchiveExt() string {
	if f == Windows {
		return ".zip"
	}
	return ".tar.gz"
}

// ExecutableSuffix returns ".exe" on Windows and "" everywhere else.
func (f OSFamily) ExecutableSuffix() string {
	if f == Windows {
		return ".exe"
	}
	return ""
}

// CPUArch is one of the CPU families a release exists for.
type CPUArch string

const (
	X64   CPUArch = "x64"
	ARM64 CPUArch = "arm64"
	X86   CPUArch = "x32"
)

// String returns the release token of the architecture.
func (a CPUArch) String() string {
	return string(a)
}

// Token returns the architecture token used in release artifact names.
func (a CPUArch) Token() string {
	return string(a)
}

// Linux distribution family constants.
const (
	FamilyDebian  = "debian"  // Debian, Ubuntu, Linux Mint
	FamilyRHEL    = "rhel"    // RHEL, CentOS, Rocky Linux, AlmaLinux
	FamilyFedora  = "fedora"  // Fedora
	FamilySUSE    = "suse"    // openSUSE, SLES
	FamilyArch    = "arch"    // Arch Linux, Manjaro
	FamilyAlpine  = "alpine"  // Alpine Linux
	FamilyGentoo  = "gentoo"  // Gentoo
	FamilyUnknown = "unknown" // Unrecognized distributions
)

// Info contains platform detection information.
// It is created once per run and never modified afterwards.
type Info struct {
	OS       OSFamily
	Arch     CPUArch
	RawOS    string // as reported by the host, e.g. "linux", "Windows"
	RawArch  string // machine name as reported by the host, e.g. "x86_64"
	Platform string // distro ID (Linux only, e.g., "ubuntu")
	Family   string // canonical family (e.g., "debian")
	Version  string // distro version (Linux only, e.g., "22.04")
}

// Distro contains Linux distribution information.
type Distro struct {
	ID      string
	Family  string
	Version string
}

// GetDistro returns distro information if this is a Linux platform.
// Returns nil for non-Linux platforms or if distro detection failed.
func (i *Info) GetDistro() *Distro {
	if i.OS != Linux || i.Platform == "" {
		return nil
	}
	return &Distro{
		ID:      i.Platform,
		Family:  i.Family,
		Version: i.Version,
	}
}

// IsLinux returns true if the platform is Linux.
func (i *Info) IsLinux() bool {
	return i.OS == Linux
}

// IsMacOS returns true if the platform is macOS.
func (i *Info) IsMacOS() bool {
	return i.OS == Darwin
}

// IsWindows returns true if the platform is Windows.
func (i *Info) IsWindows() bool {
	return i.OS == Windows
}

// Detector is the interface for platform detection.
type Detector interface {
	Detect(ctx context.Context) (*Info, error)
}

// StaticDetector returns a fixed Info. It is used when the platform is
// supplied from outside, for example by the --os and --arch overrides of the
// status command, and by tests.
type StaticDetector struct {
	Info *Info
	Err  error
}

// Detect returns the configured info and error.
func (s StaticDetector) Detect(ctx context.Context) (*Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.Info, s.Err
}

// FromRaw builds an Info from raw OS and architecture names, converting them
// to their families. Distribution fields are left empty.
func FromRaw(rawOS, rawArch string) (*Info, error) {
	osFamily, err := ParseOSFamily(rawOS)
	if err != nil {
		return nil, err
	}
	arch, err := ParseCPUArch(rawArch)
	if err != nil {
		return nil, err
	}
	return &Info{
		OS:      osFamily,
		Arch:    arch,
		RawOS:   rawOS,
		RawArch: rawArch,
	}, nil
}
