package binary

import (
	"errors"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/ZebulonRouseFrantzich/leakguard/internal/platform"
)

const (
	// Tool is the name of the scanner and of its executable.
	Tool = "gitleaks"
	// Version is the pinned scanner release.
	Version = "8.17.0"
	// DefaultReleaseBase is where release artifacts are downloaded from.
	DefaultReleaseBase = "https://github.com/gitleaks/gitleaks/releases/download"
)

// pinnedVersion fails at init if Version is not a valid semver string.
var pinnedVersion = semver.MustParse(Version)

var (
	// ErrDownload wraps network and HTTP failures while fetching the artifact.
	ErrDownload = errors.New("download failed")
	// ErrExtraction wraps malformed or incomplete archives.
	ErrExtraction = errors.New("extraction failed")
	// ErrFilesystem wraps permission and I/O failures on the install tree.
	ErrFilesystem = errors.New("filesystem error")
)

// Options controls how Resolve treats an existing install.
type Options struct {
	// ReuseExisting returns an already installed executable without any
	// network access.
	ReuseExisting bool
	// CleanBeforeInstall removes the install directory before installing.
	CleanBeforeInstall bool
	// SearchHostPath returns the tool name when it is found on PATH.
	SearchHostPath bool
}

// DefaultOptions returns the options the hook uses when nothing is configured.
func DefaultOptions() Options {
	return Options{
		ReuseExisting:  true,
		SearchHostPath: true,
	}
}

// Location describes where the artifact for one platform is fetched from
// and installed to.
type Location struct {
	Platform       *platform.Info
	Artifact       string
	URL            string
	ArchivePath    string // transient, removed after extraction
	InstallDir     string // durable
	ExecutablePath string // InstallDir joined with the executable name
}

// Receipt records what was installed into an install directory.
type Receipt struct {
	Tool        string    `toml:"tool"`
	Version     string    `toml:"version"`
	Artifact    string    `toml:"artifact"`
	URL         string    `toml:"url"`
	InstalledAt time.Time `toml:"installed_at"`
}
