package binary

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/ZebulonRouseFrantzich/leakguard/internal/log"
	"github.com/ZebulonRouseFrantzich/leakguard/internal/platform"
)

// PathLookup finds an executable on the host command search path.
type PathLookup interface {
	LookPath(file string) (string, error)
}

// PathLookupFunc adapts a function to PathLookup.
type PathLookupFunc func(file string) (string, error)

// LookPath calls f(file).
func (f PathLookupFunc) LookPath(file string) (string, error) {
	return f(file)
}

// HostPath looks executables up on the process PATH.
var HostPath PathLookup = PathLookupFunc(exec.LookPath)

// Config holds configuration for the resolver.
type Config struct {
	// InstallDir is where the release is unpacked. Required.
	InstallDir string
	// ReleaseBase overrides DefaultReleaseBase.
	ReleaseBase string
	// DownloadTimeout bounds the download (default DefaultTimeout).
	DownloadTimeout time.Duration
	// HTTPClient overrides the default HTTP client.
	HTTPClient HTTPClient
	// Detector defaults to platform.NewDetector().
	Detector platform.Detector
	// PathLookup defaults to HostPath.
	PathLookup PathLookup
	// Logger defaults to log.Default().
	Logger log.Logger
}

// Resolver guarantees a runnable scanner executable.
type Resolver struct {
	installDir  string
	releaseBase string
	detector    platform.Detector
	pathLookup  PathLookup
	downloader  *Downloader
	extractor   *Extractor
	logger      log.Logger
	now         func() time.Time
}

// NewResolver creates a resolver.
func NewResolver(cfg Config) (*Resolver, error) {
	if cfg.InstallDir == "" {
		return nil, fmt.Errorf("InstallDir is required")
	}

	installDir, err := filepath.Abs(cfg.InstallDir)
	if err != nil {
		return nil, fmt.Errorf("resolve install dir: %w", err)
	}

	r := &Resolver{
		installDir:  installDir,
		releaseBase: cfg.ReleaseBase,
		detector:    cfg.Detector,
		pathLookup:  cfg.PathLookup,
		downloader:  NewDownloader(cfg.HTTPClient, cfg.DownloadTimeout),
		extractor:   NewExtractor(),
		logger:      cfg.Logger,
		now:         time.Now,
	}
	if r.releaseBase == "" {
		r.releaseBase = DefaultReleaseBase
	}
	if r.detector == nil {
		r.detector = platform.NewDetector()
	}
	if r.pathLookup == nil {
		r.pathLookup = HostPath
	}
	if r.logger == nil {
		r.logger = log.Default()
	}
	r.logger = r.logger.With("tool", Tool, "version", Version)

	return r, nil
}

// InstallDir returns the absolute install directory.
func (r *Resolver) InstallDir() string {
	return r.installDir
}

// Location detects the host platform and computes where its artifact comes
// from and goes to. It performs no filesystem or network I/O beyond what
// platform detection needs.
func (r *Resolver) Location(ctx context.Context) (*Location, error) {
	info, err := r.detector.Detect(ctx)
	if err != nil {
		return nil, err
	}
	return r.LocationFor(info), nil
}

// LocationFor computes the location for an already detected platform.
func (r *Resolver) LocationFor(info *platform.Info) *Location {
	artifact := ArtifactName(info.OS, info.Arch)
	return &Location{
		Platform:       info,
		Artifact:       artifact,
		URL:            DownloadURL(r.releaseBase, artifact),
		ArchivePath:    filepath.Join(filepath.Dir(r.installDir), artifact),
		InstallDir:     r.installDir,
		ExecutablePath: filepath.Join(r.installDir, ExecutableName(info.OS)),
	}
}

// IsInstalled reports whether the executable of loc exists as a regular file.
func (r *Resolver) IsInstalled(loc *Location) (bool, error) {
	info, err := os.Stat(loc.ExecutablePath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("%w: stat executable: %w", ErrFilesystem, err)
	}
	return info.Mode().IsRegular(), nil
}

// Resolve returns a path or command name that runs the scanner, installing
// it first when needed. See the package documentation for the order of
// checks.
func (r *Resolver) Resolve(ctx context.Context, opts Options) (string, error) {
	if opts.SearchHostPath {
		if found, err := r.pathLookup.LookPath(Tool); err == nil {
			r.logger.Debug("scanner found on PATH", "path", found)
			return Tool, nil
		}
	}

	loc, err := r.Location(ctx)
	if err != nil {
		return "", err
	}
	logger := r.logger.With("artifact", loc.Artifact)

	if opts.ReuseExisting {
		if ok, err := r.reusable(loc, logger); err != nil {
			return "", err
		} else if ok {
			logger.Debug("reusing existing install", "path", loc.ExecutablePath)
			return loc.ExecutablePath, nil
		}
	}

	lock, err := AcquireLock(ctx, r.installDir)
	if err != nil {
		return "", err
	}
	defer lock.Release()

	// Another hook may have finished the install while we waited.
	if opts.ReuseExisting {
		if ok, err := r.reusable(loc, logger); err != nil {
			return "", err
		} else if ok {
			return loc.ExecutablePath, nil
		}
	}

	if opts.CleanBeforeInstall {
		logger.Info("removing install directory", "dir", r.installDir)
		if err := RemoveTree(r.installDir); err != nil {
			return "", err
		}
	}

	if err := r.install(ctx, loc, logger); err != nil {
		return "", err
	}

	return loc.ExecutablePath, nil
}

// reusable reports whether the install at loc can be returned as is. An
// install whose receipt names another version is stale.
func (r *Resolver) reusable(loc *Location, logger log.Logger) (bool, error) {
	installed, err := r.IsInstalled(loc)
	if err != nil || !installed {
		return false, err
	}

	receipt, err := ReadReceipt(loc.InstallDir)
	if err != nil {
		// Installs made by hand or by older releases carry no receipt.
		if !os.IsNotExist(err) {
			logger.Warn("ignoring unreadable install receipt", "error", err)
		}
		return true, nil
	}
	if !receipt.IsCurrent() {
		logger.Warn("installed scanner is stale, reinstalling", "installed", receipt.Version)
		return false, nil
	}
	return true, nil
}

// install downloads, unpacks and swaps in the artifact for loc.
func (r *Resolver) install(ctx context.Context, loc *Location, logger log.Logger) error {
	start := r.now()
	logger.Info("downloading scanner", "url", loc.URL)

	// The archive is transient whatever happens next.
	defer os.Remove(loc.ArchivePath)

	if err := r.downloader.DownloadToFile(ctx, loc.URL, loc.ArchivePath); err != nil {
		return err
	}

	parent := filepath.Dir(loc.InstallDir)
	staging, err := os.MkdirTemp(parent, "."+filepath.Base(loc.InstallDir)+"-staging-")
	if err != nil {
		return fmt.Errorf("%w: create staging dir: %w", ErrFilesystem, err)
	}
	defer RemoveTree(staging)

	if err := r.extractor.Extract(loc.Platform.OS, loc.ArchivePath, staging); err != nil {
		return err
	}

	stagedExe := filepath.Join(staging, filepath.Base(loc.ExecutablePath))
	if info, err := os.Stat(stagedExe); err != nil || !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s not found in %s", ErrExtraction, filepath.Base(loc.ExecutablePath), loc.Artifact)
	}
	if !loc.Platform.IsWindows() {
		if err := SetExecutable(stagedExe); err != nil {
			return err
		}
	}

	if err := WriteReceipt(staging, Receipt{
		Tool:        Tool,
		Version:     Version,
		Artifact:    loc.Artifact,
		URL:         loc.URL,
		InstalledAt: r.now().UTC().Truncate(time.Second),
	}); err != nil {
		return err
	}

	if err := swapDir(staging, loc.InstallDir); err != nil {
		return err
	}

	logger.Info("installed scanner", "path", loc.ExecutablePath, "duration", r.now().Sub(start))
	return nil
}

// swapDir moves staging to dest. An existing dest is moved aside first and
// restored if the final rename fails.
func swapDir(staging, dest string) error {
	backup := dest + ".old"
	if err := RemoveTree(backup); err != nil {
		return err
	}

	hadDest := true
	if err := os.Rename(dest, backup); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("%w: move old install aside: %w", ErrFilesystem, err)
		}
		hadDest = false
	}

	if err := os.Rename(staging, dest); err != nil {
		if hadDest {
			os.Rename(backup, dest)
		}
		return fmt.Errorf("%w: move install into place: %w", ErrFilesystem, err)
	}

	if hadDest {
		return RemoveTree(backup)
	}
	return nil
}

// Clean removes the install directory under the install lock.
func (r *Resolver) Clean(ctx context.Context) error {
	lock, err := AcquireLock(ctx, r.installDir)
	if err != nil {
		return err
	}
	defer lock.Release()

	r.logger.Info("removing install directory", "dir", r.installDir)
	return RemoveTree(r.installDir)
}
