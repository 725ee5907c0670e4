package binary

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"

	"github.com/ZebulonRouseFrantzich/leakguard/internal/platform"
)

// Extractor unpacks release archives.
type Extractor struct{}

// NewExtractor creates a new extractor
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract unpacks archivePath into destDir, creating destDir if needed.
// Windows releases are zip containers, everything else is a gzip-compressed
// tar.
func (e *Extractor) Extract(osFamily platform.OSFamily, archivePath, destDir string) error {
	if osFamily == platform.Windows {
		return e.ExtractZip(archivePath, destDir)
	}
	return e.ExtractTarGz(archivePath, destDir)
}

// ExtractTarGz extracts a .tar.gz archive to a destination directory
func (e *Extractor) ExtractTarGz(archivePath, destDir string) error {
	archiveFile, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("%w: open archive: %w", ErrFilesystem, err)
	}
	defer archiveFile.Close()

	gzipReader, err := gzip.NewReader(archiveFile)
	if err != nil {
		return fmt.Errorf("%w: create gzip reader: %w", ErrExtraction, err)
	}
	defer gzipReader.Close()

	tarReader := tar.NewReader(gzipReader)

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("%w: create dest dir: %w", ErrFilesystem, err)
	}

	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("%w: read tar header: %w", ErrExtraction, err)
		}

		target, err := entryTarget(destDir, header.Name)
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("%w: create directory %s: %w", ErrFilesystem, target, err)
			}

		case tar.TypeReg:
			if err := writeEntry(target, tarReader, os.FileMode(header.Mode)); err != nil {
				return err
			}

		case tar.TypeSymlink:
			if err := validateSymlinkTarget(header.Linkname, target, destDir); err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return fmt.Errorf("%w: create parent dir for %s: %w", ErrFilesystem, target, err)
			}
			if err := os.Symlink(header.Linkname, target); err != nil {
				return fmt.Errorf("%w: create symlink %s: %w", ErrFilesystem, target, err)
			}

		default:
			// Skip other types (char devices, block devices, etc.)
			continue
		}
	}

	return nil
}

// ExtractZip extracts a .zip archive to a destination directory
func (e *Extractor) ExtractZip(archivePath, destDir string) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: open archive: %w", ErrFilesystem, err)
		}
		return fmt.Errorf("%w: open zip: %w", ErrExtraction, err)
	}
	defer r.Close()

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("%w: create dest dir: %w", ErrFilesystem, err)
	}

	for _, f := range r.File {
		target, err := entryTarget(destDir, f.Name)
		if err != nil {
			return err
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("%w: create directory %s: %w", ErrFilesystem, target, err)
			}
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("%w: open %s in zip: %w", ErrExtraction, f.Name, err)
		}
		err = writeEntry(target, rc, f.Mode())
		rc.Close()
		if err != nil {
			return err
		}
	}

	return nil
}

// entryTarget joins an archive entry name onto destDir and rejects names
// that would land outside of it.
func entryTarget(destDir, name string) (string, error) {
	target := filepath.Join(destDir, strings.TrimPrefix(name, "./"))
	if !isPathWithinDirectory(target, destDir) {
		return "", fmt.Errorf("%w: illegal file path: %s", ErrExtraction, name)
	}
	return target, nil
}

// writeEntry copies one archive member to target. Entries without
// permission bits (zips written on Windows) get 0644.
func writeEntry(target string, r io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("%w: create parent dir for %s: %w", ErrFilesystem, target, err)
	}

	perm := mode.Perm()
	if perm == 0 {
		perm = 0644
	}

	outFile, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("%w: create file %s: %w", ErrFilesystem, target, err)
	}

	if _, err := io.Copy(outFile, r); err != nil {
		outFile.Close()
		return fmt.Errorf("%w: write file %s: %w", ErrExtraction, target, err)
	}

	if err := outFile.Close(); err != nil {
		return fmt.Errorf("%w: close file %s: %w", ErrFilesystem, target, err)
	}
	return nil
}

// isPathWithinDirectory reports whether targetPath is basePath or below it.
func isPathWithinDirectory(targetPath, basePath string) bool {
	absTarget, err := filepath.Abs(targetPath)
	if err != nil {
		return false
	}
	absBase, err := filepath.Abs(basePath)
	if err != nil {
		return false
	}
	return absTarget == absBase || strings.HasPrefix(absTarget, absBase+string(os.PathSeparator))
}

// validateSymlinkTarget rejects absolute link targets and relative ones that
// resolve outside destDir.
func validateSymlinkTarget(linkTarget, linkLocation, destDir string) error {
	if filepath.IsAbs(linkTarget) {
		return fmt.Errorf("%w: absolute symlink target: %s -> %s", ErrExtraction, linkLocation, linkTarget)
	}

	resolved := filepath.Join(filepath.Dir(linkLocation), linkTarget)
	if !isPathWithinDirectory(resolved, destDir) {
		return fmt.Errorf("%w: symlink escapes destination: %s -> %s", ErrExtraction, linkLocation, linkTarget)
	}
	return nil
}

// SetExecutable sets executable permissions on a file
func SetExecutable(path string) error {
	if err := os.Chmod(path, 0755); err != nil {
		return fmt.Errorf("%w: set executable: %w", ErrFilesystem, err)
	}
	return nil
}
