package binary

import (
	"fmt"
	"strings"

	"github.com/ZebulonRouseFrantzich/leakguard/internal/platform"
)

// ArtifactName returns the release file name for a platform.
// Pattern: gitleaks_{version}_{os}_{arch}{ext}, ext being .zip on Windows
// and .tar.gz elsewhere.
func ArtifactName(osFamily platform.OSFamily, arch platform.CPUArch) string {
	return fmt.Sprintf("%s_%s_%s_%s%s", Tool, Version, osFamily.Token(), arch.Token(), osFamily.ArchiveExt())
}

// BuildArtifactName maps raw host OS and architecture names to the release
// file name. Matching is case-insensitive; unknown values fail with
// platform.ErrUnsupportedPlatform or platform.ErrUnsupportedArch.
func BuildArtifactName(rawOS, rawArch string) (string, error) {
	osFamily, err := platform.ParseOSFamily(rawOS)
	if err != nil {
		return "", err
	}
	arch, err := platform.ParseCPUArch(rawArch)
	if err != nil {
		return "", err
	}
	return ArtifactName(osFamily, arch), nil
}

// DownloadURL returns the URL of an artifact below a release base.
// Pattern: {base}/v{version}/{artifact}
func DownloadURL(releaseBase, artifact string) string {
	return fmt.Sprintf("%s/v%s/%s", strings.TrimSuffix(releaseBase, "/"), Version, artifact)
}

// ExecutableName returns the file name of the scanner executable on a platform.
func ExecutableName(osFamily platform.OSFamily) string {
	return Tool + osFamily.ExecutableSuffix()
}
