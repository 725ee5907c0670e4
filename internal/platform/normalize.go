package platform

import (
	"fmt"
	"strings"
)

// osFamilies maps upper-cased host OS names to their release family.
// Distribution names show up here because some hosts report them as the
// system name.
var osFamilies = map[string]OSFamily{
	"WINDOWS": Windows,
	"WIN":     Windows,
	"LINUX":   Linux,
	"UBUNTU":  Linux,
	"FEDORA":  Linux,
	"DARWIN":  Darwin,
}

// cpuArches maps upper-cased machine names to their release architecture.
// Both the kernel spelling (x86_64, aarch64, i686) and the Go spelling
// (amd64, arm64, 386) are accepted.
var cpuArches = map[string]CPUArch{
	"AMD64":   X64,
	"X86_64":  X64,
	"INTEL64": X64,
	"ARM64":   ARM64,
	"AARCH64": ARM64,
	"X86":     X86,
	"386":     X86,
	"I386":    X86,
	"I686":    X86,
}

// familyMap maps distribution names to their canonical family names.
var familyMap = map[string]string{
	"debian":   FamilyDebian,
	"ubuntu":   FamilyDebian,
	"rhel":     FamilyRHEL,
	"centos":   FamilyRHEL,
	"rocky":    FamilyRHEL,
	"fedora":   FamilyFedora,
	"suse":     FamilySUSE,
	"opensuse": FamilySUSE,
	"arch":     FamilyArch,
	"manjaro":  FamilyArch,
	"alpine":   FamilyAlpine,
	"gentoo":   FamilyGentoo,
}

// ParseOSFamily converts a host OS name to its family. Matching is
// case-insensitive.
func ParseOSFamily(raw string) (OSFamily, error) {
	if f, ok := osFamilies[strings.ToUpper(strings.TrimSpace(raw))]; ok {
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedPlatform, raw)
}

// ParseCPUArch converts a machine architecture name to its release
// architecture. Matching is case-insensitive.
func ParseCPUArch(raw string) (CPUArch, error) {
	if a, ok := cpuArches[strings.ToUpper(strings.TrimSpace(raw))]; ok {
		return a, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedArch, raw)
}

// normalizePlatform converts platform IDs to lowercase for consistency.
func normalizePlatform(platform string) string {
	return strings.ToLower(strings.TrimSpace(platform))
}

// mapFamily maps distribution family strings to canonical family names.
func mapFamily(family string) string {
	normalized := strings.ToLower(strings.TrimSpace(family))
	if canonical, ok := familyMap[normalized]; ok {
		return canonical
	}
	return FamilyUnknown
}
