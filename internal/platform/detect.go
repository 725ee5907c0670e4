package platform

import (
	"context"
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v4/host"
)

// RealDetector implements Detector by asking the running host.
type RealDetector struct {
	// hostInfo is host.InfoWithContext outside tests.
	hostInfo func(ctx context.Context) (*host.InfoStat, error)
}

// NewDetector creates a new platform detector.
func NewDetector() Detector {
	return &RealDetector{hostInfo: host.InfoWithContext}
}

// Detect reads the host OS name and machine architecture and converts them
// to their release families.
//
// The machine architecture is the kernel's own name for it (the uname -m
// value on Unix), as reported by gopsutil. When gopsutil cannot answer,
// runtime.GOOS and runtime.GOARCH are used instead. Distribution details are
// filled in on Linux when available and left empty otherwise.
func (d *RealDetector) Detect(ctx context.Context) (*Info, error) {
	rawOS, rawArch := runtime.GOOS, runtime.GOARCH

	var stat *host.InfoStat
	if d.hostInfo != nil {
		// gopsutil returns partial data together with an error when some
		// probe fails, so the error is ignored and whatever came back is used.
		stat, _ = d.hostInfo(ctx)
		if ctx.Err() != nil {
			return nil, fmt.Errorf("platform detection cancelled: %w", ctx.Err())
		}
	}
	if stat != nil {
		if stat.OS != "" {
			rawOS = stat.OS
		}
		if stat.KernelArch != "" {
			rawArch = stat.KernelArch
		}
	}

	info, err := FromRaw(rawOS, rawArch)
	if err != nil {
		return nil, fmt.Errorf("platform detection failed: %w", err)
	}

	if info.OS == Linux && stat != nil {
		platform := normalizePlatform(stat.Platform)
		if platform != "" {
			info.Platform = platform
			info.Family = mapFamily(stat.PlatformFamily)
			info.Version = normalizePlatform(stat.PlatformVersion)
		}
	}

	return info, nil
}
