// Package binary makes sure a runnable gitleaks executable is available.
//
// The Resolver computes the release artifact for the host platform,
// downloads it once, unpacks it into the install directory and hands back
// the path of the executable. Later runs reuse the existing install.
//
// # Resolve order
//
//  1. If host path search is enabled and gitleaks is already on PATH, its
//     name is returned and nothing is downloaded.
//  2. The platform is detected and the artifact name computed. Unsupported
//     platforms fail here, before any I/O.
//  3. If reuse is enabled and the executable exists, it is returned.
//  4. If clean-before-install is enabled, the install directory is removed.
//  5. The artifact is downloaded once. There are no retries.
//  6. The archive is unpacked into a staging directory next to the install
//     directory (zip on Windows, tar.gz elsewhere) which then replaces it.
//  7. The archive is deleted.
//
// Steps 4 to 7 run under a lock file so two hooks firing at the same time
// do not unpack over each other.
//
// # Errors
//
// Failures wrap one of ErrDownload, ErrExtraction or ErrFilesystem, or the
// platform package's ErrUnsupportedPlatform and ErrUnsupportedArch. None of
// them are retried.
//
// # Usage
//
//	r, err := binary.NewResolver(binary.Config{InstallDir: dir})
//	if err != nil {
//	    return err
//	}
//	exe, err := r.Resolve(ctx, binary.Options{ReuseExisting: true, SearchHostPath: true})
package binary
