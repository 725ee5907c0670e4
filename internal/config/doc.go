// Package config loads the per-repository leakguard settings.
//
// Settings live in an optional .leakguard.lua file at the repository root.
// The file is plain Lua and must assign a global leakguard table:
//
//	leakguard = {
//	  enabled = true,
//	  mode = "protect",
//	  report_path = "report.json",
//	  log_opts = "--since=2023-05-01",
//	  log_file = ".git/leakguard.log",
//	  install = {
//	    base = "home",
//	    reuse_existing = true,
//	    search_path = platform.is_windows == false,
//	  },
//	}
//
// # Sandboxing
//
// The file runs in a gopher-lua VM with the os, io and debug libraries and
// every code loading function removed, so a configuration can compute values
// but cannot touch the host. A read-only platform table describing the host
// (see platform.InjectPlatformTable) is available for conditional settings.
// Evaluation stops when the context passed to the parser ends.
//
// # Precedence
//
// A missing file yields Defaults. Fields left out of the file keep their
// default. LEAKGUARD_INSTALL_DIR, when set, replaces install.dir. Whether the
// hook runs at all is decided by the caller: the hooks.gitleaks git config
// flag wins over the enabled field of this file.
//
// # Errors
//
// Syntax errors, a missing leakguard table and fields of the wrong type are
// reported as *ParseError. Values of the right type that are out of range
// are reported as *ValidationError wrapped in a *ParseError.
package config
