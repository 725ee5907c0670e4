package config

// FileName is the configuration file looked up at the repository root.
const FileName = ".leakguard.lua"

// EnvInstallDir overrides install.dir when set.
const EnvInstallDir = "LEAKGUARD_INSTALL_DIR"

// MaxConfigSize is the largest configuration file the parser reads.
const MaxConfigSize = 256 * 1024

// Lua schema field names and globals
const (
	luaGlobalLeakguard      = "leakguard"
	luaFieldEnabled         = "enabled"
	luaFieldMode            = "mode"
	luaFieldReportPath      = "report_path"
	luaFieldLogOpts         = "log_opts"
	luaFieldLogFile         = "log_file"
	luaFieldInstall         = "install"
	luaFieldDir             = "dir"
	luaFieldBase            = "base"
	luaFieldReuseExisting   = "reuse_existing"
	luaFieldCleanBefore     = "clean_before_install"
	luaFieldSearchPath      = "search_path"
	luaFieldDownloadTimeout = "download_timeout"
)
