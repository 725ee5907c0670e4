package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/ZebulonRouseFrantzich/leakguard/internal/log"
	"github.com/ZebulonRouseFrantzich/leakguard/internal/platform"
)

// Parser evaluates leakguard configuration files.
type Parser struct {
	detector platform.Detector
	logger   log.Logger
	getenv   func(string) string
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithLogger sets the logger used for warnings about the file.
func WithLogger(l log.Logger) ParserOption {
	return func(p *Parser) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithGetenv replaces os.Getenv for environment overrides.
func WithGetenv(getenv func(string) string) ParserOption {
	return func(p *Parser) {
		if getenv != nil {
			p.getenv = getenv
		}
	}
}

// NewParser creates a parser. A nil detector leaves the platform table out
// of the VM.
func NewParser(detector platform.Detector, opts ...ParserOption) *Parser {
	p := &Parser{
		detector: detector,
		logger:   log.Default(),
		getenv:   os.Getenv,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Load reads FileName from repoRoot. A missing file yields Defaults.
// Environment overrides are applied in both cases.
func (p *Parser) Load(ctx context.Context, repoRoot string) (*Config, error) {
	path := filepath.Join(repoRoot, FileName)

	cfg, err := p.ParseFile(ctx, path)
	if errors.Is(err, os.ErrNotExist) {
		p.logger.Debug("no configuration file, using defaults", "path", path)
		cfg = Defaults()
	} else if err != nil {
		return nil, err
	}

	cfg.applyEnv(p.getenv)
	return cfg, nil
}

// ParseFile evaluates the configuration file at path. Environment overrides
// are not applied.
func (p *Parser) ParseFile(ctx context.Context, path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxConfigSize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(data) > MaxConfigSize {
		return nil, &ParseError{
			Message: "configuration file too large",
			Detail:  fmt.Sprintf("%s exceeds %d bytes", path, MaxConfigSize),
		}
	}

	return p.ParseString(ctx, string(data))
}

// ParseString evaluates configuration source held in memory.
func (p *Parser) ParseString(ctx context.Context, luaCode string) (*Config, error) {
	L := newSandboxedVM()
	defer L.Close()

	if p.detector != nil {
		platformInfo, err := p.detector.Detect(ctx)
		if err != nil {
			return nil, fmt.Errorf("platform detection failed: %w", err)
		}
		if err := platform.InjectPlatformTable(L, platformInfo); err != nil {
			return nil, fmt.Errorf("inject platform table: %w", err)
		}
	}

	L.SetContext(ctx)
	if err := L.DoString(luaCode); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("configuration evaluation cancelled: %w", ctxErr)
		}
		return nil, &ParseError{
			Message: "Lua syntax error",
			Detail:  err.Error(),
		}
	}

	return p.extractConfig(L)
}

// ParseError represents a config parsing error with friendly message.
type ParseError struct {
	Message string // User-friendly message
	Detail  string // Technical details (raw Lua error)
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Message, e.Detail)
}

// extractConfig reads the global leakguard table on top of Defaults.
func (p *Parser) extractConfig(L *lua.LState) (*Config, error) {
	root := L.GetGlobal(luaGlobalLeakguard)
	if root.Type() != lua.LTTable {
		return nil, &ParseError{
			Message: "missing or invalid 'leakguard' table",
			Detail:  fmt.Sprintf("expected table, got %s", root.Type()),
		}
	}
	table := root.(*lua.LTable)
	cfg := Defaults()

	p.warnUnknown(table, luaGlobalLeakguard, luaFieldEnabled, luaFieldMode, luaFieldReportPath,
		luaFieldLogOpts, luaFieldLogFile, luaFieldInstall)

	if v, ok, err := boolField(table, luaGlobalLeakguard, luaFieldEnabled); err != nil {
		return nil, err
	} else if ok {
		cfg.Enabled = &v
	}

	strFields := []struct {
		name string
		dst  *string
	}{
		{luaFieldMode, &cfg.Mode},
		{luaFieldReportPath, &cfg.ReportPath},
		{luaFieldLogOpts, &cfg.LogOpts},
		{luaFieldLogFile, &cfg.LogFile},
	}
	for _, f := range strFields {
		v, ok, err := stringField(table, luaGlobalLeakguard, f.name)
		if err != nil {
			return nil, err
		}
		if ok {
			*f.dst = v
		}
	}
	cfg.Mode = strings.ToLower(cfg.Mode)

	switch install := table.RawGetString(luaFieldInstall); install.Type() {
	case lua.LTNil:
	case lua.LTTable:
		if err := p.extractInstall(install.(*lua.LTable), &cfg.Install); err != nil {
			return nil, err
		}
	default:
		return nil, typeError(luaGlobalLeakguard+"."+luaFieldInstall, "table", install)
	}

	if err := cfg.Validate(); err != nil {
		return nil, &ParseError{
			Message: "invalid configuration",
			Detail:  err.Error(),
		}
	}

	return cfg, nil
}

// extractInstall reads the install sub-table into dst.
func (p *Parser) extractInstall(table *lua.LTable, dst *InstallConfig) error {
	prefix := luaGlobalLeakguard + "." + luaFieldInstall
	p.warnUnknown(table, prefix, luaFieldDir, luaFieldBase, luaFieldReuseExisting,
		luaFieldCleanBefore, luaFieldSearchPath, luaFieldDownloadTimeout)

	if v, ok, err := stringField(table, prefix, luaFieldDir); err != nil {
		return err
	} else if ok {
		dst.Dir = v
	}
	if v, ok, err := stringField(table, prefix, luaFieldBase); err != nil {
		return err
	} else if ok {
		dst.Base = strings.ToLower(v)
	}

	boolFields := []struct {
		name string
		dst  *bool
	}{
		{luaFieldReuseExisting, &dst.ReuseExisting},
		{luaFieldCleanBefore, &dst.CleanBeforeInstall},
		{luaFieldSearchPath, &dst.SearchPath},
	}
	for _, f := range boolFields {
		v, ok, err := boolField(table, prefix, f.name)
		if err != nil {
			return err
		}
		if ok {
			*f.dst = v
		}
	}

	switch v := table.RawGetString(luaFieldDownloadTimeout); v.Type() {
	case lua.LTNil:
	case lua.LTNumber:
		seconds := float64(lua.LVAsNumber(v))
		dst.DownloadTimeout = time.Duration(seconds * float64(time.Second))
	default:
		return typeError(prefix+"."+luaFieldDownloadTimeout, "number", v)
	}

	return nil
}

// warnUnknown logs keys of table that are not in known. Unknown keys are
// not an error so older leakguard releases can read newer files.
func (p *Parser) warnUnknown(table *lua.LTable, prefix string, known ...string) {
	table.ForEach(func(key, _ lua.LValue) {
		name := key.String()
		for _, k := range known {
			if k == name {
				return
			}
		}
		p.logger.Warn("ignoring unknown configuration field", "field", prefix+"."+name)
	})
}

func stringField(table *lua.LTable, prefix, name string) (string, bool, error) {
	v := table.RawGetString(name)
	switch v.Type() {
	case lua.LTNil:
		return "", false, nil
	case lua.LTString:
		return v.String(), true, nil
	default:
		return "", false, typeError(prefix+"."+name, "string", v)
	}
}

func boolField(table *lua.LTable, prefix, name string) (bool, bool, error) {
	v := table.RawGetString(name)
	switch v.Type() {
	case lua.LTNil:
		return false, false, nil
	case lua.LTBool:
		return bool(v.(lua.LBool)), true, nil
	default:
		return false, false, typeError(prefix+"."+name, "boolean", v)
	}
}

func typeError(field, want string, got lua.LValue) *ParseError {
	return &ParseError{
		Message: "invalid field type",
		Detail:  fmt.Sprintf("%s: expected %s, got %s", field, want, got.Type()),
	}
}

// FormatError formats a ParseError for user display.
// In verbose mode, show the raw Lua error. Otherwise, show friendly message.
func FormatError(err error, verbose bool) string {
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		if verbose {
			return fmt.Sprintf("%s\n\nDetails:\n%s", parseErr.Message, parseErr.Detail)
		}
		detail := parseErr.Detail
		if idx := strings.Index(detail, "stack traceback"); idx > 0 {
			detail = strings.TrimSpace(detail[:idx])
		}
		return fmt.Sprintf("%s: %s", parseErr.Message, detail)
	}
	return err.Error()
}
