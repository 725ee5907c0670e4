package config

import (
	"fmt"
	"strings"
	"time"
)

// Generator writes a Config back out as a leakguard configuration file.
type Generator struct {
	indent string
	now    func() time.Time
}

// NewGenerator creates a new Lua config generator.
func NewGenerator() *Generator {
	return &Generator{
		indent: "  ",
		now:    time.Now,
	}
}

// Generate returns Lua source that parses back to cfg. Every field is
// written so the file documents the available settings.
func (g *Generator) Generate(cfg *Config) string {
	var b strings.Builder

	b.WriteString("-- leakguard configuration\n")
	b.WriteString("-- Generated: ")
	b.WriteString(g.now().UTC().Format(time.RFC3339))
	b.WriteString("\n--\n")
	b.WriteString("-- The hooks.gitleaks git config flag overrides 'enabled' when set.\n\n")

	b.WriteString(luaGlobalLeakguard + " = {\n")

	if cfg.Enabled != nil {
		g.field(&b, 1, luaFieldEnabled, fmt.Sprint(*cfg.Enabled))
	}
	g.field(&b, 1, luaFieldMode, quoteLuaString(cfg.Mode))
	g.field(&b, 1, luaFieldReportPath, quoteLuaString(cfg.ReportPath))
	g.field(&b, 1, luaFieldLogOpts, quoteLuaString(cfg.LogOpts))
	g.field(&b, 1, luaFieldLogFile, quoteLuaString(cfg.LogFile))

	b.WriteString(g.indent + luaFieldInstall + " = {\n")
	g.field(&b, 2, luaFieldDir, quoteLuaString(cfg.Install.Dir))
	g.field(&b, 2, luaFieldBase, quoteLuaString(cfg.Install.Base))
	g.field(&b, 2, luaFieldReuseExisting, fmt.Sprint(cfg.Install.ReuseExisting))
	g.field(&b, 2, luaFieldCleanBefore, fmt.Sprint(cfg.Install.CleanBeforeInstall))
	g.field(&b, 2, luaFieldSearchPath, fmt.Sprint(cfg.Install.SearchPath))
	if cfg.Install.DownloadTimeout > 0 {
		g.field(&b, 2, luaFieldDownloadTimeout, fmt.Sprint(int(cfg.Install.DownloadTimeout.Seconds())))
	}
	b.WriteString(g.indent + "},\n")

	b.WriteString("}\n")
	return b.String()
}

func (g *Generator) field(b *strings.Builder, depth int, name, value string) {
	b.WriteString(strings.Repeat(g.indent, depth))
	b.WriteString(name)
	b.WriteString(" = ")
	b.WriteString(value)
	b.WriteString(",\n")
}

// quoteLuaString quotes a string for Lua, handling special characters.
func quoteLuaString(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		`"`, `\"`,
		"\n", `\n`,
		"\r", `\r`,
		"\t", `\t`,
	)
	return `"` + r.Replace(s) + `"`
}
