// Package git reads the repository settings leakguard depends on through
// go-git: the worktree root, the hooks.gitleaks flag and the hooks
// directory. No git executable is needed.
package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/storage/filesystem"
)

// Common Git errors
var (
	ErrNotAGitRepo  = errors.New("not a git repository")
	ErrInvalidValue = errors.New("invalid boolean config value")
)

// Config keys read by leakguard.
const (
	HooksSection  = "hooks"
	HookFlagKey   = "gitleaks"
	coreSection   = "core"
	hooksPathKey  = "hooksPath"
	defaultHooks  = "hooks"
	commonDirFile = "commondir"
)

// Client gives access to one repository.
type Client struct {
	repo   *gogit.Repository
	root   string
	gitDir string
	// loadGlobal reads the user-level git config. Tests replace it.
	loadGlobal func() (*config.Config, error)
}

// Open finds the repository containing path, walking up to parent
// directories like git does.
func Open(ctx context.Context, path string) (*Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}

	repo, err := gogit.PlainOpenWithOptions(abs, &gogit.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if errors.Is(err, gogit.ErrRepositoryNotExists) {
		return nil, fmt.Errorf("%w: %s", ErrNotAGitRepo, abs)
	}
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}

	c := &Client{
		repo:       repo,
		loadGlobal: func() (*config.Config, error) { return config.LoadConfig(config.GlobalScope) },
	}

	if storage, ok := repo.Storer.(*filesystem.Storage); ok {
		c.gitDir = storage.Filesystem().Root()
	}

	wt, err := repo.Worktree()
	switch {
	case err == nil:
		c.root = wt.Filesystem.Root()
	case errors.Is(err, gogit.ErrIsBareRepository):
		c.root = c.gitDir
	default:
		return nil, fmt.Errorf("get worktree: %w", err)
	}

	return c, nil
}

// Root returns the worktree root, or the git directory of a bare repository.
func (c *Client) Root() string {
	return c.root
}

// GitDir returns the repository's git directory.
func (c *Client) GitDir() string {
	return c.gitDir
}

// HookFlag reads hooks.gitleaks. set is false when neither the repository
// nor the user config defines it. The repository value wins.
func (c *Client) HookFlag(ctx context.Context) (enabled, set bool, err error) {
	if err := ctx.Err(); err != nil {
		return false, false, fmt.Errorf("context cancelled: %w", err)
	}

	local, err := c.repo.Config()
	if err != nil {
		return false, false, fmt.Errorf("read repo config: %w", err)
	}
	if value, ok := rawOption(local, HooksSection, HookFlagKey); ok {
		enabled, err := ParseBool(value)
		return enabled, true, err
	}

	global, err := c.loadGlobal()
	if err != nil {
		// A broken ~/.gitconfig should not block commits.
		return false, false, nil
	}
	if value, ok := rawOption(global, HooksSection, HookFlagKey); ok {
		enabled, err := ParseBool(value)
		return enabled, true, err
	}

	return false, false, nil
}

// SetHookFlag writes hooks.gitleaks to the repository config.
func (c *Client) SetHookFlag(ctx context.Context, enabled bool) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}

	cfg, err := c.repo.Config()
	if err != nil {
		return fmt.Errorf("read repo config: %w", err)
	}

	cfg.Raw.Section(HooksSection).SetOption(HookFlagKey, fmt.Sprint(enabled))

	if err := c.repo.Storer.SetConfig(cfg); err != nil {
		return fmt.Errorf("write repo config: %w", err)
	}
	return nil
}

// HooksDir returns the directory git runs hooks from. core.hooksPath is
// honored; relative values are relative to the worktree root. Linked
// worktrees share the hooks of their main repository.
func (c *Client) HooksDir() (string, error) {
	cfg, err := c.repo.Config()
	if err != nil {
		return "", fmt.Errorf("read repo config: %w", err)
	}

	if hooksPath, ok := rawOption(cfg, coreSection, hooksPathKey); ok && hooksPath != "" {
		if hooksPath == "~" || strings.HasPrefix(hooksPath, "~/") {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("expand core.hooksPath: %w", err)
			}
			hooksPath = filepath.Join(home, strings.TrimPrefix(hooksPath[1:], "/"))
		}
		if !filepath.IsAbs(hooksPath) {
			hooksPath = filepath.Join(c.root, hooksPath)
		}
		return filepath.Clean(hooksPath), nil
	}

	if c.gitDir == "" {
		return "", fmt.Errorf("%w: repository has no git directory", ErrNotAGitRepo)
	}
	return filepath.Join(c.commonDir(), defaultHooks), nil
}

// commonDir follows the commondir file of a linked worktree.
func (c *Client) commonDir() string {
	data, err := os.ReadFile(filepath.Join(c.gitDir, commonDirFile))
	if err != nil {
		return c.gitDir
	}
	dir := strings.TrimSpace(string(data))
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(c.gitDir, dir)
	}
	return filepath.Clean(dir)
}

func rawOption(cfg *config.Config, section, key string) (string, bool) {
	if cfg == nil || cfg.Raw == nil || !cfg.Raw.HasSection(section) {
		return "", false
	}
	sec := cfg.Raw.Section(section)
	if !sec.Options.Has(key) {
		return "", false
	}
	return sec.Options.Get(key), true
}

// ParseBool interprets a git config boolean. Like git, it accepts
// true/yes/on/1 and false/no/off/0 in any case; an empty value is false.
func ParseBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "yes", "on", "1":
		return true, nil
	case "false", "no", "off", "0", "":
		return false, nil
	default:
		return false, fmt.Errorf("%w: %q", ErrInvalidValue, value)
	}
}
