package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/leakguard/internal/binary"
	"github.com/ZebulonRouseFrantzich/leakguard/internal/config"
	"github.com/ZebulonRouseFrantzich/leakguard/internal/git"
	"github.com/ZebulonRouseFrantzich/leakguard/internal/log"
	"github.com/ZebulonRouseFrantzich/leakguard/internal/platform"
)

// app holds the global flags and the collaborators commands share. Tests
// replace the collaborators to stay offline.
type app struct {
	verbose  bool
	debug    bool
	repoPath string

	logger      log.Logger
	detector    platform.Detector
	httpClient  binary.HTTPClient
	pathLookup  binary.PathLookup
	releaseBase string
	getenv      func(string) string
	executable  func() (string, error)
}

func newApp() *app {
	return &app{
		logger:     log.NewNoop(),
		detector:   platform.NewDetector(),
		getenv:     os.Getenv,
		executable: os.Executable,
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "leakguard",
		Short: "Run gitleaks from git hooks",
		Long: `leakguard makes sure a pinned gitleaks release is installed for this machine
and runs it from the pre-commit and pre-push hooks.

Scanning is gated by the hooks.gitleaks git config flag:

  git config hooks.gitleaks true`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.logger = log.NewText(cmd.ErrOrStderr(), a.verbose, a.debug)
			log.SetDefault(a.logger)
			return nil
		},
	}

	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log progress to stderr")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "log debug details to stderr")
	root.PersistentFlags().StringVarP(&a.repoPath, "repo", "C", ".", "path inside the repository to work on")

	root.AddCommand(
		newRunCmd(a),
		newResolveCmd(a),
		newCleanCmd(a),
		newStatusCmd(a),
		newHookCmd(a),
		newEnableCmd(a, true),
		newEnableCmd(a, false),
		newInitCmd(a),
		newVersionCmd(),
	)

	return root
}

// openRepo opens the repository selected by --repo.
func (a *app) openRepo(ctx context.Context) (*git.Client, error) {
	return git.Open(ctx, a.repoPath)
}

// loadConfig reads the configuration file of the repository at root.
func (a *app) loadConfig(ctx context.Context, root string) (*config.Config, error) {
	parser := config.NewParser(a.detector, config.WithLogger(a.logger), config.WithGetenv(a.getenv))
	cfg, err := parser.Load(ctx, root)
	var parseErr *config.ParseError
	if errors.As(err, &parseErr) {
		return nil, fmt.Errorf("%s: %s", config.FileName, config.FormatError(err, a.debug))
	}
	return cfg, err
}

// newResolver builds the resolver for cfg.
func (a *app) newResolver(cfg *config.Config, root string) (*binary.Resolver, error) {
	installDir, err := cfg.InstallDir(root)
	if err != nil {
		return nil, err
	}
	return binary.NewResolver(binary.Config{
		InstallDir:      installDir,
		ReleaseBase:     a.releaseBase,
		DownloadTimeout: cfg.Install.DownloadTimeout,
		HTTPClient:      a.httpClient,
		Detector:        a.detector,
		PathLookup:      a.pathLookup,
		Logger:          a.logger,
	})
}

// resolveOptions maps the install settings to resolver options.
func resolveOptions(cfg *config.Config) binary.Options {
	return binary.Options{
		ReuseExisting:      cfg.Install.ReuseExisting,
		CleanBeforeInstall: cfg.Install.CleanBeforeInstall,
		SearchHostPath:     cfg.Install.SearchPath,
	}
}

// workspace is what most commands need: the repository, its root and its
// configuration.
type workspace struct {
	repo *git.Client
	root string
	cfg  *config.Config
}

func (a *app) workspace(ctx context.Context) (*workspace, error) {
	repo, err := a.openRepo(ctx)
	if err != nil {
		return nil, err
	}
	cfg, err := a.loadConfig(ctx, repo.Root())
	if err != nil {
		return nil, err
	}
	return &workspace{repo: repo, root: repo.Root(), cfg: cfg}, nil
}
