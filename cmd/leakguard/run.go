package main

import (
	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/leakguard/internal/config"
	"github.com/ZebulonRouseFrantzich/leakguard/internal/scan"
)

func newRunCmd(a *app) *cobra.Command {
	var (
		mode  string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Scan the repository (hook entry point)",
		Long: `Scan the repository with gitleaks and exit with its status.

Nothing happens unless hooks.gitleaks is true in git config, or, when that
flag is unset, enabled = true in .leakguard.lua. --force skips the check.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			repo, err := a.openRepo(ctx)
			if err != nil {
				return err
			}

			// An explicit hooks.gitleaks = false returns before the
			// configuration file is read.
			flag, flagSet := false, false
			if !force {
				if flag, flagSet, err = repo.HookFlag(ctx); err != nil {
					return err
				}
				if flagSet && !flag {
					a.logger.Info("secret scan disabled", "repo", repo.Root(), "source", "git config")
					return nil
				}
			}

			cfg, err := a.loadConfig(ctx, repo.Root())
			if err != nil {
				return err
			}
			ws := &workspace{repo: repo, root: repo.Root(), cfg: cfg}

			if !force && !flagSet && !cfg.IsEnabled() {
				a.logger.Info("secret scan disabled", "repo", ws.root, "source", config.FileName)
				return nil
			}

			if mode == "" {
				mode = ws.cfg.Mode
			}
			scanMode, err := scan.ParseMode(mode)
			if err != nil {
				return err
			}

			resolver, err := a.newResolver(ws.cfg, ws.root)
			if err != nil {
				return err
			}
			executable, err := resolver.Resolve(ctx, resolveOptions(ws.cfg))
			if err != nil {
				return err
			}

			runner := scan.NewRunner(ws.root, ws.cfg.LogFilePath(ws.root), a.logger)
			runner.Stdin = cmd.InOrStdin()
			runner.Stdout = cmd.OutOrStdout()
			runner.Stderr = cmd.ErrOrStderr()

			code, err := runner.Run(ctx, executable, scan.Options{
				Mode:       scanMode,
				ReportPath: ws.cfg.ReportPath,
				LogOpts:    ws.cfg.LogOpts,
			})
			if err != nil {
				return err
			}
			if code != 0 {
				return &ExitError{Code: code}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", "", "scan mode: protect (staged changes) or detect (history)")
	cmd.Flags().BoolVar(&force, "force", false, "scan even when the hook is disabled")
	return cmd
}

// scanEnabled applies the gate: the git config flag when set, otherwise
// the configuration file.
func scanEnabled(cmd *cobra.Command, ws *workspace) (bool, error) {
	flag, set, err := ws.repo.HookFlag(cmd.Context())
	if err != nil {
		return false, err
	}
	if set {
		return flag, nil
	}
	return ws.cfg.IsEnabled(), nil
}
