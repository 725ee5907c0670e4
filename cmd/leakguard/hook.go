package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/leakguard/internal/hook"
)

func newHookCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hook",
		Short: "Manage the pre-commit and pre-push hooks",
		Long: `Install or remove the leakguard block in the git hooks. pre-commit scans
staged changes, pre-push scans history. With no hook name both are handled.`,
	}
	cmd.AddCommand(newHookInstallCmd(a), newHookUninstallCmd(a), newHookStatusCmd(a))
	return cmd
}

// hookNames validates args, defaulting to every supported hook.
func hookNames(args []string) ([]string, error) {
	if len(args) == 0 {
		return hook.Hooks(), nil
	}
	for _, name := range args {
		if _, err := hook.ModeFor(name); err != nil {
			return nil, err
		}
	}
	return args, nil
}

func newHookInstallCmd(a *app) *cobra.Command {
	var absolute, enable bool

	cmd := &cobra.Command{
		Use:   "install [pre-commit|pre-push]...",
		Short: "Add the leakguard block to hooks",
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := hookNames(args)
			if err != nil {
				return err
			}

			ws, err := a.workspace(cmd.Context())
			if err != nil {
				return err
			}
			hooksDir, err := ws.repo.HooksDir()
			if err != nil {
				return err
			}

			command := ""
			if absolute {
				if command, err = a.executable(); err != nil {
					return fmt.Errorf("locate leakguard executable: %w", err)
				}
				if resolved, err := filepath.EvalSymlinks(command); err == nil {
					command = resolved
				}
			}

			out := cmd.OutOrStdout()
			for _, name := range names {
				block, err := hook.Block(name, command)
				if err != nil {
					return err
				}
				err = hook.Install(hooksDir, name, block)
				switch {
				case errors.Is(err, hook.ErrAlreadyInstalled):
					fmt.Fprintf(out, "leakguard %s hook is already installed.\n", name)
				case err != nil:
					return fmt.Errorf("install %s hook: %w", name, err)
				default:
					fmt.Fprintf(out, "Installed %s hook (%s)\n", name, filepath.Join(hooksDir, name))
				}
			}

			if err := ws.repo.Exclude(ws.cfg.ReportPath, ws.cfg.LogFile); err != nil {
				a.logger.Warn("could not exclude scan output from git", "error", err)
			}

			if enable {
				if err := ws.repo.SetHookFlag(cmd.Context(), true); err != nil {
					return err
				}
				fmt.Fprintln(out, "Enabled scanning (hooks.gitleaks = true)")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&absolute, "absolute", false, "call this leakguard executable by absolute path instead of looking it up on PATH")
	cmd.Flags().BoolVar(&enable, "enable", false, "also set hooks.gitleaks = true")
	return cmd
}

func newHookUninstallCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "uninstall [pre-commit|pre-push]...",
		Short: "Remove the leakguard block from hooks",
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := hookNames(args)
			if err != nil {
				return err
			}
			repo, err := a.openRepo(cmd.Context())
			if err != nil {
				return err
			}
			hooksDir, err := repo.HooksDir()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			var removed int
			for _, name := range names {
				err := hook.Uninstall(hooksDir, name)
				switch {
				case errors.Is(err, hook.ErrNotInstalled):
					continue
				case err != nil:
					return fmt.Errorf("uninstall %s hook: %w", name, err)
				}
				removed++
				fmt.Fprintf(out, "Removed %s hook\n", name)
			}
			if removed == 0 {
				fmt.Fprintln(out, "No leakguard hooks were installed.")
			}
			return nil
		},
	}
}

func newHookStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status [pre-commit|pre-push]...",
		Short: "Show whether the hooks are installed",
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := hookNames(args)
			if err != nil {
				return err
			}
			repo, err := a.openRepo(cmd.Context())
			if err != nil {
				return err
			}
			hooksDir, err := repo.HooksDir()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, name := range names {
				status := hook.Check(hooksDir, name)
				fmt.Fprintf(out, "%s: %s (%s)\n", name, hookState(status), status.HookPath)
			}
			return nil
		},
	}
}
