package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newResolveCmd(a *app) *cobra.Command {
	var clean, noReuse, noPath bool

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Install gitleaks if needed and print its path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ws, err := a.workspace(ctx)
			if err != nil {
				return err
			}

			resolver, err := a.newResolver(ws.cfg, ws.root)
			if err != nil {
				return err
			}

			opts := resolveOptions(ws.cfg)
			if clean {
				opts.CleanBeforeInstall = true
			}
			if noReuse {
				opts.ReuseExisting = false
			}
			if noPath {
				opts.SearchHostPath = false
			}

			path, err := resolver.Resolve(ctx, opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&clean, "clean", false, "remove the install directory before installing")
	cmd.Flags().BoolVar(&noReuse, "no-reuse", false, "reinstall even when an install exists")
	cmd.Flags().BoolVar(&noPath, "no-path", false, "ignore a gitleaks found on PATH")
	return cmd
}

func newCleanCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove the gitleaks install directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ws, err := a.workspace(ctx)
			if err != nil {
				return err
			}
			resolver, err := a.newResolver(ws.cfg, ws.root)
			if err != nil {
				return err
			}
			if err := resolver.Clean(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", resolver.InstallDir())
			return nil
		},
	}
}
