package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newEnableCmd builds "enable" or "disable", which set hooks.gitleaks in the
// repository config.
func newEnableCmd(a *app, enable bool) *cobra.Command {
	use, short := "enable", "Turn scanning on for this repository"
	if !enable {
		use, short = "disable", "Turn scanning off for this repository"
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := a.openRepo(cmd.Context())
			if err != nil {
				return err
			}
			if err := repo.SetHookFlag(cmd.Context(), enable); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "hooks.gitleaks = %t\n", enable)
			return nil
		},
	}
}
