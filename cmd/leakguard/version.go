package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/leakguard/internal/binary"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "leakguard %s\n", Version)
			fmt.Fprintf(out, "%s %s (pinned)\n", binary.Tool, binary.Version)
			return nil
		},
	}
}
