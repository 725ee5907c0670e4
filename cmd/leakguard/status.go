package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/leakguard/internal/binary"
	"github.com/ZebulonRouseFrantzich/leakguard/internal/hook"
	"github.com/ZebulonRouseFrantzich/leakguard/internal/platform"
)

func newStatusCmd(a *app) *cobra.Command {
	var rawOS, rawArch string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show platform, install and hook state",
		Long: `Show the detected platform, the release artifact it maps to, where it is
installed and whether the hooks are active.

--os and --arch compute the artifact for another machine, using the same
names the host reports (e.g. --os Windows --arch AMD64).`,
		Args: cobra.NoArgs,
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

			var loc *binary.Location
			if rawOS != "" || rawArch != "" {
				info, err := overridePlatform(ctx, a, rawOS, rawArch)
				if err != nil {
					return err
				}
				loc = resolver.LocationFor(info)
			} else if loc, err = resolver.Location(ctx); err != nil {
				return err
			}

			installed, err := resolver.IsInstalled(loc)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "Platform:\t%s/%s (%s %s)\n", loc.Platform.OS, loc.Platform.Arch, loc.Platform.RawOS, loc.Platform.RawArch)
			if distro := loc.Platform.GetDistro(); distro != nil {
				fmt.Fprintf(w, "Distro:\t%s %s (%s)\n", distro.ID, distro.Version, distro.Family)
			}
			fmt.Fprintf(w, "Scanner:\t%s %s\n", binary.Tool, binary.Version)
			fmt.Fprintf(w, "Artifact:\t%s\n", loc.Artifact)
			fmt.Fprintf(w, "URL:\t%s\n", loc.URL)
			fmt.Fprintf(w, "Install dir:\t%s\n", loc.InstallDir)
			fmt.Fprintf(w, "Executable:\t%s\n", loc.ExecutablePath)
			fmt.Fprintf(w, "Installed:\t%s\n", yesNo(installed))

			if receipt, err := binary.ReadReceipt(loc.InstallDir); err == nil {
				current := ""
				if !receipt.IsCurrent() {
					current = " (stale)"
				}
				fmt.Fprintf(w, "Receipt:\t%s %s%s, installed %s\n", receipt.Tool, receipt.Version, current, receipt.InstalledAt.Local().Format("2006-01-02 15:04"))
			} else if !os.IsNotExist(err) {
				fmt.Fprintf(w, "Receipt:\tunreadable: %v\n", err)
			}

			enabled, err := scanEnabled(cmd, ws)
			if err != nil {
				fmt.Fprintf(w, "Enabled:\tunknown: %v\n", err)
			} else {
				fmt.Fprintf(w, "Enabled:\t%s\n", yesNo(enabled))
			}
			fmt.Fprintf(w, "Mode:\t%s\n", ws.cfg.Mode)

			if hooksDir, err := ws.repo.HooksDir(); err == nil {
				for _, name := range hook.Hooks() {
					fmt.Fprintf(w, "Hook %s:\t%s\n", name, hookState(hook.Check(hooksDir, name)))
				}
			}

			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&rawOS, "os", "", "compute the artifact for this OS name")
	cmd.Flags().StringVar(&rawArch, "arch", "", "compute the artifact for this machine architecture")
	return cmd
}

// overridePlatform fills a missing --os or --arch from the host.
func overridePlatform(ctx context.Context, a *app, rawOS, rawArch string) (*platform.Info, error) {
	if rawOS == "" || rawArch == "" {
		host, err := a.detector.Detect(ctx)
		if err != nil {
			return nil, err
		}
		if rawOS == "" {
			rawOS = host.RawOS
		}
		if rawArch == "" {
			rawArch = host.RawArch
		}
	}
	return platform.FromRaw(rawOS, rawArch)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func hookState(s hook.Status) string {
	switch {
	case s.Installed:
		return "installed"
	case s.HasOther:
		return "not installed (other hook present)"
	default:
		return "not installed"
	}
}
