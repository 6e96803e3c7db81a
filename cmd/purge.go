package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/verkeep/verkeep/internal/ops"
	"github.com/verkeep/verkeep/internal/policy"
)

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Submit and track version purge jobs",
}

var purgeCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Submit a purge job on every site",
	Long: `Submits an asynchronous version-purge job per site. Deleted versions
cannot be recovered and every submission creates a new job, so the
confirmation gate is the last stop.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd)
		if err != nil {
			return err
		}

		spec, err := resolvePurgeSpec(cmd, a)
		if err != nil {
			return err
		}

		sites, err := a.resolveSites(cmd)
		if err != nil {
			return err
		}

		pterm.Println()
		pterm.DefaultHeader.WithFullWidth().
			WithBackgroundStyle(pterm.NewStyle(pterm.BgRed)).
			WithTextStyle(pterm.NewStyle(pterm.FgWhite, pterm.Bold)).
			Println("PURGE MODE (Destructive)")
		pterm.Warning.Printf("%s on %d sites. Purged versions cannot be recovered.\n", spec, len(sites))

		ok, err := confirmOrAbort(cmd, "Submit purge jobs for the whole list?")
		if err != nil || !ok {
			pterm.Info.Println("Aborted, no job was submitted.")
			return err
		}

		rep, err := a.exec.Run(cmd.Context(), sites, ops.CreateDeleteJob{API: a.api, Spec: spec})
		if err != nil {
			return reportAndErr(rep, err)
		}
		return finishReport(rep)
	},
}

var purgeStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Poll the most recent purge job of every site",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd)
		if err != nil {
			return err
		}
		sites, err := a.resolveSites(cmd)
		if err != nil {
			return err
		}

		rep, err := a.exec.Run(cmd.Context(), sites, ops.DeleteJobStatus{API: a.api})
		if err != nil {
			return reportAndErr(rep, err)
		}
		return finishReport(rep)
	},
}

func resolvePurgeSpec(cmd *cobra.Command, a *app) (policy.DeleteSpec, error) {
	source, err := sourceFlag(cmd)
	if err != nil {
		return policy.DeleteSpec{}, err
	}

	olderThan, _ := cmd.Flags().GetInt("older-than")
	keep, _ := cmd.Flags().GetInt("keep")
	if source == policy.SourceCustom && (olderThan != 0 || keep != 0) {
		spec := policy.DeleteSpec{OlderThanDays: olderThan, KeepVersions: keep}
		if err := spec.Validate(); err != nil {
			return policy.DeleteSpec{}, err
		}
		return spec, nil
	}
	return a.resolver.ResolveDeleteSpec(cmd.Context(), source)
}

func init() {
	purgeCreateCmd.Flags().String("source", "custom", "settings source: automatic, tenant or custom")
	purgeCreateCmd.Flags().Int("older-than", 0, "delete versions older than this many days")
	purgeCreateCmd.Flags().Int("keep", 0, "keep only this many newest versions")

	purgeCmd.AddCommand(purgeCreateCmd)
	purgeCmd.AddCommand(purgeStatusCmd)
	rootCmd.AddCommand(purgeCmd)
}
