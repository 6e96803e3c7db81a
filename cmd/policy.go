package cmd

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/verkeep/verkeep/internal/batch"
	"github.com/verkeep/verkeep/internal/ops"
	"github.com/verkeep/verkeep/internal/policy"
	"github.com/verkeep/verkeep/internal/report"
)

var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Manage version-retention policy across the fleet",
}

var policyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Read the current version policy of every site",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd)
		if err != nil {
			return err
		}
		sites, err := a.resolveSites(cmd)
		if err != nil {
			return err
		}

		rep, err := a.exec.Run(cmd.Context(), sites, ops.GetPolicy{API: a.api})
		if err != nil {
			return reportAndErr(rep, err)
		}
		return finishReport(rep)
	},
}

var policySetCmd = &cobra.Command{
	Use:   "set",
	Short: "Apply one version policy to every site",
	Long: `Resolves a version policy from the chosen source, shows what will be
applied, and after confirmation applies it to every site in order. One
site's failure never stops the rest of the fleet.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd)
		if err != nil {
			return err
		}

		resolved, err := resolveSetPolicy(cmd, a)
		if err != nil {
			return err
		}

		sites, err := a.resolveSites(cmd)
		if err != nil {
			return err
		}

		if diff, _ := cmd.Flags().GetBool("diff"); diff {
			if err := previewPolicyDiff(cmd, a, sites, resolved); err != nil {
				return err
			}
		}

		pterm.Info.Printf("Will apply to %d sites: %s\n", len(sites), resolved)
		ok, err := confirmOrAbort(cmd, "Apply this version policy to the whole list?")
		if err != nil || !ok {
			pterm.Info.Println("Aborted, no site was touched.")
			return err
		}

		rep, err := a.exec.Run(cmd.Context(), sites, ops.SetPolicy{API: a.api, Policy: resolved})
		if err != nil {
			return reportAndErr(rep, err)
		}
		return finishReport(rep)
	},
}

var policyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check how far the backend has applied the policy per site",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd)
		if err != nil {
			return err
		}
		sites, err := a.resolveSites(cmd)
		if err != nil {
			return err
		}

		rep, err := a.exec.Run(cmd.Context(), sites, ops.PolicyStatus{API: a.api})
		if err != nil {
			return reportAndErr(rep, err)
		}
		return finishReport(rep)
	},
}

// resolveSetPolicy picks between flag-provided values and the interactive
// resolver. Resolution happens exactly once, before the batch; the result is
// immutable for the rest of the run.
func resolveSetPolicy(cmd *cobra.Command, a *app) (policy.VersionPolicy, error) {
	source, err := sourceFlag(cmd)
	if err != nil {
		return policy.VersionPolicy{}, err
	}

	if source == policy.SourceCustom && cmd.Flags().Changed("limit") {
		limit, _ := cmd.Flags().GetInt("limit")
		days, _ := cmd.Flags().GetInt("expire-days")
		return a.resolver.ResolveCustomPolicy(limit, days, policy.ScopeSite)
	}
	return a.resolver.ResolvePolicy(cmd.Context(), source, policy.ScopeSite)
}

// previewPolicyDiff fetches every site's current policy (a read-only batch)
// and prints what would change.
func previewPolicyDiff(cmd *cobra.Command, a *app, sites []string, desired policy.VersionPolicy) error {
	rep, err := a.exec.Run(cmd.Context(), sites, ops.GetPolicy{API: a.api})
	if err != nil {
		return err
	}
	for _, res := range rep.Results {
		if res.Outcome != batch.OutcomeSuccess {
			pterm.Warning.Printf("%s: could not read current policy: %v\n", res.Site, res.Err)
			continue
		}
		current, _ := res.Payload.(policy.VersionPolicy)
		if current.Equal(desired) {
			pterm.Info.Printf("%s: no change\n", res.Site)
			continue
		}
		pterm.Println(res.Site)
		pterm.Println(report.PolicyDiff(current, desired))
	}
	return nil
}

func finishReport(rep *batch.Report) error {
	if err := report.Write(os.Stdout, rep); err != nil {
		return err
	}
	if rep.Failed() > 0 {
		return fmt.Errorf("%d of %d sites failed", rep.Failed(), len(rep.Results))
	}
	return nil
}

func reportAndErr(rep *batch.Report, err error) error {
	if rep != nil {
		_ = report.Write(os.Stdout, rep)
	}
	return err
}

func init() {
	policySetCmd.Flags().String("source", "custom", "settings source: automatic, tenant or custom")
	policySetCmd.Flags().Int("limit", 0, "major version limit (custom source)")
	policySetCmd.Flags().Int("expire-days", 0, "expire versions after days, 0 = never (custom source)")
	policySetCmd.Flags().Bool("diff", false, "preview per-site changes before confirming")

	policyCmd.AddCommand(policyShowCmd)
	policyCmd.AddCommand(policySetCmd)
	policyCmd.AddCommand(policyStatusCmd)
	rootCmd.AddCommand(policyCmd)
}
