package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/verkeep/verkeep/internal/policy"
)

var tenantCmd = &cobra.Command{
	Use:   "tenant",
	Short: "Manage tenant-scope retention configuration",
}

var tenantShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Read the tenant retention configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd)
		if err != nil {
			return err
		}

		var cfg policy.TenantConfig
		_, err = a.retry.Call(cmd.Context(), "get tenant configuration", func() error {
			var callErr error
			cfg, callErr = a.api.GetTenantConfig(cmd.Context())
			return callErr
		})
		if err != nil {
			return err
		}

		if cfg.AutoTrim {
			pterm.Info.Println("Tenant trimming: automatic")
			return nil
		}
		pterm.Info.Printf("Major version limit: %d\n", cfg.MajorVersionLimit)
		if cfg.ExpireAfterDays == 0 {
			pterm.Info.Println("Expiration: never")
		} else {
			pterm.Info.Printf("Expiration: %d days\n", cfg.ExpireAfterDays)
		}
		if cfg.MajorVersionLimit != 0 && cfg.ExpireAfterDays != 0 {
			pterm.Warning.Println("Both thresholds are set; purge jobs sourced from tenant defaults will ask which one to use.")
		}
		return nil
	},
}

var tenantSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Write the tenant retention configuration",
	Long: `Resolves a version policy at tenant scope and writes it as the tenant
default. A short expiration entry is raised to the 30-day floor with a
warning rather than rejected.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd)
		if err != nil {
			return err
		}

		source, err := sourceFlag(cmd)
		if err != nil {
			return err
		}

		var resolved policy.VersionPolicy
		if source == policy.SourceCustom && cmd.Flags().Changed("limit") {
			limit, _ := cmd.Flags().GetInt("limit")
			days, _ := cmd.Flags().GetInt("expire-days")
			resolved, err = a.resolver.ResolveCustomPolicy(limit, days, policy.ScopeTenant)
		} else {
			resolved, err = a.resolver.ResolvePolicy(cmd.Context(), source, policy.ScopeTenant)
		}
		if err != nil {
			return err
		}

		pterm.Info.Printf("Tenant default will become: %s\n", resolved)
		ok, err := confirmOrAbort(cmd, "Write this tenant configuration?")
		if err != nil || !ok {
			pterm.Info.Println("Aborted.")
			return err
		}

		_, err = a.retry.Call(cmd.Context(), "set tenant configuration", func() error {
			return a.api.SetTenantConfig(cmd.Context(), resolved)
		})
		if err != nil {
			return err
		}
		pterm.Success.Println("Tenant configuration updated.")
		return nil
	},
}

func init() {
	tenantSetCmd.Flags().String("source", "custom", "settings source: automatic or custom")
	tenantSetCmd.Flags().Int("limit", 0, "major version limit (custom source)")
	tenantSetCmd.Flags().Int("expire-days", 0, "expire versions after days, 0 = never (custom source)")

	tenantCmd.AddCommand(tenantShowCmd)
	tenantCmd.AddCommand(tenantSetCmd)
	rootCmd.AddCommand(tenantCmd)
}
