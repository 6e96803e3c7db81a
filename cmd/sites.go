package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/verkeep/verkeep/internal/remote"
)

var sitesCmd = &cobra.Command{
	Use:   "sites",
	Short: "Print the resolved site list",
	Long: `Shows which sites a batch run would process, in order. With --filter
the list comes from discovery against the control plane; otherwise from
the static site-list file. --details adds the discovery metadata.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd)
		if err != nil {
			return err
		}

		if details, _ := cmd.Flags().GetBool("details"); details {
			return printSiteDetails(cmd, a)
		}

		sites, err := a.resolveSites(cmd)
		if err != nil {
			return err
		}
		for _, s := range sites {
			fmt.Println(s)
		}
		return nil
	},
}

func printSiteDetails(cmd *cobra.Command, a *app) error {
	var infos []remote.SiteInfo
	_, err := a.retry.Call(cmd.Context(), "list sites", func() error {
		var callErr error
		infos, callErr = a.api.ListSites(cmd.Context())
		return callErr
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "URL\tTEMPLATE\tTITLE\tSTORAGE")
	for _, s := range infos {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.URL, s.Template, s.Title, humanize.Bytes(uint64(s.StorageUsedBytes)))
	}
	return w.Flush()
}

func init() {
	sitesCmd.Flags().Bool("details", false, "show discovery metadata per site")
	rootCmd.AddCommand(sitesCmd)
}
