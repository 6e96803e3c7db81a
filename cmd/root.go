package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/juju/clock"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/verkeep/verkeep/internal/auth"
	"github.com/verkeep/verkeep/internal/batch"
	"github.com/verkeep/verkeep/internal/catalog"
	"github.com/verkeep/verkeep/internal/config"
	"github.com/verkeep/verkeep/internal/core"
	"github.com/verkeep/verkeep/internal/policy"
	"github.com/verkeep/verkeep/internal/remote"
	"github.com/verkeep/verkeep/internal/retry"
	"github.com/verkeep/verkeep/internal/session"
)

var rootCmd = &cobra.Command{
	Use:          "verkeep",
	Short:        "Fleet-wide version-retention administration",
	Long:         `Verkeep applies version-retention policy and purge jobs across a fleet of managed content sites through the tenant control plane.`,
	SilenceUsage: true,
}

var verboseCount int

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	// PTerm output to Stderr (to keep Stdout clean for piping)
	pterm.SetDefaultOutput(os.Stderr)
	pterm.Success.Writer = os.Stderr
	pterm.Info.Writer = os.Stderr
	pterm.Error.Writer = os.Stderr
	pterm.Warning.Writer = os.Stderr
	pterm.DefaultHeader.Writer = os.Stderr

	rootCmd.PersistentFlags().StringP("config", "c", "verkeep.yaml", "config file path")
	rootCmd.PersistentFlags().String("sites", "", "static site-list file (overrides config)")
	rootCmd.PersistentFlags().String("filter", "", "discover sites matching this expression instead of using a file")
	rootCmd.PersistentFlags().BoolP("yes", "y", false, "skip the confirmation gate")
	rootCmd.PersistentFlags().CountVarP(&verboseCount, "verbose", "v", "Increase verbosity level (-v, -vv)")
}

// app bundles the wired collaborators every command needs.
type app struct {
	cfg      *config.Config
	log      core.Logger
	api      remote.API
	sessions session.Provider
	exec     *batch.Executor
	resolver *policy.Resolver
	retry    *retry.Caller
}

func buildApp(cmd *cobra.Command) (*app, error) {
	// .env is optional; missing file is fine.
	_ = godotenv.Load()

	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	level := core.LevelInfo
	if verboseCount > 0 {
		level = core.LevelDebug
	}
	var out io.Writer = os.Stderr
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		out = io.MultiWriter(os.Stderr, f)
	}
	log := core.NewDefaultLogger(out, level)

	authenticator := &auth.InteractiveSecret{
		Inner: auth.NewClientCredentials(cfg.Auth.TokenURL, cfg.Auth.ClientID, cfg.ClientSecret()),
	}
	tenantToken := func(ctx context.Context) (string, error) {
		tok, err := authenticator.Authenticate(ctx, cfg.Tenant, cfg.AdminURL)
		if err != nil {
			return "", err
		}
		return tok.Value, nil
	}

	api := remote.NewClient(cfg.AdminURL, tenantToken, log)
	sessions := session.NewManager(cfg.Tenant, authenticator, log)
	caller := retry.NewCaller(clock.WallClock, log)

	return &app{
		cfg:      cfg,
		log:      log,
		api:      api,
		sessions: sessions,
		exec:     batch.NewExecutor(sessions, caller, log),
		resolver: policy.NewResolver(api, policy.PtermPrompter{}, log),
		retry:    caller,
	}, nil
}

// resolveSites builds the ordered site list, from a discovery filter when
// one was given, from the static file otherwise.
func (a *app) resolveSites(cmd *cobra.Command) ([]string, error) {
	filter, _ := cmd.Flags().GetString("filter")
	if cmd.Flags().Changed("filter") {
		return catalog.NewDiscoverer(a.api, a.log).Discover(cmd.Context(), filter)
	}

	path, _ := cmd.Flags().GetString("sites")
	if path == "" {
		path = a.cfg.Sites
	}
	if path == "" {
		return nil, fmt.Errorf("no site source: pass --sites, --filter or set sites in the config")
	}
	return catalog.LoadStatic(path)
}

// confirmOrAbort is the pre-run gate. Once a batch starts the only way out
// is Ctrl-C, so destructive actions must be acknowledged here.
func confirmOrAbort(cmd *cobra.Command, prompt string) (bool, error) {
	if yes, _ := cmd.Flags().GetBool("yes"); yes {
		return true, nil
	}
	confirm, err := pterm.DefaultInteractiveConfirm.
		WithDefaultText(prompt).
		WithDefaultValue(false).
		Show()
	if err != nil {
		return false, err
	}
	return confirm, nil
}

func sourceFlag(cmd *cobra.Command) (policy.Source, error) {
	raw, _ := cmd.Flags().GetString("source")
	switch policy.Source(raw) {
	case policy.SourceAutomatic, policy.SourceTenant, policy.SourceCustom:
		return policy.Source(raw), nil
	}
	return "", fmt.Errorf("unknown --source %q (want automatic, tenant or custom)", raw)
}
