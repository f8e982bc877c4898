// Command neostore browses the NeoStore catalog and manages the signed-in
// user's cart and orders from the terminal.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/AKRAMELGYAR/NeoStore-FrontEnd/internal/config"
	"github.com/AKRAMELGYAR/NeoStore-FrontEnd/pkg/client"
	"github.com/AKRAMELGYAR/NeoStore-FrontEnd/pkg/validation"
)

// globalFlags override configuration loaded from the environment.
type globalFlags struct {
	baseURL     string
	redisURL    string
	sessionFile string
	logLevel    string
	metricsAddr string
	timeout     time.Duration
	pretty      bool
	jsonOutput  bool
	envFile     string
}

func newRootCmd() *cobra.Command {
	var (
		flags globalFlags
		a     *app
	)

	// getApp is resolved lazily so subcommands can be declared before
	// PersistentPreRunE has run.
	getApp := func() *app { return a }

	root := &cobra.Command{
		Use:           "neostore",
		Short:         "NeoStore storefront client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flags.envFile)
			if err != nil {
				return err
			}
			applyFlags(cmd, &cfg, flags)
			if err := cfg.Validate(); err != nil {
				return err
			}

			a, err = newApp(cmd.Context(), cfg)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a != nil {
				a.close()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.baseURL, "base-url", "", "storefront backend URL (env "+config.EnvBaseURL+")")
	pf.StringVar(&flags.redisURL, "redis-url", "", "share the query cache through Redis (env "+config.EnvRedisURL+")")
	pf.StringVar(&flags.sessionFile, "session-file", "", "session file location (env "+config.EnvSessionFile+")")
	pf.StringVar(&flags.logLevel, "log-level", "", "debug, info, warn, error or silent (env "+config.EnvLogLevel+")")
	pf.StringVar(&flags.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while the command runs")
	pf.DurationVar(&flags.timeout, "timeout", 0, "per-request timeout (env "+config.EnvTimeout+")")
	pf.BoolVar(&flags.pretty, "pretty", false, "human-readable logs")
	pf.BoolVar(&flags.jsonOutput, "json", false, "output as JSON")
	pf.StringVar(&flags.envFile, "env-file", ".env", "dotenv file to load if present")

	root.AddGroup(
		&cobra.Group{ID: "catalog", Title: "Catalog:"},
		&cobra.Group{ID: "shopping", Title: "Cart & orders:"},
		&cobra.Group{ID: "account", Title: "Account:"},
	)

	out := &printer{json: &flags.jsonOutput}

	root.AddCommand(
		newProductsCmd(getApp, out),
		newSearchCmd(getApp, out),
		newProductCmd(getApp, out),
		newCategoriesCmd(getApp, out),
		newBrandsCmd(getApp, out),
		newCartCmd(getApp, out),
		newCheckoutCmd(getApp, out),
		newOrdersCmd(getApp, out),
		newSignupCmd(getApp, out),
		newConfirmEmailCmd(getApp, out),
		newSigninCmd(getApp, out),
		newLogoutCmd(getApp, out),
		newWhoamiCmd(getApp, out),
	)

	return root
}

func applyFlags(cmd *cobra.Command, cfg *config.Config, f globalFlags) {
	changed := cmd.Flags().Changed
	if changed("base-url") {
		cfg.BaseURL = f.baseURL
	}
	if changed("redis-url") {
		cfg.RedisURL = f.redisURL
	}
	if changed("session-file") {
		cfg.SessionFile = f.sessionFile
	}
	if changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if changed("metrics-addr") {
		cfg.MetricsAddr = f.metricsAddr
	}
	if changed("timeout") {
		cfg.Timeout = f.timeout
	}
	if changed("pretty") {
		cfg.LogPretty = f.pretty
	}
}

// describeError renders err the way the storefront toasts it: the backend's
// message, or the field messages of a rejected form.
func describeError(err error) string {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		return verrs.Error()
	}
	var cerr *client.Error
	if errors.As(err, &cerr) {
		return cerr.Message
	}
	return err.Error()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", describeError(err))
		os.Exit(1)
	}
}
