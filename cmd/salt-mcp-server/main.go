package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/minionworks/salt-mcp/internal/config"
	"github.com/minionworks/salt-mcp/internal/logging"
	"github.com/minionworks/salt-mcp/internal/mcp"
	"github.com/minionworks/salt-mcp/internal/saltapi"
)

func main() {
	root := &cobra.Command{
		Use:   "salt-mcp-server",
		Short: "SaltStack salt-api MCP server",
		Long: "Exposes Salt minion management (list, ping, grains, arbitrary execution functions) " +
			"as MCP tools over stdio, forwarding every call to a salt-api endpoint.",
		RunE:          run,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.String("salt-api-url", "", "salt-api base URL (overrides SALT_API_URL)")
	flags.String("eauth", "", "salt external auth backend (default: pam)")
	flags.String("timeout", "", "salt-api request timeout, e.g. 30s")
	flags.String("login-timeout", "", "salt-api login timeout, e.g. 10s")
	flags.Bool("tls-skip-verify", false, "skip TLS certificate verification for salt-api")
	flags.Bool("startup-probe", true, "authenticate and list minions once at startup")
	flags.String("log-level", "", "log level: debug or info")

	// Credentials are environment-only (SALT_API_USERNAME, SALT_API_PASSWORD);
	// flags would leak them into process listings.
	_ = viper.BindPFlag(config.KeySaltAPIURL, flags.Lookup("salt-api-url"))
	_ = viper.BindPFlag(config.KeySaltAPIEauth, flags.Lookup("eauth"))
	_ = viper.BindPFlag(config.KeySaltAPITimeout, flags.Lookup("timeout"))
	_ = viper.BindPFlag(config.KeySaltAPILoginTimeout, flags.Lookup("login-timeout"))
	_ = viper.BindPFlag(config.KeySaltAPITLSSkipVerify, flags.Lookup("tls-skip-verify"))
	_ = viper.BindPFlag(config.KeyStartupProbe, flags.Lookup("startup-probe"))
	_ = viper.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level"))

	config.Init(root)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "salt-mcp-server: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	log := logging.New(logging.NewStderrLogger(config.LogLevel())).WithName("salt-mcp")

	if config.SaltAPIUsername() == "" || config.SaltAPIPassword() == "" {
		log.Info("SALT_API_USERNAME or SALT_API_PASSWORD is not set; salt-api calls will fail until credentials are provided")
	}

	cfg, err := mcp.LoadConfig(log)
	if err != nil {
		return err
	}
	srv := mcp.New(cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if config.StartupProbe() {
		probe(ctx, cfg.Client, log)
	}

	log.Info("serving MCP over stdio", "salt_api_url", config.SaltAPIURL())
	if err := srv.ServeStdio(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// probe checks salt-api reachability once at startup. Failures are logged,
// never fatal: the server still comes up so an operator can fix credentials
// or connectivity without a restart loop.
func probe(ctx context.Context, client *saltapi.Client, log logging.Logger) {
	probeCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := client.Authenticate(probeCtx); err != nil {
		log.Error(err, "startup probe: authentication failed")
		return
	}
	status, err := client.MinionStatus(probeCtx)
	if err != nil {
		log.Error(err, "startup probe: minion status failed")
		return
	}
	up := 0
	for _, reachable := range status {
		if reachable {
			up++
		}
	}
	log.Info("startup probe succeeded", "minions", len(status), "up", up, "down", len(status)-up)
}
