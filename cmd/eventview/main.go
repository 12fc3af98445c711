package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/naveenspark/eventview/internal/config"
	"github.com/naveenspark/eventview/internal/credentials"
	"github.com/naveenspark/eventview/internal/logging"
	"github.com/naveenspark/eventview/pkg/client"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	c := &cli{}
	err := c.rootCmd().Execute()
	c.close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// cli holds what every command needs once configuration is loaded.
type cli struct {
	v        *viper.Viper
	cfg      *config.Config
	logger   *slog.Logger
	logFile  io.Closer
	creds    *credentials.FileStore
	registry *prometheus.Registry
	metrics  *client.Metrics
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "eventview",
		Short: "Browse the events stored on an event-chain viewer server",
		Long: `eventview is a terminal client for the event viewer API.

Run it without arguments to open the interactive browser. Sign in with
"eventview login" or from the sign-in form; the session is kept in
~/.eventview until the server rejects it.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error { return c.setup(cmd) },
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runTUI()
		},
	}

	root.PersistentFlags().String("state-dir", "", "directory holding credentials, config.yaml and the log (default ~/.eventview)")
	root.PersistentFlags().String("log-level", "", "debug, info, warn or error")

	root.AddCommand(
		c.loginCmd(),
		c.logoutCmd(),
		c.statusCmd(),
		c.serverCmd(),
		c.openCmd(),
		versionCmd(),
	)
	return root
}

// setup loads configuration and opens the log file. Flags win over the
// environment, which wins over config.yaml.
func (c *cli) setup(cmd *cobra.Command) error {
	if cmd.Annotations[skipSetup] == "true" {
		return nil
	}
	v, err := config.New()
	if err != nil {
		return err
	}
	flags := cmd.Root().PersistentFlags()
	if f := flags.Lookup("state-dir"); f.Changed {
		v.Set(config.KeyStateDir, f.Value.String())
	}
	if f := flags.Lookup("log-level"); f.Changed {
		v.Set(config.KeyLogLevel, f.Value.String())
	}
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger, logFile, err := logging.Open(cfg.LogFile, level)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	c.v = v
	c.cfg = cfg
	c.logger = logger
	c.logFile = logFile
	c.creds = credentials.NewFileStore(cfg.StateDir)
	c.registry = prometheus.NewRegistry()
	c.registry.MustRegister(collectors.NewGoCollector())
	c.metrics = client.NewMetrics(c.registry)

	logger.Debug("config loaded",
		slog.String("state_dir", cfg.StateDir),
		slog.String("default_api_url", cfg.DefaultAPIURL),
		slog.String("command", cmd.Name()),
	)
	return nil
}

func (c *cli) close() {
	if c.logFile != nil {
		c.logFile.Close() //nolint:errcheck
		c.logFile = nil
	}
}

// clientOptions are shared by the session gateway and sign-in gateways.
func (c *cli) clientOptions() []client.Option {
	return []client.Option{
		client.WithTimeout(c.cfg.RequestTimeout),
		client.WithAuthScheme(c.cfg.AuthScheme),
		client.WithLogger(c.logger),
		client.WithMetrics(c.metrics),
	}
}

// serverURL is the stored server, or the configured default before any
// sign-in.
func (c *cli) serverURL() (string, error) {
	stored, err := c.creds.Get(client.StorageKeyServerURL)
	if err != nil {
		return "", err
	}
	if stored != "" {
		return stored, nil
	}
	return c.cfg.DefaultAPIURL, nil
}
