package cmd

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"linkup/api"
	"linkup/config"
	"linkup/database"
	"linkup/logger"
	"linkup/metrics"
	"linkup/securestore"
)

var (
	version = "dev"

	cfg         *config.Config
	logLevel    string
	metricsAddr string
	ephemeral   bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "linkup",
	Short: "LinkUp chat client",
	Long: `LinkUp is a terminal client for the LinkUp chat service: sign in,
chat with friends or the Linko assistant, manage friend requests and your
profile. "linkup devserver" runs a local backend for development.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
		}
		if err := logger.Init(cfg.LogLevel, cfg.Dev); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		if metricsAddr != "" {
			go serveMetrics(metricsAddr)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+userMessage(err)))
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "keep credentials in memory only")
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	logger.Log.Info("metrics_listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Log.Error("metrics_server_failed", zap.Error(err))
	}
}

// client bundles what the client commands need
type client struct {
	store securestore.Store
	api   *api.Client
	close func() error
}

func openClient() (*client, error) {
	var (
		store securestore.Store
		done  = func() error { return nil }
	)

	if ephemeral {
		store = securestore.NewMemoryStore()
	} else {
		db, err := database.Open(cfg.StorePath)
		if err != nil {
			return nil, fmt.Errorf("open credential store: %w", err)
		}
		store = database.NewSecretStore(db)
		done = db.Close
	}

	if cfg.StoreKey != nil {
		sealed, err := securestore.Sealed(store, cfg.StoreKey)
		if err != nil {
			done()
			return nil, err
		}
		store = sealed
	}

	c := api.NewClient(cfg.BaseURL, cfg.WSBaseURL, store,
		api.WithTimeout(cfg.HTTPTimeout),
		api.WithLogger(logger.Log),
	)
	return &client{store: store, api: c, close: done}, nil
}

// userMessage maps errors to the text shown to the user
func userMessage(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return err.Error()
}
