package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmylchreest/saveconnectd/internal/config"
	"github.com/jmylchreest/saveconnectd/internal/server"
	"github.com/jmylchreest/saveconnectd/internal/utils"
	"github.com/jmylchreest/saveconnectd/pkg/saveconnect"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// newRootCommand builds the daemon command. Running it without a subcommand
// starts the daemon.
func newRootCommand() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:          "saveconnectd",
		Short:        "SAVE CONNECT boost switch daemon",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd, v)
			if err != nil {
				return err
			}
			logger.Info("Starting saveconnectd",
				"version", version,
				"commit", commit,
				"buildDate", buildDate,
			)
			return runDaemon(cmd.Context(), logger, cfg, server.Options{
				Version: version,
				Commit:  commit,
				Date:    buildDate,
			})
		},
	}

	flags := cmd.PersistentFlags()
	flags.String("config", "", "Path to config file")
	flags.String("log-level", config.LogLevelInfo, "Log level (debug, info, warn, error)")
	flags.String("log-format", config.LogFormatText, "Log format (text, json)")
	flags.Int("discovery-window", int(config.DefaultDiscoveryWindow.Seconds()), "Discovery window in seconds")
	flags.Int("poll-interval", int(config.DefaultPollInterval.Seconds()), "Poll interval in seconds")
	flags.String("api-listen", config.DefaultAPIListenAddress, "HTTP API listen address, empty disables the API")
	bindFlags(v, flags)

	cmd.AddCommand(newDiscoverCommand(v), newVersionCommand())
	return cmd
}

// bindFlags binds command line flags to their config keys so flags take
// precedence over the config file and environment.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	for key, name := range map[string]string{
		"logging.level":      "log-level",
		"logging.format":     "log-format",
		"discovery.window":   "discovery-window",
		"poll.interval":      "poll-interval",
		"api.listen_address": "api-listen",
	} {
		_ = v.BindPFlag(key, flags.Lookup(name))
	}
}

// loadConfig reads the daemon config and sets up the default logger from it.
func loadConfig(cmd *cobra.Command, v *viper.Viper) (*config.Config, *slog.Logger, error) {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadWith(v, config.DaemonConfigFilename, configFile)
	if err != nil {
		utils.SetupErrorLogger().Error("failed to load configuration", "error", err)
		return nil, nil, err
	}

	logger := utils.SetupLogger(
		utils.ValidateLogLevel(cfg.Logging.Level),
		utils.ValidateLogFormat(cfg.Logging.Format),
	)
	utils.SetAsDefaultLogger(logger)
	return cfg, logger, nil
}

// runDaemon starts the server and blocks until ctx is cancelled.
func runDaemon(ctx context.Context, logger *slog.Logger, cfg *config.Config, opts server.Options) error {
	srv := server.New(logger, cfg, opts)
	if err := srv.Start(); err != nil {
		logger.Error("Failed to start server", "error", err)
		return err
	}

	<-ctx.Done()
	logger.Info("Shutting down...")
	srv.Stop()
	return nil
}

func newDiscoverCommand(v *viper.Viper) *cobra.Command {
	var parseable bool
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Run one discovery window and print the units found",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd, v)
			if err != nil {
				return err
			}
			return runDiscover(cmd.Context(), cmd.OutOrStdout(), cfg, saveconnect.NewZeroconfBrowser(logger), parseable)
		},
	}
	cmd.Flags().BoolVarP(&parseable, "parseable", "p", false, "Output in parseable format (key=value)")
	return cmd
}

// runDiscover browses for one window and writes the hosts found to w.
func runDiscover(ctx context.Context, w io.Writer, cfg *config.Config, browser saveconnect.Browser, parseable bool) error {
	hosts, err := saveconnect.Discover(ctx, browser, saveconnect.DiscoveryOptions{
		ServiceType: cfg.Discovery.ServiceType,
		Domain:      cfg.Discovery.Domain,
		Marker:      cfg.Discovery.Marker,
		Window:      cfg.DiscoveryWindow(),
		Logger:      slog.Default(),
	})
	if err != nil {
		return fmt.Errorf("discovery failed: %w", err)
	}

	if parseable {
		for _, host := range hosts {
			fmt.Fprintf(w, "id=%q name=%q host=%q\n",
				saveconnect.DeviceID(host), saveconnect.DisplayName(host), host)
		}
		return nil
	}

	if len(hosts) == 0 {
		pterm.Info.WithWriter(w).Println("No SAVE CONNECT units found")
		return nil
	}

	table := pterm.TableData{{"ID", "Name", "Host"}}
	for _, host := range hosts {
		table = append(table, []string{saveconnect.DeviceID(host), saveconnect.DisplayName(host), host})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(table).WithWriter(w).Render()
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Version:    %s\n", version)
			fmt.Fprintf(out, "Commit:     %s\n", commit)
			fmt.Fprintf(out, "Build Date: %s\n", buildDate)
		},
	}
}
