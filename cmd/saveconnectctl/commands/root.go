package commands

import (
	"context"
	"fmt"

	"github.com/jmylchreest/saveconnectd/internal/config"
	"github.com/jmylchreest/saveconnectd/internal/utils"
	"github.com/jmylchreest/saveconnectd/pkg/client"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewRootCommand creates the root command
func NewRootCommand(version, commit, buildDate string) *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:          "saveconnectctl",
		Short:        "Control SAVE CONNECT boost switches",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupClient(cmd, v)
		},
	}

	// Add global flags
	flags := cmd.PersistentFlags()
	flags.String("config", "", "Path to client config file")
	flags.String("api-url", config.DefaultAPIURL, "Base URL of the saveconnectd API")
	flags.String("log-level", config.LogLevelInfo, "Log level (debug, info, warn, error)")
	flags.String("log-format", config.LogFormatText, "Log format (text, json)")
	_ = v.BindPFlag("api.url", flags.Lookup("api-url"))
	_ = v.BindPFlag("logging.level", flags.Lookup("log-level"))
	_ = v.BindPFlag("logging.format", flags.Lookup("log-format"))

	// Add commands
	cmd.AddCommand(newVersionCommand(version, commit, buildDate))
	cmd.AddCommand(NewAccessoryCommand())
	cmd.AddCommand(NewLoggingCommand())

	return cmd
}

// setupClient loads the client config, sets up logging and stores an API
// client in the command context, unless one is there already.
func setupClient(cmd *cobra.Command, v *viper.Viper) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Value(ClientContextKey).(client.ClientInterface); ok {
		return nil
	}

	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadWith(v, config.ClientConfigFilename, configFile)
	if err != nil {
		utils.SetupErrorLogger().Error("failed to load configuration", "error", err)
		return err
	}

	logger := utils.SetupLogger(
		utils.ValidateLogLevel(cfg.Logging.Level),
		utils.ValidateLogFormat(cfg.Logging.Format),
	)
	utils.SetAsDefaultLogger(logger)

	ctx = context.WithValue(ctx, LoggerContextKey, logger)
	ctx = context.WithValue(ctx, ClientContextKey, client.ClientInterface(client.NewHTTP(logger, cfg.API.URL)))
	cmd.SetContext(ctx)
	return nil
}

// clientFromCmd returns the API client stored by the root command
func clientFromCmd(cmd *cobra.Command) (client.ClientInterface, error) {
	if ctx := cmd.Context(); ctx != nil {
		if c, ok := ctx.Value(ClientContextKey).(client.ClientInterface); ok {
			return c, nil
		}
	}
	return nil, fmt.Errorf("no API client configured")
}

// newVersionCommand creates the version command
func newVersionCommand(version, commit, buildDate string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Client:\n")
			fmt.Printf("  Version:    %s\n", version)
			fmt.Printf("  Commit:     %s\n", commit)
			fmt.Printf("  Build Date: %s\n", buildDate)

			// Try to query the daemon for its version
			c, err := clientFromCmd(cmd)
			if err != nil {
				return
			}
			resp, err := c.GetVersion()
			if err != nil {
				getLoggerFromCmd(cmd).Debug("version: daemon query failed", "error", err)
				fmt.Printf("\nDaemon: not reachable\n")
				return
			}
			fmt.Printf("\nDaemon:\n")
			fmt.Printf("  Version:    %s\n", resp.Version)
			fmt.Printf("  Commit:     %s\n", resp.Commit)
			fmt.Printf("  Build Date: %s\n", resp.Date)
		},
	}
}
