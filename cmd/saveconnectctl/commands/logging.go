package commands

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// NewLoggingCommand creates the logging command
func NewLoggingCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logging",
		Short: "Control daemon logging",
	}
	cmd.AddCommand(newLoggingLevelCommand())
	return cmd
}

// newLoggingLevelCommand shows the daemon log level, or changes it when a
// level is given.
func newLoggingLevelCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "level [debug|info|warn|error]",
		Short:     "Show or set the daemon log level",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"debug", "info", "warn", "error"},
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFromCmd(cmd)
			if err != nil {
				return err
			}

			if len(args) == 0 {
				level, err := c.GetLogLevel()
				if err != nil {
					return fmt.Errorf("failed to get log level: %w", err)
				}
				fmt.Println(level)
				return nil
			}

			level, err := c.SetLogLevel(args[0])
			if err != nil {
				return fmt.Errorf("failed to set log level: %w", err)
			}
			pterm.Success.Printf("Log level set to %s\n", level)
			return nil
		},
	}
}
