package commands

import (
	"fmt"
	"slices"
	"strings"

	"github.com/jmylchreest/saveconnectd/pkg/client"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// switchNames are the switch names accepted by the API, in display order
var switchNames = []string{"refresh", "crowded"}

// NewAccessoryCommand creates the accessory command
func NewAccessoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "accessory",
		Aliases: []string{"accessories", "acc"},
		Short:   "Manage SAVE CONNECT accessories",
	}

	cmd.AddCommand(
		newAccessoryListCommand(),
		newAccessoryGetCommand(),
		newAccessorySetCommand(),
		newAccessoryPollCommand(),
		newAccessoryRemoveCommand(),
	)

	return cmd
}

// selectAccessory returns args[0] when given, otherwise asks the user to
// pick one of the registered accessories.
func selectAccessory(c client.ClientInterface, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}

	accessories, err := c.GetAccessories()
	if err != nil {
		return "", fmt.Errorf("failed to get accessories: %w", err)
	}
	if len(accessories) == 0 {
		return "", fmt.Errorf("no accessories registered")
	}

	options := make([]string, len(accessories))
	for i, a := range accessories {
		options[i] = fmt.Sprintf("%s (%s)", a.ID, a.Name)
	}
	slices.Sort(options)

	selected, err := pterm.DefaultInteractiveSelect.
		WithOptions(options).
		Show("Select an accessory")
	if err != nil {
		return "", fmt.Errorf("failed to select accessory: %w", err)
	}

	// Extract ID from selected option
	return strings.Split(selected, " (")[0], nil
}

// newAccessoryListCommand creates the accessory list command
func newAccessoryListCommand() *cobra.Command {
	var parseable bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered accessories",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFromCmd(cmd)
			if err != nil {
				return err
			}
			accessories, err := c.GetAccessories()
			if err != nil {
				return fmt.Errorf("failed to get accessories: %w", err)
			}

			if len(accessories) == 0 {
				if parseable {
					return nil
				}
				pterm.Info.Println("No accessories registered")
				return nil
			}

			slices.SortFunc(accessories, func(a, b client.Accessory) int {
				return strings.Compare(a.Name, b.Name)
			})

			if parseable {
				for _, a := range accessories {
					fmt.Println(AccessoryParseable(a))
				}
				return nil
			}

			table := pterm.TableData{{"ID", "Name", "Host", "Refresh", "Crowded", "Last Read"}}
			for _, a := range accessories {
				lastRead := "N/A"
				if a.LastReading != nil {
					lastRead = formatReadingAt(a.LastReading.At)
				}
				table = append(table, []string{
					a.ID, a.Name, a.Host,
					onOff(a.Switches.Refresh), onOff(a.Switches.Crowded),
					lastRead,
				})
			}
			return pterm.DefaultTable.WithHasHeader().WithData(table).Render()
		},
	}
	cmd.Flags().BoolVarP(&parseable, "parseable", "p", false, "Output in parseable format (key=value)")
	return cmd
}

// newAccessoryGetCommand creates the accessory get command
func newAccessoryGetCommand() *cobra.Command {
	var parseable bool
	cmd := &cobra.Command{
		Use:   "get [id]",
		Short: "Get information about an accessory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFromCmd(cmd)
			if err != nil {
				return err
			}
			id, err := selectAccessory(c, args)
			if err != nil {
				return err
			}

			a, err := c.GetAccessory(id)
			if err != nil {
				return fmt.Errorf("failed to get accessory: %w", err)
			}

			if parseable {
				fmt.Println(AccessoryParseable(*a))
				return nil
			}
			return pterm.DefaultTable.WithData(AccessoryTableData(*a)).Render()
		},
	}
	cmd.Flags().BoolVarP(&parseable, "parseable", "p", false, "Output in parseable format (key=value)")
	return cmd
}

// newAccessorySetCommand creates the accessory set command
func newAccessorySetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set [id] [refresh|crowded] [on|off]",
		Short: "Turn a boost switch on or off",
		Args:  cobra.MaximumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFromCmd(cmd)
			if err != nil {
				return err
			}
			id, err := selectAccessory(c, args)
			if err != nil {
				return err
			}

			// Get switch
			var name string
			if len(args) > 1 {
				name = strings.ToLower(args[1])
				if !slices.Contains(switchNames, name) {
					return fmt.Errorf("invalid switch: %s. Must be one of: %s", args[1], strings.Join(switchNames, ", "))
				}
			} else {
				selected, err := pterm.DefaultInteractiveSelect.
					WithOptions([]string{"Refresh", "Crowded"}).
					Show("Select switch")
				if err != nil {
					return fmt.Errorf("failed to select switch: %w", err)
				}
				name = strings.ToLower(selected)
			}

			// Get value
			var on bool
			if len(args) > 2 {
				on, err = parseOnOff(args[2])
				if err != nil {
					return err
				}
			} else {
				selected, err := pterm.DefaultInteractiveSelect.
					WithOptions([]string{"On", "Off"}).
					Show("Select switch state")
				if err != nil {
					return fmt.Errorf("failed to get switch state: %w", err)
				}
				on = selected == "On"
			}

			getLoggerFromCmd(cmd).Debug("accessory: setting switch", "id", id, "switch", name, "on", on)
			a, err := c.SetSwitch(id, name, on)
			if err != nil {
				return fmt.Errorf("failed to set switch: %w", err)
			}

			pterm.Success.Printf("%s %s switch turned %s\n", a.Name, name, onOff(on))
			return nil
		},
	}
	return cmd
}

// newAccessoryPollCommand creates the accessory poll command
func newAccessoryPollCommand() *cobra.Command {
	var parseable bool
	cmd := &cobra.Command{
		Use:   "poll [id]",
		Short: "Read the active mode of an accessory now",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFromCmd(cmd)
			if err != nil {
				return err
			}
			id, err := selectAccessory(c, args)
			if err != nil {
				return err
			}

			r, err := c.Poll(id)
			if err != nil {
				return fmt.Errorf("failed to poll accessory: %w", err)
			}

			if parseable {
				fmt.Println(ReadingParseable(id, *r))
				return nil
			}
			table := pterm.TableData{
				[]string{"Property", "Value"},
				[]string{"ID", id},
				[]string{"Active Mode", fmt.Sprintf("%s (code %d)", r.Mode, r.Code)},
				[]string{"Refresh", onOff(r.Switches.Refresh)},
				[]string{"Crowded", onOff(r.Switches.Crowded)},
				[]string{"Read At", formatReadingAt(r.At)},
			}
			return pterm.DefaultTable.WithHasHeader().WithData(table).Render()
		},
	}
	cmd.Flags().BoolVarP(&parseable, "parseable", "p", false, "Output in parseable format (key=value)")
	return cmd
}

// newAccessoryRemoveCommand creates the accessory remove command
func newAccessoryRemoveCommand() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "remove [id]",
		Aliases: []string{"rm"},
		Short:   "Forget an accessory until it is discovered again",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFromCmd(cmd)
			if err != nil {
				return err
			}
			id, err := selectAccessory(c, args)
			if err != nil {
				return err
			}

			if !yes {
				ok, err := pterm.DefaultInteractiveConfirm.Show(fmt.Sprintf("Remove accessory %s?", id))
				if err != nil {
					return fmt.Errorf("failed to confirm: %w", err)
				}
				if !ok {
					pterm.Info.Println("Cancelled")
					return nil
				}
			}

			if err := c.RemoveAccessory(id); err != nil {
				if client.IsNotFound(err) {
					return fmt.Errorf("accessory %s not found", id)
				}
				return fmt.Errorf("failed to remove accessory: %w", err)
			}
			pterm.Success.Printf("Accessory %s removed\n", id)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}
