package main

import (
	"sort"

	"github.com/spf13/cobra"

	"github.com/rcmdr/cli/internal/config"
	"github.com/rcmdr/cli/internal/ui"
)

// flagsCmd is the parent command for per-remote-type serve flag overrides.
var flagsCmd = &cobra.Command{
	Use:   "flags",
	Short: "Manage extra serve flags per remote type",
	Long: `Manage the extra rclone flags appended to serve commands for a given
remote type, stored in flags.json in the rcmdr config directory.

Overrides apply on top of the built-in cache policy, so they can tune or
replace it per backend.

EXAMPLES:
  rcmdr flags list
  rcmdr flags set mega --vfs-cache-max-size 200M
  rcmdr flags set drive --fast-list
  rcmdr flags unset mega --vfs-cache-max-size`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// flagsListCmd prints all configured overrides.
var flagsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured flag overrides",
	RunE:  runFlagsList,
}

// flagsSetCmd adds or replaces one override.
var flagsSetCmd = &cobra.Command{
	Use:   "set <remote-type> <flag> [value]",
	Short: "Add or replace a flag override for a remote type",
	Args:  cobra.RangeArgs(2, 3),
	RunE:  runFlagsSet,
}

// flagsUnsetCmd removes one override.
var flagsUnsetCmd = &cobra.Command{
	Use:   "unset <remote-type> <flag>",
	Short: "Remove a flag override from a remote type",
	Args:  cobra.ExactArgs(2),
	RunE:  runFlagsUnset,
}

func init() {
	flagsCmd.AddCommand(flagsListCmd)
	flagsCmd.AddCommand(flagsSetCmd)
	flagsCmd.AddCommand(flagsUnsetCmd)

	// The flag values being managed start with dashes themselves.
	flagsSetCmd.Flags().SetInterspersed(false)
	flagsUnsetCmd.Flags().SetInterspersed(false)
}

// runFlagsList prints every remote type's overrides.
func runFlagsList(cmd *cobra.Command, args []string) error {
	path, err := config.FlagsPath()
	if err != nil {
		return err
	}
	overrides, err := config.LoadFlagOverrides(path)
	if err != nil {
		ui.PrintError("Failed to load %s: %v", path, err)
		return err
	}
	if len(overrides) == 0 {
		ui.PrintInfo("No flag overrides configured.")
		return nil
	}

	types := make([]string, 0, len(overrides))
	for t := range overrides {
		types = append(types, t)
	}
	sort.Strings(types)

	for _, t := range types {
		ui.PrintInfo("%s:", t)
		for _, arg := range overrides.Args(t) {
			ui.PrintDim("  %s", arg)
		}
	}
	return nil
}

// runFlagsSet stores one override.
func runFlagsSet(cmd *cobra.Command, args []string) error {
	path, err := config.FlagsPath()
	if err != nil {
		return err
	}

	value := ""
	if len(args) == 3 {
		value = args[2]
	}
	if err := config.SetFlagOverride(path, args[0], args[1], value); err != nil {
		ui.PrintError("Failed to save flag: %v", err)
		return err
	}
	ui.PrintSuccess("Set %s %s for remote type %s", args[1], value, args[0])
	return nil
}

// runFlagsUnset removes one override.
func runFlagsUnset(cmd *cobra.Command, args []string) error {
	path, err := config.FlagsPath()
	if err != nil {
		return err
	}
	if err := config.UnsetFlagOverride(path, args[0], args[1]); err != nil {
		ui.PrintError("Failed to remove flag: %v", err)
		return err
	}
	ui.PrintSuccess("Removed %s from remote type %s", args[1], args[0])
	return nil
}
