package main

import (
	"github.com/spf13/cobra"

	"github.com/rcmdr/cli/internal/ui"
)

// remotesCmd lists the configured rclone remotes.
var remotesCmd = &cobra.Command{
	Use:   "remotes",
	Short: "List configured rclone remotes and their backend types",
	Long: `List the remotes from the rclone configuration with their backend
types. Companion "-shared" remotes are hidden; they are served through
the shared-drive option of their main remote instead.`,
	RunE: runRemotes,
}

// runRemotes prints the remote table.
func runRemotes(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	client, err := newClient()
	if err != nil {
		return err
	}

	items, err := loadRemoteItems(ctx, client)
	if err != nil {
		ui.PrintError("Failed to list remotes: %v", err)
		return err
	}

	ui.PrintTableHeader("REMOTE", "TYPE")
	for _, item := range items {
		ui.PrintTableRow(item.Name, item.Detail)
	}
	return nil
}
