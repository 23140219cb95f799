package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/rcmdr/cli/internal/browse"
	"github.com/rcmdr/cli/internal/tui"
	"github.com/rcmdr/cli/internal/ui"
)

// syncCmd syncs a folder on one remote to a folder on another.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync a folder between two remotes",
	Long: `Make a destination folder identical to a source folder, both on
configured rclone remotes. Pick the source remote and folder, then the
destination remote and folder; rclone sync does the rest.

Sync deletes destination files that do not exist at the source.`,
	RunE: runSync,
}

// runSync drives the four-step sync flow.
func runSync(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	client, err := newClient()
	if err != nil {
		return err
	}
	quiet := quietMode(cmd)

	src, err := pickRemote(ctx, client, "Select the source remote", quiet)
	if err != nil {
		if errors.Is(err, tui.ErrAborted) {
			ui.PrintDim("Cancelled.")
			return nil
		}
		return err
	}
	srcNav := browse.NewNavigator(remoteProvider(ctx, client, src.Name), promptReader{}, browse.SelectPath)
	srcResult, err := srcNav.Run()
	if err != nil {
		return err
	}
	if srcResult.State == browse.Aborted {
		ui.PrintDim("Cancelled.")
		return nil
	}

	dst, err := pickRemote(ctx, client, "Select the destination remote", quiet)
	if err != nil {
		if errors.Is(err, tui.ErrAborted) {
			ui.PrintDim("Cancelled.")
			return nil
		}
		return err
	}
	dstNav := browse.NewNavigator(remoteProvider(ctx, client, dst.Name), promptReader{}, browse.SelectPath)
	dstResult, err := dstNav.Run()
	if err != nil {
		return err
	}
	if dstResult.State == browse.Aborted {
		ui.PrintDim("Cancelled.")
		return nil
	}

	confirmed, err := ui.PromptConfirm("Sync "+srcResult.Path+" -> "+dstResult.Path+"?", false)
	if err != nil {
		return err
	}
	if !confirmed {
		ui.PrintDim("Cancelled.")
		return nil
	}

	ui.PrintInfo("Syncing %s to %s...", srcResult.Path, dstResult.Path)
	if err := client.Sync(ctx, srcResult.Path, dstResult.Path); err != nil {
		ui.PrintError("Sync failed: %v", err)
		return err
	}
	ui.PrintSuccess("Sync complete")
	return nil
}
