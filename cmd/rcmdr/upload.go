package main

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcmdr/cli/internal/browse"
	"github.com/rcmdr/cli/internal/rclone"
	"github.com/rcmdr/cli/internal/tui"
	"github.com/rcmdr/cli/internal/ui"
)

// uploadCmd uploads local files or a folder to a remote.
var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload local files or a folder to a remote",
	Long: `Upload to a configured rclone remote in three steps: browse the local
filesystem and select files or a folder, pick the destination remote,
then browse the remote and choose the destination folder.

Multi-file selections are transferred in a single rclone invocation.

EXAMPLES:
  rcmdr upload
  rcmdr upload --overwrite   # re-copy files even when timestamps match`,
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().Bool("overwrite", false, "Overwrite existing files at the destination")
}

// runUpload drives the three-step upload flow.
func runUpload(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	client, err := newClient()
	if err != nil {
		return err
	}

	ui.PrintInfo("-- Step 1: Select local files or a folder to upload --")
	nav := browse.NewNavigator(browse.NewLocalProvider(""), promptReader{}, browse.SelectEntries)
	selection, err := nav.Run()
	if err != nil {
		return err
	}
	if selection.State == browse.Aborted {
		ui.PrintDim("Cancelled.")
		return nil
	}

	ui.Println()
	ui.PrintInfo("-- Step 2: Select the destination remote --")
	remote, err := pickRemote(ctx, client, "Select the destination remote", quietMode(cmd))
	if err != nil {
		if errors.Is(err, tui.ErrAborted) {
			ui.PrintDim("Cancelled.")
			return nil
		}
		return err
	}

	ui.Println()
	ui.PrintInfo("-- Step 3: Select the destination folder on %s --", remote.Name)
	destNav := browse.NewNavigator(remoteProvider(ctx, client, remote.Name), promptReader{}, browse.SelectPath)
	dest, err := destNav.Run()
	if err != nil {
		return err
	}
	if dest.State == browse.Aborted {
		ui.PrintDim("Cancelled.")
		return nil
	}

	overwrite, _ := cmd.Flags().GetBool("overwrite")
	if overwrite {
		ui.PrintWarning("Overwrite mode enabled (ignoring timestamps).")
	}

	if err := transferUp(ctx, client, selection, dest.Path, rclone.CopyOptions{Overwrite: overwrite}); err != nil {
		ui.PrintError("Upload failed: %v", err)
		return err
	}
	ui.PrintSuccess("Upload complete")
	return nil
}

// transferUp copies a navigator selection to a remote folder: directly for
// a single path, through a single --files-from invocation for multi-file
// selections.
func transferUp(ctx context.Context, client *rclone.Client, selection browse.Result, dest string, opts rclone.CopyOptions) error {
	if !strings.HasSuffix(dest, "/") && !strings.HasSuffix(dest, ":") {
		dest += "/"
	}

	if len(selection.Entries) == 0 {
		// The user confirmed the whole current folder.
		return client.Copy(ctx, selection.Path, dest, opts)
	}
	if len(selection.Entries) == 1 {
		return client.Copy(ctx, selection.Entries[0].Path, dest, opts)
	}

	names := make([]string, len(selection.Entries))
	for i, e := range selection.Entries {
		names[i] = e.Name
	}
	base := filepath.Dir(selection.Entries[0].Path)
	ui.PrintInfo("Uploading %d items from %s...", len(names), base)
	return client.CopyFilesFrom(ctx, names, base, dest, opts)
}
