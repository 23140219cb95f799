package main

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcmdr/cli/internal/browse"
	"github.com/rcmdr/cli/internal/rclone"
	"github.com/rcmdr/cli/internal/tui"
	"github.com/rcmdr/cli/internal/ui"
)

// downloadCmd downloads remote files or folders to a local folder.
var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download files or folders from a remote",
	Long: `Download from a configured rclone remote in three steps: pick the
source remote, browse it and select files or folders, then browse the
local filesystem and choose the destination folder.

EXAMPLES:
  rcmdr download
  rcmdr download --overwrite   # re-copy items even when timestamps match`,
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().Bool("overwrite", false, "Overwrite existing files at the destination")
}

// runDownload drives the three-step download flow.
func runDownload(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	client, err := newClient()
	if err != nil {
		return err
	}

	ui.PrintInfo("-- Step 1: Select the source remote --")
	remote, err := pickRemote(ctx, client, "Select the source remote", quietMode(cmd))
	if err != nil {
		if errors.Is(err, tui.ErrAborted) {
			ui.PrintDim("Cancelled.")
			return nil
		}
		return err
	}

	ui.Println()
	ui.PrintInfo("-- Step 2: Select files or folders on %s --", remote.Name)
	nav := browse.NewNavigator(remoteProvider(ctx, client, remote.Name), promptReader{}, browse.SelectEntries)
	selection, err := nav.Run()
	if err != nil {
		return err
	}
	if selection.State == browse.Aborted {
		ui.PrintDim("Cancelled.")
		return nil
	}

	ui.Println()
	ui.PrintInfo("-- Step 3: Select the local destination folder --")
	destNav := browse.NewNavigator(browse.NewLocalProvider(""), promptReader{}, browse.SelectPath)
	dest, err := destNav.Run()
	if err != nil {
		return err
	}
	if dest.State == browse.Aborted {
		ui.PrintDim("Cancelled.")
		return nil
	}
	if info, err := os.Stat(dest.Path); err != nil || !info.IsDir() {
		ui.PrintError("Invalid destination: %s is not a directory", dest.Path)
		return errors.New("destination must be a directory")
	}

	overwrite, _ := cmd.Flags().GetBool("overwrite")
	if overwrite {
		ui.PrintWarning("Overwrite mode enabled (ignoring timestamps).")
	}

	if err := transferDown(ctx, client, selection, dest.Path, rclone.CopyOptions{Overwrite: overwrite}); err != nil {
		ui.PrintError("Download failed: %v", err)
		return err
	}
	ui.PrintSuccess("Download complete")
	return nil
}

// transferDown copies a remote selection into a local folder. Multi-item
// selections go through one --files-from invocation, except in overwrite
// mode where each item is copied separately so --ignore-times applies to
// folders as well.
func transferDown(ctx context.Context, client *rclone.Client, selection browse.Result, dest string, opts rclone.CopyOptions) error {
	if len(selection.Entries) == 0 {
		return client.Copy(ctx, selection.Path, dest, opts)
	}
	if len(selection.Entries) == 1 {
		return client.Copy(ctx, selection.Entries[0].Path, dest, opts)
	}

	if opts.Overwrite {
		ui.PrintInfo("Downloading %d items one by one to apply overwrite...", len(selection.Entries))
		for _, e := range selection.Entries {
			ui.PrintDim("Downloading %s...", e.Name)
			if err := client.Copy(ctx, e.Path, dest, opts); err != nil {
				return err
			}
		}
		return nil
	}

	names := make([]string, len(selection.Entries))
	for i, e := range selection.Entries {
		names[i] = e.Name
	}
	ui.PrintInfo("Downloading %d items to %s...", len(names), dest)
	return client.CopyFilesFrom(ctx, names, selection.Path, dest, opts)
}
