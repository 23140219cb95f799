package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/rcmdr/cli/internal/browse"
	"github.com/rcmdr/cli/internal/config"
	"github.com/rcmdr/cli/internal/rclone"
	"github.com/rcmdr/cli/internal/serve"
	"github.com/rcmdr/cli/internal/tui"
	"github.com/rcmdr/cli/internal/ui"
)

// serveRemoteCmd serves one or more rclone remotes.
var serveRemoteCmd = &cobra.Command{
	Use:   "serve-remote",
	Short: "Serve one or more remotes over HTTP, WebDAV or FTP",
	Long: `Serve one or more configured rclone remotes over the network.

Each chosen remote gets its own rclone server process on its own port,
allocated sequentially from the base port. Google Drive remotes can
additionally serve their shared-with-me section on the next port; Google
Photos remotes get the read-size hint some clients require. Files are
fully downloaded into the VFS cache before serving.

Press Ctrl-C to stop the whole batch; servers get a grace period before
being killed.

EXAMPLES:
  rcmdr serve-remote                      # pick remotes and protocol
  rcmdr serve-remote --protocol webdav    # skip the protocol prompt
  rcmdr serve-remote --port 9000 --auth   # custom base port + credentials`,
	RunE: runServeRemote,
}

// serveLocalCmd serves a local directory.
var serveLocalCmd = &cobra.Command{
	Use:   "serve-local",
	Short: "Serve a local folder over HTTP, WebDAV or FTP",
	Long: `Browse the local filesystem, pick a folder, and expose it over the
network with a single supervised rclone server.

EXAMPLES:
  rcmdr serve-local
  rcmdr serve-local --protocol ftp --port 2121`,
	RunE: runServeLocal,
}

func init() {
	addServeFlags(serveRemoteCmd.Flags())
	addServeFlags(serveLocalCmd.Flags())
}

// serveDefaults assembles the planner inputs: persisted config, flag
// overrides, detected bind address and (optionally) prompted credentials.
func serveDefaults(cmd *cobra.Command) (serve.Defaults, error) {
	cfg, err := config.Load()
	if err != nil {
		return serve.Defaults{}, err
	}

	d := serve.Defaults{
		BasePort: cfg.Serve.BasePort,
		BindAddr: cfg.Serve.BindAddr,
		User:     cfg.Serve.User,
		Pass:     cfg.Serve.Pass,
	}

	if port, _ := cmd.Flags().GetInt("port"); port > 0 {
		d.BasePort = port
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		d.BindAddr = addr
	}
	if d.BindAddr == "" {
		d.BindAddr = serve.DetectBindAddr()
	}

	if auth, _ := cmd.Flags().GetBool("auth"); auth {
		user, err := ui.Prompt("Username:")
		if err != nil {
			return serve.Defaults{}, err
		}
		pass, err := ui.PromptPassword("Password:")
		if err != nil {
			return serve.Defaults{}, err
		}
		if user != "" {
			d.User = user
		}
		if pass != "" {
			d.Pass = pass
		}
	}

	flagsPath, err := config.FlagsPath()
	if err != nil {
		return serve.Defaults{}, err
	}
	overrides, err := config.LoadFlagOverrides(flagsPath)
	if err != nil {
		ui.PrintWarning("Ignoring flag overrides: %v", err)
		overrides = config.FlagOverrides{}
	}
	d.ExtraArgs = overrides.Args

	return d, nil
}

// runServeRemote plans and supervises servers for the chosen remotes.
func runServeRemote(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	client, err := newClient()
	if err != nil {
		return err
	}

	chosen, err := pickRemotes(ctx, client, "Select remotes to serve", quietMode(cmd))
	if err != nil {
		if errors.Is(err, tui.ErrAborted) {
			ui.PrintDim("Cancelled.")
			return nil
		}
		return err
	}

	protocol, err := pickProtocol(cmd)
	if err != nil {
		return err
	}

	defaults, err := serveDefaults(cmd)
	if err != nil {
		return err
	}

	// Drive remotes can carry a second target for the shared section.
	remotes := make([]serve.Remote, 0, len(chosen))
	for _, item := range chosen {
		r := serve.Remote{Name: item.Name, Type: item.Detail}
		if r.Type == "drive" {
			shared, err := ui.PromptConfirm(fmt.Sprintf("Serve shared drive for '%s' as well?", r.Name), true)
			if err != nil {
				return err
			}
			r.IncludeShared = shared
		}
		remotes = append(remotes, r)
	}

	plan, err := serve.BuildPlan(remotes, protocol, defaults)
	if err != nil {
		ui.PrintError("Nothing to serve: %v", err)
		return err
	}

	return runPlan(ctx, client, plan)
}

// runServeLocal serves a single browsed local folder.
func runServeLocal(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	client, err := newClient()
	if err != nil {
		return err
	}

	nav := browse.NewNavigator(browse.NewLocalProvider(""), promptReader{}, browse.SelectPath)
	result, err := nav.Run()
	if err != nil {
		return err
	}
	if result.State == browse.Aborted {
		ui.PrintDim("Cancelled.")
		return nil
	}

	protocol, err := pickProtocol(cmd)
	if err != nil {
		return err
	}

	defaults, err := serveDefaults(cmd)
	if err != nil {
		return err
	}

	plan, err := serve.BuildLocalPlan(result.Path, protocol, defaults)
	if err != nil {
		ui.PrintError("Nothing to serve: %v", err)
		return err
	}

	return runPlan(ctx, client, plan)
}

// runPlan launches the supervisor over a plan, blocks until interrupt or
// batch exit, and prints the per-target summary.
func runPlan(ctx context.Context, client *rclone.Client, plan []serve.Target) error {
	ui.Println()
	ui.PrintTableHeader("TARGET", "PROTOCOL", "URL")
	for _, t := range plan {
		ui.PrintTableRow(t.Name, string(t.Protocol), t.URL())
	}
	ui.Println()

	sup := serve.NewSupervisor(client.Binary())
	if err := sup.Start(plan); err != nil {
		return err
	}

	// Best effort: put the first live URL on the clipboard.
	for _, st := range sup.Statuses() {
		if st.State == serve.StateRunning {
			for _, t := range plan {
				if t.Port == st.Port {
					if clipboard.WriteAll(t.URL()) == nil {
						ui.PrintDim("Copied %s to clipboard", t.URL())
					}
					break
				}
			}
			break
		}
	}

	// Advisory watch: children won't see config edits until restarted.
	if configPath, err := client.ConfigFile(ctx); err == nil {
		stop := serve.WatchRcloneConfig(configPath)
		defer stop()
	} else {
		log.Debug("Skipping config watch", "error", err)
	}

	if sup.Running() > 0 {
		ui.PrintDim("Press Ctrl-C to stop all servers")
	}
	sup.Wait(ctx)

	ui.Println()
	failures := 0
	ui.PrintTableHeader("TARGET", "PORT", "STATUS")
	for _, st := range sup.Statuses() {
		label := st.State.String()
		if st.Reason != nil {
			label += " (" + st.Reason.Error() + ")"
			failures++
		}
		ui.PrintTableRow(st.Name, strconv.Itoa(st.Port), label)
	}

	if failures == len(plan) {
		return fmt.Errorf("all %d server(s) failed", failures)
	}
	if failures > 0 {
		ui.PrintWarning("%d of %d server(s) failed", failures, len(plan))
	} else {
		ui.PrintSuccess("All servers stopped cleanly")
	}
	return nil
}
