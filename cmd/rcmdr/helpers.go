package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/rcmdr/cli/internal/browse"
	"github.com/rcmdr/cli/internal/rclone"
	"github.com/rcmdr/cli/internal/serve"
	"github.com/rcmdr/cli/internal/tui"
	"github.com/rcmdr/cli/internal/ui"
)

// newClient locates rclone, printing an install hint on failure.
func newClient() (*rclone.Client, error) {
	client, err := rclone.NewClient()
	if err != nil {
		ui.PrintError("rclone not found. Install it from https://rclone.org/install/ and run 'rclone config' to add remotes.")
		return nil, err
	}
	return client, nil
}

// signalContext returns a context cancelled by SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// quietMode reads the global --quiet flag.
func quietMode(cmd *cobra.Command) bool {
	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	return quiet
}

// promptReader adapts the ui prompt to the navigator's input boundary.
type promptReader struct{}

func (promptReader) ReadLine(prompt string) (string, error) {
	return ui.Prompt(prompt)
}

// ctxLister binds a context to the rclone client for the remote provider.
type ctxLister struct {
	ctx    context.Context
	client *rclone.Client
}

func (l ctxLister) Lsf(path string) ([]string, error) {
	return l.client.Lsf(l.ctx, path)
}

// remoteProvider builds a browse provider over one rclone remote.
func remoteProvider(ctx context.Context, client *rclone.Client, remote string) *browse.RemoteProvider {
	return browse.NewRemoteProvider(remote, ctxLister{ctx: ctx, client: client})
}

// loadRemoteItems fetches the configured remotes with their backend types
// as picker items.
func loadRemoteItems(ctx context.Context, client *rclone.Client) ([]tui.Item, error) {
	names, err := client.ListRemotes(ctx)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no rclone remotes configured")
	}

	dump, err := client.ConfigDump(ctx)
	if err != nil {
		return nil, err
	}
	sections := dump.Map()

	items := make([]tui.Item, 0, len(names))
	for _, name := range names {
		items = append(items, tui.Item{
			Name:   name,
			Detail: sections[name].Get("type").String(),
		})
	}
	return items, nil
}

// pickRemote has the user choose one remote, through the TUI picker on a
// terminal or a numbered prompt otherwise.
func pickRemote(ctx context.Context, client *rclone.Client, title string, quiet bool) (tui.Item, error) {
	if tui.ShouldRun(quiet) {
		return tui.Pick(title, func() ([]tui.Item, error) {
			return loadRemoteItems(ctx, client)
		})
	}

	items, err := loadRemoteItems(ctx, client)
	if err != nil {
		return tui.Item{}, err
	}
	labels := make([]string, len(items))
	for i, item := range items {
		labels[i] = item.Name + " (" + item.Detail + ")"
	}
	idx, err := ui.PromptSelect(title, labels)
	if err != nil {
		return tui.Item{}, err
	}
	return items[idx], nil
}

// pickRemotes has the user choose one or more remotes. The non-TTY
// fallback accepts the same range/list syntax as the navigator.
func pickRemotes(ctx context.Context, client *rclone.Client, title string, quiet bool) ([]tui.Item, error) {
	if tui.ShouldRun(quiet) {
		return tui.PickMany(title, func() ([]tui.Item, error) {
			return loadRemoteItems(ctx, client)
		})
	}

	items, err := loadRemoteItems(ctx, client)
	if err != nil {
		return nil, err
	}
	fmt.Println(ui.InfoStyle.Render(title))
	for i, item := range items {
		fmt.Printf("    %s %s %s\n",
			ui.AccentStyle.Render(fmt.Sprintf("[%d]", i+1)),
			ui.InfoStyle.Render(item.Name),
			ui.DimStyle.Render("("+item.Detail+")"))
	}

	for {
		input, err := ui.Prompt("Select remotes (e.g. 1 or 1,3-4):")
		if err != nil {
			return nil, err
		}
		if input == "" {
			return nil, tui.ErrAborted
		}
		sel, err := browse.ParseSelection(input, len(items))
		if err != nil || sel.Kind != browse.SelectIndices {
			ui.PrintWarning("Please enter numbers or ranges between 1 and %d", len(items))
			continue
		}
		var chosen []tui.Item
		for _, i := range sel.Indices {
			chosen = append(chosen, items[i-1])
		}
		return chosen, nil
	}
}

// pickProtocol resolves the serving protocol: the --protocol flag when
// set, otherwise an interactive choice.
func pickProtocol(cmd *cobra.Command) (serve.Protocol, error) {
	if flagValue, _ := cmd.Flags().GetString("protocol"); flagValue != "" {
		return serve.ParseProtocol(flagValue)
	}

	options := serve.Protocols()
	if tui.ShouldRun(quietMode(cmd)) {
		item, err := tui.Pick("Select the serving protocol", func() ([]tui.Item, error) {
			items := make([]tui.Item, len(options))
			for i, p := range options {
				items[i] = tui.Item{Name: string(p)}
			}
			return items, nil
		})
		if err != nil {
			return "", err
		}
		return serve.ParseProtocol(item.Name)
	}

	labels := make([]string, len(options))
	for i, p := range options {
		labels[i] = string(p)
	}
	idx, err := ui.PromptSelect("Select the serving protocol:", labels)
	if err != nil {
		return "", err
	}
	return options[idx], nil
}

// addServeFlags registers the flags shared by the serve commands.
func addServeFlags(fs *pflag.FlagSet) {
	fs.StringP("protocol", "p", "", "Serving protocol: http, webdav or ftp (prompted when omitted)")
	fs.Int("port", 0, "Base port for positional allocation (default from config, 8080)")
	fs.String("addr", "", "Bind address (default: auto-detected LAN address)")
	fs.Bool("auth", false, "Prompt for a custom user/password pair instead of the configured one")
}
