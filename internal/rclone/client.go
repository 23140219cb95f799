// Package rclone wraps invocation of the external rclone engine.
//
// The engine is an opaque collaborator: this package constructs argument
// lists, runs the binary, and interprets nothing beyond exit status and the
// line-oriented output of the listing/config subcommands.
package rclone

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/tidwall/gjson"

	"github.com/rcmdr/cli/internal/browse"
)

// ErrNotInstalled indicates the rclone binary was not found on PATH.
var ErrNotInstalled = errors.New("rclone not found in PATH")

// Directory-not-found exit code, per rclone's documented exit status table.
const exitDirNotFound = 3

// Client runs rclone subcommands.
type Client struct {
	bin string
}

// NewClient locates the rclone binary.
//
// Returns:
//   - *Client: a client bound to the resolved binary path
//   - error: ErrNotInstalled when rclone is not on PATH
func NewClient() (*Client, error) {
	bin, err := exec.LookPath("rclone")
	if err != nil {
		return nil, ErrNotInstalled
	}
	return &Client{bin: bin}, nil
}

// Binary returns the resolved rclone binary path.
func (c *Client) Binary() string { return c.bin }

// output runs an rclone subcommand and returns its stdout.
func (c *Client) output(ctx context.Context, args ...string) (string, error) {
	log.Debug("Running rclone", "args", strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, c.bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", classifyRunError(err, stderr.String())
	}
	return stdout.String(), nil
}

// classifyRunError maps rclone failures onto the browse listing sentinels
// where the exit status identifies them, keeping stderr as detail otherwise.
func classifyRunError(err error, stderr string) error {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if exitErr.ExitCode() == exitDirNotFound {
			return browse.ErrNotFound
		}
		msg := strings.TrimSpace(stderr)
		if msg == "" {
			msg = err.Error()
		}
		if strings.Contains(msg, "permission denied") || strings.Contains(msg, "403") {
			return fmt.Errorf("%w: %s", browse.ErrPermissionDenied, firstLine(msg))
		}
		return fmt.Errorf("%w: %s", browse.ErrBackendUnavailable, firstLine(msg))
	}
	return err
}

// ListRemotes returns the configured remote names, sorted, without the
// trailing colon. Remotes with a "-shared" suffix are companions of a main
// drive remote and are filtered from interactive lists.
func (c *Client) ListRemotes(ctx context.Context) ([]string, error) {
	out, err := c.output(ctx, "listremotes")
	if err != nil {
		return nil, err
	}
	return ParseRemotes(out), nil
}

// ParseRemotes parses `rclone listremotes` output.
func ParseRemotes(out string) []string {
	var remotes []string
	for _, line := range strings.Split(out, "\n") {
		name := strings.TrimSuffix(strings.TrimSpace(line), ":")
		if name == "" || strings.HasSuffix(name, "-shared") {
			continue
		}
		remotes = append(remotes, name)
	}
	sort.Strings(remotes)
	return remotes
}

// ConfigDump returns the parsed JSON of `rclone config dump`.
func (c *Client) ConfigDump(ctx context.Context) (gjson.Result, error) {
	out, err := c.output(ctx, "config", "dump")
	if err != nil {
		return gjson.Result{}, err
	}
	if !gjson.Valid(out) {
		return gjson.Result{}, fmt.Errorf("rclone config dump returned invalid JSON")
	}
	return gjson.Parse(out), nil
}

// RemoteType returns the backend type of a remote ("drive", "mega",
// "google photos", ...). An unknown remote yields an empty string.
func (c *Client) RemoteType(ctx context.Context, remote string) (string, error) {
	dump, err := c.ConfigDump(ctx)
	if err != nil {
		return "", err
	}
	// Remote names may contain characters that are special in gjson
	// paths, so look the key up through the parsed map instead.
	name := strings.TrimSuffix(remote, ":")
	if section, ok := dump.Map()[name]; ok {
		return section.Get("type").String(), nil
	}
	return "", nil
}

// ConfigFile returns the path of the rclone configuration file.
func (c *Client) ConfigFile(ctx context.Context) (string, error) {
	out, err := c.output(ctx, "config", "file")
	if err != nil {
		return "", err
	}
	path := ParseConfigFilePath(out)
	if path == "" {
		return "", fmt.Errorf("could not determine rclone config file path")
	}
	return path, nil
}

// ParseConfigFilePath extracts the path from `rclone config file` output,
// which prints a descriptive line followed by the path itself.
func ParseConfigFilePath(out string) string {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line != "" && !strings.HasSuffix(line, ":") {
			return line
		}
	}
	return ""
}

// Lsf lists the immediate children of a remote path, directories carrying
// a trailing slash.
func (c *Client) Lsf(ctx context.Context, path string) ([]string, error) {
	out, err := c.output(ctx, "lsf", path)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			names = append(names, line)
		}
	}
	sort.Strings(names)
	return names, nil
}

// CopyOptions tunes a transfer.
type CopyOptions struct {
	// Overwrite re-copies files even when timestamps match
	// (rclone --ignore-times).
	Overwrite bool
}

func (o CopyOptions) args() []string {
	args := []string{"--progress"}
	if o.Overwrite {
		args = append(args, "--ignore-times")
	}
	return args
}

// Copy transfers src to dst with live progress on the terminal.
func (c *Client) Copy(ctx context.Context, src, dst string, opts CopyOptions) error {
	args := append([]string{"copy", src, dst}, opts.args()...)
	return c.runInteractive(ctx, nil, args...)
}

// CopyFilesFrom transfers the named children of base to dst in a single
// engine invocation by feeding the name list to `--files-from -` on stdin.
func (c *Client) CopyFilesFrom(ctx context.Context, names []string, base, dst string, opts CopyOptions) error {
	args := append([]string{"copy", "--files-from", "-", base, dst}, opts.args()...)
	stdin := strings.NewReader(strings.Join(names, "\n") + "\n")
	return c.runInteractive(ctx, stdin, args...)
}

// Sync makes dst identical to src.
func (c *Client) Sync(ctx context.Context, src, dst string) error {
	return c.runInteractive(ctx, nil, "sync", src, dst, "--progress")
}

// runInteractive runs rclone with the terminal attached so progress output
// renders in place.
func (c *Client) runInteractive(ctx context.Context, stdin io.Reader, args ...string) error {
	log.Debug("Running rclone", "args", strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, c.bin, args...)
	cmd.Stdin = stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("rclone %s: %w", args[0], err)
	}
	return nil
}

// firstLine trims msg to its first line.
func firstLine(msg string) string {
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		return msg[:i]
	}
	return msg
}
