// Package serve plans and supervises rclone serve processes.
//
// The planner is pure: it turns chosen remotes (or one local path) plus a
// protocol into an ordered list of immutable Targets with positionally
// allocated ports. The supervisor launches one child process per target and
// owns the whole batch lifecycle.
package serve

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrEmptyPlan indicates no serve targets were selected. It aborts the
// serve operation before any process is launched.
var ErrEmptyPlan = errors.New("no targets to serve")

// Protocol is a supported serving protocol.
type Protocol string

const (
	ProtocolHTTP   Protocol = "http"
	ProtocolWebDAV Protocol = "webdav"
	ProtocolFTP    Protocol = "ftp"
)

// Protocols lists the supported protocols in display order.
func Protocols() []Protocol {
	return []Protocol{ProtocolHTTP, ProtocolWebDAV, ProtocolFTP}
}

// ParseProtocol validates a protocol name.
func ParseProtocol(s string) (Protocol, error) {
	switch Protocol(strings.ToLower(strings.TrimSpace(s))) {
	case ProtocolHTTP:
		return ProtocolHTTP, nil
	case ProtocolWebDAV:
		return ProtocolWebDAV, nil
	case ProtocolFTP:
		return ProtocolFTP, nil
	default:
		return "", fmt.Errorf("unsupported protocol %q (http, webdav, ftp)", s)
	}
}

// CachePolicy is the materialization strategy applied before serving.
type CachePolicy struct {
	// Mode is the vfs cache mode; "full" means download-before-serve.
	Mode string

	// MaxSize bounds the cache, in rclone size syntax ("100M", "10G").
	MaxSize string

	// MaxAge is how long cached files are kept.
	MaxAge time.Duration
}

// cacheAge is fixed for every target.
const cacheAge = 24 * time.Hour

// cachePolicyFor picks the cache bound by backend class: small for
// low-latency backends, large for backends known to hold large media.
func cachePolicyFor(remoteType string) CachePolicy {
	policy := CachePolicy{Mode: "full", MaxAge: cacheAge}
	switch normalizeType(remoteType) {
	case "mega":
		policy.MaxSize = "100M"
	case "drive", "gphotos":
		policy.MaxSize = "10G"
	default:
		policy.MaxSize = "1G"
	}
	return policy
}

// normalizeType canonicalizes rclone backend type names ("google photos"
// appears both spaced and as "gphotos" depending on rclone version).
func normalizeType(remoteType string) string {
	t := strings.ToLower(strings.TrimSpace(remoteType))
	if t == "google photos" {
		return "gphotos"
	}
	return t
}

// Remote is one chosen remote as it leaves the selection step.
type Remote struct {
	// Name is the rclone remote name, without the trailing colon.
	Name string

	// Type is the rclone backend type ("drive", "mega", ...).
	Type string

	// IncludeShared additionally serves the shared drive on the next
	// port. Only meaningful for drive remotes, set by user opt-in.
	IncludeShared bool
}

// Defaults are the immutable configuration constants injected into the
// planner: credential pair, port scheme, bind address and per-type extra
// flags are inputs here, never computed.
type Defaults struct {
	BasePort  int
	BindAddr  string
	User      string
	Pass      string
	ExtraArgs func(remoteType string) []string
}

// Target is one planned server. Immutable once handed to the supervisor.
type Target struct {
	// Name is the display name ("gdrive", "gdrive (shared)", "local").
	Name string

	// Root is what rclone serves: "remote:" or a local path.
	Root string

	// Type is the backend type; empty for local paths.
	Type string

	Protocol Protocol
	BindAddr string
	Port     int
	User     string
	Pass     string

	// Cache is zero for local targets (nothing to materialize).
	Cache CachePolicy

	// SharedDrive serves the remote's shared-with-me section.
	SharedDrive bool

	// ReadSizeHint makes the photo-storage backend report true file
	// sizes, which some protocol clients require.
	ReadSizeHint bool

	// Extra carries per-remote-type override flags from flags.json.
	Extra []string
}

// Addr returns the host:port the target binds.
func (t Target) Addr() string {
	return t.BindAddr + ":" + strconv.Itoa(t.Port)
}

// URL returns a client-facing URL for the target.
func (t Target) URL() string {
	scheme := "http"
	if t.Protocol == ProtocolFTP {
		scheme = "ftp"
	}
	return fmt.Sprintf("%s://%s", scheme, t.Addr())
}

// Args renders the full rclone argument list for the target.
func (t Target) Args() []string {
	args := []string{
		"serve", string(t.Protocol), t.Root,
		"--addr", t.Addr(),
		"--user", t.User,
		"--pass", t.Pass,
	}
	if t.Cache.Mode != "" {
		args = append(args,
			"--vfs-cache-mode", t.Cache.Mode,
			"--vfs-cache-max-size", t.Cache.MaxSize,
			"--vfs-cache-max-age", formatAge(t.Cache.MaxAge),
		)
	}
	if t.ReadSizeHint {
		args = append(args, "--gphotos-read-size")
	}
	if t.SharedDrive {
		args = append(args, "--drive-shared-with-me")
	}
	return append(args, t.Extra...)
}

// formatAge renders a duration in rclone's flag syntax ("24h", not
// "24h0m0s").
func formatAge(d time.Duration) string {
	s := d.String()
	if strings.HasSuffix(s, "m0s") {
		s = strings.TrimSuffix(s, "0s")
	}
	if strings.HasSuffix(s, "h0m") {
		s = strings.TrimSuffix(s, "0m")
	}
	return s
}

// BuildPlan computes serve targets for the chosen remotes, in input order.
// A drive remote with shared opt-in contributes two consecutive targets.
// Ports are allocated positionally from Defaults.BasePort over the expanded
// sequence; duplicates in the input are permitted and planned independently.
func BuildPlan(remotes []Remote, protocol Protocol, d Defaults) ([]Target, error) {
	if len(remotes) == 0 {
		return nil, ErrEmptyPlan
	}

	var plan []Target
	next := func() int { return d.BasePort + len(plan) }

	for _, r := range remotes {
		t := Target{
			Name:         r.Name,
			Root:         r.Name + ":",
			Type:         r.Type,
			Protocol:     protocol,
			BindAddr:     d.BindAddr,
			Port:         next(),
			User:         d.User,
			Pass:         d.Pass,
			Cache:        cachePolicyFor(r.Type),
			ReadSizeHint: normalizeType(r.Type) == "gphotos",
			Extra:        extraArgs(d, r.Type),
		}
		plan = append(plan, t)

		if r.IncludeShared && normalizeType(r.Type) == "drive" {
			shared := t
			shared.Name = r.Name + " (shared)"
			shared.Port = next()
			shared.SharedDrive = true
			plan = append(plan, shared)
		}
	}
	return plan, nil
}

// BuildLocalPlan computes the single target serving a local path. The
// local filesystem needs no materialization, so the target carries no
// cache policy.
func BuildLocalPlan(path string, protocol Protocol, d Defaults) ([]Target, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrEmptyPlan
	}
	return []Target{{
		Name:     "local",
		Root:     path,
		Protocol: protocol,
		BindAddr: d.BindAddr,
		Port:     d.BasePort,
		User:     d.User,
		Pass:     d.Pass,
	}}, nil
}

func extraArgs(d Defaults, remoteType string) []string {
	if d.ExtraArgs == nil {
		return nil
	}
	return d.ExtraArgs(remoteType)
}
