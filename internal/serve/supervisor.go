package serve

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// ProcState is the last-known status of a supervised process.
type ProcState int

const (
	StateStarting ProcState = iota
	StateRunning
	StateExited
	StateFailed
)

// String renders the state for status summaries.
func (s ProcState) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateExited:
		return "exited"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Status is a point-in-time snapshot of one supervised process.
type Status struct {
	ID     string
	Name   string
	Port   int
	State  ProcState
	Reason error
}

// process binds a running child to its target. The supervisor exclusively
// owns these; nothing else mutates them.
type process struct {
	id        string
	target    Target
	cmd       *exec.Cmd
	startedAt time.Time
	state     ProcState
	reason    error
}

// defaultGrace is the bounded wait between a termination request and the
// forceful kill escalation.
const defaultGrace = 3 * time.Second

// ANSI color codes for per-target output prefixes.
var prefixColors = []string{
	"\033[35m", // magenta
	"\033[32m", // green
	"\033[33m", // yellow
	"\033[36m", // cyan
	"\033[34m", // blue
	"\033[37m", // white
}

const resetColor = "\033[0m"

// Supervisor launches one external server process per Target and owns the
// batch lifecycle: start, output streaming, coordinated shutdown. It never
// restarts a child; a restart is a new Start by the caller.
type Supervisor struct {
	newCmd  func(Target) *exec.Cmd
	grace   time.Duration
	out     io.Writer
	mu      sync.Mutex
	procs   []*process
	waiters sync.WaitGroup
	streams sync.WaitGroup
	stopped bool
}

// SupervisorOption configures a Supervisor.
type SupervisorOption func(*Supervisor)

// WithCommandFactory overrides how a Target becomes an exec.Cmd. Used by
// tests to substitute the rclone binary.
func WithCommandFactory(f func(Target) *exec.Cmd) SupervisorOption {
	return func(s *Supervisor) { s.newCmd = f }
}

// WithGrace overrides the shutdown grace period.
func WithGrace(d time.Duration) SupervisorOption {
	return func(s *Supervisor) { s.grace = d }
}

// WithStreamOutput redirects child output (default os.Stdout).
func WithStreamOutput(w io.Writer) SupervisorOption {
	return func(s *Supervisor) { s.out = w }
}

// NewSupervisor creates a supervisor that launches the given rclone binary.
func NewSupervisor(binary string, opts ...SupervisorOption) *Supervisor {
	s := &Supervisor{
		grace: defaultGrace,
		out:   os.Stdout,
	}
	s.newCmd = func(t Target) *exec.Cmd {
		cmd := exec.Command(binary, t.Args()...)
		cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
		return cmd
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches every target in plan order. A target that fails to spawn
// is recorded as failed with its diagnostic and does not prevent the
// remaining targets from being attempted.
//
// Returns ErrEmptyPlan for an empty target list; otherwise always nil —
// per-target outcomes are reported by Statuses.
func (s *Supervisor) Start(targets []Target) error {
	if len(targets) == 0 {
		return ErrEmptyPlan
	}

	for i, target := range targets {
		p := &process{
			id:     uuid.NewString(),
			target: target,
			state:  StateStarting,
		}
		s.mu.Lock()
		s.procs = append(s.procs, p)
		s.mu.Unlock()

		color := prefixColors[i%len(prefixColors)]
		cmd := s.newCmd(target)

		stdout, err := cmd.StdoutPipe()
		if err != nil {
			s.markFailed(p, fmt.Errorf("stdout pipe: %w", err))
			continue
		}
		stderr, err := cmd.StderrPipe()
		if err != nil {
			s.markFailed(p, fmt.Errorf("stderr pipe: %w", err))
			continue
		}

		log.Debug("Launching server", "target", target.Name, "addr", target.Addr())
		if err := cmd.Start(); err != nil {
			s.markFailed(p, fmt.Errorf("spawn: %w", err))
			fmt.Fprintf(s.out, "%s%-16s%s | failed to start: %v\n", color, target.Name, resetColor, err)
			continue
		}

		s.mu.Lock()
		p.cmd = cmd
		p.startedAt = time.Now()
		p.state = StateRunning
		s.mu.Unlock()

		fmt.Fprintf(s.out, "%s%-16s%s | serving %s on %s (pid %d)\n",
			color, target.Name, resetColor, target.Root, target.URL(), cmd.Process.Pid)

		s.streamPrefixed(target.Name, color, stdout)
		s.streamPrefixed(target.Name, color, stderr)

		s.waiters.Add(1)
		go s.reap(p)
	}
	return nil
}

// streamPrefixed copies child output line by line with a colored name
// prefix, docker-compose style.
func (s *Supervisor) streamPrefixed(name, color string, r io.Reader) {
	s.streams.Add(1)
	go func() {
		defer s.streams.Done()
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
		for scanner.Scan() {
			fmt.Fprintf(s.out, "%s%-16s%s | %s\n", color, name, resetColor, scanner.Text())
		}
	}()
}

// reap waits for one child and records its final state.
func (s *Supervisor) reap(p *process) {
	defer s.waiters.Done()
	err := p.cmd.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped || err == nil {
		// Exits during coordinated shutdown are expected and clean.
		p.state = StateExited
		return
	}
	p.state = StateFailed
	p.reason = err
}

// markFailed records a spawn-stage failure.
func (s *Supervisor) markFailed(p *process, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.state = StateFailed
	p.reason = err
	log.Error("Failed to launch server", "target", p.target.Name, "error", err)
}

// Wait blocks until every child has exited or ctx is cancelled (the
// external interrupt). On cancellation it performs coordinated shutdown:
// SIGTERM to every live process group, grace period, then SIGKILL for
// survivors. The whole batch is stopped together; there is no per-target
// cancellation.
func (s *Supervisor) Wait(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		s.waiters.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		s.Shutdown()
		<-done
	case <-done:
	}
	s.streams.Wait()
}

// Shutdown requests termination of every live child and escalates to
// SIGKILL after the grace period.
func (s *Supervisor) Shutdown() {
	s.mu.Lock()
	s.stopped = true
	var live []*process
	for _, p := range s.procs {
		if p.cmd != nil && p.cmd.Process != nil && (p.state == StateStarting || p.state == StateRunning) {
			live = append(live, p)
		}
	}
	s.mu.Unlock()

	if len(live) == 0 {
		return
	}

	for _, p := range live {
		_ = syscall.Kill(-p.cmd.Process.Pid, syscall.SIGTERM)
	}

	time.Sleep(s.grace)
	for _, p := range live {
		// Signal 0 probes whether the process is still alive.
		if err := p.cmd.Process.Signal(syscall.Signal(0)); err == nil {
			log.Warn("Server did not exit after SIGTERM, sending SIGKILL", "target", p.target.Name, "pid", p.cmd.Process.Pid)
			_ = syscall.Kill(-p.cmd.Process.Pid, syscall.SIGKILL)
		}
	}
}

// Statuses returns a snapshot of every supervised process, in launch order.
func (s *Supervisor) Statuses() []Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Status, 0, len(s.procs))
	for _, p := range s.procs {
		out = append(out, Status{
			ID:     p.id,
			Name:   p.target.Name,
			Port:   p.target.Port,
			State:  p.state,
			Reason: p.reason,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Port < out[j].Port })
	return out
}

// Running reports how many children are currently live.
func (s *Supervisor) Running() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, p := range s.procs {
		if p.state == StateStarting || p.state == StateRunning {
			n++
		}
	}
	return n
}
