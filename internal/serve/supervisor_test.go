package serve

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"
)

// syncBuffer is a goroutine-safe buffer; the supervisor writes from the
// launch loop and from per-pipe stream goroutines concurrently.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// shellFactory substitutes a shell command for the rclone binary, keeping
// the process-group setup the supervisor's shutdown relies on.
func shellFactory(script func(Target) string) func(Target) *exec.Cmd {
	return func(t Target) *exec.Cmd {
		cmd := exec.Command("/bin/sh", "-c", script(t))
		cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
		return cmd
	}
}

func testTargets(names ...string) []Target {
	targets := make([]Target, len(names))
	for i, name := range names {
		targets[i] = Target{
			Name:     name,
			Root:     name + ":",
			Protocol: ProtocolHTTP,
			BindAddr: "127.0.0.1",
			Port:     8080 + i,
		}
	}
	return targets
}

// TestSupervisorStartEmpty rejects an empty plan.
func TestSupervisorStartEmpty(t *testing.T) {
	s := NewSupervisor("rclone", WithStreamOutput(io.Discard))
	if err := s.Start(nil); !errors.Is(err, ErrEmptyPlan) {
		t.Fatalf("Start(nil) = %v, want ErrEmptyPlan", err)
	}
}

// TestSupervisorRunsAndStops launches three long-lived children, cancels,
// and verifies the batch is stopped together with clean exit states.
func TestSupervisorRunsAndStops(t *testing.T) {
	s := NewSupervisor("rclone",
		WithCommandFactory(shellFactory(func(Target) string { return "sleep 30" })),
		WithGrace(100*time.Millisecond),
		WithStreamOutput(io.Discard),
	)

	if err := s.Start(testTargets("alpha", "beta", "gamma")); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if got := s.Running(); got != 3 {
		t.Fatalf("Running() = %d, want 3", got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	done := make(chan struct{})
	go func() {
		s.Wait(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Wait did not return after cancellation")
	}

	for _, st := range s.Statuses() {
		if st.State != StateExited {
			t.Errorf("%s: state = %v, want exited", st.Name, st.State)
		}
	}
	if got := s.Running(); got != 0 {
		t.Errorf("Running() after shutdown = %d, want 0", got)
	}
}

// TestSupervisorPartialSpawnFailure verifies one unlaunchable target does
// not prevent its siblings from starting.
func TestSupervisorPartialSpawnFailure(t *testing.T) {
	factory := func(target Target) *exec.Cmd {
		if target.Name == "beta" {
			return exec.Command("/nonexistent/rclone")
		}
		cmd := exec.Command("/bin/sh", "-c", "sleep 30")
		cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
		return cmd
	}
	s := NewSupervisor("rclone",
		WithCommandFactory(factory),
		WithGrace(100*time.Millisecond),
		WithStreamOutput(io.Discard),
	)

	if err := s.Start(testTargets("alpha", "beta", "gamma")); err != nil {
		t.Fatalf("Start: %v", err)
	}

	byName := map[string]Status{}
	for _, st := range s.Statuses() {
		byName[st.Name] = st
	}
	if byName["alpha"].State != StateRunning || byName["gamma"].State != StateRunning {
		t.Errorf("alpha/gamma = %v/%v, want running", byName["alpha"].State, byName["gamma"].State)
	}
	if byName["beta"].State != StateFailed {
		t.Errorf("beta = %v, want failed", byName["beta"].State)
	}
	if byName["beta"].Reason == nil {
		t.Error("beta should carry a failure diagnostic")
	}
	if got := s.Running(); got != 2 {
		t.Errorf("Running() = %d, want 2", got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.Wait(ctx)
}

// TestSupervisorChildFailure verifies a crashing child is recorded as
// failed with its exit diagnostic, while clean exits are not.
func TestSupervisorChildFailure(t *testing.T) {
	factory := shellFactory(func(target Target) string {
		if target.Name == "bad" {
			return "exit 7"
		}
		return "true"
	})
	s := NewSupervisor("rclone",
		WithCommandFactory(factory),
		WithStreamOutput(io.Discard),
	)

	if err := s.Start(testTargets("good", "bad")); err != nil {
		t.Fatalf("Start: %v", err)
	}
	s.Wait(context.Background())

	byName := map[string]Status{}
	for _, st := range s.Statuses() {
		byName[st.Name] = st
	}
	if byName["good"].State != StateExited {
		t.Errorf("good = %v, want exited", byName["good"].State)
	}
	if byName["bad"].State != StateFailed || byName["bad"].Reason == nil {
		t.Errorf("bad = %+v, want failed with reason", byName["bad"])
	}
}

// TestSupervisorStatusOrder verifies snapshots come back in port order.
func TestSupervisorStatusOrder(t *testing.T) {
	s := NewSupervisor("rclone",
		WithCommandFactory(shellFactory(func(Target) string { return "true" })),
		WithStreamOutput(io.Discard),
	)

	targets := testTargets("alpha", "beta", "gamma")
	if err := s.Start(targets); err != nil {
		t.Fatalf("Start: %v", err)
	}
	s.Wait(context.Background())

	statuses := s.Statuses()
	if len(statuses) != 3 {
		t.Fatalf("len(statuses) = %d, want 3", len(statuses))
	}
	for i, st := range statuses {
		if st.Port != 8080+i {
			t.Errorf("statuses[%d].Port = %d, want %d", i, st.Port, 8080+i)
		}
		if st.ID == "" {
			t.Errorf("statuses[%d] has empty ID", i)
		}
	}
}

// TestSupervisorStreamsOutput verifies child output is forwarded with the
// target-name prefix.
func TestSupervisorStreamsOutput(t *testing.T) {
	var buf syncBuffer
	s := NewSupervisor("rclone",
		WithCommandFactory(shellFactory(func(Target) string { return "echo hello from child" })),
		WithStreamOutput(&buf),
	)

	if err := s.Start(testTargets("alpha")); err != nil {
		t.Fatalf("Start: %v", err)
	}
	s.Wait(context.Background())

	out := buf.String()
	if !strings.Contains(out, "hello from child") {
		t.Errorf("output %q missing child line", out)
	}
	if !strings.Contains(out, "alpha") {
		t.Errorf("output %q missing target prefix", out)
	}
}
