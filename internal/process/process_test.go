package process

import (
	"errors"
	"os/exec"
	"path/filepath"
	"syscall"
	"testing"
	"time"
)

func TestExpectSignalExit(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		err     error
		signal  syscall.Signal
		wantErr bool
	}{
		"nil error":           {},
		"SIGTERM is expected": {signal: syscall.SIGTERM},
		"SIGKILL is expected": {signal: syscall.SIGKILL},
		"SIGINT is unexpected": {
			signal:  syscall.SIGINT,
			wantErr: true,
		},
		"plain error is unexpected": {
			err:     errors.New("exit status 2"),
			wantErr: true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			in := tc.err
			if in == nil && tc.signal != 0 {
				in = makeSignalExitError(t, tc.signal)
			}
			got := expectSignalExit(in, "echo")
			if tc.wantErr != (got != nil) {
				t.Fatalf("expectSignalExit() = %v, wantErr %v", got, tc.wantErr)
			}
		})
	}
}

func TestDrainDone(t *testing.T) {
	t.Parallel()

	t.Run("receives value", func(t *testing.T) {
		t.Parallel()
		done := make(chan error, 1)
		want := errors.New("crashed")
		done <- want
		ok, err := drainDone(done, time.Second)
		if !ok || !errors.Is(err, want) {
			t.Fatalf("drainDone() = (%v, %v), want (true, %v)", ok, err, want)
		}
	})

	t.Run("times out", func(t *testing.T) {
		t.Parallel()
		ok, err := drainDone(make(chan error), 10*time.Millisecond)
		if ok || err != nil {
			t.Fatalf("drainDone() = (%v, %v), want (false, nil)", ok, err)
		}
	})
}

func TestNew_PanicsOnEmptyName(t *testing.T) {
	t.Parallel()

	defer func() {
		if r := recover(); r != "httpenv: process name must not be empty" {
			t.Fatalf("recover() = %v", r)
		}
	}()
	New("", nil, 0)
}

func TestProcess_StartErrors(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		cmd     *exec.Cmd
		dir     string
		wantErr error
	}{
		"nil cmd":        {cmd: nil, dir: "/tmp", wantErr: ErrNilCmd},
		"empty path":     {cmd: &exec.Cmd{}, dir: "/tmp", wantErr: ErrEmptyCmdPath},
		"empty data dir": {cmd: exec.Command("sleep", "1"), dir: "", wantErr: ErrEmptyDataDir},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			p := New("echo", nil, time.Second)
			if err := p.Start(tc.cmd, tc.dir); !errors.Is(err, tc.wantErr) {
				t.Errorf("Start() error = %v, want %v", err, tc.wantErr)
			}
			if p.IsStarted() {
				t.Error("process must not be started after a failed Start")
			}
		})
	}
}

func TestProcess_StartStop(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	p := New("sleeper", nil, time.Second)
	if err := p.Start(exec.Command("sleep", "60"), dir); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if !p.IsStarted() {
		t.Fatal("expected started process")
	}
	if p.Exited() == nil {
		t.Fatal("Exited() must be non-nil while running")
	}
	if err := p.Start(exec.Command("sleep", "60"), dir); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("second Start() error = %v, want ErrAlreadyStarted", err)
	}

	if err := p.Stop(5 * time.Second); err != nil {
		t.Fatalf("Stop() error: %v", err)
	}
	if p.IsStarted() {
		t.Error("expected stopped process")
	}
	p.Close()

	if got, want := p.Logs().StdoutPath(), filepath.Join(dir, "sleeper-stdout.log"); got != want {
		t.Errorf("StdoutPath() = %q, want %q", got, want)
	}
}

func TestProcess_StopNotStarted(t *testing.T) {
	t.Parallel()

	p := New("echo", nil, 0)
	if err := p.Stop(time.Second); err != nil {
		t.Fatalf("Stop() on unstarted process = %v, want nil", err)
	}
	p.Close()
}

func TestStopCloseAndNil(t *testing.T) {
	t.Parallel()

	t.Run("nil pointer", func(t *testing.T) {
		t.Parallel()
		if err := StopCloseAndNil[*fakeStoppable](nil, time.Second); err != nil {
			t.Fatalf("expected nil, got %v", err)
		}
	})

	t.Run("stops closes and clears", func(t *testing.T) {
		t.Parallel()
		f := &fakeStoppable{}
		p := f
		if err := StopCloseAndNil(&p, 5*time.Second); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p != nil || !f.stopped || !f.closed || f.stopTimeout != 5*time.Second {
			t.Errorf("unexpected state: p=%v stopped=%v closed=%v timeout=%v", p, f.stopped, f.closed, f.stopTimeout)
		}
	})

	t.Run("closes and clears on stop error", func(t *testing.T) {
		t.Parallel()
		f := &fakeStoppable{stopErr: errors.New("stop failed")}
		p := f
		if err := StopCloseAndNil(&p, time.Second); err == nil || err.Error() != "stop failed" {
			t.Fatalf("error = %v, want stop failed", err)
		}
		if p != nil || !f.closed {
			t.Error("pointer must be cleared and Close called even when Stop fails")
		}
	})
}

type fakeStoppable struct {
	stopped     bool
	closed      bool
	stopErr     error
	stopTimeout time.Duration
}

func (f *fakeStoppable) Stop(timeout time.Duration) error {
	f.stopped = true
	f.stopTimeout = timeout
	return f.stopErr
}

func (f *fakeStoppable) Close() {
	f.closed = true
}

// makeSignalExitError produces an authentic *exec.ExitError for sig by
// signaling a real child.
func makeSignalExitError(tb testing.TB, sig syscall.Signal) *exec.ExitError {
	tb.Helper()
	cmd := exec.Command("sleep", "60")
	if err := cmd.Start(); err != nil {
		tb.Fatalf("start sleep: %v", err)
	}
	if err := cmd.Process.Signal(sig); err != nil {
		_ = cmd.Process.Kill()
		tb.Fatalf("signal %v: %v", sig, err)
	}
	var exitErr *exec.ExitError
	if err := cmd.Wait(); !errors.As(err, &exitErr) {
		tb.Fatalf("expected *exec.ExitError, got %v", err)
	}
	return exitErr
}
