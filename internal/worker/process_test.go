// SPDX-License-Identifier: MPL-2.0

package worker

import (
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/invowk/envscout/internal/pyenv"
	"github.com/invowk/envscout/internal/testutil"
)

func requirePython(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	exe, err := exec.LookPath("python3")
	if err != nil {
		t.Skip("python3 not available")
	}
	return exe
}

func TestProcess_Submit(t *testing.T) {
	exe := requirePython(t)
	t.Parallel()

	p, err := Start(context.Background(), exe)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer testutil.DeferClose(t, p)()

	ctx := context.Background()
	tests := []struct {
		code string
		want string
	}{
		{"1 + 1", "2"},
		{"x = 40", ""},
		{"x + 2", "42"},
		{"print('noise')", "None"},
		{"'a' * 3", "'aaa'"},
	}
	for _, tt := range tests {
		got, err := p.Submit(ctx, pyenv.Work{Code: tt.code})
		if err != nil {
			t.Fatalf("Submit(%q) error = %v", tt.code, err)
		}
		if got.Value != tt.want {
			t.Errorf("Submit(%q) = %q, want %q", tt.code, got.Value, tt.want)
		}
	}
}

func TestProcess_EvalError(t *testing.T) {
	exe := requirePython(t)
	t.Parallel()

	p, err := Start(context.Background(), exe)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer testutil.DeferClose(t, p)()

	_, err = p.Submit(context.Background(), pyenv.Work{Code: "1 / 0"})
	var evalErr *EvalError
	if !errors.As(err, &evalErr) {
		t.Fatalf("Submit() error = %v, want EvalError", err)
	}
	if !strings.Contains(evalErr.Error(), "ZeroDivisionError") {
		t.Errorf("EvalError = %q", evalErr.Error())
	}

	// The worker survives evaluation errors.
	if got, err := p.Submit(context.Background(), pyenv.Work{Code: "3"}); err != nil || got.Value != "3" {
		t.Errorf("Submit() after error = %v, %v", got, err)
	}
}

func TestProcess_ContextCancelKillsWorker(t *testing.T) {
	exe := requirePython(t)
	t.Parallel()

	p, err := Start(context.Background(), exe)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	if _, err := p.Submit(ctx, pyenv.Work{Code: "__import__('time').sleep(30)"}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Submit() error = %v, want deadline exceeded", err)
	}
	if _, err := p.Submit(context.Background(), pyenv.Work{Code: "1"}); !errors.Is(err, ErrClosed) {
		t.Errorf("Submit() after kill error = %v, want ErrClosed", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("Close() after kill error = %v", err)
	}
}

func TestProcess_CloseTwice(t *testing.T) {
	exe := requirePython(t)
	t.Parallel()

	p, err := Start(context.Background(), exe)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	testutil.MustClose(t, p)
	testutil.MustClose(t, p)
	if _, err := p.Submit(context.Background(), pyenv.Work{Code: "1"}); !errors.Is(err, ErrClosed) {
		t.Errorf("Submit() after Close error = %v", err)
	}
}

func TestStart_LaunchFailure(t *testing.T) {
	t.Parallel()

	_, err := Start(context.Background(), filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, pyenv.ErrProcessLaunchFailure) {
		t.Errorf("Start() error = %v, want ErrProcessLaunchFailure", err)
	}
}

func TestStart_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Start(ctx, "python3"); !errors.Is(err, context.Canceled) {
		t.Errorf("Start() error = %v, want context.Canceled", err)
	}
}

func TestEvalError_LastLine(t *testing.T) {
	t.Parallel()

	err := &EvalError{Traceback: "Traceback (most recent call last):\n  File \"<work>\", line 1\nNameError: name 'x' is not defined\n"}
	if got := err.Error(); got != "worker evaluation failed: NameError: name 'x' is not defined" {
		t.Errorf("Error() = %q", got)
	}
}
