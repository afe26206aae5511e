// SPDX-License-Identifier: MPL-2.0

package worker

import (
	"bufio"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"sync"

	"github.com/invowk/envscout/internal/pyenv"
)

//go:embed bootstrap.py
var bootstrap string

// ErrClosed is returned by Submit after the worker has been closed or has died.
var ErrClosed = errors.New("worker closed")

type (
	// Process is a running worker interpreter. Submit calls are serialized.
	Process struct {
		executable string
		cmd        *exec.Cmd
		stdin      io.WriteCloser
		stdout     *bufio.Reader

		mu     sync.Mutex
		nextID uint64
		closed bool
	}

	// EvalError is the failure reported by the worker for one unit of work.
	EvalError struct {
		Traceback string
	}

	request struct {
		ID   uint64 `json:"id"`
		Code string `json:"code"`
	}

	response struct {
		ID    uint64 `json:"id"`
		Value string `json:"value"`
		Error string `json:"error"`
	}

	// stderrLogger forwards the child's stderr to slog line by line.
	stderrLogger struct {
		executable string
	}
)

// Error implements the error interface.
func (e *EvalError) Error() string {
	lines := strings.Split(strings.TrimSpace(e.Traceback), "\n")
	return "worker evaluation failed: " + lines[len(lines)-1]
}

// Start launches executable with the bootstrap loop. The process outlives ctx;
// ctx only bounds the start itself. Call Close to stop it.
func Start(ctx context.Context, executable string) (*Process, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	//nolint:gosec // the executable is a validated interpreter path
	cmd := exec.Command(executable, "-u", "-c", bootstrap)
	cmd.Stderr = &stderrLogger{executable: executable}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("worker stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("worker stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, &pyenv.ProcessLaunchError{Executable: executable, Err: err}
	}

	slog.Debug("started python worker", "executable", executable, "pid", cmd.Process.Pid)
	return &Process{
		executable: executable,
		cmd:        cmd,
		stdin:      stdin,
		stdout:     bufio.NewReader(stdout),
	}, nil
}

// Executable returns the interpreter the worker runs.
func (p *Process) Executable() string { return p.executable }

// Submit sends w to the worker and waits for its response. If ctx ends first
// the worker is killed, because the request/response pairing can no longer
// be trusted.
func (p *Process) Submit(ctx context.Context, w pyenv.Work) (pyenv.Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return pyenv.Result{}, ErrClosed
	}

	p.nextID++
	req := request{ID: p.nextID, Code: w.Code}
	line, err := json.Marshal(req)
	if err != nil {
		return pyenv.Result{}, fmt.Errorf("encode work: %w", err)
	}

	type outcome struct {
		resp response
		err  error
	}
	done := make(chan outcome, 1)
	go func() {
		if _, err := p.stdin.Write(append(line, '\n')); err != nil {
			done <- outcome{err: fmt.Errorf("send work: %w", err)}
			return
		}
		raw, err := p.stdout.ReadBytes('\n')
		if err != nil {
			done <- outcome{err: fmt.Errorf("read result: %w", err)}
			return
		}
		var resp response
		if err := json.Unmarshal(raw, &resp); err != nil {
			done <- outcome{err: fmt.Errorf("decode result: %w", err)}
			return
		}
		done <- outcome{resp: resp}
	}()

	select {
	case <-ctx.Done():
		p.kill()
		<-done
		return pyenv.Result{}, ctx.Err()
	case out := <-done:
		if out.err != nil {
			p.kill()
			return pyenv.Result{}, errors.Join(ErrClosed, out.err)
		}
		if out.resp.ID != req.ID {
			p.kill()
			return pyenv.Result{}, fmt.Errorf("%w: response id %d for request %d", ErrClosed, out.resp.ID, req.ID)
		}
		if out.resp.Error != "" {
			return pyenv.Result{}, &EvalError{Traceback: out.resp.Error}
		}
		return pyenv.Result{Value: out.resp.Value}, nil
	}
}

// Close stops the worker by closing its stdin and waiting for it to exit.
func (p *Process) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	if err := p.stdin.Close(); err != nil {
		slog.Debug("closing worker stdin failed", "executable", p.executable, "error", err)
	}
	if err := p.cmd.Wait(); err != nil {
		return fmt.Errorf("worker %s: %w", p.executable, err)
	}
	return nil
}

// kill terminates the child; callers hold p.mu.
func (p *Process) kill() {
	p.closed = true
	if err := p.cmd.Process.Kill(); err != nil {
		slog.Debug("killing worker failed", "executable", p.executable, "error", err)
	}
	_ = p.stdin.Close()
	_ = p.cmd.Wait() // reaps the child; the exit status is meaningless after a kill
}

// Write implements io.Writer.
func (l *stderrLogger) Write(b []byte) (int, error) {
	for _, line := range strings.Split(strings.TrimRight(string(b), "\n"), "\n") {
		slog.Debug("python worker stderr", "executable", l.executable, "line", line)
	}
	return len(b), nil
}
