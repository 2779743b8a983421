// Package procrun invokes external executables and resolves each invocation
// to success or a typed [ProcessFailure].
//
// Output of the child process is delivered line by line, as it arrives, to a
// [LineFunc] callback; by default lines go to the structured logger. Control
// flow never depends on the output: only the exit code decides the result.
//
//	r := procrun.New(procrun.Options{Logger: logger})
//	err := r.Run(ctx, procrun.Invocation{Executable: "./mandelbrot", Args: args})
//	if code, ok := procrun.ExitCode(err); ok {
//	    logger.Error("renderer failed", "exit", code)
//	}
//
// A non-zero exit is always a failure and is never retried here.
package procrun

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/semaphore"

	"github.com/matzehuels/mandelzoom/pkg/observability"
)

// Stream identifies which output stream a line came from.
type Stream string

// Output streams.
const (
	Stdout Stream = "stdout"
	Stderr Stream = "stderr"
)

// LineFunc receives one line of child output. Calls are serialized per Runner.
type LineFunc func(inv Invocation, stream Stream, line string)

// maxLineSize bounds a single buffered output line.
const maxLineSize = 1 << 20

// waitDelay bounds how long Wait blocks on pipes held open by grandchildren
// after the child itself has been killed.
const waitDelay = 5 * time.Second

// Invocation describes one external process call. It is never persisted.
type Invocation struct {
	Executable string
	Args       []string
}

// Name returns the base name of the executable, used as a log and metric label.
func (inv Invocation) Name() string {
	return filepath.Base(inv.Executable)
}

// String renders the invocation as a shell-like command line.
func (inv Invocation) String() string {
	if len(inv.Args) == 0 {
		return inv.Executable
	}
	return inv.Executable + " " + strings.Join(inv.Args, " ")
}

// Executor runs invocations. *Runner is the production implementation; tests
// substitute fakes that write the expected output files.
type Executor interface {
	Run(ctx context.Context, inv Invocation) error
}

// ProcessFailure reports an invocation that did not exit zero.
// ExitCode is -1 when the process could not be started or was killed by a signal.
type ProcessFailure struct {
	Invocation Invocation
	ExitCode   int
	Err        error
}

// Error implements the error interface.
func (e *ProcessFailure) Error() string {
	if e.ExitCode < 0 {
		return fmt.Sprintf("%s: %v", e.Invocation.Name(), e.Err)
	}
	return fmt.Sprintf("%s exited with code %d", e.Invocation.Name(), e.ExitCode)
}

// Unwrap returns the underlying exec error.
func (e *ProcessFailure) Unwrap() error { return e.Err }

// ExitCode extracts the exit code from a *ProcessFailure anywhere in err's chain.
func ExitCode(err error) (int, bool) {
	var pf *ProcessFailure
	if errors.As(err, &pf) {
		return pf.ExitCode, true
	}
	return 0, false
}

// Options configures a Runner.
type Options struct {
	// Logger receives output lines when OnLine is nil. Defaults to log.Default().
	Logger *log.Logger

	// OnLine overrides where output lines are delivered.
	OnLine LineFunc

	// Timeout bounds each invocation. Zero means no timeout: a hung process
	// blocks its caller until the context is cancelled.
	Timeout time.Duration

	// MaxProcesses bounds concurrently running processes. Zero means unlimited.
	MaxProcesses int64
}

// Runner runs external processes. It is safe for concurrent use.
type Runner struct {
	logger  *log.Logger
	onLine  LineFunc
	timeout time.Duration
	sem     *semaphore.Weighted

	lineMu sync.Mutex
}

// New creates a Runner.
func New(opts Options) *Runner {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	r := &Runner{
		logger:  opts.Logger,
		onLine:  opts.OnLine,
		timeout: opts.Timeout,
	}
	if r.onLine == nil {
		r.onLine = r.logLine
	}
	if opts.MaxProcesses > 0 {
		r.sem = semaphore.NewWeighted(opts.MaxProcesses)
	}
	return r
}

// Run starts inv, streams its output and waits for it to exit.
// It returns nil on exit code 0 and a *ProcessFailure otherwise.
func (r *Runner) Run(ctx context.Context, inv Invocation) error {
	if r.sem != nil {
		if err := r.sem.Acquire(ctx, 1); err != nil {
			return &ProcessFailure{Invocation: inv, ExitCode: -1, Err: err}
		}
		defer r.sem.Release(1)
	}
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, inv.Executable, inv.Args...)
	configureCommandProcess(cmd)
	cmd.Cancel = func() error {
		terminateCommandProcess(cmd)
		return nil
	}
	cmd.WaitDelay = waitDelay

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return &ProcessFailure{Invocation: inv, ExitCode: -1, Err: err}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return &ProcessFailure{Invocation: inv, ExitCode: -1, Err: err}
	}

	start := time.Now()
	r.logger.Debug("starting process", "cmd", inv.String())
	if err := cmd.Start(); err != nil {
		observability.Process().OnProcessExit(ctx, inv.Name(), -1, time.Since(start))
		return &ProcessFailure{Invocation: inv, ExitCode: -1, Err: err}
	}

	// Both pipes must be drained before Wait closes them.
	var wg sync.WaitGroup
	wg.Add(2)
	go r.pump(&wg, inv, Stdout, stdout)
	go r.pump(&wg, inv, Stderr, stderr)
	wg.Wait()

	err = cmd.Wait()
	elapsed := time.Since(start)
	code := cmd.ProcessState.ExitCode()
	observability.Process().OnProcessExit(ctx, inv.Name(), code, elapsed)

	if err == nil {
		r.logger.Debug("process exited", "exe", inv.Name(), "code", 0, "duration", elapsed.Round(time.Millisecond))
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = fmt.Errorf("%w (%v)", ctxErr, err)
	}
	r.logger.Warn("process failed", "exe", inv.Name(), "code", code, "duration", elapsed.Round(time.Millisecond))
	return &ProcessFailure{Invocation: inv, ExitCode: code, Err: err}
}

// pump forwards lines from rd to the line callback until EOF.
func (r *Runner) pump(wg *sync.WaitGroup, inv Invocation, stream Stream, rd io.Reader) {
	defer wg.Done()
	sc := bufio.NewScanner(rd)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for sc.Scan() {
		r.emit(inv, stream, sc.Text())
	}
	// Keep draining after an oversized line so the child never blocks on a full pipe.
	_, _ = io.Copy(io.Discard, rd)
}

func (r *Runner) emit(inv Invocation, stream Stream, line string) {
	r.lineMu.Lock()
	defer r.lineMu.Unlock()
	r.onLine(inv, stream, line)
}

func (r *Runner) logLine(inv Invocation, stream Stream, line string) {
	r.logger.Info(line, "exe", inv.Name(), "stream", string(stream))
}

// Ensure Runner implements Executor.
var _ Executor = (*Runner)(nil)
