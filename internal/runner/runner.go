// Package runner launches the external structure predictor as a child
// process and drives it through the run state machine:
//
//	Idle -> Preparing -> Running -> {Succeeded, Failed}
//
// Each invocation writes into a fresh uniquely named directory under the
// output root. The directory is published as "current" only once a terminal
// state is reached, so readers never observe a tree mid-population; both
// success and failure publish, since partial output of a failed run is still
// worth cataloging.
package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"foldpanel/internal/metrics"
)

// State identifies a position in the run state machine.
type State string

const (
	StateIdle      State = "idle"
	StatePreparing State = "preparing"
	StateRunning   State = "running"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

// Progress is surfaced to the caller after every line read from the merged
// output stream.
type Progress struct {
	Line   string   `json:"line"`
	Recent []string `json:"recent"`
}

// Result is the immutable record of a finished invocation.
type Result struct {
	State      State     `json:"state"`
	ExitCode   int       `json:"exit_code"`
	Lines      []string  `json:"lines"`
	OutputDir  string    `json:"output_dir"`
	Command    []string  `json:"command"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Options configures a Runner.
type Options struct {
	Bin        string
	ModelName  string
	Seeds      string
	OutputRoot string
	Logger     zerolog.Logger
}

// Runner invokes the predictor and tracks the most recent terminal result.
type Runner struct {
	bin        string
	modelName  string
	seeds      string
	outputRoot string
	log        zerolog.Logger

	mu      sync.RWMutex
	state   State
	current *Result
}

// New validates options and returns a Runner in the Idle state.
func New(opts Options) (*Runner, error) {
	if opts.Bin == "" {
		return nil, errors.New("predictor binary is required")
	}
	if opts.ModelName == "" {
		return nil, errors.New("model name is required")
	}
	if opts.Seeds == "" {
		return nil, errors.New("seeds value is required")
	}
	if opts.OutputRoot == "" {
		return nil, errors.New("output root is required")
	}

	return &Runner{
		bin:        opts.Bin,
		modelName:  opts.ModelName,
		seeds:      opts.Seeds,
		outputRoot: opts.OutputRoot,
		log:        opts.Logger,
		state:      StateIdle,
	}, nil
}

// Command returns the fixed, order-significant predictor argument vector.
func (r *Runner) Command(inputPath, outDir string) []string {
	return []string{
		r.bin, "predict",
		"--input", inputPath,
		"--out_dir", outDir,
		"--seeds", r.seeds,
		"--model_name", r.modelName,
	}
}

// State returns the runner's most recent transition.
func (r *Runner) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// Current returns the last published terminal result, or nil before the
// first run finishes.
func (r *Runner) Current() *Result {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// CurrentDir returns the published output directory, or "" before the first
// terminal state.
func (r *Runner) CurrentDir() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.current == nil {
		return ""
	}
	return r.current.OutputDir
}

// Run executes one prediction invocation to a terminal state. onProgress, if
// non-nil, is called synchronously after every output line with the sliding
// window view; the next line is not read until it returns. Cancelling ctx
// kills the process group; there is no other stop path, and no timeout or
// retry.
func (r *Runner) Run(ctx context.Context, inputPath string, onProgress func(Progress)) (*Result, error) {
	started := time.Now().UTC()

	outDir, err := r.prepare()
	if err != nil {
		return nil, err
	}

	argv := r.Command(inputPath, outDir)
	result := &Result{
		OutputDir: outDir,
		Command:   argv,
		StartedAt: started,
	}

	r.log.Info().Strs("command", argv).Str("out_dir", outDir).Msg("starting prediction")

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return r.finish(result, StateFailed, -1, []string{err.Error()}), nil
	}
	// Merge stderr into the stdout pipe; the process has one combined
	// progress/diagnostic channel.
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		line := err.Error()
		if errors.Is(err, exec.ErrNotFound) {
			line = fmt.Sprintf("%s: executable not found in PATH", r.bin)
		}
		// No process ever started: a single synthetic diagnostic line
		// stands in for captured output. The empty run directory is
		// still published so the catalog reflects it.
		return r.finish(result, StateFailed, -1, []string{line}), nil
	}

	r.setState(StateRunning)

	window := NewWindow(windowSize)
	var lines []string

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		lines = append(lines, line)
		window.Append(line)
		if onProgress != nil {
			onProgress(Progress{Line: line, Recent: window.Snapshot()})
		}
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		lines = append(lines, fmt.Sprintf("error reading process output: %v", err))
	}

	// Stream EOF alone does not end the run; the process must also exit.
	waitErr := cmd.Wait()
	switch {
	case waitErr == nil:
		return r.finish(result, StateSucceeded, 0, lines), nil
	case ctx.Err() != nil:
		lines = append(lines, fmt.Sprintf("run cancelled: %v", ctx.Err()))
		return r.finish(result, StateFailed, -1, lines), nil
	default:
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			return r.finish(result, StateFailed, exitErr.ExitCode(), lines), nil
		}
		lines = append(lines, waitErr.Error())
		return r.finish(result, StateFailed, -1, lines), nil
	}
}

// prepare creates the fresh run directory; it exists and is empty once the
// Preparing transition completes.
func (r *Runner) prepare() (string, error) {
	r.setState(StatePreparing)

	outDir, err := filepath.Abs(filepath.Join(r.outputRoot, "run-"+uuid.NewString()))
	if err != nil {
		return "", fmt.Errorf("resolve run dir: %w", err)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("create run dir: %w", err)
	}
	return outDir, nil
}

func (r *Runner) setState(s State) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
}

// finish seals the result, publishes the run directory as current, and
// records metrics.
func (r *Runner) finish(result *Result, state State, exitCode int, lines []string) *Result {
	result.State = state
	result.ExitCode = exitCode
	result.Lines = lines
	result.FinishedAt = time.Now().UTC()

	r.mu.Lock()
	r.state = state
	r.current = result
	r.mu.Unlock()

	metrics.RunsTotal.WithLabelValues(string(state)).Inc()
	metrics.RunDuration.Observe(result.FinishedAt.Sub(result.StartedAt).Seconds())

	evt := r.log.Info()
	if state == StateFailed {
		evt = r.log.Error()
	}
	evt.Str("state", string(state)).Int("exit_code", exitCode).
		Int("output_lines", len(lines)).Str("out_dir", result.OutputDir).
		Msg("prediction finished")

	return result
}

// Available reports whether the predictor binary can be resolved, and the
// path it resolves to.
func (r *Runner) Available() (string, bool) {
	path, err := exec.LookPath(r.bin)
	return path, err == nil
}
