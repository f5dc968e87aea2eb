// pattern: Imperative Shell

package process

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/creack/pty"

	"deskmux/internal/logging"
)

// RestartPolicy controls when an exited child is started again.
type RestartPolicy int

const (
	Never RestartPolicy = iota
	OnFailure
	Always
)

// termGrace is how long Stop waits after SIGTERM before sending SIGKILL.
const termGrace = 5 * time.Second

// Config describes a child process to supervise.
//
// When PTY is set the child runs on a pseudo-terminal and its combined
// output is copied to Output instead of the logger. Interactive pane
// shells run this way; plain helpers leave PTY unset and get line-by-line
// capture into the scoped logger.
type Config struct {
	Name       string
	Binary     string
	Args       []string
	Dir        string
	Env        []string
	RestartOn  RestartPolicy
	MaxRetries int
	RetryDelay time.Duration

	PTY    bool
	Rows   uint16
	Cols   uint16
	Output io.Writer
}

// Supervisor owns one child process lifecycle: start, output capture,
// restart policy, and SIGTERM-then-SIGKILL shutdown.
type Supervisor struct {
	cfg    Config
	logger *logging.ScopedLogger

	mu      sync.Mutex
	cmd     *exec.Cmd
	ptmx    *os.File
	running bool
	stopped bool
	done    chan struct{}
}

func NewSupervisor(cfg Config, logger *logging.ScopedLogger) *Supervisor {
	return &Supervisor{
		cfg:    cfg,
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Start launches the child and returns immediately. The restart loop runs
// until the policy says stop, Stop is called, or ctx is cancelled.
func (s *Supervisor) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return errors.New("supervisor: already running")
	}
	s.running = true

	go s.loop(ctx)
	return nil
}

// Stop terminates the child: SIGTERM first, SIGKILL after the grace
// period. Blocks until the supervisor loop has exited.
func (s *Supervisor) Stop() error {
	s.mu.Lock()
	s.stopped = true
	cmd := s.cmd
	s.mu.Unlock()

	if cmd == nil || cmd.Process == nil {
		<-s.done
		return nil
	}
	if err := cmd.Process.Signal(syscall.SIGTERM); err != nil {
		// already gone
		<-s.done
		return nil
	}

	select {
	case <-s.done:
		return nil
	case <-time.After(termGrace):
	}

	s.mu.Lock()
	cmd = s.cmd
	s.mu.Unlock()
	if cmd != nil && cmd.Process != nil {
		_ = cmd.Process.Kill()
	}
	<-s.done
	return nil
}

// Running reports whether the supervisor loop is active.
func (s *Supervisor) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Done is closed once the loop exits for any reason.
func (s *Supervisor) Done() <-chan struct{} {
	return s.done
}

// Write sends input to the child's PTY. Fails when the supervisor has no
// PTY or the child has not started yet.
func (s *Supervisor) Write(p []byte) (int, error) {
	s.mu.Lock()
	ptmx := s.ptmx
	s.mu.Unlock()
	if ptmx == nil {
		return 0, errors.New("supervisor: no pty")
	}
	return ptmx.Write(p)
}

// Resize adjusts the PTY window. No-op without a PTY.
func (s *Supervisor) Resize(rows, cols uint16) error {
	s.mu.Lock()
	ptmx := s.ptmx
	s.mu.Unlock()
	if ptmx == nil {
		return nil
	}
	return pty.Setsize(ptmx, &pty.Winsize{Rows: rows, Cols: cols})
}

func (s *Supervisor) wantsRestart(exitCode int) bool {
	switch s.cfg.RestartOn {
	case Always:
		return true
	case OnFailure:
		return exitCode != 0
	default:
		return false
	}
}

func (s *Supervisor) isStopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

func (s *Supervisor) loop(ctx context.Context) {
	defer close(s.done)
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	for attempt := 0; ; attempt++ {
		if s.isStopped() {
			return
		}

		exitCode := s.runOnce(ctx)

		if s.isStopped() || !s.wantsRestart(exitCode) {
			return
		}
		if s.cfg.MaxRetries > 0 && attempt >= s.cfg.MaxRetries {
			s.logger.Error("max retries exceeded", "process", s.cfg.Name, "retries", attempt)
			return
		}

		delay := s.cfg.RetryDelay
		if delay == 0 {
			delay = time.Second
		}
		s.logger.Info("restarting process", "process", s.cfg.Name, "attempt", attempt+1, "delay", delay)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return
		}
	}
}

func (s *Supervisor) command(ctx context.Context) *exec.Cmd {
	cmd := exec.CommandContext(ctx, s.cfg.Binary, s.cfg.Args...)
	cmd.Dir = s.cfg.Dir
	if len(s.cfg.Env) > 0 {
		cmd.Env = append(os.Environ(), s.cfg.Env...)
	}
	return cmd
}

func (s *Supervisor) runOnce(ctx context.Context) int {
	if s.cfg.PTY {
		return s.runOncePTY(ctx)
	}

	cmd := s.command(ctx)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		s.logger.Error("stdout pipe failed", "process", s.cfg.Name, "error", err)
		return -1
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		s.logger.Error("stderr pipe failed", "process", s.cfg.Name, "error", err)
		return -1
	}

	s.logger.Info("starting process", "process", s.cfg.Name, "binary", s.cfg.Binary)
	if err := cmd.Start(); err != nil {
		s.logger.Error("start failed", "process", s.cfg.Name, "error", err)
		return -1
	}

	s.mu.Lock()
	s.cmd = cmd
	s.mu.Unlock()

	var wg sync.WaitGroup
	wg.Add(2)
	go s.logStream(&wg, stdout, "stdout")
	go s.logStream(&wg, stderr, "stderr")
	wg.Wait()

	err = cmd.Wait()

	s.mu.Lock()
	s.cmd = nil
	s.mu.Unlock()

	return s.exitCode(err)
}

func (s *Supervisor) logStream(wg *sync.WaitGroup, r io.Reader, stream string) {
	defer wg.Done()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		s.logger.Info(scanner.Text(), "process", s.cfg.Name, "stream", stream)
	}
}

func (s *Supervisor) runOncePTY(ctx context.Context) int {
	cmd := s.command(ctx)

	rows, cols := s.cfg.Rows, s.cfg.Cols
	if rows == 0 {
		rows = 24
	}
	if cols == 0 {
		cols = 80
	}

	s.logger.Info("starting pty process", "process", s.cfg.Name, "binary", s.cfg.Binary)
	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: rows, Cols: cols})
	if err != nil {
		s.logger.Error("pty start failed", "process", s.cfg.Name, "error", err)
		return -1
	}

	s.mu.Lock()
	s.cmd = cmd
	s.ptmx = ptmx
	s.mu.Unlock()

	// Copy returns once the child exits and the PTY drains.
	dst := s.cfg.Output
	if dst == nil {
		dst = io.Discard
	}
	_, _ = io.Copy(dst, ptmx)

	err = cmd.Wait()
	_ = ptmx.Close()

	s.mu.Lock()
	s.cmd = nil
	s.ptmx = nil
	s.mu.Unlock()

	return s.exitCode(err)
}

func (s *Supervisor) exitCode(err error) int {
	if err == nil {
		s.logger.Info("process exited cleanly", "process", s.cfg.Name)
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		s.logger.Warn("process exited", "process", s.cfg.Name, "exit_code", code)
		return code
	}
	// context cancellation or signal
	s.logger.Info("process stopped", "process", s.cfg.Name, "error", err)
	return -1
}
