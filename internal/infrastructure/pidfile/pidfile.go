package pidfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

// ErrAlreadyRunning is returned by Acquire while another live process holds the file
var ErrAlreadyRunning = errors.New("automation is already running")

// PIDFile keeps a single automation run per PID file path
type PIDFile struct {
	path string
}

// New creates a new PIDFile manager
func New(path string) *PIDFile {
	return &PIDFile{path: path}
}

func (p *PIDFile) Path() string {
	return p.path
}

// Acquire writes the current PID. A file left by a dead process, or one that
// holds no PID at all, is replaced.
func (p *PIDFile) Acquire() error {
	pid, exists, err := p.read()
	if err != nil {
		return err
	}
	if exists {
		if pid > 0 && pid != os.Getpid() && isProcessRunning(pid) {
			return fmt.Errorf("%w (PID %d, %s)", ErrAlreadyRunning, pid, p.path)
		}
		if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove stale PID file: %w", err)
		}
	}

	if dir := filepath.Dir(p.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create PID file directory: %w", err)
		}
	}

	// O_EXCL so two runs starting together cannot both win
	f, err := os.OpenFile(p.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("%w (%s)", ErrAlreadyRunning, p.path)
		}
		return fmt.Errorf("failed to write PID file: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "%d\n", os.Getpid()); err != nil {
		return fmt.Errorf("failed to write PID file: %w", err)
	}
	return nil
}

// Read returns the PID stored in the file; ok is false when there is no
// file or its content is not a PID
func (p *PIDFile) Read() (pid int, ok bool, err error) {
	pid, exists, err := p.read()
	if err != nil || !exists || pid <= 0 {
		return 0, false, err
	}
	return pid, true, nil
}

// read reports whether the file exists separately from its PID, which is
// zero when the content does not parse
func (p *PIDFile) read() (pid int, exists bool, err error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to read existing PID file: %w", err)
	}
	pid, convErr := strconv.Atoi(strings.TrimSpace(string(data)))
	if convErr != nil {
		return 0, true, nil
	}
	return pid, true, nil
}

// Release removes the PID file
func (p *PIDFile) Release() error {
	if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove PID file: %w", err)
	}
	return nil
}

// isProcessRunning probes the PID with signal 0
func isProcessRunning(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	err = process.Signal(syscall.Signal(0))
	if err == nil {
		return true
	}
	// EPERM: the process exists but belongs to someone else
	return errors.Is(err, syscall.EPERM)
}
