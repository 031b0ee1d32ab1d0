package convert

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// Executor runs the converter binary and returns whatever it wrote to stderr.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) (stderr string, err error)
}

// waitDelay bounds how long Run waits for output pipes after the process is
// killed.
const waitDelay = 5 * time.Second

type commandExecutor struct{}

// Run starts binary in its own process group. When ctx ends, the whole group
// is killed so helpers spawned by the converter do not outlive it.
func (commandExecutor) Run(ctx context.Context, binary string, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return killProcessGroup(cmd.Process.Pid)
	}
	cmd.WaitDelay = waitDelay

	var stderr bytes.Buffer
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stderr.String(), err
}

func killProcessGroup(pid int) error {
	if pid <= 0 {
		return nil
	}
	if err := unix.Kill(-pid, unix.SIGKILL); err != nil {
		if errors.Is(err, unix.ESRCH) {
			return os.ErrProcessDone
		}
		return err
	}
	return nil
}
