package wm

import (
	"errors"
	"fmt"
	"os/exec"
	"syscall"
)

// Spawn starts command through /bin/sh in its own session. The process is
// not waited for; it is reaped when a ChildExited event arrives.
func (c *Controller) Spawn(command string) error {
	cmd := exec.Command("/bin/sh", "-c", command)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("spawn %q: %w", command, err)
	}
	c.logger.Debug("spawned process", "command", command, "pid", cmd.Process.Pid)
	// The exec.Cmd is dropped; wait4 in reapChildren collects the exit status.
	_ = cmd.Process.Release()
	return nil
}

// reapChildren collects every exited child without blocking.
func (c *Controller) reapChildren() {
	for {
		var status syscall.WaitStatus
		pid, err := syscall.Wait4(-1, &status, syscall.WNOHANG, nil)
		if errors.Is(err, syscall.EINTR) {
			continue
		}
		if err != nil || pid <= 0 {
			return
		}
		c.logger.Debug("reaped child", "pid", pid, "status", status.ExitStatus())
	}
}
