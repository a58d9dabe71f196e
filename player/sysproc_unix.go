//go:build !windows

package player

import (
	"os/exec"
	"syscall"
)

// mpv gets its own process group so a terminal interrupt aimed at playmark does not
// kill the player before telemetry is flushed.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}

// killProcess kills mpv together with anything it spawned, such as yt-dlp.
func killProcess(cmd *exec.Cmd) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}
	if err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL); err == nil {
		return nil
	}
	return cmd.Process.Kill()
}
