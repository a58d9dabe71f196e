package cmd

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/charmbracelet/lipgloss"
	"github.com/playmark/playmark/constant"
	"github.com/playmark/playmark/icon"
	"github.com/playmark/playmark/style"
)

var errMissingPlayer = errors.New("mpv not found in PATH")

// checkPlayer verifies that mpv can be launched and explains how to install it when it cannot.
func checkPlayer() error {
	if _, err := exec.LookPath("mpv"); err != nil {
		fmt.Println(missingDependency("mpv", installHint(runtime.GOOS)))
		return errMissingPlayer
	}
	return nil
}

func installHint(goos string) string {
	switch goos {
	case constant.Darwin:
		return "brew install mpv"
	case constant.Linux:
		return "sudo apt install mpv"
	case constant.Windows:
		return "scoop install mpv"
	case constant.Android:
		return "pkg install mpv"
	default:
		return ""
	}
}

func missingDependency(dep, hint string) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(style.Red).
		Padding(1, 2).
		Margin(1, 0)

	title := style.New().Bold(true).Foreground(style.Red).Render(fmt.Sprintf("%s Missing dependency", icon.Get(icon.Fail)))
	body := fmt.Sprintf("%s was not found in your PATH.", style.Bold(dep))

	suggestion := ""
	if hint != "" {
		suggestion = fmt.Sprintf("\n\nTo install it, try running:\n  %s", style.New().Foreground(style.Cyan).Bold(true).Render(hint))
	}

	return box.Render(lipgloss.JoinVertical(lipgloss.Left, title, "", body, suggestion))
}
