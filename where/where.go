// Package where resolves the directories and files playmark reads and writes.
package where

import (
	"os"
	"path/filepath"

	"github.com/playmark/playmark/constant"
	"github.com/playmark/playmark/filesystem"
	"github.com/samber/lo"
)

// EnvConfigPath overrides the config directory.
const EnvConfigPath = "PLAYMARK_CONFIG_PATH"

func ensureDir(path string) string {
	lo.Must0(filesystem.API().MkdirAll(path, os.ModePerm))
	return path
}

// Config is the directory holding playmark.toml, logs and history.
func Config() string {
	if custom, ok := os.LookupEnv(EnvConfigPath); ok {
		return ensureDir(custom)
	}

	return ensureDir(filepath.Join(lo.Must(os.UserConfigDir()), constant.Playmark))
}

// Logs is the directory receiving dated log files.
func Logs() string {
	return ensureDir(filepath.Join(Config(), "logs"))
}

// History is the local watch history file.
func History() string {
	return filepath.Join(Config(), "history.json")
}

// Temp is the directory for mpv IPC sockets.
func Temp() string {
	return ensureDir(filepath.Join(os.TempDir(), constant.Playmark))
}
