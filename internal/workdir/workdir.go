// Package workdir resolves Bones's persistent data directory: the folder
// holding the single SQLite database and its advisory lock file.
package workdir

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// EnvDataDir overrides the data directory when set.
	EnvDataDir = "BONES_HOME"

	defaultDirName = ".bones"
)

// ResolveDataDir returns the directory Bones should persist its database
// under: BONES_HOME if set, otherwise a hidden folder under the user's
// home directory.
func ResolveDataDir() (string, error) {
	if dir := os.Getenv(EnvDataDir); dir != "" {
		return filepath.Clean(dir), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, defaultDirName), nil
}
