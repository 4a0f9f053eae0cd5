package file

import (
	"os"
	"path/filepath"
)

// HomeEnv overrides the Stryda home directory.
const HomeEnv = "STRYDA_HOME"

// HomeDir returns $STRYDA_HOME, or ~/.stryda when unset.
func HomeDir() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".stryda"), nil
}
