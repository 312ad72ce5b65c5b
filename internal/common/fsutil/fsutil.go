package fsutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath resolves a user-supplied config path: $VAR references are
// expanded first, then a leading '~' becomes the home directory.
func ExpandPath(path string) (string, error) {
	path = os.ExpandEnv(strings.TrimSpace(path))
	if path == "" || path[0] != '~' {
		return path, nil
	}
	if path != "~" && !strings.HasPrefix(path, "~/") {
		// ~user forms are not supported
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// RequireFile returns an error wrapping os.ErrNotExist when path is missing
// and an error when it names a directory.
func RequireFile(path string) error {
	fi, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("config file %s: %w", path, os.ErrNotExist)
	}
	if err != nil {
		return err
	}
	if fi.IsDir() {
		return fmt.Errorf("config file %s is a directory", path)
	}
	return nil
}
