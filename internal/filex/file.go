// Package filex holds small filesystem helpers.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureDir creates root/name (and any missing parents) if it does not exist
// and returns its path. An empty root resolves to the user's config directory,
// so the client keeps its local catalog next to other per-user settings.
func EnsureDir(root, name string) (string, error) {
	if root == "" {
		var err error
		root, err = os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("user config dir: %w", err)
		}
	}

	dir := filepath.Join(root, name)

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}
