package fsutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ExpandHome expands a leading '~' to the user's home directory.
func ExpandHome(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	// handle cases like ~/rld/config.yaml
	return filepath.Join(home, strings.TrimPrefix(path, "~/")), nil
}

// ReadInput returns the contents of path, or of stdin when path is "-".
// A path starting with '@' is read as a file; anything else is treated as
// inline data, so CLI arguments may carry JSON directly.
func ReadInput(arg string, stdin io.Reader) ([]byte, error) {
	switch {
	case arg == "-":
		return io.ReadAll(stdin)
	case strings.HasPrefix(arg, "@"):
		p, err := ExpandHome(arg[1:])
		if err != nil {
			return nil, err
		}
		return os.ReadFile(p)
	default:
		return []byte(arg), nil
	}
}
