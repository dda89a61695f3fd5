package devenv

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"ovxassist-backend/lib/configutil"
)

var moduleLine = regexp.MustCompile(`(?m)^module\s+([\w\-_]+)\s*$`)

func isWorkspaceRoot(dir string) bool {
	contents, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		return false
	}
	m := moduleLine.FindSubmatch(contents)
	return len(m) >= 2 && string(m[1]) == "ovxassist-backend"
}

func workspaceRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if isWorkspaceRoot(dir) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}

func stateDir() (string, error) {
	root, err := workspaceRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, "dev", ".state"), nil
}

// GetStateConfig reads a config file out of the repository's dev/.state
// directory no matter which package the caller runs from.
func GetStateConfig[T any](path string) (T, error) {
	dir, err := stateDir()
	if err != nil {
		var out T
		return out, err
	}
	return configutil.ReadConfig[T](filepath.Join(dir, path))
}

// ResolvePath expands the "<dev_state>" prefix into the repository's
// dev/.state directory, creating it when missing. Paths without the
// prefix pass through untouched.
func ResolvePath(path string) (string, error) {
	if !strings.HasPrefix(path, "<dev_state>") {
		return path, nil
	}

	dir, err := stateDir()
	if err != nil {
		return "", err
	}
	err = os.MkdirAll(dir, 0777)
	if err != nil {
		return "", err
	}

	parts := strings.Split(path, string(os.PathSeparator))
	return filepath.Join(dir, filepath.Join(parts[1:]...)), nil
}
