package restyutil

import (
	"log/slog"
	"os"
	"path/filepath"

	devenv "ovxassist-backend/dev/env"
)

// FilesystemOutput drops one file per request/response pair into a
// directory which is wiped on startup, so a run only ever contains its
// own traffic.
type FilesystemOutput struct {
	directory string
}

func NewFilesystemOutput(dir string) FilesystemOutput {
	resolved, err := devenv.ResolvePath(dir)
	if err != nil {
		panic(err)
	}
	os.RemoveAll(resolved)
	err = os.MkdirAll(resolved, 0777)
	if err != nil {
		panic(err)
	}
	return FilesystemOutput{directory: resolved}
}

func (o FilesystemOutput) Write(id string, contents string) {
	path := filepath.Join(o.directory, id+".txt")
	err := os.WriteFile(path, []byte(contents), 0600)
	if err != nil {
		slog.Warn("failed to write message dump", "path", path, "err", err)
	}
}
