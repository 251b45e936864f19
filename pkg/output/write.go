package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ajdepersio/ConfigUsageReport/pkg/usage"
	"github.com/spf13/afero"
)

// ReportFileMode is the permission a written report ends up with.
const ReportFileMode os.FileMode = 0o644

// WriteFile writes content to path. The content goes to a temporary file in
// the target directory first and is renamed into place, so a failed write
// never leaves a partial report behind. An empty path writes to stdout.
func WriteFile(fs afero.Fs, path, content string, stdout io.Writer) error {
	if path == "" {
		if _, err := io.WriteString(stdout, content); err != nil {
			return &usage.IOError{Op: "write", Path: "<stdout>", Err: err}
		}
		return nil
	}

	dir := filepath.Dir(path)
	tmp, err := afero.TempFile(fs, dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return &usage.IOError{Op: "create", Path: path, Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		fs.Remove(tmpName)
		return &usage.IOError{Op: "write", Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		fs.Remove(tmpName)
		return &usage.IOError{Op: "write", Path: path, Err: err}
	}
	// temp files are created owner-only
	if err := fs.Chmod(tmpName, ReportFileMode); err != nil {
		fs.Remove(tmpName)
		return &usage.IOError{Op: "chmod", Path: path, Err: err}
	}
	if err := fs.Rename(tmpName, path); err != nil {
		fs.Remove(tmpName)
		return &usage.IOError{Op: "rename", Path: path, Err: fmt.Errorf("move %s into place: %w", tmpName, err)}
	}

	return nil
}
