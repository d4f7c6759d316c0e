// Package fsx provides filesystem helpers for writing files atomically.
package fsx

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
)

// renameFunc is swapped in tests to simulate rename failures.
var renameFunc = os.Rename

// PathTypeConflictError reports a destination that exists but is not a regular file.
type PathTypeConflictError struct {
	Path string
	Got  string
}

func (e *PathTypeConflictError) Error() string {
	return fmt.Sprintf("destination %q is a %s, want regular file", e.Path, e.Got)
}

// IsPathTypeConflict reports whether err is a PathTypeConflictError.
func IsPathTypeConflict(err error) bool {
	var e *PathTypeConflictError
	return errors.As(err, &e)
}

// FileExists reports whether path names an existing regular file.
func FileExists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}

// DirExists reports whether path names an existing directory.
func DirExists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

// WriteStreamAtomic copies r into dir/name and returns the number of bytes written.
// dir/name may be missing, a regular file or a symlink; anything else is a
// PathTypeConflictError.
//
// Data goes to a hidden temp file in dir which is fsynced and renamed over the
// destination only after r is fully drained. On any error the temp file is
// removed, so the destination is either the previous file or the complete new
// one. dir must already exist.
func WriteStreamAtomic(dir, name string, r io.Reader) (int64, error) {
	dst := filepath.Join(dir, name)
	// A symlink is replaced by the rename; its target is never written.
	if fi, err := os.Lstat(dst); err == nil && !fi.Mode().IsRegular() && fi.Mode()&os.ModeSymlink == 0 {
		got := "directory"
		if !fi.IsDir() {
			got = fi.Mode().Type().String()
		}
		return 0, &PathTypeConflictError{Path: dst, Got: got}
	}

	// Leading dot keeps the partial file out of media server scans.
	tmp, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	n, err := io.Copy(tmp, r)
	if err != nil {
		return n, fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return n, fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return n, fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return n, fmt.Errorf("close temp file: %w", err)
	}
	if err := renameFunc(tmpName, dst); err != nil {
		_ = os.Remove(tmpName)
		committed = true
		return n, fmt.Errorf("rename into place: %w", err)
	}
	committed = true

	_ = syncDir(dir)
	return n, nil
}

// syncDir is best-effort; directory fsync semantics vary across platforms.
func syncDir(dir string) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}
