// Package fsops routes every filesystem operation the copy engine
// performs through one injectable interface, so the recovery protocol
// can be exercised in tests with injected OS errors.
package fsops

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/bamsammich/salvage/internal/platform"
)

// FS is the set of filesystem operations the copy engine consumes.
type FS interface {
	// Stat follows symlinks and reports on the file at path.
	Stat(path string) (os.FileInfo, error)

	// ReadDir lists path. On error it returns the entries read before
	// the failure along with the error.
	ReadDir(path string) ([]fs.DirEntry, error)

	// MkdirAll creates path and any missing ancestors.
	MkdirAll(path string, perm os.FileMode) error

	// Exists reports whether path exists, without following symlinks.
	Exists(path string) bool

	// Copy copies the regular file at src to dst and returns the bytes
	// written. The copy is all-or-nothing: dst never holds a partial
	// file under any failure.
	Copy(src, dst string) (int64, error)
}

// RealFS implements FS against the operating system.
type RealFS struct{}

// NewRealFS returns the production filesystem.
func NewRealFS() *RealFS { return &RealFS{} }

func (*RealFS) Stat(path string) (os.FileInfo, error) { return os.Stat(path) }

func (*RealFS) ReadDir(path string) ([]fs.DirEntry, error) { return os.ReadDir(path) }

func (*RealFS) MkdirAll(path string, perm os.FileMode) error { return os.MkdirAll(path, perm) }

func (*RealFS) Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// Copy writes into a uniquely named tmp file beside dst and renames it
// into place, so an interrupted run never leaves a partial file at the
// final name. A name the destination filesystem rejects surfaces here
// as the tmp create error, before any data moves.
func (*RealFS) Copy(src, dst string) (int64, error) {
	info, err := os.Stat(src)
	if err != nil {
		return 0, err
	}

	dir, base := filepath.Dir(dst), filepath.Base(dst)
	tmp := filepath.Join(dir, fmt.Sprintf(".%s.%s.salvage-tmp", base, uuid.New().String()[:8]))

	out, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return 0, err
	}
	defer os.Remove(tmp) // no-op once the rename lands

	result, err := platform.CopyFile(src, out, info.Size())
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return result.BytesWritten, err
	}

	if err := os.Rename(tmp, dst); err != nil {
		return result.BytesWritten, err
	}

	slog.Debug("copied file",
		"src", src,
		"dst", dst,
		"bytes", result.BytesWritten,
		"method", result.Method.String(),
	)
	return result.BytesWritten, nil
}
