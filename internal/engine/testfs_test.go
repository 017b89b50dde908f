package engine

import (
	"context"
	"io/fs"
	"os"
	"sync"

	"github.com/bamsammich/salvage/internal/fsops"
)

// faultFS wraps the real filesystem and injects errnos at chosen paths,
// so recovery behavior can be driven without a flaky device.
type faultFS struct {
	real fsops.FS

	// statFail injects a Stat error for a source path.
	statFail map[string]error

	// readDirFail injects a ReadDir error for a directory; the listing
	// yields the first readDirKeep[path] entries before failing, like a
	// driver dying mid-readdirent.
	readDirFail map[string]error
	readDirKeep map[string]int

	// copyFailSrc / copyFailDst inject Copy errors keyed by either end.
	copyFailSrc map[string]error
	copyFailDst map[string]error

	// mkdirFail injects a MkdirAll error for a destination path.
	mkdirFail map[string]error
}

func newFaultFS() *faultFS {
	return &faultFS{
		real:        fsops.NewRealFS(),
		statFail:    map[string]error{},
		readDirFail: map[string]error{},
		readDirKeep: map[string]int{},
		copyFailSrc: map[string]error{},
		copyFailDst: map[string]error{},
		mkdirFail:   map[string]error{},
	}
}

func (f *faultFS) Stat(path string) (os.FileInfo, error) {
	if err, ok := f.statFail[path]; ok {
		return nil, &fs.PathError{Op: "stat", Path: path, Err: err}
	}
	return f.real.Stat(path)
}

func (f *faultFS) ReadDir(path string) ([]fs.DirEntry, error) {
	entries, err := f.real.ReadDir(path)
	if ferr, ok := f.readDirFail[path]; ok {
		keep := f.readDirKeep[path]
		if keep > len(entries) {
			keep = len(entries)
		}
		return entries[:keep], &fs.PathError{Op: "readdirent", Path: path, Err: ferr}
	}
	return entries, err
}

func (f *faultFS) MkdirAll(path string, perm os.FileMode) error {
	if err, ok := f.mkdirFail[path]; ok {
		return &fs.PathError{Op: "mkdir", Path: path, Err: err}
	}
	return f.real.MkdirAll(path, perm)
}

func (f *faultFS) Exists(path string) bool {
	return f.real.Exists(path)
}

func (f *faultFS) Copy(src, dst string) (int64, error) {
	if err, ok := f.copyFailSrc[src]; ok {
		return 0, &fs.PathError{Op: "read", Path: src, Err: err}
	}
	if err, ok := f.copyFailDst[dst]; ok {
		return 0, &fs.PathError{Op: "open", Path: dst, Err: err}
	}
	return f.real.Copy(src, dst)
}

// fakeMounter records remount calls; OnRemount, when set, runs on every
// call (tests use it to clear injected faults, mimicking a transport
// that works again after the remount).
type fakeMounter struct {
	mu        sync.Mutex
	remounts  int
	OnRemount func()
}

func (m *fakeMounter) Remount(context.Context) error {
	m.mu.Lock()
	m.remounts++
	m.mu.Unlock()
	if m.OnRemount != nil {
		m.OnRemount()
	}
	return nil
}

func (m *fakeMounter) Remounts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.remounts
}
