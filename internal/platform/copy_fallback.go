//go:build !linux

package platform

import "os"

// CopyFile copies the whole file at srcPath into dst using buffered
// read/write; the zero-copy syscalls are Linux-only.
func CopyFile(srcPath string, dst *os.File, _ int64) (CopyResult, error) {
	return copyReadWrite(srcPath, dst)
}
