//go:build linux

package platform

import (
	"errors"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// CopyFile copies the whole file at srcPath into dst, trying
// copy_file_range first, then sendfile, then buffered read/write.
// Cross-filesystem and unsupported-operation errors fall through to the
// next strategy; everything else surfaces to the caller unwrapped, so
// errno classification still works above this layer.
func CopyFile(srcPath string, dst *os.File, size int64) (CopyResult, error) {
	result, err := copyFileRange(srcPath, dst, size)
	if err == nil {
		return result, nil
	}
	if !isFallbackErr(err) {
		return result, err
	}

	result, err = copySendfile(srcPath, dst, size)
	if err == nil {
		return result, nil
	}
	if !isFallbackErr(err) {
		return result, err
	}

	return copyReadWrite(srcPath, dst)
}

func copyFileRange(srcPath string, dst *os.File, size int64) (CopyResult, error) {
	src, err := os.Open(srcPath)
	if err != nil {
		return CopyResult{}, err
	}
	defer src.Close()

	var roff, woff int64
	remaining := size
	var written int64
	for remaining > 0 {
		n, err := unix.CopyFileRange(int(src.Fd()), &roff, int(dst.Fd()), &woff, int(remaining), 0)
		if err != nil {
			return CopyResult{BytesWritten: written, Method: CopyFileRange}, err
		}
		if n == 0 {
			break
		}
		remaining -= int64(n)
		written += int64(n)
	}
	return CopyResult{BytesWritten: written, Method: CopyFileRange}, nil
}

func copySendfile(srcPath string, dst *os.File, size int64) (CopyResult, error) {
	src, err := os.Open(srcPath)
	if err != nil {
		return CopyResult{}, err
	}
	defer src.Close()

	var offset int64
	remaining := size
	var written int64
	for remaining > 0 {
		n, err := unix.Sendfile(int(dst.Fd()), int(src.Fd()), &offset, int(remaining))
		if err != nil {
			return CopyResult{BytesWritten: written, Method: Sendfile}, err
		}
		if n == 0 {
			break
		}
		remaining -= int64(n)
		written += int64(n)
	}
	return CopyResult{BytesWritten: written, Method: Sendfile}, nil
}

// isFallbackErr reports whether err should trigger the next copy
// strategy rather than fail the copy.
func isFallbackErr(err error) bool {
	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return false
	}
	switch errno {
	case unix.ENOSYS, unix.EXDEV, unix.EINVAL, unix.ENOTSUP:
		return true
	}
	return false
}
