package platform

import (
	"io"
	"os"
	"sync"
)

const bufferSize = 1 << 20 // 1 MiB

var bufPool = sync.Pool{
	New: func() any {
		b := make([]byte, bufferSize)
		return &b
	},
}

// copyReadWrite copies with a pooled buffer. It is the portable
// fallback and the only strategy off Linux.
func copyReadWrite(srcPath string, dst *os.File) (CopyResult, error) {
	src, err := os.Open(srcPath)
	if err != nil {
		return CopyResult{}, err
	}
	defer src.Close()

	bufp := bufPool.Get().(*[]byte)
	defer bufPool.Put(bufp)
	buf := *bufp

	var written int64
	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			w, werr := dst.Write(buf[:n])
			written += int64(w)
			if werr != nil {
				return CopyResult{BytesWritten: written, Method: ReadWrite}, werr
			}
		}
		if rerr == io.EOF {
			return CopyResult{BytesWritten: written, Method: ReadWrite}, nil
		}
		if rerr != nil {
			return CopyResult{BytesWritten: written, Method: ReadWrite}, rerr
		}
	}
}
