package engine

import (
	"context"
	"io/fs"
	"path/filepath"

	"github.com/bamsammich/salvage/internal/event"
)

// VerifyResult holds the outcome of the post-copy verification pass.
type VerifyResult struct {
	Verified   int64
	Mismatched int64
	Skipped    int64 // source missing or unreadable at verify time
}

// verify walks the destination tree sequentially and compares BLAKE3
// digests against the source for every regular file whose source path
// still exists under the same relative name. Files whose names were
// sanitized have no reverse mapping and are skipped, as are sources
// that cannot be read back: the source is flaky by premise, so a
// verify pass must never fail the run.
func (e *engine) verify(ctx context.Context) VerifyResult {
	e.emit(event.Event{Type: event.VerifyStarted})

	var res VerifyResult
	_ = filepath.WalkDir(e.dst, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		rel, rerr := filepath.Rel(e.dst, path)
		if rerr != nil {
			return nil
		}
		src := filepath.Join(e.src, rel)
		if _, serr := e.fs.Stat(src); serr != nil {
			res.Skipped++
			return nil
		}

		srcHash, herr := HashFile(src)
		if herr != nil {
			res.Skipped++
			return nil
		}
		dstHash, herr := HashFile(path)
		if herr != nil || srcHash != dstHash {
			res.Mismatched++
			e.stats.AddVerifyMismatches(1)
			e.emit(event.Event{Type: event.VerifyMismatch, Path: src, Dest: path, Error: herr})
			return nil
		}

		res.Verified++
		e.stats.AddFilesVerified(1)
		e.emit(event.Event{Type: event.VerifyOK, Path: src, Dest: path})
		return nil
	})
	return res
}
