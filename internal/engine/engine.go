// Package engine implements the fault-tolerant tree copy: a LIFO
// frontier traversal that survives connection aborts by remounting the
// source volume and permanently abandoning the path that triggered the
// abort. The engine is deliberately single-threaded; deterministic
// recovery matters more than throughput against a flaky transport.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/bamsammich/salvage/internal/event"
	"github.com/bamsammich/salvage/internal/fsops"
	"github.com/bamsammich/salvage/internal/oserr"
	"github.com/bamsammich/salvage/internal/registry"
	"github.com/bamsammich/salvage/internal/sanitize"
	"github.com/bamsammich/salvage/internal/stats"
)

// Mounter re-establishes the source volume's transport after a
// connection abort.
type Mounter interface {
	Remount(ctx context.Context) error
}

// Config describes one copy run.
type Config struct {
	SourceRoot string
	DestRoot   string
	Mounter    Mounter            // required
	FS         fsops.FS           // defaults to fsops.NewRealFS()
	Registry   *registry.Registry // defaults to a fresh registry
	Stats      *stats.Collector   // defaults to a fresh collector
	Events     chan<- event.Event // optional
	Logger     *slog.Logger       // defaults to slog.Default()
	DryRun     bool
	Verify     bool
}

// Result is the outcome of a run.
type Result struct {
	Stats  stats.Snapshot
	Verify VerifyResult
	Err    error
}

type engine struct {
	src      string
	dst      string
	fs       fsops.FS
	mounter  Mounter
	registry *registry.Registry
	stats    *stats.Collector
	events   chan<- event.Event
	logger   *slog.Logger
	dryRun   bool
}

// Run copies the tree under cfg.SourceRoot into cfg.DestRoot, blocking
// until the frontier empties or a fatal error aborts the run.
func Run(ctx context.Context, cfg Config) Result {
	if cfg.Mounter == nil {
		return Result{Err: errors.New("engine: Mounter is required")}
	}
	e := &engine{
		src:      filepath.Clean(cfg.SourceRoot),
		dst:      filepath.Clean(cfg.DestRoot),
		fs:       cfg.FS,
		mounter:  cfg.Mounter,
		registry: cfg.Registry,
		stats:    cfg.Stats,
		events:   cfg.Events,
		logger:   cfg.Logger,
		dryRun:   cfg.DryRun,
	}
	if e.fs == nil {
		e.fs = fsops.NewRealFS()
	}
	if e.registry == nil {
		e.registry = registry.New()
	}
	if e.stats == nil {
		e.stats = stats.NewCollector()
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}

	err := e.copyTree(ctx)
	res := Result{Stats: e.stats.Snapshot(), Err: err}
	if err == nil && cfg.Verify && !cfg.DryRun {
		res.Verify = e.verify(ctx)
		res.Stats = e.stats.Snapshot()
	}
	return res
}

// copyTree drives the frontier to empty, the only success terminal
// state. The frontier is a plain stack: sibling subtrees may
// interleave, and the only ordering guarantee is that a child is never
// visited before its parent directory entry was created.
func (e *engine) copyTree(ctx context.Context) error {
	frontier := []string{e.src}

	for len(frontier) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		p := frontier[len(frontier)-1]
		frontier = frontier[:len(frontier)-1]

		if e.registry.IsFailed(p) {
			continue
		}

		dest, err := sanitize.MapPath(e.src, e.dst, p)
		if err != nil {
			return fmt.Errorf("map %q: %w", p, err)
		}

		info, err := e.fs.Stat(p)
		if err != nil {
			switch oserr.Classify(err) {
			case oserr.ConnAborted:
				if rerr := e.recover(ctx, p); rerr != nil {
					return rerr
				}
			case oserr.InputOutput:
				e.stats.AddFilesUnreadable(1)
				e.emit(event.Event{Type: event.FileUnreadable, Path: p, Error: err})
			default:
				return fmt.Errorf("stat %q: %w", p, err)
			}
			continue
		}

		if info.IsDir() {
			children, err := e.copyDir(ctx, p, dest)
			if err != nil {
				return err
			}
			frontier = append(frontier, children...)
			continue
		}

		if err := e.copyFile(ctx, p, dest, false); err != nil {
			return err
		}
	}
	return nil
}

// copyDir creates the mapped destination directory and lists p. The
// returned children are everything the listing yielded before any
// connection abort. If an abort cut the listing short, recovery runs
// here; the directory is not re-queued and the partial listing is not
// resumed, so children not yet enumerated are lost for this run.
func (e *engine) copyDir(ctx context.Context, p, dest string) ([]string, error) {
	if err := e.makeDir(p, dest); err != nil {
		return nil, err
	}

	entries, readErr := e.fs.ReadDir(p)
	children := make([]string, 0, len(entries))
	for _, entry := range entries {
		children = append(children, filepath.Join(p, entry.Name()))
	}

	if readErr != nil {
		if oserr.Classify(readErr) != oserr.ConnAborted {
			return nil, fmt.Errorf("read dir %q: %w", p, readErr)
		}
		e.stats.AddDirsAbandoned(1)
		e.emit(event.Event{Type: event.DirAbandoned, Path: p, Error: readErr})
		if err := e.recover(ctx, p); err != nil {
			return nil, err
		}
	}
	return children, nil
}

// makeDir creates dest and missing ancestors, retrying once with a
// repaired final component when the destination rejects the name.
func (e *engine) makeDir(p, dest string) error {
	if e.dryRun {
		e.stats.AddDirsCreated(1)
		e.emit(event.Event{Type: event.DirCreated, Path: p, Dest: dest})
		return nil
	}

	err := e.fs.MkdirAll(dest, 0o755)
	if err != nil && oserr.Classify(err) == oserr.InvalidArgument {
		repaired := sanitize.RepairFinal(dest)
		e.stats.AddPathsRepaired(1)
		e.emit(event.Event{Type: event.PathRepaired, Path: p, Dest: repaired})
		err = e.fs.MkdirAll(repaired, 0o755)
	}
	if err != nil {
		return fmt.Errorf("create dir %q from %q: %w", dest, p, err)
	}

	e.stats.AddDirsCreated(1)
	e.emit(event.Event{Type: event.DirCreated, Path: p, Dest: dest})
	return nil
}

// copyFile copies one regular file. The repaired flag marks the single
// retry allowed after a destination invalid-argument rejection; a
// second rejection indicates a constraint the sanitizer does not know
// about and is fatal.
func (e *engine) copyFile(ctx context.Context, from, to string, repaired bool) error {
	if e.fs.Exists(to) {
		// Already copied by an earlier run. Content is never verified
		// or overwritten here; that is what makes re-runs cheap.
		e.stats.AddFilesSkipped(1)
		e.emit(event.Event{Type: event.FileSkipped, Path: from, Dest: to})
		return nil
	}

	if e.dryRun {
		e.stats.AddFilesCopied(1)
		e.emit(event.Event{Type: event.FileCopied, Path: from, Dest: to})
		return nil
	}

	n, err := e.fs.Copy(from, to)
	if err == nil {
		e.stats.AddFilesCopied(1)
		e.stats.AddBytesCopied(n)
		e.emit(event.Event{Type: event.FileCopied, Path: from, Dest: to, Size: n})
		return nil
	}

	switch oserr.Classify(err) {
	case oserr.InputOutput:
		// Source data unreadable. Skip this one file and move on; it
		// is not registered, so a later run may still pick it up.
		e.stats.AddFilesUnreadable(1)
		e.emit(event.Event{Type: event.FileUnreadable, Path: from, Error: err})
		return nil
	case oserr.ConnAborted:
		// Recovery handles the file; it is not retried this run.
		e.stats.AddFilesAbandoned(1)
		e.emit(event.Event{Type: event.FileAbandoned, Path: from, Error: err})
		return e.recover(ctx, from)
	case oserr.InvalidArgument:
		if !repaired {
			fixed := sanitize.RepairFinal(to)
			e.stats.AddPathsRepaired(1)
			e.emit(event.Event{Type: event.PathRepaired, Path: from, Dest: fixed})
			return e.copyFile(ctx, from, fixed, true)
		}
	}
	return fmt.Errorf("copy %q to %q: %w", from, to, err)
}

// recover runs the remount protocol for a path that triggered a
// connection abort: the path is permanently abandoned for this run and
// the transport is torn down and re-established.
func (e *engine) recover(ctx context.Context, p string) error {
	e.logger.Warn("connection aborted, remounting and continuing", "path", p)
	e.registry.Remember(p)
	e.emit(event.Event{Type: event.RemountStarted, Path: p})

	if err := e.mounter.Remount(ctx); err != nil {
		return fmt.Errorf("remount after abort on %q: %w", p, err)
	}

	e.stats.AddRemounts(1)
	e.emit(event.Event{Type: event.RemountCompleted, Path: p})
	e.logger.Info("remounted, continuing", "path", p)
	return nil
}

// emit sends ev without blocking; a full channel drops the event rather
// than stalling the traversal.
func (e *engine) emit(ev event.Event) {
	if e.events == nil {
		return
	}
	ev.Timestamp = time.Now()
	select {
	case e.events <- ev:
	default:
	}
}
