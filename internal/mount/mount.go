// Package mount drives the privileged user-space mount helper for the
// source volume. Mounting retries forever: faults on this class of
// driver clear on their own within a few attempts, and the operator can
// kill the process if they don't.
package mount

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/bamsammich/salvage/internal/event"
	"github.com/bamsammich/salvage/internal/stats"
)

// DefaultSettle is how long the driver gets to stabilize after every
// mount or unmount invocation.
const DefaultSettle = 10 * time.Second

// DefaultHelper is the user-space mount command for the source
// filesystem.
const DefaultHelper = "apfs-fuse"

// Output captures one finished subprocess.
type Output struct {
	Status int // exit status; 0 means success
	Stdout string
	Stderr string
}

// Runner executes one external command to completion. Tests substitute
// a scripted fake.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Output, error)
}

// ExecRunner runs commands with os/exec. A non-zero exit is reported in
// Output.Status, not as an error; the error return is reserved for
// failures to run the command at all.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) (Output, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := Output{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			out.Status = exitErr.ExitCode()
			return out, nil
		}
		return out, err
	}
	return out, nil
}

// Options configure a Controller.
type Options struct {
	Device     string
	MountPoint string
	Helper     string              // defaults to DefaultHelper
	Sudo       bool                // prefix helper and umount with sudo
	Settle     time.Duration       // defaults to DefaultSettle
	Runner     Runner              // defaults to ExecRunner
	Sleep      func(time.Duration) // test seam; defaults to time.Sleep
	Logger     *slog.Logger        // defaults to slog.Default()
	Stats      *stats.Collector    // optional; counts mount attempts
	Events     chan<- event.Event  // optional
}

// Controller mounts and unmounts one volume.
type Controller struct {
	opts Options
}

// New returns a Controller with defaults applied.
func New(opts Options) *Controller {
	if opts.Helper == "" {
		opts.Helper = DefaultHelper
	}
	if opts.Settle <= 0 {
		opts.Settle = DefaultSettle
	}
	if opts.Runner == nil {
		opts.Runner = ExecRunner{}
	}
	if opts.Sleep == nil {
		opts.Sleep = time.Sleep
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Controller{opts: opts}
}

// Mount runs the helper until it succeeds. Every attempt, mount or
// unmount, is followed by the settle delay; each failed mount is
// followed by a best-effort unmount before the next try. There is no
// retry cap and no backoff.
func (c *Controller) Mount(ctx context.Context) error {
	for attempt := 1; ; attempt++ {
		if c.opts.Stats != nil {
			c.opts.Stats.AddMountAttempts(1)
		}
		c.emit(event.Event{Type: event.MountAttempt, Path: c.opts.MountPoint, Attempt: attempt})

		out, err := c.run(ctx, c.opts.Helper, c.opts.Device, c.opts.MountPoint)
		if err != nil {
			return fmt.Errorf("run %s: %w", c.opts.Helper, err)
		}
		c.logResult(c.opts.Helper, out, attempt)
		c.opts.Sleep(c.opts.Settle)

		if out.Status == 0 {
			c.opts.Logger.Info("mounted",
				"device", c.opts.Device,
				"mount_point", c.opts.MountPoint,
				"attempt", attempt,
			)
			c.emit(event.Event{Type: event.Mounted, Path: c.opts.MountPoint, Attempt: attempt})
			return nil
		}

		c.opts.Logger.Warn("failed to mount, retrying", "attempt", attempt)
		if err := c.Unmount(ctx); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

// Unmount runs umount on the mount point. A non-zero exit is logged and
// tolerated: the mount point may already be gone, and Mount retries
// either way. The settle delay always follows. The returned error is
// non-nil only when umount could not be run at all.
func (c *Controller) Unmount(ctx context.Context) error {
	out, err := c.run(ctx, "umount", c.opts.MountPoint)
	if err != nil {
		return fmt.Errorf("run umount: %w", err)
	}
	c.logResult("umount", out, 0)

	if out.Status == 0 {
		c.opts.Logger.Info("unmounted", "mount_point", c.opts.MountPoint)
		c.emit(event.Event{Type: event.Unmounted, Path: c.opts.MountPoint})
	} else {
		c.opts.Logger.Warn("failed to umount", "mount_point", c.opts.MountPoint, "status", out.Status)
	}
	c.opts.Sleep(c.opts.Settle)
	return nil
}

// Remount tears the mount down and brings it back: unmount, settle,
// then Mount with its unbounded retry.
func (c *Controller) Remount(ctx context.Context) error {
	c.opts.Logger.Info("remounting",
		"device", c.opts.Device,
		"mount_point", c.opts.MountPoint,
	)
	if err := c.Unmount(ctx); err != nil {
		return err
	}
	return c.Mount(ctx)
}

func (c *Controller) run(ctx context.Context, name string, args ...string) (Output, error) {
	if c.opts.Sudo {
		args = append([]string{name}, args...)
		name = "sudo"
	}
	return c.opts.Runner.Run(ctx, name, args...)
}

// emit sends ev without blocking; a full channel drops the event.
func (c *Controller) emit(ev event.Event) {
	if c.opts.Events == nil {
		return
	}
	ev.Timestamp = time.Now()
	select {
	case c.opts.Events <- ev:
	default:
	}
}

func (c *Controller) logResult(name string, out Output, attempt int) {
	attrs := []any{
		"command", name,
		"status", out.Status,
		"stdout", strings.TrimSpace(out.Stdout),
		"stderr", strings.TrimSpace(out.Stderr),
	}
	if attempt > 0 {
		attrs = append(attrs, "attempt", attempt)
	}
	c.opts.Logger.Info("subprocess finished", attrs...)
}
