// Package stats tracks run counters behind atomic operations so the
// presenter can read them while the engine runs.
package stats

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Collector accumulates counters for one run.
type Collector struct {
	dirsCreated      atomic.Int64
	dirsAbandoned    atomic.Int64
	filesCopied      atomic.Int64
	filesSkipped     atomic.Int64
	filesUnreadable  atomic.Int64
	filesAbandoned   atomic.Int64
	bytesCopied      atomic.Int64
	pathsRepaired    atomic.Int64
	mountAttempts    atomic.Int64
	remounts         atomic.Int64
	filesVerified    atomic.Int64
	verifyMismatches atomic.Int64
	startTime        time.Time
}

// NewCollector creates a Collector with startTime set to now.
func NewCollector() *Collector {
	return &Collector{startTime: time.Now()}
}

func (c *Collector) AddDirsCreated(n int64)      { c.dirsCreated.Add(n) }
func (c *Collector) AddDirsAbandoned(n int64)    { c.dirsAbandoned.Add(n) }
func (c *Collector) AddFilesCopied(n int64)      { c.filesCopied.Add(n) }
func (c *Collector) AddFilesSkipped(n int64)     { c.filesSkipped.Add(n) }
func (c *Collector) AddFilesUnreadable(n int64)  { c.filesUnreadable.Add(n) }
func (c *Collector) AddFilesAbandoned(n int64)   { c.filesAbandoned.Add(n) }
func (c *Collector) AddBytesCopied(n int64)      { c.bytesCopied.Add(n) }
func (c *Collector) AddPathsRepaired(n int64)    { c.pathsRepaired.Add(n) }
func (c *Collector) AddMountAttempts(n int64)    { c.mountAttempts.Add(n) }
func (c *Collector) AddRemounts(n int64)         { c.remounts.Add(n) }
func (c *Collector) AddFilesVerified(n int64)    { c.filesVerified.Add(n) }
func (c *Collector) AddVerifyMismatches(n int64) { c.verifyMismatches.Add(n) }

// Snapshot is a point-in-time read of all counters.
type Snapshot struct {
	DirsCreated      int64
	DirsAbandoned    int64
	FilesCopied      int64
	FilesSkipped     int64
	FilesUnreadable  int64
	FilesAbandoned   int64
	BytesCopied      int64
	PathsRepaired    int64
	MountAttempts    int64
	Remounts         int64
	FilesVerified    int64
	VerifyMismatches int64
	Elapsed          time.Duration
}

// Snapshot returns a consistent point-in-time read of all counters.
func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		DirsCreated:      c.dirsCreated.Load(),
		DirsAbandoned:    c.dirsAbandoned.Load(),
		FilesCopied:      c.filesCopied.Load(),
		FilesSkipped:     c.filesSkipped.Load(),
		FilesUnreadable:  c.filesUnreadable.Load(),
		FilesAbandoned:   c.filesAbandoned.Load(),
		BytesCopied:      c.bytesCopied.Load(),
		PathsRepaired:    c.pathsRepaired.Load(),
		MountAttempts:    c.mountAttempts.Load(),
		Remounts:         c.remounts.Load(),
		FilesVerified:    c.filesVerified.Load(),
		VerifyMismatches: c.verifyMismatches.Load(),
		Elapsed:          c.Elapsed(),
	}
}

// Elapsed returns time since collector creation.
func (c *Collector) Elapsed() time.Duration {
	return time.Since(c.startTime)
}

func (s Snapshot) String() string {
	return fmt.Sprintf(
		"copied=%d skipped=%d unreadable=%d abandoned=%d dirs=%d bytes=%d remounts=%d",
		s.FilesCopied, s.FilesSkipped, s.FilesUnreadable,
		s.FilesAbandoned+s.DirsAbandoned, s.DirsCreated, s.BytesCopied, s.Remounts,
	)
}

// FormatBytes returns a human-readable byte count.
func FormatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
