package ui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/bamsammich/salvage/internal/stats"
)

// FormatBytes wraps stats.FormatBytes for UI use.
func FormatBytes(b int64) string {
	return stats.FormatBytes(b)
}

// FormatDuration formats elapsed time concisely.
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60

	if h > 0 {
		return fmt.Sprintf("%dh %02dm %02ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %02ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}

// StripRoot removes a root prefix from a path, returning a clean relative path.
func StripRoot(root, path string) string {
	if root == "" {
		return path
	}
	if !strings.HasSuffix(root, string(filepath.Separator)) {
		root += string(filepath.Separator)
	}
	if strings.HasPrefix(path, root) {
		return path[len(root):]
	}
	return path
}

// CompletionSummary renders the end-of-run summary line.
func CompletionSummary(snap stats.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "copied %d files (%s) in %s",
		snap.FilesCopied, FormatBytes(snap.BytesCopied), FormatDuration(snap.Elapsed))
	if snap.FilesSkipped > 0 {
		fmt.Fprintf(&b, ", %d already present", snap.FilesSkipped)
	}
	if snap.FilesUnreadable > 0 {
		fmt.Fprintf(&b, ", %d unreadable", snap.FilesUnreadable)
	}
	if abandoned := snap.FilesAbandoned + snap.DirsAbandoned; abandoned > 0 {
		fmt.Fprintf(&b, ", %d abandoned", abandoned)
	}
	if snap.Remounts > 0 {
		fmt.Fprintf(&b, ", %d remounts", snap.Remounts)
	}
	if snap.PathsRepaired > 0 {
		fmt.Fprintf(&b, ", %d names repaired", snap.PathsRepaired)
	}
	if snap.FilesVerified > 0 || snap.VerifyMismatches > 0 {
		fmt.Fprintf(&b, ", verified %d (%d mismatched)", snap.FilesVerified, snap.VerifyMismatches)
	}
	return b.String()
}
