package ui

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/bamsammich/salvage/internal/event"
	"github.com/bamsammich/salvage/internal/stats"
)

// plainPresenter prints one line per notable event to stdout. Recovery
// and verification noise goes to stderr so stdout stays a clean record
// of what landed in the destination tree.
type plainPresenter struct {
	w       io.Writer
	errW    io.Writer
	stats   *stats.Collector
	srcRoot string
	dstRoot string
	verbose bool
}

var (
	colorSkip    = color.New(color.FgYellow)
	colorProblem = color.New(color.FgRed)
	colorRecover = color.New(color.FgCyan)
)

func (p *plainPresenter) Run(events <-chan event.Event) error {
	for ev := range events {
		p.handleEvent(ev)
	}
	return nil
}

func (p *plainPresenter) handleEvent(ev event.Event) {
	src := StripRoot(p.srcRoot, ev.Path)
	dst := StripRoot(p.dstRoot, ev.Dest)

	switch ev.Type {
	case event.FileCopied:
		fmt.Fprintf(p.w, "%s  %s\n", dst, FormatBytes(ev.Size))
	case event.FileSkipped:
		if p.verbose {
			colorSkip.Fprintf(p.w, "%s  exists, skipped\n", dst)
		}
	case event.FileUnreadable:
		colorSkip.Fprintf(p.w, "%s  unreadable, skipped\n", src)
	case event.FileAbandoned:
		colorProblem.Fprintf(p.w, "%s  abandoned\n", src)
	case event.DirAbandoned:
		colorProblem.Fprintf(p.w, "%s/  abandoned\n", src)
	case event.DirCreated:
		if p.verbose {
			fmt.Fprintf(p.w, "%s/\n", dst)
		}
	case event.PathRepaired:
		colorRecover.Fprintf(p.errW, "repaired name: %s -> %s\n", src, dst)
	case event.RemountStarted:
		colorRecover.Fprintf(p.errW, "connection lost at %s, remounting...\n", src)
	case event.RemountCompleted:
		colorRecover.Fprintln(p.errW, "remounted, resuming")
	case event.VerifyStarted:
		fmt.Fprintln(p.errW, "verifying...")
	case event.VerifyMismatch:
		colorProblem.Fprintf(p.w, "MISMATCH: %s\n", dst)
	case event.VerifyOK:
		// silent in plain mode
	}
}

func (p *plainPresenter) Summary() string {
	return CompletionSummary(p.stats.Snapshot())
}
