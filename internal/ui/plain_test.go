package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/bamsammich/salvage/internal/event"
	"github.com/bamsammich/salvage/internal/stats"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	m.Run()
}

func newPlain(out, errOut *bytes.Buffer, verbose bool) *plainPresenter {
	return &plainPresenter{
		w:       out,
		errW:    errOut,
		stats:   stats.NewCollector(),
		srcRoot: "/mnt/apfs",
		dstRoot: "/out",
		verbose: verbose,
	}
}

func TestPlainPresenterFileCopied(t *testing.T) {
	var out, errOut bytes.Buffer
	p := newPlain(&out, &errOut, false)

	events := make(chan event.Event, 10)
	events <- event.Event{Type: event.FileCopied, Path: "/mnt/apfs/dir/file.txt", Dest: "/out/dir/file.txt", Size: 1024}
	events <- event.Event{Type: event.FileCopied, Path: "/mnt/apfs/big.bin", Dest: "/out/big.bin", Size: 1024 * 1024 * 100}
	close(events)

	assert.NoError(t, p.Run(events))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], "dir/file.txt")
	assert.Contains(t, lines[0], "1.0 KiB")
	assert.Contains(t, lines[1], "big.bin")
	assert.Empty(t, errOut.String())
}

func TestPlainPresenterSkipsAndFailures(t *testing.T) {
	var out, errOut bytes.Buffer
	p := newPlain(&out, &errOut, false)

	events := make(chan event.Event, 10)
	events <- event.Event{Type: event.FileSkipped, Dest: "/out/already.txt"}
	events <- event.Event{Type: event.FileUnreadable, Path: "/mnt/apfs/bad.txt", Error: assert.AnError}
	events <- event.Event{Type: event.FileAbandoned, Path: "/mnt/apfs/gone.txt"}
	events <- event.Event{Type: event.DirAbandoned, Path: "/mnt/apfs/gone-dir"}
	close(events)

	assert.NoError(t, p.Run(events))

	// Skips are silent unless verbose.
	assert.NotContains(t, out.String(), "already.txt")
	assert.Contains(t, out.String(), "bad.txt  unreadable, skipped")
	assert.Contains(t, out.String(), "gone.txt  abandoned")
	assert.Contains(t, out.String(), "gone-dir/  abandoned")
}

func TestPlainPresenterVerboseShowsSkipsAndDirs(t *testing.T) {
	var out, errOut bytes.Buffer
	p := newPlain(&out, &errOut, true)

	events := make(chan event.Event, 10)
	events <- event.Event{Type: event.FileSkipped, Dest: "/out/already.txt"}
	events <- event.Event{Type: event.DirCreated, Dest: "/out/newdir"}
	close(events)

	assert.NoError(t, p.Run(events))
	assert.Contains(t, out.String(), "already.txt  exists, skipped")
	assert.Contains(t, out.String(), "newdir/")
}

func TestPlainPresenterRecoveryGoesToStderr(t *testing.T) {
	var out, errOut bytes.Buffer
	p := newPlain(&out, &errOut, false)

	events := make(chan event.Event, 10)
	events <- event.Event{Type: event.RemountStarted, Path: "/mnt/apfs/dir"}
	events <- event.Event{Type: event.RemountCompleted}
	events <- event.Event{Type: event.PathRepaired, Path: "/mnt/apfs/we|ird", Dest: "/out/we_ird"}
	close(events)

	assert.NoError(t, p.Run(events))
	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "connection lost at dir, remounting...")
	assert.Contains(t, errOut.String(), "remounted, resuming")
	assert.Contains(t, errOut.String(), "repaired name: we|ird -> we_ird")
}

func TestPlainPresenterVerify(t *testing.T) {
	var out, errOut bytes.Buffer
	p := newPlain(&out, &errOut, false)

	events := make(chan event.Event, 10)
	events <- event.Event{Type: event.VerifyStarted}
	events <- event.Event{Type: event.VerifyOK, Dest: "/out/good.txt"}
	events <- event.Event{Type: event.VerifyMismatch, Dest: "/out/bad.txt"}
	close(events)

	assert.NoError(t, p.Run(events))
	assert.Contains(t, errOut.String(), "verifying...")
	assert.NotContains(t, out.String(), "good.txt")
	assert.Contains(t, out.String(), "MISMATCH: bad.txt")
}

func TestQuietPresenterSilent(t *testing.T) {
	p := NewPresenter(Config{Quiet: true, Stats: stats.NewCollector()})

	events := make(chan event.Event, 5)
	events <- event.Event{Type: event.FileCopied, Dest: "/out/a.txt", Size: 1}
	close(events)

	assert.NoError(t, p.Run(events))
	assert.Empty(t, p.Summary())
}
