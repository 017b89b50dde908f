// Package event defines the progress events the engine and mount
// controller emit while a run is in flight.
package event

import "time"

// Type identifies the kind of event.
type Type int

const (
	MountAttempt Type = iota + 1
	Mounted
	Unmounted
	RemountStarted
	RemountCompleted
	DirCreated
	DirAbandoned
	FileCopied
	FileSkipped
	FileUnreadable
	FileAbandoned
	PathRepaired
	VerifyStarted
	VerifyOK
	VerifyMismatch
)

var typeNames = [...]string{
	MountAttempt:     "MountAttempt",
	Mounted:          "Mounted",
	Unmounted:        "Unmounted",
	RemountStarted:   "RemountStarted",
	RemountCompleted: "RemountCompleted",
	DirCreated:       "DirCreated",
	DirAbandoned:     "DirAbandoned",
	FileCopied:       "FileCopied",
	FileSkipped:      "FileSkipped",
	FileUnreadable:   "FileUnreadable",
	FileAbandoned:    "FileAbandoned",
	PathRepaired:     "PathRepaired",
	VerifyStarted:    "VerifyStarted",
	VerifyOK:         "VerifyOK",
	VerifyMismatch:   "VerifyMismatch",
}

func (t Type) String() string {
	if int(t) > 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "Unknown"
}

// Event is a single progress event.
type Event struct {
	Type      Type
	Timestamp time.Time
	Path      string // source path, unless the event concerns only the destination
	Dest      string // destination path, when one is involved
	Size      int64  // bytes copied (FileCopied)
	Error     error
	Attempt   int // mount attempt ordinal (MountAttempt)
}
