// Package oserr classifies operating-system errors into the small
// recovery taxonomy the copy engine acts on. This is the only
// platform-specific surface in the engine: everything else branches on
// Class, never on raw errnos or message text.
package oserr

import (
	"errors"
	"syscall"

	"golang.org/x/sys/unix"
)

// Class partitions OS-level failures by how the engine recovers from them.
type Class int

const (
	// Other is every error the engine treats as fatal.
	Other Class = iota

	// TransportNotConnected means the FUSE endpoint is gone (ENOTCONN).
	// Seen by the startup probe; answered with the initial mount.
	TransportNotConnected

	// ConnAborted means the driver tore the transport down
	// mid-operation (ECONNABORTED). Answered by the remount protocol.
	ConnAborted

	// InputOutput means the source data is unreadable (EIO). The one
	// affected file is silently skipped.
	InputOutput

	// InvalidArgument means the destination rejected a name (EINVAL).
	// Answered by one retry with a repaired final component.
	InvalidArgument
)

var classNames = [...]string{
	Other:                 "other",
	TransportNotConnected: "transport_not_connected",
	ConnAborted:           "connection_aborted",
	InputOutput:           "input_output",
	InvalidArgument:       "invalid_argument",
}

func (c Class) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return "unknown"
}

// Classify maps err to its Class. It unwraps fs.PathError, os.LinkError,
// os.SyscallError and fmt-wrapped chains down to the underlying errno.
func Classify(err error) Class {
	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return Other
	}
	switch errno {
	case unix.ENOTCONN:
		return TransportNotConnected
	case unix.ECONNABORTED:
		return ConnAborted
	case unix.EIO:
		return InputOutput
	case unix.EINVAL:
		return InvalidArgument
	default:
		return Other
	}
}
