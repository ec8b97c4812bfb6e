package directory

import (
	"github.com/pkg/errors"
)

// Kind distinguishes the two ways a directory load can fail
type Kind int

const (
	// KindLoad means the csv could not be fetched
	KindLoad Kind = iota + 1
	// KindParse means the csv was fetched but is malformed
	KindParse
)

func (k Kind) String() string {
	switch k {
	case KindLoad:
		return "load"
	case KindParse:
		return "parse"
	}
	return "unknown"
}

// ErrNotReady is returned while the first load is still running
var ErrNotReady = errors.New("feed directory is still loading")

// Error is a failed load of the directory. Both kinds are terminal for the load that produced them.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindLoad:
		return "could not load feed directory: " + e.Err.Error()
	case KindParse:
		return "could not parse feed directory: " + e.Err.Error()
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a directory error of the given kind
func IsKind(err error, k Kind) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind == k
	}
	return false
}
