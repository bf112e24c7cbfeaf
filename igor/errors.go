package igor

import (
	"errors"
	"fmt"
)

// Kind classifies the errors the core engine can produce. CLI and
// reporting layers switch on Kind to decide exit codes and whether a
// failure is fatal to the whole run or confined to one niche.
type Kind int

const (
	// KindUnknown is the zero value; never returned by the engine.
	KindUnknown Kind = iota
	// KindBadName marks a filename that does not parse per the name grammar.
	KindBadName
	// KindBadConfig marks a malformed or contradictory InvarConfig.
	KindBadConfig
	// KindMissingThundercloud marks a niche whose Source could not be read.
	KindMissingThundercloud
	// KindUnbalancedPlaceholder marks a BEGIN with no matching END. Raised
	// by Splice, but always degraded to a per-action Warning by the
	// executor (spec.md §7) rather than surfaced as a niche failure.
	KindUnbalancedPlaceholder
	// KindIoError marks a filesystem failure while reading or writing.
	KindIoError
	// KindCycleOrForwardRef marks a psychotropic cue referencing an
	// undeclared-so-far predecessor, or a name reused across cues.
	KindCycleOrForwardRef
	// KindCancelled marks work that stopped because of cancellation.
	KindCancelled
)

func (k Kind) String() string {
	switch k {
	case KindBadName:
		return "BadName"
	case KindBadConfig:
		return "BadConfig"
	case KindMissingThundercloud:
		return "MissingThundercloud"
	case KindUnbalancedPlaceholder:
		return "UnbalancedPlaceholder"
	case KindIoError:
		return "IoError"
	case KindCycleOrForwardRef:
		return "CycleOrForwardRef"
	case KindCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// Error is the single error type returned by every igor component. It
// carries a Kind so callers can classify failures (fatal vs. per-niche,
// warning-worthy vs. not) without string matching.
type Error struct {
	Kind    Kind
	Path    string // filename or target path the error concerns, if any
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Path != "" {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %s: %s: %v", e.Kind, e.Path, e.Message, e.Cause)
		}
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Path, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func newErr(kind Kind, path, message string, cause error) *Error {
	return &Error{Kind: kind, Path: path, Message: message, Cause: cause}
}

// KindOf extracts the Kind from err if it is (or wraps) an *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return KindUnknown, false
}
