package tryon

import (
	"fmt"
)

// ErrorKind classifies why a try-on attempt did not produce an image.
type ErrorKind int

const (
	// KindValidation: the attempt was rejected before any work (no photo, no garments).
	KindValidation ErrorKind = iota + 1
	// KindPreparation: images could not be normalized into payloads.
	KindPreparation
	// KindUpstream: the proxy answered with a non-2xx status.
	KindUpstream
	// KindNetwork: the proxy could not be reached.
	KindNetwork
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindPreparation:
		return "preparation"
	case KindUpstream:
		return "upstream"
	case KindNetwork:
		return "network"
	default:
		return "unknown"
	}
}

// User-facing messages.
const (
	MsgNoPhoto         = "Please capture or upload a photo first."
	MsgNoGarments      = "Please select at least one clothing item."
	MsgCouldNotPrepare = "Could not prepare images for try-on."
	MsgNoImage         = "No image returned."
)

// Error is a classified try-on failure with a human-readable message.
type Error struct {
	Kind    ErrorKind
	Message string
	// Status is the upstream HTTP status for KindUpstream.
	Status int
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("try-on %s: %s", e.Kind, e.Message)
}

// Is matches errors of the same kind so callers can use errors.Is with the
// sentinel values below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil {
		return false
	}
	return t.Message == "" && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrValidation  = &Error{Kind: KindValidation}
	ErrPreparation = &Error{Kind: KindPreparation}
	ErrUpstream    = &Error{Kind: KindUpstream}
	ErrNetwork     = &Error{Kind: KindNetwork}
)

func newError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}
