package tryon

// State is a step of the try-on attempt lifecycle.
type State int

const (
	StateIdle State = iota
	StatePreparing
	StateSubmitting
	StateSucceeded
	// StateEmpty: the upstream call succeeded but carried no usable image.
	StateEmpty
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePreparing:
		return "preparing"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateEmpty:
		return "empty"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// InFlight reports whether an attempt is running.
func (s State) InFlight() bool {
	return s == StatePreparing || s == StateSubmitting
}

// Terminal reports whether s ends an attempt.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateEmpty || s == StateFailed
}

// Result is the outcome of one submission.
type Result struct {
	AttemptID string
	State     State
	// ImageURI is set only when State is StateSucceeded.
	ImageURI string
	// Err is set only when State is StateFailed.
	Err *Error
}

// Alert reports whether the outcome is announced with a blocking alert.
func (r Result) Alert() bool {
	return r.State == StateFailed && r.Err != nil
}

// OpensDialog reports whether the result dialog is shown. Validation failures
// are alert-only; every other terminal outcome opens the dialog, with no
// image unless the attempt succeeded.
func (r Result) OpensDialog() bool {
	if !r.State.Terminal() {
		return false
	}
	return !(r.State == StateFailed && r.Err != nil && r.Err.Kind == KindValidation)
}

// Message is the text shown for the result.
func (r Result) Message() string {
	switch r.State {
	case StateFailed:
		if r.Err != nil {
			return r.Err.Message
		}
	case StateEmpty:
		return MsgNoImage
	}
	return ""
}
