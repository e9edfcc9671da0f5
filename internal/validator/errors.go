package validator

// reasonError carries a human-readable validation reason. The message is the
// exact text surfaced to the author, so callers can use err.Error() directly.
type reasonError struct {
	reason string
}

func (e *reasonError) Error() string {
	return e.reason
}

func errReason(reason string) error {
	return &reasonError{reason: reason}
}
