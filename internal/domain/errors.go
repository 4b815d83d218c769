package domain

import "fmt"

// UnknownStateError reports a stored or computed state name that is not part of
// the conversation registry. The event that produced it is dropped and the
// stored value is left untouched.
type UnknownStateError struct {
	Value string
}

func (e *UnknownStateError) Error() string {
	return fmt.Sprintf("unknown conversation state %q", e.Value)
}

// MalformedPayloadError reports a callback payload that does not parse into the
// shape the current state expects.
type MalformedPayloadError struct {
	Payload string
}

func (e *MalformedPayloadError) Error() string {
	return fmt.Sprintf("malformed callback payload %q", e.Payload)
}
