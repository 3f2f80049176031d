package smpp

import "fmt"

// TransportError wraps a TCP connect, read, or write failure.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("smpp: transport error during %s: %s", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// MalformedPdu is returned when inbound bytes fail to parse as a PDU.
type MalformedPdu struct {
	Reason string
}

func (e *MalformedPdu) Error() string {
	return fmt.Sprintf("smpp: malformed pdu: %s", e.Reason)
}

// IllegalSessionState is returned when a PDU is not admissible in the
// session's current state.
type IllegalSessionState struct {
	CommandID CommandID
	State     SessionState
}

func (e *IllegalSessionState) Error() string {
	return fmt.Sprintf("smpp: command %s not admissible in state %s", e.CommandID, e.State)
}

// BindRejected is returned when bind_transceiver_resp carries a non-OK status.
type BindRejected struct {
	Status CommandStatus
}

func (e *BindRejected) Error() string {
	return fmt.Sprintf("smpp: bind rejected: %s", e.Status)
}

// CodecError is returned by a Codec in strict error mode when it meets an
// unmappable codepoint or byte.
type CodecError struct {
	Alphabet string
	Reason   string
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("smpp: codec error (%s): %s", e.Alphabet, e.Reason)
}

// HookFailure wraps a panic/error recovered from a user-supplied hook. It is
// logged and swallowed; it never reaches the peer.
type HookFailure struct {
	Hook string
	Err  error
}

func (e *HookFailure) Error() string {
	return fmt.Sprintf("smpp: hook %s failed: %s", e.Hook, e.Err)
}

func (e *HookFailure) Unwrap() error { return e.Err }

// CorrelatorMiss indicates a response arrived whose sequence_number has no
// matching correlation entry. log_id/hook_metadata resolve to empty strings
// and handling continues.
type CorrelatorMiss struct {
	SequenceNumber uint32
}

func (e *CorrelatorMiss) Error() string {
	return fmt.Sprintf("smpp: no correlation entry for sequence_number %d", e.SequenceNumber)
}
