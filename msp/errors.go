package msp

// Code is the signed numeric error code a caller or an upcall can recover
// from an error returned by the engine, matching the MSP_EXP_ERR_* values of
// the underlying C library this package replaces.
type Code int

// Negative codes are returned directly from OnRecv/OnSend. Positive codes
// are reported only to an upcall (SendError/RecvError), never returned from
// the two entry points themselves.
const (
	CodeIsBusy              Code = -1
	CodeFCSMismatch         Code = -2
	CodeInvalidHeaderFrame  Code = -3
	CodeInvalidDataFrame    Code = -4
	CodeUnexpectedDataFrame Code = -5
	CodeDuplicateFrame      Code = -6
	CodeFaultyFrame         Code = -7
	CodeStateError          Code = -8
	CodeReceivedNullFrame   Code = 1
	CodeTransactionAborted  Code = 2
	CodeTooMuchDataToSend   Code = 3
)

// codedError pairs a sentinel error with its numeric Code so that callers
// which only hold the error interface can still recover the code with
// errors.As.
type codedError struct {
	code Code
	msg  string
}

func (e *codedError) Error() string { return e.msg }

// Code returns the numeric MSP error code carried by err, allowing callers
// to recover it via errors.As(err, &ce) on a *codedError.
func (e *codedError) Code() Code { return e.code }

func newCodedError(code Code, msg string) error {
	return &codedError{code: code, msg: msg}
}

// Sentinel errors returned by OnRecv/OnSend. Compare with errors.Is.
var (
	// ErrIsBusy is returned when a top-level entry point is re-entered
	// while another one is already in progress.
	ErrIsBusy = newCodedError(CodeIsBusy, "msp: engine is busy")

	// ErrFCSMismatch is returned when an inbound frame's FCS does not
	// validate against its pseudo-header-augmented checksum.
	ErrFCSMismatch = newCodedError(CodeFCSMismatch, "msp: FCS mismatch")

	// ErrInvalidHeaderFrame is returned when a header frame's length is
	// not exactly 9 bytes.
	ErrInvalidHeaderFrame = newCodedError(CodeInvalidHeaderFrame, "msp: invalid header frame length")

	// ErrInvalidDataFrame is returned when a data frame's length is out
	// of bounds or would overrun the current transaction's total length.
	ErrInvalidDataFrame = newCodedError(CodeInvalidDataFrame, "msp: invalid data frame")

	// ErrUnexpectedDataFrame is returned when a data frame arrives outside
	// of OBCSendRx state.
	ErrUnexpectedDataFrame = newCodedError(CodeUnexpectedDataFrame, "msp: unexpected data frame")

	// ErrDuplicateFrame is returned when a data frame's frame-ID matches
	// the last accepted one; it is accepted for re-acknowledgment only.
	ErrDuplicateFrame = newCodedError(CodeDuplicateFrame, "msp: duplicate data frame")

	// ErrFaultyFrame is returned when a control-flow header violates the
	// protocol given the current state (e.g. a stale F_ACK).
	ErrFaultyFrame = newCodedError(CodeFaultyFrame, "msp: faulty frame")

	// ErrStateError is returned when the engine detects it has reached an
	// internally inconsistent state; it defensively resets to Ready.
	ErrStateError = newCodedError(CodeStateError, "msp: internal state error")
)

// Errors reported only to upcalls, never returned from OnRecv/OnSend.
var (
	// ErrReceivedNullFrame is reported when a NULL header is what ended a
	// transaction. Reserved for upcall use; the engine itself does not
	// currently invoke an upcall purely for NULL.
	ErrReceivedNullFrame = newCodedError(CodeReceivedNullFrame, "msp: received NULL frame")

	// ErrTransactionAborted is reported to SendError/RecvError when a new,
	// non-continuation header preempts an in-flight transaction.
	ErrTransactionAborted = newCodedError(CodeTransactionAborted, "msp: transaction aborted")

	// ErrTooMuchDataToSend names the case of an application handler asking
	// to send more data than the engine can account for in one transaction.
	// The engine itself does not report it to any upcall.
	ErrTooMuchDataToSend = newCodedError(CodeTooMuchDataToSend, "msp: too much data to send")
)
