package msp

// Application is the capability record the transaction engine calls into.
// It is the Go rendering of the C library's callback-function-pointer
// contract (msp_exp_handler.h / msp_exp_callback.h): every method below
// corresponds to exactly one of those callbacks, called in the order
// documented on each method. Implementations must not retain the buffers
// passed to SendData/RecvData beyond the call, and must not write past the
// declared length.
//
// A single entry call (OnRecv or OnSend) invokes at most one of these
// methods, except when a new header preempts an in-flight transaction: then
// the aborted transaction's SendError/RecvError is called first, followed by
// the new header's SendStart/RecvStart. SendComplete/RecvComplete/SendError/
// RecvError are always preceded by all SendData/RecvData calls of the same
// transaction finishing first.
type Application interface {
	// SendStart begins an OBC Request transaction: opcode is the request
	// opcode the OBC sent, and the implementation must write the total
	// number of bytes it intends to send into *totalLen.
	SendStart(opcode Opcode, totalLen *uint32)

	// SendData fills buf[0:len(buf)] with the response bytes starting at
	// offset. May be called more than once at the same offset if the OBC
	// asks for retransmission; implementations must be idempotent.
	SendData(opcode Opcode, buf []byte, offset uint32)

	// SendComplete is called once the OBC has acknowledged the full
	// response.
	SendComplete(opcode Opcode)

	// SendError is called if the response transaction is aborted before
	// completion, most commonly because a new header preempted it.
	SendError(opcode Opcode, code Code)

	// RecvStart begins an OBC Send transaction of totalLen bytes. Not
	// called for system-command opcodes; see RecvSyscommand.
	RecvStart(opcode Opcode, totalLen uint32)

	// RecvData delivers len(buf) bytes of the transaction's payload
	// starting at offset. May be called more than once for the same
	// offset if the OBC retransmits a frame; implementations must be
	// idempotent.
	RecvData(opcode Opcode, buf []byte, offset uint32)

	// RecvComplete is called once the full payload of an OBC Send
	// transaction has been received and acknowledged.
	RecvComplete(opcode Opcode)

	// RecvError is called if an OBC Send transaction is aborted before
	// completion.
	RecvError(opcode Opcode, code Code)

	// RecvSyscommand is called once a system-command opcode has been
	// fully acknowledged. No other Recv* method is called for it.
	RecvSyscommand(opcode Opcode)
}
