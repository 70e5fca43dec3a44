package msp

import "github.com/tstana/cubes-fw-sub000/log"

// Engine is the single-threaded MSP transaction state machine on the
// experiment side of the link. It has exactly two entry points, OnRecv and
// OnSend, and is driven to completion synchronously on every call: it never
// blocks and never retains a buffer past the call that supplied it.
//
// The zero value is not ready to use; construct with NewEngine.
type Engine struct {
	codec *FrameCodec
	app   Application
	store *Store

	initialized bool
	busy        bool
	state       State
	cur         txn
}

// NewEngine returns an Engine bound to codec (wire framing/FCS parameters)
// and app (the host application's upcall implementation). store may be nil,
// in which case a fresh, zeroed Store is used; pass a Store restored from
// non-volatile storage to resume across a power cycle.
func NewEngine(codec *FrameCodec, app Application, store *Store) *Engine {
	e := &Engine{codec: codec, app: app, store: store}
	e.ensureInit()
	return e
}

// Store returns the engine's sequence-flag store, e.g. to snapshot it to
// non-volatile storage.
func (e *Engine) Store() *Store { return e.store }

// State returns the engine's current protocol state. Exposed for
// diagnostics (the EGSE bridge) and tests; the core never branches on it
// from outside engine.go.
func (e *Engine) State() State { return e.state }

func (e *Engine) ensureInit() {
	if e.initialized {
		return
	}
	if e.store == nil {
		e.store = NewStore()
	}
	e.state = Ready
	e.initialized = true
}

func flagValueOf(bit byte) FlagValue {
	if bit&1 == 1 {
		return FlagOne
	}
	return FlagZero
}

func bitOf(v FlagValue) byte {
	if v == FlagOne {
		return 1
	}
	return 0
}

// OnRecv is called by the transport when the OBC has handed the experiment
// a complete inbound frame. buf must contain exactly the frame bytes,
// including its trailing FCS.
func (e *Engine) OnRecv(buf []byte) error {
	e.ensureInit()
	if e.busy {
		return ErrIsBusy
	}
	e.busy = true
	defer func() { e.busy = false }()

	if !e.codec.FCSValid(buf, true) {
		return ErrFCSMismatch
	}

	opcode := Opcode(buf[0] & 0x7F)
	frameID := (buf[0] >> 7) & 1

	if opcode == OpData {
		return e.recvDataFrame(buf, frameID)
	}
	return e.recvHeaderFrame(buf, opcode, frameID)
}

func (e *Engine) recvDataFrame(buf []byte, frameID byte) error {
	if len(buf) < minDataFrameSize || uint32(len(buf)) > e.codec.MTU+5 {
		return ErrInvalidDataFrame
	}
	if e.state != ObcSendRx {
		return ErrUnexpectedDataFrame
	}
	if frameID == e.cur.lastReceivedFrameID {
		return ErrDuplicateFrame
	}

	dataLen := uint32(len(buf) - 5)
	if e.cur.processedLength+dataLen > e.cur.totalLength {
		return ErrInvalidDataFrame
	}

	e.app.RecvData(e.cur.opcode, buf[1:1+dataLen], e.cur.processedLength)
	e.cur.processedLength += dataLen
	e.cur.lastReceivedFrameID = frameID
	return nil
}

func (e *Engine) recvHeaderFrame(buf []byte, opcode Opcode, frameID byte) error {
	if len(buf) != HeaderSize {
		return ErrInvalidHeaderFrame
	}
	dl := unpackBE32(buf[1:5])

	switch opcode.FamilyOf() {
	case FamilyCtrl:
		return e.recvControl(opcode, frameID)
	case FamilySys:
		e.abortCurrent()
		return e.recvSys(opcode, frameID, dl)
	case FamilyReq:
		e.abortCurrent()
		return e.recvReq(opcode, frameID)
	case FamilySend:
		e.abortCurrent()
		return e.recvSend(opcode, frameID, dl)
	default:
		return ErrFaultyFrame
	}
}

func (e *Engine) recvControl(opcode Opcode, frameID byte) error {
	switch opcode {
	case OpNull:
		e.abortCurrent()
		return nil

	case OpFAck:
		if e.state != ObcReqResponse && e.state != ObcReqTx {
			return ErrFaultyFrame
		}
		if frameID != e.cur.frameID {
			return ErrFaultyFrame
		}
		if e.state == ObcReqResponse {
			e.state = ObcReqTx
			e.cur.processedLength = 0
			e.cur.frameID ^= 1
			return nil
		}
		// ObcReqTx
		if e.cur.processedLength+e.cur.prevDataLength >= e.cur.totalLength {
			return ErrFaultyFrame
		}
		e.cur.processedLength += e.cur.prevDataLength
		e.cur.frameID ^= 1
		return nil

	case OpTAck:
		if e.state != ObcReqResponse && e.state != ObcReqTx {
			return ErrFaultyFrame
		}
		if frameID != e.cur.transactionID {
			return ErrFaultyFrame
		}
		complete := (e.state == ObcReqResponse && e.cur.totalLength == 0) ||
			(e.state == ObcReqTx && e.cur.processedLength+e.cur.prevDataLength >= e.cur.totalLength)
		if !complete {
			return ErrFaultyFrame
		}
		opcode := e.cur.opcode
		e.app.SendComplete(opcode)
		e.store.Set(opcode, flagValueOf(e.cur.transactionID))
		e.state = Ready
		return nil

	default:
		return ErrFaultyFrame
	}
}

func (e *Engine) recvSys(opcode Opcode, frameID byte, dl uint32) error {
	e.cur = txn{opcode: opcode, transactionID: frameID, totalLength: dl}
	if e.store.IsSet(opcode, flagValueOf(frameID)) {
		e.state = ObcSendRxDuplicate
		log.Debug("msp: duplicate system command", "opcode", opcode)
	} else {
		e.state = ObcSendRx
	}
	return nil
}

func (e *Engine) recvReq(opcode Opcode, frameID byte) error {
	tid := bitOf(e.store.GetNext(opcode))
	e.cur = txn{opcode: opcode, transactionID: tid, frameID: tid}

	var totalLen uint32
	e.app.SendStart(opcode, &totalLen)
	e.cur.totalLength = totalLen
	e.state = ObcReqResponse
	return nil
}

func (e *Engine) recvSend(opcode Opcode, frameID byte, dl uint32) error {
	e.cur = txn{opcode: opcode, transactionID: frameID, totalLength: dl}
	if e.store.IsSet(opcode, flagValueOf(frameID)) {
		e.state = ObcSendRxDuplicate
		log.Debug("msp: duplicate send transaction", "opcode", opcode)
	} else {
		e.state = ObcSendRx
		e.app.RecvStart(opcode, dl)
	}
	return nil
}

// abortCurrent implements the engine's abort semantics (ensure_ready_state):
// fire the appropriate error upcall for whatever transaction is in flight,
// then return to Ready. From Ready, ObcSendRxDuplicate, or any state with
// nothing in flight it fires no upcall and only sets the state to Ready.
func (e *Engine) abortCurrent() {
	switch e.state {
	case ObcSendRx:
		if e.cur.opcode.FamilyOf() != FamilySys {
			e.app.RecvError(e.cur.opcode, CodeTransactionAborted)
		}
	case ObcReqResponse, ObcReqTx:
		e.app.SendError(e.cur.opcode, CodeTransactionAborted)
	}
	e.state = Ready
}

// OnSend is called by the transport when the OBC is polling the experiment
// for its next outbound frame. Exactly one frame is written into buf, which
// must have at least codec.MinBufferSize() bytes of capacity; n is the
// number of bytes written.
func (e *Engine) OnSend(buf []byte) (n int, err error) {
	e.ensureInit()
	if e.busy {
		e.codec.FormatEmptyHeader(buf, OpExpBusy)
		return HeaderSize, ErrIsBusy
	}
	e.busy = true
	defer func() { e.busy = false }()

	switch e.state {
	case Ready:
		e.codec.FormatEmptyHeader(buf, OpNull)
		return HeaderSize, nil

	case ObcReqResponse:
		e.codec.FormatHeader(buf, OpExpSend, e.cur.frameID, e.cur.totalLength)
		return HeaderSize, nil

	case ObcReqTx:
		return e.sendDataFrame(buf)

	case ObcSendRxDuplicate:
		e.codec.FormatHeader(buf, OpTAck, e.cur.transactionID, 0)
		e.state = Ready
		return HeaderSize, nil

	case ObcSendRx:
		return e.sendRecvAck(buf)

	default:
		e.abortCurrent()
		e.codec.FormatEmptyHeader(buf, OpNull)
		return HeaderSize, ErrStateError
	}
}

func (e *Engine) sendDataFrame(buf []byte) (int, error) {
	if e.cur.processedLength >= e.cur.totalLength {
		e.abortCurrent()
		e.codec.FormatEmptyHeader(buf, OpNull)
		return HeaderSize, ErrStateError
	}

	remaining := e.cur.totalLength - e.cur.processedLength
	sendLen := e.codec.MTU
	if remaining < sendLen {
		sendLen = remaining
	}

	e.app.SendData(e.cur.opcode, buf[1:1+sendLen], e.cur.processedLength)
	n := e.codec.FormatData(buf, e.cur.frameID, int(sendLen))
	e.cur.prevDataLength = sendLen
	return n, nil
}

func (e *Engine) sendRecvAck(buf []byte) (int, error) {
	if e.cur.processedLength >= e.cur.totalLength {
		opcode := e.cur.opcode
		tid := e.cur.transactionID
		e.codec.FormatHeader(buf, OpTAck, tid, 0)
		e.state = Ready

		if opcode.FamilyOf() == FamilySys {
			e.app.RecvSyscommand(opcode)
		} else {
			e.app.RecvComplete(opcode)
		}
		e.store.Set(opcode, flagValueOf(tid))
		return HeaderSize, nil
	}

	e.codec.FormatHeader(buf, OpFAck, e.cur.lastReceivedFrameID, 0)
	return HeaderSize, nil
}
