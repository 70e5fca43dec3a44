package msp

// State is one of the five protocol states the transaction engine can be
// in. Exactly one is current between top-level calls to OnRecv/OnSend.
type State int

const (
	// Ready means no transaction is in progress.
	Ready State = iota

	// ObcSendRx means an OBC->Experiment transaction is being received and
	// is not a duplicate of an already-acknowledged one.
	ObcSendRx

	// ObcSendRxDuplicate means the transaction currently being received
	// has already been acknowledged once; its data frames are discarded
	// and only a T_ACK will be emitted.
	ObcSendRxDuplicate

	// ObcReqResponse means an OBC request arrived and the engine has yet
	// to emit the EXP_SEND header announcing the response length.
	ObcReqResponse

	// ObcReqTx means the engine is emitting data frames in response to an
	// OBC request.
	ObcReqTx
)

func (s State) String() string {
	switch s {
	case Ready:
		return "READY"
	case ObcSendRx:
		return "OBC_SEND_RX"
	case ObcSendRxDuplicate:
		return "OBC_SEND_RX_DUPLICATE"
	case ObcReqResponse:
		return "OBC_REQ_RESPONSE"
	case ObcReqTx:
		return "OBC_REQ_TX"
	default:
		return "UNKNOWN"
	}
}

// txn holds the mutable bookkeeping of whatever transaction is current. Its
// fields are only meaningful in the states that use them; engine.go is
// responsible for resetting what matters on each transition.
type txn struct {
	opcode              Opcode
	transactionID       byte
	frameID             byte
	lastReceivedFrameID byte
	totalLength         uint32
	processedLength     uint32
	prevDataLength      uint32
}
