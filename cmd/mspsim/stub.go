package main

import (
	"github.com/tstana/cubes-fw-sub000/log"
	"github.com/tstana/cubes-fw-sub000/msp"
)

// echoApp is the trivial Application a bench operator drives by hand: the
// payload of each OBC Send transaction is logged and kept as the staged
// response, and OBC Request transactions are answered from whatever was
// last staged (by a Send transaction or by stageResponse).
type echoApp struct {
	staged []byte
}

func (a *echoApp) SendStart(opcode msp.Opcode, totalLen *uint32) {
	*totalLen = uint32(len(a.staged))
	log.Info("mspsim: SendStart", "opcode", opcode, "totalLen", *totalLen)
}

func (a *echoApp) SendData(opcode msp.Opcode, buf []byte, offset uint32) {
	copy(buf, a.staged[offset:])
}

func (a *echoApp) SendComplete(opcode msp.Opcode) {
	log.Info("mspsim: SendComplete", "opcode", opcode)
}

func (a *echoApp) SendError(opcode msp.Opcode, code msp.Code) {
	log.Warn("mspsim: SendError", "opcode", opcode, "code", code)
}

func (a *echoApp) RecvStart(opcode msp.Opcode, totalLen uint32) {
	a.staged = make([]byte, 0, totalLen)
	log.Info("mspsim: RecvStart", "opcode", opcode, "totalLen", totalLen)
}

func (a *echoApp) RecvData(opcode msp.Opcode, buf []byte, offset uint32) {
	for uint32(len(a.staged)) < offset+uint32(len(buf)) {
		a.staged = append(a.staged, 0)
	}
	copy(a.staged[offset:], buf)
}

func (a *echoApp) RecvComplete(opcode msp.Opcode) {
	log.Info("mspsim: RecvComplete", "opcode", opcode, "bytes", len(a.staged))
}

func (a *echoApp) RecvError(opcode msp.Opcode, code msp.Code) {
	log.Warn("mspsim: RecvError", "opcode", opcode, "code", code)
}

func (a *echoApp) RecvSyscommand(opcode msp.Opcode) {
	log.Info("mspsim: RecvSyscommand", "opcode", opcode)
}

// stageResponse queues bytes to be returned on the next OBC Request
// transaction.
func (a *echoApp) stageResponse(data []byte) { a.staged = data }
