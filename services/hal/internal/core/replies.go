package core

import (
	"rtcclock-go/bus"
	"rtcclock-go/errcode"
	"rtcclock-go/types"
)

func (h *HAL) replyOK(m *bus.Message, payload any) {
	if !m.CanReply() {
		return
	}
	if payload == nil {
		payload = types.OKReply{OK: true}
	}
	h.conn.Reply(m, payload, false)
}

func (h *HAL) replyErr(m *bus.Message, code errcode.Code) {
	if !m.CanReply() {
		return
	}
	if code == "" || code == errcode.OK {
		code = errcode.Error
	}
	h.conn.Reply(m, types.ErrorReply{OK: false, Error: string(code)}, false)
}
