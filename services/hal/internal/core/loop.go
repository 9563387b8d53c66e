package core

import (
	"context"

	"rtcclock-go/bus"
	"rtcclock-go/errcode"
	"rtcclock-go/types"
	"rtcclock-go/x/timex"
	"rtcclock-go/x/util"
)

const (
	eventQueueLen = 16
	pollQueueLen  = 4
)

// HAL-level verbs accepted on every capability.
const (
	VerbPollStart = "poll_start"
	VerbPollStop  = "poll_stop"
	VerbRead      = "read"
)

type HAL struct {
	conn *bus.Connection
	res  Resources

	// Device registry
	dev map[string]Device // devID -> device

	// Capability index: address -> devID
	capIndex map[CapAddr]string

	poller *Poller
	pollCh chan PollReq

	// Single-threaded publication of device events
	evCh chan Event
}

func NewHAL(conn *bus.Connection, reg ResourceRegistry) *HAL {
	h := &HAL{
		conn:     conn,
		res:      Resources{Reg: reg},
		dev:      map[string]Device{},
		capIndex: map[CapAddr]string{},
		pollCh:   make(chan PollReq, pollQueueLen),
		evCh:     make(chan Event, eventQueueLen),
	}
	h.poller = NewPoller(h.pollCh)
	// HAL provides the emitter to devices.
	h.res.Pub = h
	return h
}

func (h *HAL) Run(ctx context.Context) {
	cfgSub := h.conn.Subscribe(topicConfigHAL())
	ctrlSub := h.conn.Subscribe(ctrlWildcard())
	defer h.conn.Unsubscribe(cfgSub)
	defer h.conn.Unsubscribe(ctrlSub)
	defer h.closeDevices()

	go h.poller.Run(ctx)

	h.pubHALState("idle", "awaiting_config")
	ready := false
	for {
		select {
		case <-ctx.Done():
			h.pubHALState("stopped", "context_cancelled")
			return
		case msg := <-cfgSub.Channel():
			cfg, err := util.Decode[types.HALConfig](msg.Payload)
			if err != nil {
				println("[hal] bad config:", err.Error())
				h.pubHALState("idle", string(errcode.InvalidPayload))
				continue
			}
			// applyConfig is additive/idempotent for existing devices.
			h.applyConfig(ctx, cfg)
			if !ready {
				ready = true
				h.pubHALState("ready", "")
			}
		case m := <-ctrlSub.Channel():
			if !ready {
				// Reject controls until HAL has a configuration.
				h.replyErr(m, errcode.HALNotReady)
				continue
			}
			h.handleControl(m)
		case pr := <-h.pollCh:
			h.dispatch(ControlRequest{Addr: pr.Addr, Verb: pr.Verb})
		case ev := <-h.evCh:
			// All device→HAL telemetry is published from this goroutine.
			h.handleEvent(ev)
		}
	}
}

func (h *HAL) applyConfig(ctx context.Context, cfg types.HALConfig) {
	for i := range cfg.Devices {
		dc := cfg.Devices[i]
		if _, exists := h.dev[dc.ID]; exists {
			continue
		}
		b, ok := lookupBuilder(dc.Type)
		if !ok {
			println("[hal] no builder for type:", dc.Type, "id:", dc.ID)
			continue
		}
		dev, err := b.Build(ctx, BuilderInput{
			ID:     dc.ID,
			Type:   dc.Type,
			Params: dc.Params,
			Res:    h.res,
		})
		if err != nil {
			println("[hal] build failed for:", dc.ID, "err:", err.Error())
			continue
		}
		if err := dev.Init(ctx); err != nil {
			println("[hal] init failed for:", dc.ID, "err:", err.Error())
			_ = dev.Close()
			continue
		}
		h.dev[dev.ID()] = dev

		// Register capabilities, publish retained info + initial status:down
		for _, cs := range dev.Capabilities() {
			a := CapAddr{Domain: cs.Domain, Kind: cs.Kind, Name: cs.Name}
			if a.Domain == "" {
				a.Domain = defaultDomainFor(cs.Kind)
			}
			if a.Name == "" {
				a.Name = dev.ID()
			}
			h.capIndex[a] = dev.ID()

			h.conn.Publish(h.conn.NewMessage(capInfo(a), cs.Info, true))
			h.conn.Publish(h.conn.NewMessage(
				capStatus(a),
				types.CapabilityStatus{Link: types.LinkDown, TSms: timex.NowMs()},
				true,
			))
		}
	}

	for _, ps := range cfg.Pollers {
		verb := ps.Verb
		if verb == "" {
			verb = VerbRead
		}
		a := CapAddr{Domain: ps.Domain, Kind: ps.Kind, Name: ps.Name}
		if a.Domain == "" {
			a.Domain = defaultDomainFor(ps.Kind)
		}
		if _, ok := h.capIndex[a]; !ok {
			println("[hal] poller for unknown capability:", a.Name)
			continue
		}
		h.poller.Upsert(a, verb, timex.Ms(int(ps.IntervalMs)), timex.Ms(int(ps.JitterMs)))
	}
}

func (h *HAL) handleControl(msg *bus.Message) {
	// hal/cap/<domain>/<kind>/<name>/control/<verb>
	if msg.Topic.Len() != 7 {
		h.replyErr(msg, errcode.InvalidTopic)
		return
	}
	domain, ok1 := msg.Topic.At(2).(string)
	kind, ok2 := msg.Topic.At(3).(string)
	name, ok3 := msg.Topic.At(4).(string)
	verb, ok4 := msg.Topic.At(6).(string)
	if !(ok1 && ok2 && ok3 && ok4) {
		h.replyErr(msg, errcode.InvalidTopic)
		return
	}
	a := CapAddr{Domain: domain, Kind: types.Kind(kind), Name: name}
	if _, ok := h.capIndex[a]; !ok {
		h.replyErr(msg, errcode.UnknownCapability)
		return
	}

	switch verb {
	case VerbPollStart:
		ps, err := util.Decode[types.PollStart](msg.Payload)
		if err != nil || ps.IntervalMs == 0 {
			h.replyErr(msg, errcode.InvalidParams)
			return
		}
		pv := ps.Verb
		if pv == "" {
			pv = VerbRead
		}
		h.poller.Upsert(a, pv, timex.Ms(int(ps.IntervalMs)), timex.Ms(int(ps.JitterMs)))
		println("[hal] poll", a.Name, pv, "every", h.poller.Every(a, pv).String())
		h.replyOK(msg, nil)
		return
	case VerbPollStop:
		ps, err := util.Decode[types.PollStop](msg.Payload)
		if err != nil {
			h.replyErr(msg, errcode.InvalidParams)
			return
		}
		pv := ps.Verb
		if pv == "" {
			pv = VerbRead
		}
		h.poller.Stop(a, pv)
		h.replyOK(msg, nil)
		return
	}

	h.dispatch(ControlRequest{Addr: a, Verb: verb, Payload: msg.Payload, Req: msg})
}

// dispatch routes a request to its device and answers anything not deferred.
func (h *HAL) dispatch(req ControlRequest) {
	ownerID, ok := h.capIndex[req.Addr]
	dev := h.dev[ownerID]
	if !ok || dev == nil {
		h.replyErr(req.Req, errcode.UnknownCapability)
		return
	}

	res, err := dev.Control(req)
	switch {
	case err != nil:
		h.replyErr(req.Req, errcode.Of(err))
	case res.Deferred:
	case res.OK:
		h.replyOK(req.Req, res.Payload)
	default:
		code := res.Error
		if code == "" {
			code = errcode.Busy
		}
		if req.Req == nil {
			println("[hal] poll", req.Verb, "on", req.Addr.Name, "rejected:", string(code))
		}
		h.replyErr(req.Req, code)
	}
}

func (h *HAL) handleEvent(ev Event) {
	a := ev.Addr
	ts := ev.TSms
	if ts == 0 {
		ts = timex.NowMs()
	}

	if ev.ReplyOnly {
		if ev.Err != "" {
			h.replyErr(ev.Req, ev.Err)
		} else {
			h.replyOK(ev.Req, ev.Payload)
		}
		return
	}

	// 1) Error → retained status:degraded; no value/event published.
	if ev.Err != "" {
		h.conn.Publish(h.conn.NewMessage(
			capStatus(a),
			types.CapabilityStatus{Link: types.LinkDegraded, TSms: ts, Error: string(ev.Err)},
			true,
		))
		h.replyErr(ev.Req, ev.Err)
		return
	}

	// 2) Success: event vs value
	if ev.IsEvent {
		h.conn.Publish(h.conn.NewMessage(capEvent(a), ev.Payload, false))
	} else {
		h.conn.Publish(h.conn.NewMessage(capValue(a), ev.Payload, true))
	}
	h.conn.Publish(h.conn.NewMessage(
		capStatus(a),
		types.CapabilityStatus{Link: types.LinkUp, TSms: ts},
		true,
	))
	h.replyOK(ev.Req, ev.Payload)
}

func (h *HAL) pubHALState(level, status string) {
	h.conn.Publish(h.conn.NewMessage(
		topicHALState(),
		types.HALState{Level: level, Status: status, TSms: timex.NowMs()},
		true,
	))
}

func (h *HAL) closeDevices() {
	for id, d := range h.dev {
		if err := d.Close(); err != nil {
			println("[hal] close failed for:", id, "err:", err.Error())
		}
	}
}

func defaultDomainFor(kind types.Kind) string {
	switch kind {
	case types.KindRTC:
		return "time"
	default:
		return "io"
	}
}

// ---- HAL as EventEmitter (enqueue to single publisher) ----

func (h *HAL) Emit(ev Event) bool {
	select {
	case h.evCh <- ev:
		return true
	default:
		return false
	}
}

// WaitReady blocks until hal/state reports ready or ctx ends. It is used by
// entry points that must not issue controls before the HAL is configured.
func WaitReady(ctx context.Context, conn *bus.Connection) error {
	sub := conn.Subscribe(topicHALState())
	defer conn.Unsubscribe(sub)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m := <-sub.Channel():
			if st, ok := m.Payload.(types.HALState); ok && st.Level == "ready" {
				return nil
			}
		}
	}
}
