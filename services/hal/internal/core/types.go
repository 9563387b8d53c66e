package core

import (
	"context"
	"time"

	"rtcclock-go/bus"
	"rtcclock-go/errcode"
	"rtcclock-go/types"
)

// ---- Capability & device model ----

// CapAddr is the public address hal/cap/<domain>/<kind>/<name>.
type CapAddr struct {
	Domain string
	Kind   types.Kind
	Name   string
}

type CapabilitySpec struct {
	Domain string // empty => defaultDomainFor(Kind)
	Kind   types.Kind
	Name   string // empty => device id
	Info   types.Info
}

// ControlRequest is one control message routed to its owning device.
// Req is nil for internal requests (poller ticks); otherwise a device that
// defers its answer passes Req back in the Event that completes the work.
type ControlRequest struct {
	Addr    CapAddr
	Verb    string
	Payload any
	Req     *bus.Message
}

// ControlResult is the immediate outcome of Control. Deferred means the reply
// will arrive later through an Event carrying the request.
type ControlResult struct {
	OK       bool
	Deferred bool
	Error    errcode.Code
	Payload  any // optional reply payload when OK and not deferred
}

// Device.Control must not block: slow work belongs on the device's own
// goroutine.
type Device interface {
	ID() string
	Capabilities() []CapabilitySpec
	Init(ctx context.Context) error
	Control(req ControlRequest) (ControlResult, error)
	Close() error
}

// ---- HAL-injected resources ----

// I2COwner is a serialised bus handle. It satisfies tinygo drivers.I2C and
// lets a caller bound a single transaction.
type I2COwner interface {
	Tx(addr uint16, w, r []byte) error
	TxTimeout(addr uint16, w, r []byte, timeout time.Duration) error
}

type ResourceRegistry interface {
	ClaimI2C(devID, busID string, addr uint16) (I2COwner, error)
	ReleaseI2C(devID, busID string, addr uint16)
}

type Resources struct {
	Reg ResourceRegistry
	Pub EventEmitter // provided by HAL
}

// Builder input
type BuilderInput struct {
	ID, Type string
	Params   any
	Res      Resources
}

type Builder interface {
	Build(ctx context.Context, in BuilderInput) (Device, error)
}

// ---- Device → HAL telemetry (single shape) ----
// An Event with no Err publishes Payload to .../value (retained) or, when
// IsEvent is set, to .../event. Err publishes only .../status=degraded.
// ReplyOnly suppresses publication and only answers Req.

type Event struct {
	Addr      CapAddr
	Payload   any
	TSms      int64
	Err       errcode.Code
	IsEvent   bool
	ReplyOnly bool
	Req       *bus.Message
}

type EventEmitter interface {
	// Emit must be non-blocking; false indicates a drop under pressure.
	Emit(ev Event) bool
}
