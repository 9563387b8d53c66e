// services/hal/devices/ds1307/builder.go
package ds1307dev

import (
	"context"
	"time"

	"rtcclock-go/bus"
	"rtcclock-go/errcode"
	"rtcclock-go/services/hal/internal/core"
	"rtcclock-go/types"
	"rtcclock-go/x/conv"
	"rtcclock-go/x/timex"
	"rtcclock-go/x/util"

	"rtcclock-go/drivers/ds1307"
)

func init() { core.RegisterBuilder("ds1307", builder{}) }

const (
	jobQueueLen = 4

	VerbRead = "read"
	VerbSet  = "set"
	VerbHalt = "halt"
	VerbRun  = "run"
	VerbSQW  = "sqw"
)

type builder struct{}

func (builder) Build(ctx context.Context, in core.BuilderInput) (core.Device, error) {
	p, err := util.Decode[types.DS1307Params](in.Params)
	if err != nil || p.Bus == "" {
		return nil, errcode.InvalidParams
	}
	if p.Addr == 0 {
		p.Addr = ds1307.Address
	}
	if p.Name == "" {
		p.Name = in.ID
	}
	own, err := in.Res.Reg.ClaimI2C(in.ID, p.Bus, p.Addr)
	if err != nil {
		return nil, err
	}
	println("[ds1307]", in.ID, "on", p.Bus, "addr", conv.Hex8(byte(p.Addr)))

	drv := ds1307.New(own, ds1307.Config{
		Address:            p.Addr,
		TransactionTimeout: timex.Ms(p.TimeoutMs),
		SettleDelay:        timex.Ms(p.SettleMs),
		Retries:            p.Retries,
	})
	return &Device{
		id:   in.ID,
		bus:  p.Bus,
		cap:  core.CapAddr{Domain: "time", Kind: types.KindRTC, Name: p.Name},
		drv:  drv,
		pub:  in.Res.Pub,
		reg:  in.Res.Reg,
		jobs: make(chan job, jobQueueLen),
		quit: make(chan struct{}),
	}, nil
}

type jobKind uint8

const (
	jobRead jobKind = iota
	jobSet
	jobRunning
	jobSQW
)

type job struct {
	kind    jobKind
	t       time.Time
	running bool
	sqw     ds1307.SquareWave
	req     *bus.Message
}

type Device struct {
	id  string
	bus string
	cap core.CapAddr

	drv *ds1307.Device
	pub core.EventEmitter
	reg core.ResourceRegistry

	jobs chan job
	quit chan struct{}
	done chan struct{}

	lastHalted *bool // worker goroutine only
}

func (d *Device) ID() string { return d.id }

func (d *Device) Capabilities() []core.CapabilitySpec {
	cfg := d.drv.Config()
	return []core.CapabilitySpec{{
		Domain: d.cap.Domain,
		Kind:   d.cap.Kind,
		Name:   d.cap.Name,
		Info: types.Info{
			SchemaVersion: 1, Driver: "ds1307",
			Detail: types.RTCInfo{
				Bus:       d.bus,
				Addr:      cfg.Address,
				TimeoutMs: int(cfg.TransactionTimeout / time.Millisecond),
				SettleMs:  int(cfg.SettleDelay / time.Millisecond),
				Retries:   cfg.Retries,
			},
		},
	}}
}

// Init starts the device worker; it does not touch the bus.
func (d *Device) Init(ctx context.Context) error {
	d.done = make(chan struct{})
	go d.worker(ctx)
	return nil
}

func (d *Device) Close() error {
	select {
	case <-d.quit:
	default:
		close(d.quit)
	}
	if d.done != nil {
		<-d.done
	}
	if d.reg != nil {
		d.reg.ReleaseI2C(d.id, d.bus, d.drv.Config().Address)
	}
	return nil
}

// Control validates synchronously and queues bus work. Every accepted request
// is answered from the worker through an Event.
func (d *Device) Control(req core.ControlRequest) (core.ControlResult, error) {
	j := job{req: req.Req}
	switch req.Verb {
	case VerbRead:
		j.kind = jobRead
	case VerbSet:
		t, err := parseSet(req.Payload)
		if err != nil {
			return core.ControlResult{}, err
		}
		j.kind, j.t = jobSet, t
	case VerbHalt, VerbRun:
		j.kind, j.running = jobRunning, req.Verb == VerbRun
	case VerbSQW:
		p, err := util.Decode[types.ClockSquareWave](req.Payload)
		if err != nil {
			return core.ControlResult{}, errcode.InvalidPayload
		}
		r, err := ds1307.ParseSquareWave(p.Rate)
		if err != nil {
			return core.ControlResult{}, errcode.InvalidParams
		}
		j.kind, j.sqw = jobSQW, r
	default:
		return core.ControlResult{Error: errcode.Unsupported}, nil
	}

	select {
	case d.jobs <- j:
		return core.ControlResult{OK: true, Deferred: true}, nil
	default:
		return core.ControlResult{Error: errcode.Busy}, nil
	}
}

func parseSet(payload any) (time.Time, error) {
	p, err := util.Decode[types.ClockSet](payload)
	if err != nil {
		return time.Time{}, errcode.InvalidPayload
	}
	var t time.Time
	switch {
	case p.Time != "":
		t, err = time.Parse(time.RFC3339, p.Time)
		if err != nil {
			return time.Time{}, errcode.InvalidParams
		}
	case p.Unix != 0:
		t = time.Unix(p.Unix, 0).UTC()
	default:
		return time.Time{}, errcode.InvalidParams
	}
	if t.Year() < 2000 || t.Year() > 2099 {
		return time.Time{}, errcode.Wrap(errcode.InvalidParams, "ds1307.set", ds1307.ErrYearRange)
	}
	return t, nil
}

func (d *Device) worker(ctx context.Context) {
	defer close(d.done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-d.quit:
			return
		case j := <-d.jobs:
			d.run(j)
		}
	}
}

func (d *Device) run(j job) {
	var err error
	switch j.kind {
	case jobSet:
		err = d.drv.Set(j.t)
	case jobRunning:
		err = d.drv.SetRunning(j.running)
	case jobSQW:
		err = d.drv.SetSquareWave(j.sqw)
		if err == nil {
			d.emit(core.Event{Addr: d.cap, ReplyOnly: true, Req: j.req})
			return
		}
	}
	if err != nil {
		d.emitErr(err, j.req)
		return
	}

	// Every successful operation ends with a fresh reading so subscribers see
	// the effect of set/halt/run immediately.
	s, err := d.drv.Read()
	if err != nil {
		d.emitErr(err, j.req)
		return
	}
	ts := timex.NowMs()
	d.noteHalt(s.Halted, ts)
	d.emit(core.Event{Addr: d.cap, Payload: clockValue(s, ts), TSms: ts, Req: j.req})
}

// noteHalt emits a non-retained event when the oscillator halt bit changes.
func (d *Device) noteHalt(halted bool, ts int64) {
	if d.lastHalted != nil && *d.lastHalted == halted {
		return
	}
	first := d.lastHalted == nil
	d.lastHalted = &halted
	if first && !halted {
		return
	}
	d.emit(core.Event{Addr: d.cap, IsEvent: true, Payload: types.ClockHaltEvent{Halted: halted}, TSms: ts})
}

func (d *Device) emitErr(err error, req *bus.Message) {
	println("[ds1307]", d.id, "error:", err.Error())
	d.emit(core.Event{Addr: d.cap, Err: errcode.Of(err), TSms: timex.NowMs(), Req: req})
}

func (d *Device) emit(ev core.Event) {
	if !d.pub.Emit(ev) {
		println("[ds1307]", d.id, "event dropped")
	}
}

func clockValue(s ds1307.Snapshot, ts int64) types.ClockValue {
	return types.ClockValue{
		Year:    ds1307.Century + int(s.Year),
		Month:   int(s.Month),
		Date:    int(s.Date),
		Hours:   int(s.Hours),
		Minutes: int(s.Minutes),
		Seconds: int(s.Seconds),
		Day:     int(s.Day),
		Halted:  s.Halted,
		TSms:    ts,
	}
}
