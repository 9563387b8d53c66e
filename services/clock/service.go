// Package clock prints every RTC reading published by the HAL.
package clock

import (
	"context"
	"io"

	"rtcclock-go/bus"
	"rtcclock-go/services/hal"
	"rtcclock-go/types"
	"rtcclock-go/x/util"
)

var topicConfigClock = bus.T("config", "clock")

type Service struct {
	out  io.Writer
	opts types.ClockConfig
	buf  []byte
}

func New(out io.Writer) *Service {
	return &Service{out: out, buf: make([]byte, 0, 64)}
}

// Start runs the service until ctx ends.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) {
	go s.Run(ctx, conn)
}

func (s *Service) Run(ctx context.Context, conn *bus.Connection) {
	cfgSub := conn.Subscribe(topicConfigClock)
	defer conn.Unsubscribe(cfgSub)

	name := bus.SingleLevel
	valSub, stSub := s.subscribe(conn, name)
	defer func() {
		conn.Unsubscribe(valSub)
		conn.Unsubscribe(stSub)
	}()

	for {
		select {
		case <-ctx.Done():
			println("[clock] stopping")
			return
		case m := <-cfgSub.Channel():
			cfg, err := util.Decode[types.ClockConfig](m.Payload)
			if err != nil {
				println("[clock] bad config:", err.Error())
				continue
			}
			s.opts = cfg
			if want := orAny(cfg.Name); want != name {
				conn.Unsubscribe(valSub)
				conn.Unsubscribe(stSub)
				name = want
				valSub, stSub = s.subscribe(conn, name)
			}
		case m, ok := <-valSub.Channel():
			if ok {
				s.handleValue(m)
			}
		case m, ok := <-stSub.Channel():
			if ok {
				s.handleStatus(m)
			}
		}
	}
}

func (s *Service) subscribe(conn *bus.Connection, name string) (*bus.Subscription, *bus.Subscription) {
	return conn.Subscribe(hal.ValueTopic("time", types.KindRTC, name)),
		conn.Subscribe(hal.StatusTopic("time", types.KindRTC, name))
}

func (s *Service) handleValue(m *bus.Message) {
	v, err := util.Decode[types.ClockValue](m.Payload)
	if err != nil {
		println("[clock] bad value:", err.Error())
		return
	}
	out, err := AppendLines(s.buf[:0], v, s.opts)
	if err != nil {
		// An hour outside 0..23 means the chip returned garbage that still
		// decoded as BCD.
		println("[clock] unprintable value:", err.Error())
		return
	}
	s.write(out)
}

func (s *Service) handleStatus(m *bus.Message) {
	st, err := util.Decode[types.CapabilityStatus](m.Payload)
	if err != nil {
		return
	}
	if st.Link != types.LinkDegraded {
		return
	}
	// One line per failed cycle; the next poll runs regardless.
	name, _ := m.Topic.At(4).(string)
	s.write(AppendError(s.buf[:0], name, st))
}

func (s *Service) write(b []byte) {
	if _, err := s.out.Write(b); err != nil {
		println("[clock] write:", err.Error())
	}
	s.buf = b[:0]
}

func orAny(name string) string {
	if name == "" {
		return bus.SingleLevel
	}
	return name
}
