// Package network brings up the wireless link and keeps it up.
package network

import (
	"context"
	"time"

	"tinygo.org/x/drivers/netlink"

	"rtcclock-go/bus"
	"rtcclock-go/errcode"
	"rtcclock-go/types"
	"rtcclock-go/x/mathx"
	"rtcclock-go/x/timex"
	"rtcclock-go/x/util"
)

const (
	defaultBackoff    = time.Second
	defaultMaxBackoff = 30 * time.Second
)

var (
	topicConfigNetwork = bus.T("config", "network")
	topicNetState      = bus.T("net", "state")
)

func StateTopic() bus.Topic { return topicNetState }

type Service struct {
	link   netlink.Netlinker
	events chan netlink.Event

	cfg      types.NetworkConfig
	haveCfg  bool
	attempts int
	backoff  time.Duration
	up       bool
}

// New returns a service driving link. A nil link reports failed with
// errcode.Unsupported and exits.
func New(link netlink.Netlinker) *Service {
	return &Service{link: link, events: make(chan netlink.Event, 4)}
}

func (s *Service) Start(ctx context.Context, conn *bus.Connection) {
	go s.Run(ctx, conn)
}

func (s *Service) Run(ctx context.Context, conn *bus.Connection) {
	if s.link == nil {
		s.publish(conn, types.NetFailed, string(errcode.Unsupported))
		return
	}
	s.link.NetNotify(func(ev netlink.Event) {
		// Called from the driver; never block it.
		select {
		case s.events <- ev:
		default:
		}
	})

	cfgSub := conn.Subscribe(topicConfigNetwork)
	defer conn.Unsubscribe(cfgSub)

	retry := time.NewTimer(time.Hour)
	retry.Stop()
	defer retry.Stop()

	s.publish(conn, types.NetIdle, "")
	for {
		select {
		case <-ctx.Done():
			if s.up {
				s.link.NetDisconnect()
			}
			println("[net] stopping")
			return

		case m := <-cfgSub.Channel():
			cfg, err := util.Decode[types.NetworkConfig](m.Payload)
			if err != nil || cfg.SSID == "" {
				println("[net] bad config")
				s.publish(conn, types.NetFailed, string(errcode.InvalidParams))
				continue
			}
			if s.up {
				s.link.NetDisconnect()
				s.up = false
			}
			s.cfg, s.haveCfg = cfg, true
			s.attempts, s.backoff = 0, 0
			s.bringUp(ctx, conn, retry)

		case <-retry.C:
			s.bringUp(ctx, conn, retry)

		case ev := <-s.events:
			switch ev {
			case netlink.EventNetUp:
				if !s.up {
					s.up = true
					s.publish(conn, types.NetUp, "")
				}
			case netlink.EventNetDown:
				if !s.haveCfg {
					continue
				}
				println("[net] link down, reconnecting")
				s.up = false
				s.attempts, s.backoff = 0, 0
				s.publish(conn, types.NetDown, "")
				util.ResetTimer(retry, 0)
			}
		}
	}
}

// bringUp makes one connect attempt and arms retry on failure.
func (s *Service) bringUp(ctx context.Context, conn *bus.Connection, retry *time.Timer) {
	if s.up || ctx.Err() != nil {
		return
	}
	s.attempts++
	s.publish(conn, types.NetConnecting, "")

	err := s.link.NetConnect(&netlink.ConnectParams{
		ConnectMode:    netlink.ConnectModeSTA,
		Ssid:           s.cfg.SSID,
		Passphrase:     s.cfg.Passphrase,
		Country:        s.cfg.Country,
		Retries:        s.cfg.Retries,
		ConnectTimeout: timex.Ms(s.cfg.ConnectTimeoutMs),
	})
	if err == nil {
		s.up = true
		s.publish(conn, types.NetUp, "")
		return
	}

	println("[net] connect attempt", s.attempts, "failed:", err.Error())
	if s.cfg.MaxAttempts > 0 && s.attempts >= s.cfg.MaxAttempts {
		s.publish(conn, types.NetFailed, errCode(err))
		return
	}
	s.backoff = nextBackoff(s.backoff, s.cfg)
	s.publish(conn, types.NetDown, errCode(err))
	util.ResetTimer(retry, s.backoff)
}

func nextBackoff(prev time.Duration, cfg types.NetworkConfig) time.Duration {
	lo := mathx.OrDefault(timex.Ms(cfg.BackoffMs), defaultBackoff)
	hi := mathx.OrDefault(timex.Ms(cfg.MaxBackoffMs), defaultMaxBackoff)
	if prev == 0 {
		return mathx.Clamp(lo, 0, hi)
	}
	return mathx.Clamp(2*prev, lo, hi)
}

// errCode maps driver errors to stable short codes.
func errCode(err error) string {
	switch err {
	case netlink.ErrConnectTimeout:
		return string(errcode.Timeout)
	case netlink.ErrAuthFailure, netlink.ErrShortPassphrase, netlink.ErrMissingSSID:
		return string(errcode.InvalidParams)
	case netlink.ErrNotSupported, netlink.ErrAuthTypeNoGood, netlink.ErrConnectModeNoGood:
		return string(errcode.Unsupported)
	}
	return string(errcode.ConnectFail)
}

func (s *Service) publish(conn *bus.Connection, level types.NetLevel, code string) {
	st := types.NetState{Level: level, SSID: s.cfg.SSID, Attempts: s.attempts, Error: code, TSms: timex.NowMs()}
	if level == types.NetUp {
		if hw, err := s.link.GetHardwareAddr(); err == nil {
			st.HWAddr = hw.String()
		}
	}
	conn.Publish(conn.NewMessage(topicNetState, st, true))
}
