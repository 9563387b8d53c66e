package config

import (
	"context"
	"errors"
	"testing"
	"time"

	"rtcclock-go/bus"
	"rtcclock-go/types"
	"rtcclock-go/x/util"
)

func withLookup(t *testing.T, doc string) {
	old := EmbeddedConfigLookup
	EmbeddedConfigLookup = func(device string) ([]byte, bool) {
		if device != "pico" {
			return nil, false
		}
		return []byte(doc), true
	}
	t.Cleanup(func() { EmbeddedConfigLookup = old })
}

func TestPublishEmbeddedRetainedPerKey(t *testing.T) {
	withLookup(t, `{"mode": "dev", "debug": true, "region": {"code": "eu"}}`)

	b := bus.NewBus(16)
	conn := b.NewConnection("test-config")
	if err := NewConfigService().Publish(WithDevice(context.Background(), "pico"), conn); err != nil {
		t.Fatal(err)
	}

	sub := conn.Subscribe(bus.T(configPrefix, bus.MultiLevel))
	got := map[string]any{}
	deadline := time.After(500 * time.Millisecond)
	for len(got) < 3 {
		select {
		case m := <-sub.Channel():
			if !m.Retained {
				t.Fatalf("%v not retained", m.Topic)
			}
			key, _ := m.Topic.At(1).(string)
			got[key] = m.Payload
		case <-deadline:
			t.Fatalf("got %d messages: %v", len(got), got)
		}
	}
	if got["mode"] != "dev" || got["debug"] != true {
		t.Fatalf("scalars: %#v", got)
	}
	region, ok := got["region"].(map[string]any)
	if !ok || region["code"] != "eu" {
		t.Fatalf("region = %#v", got["region"])
	}
}

func TestPublishErrors(t *testing.T) {
	withLookup(t, `[1, 2]`)
	conn := bus.NewBus(4).NewConnection("test")
	svc := NewConfigService()

	if err := svc.Publish(context.Background(), conn); !errors.Is(err, ErrNoDevice) {
		t.Fatalf("no device: %v", err)
	}
	if err := svc.Publish(WithDevice(context.Background(), "other"), conn); !errors.Is(err, ErrNoConfig) {
		t.Fatalf("unknown device: %v", err)
	}
	if err := svc.Publish(WithDevice(context.Background(), "pico"), conn); !errors.Is(err, ErrNotObject) {
		t.Fatalf("array doc: %v", err)
	}
}

// The embedded documents must decode into the types their consumers use.
func TestEmbeddedConfigsDecode(t *testing.T) {
	for device := range embeddedConfigs {
		t.Run(device, func(t *testing.T) {
			b := bus.NewBus(16)
			conn := b.NewConnection("test")
			if err := NewConfigService().Publish(WithDevice(context.Background(), device), conn); err != nil {
				t.Fatal(err)
			}
			sub := conn.Subscribe(bus.T(configPrefix, "hal"))
			m := <-sub.Channel()
			cfg, err := util.Decode[types.HALConfig](m.Payload)
			if err != nil {
				t.Fatal(err)
			}
			if len(cfg.Devices) != 1 || cfg.Devices[0].Type != "ds1307" {
				t.Fatalf("devices = %+v", cfg.Devices)
			}
			p, err := util.Decode[types.DS1307Params](cfg.Devices[0].Params)
			if err != nil || p.Bus != "i2c0" {
				t.Fatalf("params = %+v, %v", p, err)
			}
			if len(cfg.Pollers) != 1 || cfg.Pollers[0].IntervalMs != 1000 {
				t.Fatalf("pollers = %+v", cfg.Pollers)
			}
		})
	}
}
