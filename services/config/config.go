package config

import (
	"context"
	"encoding/json"
	"errors"

	"rtcclock-go/bus"
)

const (
	serviceName  = "config"
	configPrefix = "config"
)

type ctxKey string

// CtxDeviceKey is the context key carrying the device id.
const CtxDeviceKey ctxKey = "device"

var (
	ErrNoDevice  = errors.New("config: missing device id in context")
	ErrNoConfig  = errors.New("config: no embedded config for device")
	ErrNotObject = errors.New("config: embedded config is not a JSON object")
)

// EmbeddedConfigLookup allows overriding how configs are resolved.
var EmbeddedConfigLookup = func(device string) ([]byte, bool) {
	b, ok := embeddedConfigs[device]
	return b, ok
}

// WithDevice returns ctx carrying the device id.
func WithDevice(ctx context.Context, device string) context.Context {
	return context.WithValue(ctx, CtxDeviceKey, device)
}

type ConfigService struct {
	Name string
}

func NewConfigService() *ConfigService {
	return &ConfigService{Name: serviceName}
}

// Publish reads the device config and publishes each top-level key as a
// retained config/<key> message. Values are left as decoded JSON; consumers
// decode them into their own types.
func (s *ConfigService) Publish(ctx context.Context, conn *bus.Connection) error {
	device, _ := ctx.Value(CtxDeviceKey).(string)
	if device == "" {
		return ErrNoDevice
	}
	raw, ok := EmbeddedConfigLookup(device)
	if !ok || len(raw) == 0 {
		return ErrNoConfig
	}

	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return errors.Join(ErrNotObject, err)
	}
	for k, v := range m {
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			return err
		}
		conn.Publish(conn.NewMessage(bus.T(configPrefix, k), val, true))
	}
	return nil
}

// Start publishes the config in the background.
func (s *ConfigService) Start(ctx context.Context, conn *bus.Connection) {
	go func() {
		if err := s.Publish(ctx, conn); err != nil {
			println("[config]", err.Error())
		}
	}()
}
