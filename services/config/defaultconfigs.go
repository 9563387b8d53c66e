package config

// Embedded configuration per device id. Keys become config/<key> topics.

const cfgPico = `{
  "hal": {
    "devices": [
      {"id": "rtc0", "type": "ds1307", "params": {"bus": "i2c0", "timeout_ms": 1000, "settle_ms": 10}}
    ],
    "pollers": [
      {"domain": "time", "kind": "rtc", "name": "rtc0", "verb": "read", "interval_ms": 1000}
    ]
  },
  "clock": {"name": "rtc0"},
  "network": {
    "ssid": "devicecode",
    "passphrase": "changeme1",
    "country": "XX",
    "connect_timeout_ms": 10000,
    "backoff_ms": 1000,
    "max_backoff_ms": 30000
  }
}`

const cfgHost = `{
  "hal": {
    "devices": [
      {"id": "rtc0", "type": "ds1307", "params": {"bus": "i2c0", "retries": 1}}
    ],
    "pollers": [
      {"domain": "time", "kind": "rtc", "name": "rtc0", "interval_ms": 1000}
    ]
  },
  "clock": {"name": "rtc0", "show_halted": true}
}`

var embeddedConfigs = map[string][]byte{
	"pico": []byte(cfgPico),
	"host": []byte(cfgHost),
}
