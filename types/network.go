package types

// ---- Network bring-up (config/network) ----

type NetworkConfig struct {
	SSID       string `json:"ssid"`
	Passphrase string `json:"passphrase,omitempty"`
	Country    string `json:"country,omitempty"`

	// Retries is passed to the driver per connect call; 0 = driver default.
	Retries          int `json:"retries,omitempty"`
	ConnectTimeoutMs int `json:"connect_timeout_ms,omitempty"`

	// Backoff between failed bring-ups doubles up to MaxBackoffMs.
	BackoffMs    int `json:"backoff_ms,omitempty"`
	MaxBackoffMs int `json:"max_backoff_ms,omitempty"`
	// MaxAttempts bounds consecutive failed bring-ups; 0 = unbounded.
	MaxAttempts int `json:"max_attempts,omitempty"`
}

type NetLevel string

const (
	NetIdle       NetLevel = "idle"
	NetConnecting NetLevel = "connecting"
	NetUp         NetLevel = "up"
	NetDown       NetLevel = "down"
	NetFailed     NetLevel = "failed"
)

type NetState struct {
	Level    NetLevel `json:"level"`
	SSID     string   `json:"ssid,omitempty"`
	HWAddr   string   `json:"hw_addr,omitempty"`
	Attempts int      `json:"attempts,omitempty"`
	Error    string   `json:"error,omitempty"`
	TSms     int64    `json:"ts_ms"`
}
