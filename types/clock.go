package types

// ---- RTC device params (config/hal) ----

type DS1307Params struct {
	Bus       string `json:"bus"`                  // "i2c0"
	Addr      uint16 `json:"addr,omitempty"`       // default 0x68
	Name      string `json:"name,omitempty"`       // capability name, default device id
	TimeoutMs int    `json:"timeout_ms,omitempty"` // per bus phase, default 1000
	SettleMs  int    `json:"settle_ms,omitempty"`  // default 10
	Retries   int    `json:"retries,omitempty"`    // bus errors only, default 0
}

type RTCInfo struct {
	Bus       string `json:"bus"`
	Addr      uint16 `json:"addr"`
	TimeoutMs int    `json:"timeout_ms"`
	SettleMs  int    `json:"settle_ms"`
	Retries   int    `json:"retries"`
}

// ---- RTC capability payloads ----

// ClockValue is one decoded reading. Hours are 0..23; Year is the full year.
type ClockValue struct {
	Year    int   `json:"year"`
	Month   int   `json:"month"`
	Date    int   `json:"date"`
	Hours   int   `json:"hours"`
	Minutes int   `json:"minutes"`
	Seconds int   `json:"seconds"`
	Day     int   `json:"day"` // day-of-week register, 1..7, Sunday = 1
	Halted  bool  `json:"halted,omitempty"`
	TSms    int64 `json:"ts_ms"`
}

// ClockHaltEvent is published on .../event when the oscillator halt bit
// changes between two readings.
type ClockHaltEvent struct {
	Halted bool `json:"halted"`
}

// ClockSet sets the RTC. Time is RFC 3339; when empty, Unix is used.
type ClockSet struct {
	Time string `json:"time,omitempty"`
	Unix int64  `json:"unix,omitempty"`
}

// ClockSquareWave selects the SQW/OUT rate: off, 1hz, 4khz, 8khz, 32khz.
type ClockSquareWave struct {
	Rate string `json:"rate"`
}

// ---- Clock output service (config/clock) ----

type ClockConfig struct {
	Name        string `json:"name,omitempty"`         // capability name, "+" for any
	ShowHalted  bool   `json:"show_halted,omitempty"`  // append a marker when the oscillator is stopped
	ShowWeekday bool   `json:"show_weekday,omitempty"` // extra "day:" line
}
