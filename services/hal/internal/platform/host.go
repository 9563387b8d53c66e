//go:build !linux && !(rp2040 || rp2350)

package platform

import "time"

// Hosts without an I²C stack run against the simulated clock.
func Default() (*Platform, error) { return Sim(time.Now().UTC()), nil }
