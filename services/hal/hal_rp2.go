//go:build rp2040 || rp2350

package hal

import "rtcclock-go/services/hal/internal/platform"

func openNative(opts Options) (*platform.Platform, error) {
	if opts.Platform != "rp2" {
		return nil, ErrPlatform
	}
	return platform.RP2()
}
