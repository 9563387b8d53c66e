//go:build linux && !(rp2040 || rp2350)

package hal

import "rtcclock-go/services/hal/internal/platform"

func openNative(opts Options) (*platform.Platform, error) {
	if opts.Platform != "linux" {
		return nil, ErrPlatform
	}
	return platform.Linux(opts.LinuxBuses)
}
