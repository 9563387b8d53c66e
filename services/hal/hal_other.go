//go:build !linux && !(rp2040 || rp2350)

package hal

import "rtcclock-go/services/hal/internal/platform"

func openNative(Options) (*platform.Platform, error) { return nil, ErrPlatform }
