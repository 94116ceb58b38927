package sim

import (
	"fmt"
	"time"

	"github.com/mosaicnetworks/regka/src/net"
)

// LinkQuality names a channel preset.
type LinkQuality string

// Link quality presets, from a short line-of-sight link to the edge of radio
// range.
const (
	High     LinkQuality = "high"
	Medium   LinkQuality = "medium"
	Low      LinkQuality = "low"
	VeryPoor LinkQuality = "very_poor"
)

// LinkQualities lists the presets from best to worst.
var LinkQualities = []LinkQuality{High, Medium, Low, VeryPoor}

// ParseLinkQuality ...
func ParseLinkQuality(s string) (LinkQuality, error) {
	for _, q := range LinkQualities {
		if string(q) == s {
			return q, nil
		}
	}
	return "", fmt.Errorf("unknown link quality %q (high, medium, low, very_poor)", s)
}

// Channel returns the channel model of the preset.
func (q LinkQuality) Channel() net.ChannelModel {
	switch q {
	case High:
		return net.ChannelModel{Latency: time.Millisecond, Jitter: time.Millisecond, LossRate: 0.01}
	case Low:
		return net.ChannelModel{Latency: 5 * time.Millisecond, Jitter: 5 * time.Millisecond, LossRate: 0.15}
	case VeryPoor:
		return net.ChannelModel{Latency: 10 * time.Millisecond, Jitter: 10 * time.Millisecond, LossRate: 0.3}
	default:
		return net.ChannelModel{Latency: 2 * time.Millisecond, Jitter: 3 * time.Millisecond, LossRate: 0.05}
	}
}
