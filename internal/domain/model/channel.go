package model

import "fmt"

// Channel selects which per-cell statistic an aggregation reads.
type Channel int

const (
	ChannelAttempts Channel = iota
	ChannelMakes
	ChannelPoints
	ChannelMisses
)

// remoteIndex maps channels to the backend tensor's channel axis. The
// backend carries two extra channels (efg weights at 3, frequency at 5)
// that the public enum does not expose, which is why misses is 4.
var remoteIndex = map[Channel]int{
	ChannelAttempts: 0,
	ChannelMakes:    1,
	ChannelPoints:   2,
	ChannelMisses:   4,
}

var channelNames = map[Channel]string{
	ChannelAttempts: "attempts",
	ChannelMakes:    "makes",
	ChannelPoints:   "points",
	ChannelMisses:   "misses",
}

// RemoteIndex returns the backend channel axis index for c.
func (c Channel) RemoteIndex() int { return remoteIndex[c] }

func (c Channel) String() string {
	if n, ok := channelNames[c]; ok {
		return n
	}
	return fmt.Sprintf("channel(%d)", int(c))
}

// Valid reports whether c is one of the defined channels.
func (c Channel) Valid() bool {
	_, ok := channelNames[c]
	return ok
}

// ParseChannel parses a channel name as it appears on the API.
func ParseChannel(s string) (Channel, error) {
	for c, n := range channelNames {
		if n == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown channel: %q", s)
}
