package viewer

// Channel selects which part of the pixel the renderer shows.
type Channel int

const (
	ChannelRGB Channel = iota
	ChannelRed
	ChannelGreen
	ChannelBlue
	ChannelLuminance
)

var channelNames = []string{"RGB", "Red", "Green", "Blue", "Luminance"}

func (c Channel) String() string {
	if c < 0 || int(c) >= len(channelNames) {
		return "Unknown"
	}
	return channelNames[c]
}

// Channels lists every Channel in menu order.
func Channels() []Channel {
	return []Channel{ChannelRGB, ChannelRed, ChannelGreen, ChannelBlue, ChannelLuminance}
}

// ParseChannel matches a Channel name case-sensitively.
func ParseChannel(s string) (Channel, bool) {
	for i, n := range channelNames {
		if n == s {
			return Channel(i), true
		}
	}
	return ChannelRGB, false
}

// BlendMode combines the current image with the reference image.
type BlendMode int

const (
	BlendNormal BlendMode = iota
	BlendMultiply
	BlendDivide
	BlendAdd
	BlendAverage
	BlendSubtract
	BlendDifference
	BlendRelativeDifference
)

var blendNames = []string{
	"Normal", "Multiply", "Divide", "Add", "Average", "Subtract", "Difference", "Relative difference",
}

func (b BlendMode) String() string {
	if b < 0 || int(b) >= len(blendNames) {
		return "Unknown"
	}
	return blendNames[b]
}

// BlendModes lists every BlendMode in menu order.
func BlendModes() []BlendMode {
	out := make([]BlendMode, len(blendNames))
	for i := range out {
		out[i] = BlendMode(i)
	}
	return out
}

// ParseBlendMode matches a BlendMode name.
func ParseBlendMode(s string) (BlendMode, bool) {
	for i, n := range blendNames {
		if n == s {
			return BlendMode(i), true
		}
	}
	return BlendNormal, false
}
