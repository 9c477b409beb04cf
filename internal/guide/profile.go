package guide

// Rendition is one rung of the delivery ladder.
type Rendition struct {
	Bitrate    int    // kbit/s
	Codec      string
	Resolution string
}

// Profile is the fixed bitrate/codec ladder attached to every channel.
// It is static configuration data, not runtime state.
type Profile []Rendition

// DefaultProfile is the ladder applied to all channels.
var DefaultProfile = Profile{
	{Bitrate: 4500, Codec: "avc1.640028", Resolution: "1920x1080"},
	{Bitrate: 3000, Codec: "avc1.64001f", Resolution: "1280x720"},
	{Bitrate: 1600, Codec: "avc1.64001e", Resolution: "960x540"},
	{Bitrate: 800, Codec: "avc1.4d401e", Resolution: "640x360"},
}
