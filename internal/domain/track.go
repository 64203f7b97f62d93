package domain

import "github.com/pion/rtp"

// Codec describes the negotiated codec of a remote track.
type Codec struct {
	MimeType  string
	ClockRate uint32
	Channels  uint16
}

// RemoteTrack is an inbound media track delivered by the peer connection.
type RemoteTrack interface {
	ID() string
	StreamID() string
	Kind() string
	Codec() Codec
	ReadRTP() (*rtp.Packet, error)
}
