package render

import (
	"io"

	"recvoffer/internal/domain"

	"github.com/pion/rtp"
)

// fakeTrack replays a fixed set of packets, then reports io.EOF.
type fakeTrack struct {
	id       string
	streamID string
	kind     string
	codec    domain.Codec
	packets  chan *rtp.Packet
}

func newFakeTrack(id, streamID, kind, mime string, payloads ...[]byte) *fakeTrack {
	return newFakeCodecTrack(id, streamID, kind, domain.Codec{MimeType: mime, ClockRate: 90000}, false, payloads...)
}

// newFakeCodecTrack is newFakeTrack with an explicit codec. With marker set,
// every packet closes a frame.
func newFakeCodecTrack(id, streamID, kind string, codec domain.Codec, marker bool, payloads ...[]byte) *fakeTrack {
	t := &fakeTrack{
		id:       id,
		streamID: streamID,
		kind:     kind,
		codec:    codec,
		packets:  make(chan *rtp.Packet, len(payloads)),
	}
	for i, p := range payloads {
		t.packets <- &rtp.Packet{
			Header: rtp.Header{
				Version:        2,
				Marker:         marker,
				SequenceNumber: uint16(100 + i),
				Timestamp:      3000 + uint32(i)*960,
				SSRC:           1,
			},
			Payload: p,
		}
	}
	close(t.packets)
	return t
}

func (t *fakeTrack) ID() string          { return t.id }
func (t *fakeTrack) StreamID() string    { return t.streamID }
func (t *fakeTrack) Kind() string        { return t.kind }
func (t *fakeTrack) Codec() domain.Codec { return t.codec }

func (t *fakeTrack) ReadRTP() (*rtp.Packet, error) {
	pkt, ok := <-t.packets
	if !ok {
		return nil, io.EOF
	}
	return pkt, nil
}
