package render

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/pion/rtp"
	pion "github.com/pion/webrtc/v4"
	"github.com/pion/webrtc/v4/pkg/media/ivfwriter"
	"github.com/pion/webrtc/v4/pkg/media/oggwriter"

	"recvoffer/internal/domain"
)

// mediaWriter persists RTP packets of one track.
type mediaWriter interface {
	WriteRTP(pkt *rtp.Packet) error
	Close() error
}

// extensionFor returns the file extension used for the codec's container.
func extensionFor(codec domain.Codec) string {
	switch strings.ToLower(codec.MimeType) {
	case strings.ToLower(pion.MimeTypeVP8), strings.ToLower(pion.MimeTypeAV1):
		return "ivf"
	case strings.ToLower(pion.MimeTypeOpus):
		return "ogg"
	case strings.ToLower(pion.MimeTypeH264):
		return "h264"
	default:
		return "rtp"
	}
}

// newMediaWriter picks a container for the codec and takes ownership of out.
func newMediaWriter(codec domain.Codec, out io.WriteCloser) (mediaWriter, error) {
	switch extensionFor(codec) {
	case "ivf":
		var opts []ivfwriter.Option
		if strings.EqualFold(codec.MimeType, pion.MimeTypeAV1) {
			opts = append(opts, ivfwriter.WithCodec(pion.MimeTypeAV1))
		}
		w, err := ivfwriter.NewWith(out, opts...)
		if err != nil {
			return nil, fmt.Errorf("create ivf writer: %w", err)
		}
		return w, nil

	case "ogg":
		channels := codec.Channels
		if channels == 0 {
			channels = 2
		}
		w, err := oggwriter.NewWith(out, codec.ClockRate, channels)
		if err != nil {
			return nil, fmt.Errorf("create ogg writer: %w", err)
		}
		return w, nil

	case "h264":
		return &annexBWriter{out: out, depack: NewH264Depacketizer()}, nil

	default:
		return &rtpDumpWriter{out: out}, nil
	}
}

var startCode = []byte{0x00, 0x00, 0x00, 0x01}

// annexBWriter writes H264 as a raw Annex-B elementary stream.
type annexBWriter struct {
	out    io.WriteCloser
	depack *H264Depacketizer
}

func (w *annexBWriter) WriteRTP(pkt *rtp.Packet) error {
	for _, nalu := range w.depack.Depacketize(pkt.SequenceNumber, pkt.Payload) {
		if len(nalu) == 0 {
			continue
		}
		if _, err := w.out.Write(startCode); err != nil {
			return err
		}
		if _, err := w.out.Write(nalu); err != nil {
			return err
		}
	}
	return nil
}

func (w *annexBWriter) Close() error { return w.out.Close() }

// rtpDumpWriter stores each packet as a 2-byte big-endian length followed
// by the marshalled RTP packet.
type rtpDumpWriter struct {
	out io.WriteCloser
}

func (w *rtpDumpWriter) WriteRTP(pkt *rtp.Packet) error {
	raw, err := pkt.Marshal()
	if err != nil {
		return fmt.Errorf("marshal rtp: %w", err)
	}
	if len(raw) > math.MaxUint16 {
		return fmt.Errorf("rtp packet of %d bytes exceeds dump length prefix", len(raw))
	}
	var size [2]byte
	binary.BigEndian.PutUint16(size[:], uint16(len(raw)))
	if _, err := w.out.Write(size[:]); err != nil {
		return err
	}
	_, err = w.out.Write(raw)
	return err
}

func (w *rtpDumpWriter) Close() error { return w.out.Close() }
