package webrtc

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"recvoffer/internal/domain"

	"github.com/pion/interceptor"
	"github.com/pion/interceptor/pkg/intervalpli"
	"github.com/pion/interceptor/pkg/nack"
	"github.com/pion/interceptor/pkg/report"
	"github.com/pion/logging"
	"github.com/pion/rtp"
	pion "github.com/pion/webrtc/v4"
)

// Peer wraps a Pion PeerConnection that only receives media.
type Peer struct {
	pc *pion.PeerConnection

	closeOnce sync.Once
}

// Settings tunes the pion engine underneath the peer connection.
type Settings struct {
	// LogLevel is one of disabled, error, warn, info, debug, trace. Empty means error.
	LogLevel string
	// UDPPortMin and UDPPortMax restrict ICE host candidates when both are set.
	UDPPortMin uint16
	UDPPortMax uint16
}

// NewPeer creates a PeerConnection with the default codecs and the
// receiver-side interceptors (NACK generation, receiver reports, periodic PLI).
func NewPeer(iceServers []domain.ICEServer, settings Settings) (*Peer, error) {
	se, err := newSettingEngine(settings)
	if err != nil {
		return nil, err
	}

	m := &pion.MediaEngine{}
	if err := m.RegisterDefaultCodecs(); err != nil {
		return nil, fmt.Errorf("register default codecs: %w", err)
	}

	i := &interceptor.Registry{}

	generator, err := nack.NewGeneratorInterceptor()
	if err != nil {
		return nil, fmt.Errorf("create nack generator: %w", err)
	}
	i.Add(generator)

	receiverReports, err := report.NewReceiverInterceptor()
	if err != nil {
		return nil, fmt.Errorf("create receiver report: %w", err)
	}
	i.Add(receiverReports)

	pli, err := intervalpli.NewReceiverInterceptor()
	if err != nil {
		return nil, fmt.Errorf("create interval pli: %w", err)
	}
	i.Add(pli)

	api := pion.NewAPI(
		pion.WithSettingEngine(se),
		pion.WithMediaEngine(m),
		pion.WithInterceptorRegistry(i),
	)

	var servers []pion.ICEServer
	for _, s := range iceServers {
		servers = append(servers, pion.ICEServer{
			URLs:       s.URLs,
			Username:   s.Username,
			Credential: s.Credential,
		})
	}

	pc, err := api.NewPeerConnection(pion.Configuration{
		ICEServers: servers,
	})
	if err != nil {
		return nil, fmt.Errorf("create peer connection: %w", err)
	}

	pc.OnConnectionStateChange(func(state pion.PeerConnectionState) {
		log.Printf("[webrtc] peer connection state: %s", state.String())
	})

	return &Peer{pc: pc}, nil
}

func newSettingEngine(settings Settings) (pion.SettingEngine, error) {
	se := pion.SettingEngine{}

	level, err := parseLogLevel(settings.LogLevel)
	if err != nil {
		return se, err
	}
	lf := logging.NewDefaultLoggerFactory()
	lf.DefaultLogLevel = level
	se.LoggerFactory = lf

	if settings.UDPPortMin != 0 || settings.UDPPortMax != 0 {
		if err := se.SetEphemeralUDPPortRange(settings.UDPPortMin, settings.UDPPortMax); err != nil {
			return se, fmt.Errorf("set ephemeral udp port range: %w", err)
		}
	}

	return se, nil
}

func parseLogLevel(s string) (logging.LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "error":
		return logging.LogLevelError, nil
	case "disabled", "off":
		return logging.LogLevelDisabled, nil
	case "warn", "warning":
		return logging.LogLevelWarn, nil
	case "info":
		return logging.LogLevelInfo, nil
	case "debug":
		return logging.LogLevelDebug, nil
	case "trace":
		return logging.LogLevelTrace, nil
	default:
		return logging.LogLevelDisabled, fmt.Errorf("unknown pion log level %q", s)
	}
}

// AddRecvTransceivers offers to receive one audio and one video track
// without sending any.
func (p *Peer) AddRecvTransceivers() error {
	_, err := p.pc.AddTransceiverFromKind(pion.RTPCodecTypeAudio, pion.RTPTransceiverInit{
		Direction: pion.RTPTransceiverDirectionRecvonly,
	})
	if err != nil {
		return fmt.Errorf("add audio transceiver: %w", err)
	}

	_, err = p.pc.AddTransceiverFromKind(pion.RTPCodecTypeVideo, pion.RTPTransceiverInit{
		Direction: pion.RTPTransceiverDirectionRecvonly,
	})
	if err != nil {
		return fmt.Errorf("add video transceiver: %w", err)
	}

	return nil
}

// SetOnTrack registers fn for every inbound track.
func (p *Peer) SetOnTrack(fn func(track domain.RemoteTrack)) {
	p.pc.OnTrack(func(track *pion.TrackRemote, receiver *pion.RTPReceiver) {
		codec := track.Codec()
		log.Printf("[webrtc] got track: kind=%s codec=%s pt=%d stream=%s", track.Kind(), codec.MimeType, codec.PayloadType, track.StreamID())

		// Drain RTCP so the interceptors keep running.
		go func() {
			buf := make([]byte, 1500)
			for {
				if _, _, err := receiver.Read(buf); err != nil {
					return
				}
			}
		}()

		fn(&remoteTrack{track: track})
	})
}

// SetOnICEConnectionStateChange registers fn for every ICE connection state change.
func (p *Peer) SetOnICEConnectionStateChange(fn func(state string)) {
	p.pc.OnICEConnectionStateChange(func(state pion.ICEConnectionState) {
		log.Printf("[webrtc] ICE connection state: %s", state.String())
		fn(state.String())
	})
}

// SetOnICECandidate registers fn for locally gathered candidates. fn receives
// nil once gathering is complete.
func (p *Peer) SetOnICECandidate(fn func(candidate *string)) {
	p.pc.OnICECandidate(func(c *pion.ICECandidate) {
		if c == nil {
			log.Printf("[webrtc] ICE gathering complete")
			fn(nil)
			return
		}

		candidateStr := c.ToJSON().Candidate
		log.Printf("[webrtc] local ICE candidate: %s", candidateStr)
		fn(&candidateStr)
	})
}

// CreateOffer creates an SDP offer and sets it as the local description,
// which starts ICE gathering.
func (p *Peer) CreateOffer() error {
	offer, err := p.pc.CreateOffer(nil)
	if err != nil {
		return fmt.Errorf("create offer: %w", err)
	}

	if err := p.pc.SetLocalDescription(offer); err != nil {
		return fmt.Errorf("set local description: %w", err)
	}

	log.Printf("[webrtc] local SDP offer set")
	return nil
}

// LocalDescription returns the current local description, including any
// candidates gathered so far, or nil if none has been set.
func (p *Peer) LocalDescription() *domain.SessionDescription {
	desc := p.pc.LocalDescription()
	if desc == nil {
		return nil
	}
	return &domain.SessionDescription{Type: desc.Type.String(), SDP: desc.SDP}
}

// SetRemoteDescription applies the pasted remote description.
func (p *Peer) SetRemoteDescription(desc domain.SessionDescription) error {
	sdpType := pion.NewSDPType(strings.ToLower(desc.Type))
	if sdpType == pion.SDPTypeUnknown {
		return fmt.Errorf("set remote description: unknown type %q", desc.Type)
	}

	if err := p.pc.SetRemoteDescription(pion.SessionDescription{
		Type: sdpType,
		SDP:  desc.SDP,
	}); err != nil {
		return fmt.Errorf("set remote description: %w", err)
	}

	log.Printf("[webrtc] remote SDP %s set", sdpType)
	return nil
}

// Close shuts down the PeerConnection.
func (p *Peer) Close() {
	p.closeOnce.Do(func() {
		if err := p.pc.Close(); err != nil {
			log.Printf("[webrtc] close: %v", err)
		}
	})
}

// remoteTrack adapts a pion TrackRemote to domain.RemoteTrack.
type remoteTrack struct {
	track *pion.TrackRemote
}

func (t *remoteTrack) ID() string       { return t.track.ID() }
func (t *remoteTrack) StreamID() string { return t.track.StreamID() }
func (t *remoteTrack) Kind() string     { return t.track.Kind().String() }

func (t *remoteTrack) Codec() domain.Codec {
	c := t.track.Codec()
	return domain.Codec{
		MimeType:  c.MimeType,
		ClockRate: c.ClockRate,
		Channels:  c.Channels,
	}
}

func (t *remoteTrack) ReadRTP() (*rtp.Packet, error) {
	pkt, _, err := t.track.ReadRTP()
	return pkt, err
}
