package driver

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"recvoffer/internal/domain"
	"recvoffer/internal/signal"
)

// EmptyDescriptionMessage is shown when StartSession runs with an empty remote field.
const EmptyDescriptionMessage = "Session Description must not be empty"

// ErrEmptyDescription is returned by StartSession when the remote field is empty.
var ErrEmptyDescription = errors.New("empty remote session description")

// Driver takes one peer connection through offer creation and remote
// description acceptance, reflecting state and tracks into the page.
type Driver struct {
	peer     domain.Peer
	page     domain.Page
	renderer domain.Renderer

	publishOnce sync.Once
	sessionMu   sync.Mutex
}

// New creates a Driver. Call Start to begin negotiation.
func New(peer domain.Peer, page domain.Page, renderer domain.Renderer) *Driver {
	return &Driver{
		peer:     peer,
		page:     page,
		renderer: renderer,
	}
}

// Start registers the event handlers, declares the receive intent and
// creates the local offer. Offer failures go to the page log and are not
// returned; only a failure to add transceivers is.
func (d *Driver) Start() error {
	d.peer.SetOnTrack(d.onTrack)
	d.peer.SetOnICEConnectionStateChange(d.onICEConnectionStateChange)
	d.peer.SetOnICECandidate(d.onICECandidate)

	if err := d.peer.AddRecvTransceivers(); err != nil {
		return fmt.Errorf("declare receive intent: %w", err)
	}

	if err := d.peer.CreateOffer(); err != nil {
		log.Printf("[driver] offer: %v", err)
		d.page.Log(err.Error())
	}
	return nil
}

func (d *Driver) onTrack(track domain.RemoteTrack) {
	if err := d.renderer.Attach(track); err != nil {
		log.Printf("[driver] attach %s track: %v", track.Kind(), err)
		d.page.Log(err.Error())
	}
}

func (d *Driver) onICEConnectionStateChange(state string) {
	d.page.Log(state)
}

func (d *Driver) onICECandidate(candidate *string) {
	if candidate != nil {
		return
	}

	d.publishOnce.Do(func() {
		desc := d.peer.LocalDescription()
		if desc == nil {
			d.page.Log("local description unavailable")
			return
		}

		encoded, err := signal.Encode(*desc)
		if err != nil {
			d.page.Log(err.Error())
			return
		}

		log.Printf("[driver] publishing local session description")
		d.page.SetLocalSessionDescription(encoded)
	})
}

// StartSession applies the remote description pasted into the page.
// Every failure is shown to the user via Alert and also returned.
func (d *Driver) StartSession() error {
	d.sessionMu.Lock()
	defer d.sessionMu.Unlock()
	return d.startSessionLocked()
}

// Submit fills the remote field with sd and runs StartSession on it. No other
// submission can replace the field in between.
func (d *Driver) Submit(sd string) error {
	d.sessionMu.Lock()
	defer d.sessionMu.Unlock()

	d.page.SetRemoteSessionDescription(sd)
	return d.startSessionLocked()
}

func (d *Driver) startSessionLocked() error {
	sd := d.page.RemoteSessionDescription()
	if sd == "" {
		d.page.Alert(EmptyDescriptionMessage)
		return ErrEmptyDescription
	}

	desc, err := signal.Decode(sd)
	if err == nil {
		err = d.peer.SetRemoteDescription(desc)
	}
	if err != nil {
		log.Printf("[driver] start session: %v", err)
		d.page.Alert(err.Error())
		return err
	}

	log.Printf("[driver] session started")
	return nil
}
