package domain

// Peer manages the WebRTC peer connection.
type Peer interface {
	AddRecvTransceivers() error
	SetOnTrack(fn func(track RemoteTrack))
	SetOnICEConnectionStateChange(fn func(state string))
	// SetOnICECandidate registers fn for gathered candidates. A nil candidate
	// signals that gathering is complete.
	SetOnICECandidate(fn func(candidate *string))
	CreateOffer() error
	LocalDescription() *SessionDescription
	SetRemoteDescription(desc SessionDescription) error
	Close()
}

// Page is the user-facing surface: a log, two session description fields
// and a blocking alert.
type Page interface {
	Log(msg string)
	SetLocalSessionDescription(encoded string)
	SetRemoteSessionDescription(sd string)
	RemoteSessionDescription() string
	Alert(msg string)
}

// Renderer turns inbound tracks into playable media elements.
type Renderer interface {
	Attach(track RemoteTrack) error
}
