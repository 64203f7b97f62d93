package domain

// SessionDescription is the JSON structure exchanged between peers.
// It matches what browsers produce for JSON.stringify(pc.localDescription).
type SessionDescription struct {
	Type string `json:"type"`
	SDP  string `json:"sdp"`
}

// ICEServer holds STUN/TURN server configuration.
type ICEServer struct {
	URLs       []string
	Username   string
	Credential string
}
