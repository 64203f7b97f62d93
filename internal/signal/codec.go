package signal

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"recvoffer/internal/domain"
)

var (
	ErrDecodeBase64 = errors.New("session description is not valid base64")
	ErrDecodeJSON   = errors.New("session description is not valid JSON")
)

// Encode serializes a session description to JSON and base64-encodes it
// for copy/paste between peers.
func Encode(desc domain.SessionDescription) (string, error) {
	payloadJSON, err := json.Marshal(desc)
	if err != nil {
		return "", fmt.Errorf("marshal session description: %w", err)
	}
	return base64.StdEncoding.EncodeToString(payloadJSON), nil
}

// Decode reverses Encode. Surrounding whitespace left over from pasting is ignored.
func Decode(in string) (domain.SessionDescription, error) {
	var desc domain.SessionDescription

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(in))
	if err != nil {
		return desc, fmt.Errorf("%w: %v", ErrDecodeBase64, err)
	}
	if err := json.Unmarshal(decoded, &desc); err != nil {
		return desc, fmt.Errorf("%w: %v", ErrDecodeJSON, err)
	}
	return desc, nil
}
