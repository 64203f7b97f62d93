package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"recvoffer/internal/domain"
)

const (
	DefaultSTUNURL   = "stun:stun.l.google.com:19302"
	DefaultOutputDir = "recordings"
)

// Config holds the application configuration.
type Config struct {
	STUNURL   string
	OutputDir string
	// HTTPAddr enables the HTTP page when non-empty.
	HTTPAddr string

	PionLogLevel string
	UDPPortMin   uint16
	UDPPortMax   uint16
}

// Load reads configuration from a .env file (if present) and environment variables.
// Environment variables take precedence over .env values.
func Load() (*Config, error) {
	// godotenv.Load does not overwrite existing env vars
	_ = godotenv.Load()

	cfg := &Config{
		STUNURL:   envOr("RECV_STUN_URL", DefaultSTUNURL),
		OutputDir: envOr("RECV_OUTPUT_DIR", DefaultOutputDir),
		HTTPAddr:  strings.TrimSpace(os.Getenv("RECV_HTTP_ADDR")),

		PionLogLevel: envOr("RECV_PION_LOG_LEVEL", "error"),
	}

	var err error
	if cfg.UDPPortMin, err = envPort("RECV_UDP_PORT_MIN"); err != nil {
		return nil, err
	}
	if cfg.UDPPortMax, err = envPort("RECV_UDP_PORT_MAX"); err != nil {
		return nil, err
	}
	if (cfg.UDPPortMin == 0) != (cfg.UDPPortMax == 0) {
		return nil, fmt.Errorf("RECV_UDP_PORT_MIN and RECV_UDP_PORT_MAX must be set together")
	}
	if cfg.UDPPortMin > cfg.UDPPortMax {
		return nil, fmt.Errorf("RECV_UDP_PORT_MIN %d exceeds RECV_UDP_PORT_MAX %d", cfg.UDPPortMin, cfg.UDPPortMax)
	}

	if !validICEURL(cfg.STUNURL) {
		return nil, fmt.Errorf("RECV_STUN_URL %q must use a stun:, stuns:, turn: or turns: scheme", cfg.STUNURL)
	}

	return cfg, nil
}

// ICEServers returns the single-entry ICE server list for the peer connection.
func (c *Config) ICEServers() []domain.ICEServer {
	return []domain.ICEServer{{URLs: []string{c.STUNURL}}}
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envPort(key string) (uint16, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, nil
	}
	port, err := strconv.ParseUint(v, 10, 16)
	if err != nil || port == 0 {
		return 0, fmt.Errorf("%s must be a port number between 1 and 65535, got %q", key, v)
	}
	return uint16(port), nil
}

func validICEURL(u string) bool {
	for _, scheme := range []string{"stun:", "stuns:", "turn:", "turns:"} {
		if strings.HasPrefix(u, scheme) && len(u) > len(scheme) {
			return true
		}
	}
	return false
}
