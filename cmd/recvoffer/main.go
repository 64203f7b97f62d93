package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	ossignal "os/signal"
	"syscall"

	"recvoffer/internal/config"
	"recvoffer/internal/driver"
	"recvoffer/internal/page"
	"recvoffer/internal/render"
	"recvoffer/internal/signal"
	"recvoffer/internal/webrtc"
)

const helpText = `recvoffer - Receive one audio and one video track over WebRTC with manual signaling

Usage:
  recvoffer [options]

On start a receive-only offer is created. Once ICE gathering completes its
base64 session description is printed to stdout. Paste it into the sending
peer, then paste the peer's base64 answer here and press Enter. Each line
read from stdin is one "start session" attempt.

Incoming tracks are written to RECV_OUTPUT_DIR, one file per track
(VP8/AV1 as IVF, Opus as Ogg, H264 as Annex-B, anything else as raw RTP).

Environment Variables (optional, also read from .env):
  RECV_STUN_URL    ICE server URL (default stun:stun.l.google.com:19302)
  RECV_OUTPUT_DIR  Directory for received media (default recordings)
  RECV_HTTP_ADDR   Serve the HTTP page on this address, e.g. 127.0.0.1:8080
                   GET  /session/local   local description
                   POST /session/remote  remote description (body)
                   GET  /logs            websocket log stream
  RECV_PION_LOG_LEVEL  pion engine log level: disabled, error, warn, info,
                       debug, trace (default error)
  RECV_UDP_PORT_MIN    Restrict ICE to a UDP port range; set both or neither
  RECV_UDP_PORT_MAX

Examples:
  recvoffer
  RECV_HTTP_ADDR=127.0.0.1:8080 recvoffer

Options:
  -h, --help  Show this help message
`

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "-h" || os.Args[1] == "--help") {
		fmt.Print(helpText)
		os.Exit(0)
	}

	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ltime | log.Lmicroseconds)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[main] %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	ossignal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Printf("[main] received %s, shutting down", sig)
		cancel()
	}()

	peer, err := webrtc.NewPeer(cfg.ICEServers(), webrtc.Settings{
		LogLevel:   cfg.PionLogLevel,
		UDPPortMin: cfg.UDPPortMin,
		UDPPortMax: cfg.UDPPortMax,
	})
	if err != nil {
		log.Fatalf("[main] create peer: %v", err)
	}

	container, err := render.NewContainer(cfg.OutputDir)
	if err != nil {
		log.Fatalf("[main] %v", err)
	}

	console := page.NewConsole(os.Stdout, os.Stderr)
	d := driver.New(peer, console, container)

	if cfg.HTTPAddr != "" {
		srv := page.NewServer(cfg.HTTPAddr, console, d)
		go func() {
			if err := srv.ListenAndServe(ctx); err != nil {
				log.Printf("[main] %v", err)
				cancel()
			}
		}()
	}

	log.Printf("[main] creating receive-only offer via %s", cfg.STUNURL)
	if err := d.Start(); err != nil {
		log.Fatalf("[main] %v", err)
	}

	go readSessions(os.Stdin, d)

	<-ctx.Done()
	log.Printf("[main] shutting down")

	peer.Close()
	container.Close()

	log.Printf("[main] done")
}

// readSessions treats every line on r as a pasted remote description
// followed by a start-session click.
func readSessions(r io.Reader, d *driver.Driver) {
	reader := signal.NewReader(r)
	for {
		line, err := reader.Next()
		if err != nil {
			if err != io.EOF {
				log.Printf("[main] read stdin: %v", err)
			}
			return
		}

		_ = d.Submit(line)
	}
}
