package page

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

const maxDescriptionBytes = 1 << 20

// SessionSubmitter fills the remote field and runs the start-session action
// as one step.
type SessionSubmitter interface {
	Submit(sd string) error
}

// Server exposes the console page over HTTP so the description exchange can
// be done with curl or from another machine.
type Server struct {
	addr      string
	console   *Console
	submitter SessionSubmitter

	upgrader websocket.Upgrader
}

// NewServer creates a Server for console listening on addr.
func NewServer(addr string, console *Console, submitter SessionSubmitter) *Server {
	return &Server{
		addr:      addr,
		console:   console,
		submitter: submitter,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	router := httprouter.New()
	router.GET("/healthz", s.handleHealth)
	router.GET("/session/local", s.handleLocal)
	router.POST("/session/remote", s.handleRemote)
	router.GET("/logs", s.handleLogs)
	return router
}

// ListenAndServe serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("[page] listening on %s", s.addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http page: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	fmt.Fprint(w, "ok")
}

func (s *Server) handleLocal(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	local := s.console.LocalSessionDescription()
	if local == "" {
		http.Error(w, "local session description not ready", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, local)
}

func (s *Server) handleRemote(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDescriptionBytes))
	if err != nil {
		http.Error(w, "read body: "+err.Error(), http.StatusRequestEntityTooLarge)
		return
	}

	if err := s.submitter.Submit(string(body)); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[page] websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	backlog, lines, cancel := s.console.Subscribe(64)
	defer cancel()

	// Reader goroutine notices when the client goes away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for _, line := range backlog {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
			return
		}
	}

	for {
		select {
		case <-closed:
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
				return
			}
		}
	}
}
