package page

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// mockSubmitter fills the console field and reads it back as one step,
// recording the field each submission ended up applying.
type mockSubmitter struct {
	console *Console
	err     error

	mu   sync.Mutex
	seen []string
}

func (m *mockSubmitter) Submit(sd string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.console.SetRemoteSessionDescription(sd)
	time.Sleep(5 * time.Millisecond)
	applied := m.console.RemoteSessionDescription()
	m.seen = append(m.seen, applied)

	if m.err != nil {
		return m.err
	}
	if applied != sd {
		return fmt.Errorf("submitted %q but applied %q", sd, applied)
	}
	return nil
}

func (m *mockSubmitter) applied() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.seen...)
}

func newTestServer(t *testing.T, submitErr error) (*httptest.Server, *Console, *mockSubmitter) {
	t.Helper()

	console := NewConsole(&bytes.Buffer{}, &bytes.Buffer{})
	submitter := &mockSubmitter{console: console, err: submitErr}
	srv := httptest.NewServer(NewServer("", console, submitter).Handler())
	t.Cleanup(srv.Close)
	return srv, console, submitter
}

func TestHealthz(t *testing.T) {
	srv, _, _ := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != "ok" {
		t.Errorf("unexpected response %d %q", resp.StatusCode, body)
	}
}

func TestLocal_NotReadyThenPublished(t *testing.T) {
	srv, console, _ := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/session/local")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 before publish, got %d", resp.StatusCode)
	}

	console.SetLocalSessionDescription("bG9jYWw=")

	resp, err = http.Get(srv.URL + "/session/local")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != "bG9jYWw=" {
		t.Errorf("unexpected response %d %q", resp.StatusCode, body)
	}
}

func TestRemote_Success(t *testing.T) {
	srv, _, submitter := newTestServer(t, nil)

	resp, err := http.Post(srv.URL+"/session/remote", "text/plain", strings.NewReader("cmVtb3Rl"))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("expected 204, got %d", resp.StatusCode)
	}
	if got := submitter.applied(); len(got) != 1 || got[0] != "cmVtb3Rl" {
		t.Errorf("expected submission of the posted body, got %v", got)
	}
}

func TestRemote_ConcurrentPostsApplyTheirOwnBody(t *testing.T) {
	srv, _, submitter := newTestServer(t, nil)

	bodies := []string{"AAAA", "BBBB", "CCCC", "DDDD"}
	var wg sync.WaitGroup
	for _, body := range bodies {
		wg.Add(1)
		go func(body string) {
			defer wg.Done()
			resp, err := http.Post(srv.URL+"/session/remote", "text/plain", strings.NewReader(body))
			if err != nil {
				t.Errorf("POST %s: %v", body, err)
				return
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusNoContent {
				msg, _ := io.ReadAll(resp.Body)
				t.Errorf("POST %s: expected 204, got %d %s", body, resp.StatusCode, msg)
			}
		}(body)
	}
	wg.Wait()

	counts := map[string]int{}
	for _, sd := range submitter.applied() {
		counts[sd]++
	}
	for _, body := range bodies {
		if counts[body] != 1 {
			t.Errorf("%s applied %d times, want 1", body, counts[body])
		}
	}
}

func TestRemote_FailureReturnsAlertText(t *testing.T) {
	srv, _, _ := newTestServer(t, errors.New("Session Description must not be empty"))

	resp, err := http.Post(srv.URL+"/session/remote", "text/plain", strings.NewReader(""))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "must not be empty") {
		t.Errorf("unexpected body %q", body)
	}
}

func TestLogs_WebSocketStream(t *testing.T) {
	srv, console, _ := newTestServer(t, nil)
	console.Log("new")

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/logs"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read backlog: %v", err)
	}
	if string(msg) != "new" {
		t.Errorf("expected backlog line, got %q", msg)
	}
}
