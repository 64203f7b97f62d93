package page

import (
	"bytes"
	"strings"
	"testing"
)

func TestLog_OneLinePerCall(t *testing.T) {
	var out, alerts bytes.Buffer
	c := NewConsole(&out, &alerts)

	c.Log("checking")
	c.Log("connected")
	c.Log("connected")

	if out.String() != "checking\nconnected\nconnected\n" {
		t.Errorf("unexpected output %q", out.String())
	}
	if got := c.Lines(); len(got) != 3 {
		t.Errorf("expected 3 lines, got %v", got)
	}
	if alerts.Len() != 0 {
		t.Errorf("expected no alerts, got %q", alerts.String())
	}
}

func TestSetLocalSessionDescription(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(&out, &bytes.Buffer{})

	if c.LocalSessionDescription() != "" {
		t.Fatal("expected empty local field before publish")
	}

	c.SetLocalSessionDescription("ZW5jb2RlZA==")

	if c.LocalSessionDescription() != "ZW5jb2RlZA==" {
		t.Errorf("unexpected local field %q", c.LocalSessionDescription())
	}
	if !strings.Contains(out.String(), "ZW5jb2RlZA==\n") {
		t.Errorf("expected description printed, got %q", out.String())
	}
}

func TestAlert(t *testing.T) {
	var alerts bytes.Buffer
	c := NewConsole(&bytes.Buffer{}, &alerts)

	c.Alert("Session Description must not be empty")

	if alerts.String() != "alert: Session Description must not be empty\n" {
		t.Errorf("unexpected alert output %q", alerts.String())
	}
}

func TestRemoteField(t *testing.T) {
	c := NewConsole(&bytes.Buffer{}, &bytes.Buffer{})

	c.SetRemoteSessionDescription("abc")
	if c.RemoteSessionDescription() != "abc" {
		t.Errorf("unexpected remote field %q", c.RemoteSessionDescription())
	}
}

func TestSubscribe_BacklogThenLive(t *testing.T) {
	c := NewConsole(&bytes.Buffer{}, &bytes.Buffer{})
	c.Log("new")

	backlog, lines, cancel := c.Subscribe(4)
	defer cancel()

	if len(backlog) != 1 || backlog[0] != "new" {
		t.Fatalf("unexpected backlog %v", backlog)
	}

	c.Log("checking")
	if got := <-lines; got != "checking" {
		t.Errorf("expected live line, got %q", got)
	}
}

func TestSubscribe_CancelClosesChannel(t *testing.T) {
	c := NewConsole(&bytes.Buffer{}, &bytes.Buffer{})

	_, lines, cancel := c.Subscribe(1)
	cancel()
	cancel()

	if _, ok := <-lines; ok {
		t.Error("expected closed channel")
	}
	// Logging after cancel must not panic.
	c.Log("after")
}
