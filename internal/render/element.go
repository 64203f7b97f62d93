package render

import (
	"errors"
	"io"
	"log"
	"sync"

	"recvoffer/internal/domain"
)

// Element plays one inbound track into a file. It starts reading as soon as
// it is created and stops when the track ends or Stop is called.
type Element struct {
	Index    int
	Kind     string
	TrackID  string
	StreamID string

	path   string
	track  domain.RemoteTrack
	writer mediaWriter

	mu      sync.Mutex
	packets int
	stopped bool
	done    chan struct{}
}

func newElement(index int, path string, track domain.RemoteTrack, w mediaWriter) *Element {
	return &Element{
		Index:    index,
		Kind:     track.Kind(),
		TrackID:  track.ID(),
		StreamID: track.StreamID(),
		path:     path,
		track:    track,
		writer:   w,
		done:     make(chan struct{}),
	}
}

// Path is the file the element writes to.
func (e *Element) Path() string { return e.path }

// Packets returns the number of RTP packets written so far.
func (e *Element) Packets() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.packets
}

// Done is closed once the element has stopped playing.
func (e *Element) Done() <-chan struct{} { return e.done }

// Stop closes the output. Packets still arriving from the track are discarded.
func (e *Element) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
}

func (e *Element) stopLocked() {
	if e.stopped {
		return
	}
	e.stopped = true
	if err := e.writer.Close(); err != nil {
		log.Printf("[render] close %s: %v", e.path, err)
	}
	close(e.done)
}

func (e *Element) play() {
	for {
		pkt, err := e.track.ReadRTP()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.Printf("[render] track %s read error: %v", e.TrackID, err)
			}
			e.Stop()
			return
		}

		e.mu.Lock()
		if e.stopped {
			e.mu.Unlock()
			return
		}
		if err := e.writer.WriteRTP(pkt); err != nil {
			log.Printf("[render] write %s: %v", e.path, err)
		} else {
			e.packets++
		}
		e.mu.Unlock()
	}
}
