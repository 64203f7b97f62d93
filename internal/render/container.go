package render

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"recvoffer/internal/domain"
)

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// Container holds the media elements created for inbound tracks.
// It implements domain.Renderer.
type Container struct {
	dir string

	mu       sync.Mutex
	elements []*Element
}

// NewContainer creates dir if needed and returns an empty container.
func NewContainer(dir string) (*Container, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &Container{dir: dir}, nil
}

// Attach creates a new element for track and starts playing it. Every call
// appends a new element, even for tracks of a stream seen before.
func (c *Container) Attach(track domain.RemoteTrack) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	index := len(c.elements) + 1
	name := fmt.Sprintf("%d-%s-%s.%s", index, track.Kind(), sanitize(track.StreamID()), extensionFor(track.Codec()))
	path := filepath.Join(c.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create element file: %w", err)
	}

	w, err := newMediaWriter(track.Codec(), f)
	if err != nil {
		f.Close()
		return err
	}

	e := newElement(index, path, track, w)
	c.elements = append(c.elements, e)
	log.Printf("[render] element %d: %s %s -> %s", index, track.Kind(), track.Codec().MimeType, path)

	go e.play()
	return nil
}

// Elements returns the elements in the order they were attached.
func (c *Container) Elements() []*Element {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]*Element, len(c.elements))
	copy(out, c.elements)
	return out
}

// Close stops every element.
func (c *Container) Close() {
	for _, e := range c.Elements() {
		e.Stop()
	}
}

func sanitize(s string) string {
	if s == "" {
		return "nostream"
	}
	return unsafeName.ReplaceAllString(s, "_")
}
