// Package sse streams editor changes to browsers as Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// Stream event names that do not come straight from the session.
const (
	TypeSectionUpdated = "section.updated"
	TypePreviewRefresh = "preview.refresh"
)

// clientBuffer is how many frames a slow client may lag before frames are dropped.
const clientBuffer = 64

// retryMillis is the reconnect delay suggested to browsers.
const retryMillis = 3000

// Event represents an SSE event to broadcast.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// frame renders e in text/event-stream format.
func (e Event) frame() ([]byte, error) {
	payload, err := json.Marshal(e.Data)
	if err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", e.Type, payload)), nil
}

// Broker fans events out to connected clients.
//
// The client set and the preview throttle belong to one loop goroutine;
// everything else talks to it over channels. Frames are encoded by the
// caller so a bad payload never reaches the loop.
type Broker struct {
	previewEvery time.Duration
	heartbeat    time.Duration

	join     chan chan []byte
	leave    chan chan []byte
	frames   chan []byte
	sections chan string
	count    chan chan int

	quit chan struct{}
	done chan struct{}
	shut atomic.Bool
}

// BrokerOption configures a Broker.
type BrokerOption func(*Broker)

// WithHeartbeat makes ServeHTTP write a comment line every d so proxies keep
// idle streams open. Zero disables it.
func WithHeartbeat(d time.Duration) BrokerOption {
	return func(b *Broker) { b.heartbeat = d }
}

// NewBroker creates a broker that emits preview.refresh at most once per
// previewThrottle (500ms when zero or negative).
func NewBroker(previewThrottle time.Duration, opts ...BrokerOption) *Broker {
	if previewThrottle <= 0 {
		previewThrottle = 500 * time.Millisecond
	}
	b := &Broker{
		previewEvery: previewThrottle,
		heartbeat:    15 * time.Second,
		join:         make(chan chan []byte),
		leave:        make(chan chan []byte),
		frames:       make(chan []byte, 256),
		sections:     make(chan string, 256),
		count:        make(chan chan int),
		quit:         make(chan struct{}),
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	go b.loop()
	return b
}

func (b *Broker) loop() {
	defer close(b.done)

	clients := make(map[chan []byte]struct{})
	var lastPreview time.Time

	fanOut := func(frame []byte) {
		for ch := range clients {
			select {
			case ch <- frame:
			default:
				// client is behind; drop rather than block everyone
			}
		}
	}

	preview, _ := Event{Type: TypePreviewRefresh, Data: struct{}{}}.frame()

	for {
		select {
		case <-b.quit:
			for ch := range clients {
				close(ch)
			}
			return

		case ch := <-b.join:
			clients[ch] = struct{}{}

		case ch := <-b.leave:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case frame := <-b.frames:
			fanOut(frame)

		case section := <-b.sections:
			frame, err := Event{Type: TypeSectionUpdated, Data: map[string]string{"section": section}}.frame()
			if err == nil {
				fanOut(frame)
			}
			if now := time.Now(); now.Sub(lastPreview) >= b.previewEvery {
				lastPreview = now
				fanOut(preview)
			}

		case reply := <-b.count:
			reply <- len(clients)
		}
	}
}

// Close stops the loop and closes every client channel. It is safe to call
// more than once.
func (b *Broker) Close() {
	if b.shut.CompareAndSwap(false, true) {
		close(b.quit)
	}
	<-b.done
}

// Subscribe registers a client. The returned channel is closed by
// Unsubscribe or Close.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, clientBuffer)
	if b.shut.Load() {
		close(ch)
		return ch
	}
	select {
	case b.join <- ch:
	case <-b.done:
		close(ch)
	}
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.shut.Load() {
		return
	}
	select {
	case b.leave <- ch:
	case <-b.done:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.shut.Load() {
		return 0
	}
	reply := make(chan int, 1)
	select {
	case b.count <- reply:
	case <-b.done:
		return 0
	}
	select {
	case n := <-reply:
		return n
	case <-b.done:
		return 0
	}
}

// Publish sends an event to all connected clients. Events whose data cannot
// be encoded are dropped.
func (b *Broker) Publish(event Event) {
	if b.shut.Load() {
		return
	}
	frame, err := event.frame()
	if err != nil {
		return
	}
	select {
	case b.frames <- frame:
	case <-b.done:
	}
}

// PublishSectionUpdate announces an edited section followed by a throttled
// preview.refresh.
func (b *Broker) PublishSectionUpdate(section string) {
	if b.shut.Load() {
		return
	}
	select {
	case b.sections <- section:
	case <-b.done:
	}
}

// ServeHTTP is the SSE endpoint handler (GET /api/events).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "retry: %d\n\n", retryMillis)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	var beat <-chan time.Time
	if b.heartbeat > 0 {
		t := time.NewTicker(b.heartbeat)
		defer t.Stop()
		beat = t.C
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-beat:
			_, _ = w.Write([]byte(": keep-alive\n\n"))
			flusher.Flush()
		case frame, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(frame)
			flusher.Flush()
		}
	}
}
