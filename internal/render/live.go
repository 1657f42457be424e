package render

import (
	"fmt"
	"log"
	"net/http"
	"sync"

	"vigil/internal/engine"
)

// LiveStream serves the annotated frames as an MJPEG stream over HTTP
// while the engine replays the detection file. It subscribes to the
// engine bus as a ResultHandler; slow clients drop frames rather than
// blocking frame processing.
type LiveStream struct {
	renderer  *Renderer
	clients   map[chan []byte]bool
	clientsMu sync.RWMutex
	closed    bool
	logger    *log.Logger
}

// NewLiveStream creates an MJPEG broadcaster over the renderer.
func NewLiveStream(renderer *Renderer, logger *log.Logger) *LiveStream {
	if logger == nil {
		logger = log.Default()
	}
	return &LiveStream{
		renderer: renderer,
		clients:  make(map[chan []byte]bool),
		logger:   logger,
	}
}

// OnFrameResult implements engine.ResultHandler.
func (l *LiveStream) OnFrameResult(result *engine.FrameResult) {
	l.clientsMu.RLock()
	hasClients := len(l.clients) > 0 && !l.closed
	l.clientsMu.RUnlock()
	if !hasClients {
		return
	}

	frame, err := l.renderer.RenderJPEG(result)
	if err != nil {
		l.logger.Printf("[Live] %v", err)
		return
	}

	l.clientsMu.RLock()
	for ch := range l.clients {
		select {
		case ch <- frame:
		default:
			// Client is slow, skip frame.
		}
	}
	l.clientsMu.RUnlock()
}

// ServeHTTP streams frames to one client as multipart/x-mixed-replace.
func (l *LiveStream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	clientCh := make(chan []byte, 5)
	l.clientsMu.Lock()
	if l.closed {
		l.clientsMu.Unlock()
		http.Error(w, "Stream closed", http.StatusGone)
		return
	}
	l.clients[clientCh] = true
	l.clientsMu.Unlock()

	defer func() {
		l.clientsMu.Lock()
		delete(l.clients, clientCh)
		l.clientsMu.Unlock()
	}()

	l.logger.Printf("[Live] client connected")

	for {
		select {
		case <-r.Context().Done():
			l.logger.Printf("[Live] client disconnected")
			return
		case frame, ok := <-clientCh:
			if !ok {
				return
			}
			fmt.Fprintf(w, "--frame\r\n")
			fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
			fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(frame))
			w.Write(frame)
			fmt.Fprintf(w, "\r\n")
			flusher.Flush()
		}
	}
}

// Close disconnects all clients.
func (l *LiveStream) Close() {
	l.clientsMu.Lock()
	defer l.clientsMu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	for ch := range l.clients {
		close(ch)
		delete(l.clients, ch)
	}
}

var _ engine.ResultHandler = (*LiveStream)(nil)
