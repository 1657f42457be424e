package render

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"vigil/internal/engine"
)

// JPEGSink writes one annotated JPEG per processed frame into an output
// directory, named by frame number so an encoder can assemble them into
// a clip afterwards. It subscribes to the engine bus as a ResultHandler.
type JPEGSink struct {
	renderer *Renderer
	dir      string
	written  int
	logger   *log.Logger
}

// NewJPEGSink creates the output directory if needed.
func NewJPEGSink(renderer *Renderer, dir string, logger *log.Logger) (*JPEGSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &JPEGSink{renderer: renderer, dir: dir, logger: logger}, nil
}

// OnFrameResult implements engine.ResultHandler. Render or write
// failures are logged and skipped; they must not stall the frame loop.
func (s *JPEGSink) OnFrameResult(result *engine.FrameResult) {
	data, err := s.renderer.RenderJPEG(result)
	if err != nil {
		s.logger.Printf("[Render] %v", err)
		return
	}
	path := filepath.Join(s.dir, fmt.Sprintf("frame_%05d.jpg", result.FrameNum))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		s.logger.Printf("[Render] failed to write %s: %v", path, err)
		return
	}
	s.written++
}

// Written returns the number of frames written so far.
func (s *JPEGSink) Written() int { return s.written }

// Close logs the final frame count. Kept as an explicit release point
// so the frame loop can always pair acquisition with release, normal or
// early exit alike.
func (s *JPEGSink) Close() error {
	s.logger.Printf("[Render] wrote %d frames to %s", s.written, s.dir)
	return nil
}

var _ engine.ResultHandler = (*JPEGSink)(nil)
