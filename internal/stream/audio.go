package stream

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// AudioSink receives the decoded audio that ends an assistant reply.
type AudioSink interface {
	Play(ctx context.Context, data []byte) error
}

// Discard drops audio.
type Discard struct{}

// Play implements AudioSink.
func (Discard) Play(context.Context, []byte) error { return nil }

// FileSink writes each payload to its own .mp3 file in Dir. A nil Logger
// keeps it quiet.
type FileSink struct {
	Dir    string
	Logger *slog.Logger
}

// Play implements AudioSink.
func (s FileSink) Play(_ context.Context, data []byte) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("create audio directory: %w", err)
	}
	name := fmt.Sprintf("%s-%s.mp3", time.Now().UTC().Format("20060102T150405"), uuid.NewString()[:8])
	path := filepath.Join(s.Dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write audio: %w", err)
	}
	if s.Logger != nil {
		s.Logger.Debug("audio reply saved", "path", path, "bytes", len(data))
	}
	return nil
}
