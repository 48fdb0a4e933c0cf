package interview

import (
	"context"

	"github.com/futig/interview-mentor/internal/capability/speech"
	"github.com/futig/interview-mentor/internal/entity"
)

type LLMConnector interface {
	CompleteText(ctx context.Context, prompt string) (string, error)
	CompleteWithImage(ctx context.Context, prompt string, image []byte) (string, error)
}

// FrameSource samples the live camera. ok is false when no frame is available.
type FrameSource interface {
	CaptureFrame(ctx context.Context) (frame []byte, ok bool)
}

type SpeechRecognizer interface {
	Start(ctx context.Context) (*speech.Handle, bool)
	Stop() bool
	Listening() bool
}

type AuthProvider interface {
	CurrentUser() *entity.User
}

// EventHandler receives session events after the change they describe is applied.
// It is called without any usecase lock held.
type EventHandler func(entity.Event)
