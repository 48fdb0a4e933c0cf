package asr

import (
	"context"

	"github.com/futig/interview-mentor/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockConnector transcribes every utterance to the same sentence
type MockConnector struct {
	logger *zap.Logger
	Text   string
}

const mockTranscription = "In my last role I led the migration of our billing service and cut deployment time in half."

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
		Text:   mockTranscription,
	}
}

func (m *MockConnector) TranscribeBytes(ctx context.Context, audioData []byte, filename string) (string, error) {
	if len(audioData) == 0 {
		return "", entity.ErrEmptyAudio
	}

	ctxzap.Info(ctx, "[MOCK] transcribing audio via ASR",
		zap.String("filename", filename),
		zap.Int("size", len(audioData)),
	)

	return m.Text, nil
}
