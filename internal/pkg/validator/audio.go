package validator

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/futig/interview-mentor/internal/config"
	"github.com/futig/interview-mentor/internal/entity"
)

// Validator checks recorded utterances before they are sent for transcription
type Validator struct {
	cfg config.MicrophoneConfig
}

func NewAudioValidator(cfg config.MicrophoneConfig) *Validator {
	return &Validator{cfg: cfg}
}

// ValidateAudio accepts non-empty RIFF/WAVE data up to the configured size
func (v *Validator) ValidateAudio(audio []byte) error {
	if len(audio) == 0 {
		return entity.ErrEmptyAudio
	}

	// Check size
	if v.cfg.MaxAudioSize > 0 && int64(len(audio)) > v.cfg.MaxAudioSize {
		return fmt.Errorf("%w: recording is %d bytes (max %d)", entity.ErrAudioTooLarge, len(audio), v.cfg.MaxAudioSize)
	}

	// Check format
	if len(audio) < 12 || !bytes.Equal(audio[0:4], []byte("RIFF")) || !bytes.Equal(audio[8:12], []byte("WAVE")) {
		return fmt.Errorf("%w: content type '%s' (expected audio/wav)", entity.ErrInvalidAudioFormat, http.DetectContentType(audio))
	}

	return nil
}
