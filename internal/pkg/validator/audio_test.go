package validator

import (
	"errors"
	"testing"

	"github.com/futig/interview-mentor/internal/config"
	"github.com/futig/interview-mentor/internal/entity"
)

func wav(size int) []byte {
	data := make([]byte, size)
	copy(data, "RIFF\x00\x00\x00\x00WAVEfmt ")
	return data
}

func TestValidateAudio(t *testing.T) {
	v := NewAudioValidator(config.MicrophoneConfig{MaxAudioSize: 64})

	tests := []struct {
		name    string
		audio   []byte
		wantErr error
	}{
		{name: "valid wav", audio: wav(44)},
		{name: "empty", audio: nil, wantErr: entity.ErrEmptyAudio},
		{name: "too large", audio: wav(65), wantErr: entity.ErrAudioTooLarge},
		{name: "not wav", audio: []byte("ID3\x03\x00\x00\x00\x00\x00\x00\x00\x00mp3 data"), wantErr: entity.ErrInvalidAudioFormat},
		{name: "truncated header", audio: []byte("RIFF"), wantErr: entity.ErrInvalidAudioFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateAudio(tt.audio)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("ValidateAudio() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateAudio() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateAudio_NoLimit(t *testing.T) {
	v := NewAudioValidator(config.MicrophoneConfig{})
	if err := v.ValidateAudio(wav(1 << 20)); err != nil {
		t.Errorf("ValidateAudio() error = %v", err)
	}
}
