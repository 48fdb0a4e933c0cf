package speech

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"time"

	"github.com/futig/interview-mentor/internal/config"
	"github.com/futig/interview-mentor/internal/entity"
)

// CommandAudioSource records a mono WAV utterance with arecord
type CommandAudioSource struct {
	command     string
	sampleRate  int
	maxDuration time.Duration
}

func NewCommandAudioSource(cfg config.MicrophoneConfig) *CommandAudioSource {
	return &CommandAudioSource{
		command:     cfg.Command,
		sampleRate:  cfg.SampleRate,
		maxDuration: cfg.MaxDuration,
	}
}

func (s *CommandAudioSource) args() []string {
	seconds := int(s.maxDuration.Round(time.Second) / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	return []string{
		"-q",
		"-f", "S16_LE",
		"-c", "1",
		"-r", strconv.Itoa(s.sampleRate),
		"-t", "wav",
		"-d", strconv.Itoa(seconds),
		"-",
	}
}

func (s *CommandAudioSource) Record(ctx context.Context) ([]byte, error) {
	path, err := exec.LookPath(s.command)
	if err != nil {
		return nil, fmt.Errorf("%w: %s not found", entity.ErrMicrophoneUnsupported, s.command)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, s.args()...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%s: %w: %s", s.command, err, bytes.TrimSpace(stderr.Bytes()))
	}

	return stdout.Bytes(), nil
}
