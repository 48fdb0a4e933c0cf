package camera

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"os/exec"
	"strconv"
	"sync"

	"github.com/avast/retry-go/v4"
	"github.com/futig/interview-mentor/internal/config"
	"github.com/futig/interview-mentor/internal/entity"
	"go.uber.org/zap"
)

const captureFPS = 5

// FFmpegDevice reads a V4L2 camera through an ffmpeg child process that emits raw RGB frames
type FFmpegDevice struct {
	ffmpeg string
	device string
	width  int
	height int
	logger *zap.Logger
}

func NewFFmpegDevice(cfg config.CameraConfig, logger *zap.Logger) *FFmpegDevice {
	return &FFmpegDevice{
		ffmpeg: cfg.FFmpegPath,
		device: cfg.Device,
		width:  cfg.Width,
		height: cfg.Height,
		logger: logger,
	}
}

func (d *FFmpegDevice) args() []string {
	return []string{
		"-hide_banner",
		"-loglevel", "error",
		"-f", "v4l2",
		"-video_size", strconv.Itoa(d.width) + "x" + strconv.Itoa(d.height),
		"-i", d.device,
		"-r", strconv.Itoa(captureFPS),
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"-",
	}
}

func (d *FFmpegDevice) Open(ctx context.Context) (Stream, error) {
	path, err := exec.LookPath(d.ffmpeg)
	if err != nil {
		// Nothing to retry without the binary.
		return nil, retry.Unrecoverable(fmt.Errorf("%s not found: %w", d.ffmpeg, err))
	}
	if _, err := os.Stat(d.device); err != nil {
		return nil, fmt.Errorf("camera device %s: %w", d.device, err)
	}

	procCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	cmd := exec.CommandContext(procCtx, path, d.args()...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("ffmpeg stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}

	s := &ffmpegStream{
		cmd:    cmd,
		cancel: cancel,
		width:  d.width,
		height: d.height,
		done:   make(chan struct{}),
		logger: d.logger,
	}
	go s.read(stdout)

	return s, nil
}

type ffmpegStream struct {
	cmd    *exec.Cmd
	cancel context.CancelFunc
	width  int
	height int
	done   chan struct{}
	logger *zap.Logger

	mu      sync.RWMutex
	latest  *image.RGBA
	readErr error
}

func (s *ffmpegStream) read(r io.Reader) {
	defer close(s.done)

	frameSize := s.width * s.height * 3
	buf := make([]byte, frameSize)
	for {
		if _, err := io.ReadFull(r, buf); err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
				s.logger.Warn("camera stream read failed", zap.Error(err))
			}
			s.mu.Lock()
			s.readErr = entity.ErrCameraUnavailable
			s.mu.Unlock()
			return
		}

		img := image.NewRGBA(image.Rect(0, 0, s.width, s.height))
		for i, j := 0, 0; i < frameSize; i, j = i+3, j+4 {
			img.Pix[j] = buf[i]
			img.Pix[j+1] = buf[i+1]
			img.Pix[j+2] = buf[i+2]
			img.Pix[j+3] = 0xFF
		}

		s.mu.Lock()
		s.latest = img
		s.mu.Unlock()
	}
}

// Frame returns the most recent frame. Once ffmpeg has exited the last frame
// is stale and the stream reports ErrCameraUnavailable instead.
func (s *ffmpegStream) Frame(_ context.Context) (image.Image, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.readErr != nil {
		return nil, s.readErr
	}
	if s.latest == nil {
		return nil, nil
	}
	return s.latest, nil
}

func (s *ffmpegStream) Close() error {
	s.cancel()
	<-s.done
	if err := s.cmd.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// Killed on purpose.
			return nil
		}
		return err
	}
	return nil
}
