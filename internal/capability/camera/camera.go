package camera

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"sync"

	"github.com/futig/interview-mentor/internal/entity"
	pkgRetry "github.com/futig/interview-mentor/internal/pkg/retry"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Stream is a live video feed. Frame returns the most recent frame, or nil
// while the feed has not produced one yet.
type Stream interface {
	Frame(ctx context.Context) (image.Image, error)
	Close() error
}

type Device interface {
	Open(ctx context.Context) (Stream, error)
}

// Camera owns at most one open stream. Start and Stop are idempotent.
type Camera struct {
	device  Device
	retry   *pkgRetry.RetryConfig
	quality int
	logger  *zap.Logger

	mu     sync.Mutex
	stream Stream
}

func New(device Device, retry *pkgRetry.RetryConfig, quality int, logger *zap.Logger) *Camera {
	if retry == nil {
		retry = pkgRetry.DefaultRetryConfig()
	}
	if quality < 1 || quality > 100 {
		quality = jpeg.DefaultQuality
	}
	return &Camera{
		device:  device,
		retry:   retry,
		quality: quality,
		logger:  logger,
	}
}

func (c *Camera) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stream != nil {
		return nil
	}

	var stream Stream
	err := c.retry.Do(ctx, func() error {
		s, err := c.device.Open(ctx)
		if err != nil {
			ctxzap.Debug(ctx, "camera open attempt failed", zap.Error(err))
			return err
		}
		stream = s
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", entity.ErrCameraUnavailable, err)
	}

	c.stream = stream
	c.logger.Info("camera started")
	return nil
}

func (c *Camera) Stop() error {
	c.mu.Lock()
	stream := c.stream
	c.stream = nil
	c.mu.Unlock()

	if stream == nil {
		return nil
	}

	c.logger.Info("camera stopped")
	return stream.Close()
}

func (c *Camera) IsOn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stream != nil
}

// CaptureFrame samples the current frame as JPEG. ok is false when the camera
// is off, the stream has no frame with dimensions yet, or sampling failed.
func (c *Camera) CaptureFrame(ctx context.Context) (frame []byte, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ctxzap.Warn(ctx, "frame capture panicked", zap.Any("panic", r))
			frame, ok = nil, false
		}
	}()

	c.mu.Lock()
	stream := c.stream
	c.mu.Unlock()

	if stream == nil {
		return nil, false
	}

	img, err := stream.Frame(ctx)
	if err != nil {
		ctxzap.Warn(ctx, "frame capture failed", zap.Error(err))
		return nil, false
	}
	if img == nil || img.Bounds().Empty() {
		return nil, false
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: c.quality}); err != nil {
		ctxzap.Warn(ctx, "frame encode failed", zap.Error(err))
		return nil, false
	}

	return buf.Bytes(), true
}
