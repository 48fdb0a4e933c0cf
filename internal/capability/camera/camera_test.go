package camera

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/futig/interview-mentor/internal/config"
	"github.com/futig/interview-mentor/internal/entity"
	pkgRetry "github.com/futig/interview-mentor/internal/pkg/retry"
	"go.uber.org/zap/zaptest"
)

type fakeStream struct {
	frame  image.Image
	err    error
	panics bool
	closed atomic.Int32
}

func (s *fakeStream) Frame(context.Context) (image.Image, error) {
	if s.panics {
		panic("decoder blew up")
	}
	return s.frame, s.err
}

func (s *fakeStream) Close() error {
	s.closed.Add(1)
	return nil
}

type fakeDevice struct {
	stream   *fakeStream
	failures int
	opens    atomic.Int32
}

func (d *fakeDevice) Open(context.Context) (Stream, error) {
	n := int(d.opens.Add(1))
	if n <= d.failures {
		return nil, errors.New("device busy")
	}
	return d.stream, nil
}

func fastRetry() *pkgRetry.RetryConfig {
	return &pkgRetry.RetryConfig{Attempts: 3, Delay: time.Millisecond, MaxDelay: time.Millisecond}
}

func solidFrame(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 120, B: 40, A: 255})
		}
	}
	return img
}

func TestCamera_StartIsIdempotent(t *testing.T) {
	dev := &fakeDevice{stream: &fakeStream{}}
	cam := New(dev, fastRetry(), 85, zaptest.NewLogger(t))

	for i := 0; i < 3; i++ {
		if err := cam.Start(context.Background()); err != nil {
			t.Fatalf("Start() error = %v", err)
		}
	}
	if n := dev.opens.Load(); n != 1 {
		t.Errorf("device opened %d times, want 1", n)
	}
	if !cam.IsOn() {
		t.Error("IsOn() = false after Start")
	}
}

func TestCamera_StartRetriesTransientFailures(t *testing.T) {
	dev := &fakeDevice{stream: &fakeStream{}, failures: 2}
	cam := New(dev, fastRetry(), 85, zaptest.NewLogger(t))

	if err := cam.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if n := dev.opens.Load(); n != 3 {
		t.Errorf("device opened %d times, want 3", n)
	}
}

func TestCamera_StartUnavailable(t *testing.T) {
	dev := &fakeDevice{stream: &fakeStream{}, failures: 10}
	cam := New(dev, fastRetry(), 85, zaptest.NewLogger(t))

	err := cam.Start(context.Background())
	if !errors.Is(err, entity.ErrCameraUnavailable) {
		t.Fatalf("Start() error = %v, want ErrCameraUnavailable", err)
	}
	if cam.IsOn() {
		t.Error("IsOn() = true after failed Start")
	}
}

func TestCamera_StopIsIdempotent(t *testing.T) {
	stream := &fakeStream{}
	cam := New(&fakeDevice{stream: stream}, fastRetry(), 85, zaptest.NewLogger(t))

	if err := cam.Stop(); err != nil {
		t.Fatalf("Stop() before Start error = %v", err)
	}

	if err := cam.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	cam.Stop()
	cam.Stop()

	if n := stream.closed.Load(); n != 1 {
		t.Errorf("stream closed %d times, want 1", n)
	}
	if cam.IsOn() {
		t.Error("IsOn() = true after Stop")
	}

	// Restart after stop reopens the device.
	if err := cam.Start(context.Background()); err != nil {
		t.Fatalf("restart error = %v", err)
	}
	if !cam.IsOn() {
		t.Error("IsOn() = false after restart")
	}
}

func TestCamera_CaptureFrame(t *testing.T) {
	tests := []struct {
		name   string
		start  bool
		stream *fakeStream
		wantOK bool
	}{
		{name: "camera off", start: false, stream: &fakeStream{frame: solidFrame(8, 6)}},
		{name: "no frame yet", start: true, stream: &fakeStream{}},
		{name: "zero dimensions", start: true, stream: &fakeStream{frame: image.NewRGBA(image.Rect(0, 0, 0, 0))}},
		{name: "stream error", start: true, stream: &fakeStream{err: errors.New("read failed")}},
		{name: "stream panics", start: true, stream: &fakeStream{panics: true}},
		{name: "live frame", start: true, stream: &fakeStream{frame: solidFrame(8, 6)}, wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := New(&fakeDevice{stream: tt.stream}, fastRetry(), 90, zaptest.NewLogger(t))
			if tt.start {
				if err := cam.Start(context.Background()); err != nil {
					t.Fatalf("Start() error = %v", err)
				}
			}

			frame, ok := cam.CaptureFrame(context.Background())
			if ok != tt.wantOK {
				t.Fatalf("CaptureFrame() ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				if frame != nil {
					t.Errorf("frame = %d bytes, want nil", len(frame))
				}
				return
			}

			img, err := jpeg.Decode(bytes.NewReader(frame))
			if err != nil {
				t.Fatalf("captured frame is not a JPEG: %v", err)
			}
			if b := img.Bounds(); b.Dx() != 8 || b.Dy() != 6 {
				t.Errorf("frame bounds = %v, want 8x6", b)
			}
		})
	}
}

func TestFFmpegDevice_MissingBinary(t *testing.T) {
	dev := NewFFmpegDevice(config.CameraConfig{
		FFmpegPath: "no-such-ffmpeg-binary",
		Device:     "/dev/video0",
		Width:      1280,
		Height:     720,
	}, zaptest.NewLogger(t))

	cam := New(dev, fastRetry(), 85, zaptest.NewLogger(t))
	if err := cam.Start(context.Background()); !errors.Is(err, entity.ErrCameraUnavailable) {
		t.Fatalf("Start() error = %v, want ErrCameraUnavailable", err)
	}
}

func TestFFmpegDevice_Args(t *testing.T) {
	dev := NewFFmpegDevice(config.CameraConfig{FFmpegPath: "ffmpeg", Device: "/dev/video2", Width: 640, Height: 480}, zaptest.NewLogger(t))

	joined := strings.Join(dev.args(), " ")
	for _, want := range []string{"-f v4l2", "-video_size 640x480", "-i /dev/video2", "-pix_fmt rgb24"} {
		if !strings.Contains(joined, want) {
			t.Errorf("args %q missing %q", joined, want)
		}
	}
}

func newTestStream(t *testing.T, w, h int) *ffmpegStream {
	t.Helper()
	return &ffmpegStream{width: w, height: h, done: make(chan struct{}), logger: zaptest.NewLogger(t)}
}

func TestFFmpegStream_FrameAfterStreamEnds(t *testing.T) {
	s := newTestStream(t, 2, 2)

	// One full frame, then ffmpeg exits.
	s.read(bytes.NewReader(make([]byte, 2*2*3)))
	<-s.done

	img, err := s.Frame(context.Background())
	if !errors.Is(err, entity.ErrCameraUnavailable) {
		t.Errorf("Frame() error = %v, want %v", err, entity.ErrCameraUnavailable)
	}
	if img != nil {
		t.Error("Frame() returned the last frame of an ended stream")
	}
}

func TestFFmpegStream_LiveFrame(t *testing.T) {
	s := newTestStream(t, 2, 2)

	pr, pw := io.Pipe()
	go s.read(pr)

	frame := make([]byte, 2*2*3)
	for i := range frame {
		frame[i] = 0x7F
	}
	if _, err := pw.Write(frame); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	// The reader stores the frame after Write returns, so poll briefly.
	deadline := time.Now().Add(2 * time.Second)
	var img image.Image
	for img == nil && time.Now().Before(deadline) {
		var err error
		if img, err = s.Frame(context.Background()); err != nil {
			t.Fatalf("Frame() error = %v", err)
		}
		if img == nil {
			time.Sleep(5 * time.Millisecond)
		}
	}
	if img == nil {
		t.Fatal("no frame decoded from a live stream")
	}
	if r, g, b, _ := img.At(1, 1).RGBA(); r>>8 != 0x7F || g>>8 != 0x7F || b>>8 != 0x7F {
		t.Errorf("pixel = %d,%d,%d, want 127 each", r>>8, g>>8, b>>8)
	}

	pw.Close()
	<-s.done
	if img, _ := s.Frame(context.Background()); img != nil {
		t.Error("Frame() still returns a frame after the stream closed")
	}
}

func TestCamera_CaptureFrameAfterDeviceLost(t *testing.T) {
	s := newTestStream(t, 2, 2)
	s.read(bytes.NewReader(make([]byte, 2*2*3)))

	cam := New(deviceFunc(func(context.Context) (Stream, error) { return s, nil }), fastRetry(), 90, zaptest.NewLogger(t))
	if err := cam.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if frame, ok := cam.CaptureFrame(context.Background()); ok || frame != nil {
		t.Errorf("CaptureFrame() = %d bytes, ok %v; want none once the stream ended", len(frame), ok)
	}
}

type deviceFunc func(context.Context) (Stream, error)

func (f deviceFunc) Open(ctx context.Context) (Stream, error) { return f(ctx) }
