package speech

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/futig/interview-mentor/internal/entity"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

var ErrNoSpeech = errors.New("no speech was recognized")

// State of one recognition attempt
type State int

const (
	StateIdle State = iota
	StateListening
	StateCompleted
	StateAborted
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateListening:
		return "listening"
	case StateCompleted:
		return "completed"
	case StateAborted:
		return "aborted"
	case StateErrored:
		return "errored"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// ErrorKind classifies a failed attempt. KindAborted is never shown to the user.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindUnsupported
	KindAborted
	KindOther
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindUnsupported:
		return "unsupported"
	case KindAborted:
		return "aborted"
	case KindOther:
		return "other"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Result is the terminal outcome of a Handle.
// Transcript is set only for StateCompleted, Kind and Err only for StateAborted and StateErrored.
type Result struct {
	State      State
	Transcript string
	Kind       ErrorKind
	Err        error
}

// AudioSource records a single utterance
type AudioSource interface {
	Record(ctx context.Context) ([]byte, error)
}

// Transcriber turns recorded audio into text
type Transcriber interface {
	TranscribeBytes(ctx context.Context, audioData []byte, filename string) (string, error)
}

// AudioValidator rejects recordings that should not be transcribed
type AudioValidator interface {
	ValidateAudio(audio []byte) error
}

// Handle owns one active recognition. It is released on result, error or Stop,
// whichever happens first.
type Handle struct {
	ID string

	cancel  context.CancelFunc
	aborted atomic.Bool
	done    chan struct{}
	once    sync.Once
	result  Result
}

// Done is closed once the handle reaches a terminal state
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the handle is released and returns its outcome
func (h *Handle) Wait() Result {
	<-h.done
	return h.result
}

func (h *Handle) State() State {
	select {
	case <-h.done:
		return h.result.State
	default:
		return StateListening
	}
}

func (h *Handle) finish(res Result) {
	h.once.Do(func() {
		if h.aborted.Load() {
			res = Result{State: StateAborted, Kind: KindAborted, Err: context.Canceled}
		}
		h.result = res
		close(h.done)
	})
}

// Recognizer allows at most one active Handle at a time
type Recognizer struct {
	source      AudioSource
	transcriber Transcriber
	validator   AudioValidator
	logger      *zap.Logger

	mu     sync.Mutex
	active *Handle
}

type RecognizerOption func(*Recognizer)

// WithAudioValidator checks every recording before it is transcribed
func WithAudioValidator(v AudioValidator) RecognizerOption {
	return func(r *Recognizer) { r.validator = v }
}

func NewRecognizer(source AudioSource, transcriber Transcriber, logger *zap.Logger, opts ...RecognizerOption) *Recognizer {
	r := &Recognizer{
		source:      source,
		transcriber: transcriber,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start begins listening. If a handle is already active it is returned with
// started=false and nothing new is created.
func (r *Recognizer) Start(ctx context.Context) (h *Handle, started bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active != nil {
		return r.active, false
	}

	listenCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	h = &Handle{
		ID:     uuid.NewString(),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	r.active = h

	go r.listen(ctxzap.ToContext(listenCtx, r.logger.With(zap.String("recognition_id", h.ID))), h)

	return h, true
}

// Stop cancels the active handle, if any. The handle resolves as Aborted.
func (r *Recognizer) Stop() bool {
	r.mu.Lock()
	h := r.active
	r.active = nil
	r.mu.Unlock()

	if h == nil {
		return false
	}

	h.aborted.Store(true)
	h.cancel()
	return true
}

// Listening reports whether a handle is active
func (r *Recognizer) Listening() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active != nil
}

func (r *Recognizer) release(h *Handle, res Result) {
	r.mu.Lock()
	if r.active == h {
		r.active = nil
	}
	r.mu.Unlock()

	h.cancel()
	h.finish(res)
}

func (r *Recognizer) listen(ctx context.Context, h *Handle) {
	ctxzap.Info(ctx, "speech recognition started")

	res := r.recognize(ctx)
	if h.aborted.Load() {
		res = Result{State: StateAborted, Kind: KindAborted, Err: context.Canceled}
	}

	fields := []zap.Field{zap.Stringer("state", res.State)}
	if res.Err != nil {
		fields = append(fields, zap.Stringer("kind", res.Kind), zap.Error(res.Err))
	}
	ctxzap.Info(ctx, "speech recognition finished", fields...)

	r.release(h, res)
}

func (r *Recognizer) recognize(ctx context.Context) Result {
	audio, err := r.source.Record(ctx)
	if ctx.Err() != nil {
		return Result{State: StateAborted, Kind: KindAborted, Err: ctx.Err()}
	}
	if err != nil {
		if errors.Is(err, entity.ErrMicrophoneUnsupported) {
			return Result{State: StateErrored, Kind: KindUnsupported, Err: err}
		}
		return Result{State: StateErrored, Kind: KindOther, Err: fmt.Errorf("record audio: %w", err)}
	}
	if len(audio) == 0 {
		return Result{State: StateErrored, Kind: KindOther, Err: ErrNoSpeech}
	}
	if r.validator != nil {
		if err := r.validator.ValidateAudio(audio); err != nil {
			return Result{State: StateErrored, Kind: KindOther, Err: fmt.Errorf("validate audio: %w", err)}
		}
	}

	text, err := r.transcriber.TranscribeBytes(ctx, audio, "utterance.wav")
	if ctx.Err() != nil {
		return Result{State: StateAborted, Kind: KindAborted, Err: ctx.Err()}
	}
	if err != nil {
		return Result{State: StateErrored, Kind: KindOther, Err: fmt.Errorf("transcribe: %w", err)}
	}
	if text == "" {
		return Result{State: StateErrored, Kind: KindOther, Err: ErrNoSpeech}
	}

	return Result{State: StateCompleted, Transcript: text}
}
