package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/futig/interview-mentor/internal/capability/speech"
	"github.com/futig/interview-mentor/internal/config"
	"github.com/futig/interview-mentor/internal/entity"
	"github.com/futig/interview-mentor/internal/pkg/formatter"
	"github.com/futig/interview-mentor/internal/pkg/logger"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	noticeSpeechUnsupported = "Speech recognition is not supported on this device. You can keep answering in text mode."
	noticeSpeechFailed      = "Speech recognition error, please try again or type your answer."
)

// TurnResult describes one processed answer. Posture is nil when no camera
// frame was available; otherwise it resolves independently of the turn.
type TurnResult struct {
	Candidate   entity.Message
	Interviewer entity.Message
	Fallback    bool
	Completed   bool
	Posture     *BestEffort[entity.Message]
}

// InterviewUsecase owns the interview Session and is the only place it is mutated
type InterviewUsecase struct {
	llm        LLMConnector
	generator  *QuestionGenerator
	camera     FrameSource
	recognizer SpeechRecognizer
	auth       AuthProvider
	formatters *formatter.Factory
	onEvent    EventHandler
	newTicker  TickerFactory
	cfg        config.InterviewConfig
	reportCfg  config.ReportConfig
	logger     *zap.Logger

	mu          sync.Mutex
	session     *entity.Session
	generation  uint64
	starting    bool
	turnPending bool
	timer       *Timer
	micNotified bool
}

type Option func(*InterviewUsecase)

func WithCamera(camera FrameSource) Option {
	return func(uc *InterviewUsecase) { uc.camera = camera }
}

func WithRecognizer(recognizer SpeechRecognizer) Option {
	return func(uc *InterviewUsecase) { uc.recognizer = recognizer }
}

// WithAuth gates StartInterview on a signed-in user
func WithAuth(auth AuthProvider) Option {
	return func(uc *InterviewUsecase) { uc.auth = auth }
}

func WithEventHandler(h EventHandler) Option {
	return func(uc *InterviewUsecase) { uc.onEvent = h }
}

func WithTickerFactory(f TickerFactory) Option {
	return func(uc *InterviewUsecase) { uc.newTicker = f }
}

func WithReportConfig(cfg config.ReportConfig) Option {
	return func(uc *InterviewUsecase) { uc.reportCfg = cfg }
}

// NewUsecase creates the interview orchestrator in Setup
func NewUsecase(
	llm LLMConnector,
	generator *QuestionGenerator,
	cfg config.InterviewConfig,
	logger *zap.Logger,
	opts ...Option,
) *InterviewUsecase {
	uc := &InterviewUsecase{
		llm:        llm,
		generator:  generator,
		formatters: formatter.NewFactory(),
		newTicker:  realTicker,
		cfg:        cfg,
		reportCfg:  config.ReportConfig{Dir: "reports", Format: string(entity.FormatMarkdown)},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(uc)
	}
	uc.session = newSetupSession(0, entity.AnswerModeText)
	return uc
}

func newSetupSession(generation uint64, mode entity.AnswerMode) *entity.Session {
	return &entity.Session{
		Generation: generation,
		Mode:       mode,
		Status:     entity.SessionStatusSetup,
	}
}

func newMessage(origin entity.MessageOrigin, text string) entity.Message {
	return entity.Message{
		ID:        uuid.NewString(),
		Origin:    origin,
		Text:      text,
		CreatedAt: time.Now(),
	}
}

// sessionContext attaches a logger tagged with the session identity
func (uc *InterviewUsecase) sessionContext(ctx context.Context, s *entity.Session) context.Context {
	return ctxzap.ToContext(ctx, uc.logger.With(
		zap.String("session_id", s.ID),
		zap.Uint64("generation", s.Generation),
		zap.Int("question_index", s.CurrentIndex),
	))
}

func (uc *InterviewUsecase) emit(events ...entity.Event) {
	if uc.onEvent == nil {
		return
	}
	for _, e := range events {
		uc.onEvent(e)
	}
}

func messageEvent(sessionID string, m entity.Message) entity.Event {
	return entity.Event{Type: entity.EventMessageAppended, SessionID: sessionID, Message: &m}
}

func statusEvent(sessionID string, status entity.SessionStatus) entity.Event {
	return entity.Event{Type: entity.EventStatusChanged, SessionID: sessionID, Status: status}
}

func noticeEvent(sessionID, notice string) entity.Event {
	return entity.Event{Type: entity.EventNotice, SessionID: sessionID, Notice: notice}
}

// Snapshot returns a copy of the current session
func (uc *InterviewUsecase) Snapshot() *entity.Session {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.session.Clone()
}

// StartInterview moves Setup to Running: questions are generated, the greeting
// with the first question is appended and the countdown starts.
func (uc *InterviewUsecase) StartInterview(ctx context.Context, role, level string) (*entity.Session, error) {
	ctx = logger.WithAction(ctxzap.ToContext(ctx, uc.logger), "start_interview")

	if uc.auth != nil && uc.auth.CurrentUser() == nil {
		return nil, entity.ErrSignInRequired
	}

	role = strings.TrimSpace(role)
	if role == "" {
		return nil, entity.ErrMissingRole
	}
	lvl, err := entity.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	uc.mu.Lock()
	if uc.session.Status != entity.SessionStatusSetup || uc.starting {
		uc.mu.Unlock()
		return nil, entity.ErrSessionAlreadyStarted
	}
	uc.starting = true
	gen := uc.generation
	uc.mu.Unlock()

	ctx = logger.AddFields(ctx, zap.Uint64("generation", gen), zap.String("role", role), zap.String("level", string(lvl)))
	questions := uc.generator.Generate(ctx, role, lvl)

	uc.mu.Lock()
	if uc.generation != gen {
		uc.mu.Unlock()
		ctxzap.Info(ctx, "discarding generated questions for a reset session")
		return nil, entity.ErrSessionSuperseded
	}
	uc.starting = false

	now := time.Now()
	total := uc.cfg.SecondsPerQuestion * len(questions)
	welcome := newMessage(entity.MessageOriginInterviewer, greeting(role, lvl, questions))

	s := uc.session
	s.ID = uuid.NewString()
	s.Role = role
	s.Level = lvl
	s.Questions = questions
	s.CurrentIndex = 0
	s.Transcript = []entity.Message{welcome}
	s.Status = entity.SessionStatusRunning
	s.SecondsRemaining = &total
	s.StartedAt = &now
	s.CompletedAt = nil

	uc.timer = NewTimer(total,
		func(remaining int) { uc.tick(gen, remaining) },
		func() { uc.expire(gen) },
		uc.newTicker,
	)
	uc.timer.Start()

	snapshot := s.Clone()
	uc.mu.Unlock()

	ctxzap.Info(uc.sessionContext(ctx, snapshot), "interview started",
		zap.Int("questions", len(questions)),
		zap.Int("seconds_total", total),
	)

	uc.emit(statusEvent(snapshot.ID, entity.SessionStatusRunning), messageEvent(snapshot.ID, welcome))

	return snapshot, nil
}

// SubmitAnswer appends the candidate answer and the interviewer response.
// A failed model call is replaced by fallback text; the turn still advances.
func (uc *InterviewUsecase) SubmitAnswer(ctx context.Context, text string) (*TurnResult, error) {
	answer := strings.TrimSpace(text)
	if answer == "" {
		return nil, entity.ErrEmptyAnswer
	}

	uc.mu.Lock()
	s := uc.session
	if s.Status != entity.SessionStatusRunning {
		uc.mu.Unlock()
		return nil, entity.ErrSessionNotRunning
	}
	if uc.turnPending {
		uc.mu.Unlock()
		return nil, entity.ErrTurnInProgress
	}
	uc.turnPending = true

	candidate := newMessage(entity.MessageOriginCandidate, answer)
	s.Transcript = append(s.Transcript, candidate)

	gen := s.Generation
	sessionID := s.ID
	index := s.CurrentIndex
	isLast := index == len(s.Questions)-1

	var prompt, next string
	if isLast {
		prompt = finalPrompt(s.Role, s.Level, answeredPairs(s))
	} else {
		next = s.Questions[index+1]
		prompt = feedbackPrompt(s.Questions[index], answer, next)
	}
	ctx = logger.WithAction(uc.sessionContext(ctx, s), "submit_answer")
	uc.mu.Unlock()

	uc.emit(messageEvent(sessionID, candidate))

	reply, err := uc.llm.CompleteText(ctx, prompt)
	fallback := err != nil || strings.TrimSpace(reply) == ""
	if fallback {
		ctxzap.Warn(ctx, "feedback request failed, using fallback text", zap.Error(err), zap.Bool("final", isLast))
		if isLast {
			reply = FallbackCompletion
		} else {
			reply = fallbackFeedback(next)
		}
	}

	interviewer := newMessage(entity.MessageOriginInterviewer, strings.TrimSpace(reply))

	uc.mu.Lock()
	if uc.generation != gen {
		uc.mu.Unlock()
		ctxzap.Info(ctx, "discarding response for a reset session")
		return nil, entity.ErrSessionSuperseded
	}
	uc.turnPending = false

	s.Transcript = append(s.Transcript, interviewer)

	events := []entity.Event{messageEvent(sessionID, interviewer)}
	completed := false
	if s.Status == entity.SessionStatusRunning {
		if isLast {
			uc.completeLocked()
			completed = true
			events = append(events, statusEvent(sessionID, entity.SessionStatusComplete))
		} else {
			s.CurrentIndex++
		}
	}
	uc.mu.Unlock()

	ctxzap.Info(ctx, "turn processed", zap.Bool("fallback", fallback), zap.Bool("completed", completed))
	uc.emit(events...)

	return &TurnResult{
		Candidate:   candidate,
		Interviewer: interviewer,
		Fallback:    fallback,
		Completed:   completed,
		Posture:     uc.requestPosture(ctx, gen, sessionID),
	}, nil
}

// requestPosture is issued only after the primary response is appended
func (uc *InterviewUsecase) requestPosture(ctx context.Context, gen uint64, sessionID string) *BestEffort[entity.Message] {
	if uc.camera == nil {
		return nil
	}
	frame, ok := uc.camera.CaptureFrame(ctx)
	if !ok {
		return nil
	}

	ctx = logger.WithAction(context.WithoutCancel(ctx), "posture_feedback")
	timeout := uc.cfg.EnrichmentTimeout

	return launchBestEffort(ctx, "posture_feedback", func(ctx context.Context) (entity.Message, error) {
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		return uc.posture(ctx, gen, sessionID, frame)
	})
}

func (uc *InterviewUsecase) posture(ctx context.Context, gen uint64, sessionID string, frame []byte) (entity.Message, error) {
	feedback, err := uc.llm.CompleteWithImage(ctx, PosturePrompt, frame)
	if err != nil {
		return entity.Message{}, fmt.Errorf("posture feedback: %w", err)
	}
	feedback = strings.TrimSpace(feedback)
	if feedback == "" {
		return entity.Message{}, errors.New("posture feedback: empty reply")
	}

	msg := newMessage(entity.MessageOriginInterviewer, postureMessage(feedback))

	uc.mu.Lock()
	if uc.generation != gen {
		uc.mu.Unlock()
		return entity.Message{}, entity.ErrSessionSuperseded
	}
	uc.session.Transcript = append(uc.session.Transcript, msg)
	uc.mu.Unlock()

	uc.emit(messageEvent(sessionID, msg))
	return msg, nil
}

// ForceFinish ends a running interview early. It is a no-op once Complete.
func (uc *InterviewUsecase) ForceFinish(ctx context.Context) error {
	uc.mu.Lock()
	switch uc.session.Status {
	case entity.SessionStatusSetup:
		uc.mu.Unlock()
		return entity.ErrSessionNotRunning
	case entity.SessionStatusComplete:
		uc.mu.Unlock()
		return nil
	}
	uc.completeLocked()
	snapshot := uc.session.Clone()
	uc.mu.Unlock()

	ctxzap.Info(uc.sessionContext(ctx, snapshot), "interview finished early",
		zap.Int("answered", len(answeredPairs(snapshot))),
	)
	uc.emit(statusEvent(snapshot.ID, entity.SessionStatusComplete))
	return nil
}

// completeLocked must be called with uc.mu held
func (uc *InterviewUsecase) completeLocked() {
	now := time.Now()
	uc.session.Status = entity.SessionStatusComplete
	uc.session.CompletedAt = &now
	if uc.timer != nil {
		uc.timer.Stop()
	}
	if uc.recognizer != nil {
		uc.recognizer.Stop()
	}
}

func (uc *InterviewUsecase) tick(gen uint64, remaining int) {
	uc.mu.Lock()
	if uc.generation != gen || uc.session.Status != entity.SessionStatusRunning {
		uc.mu.Unlock()
		return
	}
	uc.session.SecondsRemaining = &remaining
	sessionID := uc.session.ID
	uc.mu.Unlock()

	uc.emit(entity.Event{Type: entity.EventTimerTick, SessionID: sessionID, Remaining: remaining})
}

func (uc *InterviewUsecase) expire(gen uint64) {
	uc.mu.Lock()
	if uc.generation != gen || uc.session.Status != entity.SessionStatusRunning {
		uc.mu.Unlock()
		return
	}
	uc.completeLocked()
	snapshot := uc.session.Clone()
	uc.mu.Unlock()

	ctxzap.Info(uc.sessionContext(context.Background(), snapshot), "interview time is up",
		zap.Int("answered", len(answeredPairs(snapshot))),
	)
	uc.emit(statusEvent(snapshot.ID, entity.SessionStatusComplete))
}

// Reset discards the session and returns to Setup. In-flight responses for
// the old session are dropped when they arrive.
func (uc *InterviewUsecase) Reset(ctx context.Context) {
	uc.mu.Lock()
	old := uc.session
	uc.generation++
	if uc.timer != nil {
		uc.timer.Stop()
		uc.timer = nil
	}
	if uc.recognizer != nil {
		uc.recognizer.Stop()
	}
	uc.starting = false
	uc.turnPending = false
	uc.session = newSetupSession(uc.generation, old.Mode)
	uc.mu.Unlock()

	ctxzap.Info(uc.sessionContext(ctx, old), "interview reset")
	uc.emit(statusEvent(old.ID, entity.SessionStatusSetup))
}

// Close stops the countdown and any active recognition without emitting
// events. Responses still in flight are dropped.
func (uc *InterviewUsecase) Close() {
	uc.mu.Lock()
	uc.generation++
	if uc.timer != nil {
		uc.timer.Stop()
	}
	uc.mu.Unlock()

	if uc.recognizer != nil {
		uc.recognizer.Stop()
	}
	uc.logger.Debug("interview usecase closed")
}

// SetMode switches between typed and spoken answers. Leaving voice mode
// cancels an active recognition.
func (uc *InterviewUsecase) SetMode(ctx context.Context, mode entity.AnswerMode) error {
	if err := mode.Validate(); err != nil {
		return err
	}

	uc.mu.Lock()
	uc.session.Mode = mode
	uc.mu.Unlock()

	if mode == entity.AnswerModeText && uc.recognizer != nil && uc.recognizer.Stop() {
		ctxzap.Info(ctx, "voice capture cancelled by mode switch")
	}
	return nil
}

// StartListening begins a voice answer. A second call while listening is a
// no-op. A recognized utterance is submitted as the answer automatically.
func (uc *InterviewUsecase) StartListening(ctx context.Context) error {
	uc.mu.Lock()
	s := uc.session
	mode, status, gen, sessionID := s.Mode, s.Status, s.Generation, s.ID
	uc.mu.Unlock()

	if mode != entity.AnswerModeVoice {
		return entity.ErrVoiceModeRequired
	}
	if status != entity.SessionStatusRunning {
		return entity.ErrSessionNotRunning
	}
	if uc.recognizer == nil {
		uc.notifyMicOnce(sessionID)
		return entity.ErrSpeechUnavailable
	}

	handle, started := uc.recognizer.Start(ctx)
	if !started {
		return nil
	}

	ctx = ctxzap.ToContext(context.WithoutCancel(ctx), uc.logger.With(zap.String("session_id", sessionID)))
	ctx = logger.WithAction(ctx, "voice_answer")
	uc.emit(entity.Event{Type: entity.EventListening, SessionID: sessionID, Listening: true})

	go uc.awaitRecognition(ctx, gen, sessionID, handle)
	return nil
}

// StopListening cancels the active recognition. The abort is not reported as an error.
func (uc *InterviewUsecase) StopListening() bool {
	if uc.recognizer == nil {
		return false
	}
	return uc.recognizer.Stop()
}

func (uc *InterviewUsecase) awaitRecognition(ctx context.Context, gen uint64, sessionID string, h *speech.Handle) {
	res := h.Wait()
	uc.emit(entity.Event{Type: entity.EventListening, SessionID: sessionID, Listening: false})

	switch res.State {
	case speech.StateCompleted:
		uc.mu.Lock()
		current := uc.generation
		uc.mu.Unlock()
		if current != gen {
			return
		}
		if _, err := uc.SubmitAnswer(ctx, res.Transcript); err != nil {
			ctxzap.Warn(ctx, "voice answer was not submitted", zap.Error(err))
			if errors.Is(err, entity.ErrTurnInProgress) {
				uc.emit(noticeEvent(sessionID, "Please wait for the interviewer to respond before answering."))
			}
		}

	case speech.StateErrored:
		ctxzap.Warn(ctx, "speech recognition failed", zap.Stringer("kind", res.Kind), zap.Error(res.Err))
		if res.Kind == speech.KindUnsupported {
			uc.notifyMicOnce(sessionID)
			return
		}
		uc.emit(noticeEvent(sessionID, noticeSpeechFailed))

	case speech.StateAborted:
		ctxzap.Debug(ctx, "speech recognition aborted")
	}
}

func (uc *InterviewUsecase) notifyMicOnce(sessionID string) {
	uc.mu.Lock()
	already := uc.micNotified
	uc.micNotified = true
	uc.mu.Unlock()

	if !already {
		uc.emit(noticeEvent(sessionID, noticeSpeechUnsupported))
	}
}

// currentTimer is used by tests to drive the countdown deterministically
func (uc *InterviewUsecase) currentTimer() *Timer {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.timer
}
