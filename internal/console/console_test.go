package console

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/futig/interview-mentor/internal/auth"
	"github.com/futig/interview-mentor/internal/config"
	"github.com/futig/interview-mentor/internal/entity"
	"github.com/futig/interview-mentor/internal/integration/llm"
	"github.com/futig/interview-mentor/internal/usecase/interview"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func idleTicker(time.Duration) (<-chan time.Time, func()) {
	return nil, func() {}
}

type fakeCamera struct {
	on       bool
	startErr error
}

func (c *fakeCamera) Start(context.Context) error {
	if c.startErr != nil {
		return c.startErr
	}
	c.on = true
	return nil
}

func (c *fakeCamera) Stop() error {
	c.on = false
	return nil
}

func (c *fakeCamera) IsOn() bool { return c.on }

type harness struct {
	console *Console
	out     *bytes.Buffer
	uc      *interview.InterviewUsecase
}

func newHarness(t *testing.T, script string, opts ...Option) *harness {
	t.Helper()

	logger := zap.NewNop()
	provider := auth.NewProvider(config.AuthConfig{Required: true, SessionTTL: time.Hour}, logger, auth.WithHashCost(bcrypt.MinCost))
	mock := llm.NewMockConnector(logger)
	cfg := config.InterviewConfig{QuestionCount: 6, MinValidQuestions: 3, SecondsPerQuestion: 60, EnrichmentTimeout: time.Second}

	var con *Console
	uc := interview.NewUsecase(mock,
		interview.NewQuestionGenerator(mock, cfg.QuestionCount, cfg.MinValidQuestions, config.DefaultFallbackQuestions),
		cfg, logger,
		interview.WithAuth(provider),
		interview.WithTickerFactory(idleTicker),
		interview.WithReportConfig(config.ReportConfig{Dir: t.TempDir(), Format: "markdown"}),
		interview.WithEventHandler(func(e entity.Event) { con.HandleEvent(e) }),
	)

	out := &bytes.Buffer{}
	con = New(uc, strings.NewReader(script), out, logger, append([]Option{WithAuth(provider)}, opts...)...)
	return &harness{console: con, out: out, uc: uc}
}

func (h *harness) run(t *testing.T) string {
	t.Helper()
	if err := h.console.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return h.out.String()
}

func assertContains(t *testing.T, out string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(out, w) {
			t.Errorf("output missing %q\n--- output ---\n%s", w, out)
		}
	}
}

func TestConsole_InterviewFlow(t *testing.T) {
	script := strings.Join([]string{
		"/start mid Software Engineer",
		"/signup ada@example.com secret-pass Ada",
		"/start mid 1",
		"I led the migration of our billing service",
		"/status",
		"/finish",
		"/export md",
		"/quit",
		"never read",
	}, "\n")

	h := newHarness(t, script)
	out := h.run(t)

	assertContains(t, out,
		MsgSignInRequired,
		"Signed in as ada@example.com",
		"Interviewer: Hello! I'm your AI interviewer. Today we'll be conducting a Mid level interview for a Software Engineer position.",
		"You: I led the migration of our billing service",
		"Next question: How do you approach learning a new tool or technology?",
		"RUNNING | Software Engineer (Mid) | question 2 of 6 | 06:00 remaining | text mode",
		MsgComplete,
		"Transcript saved to ",
		MsgBye,
	)

	if s := h.uc.Snapshot(); s.Status != entity.SessionStatusComplete || len(s.Transcript) != 3 {
		t.Errorf("session = status %s transcript %d", s.Status, len(s.Transcript))
	}
}

func TestConsole_RejectsAnswersOutsideInterview(t *testing.T) {
	h := newHarness(t, "hello there\n/finish\n/status\n")
	out := h.run(t)

	if n := strings.Count(out, MsgNotStarted); n != 3 {
		t.Errorf("not-started message printed %d times, want 3\n%s", n, out)
	}
}

func TestConsole_UnknownCommandAndUsage(t *testing.T) {
	h := newHarness(t, "/dance\n/start\n/mode\n/mode shout\n/export odt\n/signin only-email\n")
	out := h.run(t)

	assertContains(t, out,
		`Unknown command "/dance"`,
		MsgStartUsage,
		"Usage: /mode <text|voice>",
		"Error: unknown answer mode: shout",
		"Usage: /export [md|pdf|docx]",
		"Usage: /signin <email> <password>",
	)
}

func TestConsole_SignOutIsReported(t *testing.T) {
	h := newHarness(t, "/signup ada@example.com secret-pass\n/signout\n/whoami\n/signin ada@example.com wrong-pass\n")
	out := h.run(t)

	if n := strings.Count(out, MsgSignedOut); n != 2 {
		t.Errorf("signed-out message printed %d times, want 2\n%s", n, out)
	}
	assertContains(t, out, "Error: "+entity.ErrInvalidCredentials.Error())
}

func TestConsole_RolesAndHelp(t *testing.T) {
	h := newHarness(t, "/roles\n/HELP\n")
	out := h.run(t)

	assertContains(t, out, "8. Management Consultant", "Senior     Senior Level (6+ years)", "/export [md|pdf|docx]")
}

func TestConsole_CameraToggle(t *testing.T) {
	cam := &fakeCamera{}
	h := newHarness(t, "/camera\n/camera on\n/camera off\n", WithCamera(cam))
	out := h.run(t)

	if n := strings.Count(out, MsgCameraOn); n != 2 {
		t.Errorf("camera on printed %d times, want 2", n)
	}
	assertContains(t, out, MsgCameraOff)
	if cam.on {
		t.Error("camera left on")
	}
}

func TestConsole_CameraUnavailable(t *testing.T) {
	cam := &fakeCamera{startErr: entity.ErrCameraUnavailable}
	h := newHarness(t, "/camera on\n", WithCamera(cam))
	out := h.run(t)

	assertContains(t, out, "Error: "+entity.ErrCameraUnavailable.Error())
}

func TestConsole_VoiceWithoutRecognizer(t *testing.T) {
	h := newHarness(t, "/signup ada@example.com secret-pass\n/start senior 3\n/listen\n/mode voice\n/listen\n/listen\n")
	out := h.run(t)

	assertContains(t, out,
		"Error: "+entity.ErrVoiceModeRequired.Error(),
		"Answer mode: voice",
		"Speech recognition is not supported on this device.",
	)
	if n := strings.Count(out, "Speech recognition is not supported"); n != 1 {
		t.Errorf("unsupported notice printed %d times, want 1", n)
	}
}

type panickingUsecase struct {
	InterviewUsecase
}

func (panickingUsecase) Snapshot() *entity.Session {
	return &entity.Session{Status: entity.SessionStatusRunning}
}

func (panickingUsecase) SubmitAnswer(context.Context, string) (*interview.TurnResult, error) {
	panic("boom")
}

func TestConsole_RecoversFromPanic(t *testing.T) {
	out := &bytes.Buffer{}
	con := New(panickingUsecase{}, strings.NewReader("first answer\n/help\n"), out, zap.NewNop())

	if err := con.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	assertContains(t, out.String(), MsgUnexpectedError, "Commands:")
}

func TestConsole_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	con := New(panickingUsecase{}, blockingReader{}, &bytes.Buffer{}, zap.NewNop())
	if err := con.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
}

type blockingReader struct{}

func (blockingReader) Read([]byte) (int, error) {
	select {}
}

func TestHandleEvent_RendersPostureAndTimer(t *testing.T) {
	out := &bytes.Buffer{}
	con := New(panickingUsecase{}, strings.NewReader(""), out, zap.NewNop())

	posture := entity.Message{Origin: entity.MessageOriginInterviewer, Text: interview.PostureMessagePrefix + "Sit upright."}
	con.HandleEvent(entity.Event{Type: entity.EventMessageAppended, Message: &posture})
	con.HandleEvent(entity.Event{Type: entity.EventTimerTick, Remaining: 120})
	con.HandleEvent(entity.Event{Type: entity.EventTimerTick, Remaining: 119})
	con.HandleEvent(entity.Event{Type: entity.EventNotice, Notice: "mic busy"})

	got := out.String()
	assertContains(t, got, "📸 Posture & Body Language Feedback:\nSit upright.", "⏱ 02:00 remaining", "mic busy")
	if strings.Contains(got, "01:59") {
		t.Error("every tick was announced")
	}
	if strings.Contains(got, "Interviewer:") {
		t.Error("posture feedback rendered as a regular message")
	}
}

func TestReportError_Superseded(t *testing.T) {
	out := &bytes.Buffer{}
	con := New(panickingUsecase{}, strings.NewReader(""), out, zap.NewNop())

	con.reportError(context.Background(), errors.Join(errors.New("late"), entity.ErrSessionSuperseded))
	if out.Len() != 0 {
		t.Errorf("superseded result was shown: %q", out.String())
	}
}
