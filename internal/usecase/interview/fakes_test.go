package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/futig/interview-mentor/internal/config"
	"github.com/futig/interview-mentor/internal/entity"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var errServiceDown = errors.New("HTTP 503: service unavailable")

var sixQuestions = []string{
	"How do you design a service that must handle ten times today's load?",
	"Tell me about a bug that took you more than a day to find?",
	"How do you review a teammate's pull request?",
	"When would you choose a relational database over a document store?",
	"Describe a time you pushed back on a product requirement?",
	"What would you improve in your team's release process?",
}

// scriptedLLM answers prompts by kind and records every call
type scriptedLLM struct {
	mu sync.Mutex

	questionsReply string
	questionsErr   error
	feedbackErr    error
	imageErr       error
	imageReply     string

	// gate, when set, holds feedback and final-assessment calls until closed
	gate chan struct{}

	prompts    []string
	imageCalls int
}

func newScriptedLLM() *scriptedLLM {
	return &scriptedLLM{
		questionsReply: strings.Join(sixQuestions, "\n"),
		imageReply:     "Sit upright and keep eye contact with the lens.",
	}
}

func (l *scriptedLLM) CompleteText(ctx context.Context, prompt string) (string, error) {
	l.mu.Lock()
	l.prompts = append(l.prompts, prompt)
	gate := l.gate
	l.mu.Unlock()

	if strings.Contains(prompt, "Generate exactly") {
		l.mu.Lock()
		defer l.mu.Unlock()
		return l.questionsReply, l.questionsErr
	}

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.feedbackErr != nil {
		return "", l.feedbackErr
	}
	if strings.Contains(prompt, "final assessment") {
		return "Overall you gave structured, concrete answers. Keep it up.", nil
	}
	return fmt.Sprintf("Nice example. Reply #%d.", len(l.prompts)), nil
}

func (l *scriptedLLM) CompleteWithImage(_ context.Context, _ string, image []byte) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.imageCalls++
	if len(image) == 0 {
		return "", errors.New("no image")
	}
	return l.imageReply, l.imageErr
}

func (l *scriptedLLM) countPrompts(substr string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, p := range l.prompts {
		if strings.Contains(p, substr) {
			n++
		}
	}
	return n
}

type fakeCamera struct {
	frame []byte
}

func (c *fakeCamera) CaptureFrame(context.Context) ([]byte, bool) {
	if len(c.frame) == 0 {
		return nil, false
	}
	return c.frame, true
}

type fakeAuth struct {
	user *entity.User
}

func (a *fakeAuth) CurrentUser() *entity.User {
	return a.user
}

// manualTicker never fires; tests drive the timer through Tick
func manualTicker(time.Duration) (<-chan time.Time, func()) {
	return nil, func() {}
}

type eventLog struct {
	mu     sync.Mutex
	events []entity.Event
}

func (e *eventLog) handle(ev entity.Event) {
	e.mu.Lock()
	e.events = append(e.events, ev)
	e.mu.Unlock()
}

func (e *eventLog) count(typ entity.EventType) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, ev := range e.events {
		if ev.Type == typ {
			n++
		}
	}
	return n
}

func (e *eventLog) notices() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []string
	for _, ev := range e.events {
		if ev.Type == entity.EventNotice {
			out = append(out, ev.Notice)
		}
	}
	return out
}

func testInterviewConfig() config.InterviewConfig {
	return config.InterviewConfig{
		QuestionCount:      6,
		MinValidQuestions:  3,
		SecondsPerQuestion: 60,
		EnrichmentTimeout:  time.Second,
	}
}

func newObservedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return zap.New(core), logs
}

func newTestUsecase(llm LLMConnector, opts ...Option) *InterviewUsecase {
	log, _ := newObservedLogger()
	cfg := testInterviewConfig()
	gen := NewQuestionGenerator(llm, cfg.QuestionCount, cfg.MinValidQuestions, config.DefaultFallbackQuestions)
	return NewUsecase(llm, gen, cfg, log, append([]Option{WithTickerFactory(manualTicker)}, opts...)...)
}

func mustStart(t testing.TB, uc *InterviewUsecase) *entity.Session {
	t.Helper()
	s, err := uc.StartInterview(context.Background(), "Software Engineer", "Mid")
	if err != nil {
		t.Fatalf("StartInterview() error = %v", err)
	}
	return s
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func interviewerMessages(s *entity.Session) []entity.Message {
	var out []entity.Message
	for _, m := range s.Transcript {
		if m.Origin == entity.MessageOriginInterviewer {
			out = append(out, m)
		}
	}
	return out
}
