package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/futig/interview-mentor/internal/entity"
	"github.com/futig/interview-mentor/internal/usecase/interview"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Console is a line-oriented front end for one interview session. Commands
// start with a slash; any other line is submitted as an answer.
type Console struct {
	interview InterviewUsecase
	auth      AuthService
	camera    CameraControl
	logger    *zap.Logger

	in     io.Reader
	outMu  sync.Mutex
	out    io.Writer
	styles styles

	commands map[string]command
}

type Option func(*Console)

// WithAuth enables the sign up and sign in commands
func WithAuth(auth AuthService) Option {
	return func(c *Console) { c.auth = auth }
}

// WithCamera enables the camera toggle
func WithCamera(camera CameraControl) Option {
	return func(c *Console) { c.camera = camera }
}

func New(uc InterviewUsecase, in io.Reader, out io.Writer, logger *zap.Logger, opts ...Option) *Console {
	c := &Console{
		interview: uc,
		logger:    logger,
		in:        in,
		out:       out,
		styles:    newStyles(out),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.commands = c.registerCommands()
	return c
}

// Run reads commands until input ends, /quit is entered or ctx is cancelled
func (c *Console) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctxzap.ToContext(ctx, c.logger))
	defer cancel()

	c.println(c.styles.title.Render(MsgWelcome))
	if c.auth != nil {
		unsubscribe := c.auth.OnAuthChange(c.handleAuthChange)
		defer unsubscribe()

		if user := c.auth.CurrentUser(); user != nil {
			c.printf(MsgSignedIn+"\n", user.Email)
		} else {
			c.println(c.styles.system.Render(MsgSignInRequired))
		}
	}

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			return nil
		case line := <-lines:
			if quit := c.handleLine(ctx, line); quit {
				c.println(MsgBye)
				return nil
			}
		}
	}
}

// handleLine recovers from panics so one bad input does not end the session
func (c *Console) handleLine(ctx context.Context, line string) (quit bool) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			ctxzap.Error(ctx, "panic recovered in console handler",
				zap.Any("panic", r),
				zap.String("stack", string(debug.Stack())),
			)
			c.println(c.styles.err.Render(MsgUnexpectedError))
		}
	}()

	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	if !strings.HasPrefix(line, "/") {
		c.answer(ctx, line)
		return false
	}

	name, args := splitCommand(line)
	cmd, ok := c.commands[name]
	if !ok {
		c.printf(MsgUnknownCommand+"\n", name)
		return false
	}

	quit = cmd(ctx, args)
	ctxzap.Debug(ctx, "console command processed", zap.String("command", name), zap.Duration("duration", time.Since(start)))
	return quit
}

func splitCommand(line string) (string, []string) {
	fields := strings.Fields(line)
	return strings.ToLower(fields[0]), fields[1:]
}

func (c *Console) answer(ctx context.Context, text string) {
	if c.interview.Snapshot().Status != entity.SessionStatusRunning {
		c.println(c.styles.system.Render(MsgNotStarted))
		return
	}

	c.println(c.styles.system.Render(MsgThinking))
	if _, err := c.interview.SubmitAnswer(ctx, text); err != nil {
		c.reportError(ctx, err)
	}
}

// HandleEvent renders session events. It is safe to call from any goroutine.
func (c *Console) HandleEvent(e entity.Event) {
	switch e.Type {
	case entity.EventMessageAppended:
		if e.Message != nil {
			c.renderMessage(*e.Message)
		}
	case entity.EventStatusChanged:
		switch e.Status {
		case entity.SessionStatusComplete:
			c.println(c.styles.title.Render(MsgComplete))
		case entity.SessionStatusSetup:
			c.println(c.styles.system.Render(MsgReset))
		}
	case entity.EventTimerTick:
		if announceRemaining(e.Remaining) {
			c.println(c.styles.timer.Render("⏱ " + interview.FormatRemaining(e.Remaining) + " remaining"))
		}
	case entity.EventListening:
		if e.Listening {
			c.println(c.styles.notice.Render(MsgListening))
		}
	case entity.EventNotice:
		c.println(c.styles.notice.Render(e.Notice))
	}
}

// handleAuthChange reports sign-outs, including an expired sign-in
func (c *Console) handleAuthChange(user *entity.User) {
	if user == nil {
		c.println(c.styles.notice.Render(MsgSignedOut))
	}
}

func announceRemaining(seconds int) bool {
	return seconds > 0 && (seconds%60 == 0 || seconds == 30 || seconds == 10)
}

func (c *Console) renderMessage(m entity.Message) {
	switch {
	case m.Origin == entity.MessageOriginCandidate:
		c.println(c.styles.candidate.Render("You:") + " " + m.Text)
	case strings.HasPrefix(m.Text, interview.PostureMessagePrefix):
		body := strings.TrimPrefix(m.Text, interview.PostureMessagePrefix)
		c.println(c.styles.posture.Render("📸 Posture & Body Language Feedback:") + "\n" + body)
	default:
		c.println(c.styles.interviewer.Render("Interviewer:") + " " + m.Text)
	}
}

// reportError prints a rejection the user can act on. Unknown errors are logged in full.
func (c *Console) reportError(ctx context.Context, err error) {
	switch {
	case errors.Is(err, entity.ErrSignInRequired):
		c.println(c.styles.notice.Render(MsgSignInRequired))
	case errors.Is(err, entity.ErrSessionNotRunning):
		c.println(c.styles.system.Render(MsgNotStarted))
	case errors.Is(err, entity.ErrSessionSuperseded):
		ctxzap.Debug(ctx, "dropped result of a reset session")
	default:
		ctxzap.Warn(ctx, "console action failed", zap.Error(err))
		c.println(c.styles.err.Render("Error: " + err.Error()))
	}
}

func (c *Console) println(s string) {
	c.outMu.Lock()
	defer c.outMu.Unlock()
	fmt.Fprintln(c.out, s)
}

func (c *Console) printf(format string, args ...any) {
	c.outMu.Lock()
	defer c.outMu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}
