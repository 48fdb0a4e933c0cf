package console

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/futig/interview-mentor/internal/entity"
	"github.com/futig/interview-mentor/internal/usecase/interview"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// command returns true when the console should exit
type command func(ctx context.Context, args []string) bool

func (c *Console) registerCommands() map[string]command {
	return map[string]command{
		"/help":    c.help,
		"/roles":   c.roles,
		"/signup":  c.signUp,
		"/signin":  c.signIn,
		"/signout": c.signOut,
		"/whoami":  c.whoAmI,
		"/start":   c.start,
		"/mode":    c.mode,
		"/listen":  c.listen,
		"/stop":    c.stop,
		"/camera":  c.cameraToggle,
		"/status":  c.status,
		"/finish":  c.finish,
		"/reset":   c.reset,
		"/export":  c.export,
		"/quit":    func(context.Context, []string) bool { return true },
		"/exit":    func(context.Context, []string) bool { return true },
	}
}

func (c *Console) help(context.Context, []string) bool {
	c.println(MsgHelp)
	return false
}

func (c *Console) roles(context.Context, []string) bool {
	var b strings.Builder
	b.WriteString("Roles:\n")
	for i, r := range entity.Roles {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, r)
	}
	b.WriteString("Levels:\n")
	for _, l := range entity.Levels {
		fmt.Fprintf(&b, "  %-10s %s\n", l, l.Description())
	}
	b.WriteString("Any other role name works too.")
	c.println(b.String())
	return false
}

func (c *Console) signUp(ctx context.Context, args []string) bool {
	if c.auth == nil {
		c.println("Accounts are not enabled.")
		return false
	}
	if len(args) < 2 {
		c.println("Usage: /signup <email> <password> [name]")
		return false
	}

	user, err := c.auth.SignUp(ctx, args[0], args[1], strings.Join(args[2:], " "))
	if err != nil {
		c.reportError(ctx, err)
		return false
	}
	c.printf(MsgSignedIn+"\n", user.Email)
	return false
}

func (c *Console) signIn(ctx context.Context, args []string) bool {
	if c.auth == nil {
		c.println("Accounts are not enabled.")
		return false
	}
	if len(args) != 2 {
		c.println("Usage: /signin <email> <password>")
		return false
	}

	user, err := c.auth.SignIn(ctx, args[0], args[1])
	if err != nil {
		c.reportError(ctx, err)
		return false
	}
	c.printf(MsgSignedIn+"\n", user.Email)
	return false
}

// signOut is confirmed by the auth change subscription
func (c *Console) signOut(ctx context.Context, _ []string) bool {
	if c.auth == nil {
		c.println(MsgSignedOut)
		return false
	}
	c.auth.SignOut(ctx)
	return false
}

func (c *Console) whoAmI(context.Context, []string) bool {
	if c.auth == nil {
		c.println("Accounts are not enabled.")
		return false
	}
	user := c.auth.CurrentUser()
	if user == nil {
		c.println(MsgSignedOut)
		return false
	}
	c.printf(MsgSignedIn+"\n", user.Email)
	return false
}

// parseRole accepts a catalogue number or a free-form role name
func parseRole(args []string) string {
	if len(args) == 1 {
		if n, err := strconv.Atoi(args[0]); err == nil && n >= 1 && n <= len(entity.Roles) {
			return entity.Roles[n-1]
		}
	}
	return strings.Join(args, " ")
}

func (c *Console) start(ctx context.Context, args []string) bool {
	if len(args) < 2 {
		c.println(MsgStartUsage)
		return false
	}

	c.println(c.styles.system.Render("Preparing your questions..."))
	if _, err := c.interview.StartInterview(ctx, parseRole(args[1:]), args[0]); err != nil {
		c.reportError(ctx, err)
	}
	return false
}

func (c *Console) mode(ctx context.Context, args []string) bool {
	if len(args) != 1 {
		c.println("Usage: /mode <text|voice>")
		return false
	}

	mode := entity.AnswerMode(strings.ToLower(args[0]))
	if err := c.interview.SetMode(ctx, mode); err != nil {
		c.reportError(ctx, err)
		return false
	}
	c.printf(MsgModeChanged+"\n", mode)
	return false
}

func (c *Console) listen(ctx context.Context, _ []string) bool {
	if err := c.interview.StartListening(ctx); err != nil {
		c.reportError(ctx, err)
	}
	return false
}

func (c *Console) stop(context.Context, []string) bool {
	if c.interview.StopListening() {
		c.println(c.styles.system.Render("Recording cancelled."))
	}
	return false
}

func (c *Console) cameraToggle(ctx context.Context, args []string) bool {
	if c.camera == nil {
		c.println(MsgCameraMissing)
		return false
	}

	on := !c.camera.IsOn()
	if len(args) == 1 {
		on = strings.EqualFold(args[0], "on")
	}

	if !on {
		if err := c.camera.Stop(); err != nil {
			ctxzap.Warn(ctx, "camera stop failed", zap.Error(err))
		}
		c.println(MsgCameraOff)
		return false
	}

	if err := c.camera.Start(ctx); err != nil {
		c.reportError(ctx, err)
		return false
	}
	c.println(MsgCameraOn)
	return false
}

func (c *Console) status(context.Context, []string) bool {
	s := c.interview.Snapshot()
	if s.Status == entity.SessionStatusSetup {
		c.println(MsgNotStarted)
		return false
	}

	remaining := 0
	if s.SecondsRemaining != nil {
		remaining = *s.SecondsRemaining
	}
	c.printf(MsgStatus+"\n",
		s.Status, s.Role, s.Level, s.CurrentIndex+1, len(s.Questions),
		interview.FormatRemaining(remaining), s.Mode,
	)
	return false
}

func (c *Console) finish(ctx context.Context, _ []string) bool {
	if err := c.interview.ForceFinish(ctx); err != nil {
		c.reportError(ctx, err)
	}
	return false
}

func (c *Console) reset(ctx context.Context, _ []string) bool {
	c.interview.Reset(ctx)
	return false
}

func (c *Console) export(ctx context.Context, args []string) bool {
	var format entity.ResultFormat
	if len(args) > 0 {
		f, ok := entity.ParseResultFormat(args[0])
		if !ok {
			c.println("Usage: /export [md|pdf|docx]")
			return false
		}
		format = f
	}

	path, err := c.interview.ExportReport(ctx, format)
	if err != nil {
		c.reportError(ctx, err)
		return false
	}
	c.printf(MsgExported+"\n", path)
	return false
}
