package console

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

const (
	MsgWelcome = `Welcome to Interview Mentor.

Practice a mock interview for the role you want. Pick a level and a role, answer
each question by typing (or speaking in voice mode) and get feedback after every answer.
Type /help to see all commands.`

	MsgHelp = `Commands:
  /signup <email> <password> [name]   create an account and sign in
  /signin <email> <password>          sign in
  /signout                            sign out
  /whoami                             show the signed-in user
  /roles                              list suggested roles and levels
  /start <level> <role or number>     start an interview, e.g. /start mid Software Engineer
  /mode <text|voice>                  switch how you answer
  /listen                             record a spoken answer (voice mode)
  /stop                               cancel recording
  /camera <on|off>                    toggle the camera used for posture feedback
  /status                             show progress and remaining time
  /finish                             end the interview now
  /reset                              discard the interview and start over
  /export [md|pdf|docx]               save the transcript
  /quit                               leave
Anything else you type is sent as your answer.`

	MsgSignInRequired  = "Please sign in first: /signin <email> <password> or /signup <email> <password>."
	MsgThinking        = "Interviewer is thinking..."
	MsgListening       = "Listening... speak your answer, /stop to cancel."
	MsgComplete        = "Interview complete. Use /export to save the transcript or /reset to practice again."
	MsgReset           = "Session reset. Start a new interview with /start <level> <role>."
	MsgCameraOn        = "Camera is on. Posture feedback will follow your answers."
	MsgCameraOff       = "Camera is off."
	MsgCameraMissing   = "No camera is configured."
	MsgSignedOut       = "You are signed out."
	MsgNotStarted      = "No interview in progress. Start one with /start <level> <role>."
	MsgUnknownCommand  = "Unknown command %q. Type /help for the list."
	MsgStartUsage      = "Usage: /start <level> <role>. Levels: Entry, Mid, Senior, Executive."
	MsgExported        = "Transcript saved to %s"
	MsgStatus          = "%s | %s (%s) | question %d of %d | %s remaining | %s mode"
	MsgModeChanged     = "Answer mode: %s"
	MsgSignedIn        = "Signed in as %s"
	MsgBye             = "Goodbye!"
	MsgUnexpectedError = "Something went wrong. Please try again or /reset."
)

// styles are bound to the output writer so colour is dropped when it is not a terminal
type styles struct {
	interviewer lipgloss.Style
	candidate   lipgloss.Style
	posture     lipgloss.Style
	system      lipgloss.Style
	notice      lipgloss.Style
	err         lipgloss.Style
	timer       lipgloss.Style
	title       lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)

	return styles{
		interviewer: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF")),
		candidate: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FF00")),
		posture: r.NewStyle().
			Foreground(lipgloss.Color("#FF00FF")),
		system: r.NewStyle().
			Foreground(lipgloss.Color("#666666")),
		notice: r.NewStyle().
			Foreground(lipgloss.Color("#FFFF00")),
		err: r.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true),
		timer: r.NewStyle().
			Foreground(lipgloss.Color("#FFFF00")).
			Bold(true),
		title: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")),
	}
}
