package entity

import (
	"fmt"
	"strings"
	"time"
)

// SessionStatus represents the current state of the interview session
type SessionStatus string

const (
	SessionStatusSetup    SessionStatus = "SETUP"    // Role and level not chosen yet
	SessionStatusRunning  SessionStatus = "RUNNING"  // Questions known, collecting answers
	SessionStatusComplete SessionStatus = "COMPLETE" // Final assessment delivered or interview finished early
)

type Level string

const (
	LevelEntry     Level = "Entry"
	LevelMid       Level = "Mid"
	LevelSenior    Level = "Senior"
	LevelExecutive Level = "Executive"
)

// Levels lists experience levels in the order they are offered to the candidate
var Levels = []Level{LevelEntry, LevelMid, LevelSenior, LevelExecutive}

func (l Level) Validate() error {
	switch l {
	case LevelEntry, LevelMid, LevelSenior, LevelExecutive:
		return nil
	case "":
		return ErrMissingLevel
	default:
		return fmt.Errorf("%w: %s", ErrInvalidLevel, l)
	}
}

// Description returns the label shown next to the level when choosing it
func (l Level) Description() string {
	switch l {
	case LevelEntry:
		return "Entry Level (0-2 years)"
	case LevelMid:
		return "Mid Level (3-5 years)"
	case LevelSenior:
		return "Senior Level (6+ years)"
	case LevelExecutive:
		return "Executive Level"
	default:
		return string(l)
	}
}

// ParseLevel accepts the level name case-insensitively
func ParseLevel(s string) (Level, error) {
	for _, l := range Levels {
		if strings.EqualFold(string(l), strings.TrimSpace(s)) {
			return l, nil
		}
	}
	return Level(s), Level(strings.TrimSpace(s)).Validate()
}

// Roles is the catalogue offered on the setup screen. Any non-empty role is accepted.
var Roles = []string{
	"Software Engineer",
	"Product Manager",
	"Data Scientist",
	"Marketing Manager",
	"Sales Representative",
	"Business Analyst",
	"UX/UI Designer",
	"Management Consultant",
}

type AnswerMode string

const (
	AnswerModeText  AnswerMode = "text"
	AnswerModeVoice AnswerMode = "voice"
)

func (m AnswerMode) Validate() error {
	switch m {
	case AnswerModeText, AnswerModeVoice:
		return nil
	default:
		return fmt.Errorf("unknown answer mode: %s", m)
	}
}

type MessageOrigin string

const (
	MessageOriginCandidate   MessageOrigin = "candidate"
	MessageOriginInterviewer MessageOrigin = "interviewer"
)

// Message is one transcript entry. Messages are never mutated after creation.
type Message struct {
	ID        string        `json:"id"`
	Origin    MessageOrigin `json:"origin"`
	Text      string        `json:"text"`
	CreatedAt time.Time     `json:"created_at"`
}

// Session is the interview aggregate owned by the interview usecase
type Session struct {
	ID               string        `json:"session_id"`
	Generation       uint64        `json:"generation"`
	Role             string        `json:"role"`
	Level            Level         `json:"level"`
	Questions        []string      `json:"questions"`
	CurrentIndex     int           `json:"current_index"`
	Transcript       []Message     `json:"transcript"`
	Mode             AnswerMode    `json:"mode"`
	Status           SessionStatus `json:"status"`
	SecondsRemaining *int          `json:"seconds_remaining,omitempty"`
	StartedAt        *time.Time    `json:"started_at,omitempty"`
	CompletedAt      *time.Time    `json:"completed_at,omitempty"`
}

// Clone returns a deep copy safe to hand outside the usecase lock
func (s *Session) Clone() *Session {
	c := *s
	c.Questions = append([]string(nil), s.Questions...)
	c.Transcript = append([]Message(nil), s.Transcript...)
	if s.SecondsRemaining != nil {
		v := *s.SecondsRemaining
		c.SecondsRemaining = &v
	}
	return &c
}

// CurrentQuestion returns the question the candidate is answering, empty outside Running
func (s *Session) CurrentQuestion() string {
	if s.Status != SessionStatusRunning || s.CurrentIndex >= len(s.Questions) {
		return ""
	}
	return s.Questions[s.CurrentIndex]
}

// User is the signed-in identity exposed by the auth collaborator
type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name,omitempty"`
	SignedInAt  time.Time `json:"signed_in_at"`
}
