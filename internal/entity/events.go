package entity

// EventType identifies what changed in the interview session
type EventType string

const (
	EventMessageAppended EventType = "messageAppended"
	EventStatusChanged   EventType = "statusChanged"
	EventTimerTick       EventType = "timerTick"
	EventListening       EventType = "listening"
	EventNotice          EventType = "notice"
)

// Event is published by the interview usecase after the state it describes is applied
type Event struct {
	Type      EventType
	SessionID string
	Message   *Message
	Status    SessionStatus
	Remaining int
	Listening bool
	Notice    string
}
