package entity

import "errors"

// Domain errors
var (
	// Setup errors
	ErrMissingRole           = errors.New("interview role is required")
	ErrMissingLevel          = errors.New("experience level is required")
	ErrInvalidLevel          = errors.New("invalid experience level")
	ErrSignInRequired        = errors.New("sign in required to start an interview")
	ErrSessionAlreadyStarted = errors.New("interview already started")

	// Turn errors
	ErrEmptyAnswer        = errors.New("answer is empty")
	ErrSessionNotRunning  = errors.New("interview is not running")
	ErrTurnInProgress     = errors.New("previous answer is still being processed")
	ErrSessionSuperseded  = errors.New("interview session was reset")
	ErrVoiceModeRequired  = errors.New("voice mode is not enabled")
	ErrSpeechUnavailable  = errors.New("speech recognition is not configured")
	ErrNoTranscript       = errors.New("interview transcript is empty")
	ErrUnsupportedFormat  = errors.New("unsupported report format")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserExists         = errors.New("user already exists")

	// Capability errors
	ErrCameraUnavailable     = errors.New("camera is unavailable")
	ErrMicrophoneUnsupported = errors.New("microphone capture is not supported")
	ErrEmptyAudio            = errors.New("empty audio data provided")
	ErrAudioTooLarge         = errors.New("audio recording is too large")
	ErrInvalidAudioFormat    = errors.New("invalid audio format")
)
