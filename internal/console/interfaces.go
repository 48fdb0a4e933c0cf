package console

import (
	"context"

	"github.com/futig/interview-mentor/internal/entity"
	"github.com/futig/interview-mentor/internal/usecase/interview"
)

type InterviewUsecase interface {
	StartInterview(ctx context.Context, role, level string) (*entity.Session, error)
	SubmitAnswer(ctx context.Context, text string) (*interview.TurnResult, error)
	ForceFinish(ctx context.Context) error
	Reset(ctx context.Context)
	SetMode(ctx context.Context, mode entity.AnswerMode) error
	StartListening(ctx context.Context) error
	StopListening() bool
	Snapshot() *entity.Session
	ExportReport(ctx context.Context, format entity.ResultFormat) (string, error)
}

type AuthService interface {
	SignUp(ctx context.Context, email, password, displayName string) (*entity.User, error)
	SignIn(ctx context.Context, email, password string) (*entity.User, error)
	SignOut(ctx context.Context)
	CurrentUser() *entity.User
	OnAuthChange(cb func(*entity.User)) (unsubscribe func())
}

type CameraControl interface {
	Start(ctx context.Context) error
	Stop() error
	IsOn() bool
}
