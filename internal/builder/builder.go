package builder

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/futig/interview-mentor/internal/auth"
	"github.com/futig/interview-mentor/internal/capability/camera"
	"github.com/futig/interview-mentor/internal/capability/speech"
	"github.com/futig/interview-mentor/internal/config"
	"github.com/futig/interview-mentor/internal/console"
	"github.com/futig/interview-mentor/internal/entity"
	"github.com/futig/interview-mentor/internal/integration/asr"
	"github.com/futig/interview-mentor/internal/integration/llm"
	pkglogger "github.com/futig/interview-mentor/internal/pkg/logger"
	"github.com/futig/interview-mentor/internal/pkg/validator"
	"github.com/futig/interview-mentor/internal/telemetry"
	"github.com/futig/interview-mentor/internal/usecase/interview"
	"go.uber.org/zap"
)

const serviceName = "interview-mentor"

// Build loads the configuration for environment and wires the console session
func Build(environment string, in io.Reader, out io.Writer) (*App, error) {
	cfg, err := config.LoadConfig(environment)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := pkglogger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	return BuildWithConfig(cfg, in, out, logger)
}

// BuildWithConfig wires the application from an already loaded configuration
func BuildWithConfig(cfg *config.Config, in io.Reader, out io.Writer, logger *zap.Logger) (*App, error) {
	logger.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.Bool("mocks", cfg.EnableMocks),
	)

	var shutdownTracer func(context.Context) error
	if cfg.TracingCfg.Enabled {
		// Spans go to stderr with the logs; stdout belongs to the console.
		shutdown, err := telemetry.InitTracer(cfg.TracingCfg, serviceName, os.Stderr, logger)
		if err != nil {
			return nil, fmt.Errorf("init tracer: %w", err)
		}
		shutdownTracer = shutdown
	}

	// Initialize external service connectors (with mock support)
	var llmConnector interview.LLMConnector
	var asrConnector speech.Transcriber

	if cfg.EnableMocks {
		logger.Info("Using mock connectors for external services")
		llmConnector = llm.NewMockConnector(logger)
		asrConnector = asr.NewMockConnector(logger)
	} else {
		logger.Info("Using real connectors for external services")
		llmConnector = llm.NewConnector(cfg.LLMConnectorCfg, logger)
		asrConnector = asr.NewConnector(cfg.ASRConnectorCfg, logger)
	}

	// Local capabilities
	recognizer := speech.NewRecognizer(speech.NewCommandAudioSource(cfg.MicrophoneCfg), asrConnector, logger,
		speech.WithAudioValidator(validator.NewAudioValidator(cfg.MicrophoneCfg)),
	)

	var cam *camera.Camera
	if cfg.CameraCfg.Enabled {
		cam = camera.New(camera.NewFFmpegDevice(cfg.CameraCfg, logger), &cfg.CameraCfg.Retry, cfg.CameraCfg.JPEGQuality, logger)
	}

	authProvider := auth.NewProvider(cfg.AuthCfg, logger)
	logger.Info("Capabilities initialized", zap.Bool("camera", cam != nil), zap.Bool("auth_required", cfg.AuthCfg.Required))

	fallback := cfg.FallbackQuestions
	if len(fallback) == 0 {
		fallback = config.DefaultFallbackQuestions
	}
	generator := interview.NewQuestionGenerator(llmConnector, cfg.InterviewCfg.QuestionCount, cfg.InterviewCfg.MinValidQuestions, fallback)

	// Events are rendered by the console, which is created after the usecase.
	var con *console.Console
	opts := []interview.Option{
		interview.WithRecognizer(recognizer),
		interview.WithReportConfig(cfg.ReportCfg),
		interview.WithEventHandler(func(e entity.Event) { con.HandleEvent(e) }),
	}
	if cam != nil {
		opts = append(opts, interview.WithCamera(cam))
	}
	if cfg.AuthCfg.Required {
		opts = append(opts, interview.WithAuth(authProvider))
	}

	interviewUC := interview.NewUsecase(llmConnector, generator, cfg.InterviewCfg, logger, opts...)
	logger.Info("Use cases initialized")

	consoleOpts := []console.Option{console.WithAuth(authProvider)}
	if cam != nil {
		consoleOpts = append(consoleOpts, console.WithCamera(cam))
	}
	con = console.New(interviewUC, in, out, logger, consoleOpts...)

	logger.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &App{
		console:        con,
		interview:      interviewUC,
		camera:         cam,
		shutdownTracer: shutdownTracer,
		logger:         logger,
	}, nil
}
