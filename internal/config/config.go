package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	pkgRetry "github.com/futig/interview-mentor/internal/pkg/retry"
	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	// External service configurations
	LLMConnectorCfg LLMConnectorConfig `envPrefix:"LLM_"`
	ASRConnectorCfg ASRConnectorConfig `envPrefix:"ASR_"`

	// Local capabilities
	CameraCfg     CameraConfig     `envPrefix:"CAMERA_"`
	MicrophoneCfg MicrophoneConfig `envPrefix:"MIC_"`

	// Interview flow configuration
	InterviewCfg InterviewConfig `envPrefix:"INTERVIEW_"`

	AuthCfg   AuthConfig   `envPrefix:"AUTH_"`
	ReportCfg ReportConfig `envPrefix:"REPORT_"`

	// Logging configuration
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	TracingCfg TracingConfig `envPrefix:"TRACING_"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Fallback interview questions (loaded from JSON file)
	FallbackQuestions []string

	// Environment (set from flag, not from env var)
	Environment string
}

type LLMConnectorConfig struct {
	HTTPClientConfig
	Deployment  string  `env:"DEPLOYMENT"`
	APIVersion  string  `env:"API_VERSION" envDefault:"2024-02-15-preview"`
	Model       string  `env:"MODEL" envDefault:"gpt-4o"`
	MaxTokens   int     `env:"MAX_TOKENS" envDefault:"800"`
	Temperature float32 `env:"TEMPERATURE" envDefault:"0.7"`
}

// ChatEndpoint returns the deployment-scoped chat completions path
func (c LLMConnectorConfig) ChatEndpoint() string {
	return fmt.Sprintf("/openai/deployments/%s/chat/completions?api-version=%s", c.Deployment, c.APIVersion)
}

type ASRConnectorConfig struct {
	HTTPClientConfig
	TranscribeEndpoint string `env:"TRANSCRIBE_ENDPOINT" envDefault:"/transcribe"`
	Language           string `env:"LANGUAGE" envDefault:"en-US"`

	Retry pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"60s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"10s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"60s"`
	Token                 string        `env:"TOKEN"`
	Url                   string        `env:"SERVICE_URL"`
}

type CameraConfig struct {
	Enabled     bool                 `env:"ENABLED" envDefault:"true"`
	Device      string               `env:"DEVICE" envDefault:"/dev/video0"`
	Width       int                  `env:"WIDTH" envDefault:"1280"`
	Height      int                  `env:"HEIGHT" envDefault:"720"`
	FFmpegPath  string               `env:"FFMPEG_PATH" envDefault:"ffmpeg"`
	JPEGQuality int                  `env:"JPEG_QUALITY" envDefault:"85"`
	Retry       pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type MicrophoneConfig struct {
	Command     string        `env:"COMMAND" envDefault:"arecord"`
	MaxDuration time.Duration `env:"MAX_DURATION" envDefault:"30s"`
	SampleRate  int           `env:"SAMPLE_RATE" envDefault:"16000"`

	// 10 MB, about five minutes of 16 kHz mono audio
	MaxAudioSize int64 `env:"MAX_AUDIO_SIZE" envDefault:"10485760"`
}

type InterviewConfig struct {
	QuestionCount      int           `env:"QUESTION_COUNT" envDefault:"6"`
	MinValidQuestions  int           `env:"MIN_VALID_QUESTIONS" envDefault:"3"`
	SecondsPerQuestion int           `env:"SECONDS_PER_QUESTION" envDefault:"60"`
	EnrichmentTimeout  time.Duration `env:"ENRICHMENT_TIMEOUT" envDefault:"45s"`
}

type AuthConfig struct {
	Required   bool          `env:"REQUIRED" envDefault:"true"`
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"12h"`
}

// TracingConfig controls the span exporter; spans share stderr with the logs
type TracingConfig struct {
	Enabled     bool    `env:"ENABLED" envDefault:"false"`
	SampleRatio float64 `env:"SAMPLE_RATIO" envDefault:"1"`
	Pretty      bool    `env:"PRETTY" envDefault:"false"`
}

type ReportConfig struct {
	Dir    string `env:"DIR" envDefault:"reports"`
	Format string `env:"FORMAT" envDefault:"markdown"`
}

// fallbackQuestions represents the structure of fallback_questions.json
type fallbackQuestions struct {
	Questions []string `json:"questions"`
}

// LoadConfig reads .env.<environment> (if present) and the process environment
func LoadConfig(environment string) (*Config, error) {
	envFile := getEnvFile(environment)
	// Try to load env file, but don't fail if it's missing.
	// Variables may be exported by the shell instead.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg, err := Parse()
	if err != nil {
		return nil, err
	}

	cfg.Environment = environment

	// Load fallback questions from JSON file
	if err := loadFallbackQuestions(cfg, filepath.Join("internal", "config", "fallback_questions.json")); err != nil {
		return nil, fmt.Errorf("load fallback questions: %w", err)
	}

	return cfg, nil
}

// Parse builds the configuration from the process environment only
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if cfg.CameraCfg.Retry.Attempts == 0 {
		cfg.CameraCfg.Retry = *pkgRetry.DefaultRetryConfig()
	}
	if cfg.ASRConnectorCfg.Retry.Attempts == 0 {
		cfg.ASRConnectorCfg.Retry = *pkgRetry.DefaultRetryConfig()
	}

	// Validate configuration
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	var errors []string

	if !cfg.EnableMocks {
		if cfg.LLMConnectorCfg.Url == "" {
			errors = append(errors, "LLM_SERVICE_URL is required unless ENABLE_MOCKS is set")
		}
		if cfg.LLMConnectorCfg.Deployment == "" {
			errors = append(errors, "LLM_DEPLOYMENT is required unless ENABLE_MOCKS is set")
		}
	}

	if cfg.InterviewCfg.QuestionCount < 1 || cfg.InterviewCfg.QuestionCount > 20 {
		errors = append(errors, fmt.Sprintf("INTERVIEW_QUESTION_COUNT must be between 1 and 20, got %d", cfg.InterviewCfg.QuestionCount))
	}

	if cfg.InterviewCfg.MinValidQuestions < 1 || cfg.InterviewCfg.MinValidQuestions > cfg.InterviewCfg.QuestionCount {
		errors = append(errors, fmt.Sprintf("INTERVIEW_MIN_VALID_QUESTIONS must be between 1 and INTERVIEW_QUESTION_COUNT(%d), got %d",
			cfg.InterviewCfg.QuestionCount, cfg.InterviewCfg.MinValidQuestions))
	}

	if cfg.InterviewCfg.SecondsPerQuestion < 1 || cfg.InterviewCfg.SecondsPerQuestion > 3600 {
		errors = append(errors, fmt.Sprintf("INTERVIEW_SECONDS_PER_QUESTION must be between 1 and 3600, got %d", cfg.InterviewCfg.SecondsPerQuestion))
	}

	if cfg.TracingCfg.SampleRatio < 0 || cfg.TracingCfg.SampleRatio > 1 {
		errors = append(errors, fmt.Sprintf("TRACING_SAMPLE_RATIO must be between 0 and 1, got %g", cfg.TracingCfg.SampleRatio))
	}

	if cfg.CameraCfg.JPEGQuality < 1 || cfg.CameraCfg.JPEGQuality > 100 {
		errors = append(errors, fmt.Sprintf("CAMERA_JPEG_QUALITY must be between 1 and 100, got %d", cfg.CameraCfg.JPEGQuality))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// DefaultFallbackQuestions are asked when question generation fails or yields too few questions
var DefaultFallbackQuestions = []string{
	"Tell me about yourself and your background.",
	"Why are you interested in this position?",
	"What are your greatest strengths?",
	"Describe a challenging situation you faced and how you handled it.",
	"Where do you see yourself in 5 years?",
	"Do you have any questions for me?",
}

func loadFallbackQuestions(cfg *Config, path string) error {
	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg.FallbackQuestions = DefaultFallbackQuestions
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read fallback questions file: %w", err)
	}

	if len(data) == 0 {
		return fmt.Errorf("fallback questions file is empty: %s", path)
	}

	var questionsData fallbackQuestions
	if err := json.Unmarshal(data, &questionsData); err != nil {
		return fmt.Errorf("parse fallback questions JSON: %w", err)
	}

	questions := make([]string, 0, len(questionsData.Questions))
	for _, q := range questionsData.Questions {
		if q = strings.TrimSpace(q); q != "" {
			questions = append(questions, q)
		}
	}

	if len(questions) == 0 {
		return fmt.Errorf("fallback questions file contains no questions: %s", path)
	}

	// A fallback interview must be as long as the shortest generated one.
	if len(questions) < cfg.InterviewCfg.MinValidQuestions {
		return fmt.Errorf("fallback questions file has %d questions, INTERVIEW_MIN_VALID_QUESTIONS requires %d: %s",
			len(questions), cfg.InterviewCfg.MinValidQuestions, path)
	}

	cfg.FallbackQuestions = questions
	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development", "":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
