package asr

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/avast/retry-go/v4"
	"github.com/futig/interview-mentor/internal/config"
	"github.com/futig/interview-mentor/internal/entity"
	"github.com/futig/interview-mentor/internal/integration/common"
	pkgRetry "github.com/futig/interview-mentor/internal/pkg/retry"
	pkghttp "github.com/futig/interview-mentor/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Connector struct {
	config    config.ASRConnectorConfig
	connector *pkghttp.Connector
	retry     pkgRetry.RetryConfig
	logger    *zap.Logger
}

func NewConnector(
	cfg config.ASRConnectorConfig,
	logger *zap.Logger,
	opts ...pkghttp.HttpOpts,
) *Connector {
	retryCfg := cfg.Retry
	if retryCfg.Attempts == 0 {
		// zero means unlimited to retry-go
		retryCfg.Attempts = 1
	}

	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger,
			append([]pkghttp.HttpOpts{pkghttp.WithAuthToken(cfg.Token)}, opts...)...),
		config: cfg,
		retry:  retryCfg,
		logger: logger,
	}
}

// TranscribeBytes uploads one recorded utterance and returns its text.
// An empty transcription is not an error; the caller decides what silence means.
func (c *Connector) TranscribeBytes(ctx context.Context, audioData []byte, filename string) (string, error) {
	if len(audioData) == 0 {
		return "", entity.ErrEmptyAudio
	}

	hash := sha256.Sum256(audioData)
	checksum := hex.EncodeToString(hash[:])

	ctxzap.Info(ctx, "transcribing audio via ASR service",
		zap.String("filename", filename),
		zap.String("checksum", checksum),
		zap.Int("size", len(audioData)),
		zap.String("language", c.config.Language),
	)

	prepareBody := func(writer *multipart.Writer) error {
		part, err := writer.CreateFormFile("file", filename)
		if err != nil {
			return fmt.Errorf("create form file: %w", err)
		}

		if _, err := part.Write(audioData); err != nil {
			return fmt.Errorf("write file content: %w", err)
		}

		if err := writer.WriteField("checksum", checksum); err != nil {
			return fmt.Errorf("write checksum field: %w", err)
		}

		if c.config.Language != "" {
			if err := writer.WriteField("language", c.config.Language); err != nil {
				return fmt.Errorf("write language field: %w", err)
			}
		}

		return nil
	}

	var reqOpts []pkghttp.RequestOpt
	if c.config.Language != "" {
		reqOpts = append(reqOpts, pkghttp.WithHeader("Accept-Language", c.config.Language))
	}

	var resp entity.ASRTranscribeResponse
	err := c.retry.Do(ctx, func() error {
		err := c.connector.DoMultipartRequest(ctx, http.MethodPost, c.config.TranscribeEndpoint, prepareBody, &resp, reqOpts...)
		if err != nil && !pkghttp.IsTransient(err) {
			return retry.Unrecoverable(err)
		}
		return err
	}, retry.OnRetry(func(n uint, err error) {
		ctxzap.Warn(ctx, "retrying transcription", zap.Uint("attempt", n+1), zap.Error(err))
	}))
	if err != nil {
		return "", fmt.Errorf("failed to transcribe audio: %w", err)
	}

	text := strings.TrimSpace(resp.Transcriptions)
	ctxzap.Info(ctx, "audio transcribed successfully", zap.Int("transcription_length", len(text)))

	return text, nil
}
