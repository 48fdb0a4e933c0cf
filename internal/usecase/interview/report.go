package interview

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/futig/interview-mentor/internal/entity"
	"github.com/futig/interview-mentor/internal/pkg/logger"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// BuildReport turns a session into its renderable transcript
func BuildReport(s *entity.Session) *entity.Report {
	answered := len(answeredPairs(s))

	report := &entity.Report{
		Title:    fmt.Sprintf("Interview: %s (%s)", s.Role, s.Level),
		Subtitle: fmt.Sprintf("%d of %d questions answered", answered, len(s.Questions)),
		Summary: []string{
			"Status: " + string(s.Status),
			"Answer mode: " + string(s.Mode),
		},
		Entries: make([]entity.ReportEntry, 0, len(s.Transcript)),
	}
	if s.StartedAt != nil {
		report.Summary = append(report.Summary, "Started: "+s.StartedAt.Format(time.RFC1123))
	}
	if s.CompletedAt != nil {
		report.Summary = append(report.Summary, "Completed: "+s.CompletedAt.Format(time.RFC1123))
	}

	for _, m := range s.Transcript {
		speaker := "Interviewer"
		if m.Origin == entity.MessageOriginCandidate {
			speaker = "Candidate"
		}
		report.Entries = append(report.Entries, entity.ReportEntry{Speaker: speaker, Text: m.Text, At: m.CreatedAt})
	}

	return report
}

// RenderReport renders the current transcript in the requested format
func (uc *InterviewUsecase) RenderReport(format entity.ResultFormat) ([]byte, string, error) {
	s := uc.Snapshot()
	if len(s.Transcript) == 0 {
		return nil, "", entity.ErrNoTranscript
	}

	f, err := uc.formatters.Create(format)
	if err != nil {
		return nil, "", err
	}

	data, err := f.Format(BuildReport(s))
	if err != nil {
		return nil, "", fmt.Errorf("render %s report: %w", format, err)
	}

	return data, f.FileExtension(), nil
}

// ExportReport writes the transcript into the report directory and returns the file path.
// An empty format uses the configured default.
func (uc *InterviewUsecase) ExportReport(ctx context.Context, format entity.ResultFormat) (string, error) {
	ctx = logger.WithAction(ctxzap.ToContext(ctx, uc.logger), "export_report")

	if format == "" {
		format = entity.ResultFormat(uc.reportCfg.Format)
	}

	data, ext, err := uc.RenderReport(format)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(uc.reportCfg.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}

	s := uc.Snapshot()
	name := fmt.Sprintf("interview-%s-%s%s", shortID(s.ID), time.Now().Format("20060102-150405"), ext)
	path := filepath.Join(uc.reportCfg.Dir, name)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}

	ctxzap.Info(ctx, "report exported", zap.String("path", path), zap.String("format", string(format)), zap.Int("size", len(data)))
	return path, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	if id == "" {
		return "draft"
	}
	return id
}
