package interview

import (
	"context"
	"strings"

	"github.com/futig/interview-mentor/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// QuestionGenerator asks the model for role-specific questions and falls back
// to a fixed list instead of failing.
type QuestionGenerator struct {
	llm      LLMConnector
	count    int
	minValid int
	fallback []string
}

func NewQuestionGenerator(llm LLMConnector, count, minValid int, fallback []string) *QuestionGenerator {
	if count < 1 {
		count = 6
	}
	if minValid < 1 || minValid > count {
		minValid = min(3, count)
	}
	return &QuestionGenerator{
		llm:      llm,
		count:    count,
		minValid: minValid,
		fallback: fallback,
	}
}

// Generate never fails. The result is non-empty and at most count long.
func (g *QuestionGenerator) Generate(ctx context.Context, role string, level entity.Level) []string {
	raw, err := g.llm.CompleteText(ctx, questionsPrompt(role, level, g.count))
	if err != nil {
		ctxzap.Warn(ctx, "question generation failed, using fallback questions", zap.Error(err))
		return g.fallbackQuestions()
	}

	questions := parseQuestions(raw, g.count)
	if len(questions) < g.minValid {
		ctxzap.Warn(ctx, "too few questions generated, using fallback questions",
			zap.Int("parsed", len(questions)),
			zap.Int("min_valid", g.minValid),
		)
		return g.fallbackQuestions()
	}

	ctxzap.Info(ctx, "questions generated", zap.Int("count", len(questions)))
	return questions
}

func (g *QuestionGenerator) fallbackQuestions() []string {
	n := min(len(g.fallback), g.count)
	return append([]string(nil), g.fallback[:n]...)
}

// parseQuestions keeps trimmed non-empty lines that contain a question mark, up to limit
func parseQuestions(raw string, limit int) []string {
	questions := make([]string, 0, limit)
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !strings.Contains(line, "?") {
			continue
		}
		questions = append(questions, line)
		if len(questions) == limit {
			break
		}
	}
	return questions
}
