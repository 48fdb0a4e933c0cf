package llm

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

var questionCountRe = regexp.MustCompile(`Generate exactly (\d+)`)

// MockConnector returns canned completions shaped like the real service's
// answers, selected by the kind of prompt it receives.
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

func (m *MockConnector) CompleteText(ctx context.Context, prompt string) (string, error) {
	ctxzap.Info(ctx, "[MOCK] completing text prompt", zap.Int("prompt_length", len(prompt)))

	switch {
	case strings.Contains(prompt, "Generate exactly"):
		n := 6
		if match := questionCountRe.FindStringSubmatch(prompt); match != nil {
			if parsed, err := strconv.Atoi(match[1]); err == nil && parsed > 0 {
				n = parsed
			}
		}
		questions := make([]string, 0, n)
		for i := 1; i <= n; i++ {
			questions = append(questions, mockQuestions[(i-1)%len(mockQuestions)])
		}
		return strings.Join(questions, "\n"), nil

	case strings.Contains(prompt, "Then ask the next question:"):
		next := ""
		if idx := strings.LastIndex(prompt, "Then ask the next question:"); idx >= 0 {
			next = strings.Trim(strings.TrimSpace(prompt[idx+len("Then ask the next question:"):]), `"`)
		}
		return fmt.Sprintf("Good answer, you gave a concrete example and stayed on topic. "+
			"Try to quantify the impact next time. Next question: %s", next), nil

	case strings.Contains(prompt, "final assessment"):
		return "You communicated clearly and backed most answers with examples. " +
			"Your strongest moments were when you described trade-offs. " +
			"Work on keeping answers shorter and more structured. " +
			"Overall, a solid performance.", nil
	}

	return "Thank you, noted.", nil
}

func (m *MockConnector) CompleteWithImage(ctx context.Context, prompt string, image []byte) (string, error) {
	ctxzap.Info(ctx, "[MOCK] completing image prompt", zap.Int("image_size", len(image)))

	if len(image) == 0 {
		return "", fmt.Errorf("complete with image: empty image")
	}

	return "1. Sit upright with both shoulders relaxed.\n" +
		"2. Keep your eyes near the camera lens.\n" +
		"3. Keep your hands visible and still.", nil
}

var mockQuestions = []string{
	"Which project are you most proud of, and what was your part in it?",
	"How do you approach learning a new tool or technology?",
	"Can you describe a time you disagreed with a teammate and how you resolved it?",
	"How do you prioritise when several tasks are urgent?",
	"What does good collaboration look like to you?",
	"What would you like to improve about your current way of working?",
}
