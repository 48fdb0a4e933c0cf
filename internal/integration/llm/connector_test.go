package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/futig/interview-mentor/internal/config"
	"github.com/futig/interview-mentor/internal/entity"
	"github.com/futig/interview-mentor/internal/pkg/testutil"
	pkghttp "github.com/futig/interview-mentor/pkg/http"
	"go.uber.org/zap/zaptest"
)

// captureTransport records what actually leaves the connector before the recorder answers
type captureTransport struct {
	next http.RoundTripper

	mu     sync.Mutex
	apiKey string
	body   []byte
}

func (c *captureTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	c.mu.Lock()
	c.apiKey = req.Header.Get("api-key")
	if req.GetBody != nil {
		if rc, err := req.GetBody(); err == nil {
			c.body, _ = io.ReadAll(rc)
			rc.Close()
		}
	}
	c.mu.Unlock()

	return c.next.RoundTrip(req)
}

func (c *captureTransport) request(t *testing.T) entity.LLMChatRequest {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()

	var req entity.LLMChatRequest
	if err := json.Unmarshal(c.body, &req); err != nil {
		t.Fatalf("decode captured body: %v", err)
	}
	return req
}

func testConfig() config.LLMConnectorConfig {
	return config.LLMConnectorConfig{
		HTTPClientConfig: config.HTTPClientConfig{
			Url:   "https://mentor.openai.azure.com",
			Token: "test-key",
		},
		Deployment:  "gpt-4o",
		APIVersion:  "2024-02-15-preview",
		Model:       "gpt-4o",
		MaxTokens:   800,
		Temperature: 0.7,
	}
}

func newReplayConnector(t *testing.T, cassette string) (*Connector, *captureTransport) {
	t.Helper()
	capture := &captureTransport{next: testutil.NewVCRRecorder(t, cassette)}
	return NewConnector(testConfig(), zaptest.NewLogger(t), pkghttp.WithBaseTransport(capture)), capture
}

func TestConnector_CompleteText(t *testing.T) {
	c, capture := newReplayConnector(t, "llm_complete_text")

	reply, err := c.CompleteText(context.Background(), "Generate exactly 3 interview questions")
	if err != nil {
		t.Fatalf("CompleteText() error = %v", err)
	}

	lines := strings.Split(reply, "\n")
	if len(lines) != 3 {
		t.Fatalf("reply has %d lines, want 3: %q", len(lines), reply)
	}
	if lines[0] != "Walk me through a system you designed end to end." {
		t.Errorf("first line = %q", lines[0])
	}

	if capture.apiKey != "test-key" {
		t.Errorf("api-key header = %q, want %q", capture.apiKey, "test-key")
	}

	req := capture.request(t)
	if req.MaxTokens != 800 {
		t.Errorf("max_tokens = %d, want 800", req.MaxTokens)
	}
	if len(req.Messages) != 1 || req.Messages[0].Role != entity.ChatRoleUser {
		t.Fatalf("unexpected messages %+v", req.Messages)
	}
	if content, _ := req.Messages[0].Content.(string); content != "Generate exactly 3 interview questions" {
		t.Errorf("content = %v", req.Messages[0].Content)
	}
}

func TestConnector_CompleteWithImage(t *testing.T) {
	c, capture := newReplayConnector(t, "llm_complete_with_image")

	jpeg := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}
	reply, err := c.CompleteWithImage(context.Background(), "Analyze this candidate's posture", jpeg)
	if err != nil {
		t.Fatalf("CompleteWithImage() error = %v", err)
	}
	if !strings.HasPrefix(reply, "1. Sit upright") {
		t.Errorf("reply = %q", reply)
	}

	req := capture.request(t)
	parts, ok := req.Messages[0].Content.([]any)
	if !ok || len(parts) != 2 {
		t.Fatalf("content = %#v, want two parts", req.Messages[0].Content)
	}
	imagePart, _ := parts[1].(map[string]any)
	imageURL, _ := imagePart["image_url"].(map[string]any)
	url, _ := imageURL["url"].(string)
	if !strings.HasPrefix(url, "data:image/jpeg;base64,") {
		t.Errorf("image url = %q, want jpeg data url", url)
	}
}

func TestConnector_CompleteWithImageRejectsEmptyImage(t *testing.T) {
	c := NewConnector(testConfig(), zaptest.NewLogger(t))

	if _, err := c.CompleteWithImage(context.Background(), "posture", nil); err == nil {
		t.Fatal("CompleteWithImage() with no image should fail")
	}
}

func TestConnector_ServiceError(t *testing.T) {
	c, _ := newReplayConnector(t, "llm_service_error")

	_, err := c.CompleteText(context.Background(), "anything")
	var httpErr *pkghttp.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("CompleteText() error = %v, want *HTTPError", err)
	}
	if httpErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("StatusCode = %d, want 429", httpErr.StatusCode)
	}
}

func TestConnector_EmptyChoices(t *testing.T) {
	c, _ := newReplayConnector(t, "llm_empty_choices")

	_, err := c.CompleteText(context.Background(), "anything")
	if !errors.Is(err, ErrEmptyCompletion) {
		t.Fatalf("CompleteText() error = %v, want ErrEmptyCompletion", err)
	}
}

func TestDataURL(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	if got := DataURL(png); !strings.HasPrefix(got, "data:image/png;base64,") {
		t.Errorf("DataURL(png) = %q", got)
	}

	if got := DataURL([]byte("not an image")); !strings.HasPrefix(got, "data:image/jpeg;base64,") {
		t.Errorf("DataURL(text) = %q, want jpeg fallback", got)
	}
}

func TestMockConnector(t *testing.T) {
	m := NewMockConnector(zaptest.NewLogger(t))
	ctx := context.Background()

	questions, err := m.CompleteText(ctx, "You are an experienced HR interviewer. Generate exactly 4 interview questions")
	if err != nil {
		t.Fatalf("CompleteText() error = %v", err)
	}
	lines := strings.Split(questions, "\n")
	if len(lines) != 4 {
		t.Errorf("mock generated %d questions, want 4", len(lines))
	}
	for _, q := range lines {
		if !strings.HasSuffix(q, "?") {
			t.Errorf("mock question %q is not phrased as a question", q)
		}
	}

	feedback, err := m.CompleteText(ctx, `provide feedback. Then ask the next question: "Why us?"`)
	if err != nil {
		t.Fatalf("CompleteText() error = %v", err)
	}
	if !strings.HasSuffix(feedback, "Why us?") {
		t.Errorf("feedback = %q, want it to end with the next question", feedback)
	}

	if _, err := m.CompleteWithImage(ctx, "posture", nil); err == nil {
		t.Error("CompleteWithImage() with no image should fail")
	}
}
