// Package ai talks to the upstream chat-completion API.
package ai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/minqi/ai-chat/backend/internal/config"
	"github.com/minqi/ai-chat/backend/internal/model/chat"
	"github.com/minqi/ai-chat/backend/internal/model/persona"
)

// Typed upstream failures. The request boundary maps each of these to a
// distinct HTTP status; anything else counts as a transport error.
var (
	ErrNotConfigured = errors.New("api key not configured")
	ErrTimeout       = errors.New("upstream request timed out")
	ErrAuthFailed    = errors.New("upstream rejected credentials")
	ErrQuotaExceeded = errors.New("upstream quota exceeded")
	ErrEmptyResponse = errors.New("no content returned by model")
)

// Service sends assembled conversations upstream. A single attempt is
// made per call; there is no retry.
type Service struct {
	client openai.Client
	cfg    config.AIConfig
}

// NewService creates the upstream client. The client is built even when
// no API key is present; calls then fail with ErrNotConfigured so the
// condition surfaces per request instead of at startup.
func NewService(cfg config.AIConfig) *Service {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		// One attempt per incoming chat request; the SDK's default
		// policy would retry 429s and transport errors with backoff.
		option.WithMaxRetries(0),
	}
	return &Service{
		client: openai.NewClient(opts...),
		cfg:    cfg,
	}
}

// Configured reports whether an API key is available.
func (s *Service) Configured() bool {
	return s.cfg.APIKey != ""
}

// GenerateResponse assembles the persona system message, the recent
// history and the current user message into one request and returns the
// generated text. The call is bounded by the configured timeout.
func (s *Service) GenerateResponse(ctx context.Context, p persona.Persona, history []chat.Turn, userMessage string) (string, error) {
	if !s.Configured() {
		return "", ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(s.cfg.Model),
		Messages:    assembleMessages(p, history, userMessage),
		Temperature: openai.Float(s.cfg.Temperature),
		MaxTokens:   openai.Int(int64(s.cfg.MaxTokens)),
	}

	completion, err := s.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", classifyError(err)
	}

	if len(completion.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	content := strings.TrimSpace(completion.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyResponse
	}

	log.Printf("[ai] generated response, persona=%s, length=%d", p.ID, len(content))
	return content, nil
}

// classifyError folds SDK errors into the typed failure set using the
// response status code, never the error message text.
func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}

	var apierr *openai.Error
	if errors.As(err, &apierr) {
		switch apierr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %v", ErrAuthFailed, err)
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
		}
	}

	return fmt.Errorf("upstream request failed: %w", err)
}
