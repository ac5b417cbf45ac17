// Package generator bridges the engine to the external text-generation
// collaborator. The bridge never surfaces a failure: any error, timeout, or
// empty completion is replaced with a phrase from the fallback bank, so the
// caller always gets usable text.
package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/dependencies/random"
	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/model"
	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/services/phrases"
)

// persona is the fixed system instruction sent with every request. The
// opponent must read as a bored human in a waiting room, not an assistant.
const persona = "You are a person waiting at a clinic, passing time chatting with a stranger. " +
	"Reply casually in one or two short sentences, lower-case, with occasional typos. " +
	"Never mention being an AI, an assistant, or a language model. " +
	"Never offer help or use formal phrasing."

// ReplyGenerator produces the simulated opponent's next message
type ReplyGenerator interface {
	// Reply returns the opponent's reply to the most recent human
	// message. It never fails and never returns an empty string.
	Reply(ctx context.Context, transcript []model.Message, humanID model.PlayerID) string
}

// Config holds settings for the text-generation collaborator
type Config struct {
	// BaseURL is the chat-completions API root (e.g. https://api.openai.com/v1)
	BaseURL string
	// APIKey authorizes requests; empty disables the external call entirely
	APIKey string
	// Model is the completion model name
	Model string
	// MaxTokens bounds the reply length
	MaxTokens int
	// Timeout bounds the external call
	Timeout time.Duration
}

// DefaultConfig returns default generator configuration
func DefaultConfig() Config {
	return Config{
		BaseURL:   "https://api.openai.com/v1",
		Model:     "gpt-4o-mini",
		MaxTokens: 60,
		Timeout:   10 * time.Second,
	}
}

// Service is the HTTP implementation of ReplyGenerator
type Service struct {
	cfg        Config
	httpClient *http.Client
	bank       *phrases.Bank
	random     random.Random
	logger     *slog.Logger
}

// Ensure Service implements ReplyGenerator
var _ ReplyGenerator = (*Service)(nil)

// New creates a new generator Service
func New(cfg Config, bank *phrases.Bank, rnd random.Random, logger *slog.Logger) *Service {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultConfig().BaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultConfig().Model
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = DefaultConfig().MaxTokens
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}

	return &Service{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		bank:       bank,
		random:     rnd,
		logger:     logger.With(slog.String("component", "generator")),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Reply generates the opponent's reply, falling back to a canned phrase on
// any failure of the external call
func (s *Service) Reply(ctx context.Context, transcript []model.Message, humanID model.PlayerID) string {
	text, err := s.generate(ctx, transcript, humanID)
	if err != nil {
		s.logger.Warn("text generation failed, using fallback phrase",
			slog.String("error", err.Error()))
		return s.bank.Pick(s.random)
	}
	return text
}

func (s *Service) generate(ctx context.Context, transcript []model.Message, humanID model.PlayerID) (string, error) {
	if s.cfg.APIKey == "" {
		return "", fmt.Errorf("no API key configured")
	}

	messages := make([]chatMessage, 0, len(transcript)+1)
	messages = append(messages, chatMessage{Role: "system", Content: persona})
	for _, m := range transcript {
		role := "assistant"
		if m.SenderID == humanID {
			role = "user"
		}
		messages = append(messages, chatMessage{Role: role, Content: m.Text})
	}

	body, err := json.Marshal(chatRequest{
		Model:     s.cfg.Model,
		Messages:  messages,
		MaxTokens: s.cfg.MaxTokens,
	})
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	url := strings.TrimSuffix(s.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("completion API returned status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("completion API returned no choices")
	}

	text := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("completion API returned empty text")
	}
	return text, nil
}
