package assist

import (
	"context"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"carevoice/internal/platform/logging"
)

const systemPrompt = "You are a patient-facing assistant inside a healthcare " +
	"portal. Answer briefly in plain language suitable for being read aloud. " +
	"Never give a diagnosis; direct medical questions to the care team."

// Config holds the assist backend settings.
type Config struct {
	BaseURL     string        `json:"url" yaml:"url"`
	APIKey      string        `json:"api_key" yaml:"api_key"`
	Model       string        `json:"model_name" yaml:"model_name"`
	Temperature float64       `json:"temperature" yaml:"temperature"`
	MaxTokens   int           `json:"max_tokens" yaml:"max_tokens"`
	Timeout     time.Duration `json:"timeout" yaml:"timeout"`
}

// Reply is one assistant answer. Fallback is set when the answer came from
// the canned responses instead of the model.
type Reply struct {
	Text     string
	Fallback bool
}

// Client answers patient transcripts. Without an API key, or when the
// backend fails, it degrades to canned portal responses so the voice loop
// keeps working offline.
type Client struct {
	cfg    Config
	client *openai.Client
	logger *logging.Logger
}

// NewClient creates an assist client. A missing API key is not an error;
// the client simply starts in canned-response mode.
func NewClient(cfg Config, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default
	}
	if cfg.Model == "" {
		cfg.Model = openai.GPT4oMini
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = 0.7
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 300
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	c := &Client{cfg: cfg, logger: logger}
	if cfg.APIKey != "" {
		clientConfig := openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			clientConfig.BaseURL = cfg.BaseURL
		}
		c.client = openai.NewClientWithConfig(clientConfig)
	}
	return c
}

// Reply answers one transcript. It always produces something speakable.
func (c *Client) Reply(ctx context.Context, transcript string) Reply {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return Reply{Text: "I didn't catch that. Could you say it again?", Fallback: true}
	}
	if c.client == nil {
		return Reply{Text: cannedReply(transcript), Fallback: true}
	}

	requestCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(requestCtx, openai.ChatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: transcript},
		},
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: float32(c.cfg.Temperature),
		Stream:      false,
	})
	if err != nil {
		c.logger.Slog().Warn("assist backend failed, using canned reply", "error", err)
		return Reply{Text: cannedReply(transcript), Fallback: true}
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return Reply{Text: cannedReply(transcript), Fallback: true}
	}
	return Reply{Text: strings.TrimSpace(resp.Choices[0].Message.Content)}
}

// cannedReply covers the portal's common voice requests when no model is
// reachable.
func cannedReply(transcript string) string {
	lower := strings.ToLower(transcript)
	switch {
	case strings.Contains(lower, "medication") || strings.Contains(lower, "prescription") ||
		strings.Contains(lower, "refill"):
		return "Your current medications are listed under the Medications tab. " +
			"To request a refill, open a medication and choose Request refill."
	case strings.Contains(lower, "appointment") || strings.Contains(lower, "schedule"):
		return "Your upcoming appointments are on the Appointments page. " +
			"You can reschedule or cancel from there."
	case strings.Contains(lower, "result") || strings.Contains(lower, "lab"):
		return "New test results appear under Health Records as soon as your " +
			"care team releases them."
	case strings.Contains(lower, "message") || strings.Contains(lower, "doctor") ||
		strings.Contains(lower, "nurse"):
		return "You can send a secure message to your care team from the " +
			"Messages page. They usually reply within one business day."
	default:
		return "I can help with medications, appointments, test results, and " +
			"messages to your care team. What would you like to do?"
	}
}
