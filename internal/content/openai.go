package content

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/altafino/report-courier/internal/models"
	"github.com/altafino/report-courier/internal/types"
)

const (
	defaultChatEndpoint   = "https://api.openai.com/v1/chat/completions"
	defaultChatModel      = "gpt-4o-mini"
	defaultRequestTimeout = 60 * time.Second
)

const systemPrompt = "Você é um assistente que redige e-mails institucionais " +
	"curtos em português para envio de relatórios. Responda apenas com JSON " +
	"no formato {\"subject\": ..., \"body\": ...}."

// OpenAIGenerator drafts the email through the chat completions API.
// Any failure, transport or parsing, degrades to the deterministic
// template so Generate never fails.
type OpenAIGenerator struct {
	apiKey     string
	model      string
	endpoint   string
	logger     *slog.Logger
	httpClient *http.Client
	fallback   *TemplateGenerator
}

// NewOpenAIGenerator creates the AI-assisted generator.
func NewOpenAIGenerator(cfg *types.Config, logger *slog.Logger) *OpenAIGenerator {
	model := cfg.Content.OpenAI.Model
	if model == "" {
		model = defaultChatModel
	}
	endpoint := cfg.Content.OpenAI.Endpoint
	if endpoint == "" {
		endpoint = defaultChatEndpoint
	}
	timeout := defaultRequestTimeout
	if cfg.Content.OpenAI.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.Content.OpenAI.TimeoutSeconds) * time.Second
	}

	return &OpenAIGenerator{
		apiKey:   cfg.Content.OpenAI.APIKey,
		model:    model,
		endpoint: endpoint,
		logger:   logger,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		fallback: NewTemplateGenerator(),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate drafts the email with the model and falls back to the
// template on any error.
func (g *OpenAIGenerator) Generate(ctx context.Context, req Request) models.EmailContent {
	content, err := g.draft(ctx, req)
	if err != nil {
		g.logger.Warn("openai draft failed, using template fallback",
			"sigla", req.Sigla,
			"error", err,
		)
		return g.fallback.Generate(ctx, req)
	}
	return content
}

func (g *OpenAIGenerator) draft(ctx context.Context, req Request) (models.EmailContent, error) {
	user := fmt.Sprintf(
		"Destinatário: %s (sigla %s). Arquivo do relatório: %s. Serviços: %s.",
		req.Name, req.Sigla, req.PrimaryFile, strings.Join(req.Services, ", "),
	)

	payload, err := json.Marshal(chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		return models.EmailContent{}, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(payload))
	if err != nil {
		return models.EmailContent{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return models.EmailContent{}, fmt.Errorf("call chat completions: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.EmailContent{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return models.EmailContent{}, fmt.Errorf("chat completions status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return models.EmailContent{}, fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return models.EmailContent{}, fmt.Errorf("chat completions returned no choices")
	}

	var draft struct {
		Subject string `json:"subject"`
		Body    string `json:"body"`
	}
	text := strings.TrimSpace(parsed.Choices[0].Message.Content)
	text = strings.TrimPrefix(text, "```json")
	text = strings.Trim(text, "` \n")
	if err := json.Unmarshal([]byte(text), &draft); err != nil {
		return models.EmailContent{}, fmt.Errorf("decode draft: %w", err)
	}
	if draft.Subject == "" || draft.Body == "" {
		return models.EmailContent{}, fmt.Errorf("draft missing subject or body")
	}

	return models.EmailContent{
		Subject:  draft.Subject,
		Body:     draft.Body,
		BodyHTML: toHTML(draft.Body),
	}, nil
}
