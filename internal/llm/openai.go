package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/decoda/decoda/internal/model"
)

// OpenAIProvider talks to any OpenAI-compatible chat completion endpoint.
// Search-backed backends exposing the same API (e.g. Sonar) are configured
// via BaseURL.
type OpenAIProvider struct {
	client     *openai.Client
	httpClient openai.HTTPDoer
	endpoint   string
	apiKey     string
	config     model.LLMConfig
	limiter    *Limiter
	host       string
}

// chatCompletionEnvelope is the completion response plus the citation
// metadata search backends attach next to the standard fields. The typed
// client drops unknown fields, so the response is decoded through this.
type chatCompletionEnvelope struct {
	openai.ChatCompletionResponse
	Citations []string         `json:"citations,omitempty"`
	Sources   []model.MetaLink `json:"sources,omitempty"`
}

// NewOpenAIProvider creates a provider for the configured endpoint
func NewOpenAIProvider(config model.LLMConfig) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	host := "api.openai.com"
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
		if parsed, err := url.Parse(config.BaseURL); err == nil && parsed.Host != "" {
			host = parsed.Host
		}
	}

	return &OpenAIProvider{
		client:     openai.NewClientWithConfig(clientConfig),
		httpClient: clientConfig.HTTPClient,
		endpoint:   strings.TrimRight(clientConfig.BaseURL, "/") + "/chat/completions",
		apiKey:     config.APIKey,
		config:     config,
		limiter:    NewLimiter(config.RatePerSec, config.RateBurst),
		host:       host,
	}, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// IsAvailable checks if the endpoint answers a lightweight call
func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	_, err := p.client.ListModels(ctx)
	return err == nil
}

// Generate runs one chat completion. Session context lines are prepended to
// the prompt; the call waits for rate-limit clearance first.
func (p *OpenAIProvider) Generate(ctx context.Context, req Request) (*model.Generation, error) {
	if err := p.limiter.Wait(ctx, p.host); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	chatModel := req.Model
	if chatModel == "" {
		chatModel = p.config.Model
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = p.config.MaxTokens
	}

	system := req.System
	if system == "" {
		system = SystemPrompt
	}

	prompt := req.Prompt
	if len(req.Context) > 0 {
		prompt = "Conversation context:\n" + strings.Join(req.Context, "\n") + "\n\n" + prompt
	}

	timeout := p.config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := p.complete(ctx, openai.ChatCompletionRequest{
		Model: chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: p.config.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no completion choices returned")
	}

	meta := model.GenerationMeta{Sources: resp.Sources}
	for _, u := range resp.Citations {
		meta.Citations = append(meta.Citations, model.MetaLink{URL: u})
	}

	return &model.Generation{
		Text:       strings.TrimSpace(resp.Choices[0].Message.Content),
		Meta:       meta,
		Model:      resp.Model,
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}

func (p *OpenAIProvider) complete(ctx context.Context, req openai.ChatCompletionRequest) (*chatCompletionEnvelope, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	httpResp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(httpResp.Body, 512))
		return nil, fmt.Errorf("endpoint returned %d: %s", httpResp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var envelope chatCompletionEnvelope
	if err := json.NewDecoder(httpResp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &envelope, nil
}
