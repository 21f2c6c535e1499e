package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/buildtrack/buildtrack/pkg/logger"
	"github.com/go-resty/resty/v2"
)

// Claude API constants
const (
	ClaudeAPIVersion   = "2023-06-01"
	ClaudeDefaultModel = "claude-3-5-sonnet-20241022"
)

type ClaudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ClaudeRequest struct {
	Model       string          `json:"model"`
	MaxTokens   int             `json:"max_tokens"`
	Messages    []ClaudeMessage `json:"messages"`
	Temperature float64         `json:"temperature,omitempty"`
}

type ClaudeResponse struct {
	ID      string `json:"id"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string       `json:"stop_reason"`
	Error      *ClaudeError `json:"error,omitempty"`
}

type ClaudeError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// ClaudeServiceConfig holds configuration for Claude API integration
type ClaudeServiceConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	MaxTokens      int
	Temperature    float64
	TimeoutSeconds int
}

// ClaudeService answers permit questions through the Anthropic Messages API.
// Every call is attempted once; any failure yields the fallback suggestion.
type ClaudeService struct {
	config ClaudeServiceConfig
	client *resty.Client
	logger *logger.Logger
}

var _ PermitLookupClient = (*ClaudeService)(nil)

// FallbackPermitNotes is the advisory text returned when the lookup cannot answer.
const FallbackPermitNotes = "Automated permit lookup is unavailable. Contact the local building department " +
	"to confirm which permits this scope of work requires."

// NewClaudeService creates the lookup client. An empty API key yields a
// disabled client that always returns the fallback.
func NewClaudeService(config ClaudeServiceConfig, log *logger.Logger) *ClaudeService {
	if config.BaseURL == "" {
		config.BaseURL = "https://api.anthropic.com"
	}
	if config.Model == "" {
		config.Model = ClaudeDefaultModel
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = 2048
	}
	if config.Temperature == 0 {
		config.Temperature = 0.1
	}
	if config.TimeoutSeconds == 0 {
		config.TimeoutSeconds = 30
	}
	if log == nil {
		log = logger.NewForTesting()
	}

	client := resty.New()
	client.SetTimeout(time.Duration(config.TimeoutSeconds) * time.Second)
	client.SetHeader("Content-Type", "application/json")
	client.SetHeader("x-api-key", config.APIKey)
	client.SetHeader("anthropic-version", ClaudeAPIVersion)
	client.SetBaseURL(config.BaseURL)

	return &ClaudeService{config: config, client: client, logger: log}
}

func (s *ClaudeService) IsEnabled() bool {
	return s != nil && s.config.APIKey != ""
}

// Lookup never fails; upstream trouble is logged and degraded to one fallback record.
func (s *ClaudeService) Lookup(ctx context.Context, address, scopeOfWork string) []PermitSuggestion {
	if !s.IsEnabled() {
		return fallbackPermits(address)
	}

	text, err := s.makeRequest(ctx, permitPrompt(address, scopeOfWork))
	if err != nil {
		s.logger.Warn("permit lookup failed", "address", address, "error", err)
		return fallbackPermits(address)
	}

	permits, err := parsePermitSuggestions(text)
	if err != nil {
		s.logger.Warn("permit lookup returned unparseable text", "address", address, "error", err)
		return fallbackPermits(address)
	}
	return permits
}

func (s *ClaudeService) makeRequest(ctx context.Context, prompt string) (string, error) {
	request := ClaudeRequest{
		Model:       s.config.Model,
		MaxTokens:   s.config.MaxTokens,
		Temperature: s.config.Temperature,
		Messages: []ClaudeMessage{
			{Role: "user", Content: prompt},
		},
	}

	var response ClaudeResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(request).
		SetResult(&response).
		Post("/v1/messages")
	if err != nil {
		return "", err
	}

	switch resp.StatusCode() {
	case 200:
	case 429:
		return "", errors.New("rate limit exceeded")
	case 401:
		return "", errors.New("invalid API key")
	default:
		return "", fmt.Errorf("API error %d: %s", resp.StatusCode(), resp.String())
	}

	if response.Error != nil {
		return "", fmt.Errorf("Claude API error: %s", response.Error.Message)
	}
	for _, block := range response.Content {
		if block.Type == "text" && strings.TrimSpace(block.Text) != "" {
			return block.Text, nil
		}
	}
	return "", errors.New("empty response from Claude API")
}

func permitPrompt(address, scopeOfWork string) string {
	return fmt.Sprintf(`List the construction permits required for the following job.

Address: %s
Scope of work: %s

Return only a JSON array. Each element must have these string fields:
name, authority, form_url, fee, processing_time, notes`, address, scopeOfWork)
}

// parsePermitSuggestions reads the JSON array between the first '[' and the last ']'.
func parsePermitSuggestions(text string) ([]PermitSuggestion, error) {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return nil, errors.New("no JSON array in response")
	}

	var permits []PermitSuggestion
	if err := json.Unmarshal([]byte(text[start:end+1]), &permits); err != nil {
		return nil, fmt.Errorf("failed to decode permits: %w", err)
	}

	out := permits[:0]
	for _, p := range permits {
		p.Name = strings.TrimSpace(p.Name)
		if p.Name == "" {
			continue
		}
		p.Fallback = false
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil, errors.New("response listed no permits")
	}
	return out, nil
}

func fallbackPermits(address string) []PermitSuggestion {
	authority := "Local building department"
	if address != "" {
		authority = "Building department serving " + address
	}
	return []PermitSuggestion{{
		Name:      "Building permit (verify requirements)",
		Authority: authority,
		Notes:     FallbackPermitNotes,
		Fallback:  true,
	}}
}
