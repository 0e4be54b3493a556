package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/SachyamKarki/Karki-Scrapper/config"
)

const geminiEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent"

// GeminiChatModel implements eino's BaseChatModel against the Gemini REST
// API, so the analysis and outreach chains can run on it like any other
// model binding.
type GeminiChatModel struct {
	apiKey     string
	modelName  string
	httpClient *http.Client
}

func NewGeminiChatModel(cfg config.GeminiConfig) (*GeminiChatModel, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key not configured")
	}
	return &GeminiChatModel{
		apiKey:     cfg.APIKey,
		modelName:  cfg.Model,
		httpClient: &http.Client{Timeout: 90 * time.Second},
	}, nil
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"system_instruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (m *GeminiChatModel) Generate(ctx context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	reqBody := geminiRequest{}
	for _, msg := range input {
		switch msg.Role {
		case schema.System:
			reqBody.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: msg.Content}}}
		case schema.Assistant:
			reqBody.Contents = append(reqBody.Contents, geminiContent{Role: "model", Parts: []geminiPart{{Text: msg.Content}}})
		default:
			reqBody.Contents = append(reqBody.Contents, geminiContent{Role: "user", Parts: []geminiPart{{Text: msg.Content}}})
		}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize gemini request: %w", err)
	}

	url := fmt.Sprintf(geminiEndpoint, m.modelName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build gemini request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", m.apiKey)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read gemini response: %w", err)
	}

	var parsed geminiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode gemini response: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("gemini error: %s", parsed.Error.Message)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("gemini returned no candidates (status %d)", resp.StatusCode)
	}

	return schema.AssistantMessage(parsed.Candidates[0].Content.Parts[0].Text, nil), nil
}

// Stream satisfies BaseChatModel. The REST generateContent call is not
// chunked, so the stream carries the single complete message.
func (m *GeminiChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}
