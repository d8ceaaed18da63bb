package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-1.5-flash"

// Gemini talks to the Generative Language API with a per-request API key.
// The key travels in the x-goog-api-key header, never in the URL.
type Gemini struct {
	model      string
	baseURL    string // empty uses the SDK default endpoint
	httpClient *http.Client
}

func NewGemini(model, baseURL string, httpClient *http.Client) *Gemini {
	if model == "" {
		model = DefaultGeminiModel
	}
	return &Gemini{model: model, baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

func (g *Gemini) Name() string { return "gemini" }

// geminiRole translates the internal vocabulary; Gemini calls the assistant "model".
func geminiRole(role string) string {
	if role == RoleAI {
		return string(genai.RoleModel)
	}
	return string(genai.RoleUser)
}

func (g *Gemini) Complete(ctx context.Context, systemPrompt string, history []Turn, message, apiKey string) (string, error) {
	if apiKey == "" {
		return "", &UpstreamError{Provider: g.Name(), Err: errors.New("no api key")}
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  g.httpClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: g.baseURL},
	})
	if err != nil {
		return "", &UpstreamError{Provider: g.Name(), Err: err}
	}

	turns := alternateTurns(history, message)
	contents := make([]*genai.Content, 0, len(turns))
	for _, t := range turns {
		contents = append(contents, &genai.Content{
			Role:  geminiRole(t.Role),
			Parts: []*genai.Part{{Text: t.Content}},
		})
	}

	resp, err := client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemPrompt}}},
	})
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return "", &UpstreamError{Provider: g.Name(), StatusCode: apiErr.Code, Body: apiErr.Message}
		}
		return "", &UpstreamError{Provider: g.Name(), Err: err}
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", &UpstreamError{Provider: g.Name(), Body: "no candidates returned"}
	}
	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p != nil {
			sb.WriteString(p.Text)
		}
	}
	if sb.Len() == 0 {
		return "", &UpstreamError{Provider: g.Name(), Body: "empty candidate content"}
	}
	return sb.String(), nil
}
