package llm

import (
	"context"
	"strings"

	vertexgenai "cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/option"
)

// VertexGemini serves the Gemini provider through Vertex AI. It authenticates
// with application default credentials, so apiKey is ignored.
type VertexGemini struct {
	client    *vertexgenai.Client
	modelName string
}

func NewVertexGemini(ctx context.Context, projectID, location, modelName string, opts ...option.ClientOption) (*VertexGemini, error) {
	c, err := vertexgenai.NewClient(ctx, projectID, location, opts...)
	if err != nil {
		return nil, err
	}

	if modelName == "" {
		modelName = DefaultGeminiModel
	}
	return &VertexGemini{client: c, modelName: modelName}, nil
}

func (v *VertexGemini) Close() error { return v.client.Close() }

func (v *VertexGemini) Name() string { return "gemini" }

func (v *VertexGemini) Complete(ctx context.Context, systemPrompt string, history []Turn, message, _ string) (string, error) {
	// A model handle per call: SystemInstruction is per request.
	m := v.client.GenerativeModel(v.modelName)
	m.SystemInstruction = &vertexgenai.Content{Parts: []vertexgenai.Part{vertexgenai.Text(systemPrompt)}}

	turns := alternateTurns(history, message)
	last := turns[len(turns)-1]

	cs := m.StartChat()
	for _, t := range turns[:len(turns)-1] {
		cs.History = append(cs.History, &vertexgenai.Content{
			Role:  geminiRole(t.Role),
			Parts: []vertexgenai.Part{vertexgenai.Text(t.Content)},
		})
	}

	resp, err := cs.SendMessage(ctx, vertexgenai.Text(last.Content))
	if err != nil {
		return "", &UpstreamError{Provider: v.Name(), Err: err}
	}

	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(vertexgenai.Text); ok {
				sb.WriteString(string(t))
			}
		}
		break
	}
	if sb.Len() == 0 {
		return "", &UpstreamError{Provider: v.Name(), Body: "empty candidate content"}
	}
	return sb.String(), nil
}
