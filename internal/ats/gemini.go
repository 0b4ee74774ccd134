package ats

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

const geminiUserRole = "user"

// ContentModel is a hosted generative model that answers one multi-part
// user turn.
type ContentModel interface {
	GenerateContent(ctx context.Context, parts ...string) (string, error)
}

// GeminiModel implements ContentModel using Google's Gemini API
type GeminiModel struct {
	client *genai.Client
	model  string
}

func NewGeminiModel(ctx context.Context, apiKey, model string) (*GeminiModel, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is empty")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiModel{client: client, model: model}, nil
}

func (g *GeminiModel) Name() string {
	return g.model
}

func (g *GeminiModel) GenerateContent(ctx context.Context, parts ...string) (string, error) {
	content := &genai.Content{Role: geminiUserRole}
	for _, p := range parts {
		content.Parts = append(content.Parts, &genai.Part{Text: p})
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, []*genai.Content{content}, nil)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	text := result.Text()
	if text == "" {
		return "", errors.New("gemini returned no text")
	}
	return text, nil
}
