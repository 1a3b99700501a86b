package demo

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/finsight/finsight/demo/history"
)

const defaultModel = "gemini-3.1-pro-preview"

const (
	openingPrompt = "You are FinSIGHT's financial assistant. Use the user context " +
		"to produce a short 5-8 line summary and 2-3 actionable recommendations."
	replyPrompt = "You are FinSIGHT's conversational financial assistant. Use the " +
		"conversation and the provided user context to answer clearly and give " +
		"actionable recommendations when relevant."
	insightPrompt = "You are a helpful, encouraging financial advisor for FinSIGHT, " +
		"a personal finance app."
	insightTask = "Task: Generate a concise, encouraging, and actionable financial " +
		"insight (2-3 paragraphs, max 150 words). Include:\n" +
		"1. Brief assessment of their spending vs. goal\n" +
		"2. One specific, actionable recommendation based on their data\n" +
		"3. Encouragement and positive reinforcement\n\n" +
		"Keep the tone friendly, supportive, and conversational. Avoid jargon. " +
		"Be specific using their actual numbers."
)

// Interface compliance check.
var _ Responder = (*GeminiResponder)(nil)

// GeminiResponder implements [Responder] with the Google Gemini API.
type GeminiResponder struct {
	client *genai.Client
	model  string
}

// GeminiOption configures a [GeminiResponder].
type GeminiOption func(*GeminiResponder)

// WithGeminiModel sets the model ID. Default is gemini-3.1-pro-preview.
func WithGeminiModel(model string) GeminiOption {
	return func(r *GeminiResponder) { r.model = model }
}

// NewGeminiResponder creates a Gemini-backed [Responder] with the given
// API key and options.
func NewGeminiResponder(ctx context.Context, apiKey string, opts ...GeminiOption) (*GeminiResponder, error) {
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("demo: %w", err)
	}
	r := &GeminiResponder{
		client: gc,
		model:  defaultModel,
	}
	for _, o := range opts {
		o(r)
	}
	return r, nil
}

// Opening implements Responder.
func (r *GeminiResponder) Opening(ctx context.Context, contextText string) (string, error) {
	prompt := openingPrompt + "\n\nUSER CONTEXT:\n" + contextText +
		"\n\nPlease provide a concise summary and 2 recommended actions."
	return r.generate(ctx, prompt)
}

// Reply implements Responder.
func (r *GeminiResponder) Reply(ctx context.Context, contextText string, window []history.Record) (string, error) {
	lines := make([]string, 0, len(window))
	for _, rec := range window {
		lines = append(lines, strings.ToUpper(string(rec.Role))+": "+rec.Text)
	}
	prompt := replyPrompt + "\n\nUSER CONTEXT:\n" + contextText +
		"\n\nCONVERSATION:\n" + strings.Join(lines, "\n") + "\n\nAssistant:"
	return r.generate(ctx, prompt)
}

// Insight implements Responder.
func (r *GeminiResponder) Insight(ctx context.Context, contextText string) (string, error) {
	prompt := insightPrompt + "\n\nUser Context:\n" + contextText + "\n\n" + insightTask
	return r.generate(ctx, prompt)
}

func (r *GeminiResponder) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := r.client.Models.GenerateContent(ctx, r.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("demo: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("demo: empty model response")
	}
	return text, nil
}
