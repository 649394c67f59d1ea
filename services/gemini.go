package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// GeminiClient calls generateContent with a JSON response schema.
type GeminiClient struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
}

// NewGeminiClient builds the Gemini client. An empty baseURL selects the
// public endpoint. Without a key every Generate call fails with
// ErrNotConfigured.
func NewGeminiClient(ctx context.Context, apiKey, model, baseURL string, log *zap.Logger) *GeminiClient {
	c := &GeminiClient{
		model: model,
		config: &genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   itinerarySchema,
			Temperature:      genai.Ptr[float32](0.7),
		},
	}
	if apiKey == "" {
		log.Warn("⚠️  GOOGLE_GEMINI_API_KEY not set, itinerary generation will fail")
		return c
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  &http.Client{Timeout: 60 * time.Second},
		HTTPOptions: genai.HTTPOptions{BaseURL: baseURL, APIVersion: "v1beta"},
	})
	if err != nil {
		log.Error("❌ AI (Gemini) client init failed", zap.Error(err))
		return c
	}
	c.client = client
	log.Info("✅ AI (Gemini) initialized", zap.String("model", model))
	return c
}

// itinerarySchema pins the generator to {"places":[...]}.
var itinerarySchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"places": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"day":         {Type: genai.TypeString},
					"name":        {Type: genai.TypeString},
					"imageUrl":    {Type: genai.TypeString},
					"visitTime":   {Type: genai.TypeString},
					"entryFee":    {Type: genai.TypeString},
					"description": {Type: genai.TypeString},
					"facts":       {Type: genai.TypeString},
					"visitOrder":  {Type: genai.TypeInteger},
				},
				Required: []string{"day", "name", "visitTime", "entryFee", "description", "visitOrder"},
			},
		},
	},
	Required: []string{"places"},
}

// Generate returns the text of the first candidate. An empty string with a
// nil error means the provider produced nothing.
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	if c.client == nil {
		return "", fmt.Errorf("gemini: %w", ErrNotConfigured)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), c.config)
	if err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}
	return resp.Text(), nil
}
