package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const defaultHFBaseURL = "https://api-inference.huggingface.co"

// HFClient calls a HuggingFace Inference text-generation model. JSON output
// is requested through the prompt only.
type HFClient struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

func NewHFClient(apiKey, model, baseURL string, log *zap.Logger) *HFClient {
	if baseURL == "" {
		baseURL = defaultHFBaseURL
	}
	if apiKey != "" {
		log.Info("✅ AI (HuggingFace) initialized", zap.String("model", model))
	} else {
		log.Warn("⚠️  HUGGINGFACE_API_KEY not set, itinerary generation will fail")
	}
	return &HFClient{
		apiKey:     apiKey,
		model:      model,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
}

type hfParameters struct {
	MaxNewTokens   int     `json:"max_new_tokens"`
	Temperature    float64 `json:"temperature"`
	ReturnFullText bool    `json:"return_full_text"`
}

type hfResponse []struct {
	GeneratedText string `json:"generated_text"`
}

func (c *HFClient) Generate(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("huggingface: %w", ErrNotConfigured)
	}

	reqBody := hfRequest{
		Inputs: "[INST] " + prompt + " Respond with the JSON object only. [/INST]",
		Parameters: hfParameters{
			MaxNewTokens:   2048,
			Temperature:    0.6,
			ReturnFullText: false,
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/models/"+c.model, bytes.NewReader(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode == http.StatusServiceUnavailable {
		return "", errors.New("huggingface: model is still loading")
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("huggingface: status %d: %s", resp.StatusCode, string(body))
	}

	var hfResp hfResponse
	if err := json.Unmarshal(body, &hfResp); err != nil {
		return "", fmt.Errorf("failed to parse AI response: %w", err)
	}
	if len(hfResp) == 0 {
		return "", nil
	}
	return hfResp[0].GeneratedText, nil
}
