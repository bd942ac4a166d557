package external

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
)

const geminiProvider = "gemini"

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// GeminiClient calls the generateContent endpoint of one model.
type GeminiClient struct {
	http   *resty.Client
	apiKey string
	model  string
}

func NewGeminiClient(baseURL, apiKey, model string) *GeminiClient {
	return &GeminiClient{
		http:   newRestyClient(baseURL, defaultTimeout*4),
		apiKey: apiKey,
		model:  model,
	}
}

// Generate sends a single-turn prompt and returns the first candidate's text.
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", errors.Join(ErrUpstream, errors.New("gemini: API key not configured"))
	}

	var out geminiResponse
	_, err := call(ctx, geminiProvider, "generateContent", func(ctx context.Context) (*resty.Response, error) {
		return c.http.R().SetContext(ctx).
			SetPathParam("model", c.model).
			SetQueryParam("key", c.apiKey).
			SetBody(geminiRequest{Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}}}).
			SetResult(&out).
			Post("/v1beta/models/{model}:generateContent")
	})
	if err != nil {
		return "", err
	}
	if len(out.Candidates) == 0 {
		return "", errors.Join(ErrUpstream, fmt.Errorf("gemini: empty response"))
	}

	var b strings.Builder
	for _, p := range out.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String(), nil
}
