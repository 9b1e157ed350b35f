package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

var ErrNoText = errors.New("empty_model_response")

const draftPrompt = `You are a product listing assistant. Analyze this product image and return only a valid JSON object like:
{
  "title": "Product Name",
  "description": "Detailed product description",
  "price": 29.99,
  "category": "Electronics",
  "condition": "New"
}

IMPORTANT RULES:
- Price must ALWAYS be a valid number (never null or string)
- Estimate a reasonable market price in USD
- Category should be one of: Electronics, Video Games & Consoles, Home Appliances, Fashion, Health & Beauty, Sports
- Condition must be either "New" or "Used"
- DO NOT include any markdown, bullet points, or text outside the JSON block
- Return ONLY the JSON object`

// DraftClient turns a product photo into a listing suggestion via Gemini.
type DraftClient struct {
	model string
}

func NewDraftClient(model string) *DraftClient {
	if model == "" {
		model = "gemini-1.5-flash"
	}
	return &DraftClient{model: model}
}

// GenerateDraft sends the image with the fixed instruction prompt and
// parses the response. The model is not trusted to emit pure JSON; see
// ParseSuggestion for the extraction and repair rules.
func (c *DraftClient) GenerateDraft(ctx context.Context, image []byte, mimeType string) (*Suggestion, error) {
	if len(image) == 0 {
		return nil, errors.New("image is required")
	}
	mimeType = strings.TrimSpace(mimeType)
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	start := time.Now()
	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("gemini client init: %w", err)
	}

	parts := []*genai.Part{
		genai.NewPartFromText(draftPrompt),
		{InlineData: &genai.Blob{Data: image, MIMEType: mimeType}},
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}
	temp := float32(0)
	config := &genai.GenerateContentConfig{
		Temperature: &temp,
	}
	res, err := c.generate(ctx, client, contents, config)
	if err != nil {
		return nil, err
	}

	rawText := res.Text()
	if strings.TrimSpace(rawText) == "" {
		return nil, ErrNoText
	}

	sug, err := ParseSuggestion(rawText)
	if err != nil {
		log.Warn().Str("model", c.model).Err(err).Msg("draft inference unparseable")
		return nil, err
	}
	log.Info().
		Str("model", c.model).
		Strs("defaulted", sug.Defaulted).
		Int64("totalMs", time.Since(start).Milliseconds()).
		Msg("draft inference done")
	return sug, nil
}

func (c *DraftClient) generate(ctx context.Context, client *genai.Client, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	res, err := client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}
	return res, nil
}
