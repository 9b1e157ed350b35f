package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/snaplist/snaplist-backend/internal/ai"
	"github.com/snaplist/snaplist-backend/internal/model"
)

var ErrInvalidAIResponse = errors.New("invalid_ai_response")

type ImageUploader interface {
	Upload(ctx context.Context, data []byte, contentType string) (string, error)
}

type DraftInferrer interface {
	GenerateDraft(ctx context.Context, image []byte, mimeType string) (*ai.Suggestion, error)
}

// Draft is the transient pre-publish result: the stored image and the
// suggested fields. It is never persisted; publishing goes through
// ListingService.Create with whatever category the seller settled on.
type Draft struct {
	ImageURL   string
	Suggestion ai.Suggestion
}

type DraftService interface {
	BuildDraft(ctx context.Context, image []byte, contentType string) (*Draft, error)
}

type draftService struct {
	uploader ImageUploader
	inferrer DraftInferrer
}

func NewDraftService(uploader ImageUploader, inferrer DraftInferrer) DraftService {
	return &draftService{uploader: uploader, inferrer: inferrer}
}

// BuildDraft uploads first and infers second, sequentially: a
// successful upload gates the inference spend, and inference reuses the
// bytes already in memory instead of re-fetching the stored object.
// Any failure discards the whole attempt; no partial draft survives.
func (s *draftService) BuildDraft(ctx context.Context, image []byte, contentType string) (*Draft, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("%w: image is required", ErrValidation)
	}

	imageURL, err := s.uploader.Upload(ctx, image, contentType)
	if err != nil {
		return nil, err
	}

	sug, err := s.inferrer.GenerateDraft(ctx, image, contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAIResponse, err)
	}
	if err := checkSuggestion(sug); err != nil {
		return nil, err
	}

	return &Draft{ImageURL: imageURL, Suggestion: *sug}, nil
}

// checkSuggestion mirrors the publish gate: every field present, price
// positive, condition one of the two known values.
func checkSuggestion(sug *ai.Suggestion) error {
	switch {
	case sug == nil:
		return fmt.Errorf("%w: empty suggestion", ErrInvalidAIResponse)
	case sug.Title == "" || sug.Description == "" || sug.Category == "":
		return fmt.Errorf("%w: missing fields", ErrInvalidAIResponse)
	case sug.Price <= 0:
		return fmt.Errorf("%w: price must be positive", ErrInvalidAIResponse)
	case sug.Condition != string(model.ConditionNew) && sug.Condition != string(model.ConditionUsed):
		return fmt.Errorf("%w: unknown condition %q", ErrInvalidAIResponse, sug.Condition)
	}
	return nil
}
