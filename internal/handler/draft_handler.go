package handler

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/snaplist/snaplist-backend/internal/ai"
	"github.com/snaplist/snaplist-backend/internal/service"
	"github.com/snaplist/snaplist-backend/internal/storage"
)

// DraftHandler owns the two AI entry points: the bare inference proxy
// (GenerateListing, same wire contract as the old cloud function) and
// the full draft flow that also stores the image first.
type DraftHandler struct {
	drafts   service.DraftService
	inferrer service.DraftInferrer
	apiKey   string
}

func NewDraftHandler(drafts service.DraftService, inferrer service.DraftInferrer, apiKey string) *DraftHandler {
	return &DraftHandler{drafts: drafts, inferrer: inferrer, apiKey: apiKey}
}

type generateListingRequest struct {
	ImageBase64 string `json:"imageBase64"`
	ContentType string `json:"contentType"`
}

// GenerateListing keeps the legacy contract: 400 only for a missing
// image, 500 for a missing credential, and otherwise HTTP 200 carrying
// either the repaired suggestion or an {error, raw} payload when no
// usable JSON came back from the model.
func (h *DraftHandler) GenerateListing(c echo.Context) error {
	var req generateListingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid json body"})
	}
	if strings.TrimSpace(req.ImageBase64) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Missing imageBase64 in request"})
	}
	if h.apiKey == "" {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Gemini API key not configured"})
	}
	image, err := decodeImage(req.ImageBase64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid base64 image"})
	}

	sug, err := h.inferrer.GenerateDraft(c.Request().Context(), image, req.ContentType)
	if err != nil {
		var ue *ai.UnparseableError
		switch {
		case errors.As(err, &ue):
			return c.JSON(http.StatusOK, map[string]string{"error": ue.Msg, "raw": ue.Raw})
		case errors.Is(err, ai.ErrNoText):
			return c.JSON(http.StatusOK, map[string]string{"error": "AI did not return valid JSON"})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Gemini request failed"})
		}
	}
	return c.JSON(http.StatusOK, sug)
}

type createDraftRequest struct {
	ImageBase64 string `json:"imageBase64"`
	ContentType string `json:"contentType"`
}

type createDraftResponse struct {
	ImageURL   string        `json:"imageUrl"`
	Suggestion ai.Suggestion `json:"suggestion"`
}

func (h *DraftHandler) CreateDraft(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	if h.drafts == nil {
		return c.JSON(http.StatusServiceUnavailable, NewErrorResponse("unavailable", "image storage not configured"))
	}
	var req createDraftRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	image, err := decodeImage(req.ImageBase64)
	if err != nil || len(image) == 0 {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "imageBase64 is required"))
	}

	draft, err := h.drafts.BuildDraft(c.Request().Context(), image, req.ContentType)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrUpload):
			return c.JSON(http.StatusBadGateway, NewErrorResponse("upload_error", "failed to upload image, try again"))
		case errors.Is(err, storage.ErrResolveURL):
			return c.JSON(http.StatusBadGateway, NewErrorResponse("url_resolution_error", "failed to resolve image URL"))
		case errors.Is(err, service.ErrInvalidAIResponse):
			return c.JSON(http.StatusUnprocessableEntity, NewErrorResponse("invalid_ai_response", "could not analyze image, start over from image selection"))
		case errors.Is(err, service.ErrValidation):
			return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
		default:
			return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to build draft"))
		}
	}
	return c.JSON(http.StatusOK, createDraftResponse{ImageURL: draft.ImageURL, Suggestion: draft.Suggestion})
}

// decodeImage accepts both bare base64 and data URLs.
func decodeImage(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		if idx := strings.Index(s, ","); idx != -1 {
			s = s[idx+1:]
		}
	}
	return base64.StdEncoding.DecodeString(s)
}
