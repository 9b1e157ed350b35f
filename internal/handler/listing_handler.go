package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/snaplist/snaplist-backend/internal/model"
	"github.com/snaplist/snaplist-backend/internal/service"
)

type ListingHandler struct {
	svc service.ListingService
}

func NewListingHandler(svc service.ListingService) *ListingHandler {
	return &ListingHandler{svc: svc}
}

type ListingResponse struct {
	ID          uint64  `json:"id"`
	SellerUID   string  `json:"sellerUid"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Condition   string  `json:"condition"`
	ImageURL    string  `json:"imageUrl"`
	Status      string  `json:"status"`
	BuyerUID    *string `json:"buyerUid,omitempty"`
	SoldAt      *string `json:"soldAt,omitempty"`
	CreatedAt   string  `json:"createdAt"`
}

type ListingListResponse struct {
	Listings []ListingResponse `json:"listings"`
	Total    int64             `json:"total"`
}

type CreateListingRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Condition   string  `json:"condition"`
	ImageURL    string  `json:"imageUrl"`
}

func toListingResponse(l *model.Listing) ListingResponse {
	status := l.Status
	if status == "" {
		status = model.ListingStatusAvailable
	}
	var soldAt *string
	if l.SoldAt != nil {
		val := l.SoldAt.Format(time.RFC3339)
		soldAt = &val
	}
	return ListingResponse{
		ID:          l.ID,
		SellerUID:   l.SellerUID,
		Title:       l.Title,
		Description: l.Description,
		Price:       l.Price,
		Category:    l.Category,
		Condition:   string(l.Condition),
		ImageURL:    l.ImageURL,
		Status:      string(status),
		BuyerUID:    l.BuyerUID,
		SoldAt:      soldAt,
		CreatedAt:   l.CreatedAt.Format(time.RFC3339),
	}
}

func (h *ListingHandler) Create(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	var req CreateListingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	l, err := h.svc.Create(c.Request().Context(), uid, service.CreateListingInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Condition:   model.ListingCondition(req.Condition),
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			return c.JSON(http.StatusBadRequest, NewErrorResponse("validation_error", err.Error()))
		}
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to create listing"))
	}
	return c.JSON(http.StatusCreated, toListingResponse(l))
}

func (h *ListingHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	l, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "listing not found"))
		}
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch listing"))
	}
	return c.JSON(http.StatusOK, toListingResponse(l))
}

func (h *ListingHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	listings, total, err := h.svc.ListAvailable(c.Request().Context(), limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch listings"))
	}
	resp := ListingListResponse{
		Listings: make([]ListingResponse, 0, len(listings)),
		Total:    total,
	}
	for i := range listings {
		resp.Listings = append(resp.Listings, toListingResponse(&listings[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ListingHandler) ListMine(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	listings, err := h.svc.ListBySeller(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch listings"))
	}
	resp := make([]ListingResponse, 0, len(listings))
	for i := range listings {
		resp = append(resp, toListingResponse(&listings[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ListingHandler) Delete(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	switch err := h.svc.Delete(c.Request().Context(), id, uid); {
	case err == nil:
		return c.NoContent(http.StatusNoContent)
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "listing not found"))
	case errors.Is(err, service.ErrForbidden):
		return c.JSON(http.StatusForbidden, NewErrorResponse("forbidden", "not allowed"))
	case errors.Is(err, service.ErrAlreadySold):
		return c.JSON(http.StatusForbidden, NewErrorResponse("forbidden", "sold listings cannot be deleted"))
	default:
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to delete listing"))
	}
}
