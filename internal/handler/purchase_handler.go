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

type PurchaseHandler struct {
	svc service.PurchaseService
}

func NewPurchaseHandler(svc service.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{svc: svc}
}

type PurchaseResponse struct {
	ID        uint64 `json:"id"`
	ListingID uint64 `json:"listingId"`
	BuyerUID  string `json:"buyerUid"`
	CreatedAt string `json:"createdAt"`
}

func toPurchaseResponse(p *model.Purchase) PurchaseResponse {
	return PurchaseResponse{
		ID:        p.ID,
		ListingID: p.ListingID,
		BuyerUID:  p.BuyerUID,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
	}
}

func (h *PurchaseHandler) Buy(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	email, _ := c.Get("email").(string)
	listingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid listing id"))
	}
	p, err := h.svc.Buy(c.Request().Context(), listingID, uid, email)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "listing not found"))
		case errors.Is(err, service.ErrAlreadySold):
			return c.JSON(http.StatusConflict, NewErrorResponse("already_sold", "listing already sold"))
		case errors.Is(err, service.ErrOwnListing):
			return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "cannot buy your own listing"))
		case errors.Is(err, service.ErrPurchaseFailed):
			return c.JSON(http.StatusBadGateway, NewErrorResponse("purchase_failed", "purchase could not be completed, try again"))
		default:
			return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to complete purchase"))
		}
	}
	return c.JSON(http.StatusCreated, toPurchaseResponse(p))
}

type PurchaseWithListingResponse struct {
	Purchase PurchaseResponse `json:"purchase"`
	Listing  *ListingResponse `json:"listing,omitempty"`
}

func (h *PurchaseHandler) ListMine(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	list, err := h.svc.ListByBuyer(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch purchases"))
	}
	resp := make([]PurchaseWithListingResponse, 0, len(list))
	for _, row := range list {
		out := PurchaseWithListingResponse{Purchase: toPurchaseResponse(&row.Purchase)}
		if row.Listing != nil {
			lr := toListingResponse(row.Listing)
			out.Listing = &lr
		}
		resp = append(resp, out)
	}
	return c.JSON(http.StatusOK, resp)
}
