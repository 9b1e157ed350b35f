package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/snaplist/snaplist-backend/internal/model"
	"github.com/snaplist/snaplist-backend/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrNotFound   = errors.New("not_found")
	ErrForbidden  = errors.New("forbidden")
	ErrValidation = errors.New("validation_failed")
)

type CreateListingInput struct {
	Title       string
	Description string
	Price       float64
	Category    string
	Condition   model.ListingCondition
	ImageURL    string
}

type ListingService interface {
	Create(ctx context.Context, sellerUID string, in CreateListingInput) (*model.Listing, error)
	Get(ctx context.Context, id uint64) (*model.Listing, error)
	ListAvailable(ctx context.Context, limit, offset int) ([]model.Listing, int64, error)
	ListBySeller(ctx context.Context, sellerUID string) ([]model.Listing, error)
	Delete(ctx context.Context, id uint64, requesterUID string) error
}

type listingService struct {
	listingRepo  repository.ListingRepository
	purchaseRepo repository.PurchaseRepository
}

func NewListingService(listingRepo repository.ListingRepository, purchaseRepo repository.PurchaseRepository) ListingService {
	return &listingService{listingRepo: listingRepo, purchaseRepo: purchaseRepo}
}

// Create validates the draft fields again even though the client gates
// submission on a complete draft; the repository is the last line.
func (s *listingService) Create(ctx context.Context, sellerUID string, in CreateListingInput) (*model.Listing, error) {
	if sellerUID == "" {
		return nil, fmt.Errorf("%w: seller is required", ErrValidation)
	}
	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	category := strings.TrimSpace(in.Category)
	if title == "" || len(title) > 120 {
		return nil, fmt.Errorf("%w: invalid title", ErrValidation)
	}
	if description == "" {
		return nil, fmt.Errorf("%w: description is required", ErrValidation)
	}
	if in.Price <= 0 {
		return nil, fmt.Errorf("%w: price must be positive", ErrValidation)
	}
	if !model.ValidCategory(category) {
		return nil, fmt.Errorf("%w: unknown category %q", ErrValidation, category)
	}
	if in.Condition != model.ConditionNew && in.Condition != model.ConditionUsed {
		return nil, fmt.Errorf("%w: condition must be New or Used", ErrValidation)
	}
	if strings.HasPrefix(strings.TrimSpace(in.ImageURL), "data:") {
		return nil, fmt.Errorf("%w: imageUrl must be a URL, not data URI", ErrValidation)
	}

	l := &model.Listing{
		SellerUID:   sellerUID,
		Title:       title,
		Description: description,
		Price:       in.Price,
		Category:    category,
		Condition:   in.Condition,
		ImageURL:    strings.TrimSpace(in.ImageURL),
		Status:      model.ListingStatusAvailable,
	}
	if err := s.listingRepo.Create(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *listingService) Get(ctx context.Context, id uint64) (*model.Listing, error) {
	l, err := s.listingRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return l, nil
}

func (s *listingService) ListAvailable(ctx context.Context, limit, offset int) ([]model.Listing, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.listingRepo.ListAvailable(ctx, limit, offset)
}

func (s *listingService) ListBySeller(ctx context.Context, sellerUID string) ([]model.Listing, error) {
	if sellerUID == "" {
		return nil, fmt.Errorf("%w: seller is required", ErrValidation)
	}
	return s.listingRepo.ListBySeller(ctx, sellerUID)
}

// Delete refuses whenever any purchase row references the listing, even
// if its own status still says available: status and the purchase row
// are written separately, so the purchases table is the authority.
func (s *listingService) Delete(ctx context.Context, id uint64, requesterUID string) error {
	l, err := s.listingRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if l.SellerUID != requesterUID {
		return ErrForbidden
	}
	purchased, err := s.purchaseRepo.ExistsByListing(ctx, id)
	if err != nil {
		return err
	}
	if purchased || l.Status == model.ListingStatusSold {
		return ErrAlreadySold
	}
	return s.listingRepo.Delete(ctx, id)
}
