package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/snaplist/snaplist-backend/internal/model"
	"github.com/snaplist/snaplist-backend/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrAlreadySold    = errors.New("already_sold")
	ErrOwnListing     = errors.New("own_listing")
	ErrPurchaseFailed = errors.New("purchase_failed")
)

type PurchaseWithListing struct {
	Purchase model.Purchase
	Listing  *model.Listing
}

type PurchaseService interface {
	Buy(ctx context.Context, listingID uint64, buyerUID, buyerContact string) (*model.Purchase, error)
	ListByBuyer(ctx context.Context, buyerUID string) ([]PurchaseWithListing, error)
}

type purchaseService struct {
	purchaseRepo repository.PurchaseRepository
	listingRepo  repository.ListingRepository
	notify       NotificationService
}

func NewPurchaseService(purchaseRepo repository.PurchaseRepository, listingRepo repository.ListingRepository, notify NotificationService) PurchaseService {
	return &purchaseService{purchaseRepo: purchaseRepo, listingRepo: listingRepo, notify: notify}
}

// Buy records the purchase, then flips the listing to sold with a
// conditional update. The purchase row is written first; if the listing
// was sold underneath us the row is deleted again, so a lost race never
// leaves an orphan purchase behind. The seller notification is
// best-effort and never fails the sale.
func (s *purchaseService) Buy(ctx context.Context, listingID uint64, buyerUID, buyerContact string) (*model.Purchase, error) {
	if buyerUID == "" {
		return nil, fmt.Errorf("%w: buyer is required", ErrValidation)
	}
	l, err := s.listingRepo.FindByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if l.SellerUID == buyerUID {
		return nil, ErrOwnListing
	}
	if !l.Available() {
		return nil, ErrAlreadySold
	}

	now := time.Now()
	p := &model.Purchase{
		ListingID: listingID,
		BuyerUID:  buyerUID,
	}
	if err := s.purchaseRepo.Create(ctx, p); err != nil {
		// The unique index on listing_id also lands here when a
		// concurrent buyer already recorded a purchase.
		return nil, fmt.Errorf("%w: %v", ErrPurchaseFailed, err)
	}

	rows, err := s.listingRepo.MarkSoldIfAvailable(ctx, listingID, buyerUID, now)
	if err != nil {
		s.compensate(ctx, p.ID)
		return nil, fmt.Errorf("%w: %v", ErrPurchaseFailed, err)
	}
	if rows == 0 {
		s.compensate(ctx, p.ID)
		return nil, ErrAlreadySold
	}

	if l.SellerUID != buyerUID {
		contact := buyerContact
		if contact == "" {
			contact = buyerUID
		}
		msg := fmt.Sprintf("Your item %q has been purchased by %s!", l.Title, contact)
		s.notify.NotifyPurchase(ctx, l.SellerUID, msg)
	}

	log.Info().
		Uint64("listingId", listingID).
		Str("buyer", buyerUID).
		Msg("purchase completed")
	return p, nil
}

func (s *purchaseService) compensate(ctx context.Context, purchaseID uint64) {
	if err := s.purchaseRepo.Delete(ctx, purchaseID); err != nil {
		log.Error().Uint64("purchaseId", purchaseID).Err(err).Msg("failed to compensate purchase row")
	}
}

func (s *purchaseService) ListByBuyer(ctx context.Context, buyerUID string) ([]PurchaseWithListing, error) {
	if buyerUID == "" {
		return nil, fmt.Errorf("%w: buyer is required", ErrValidation)
	}
	purchases, err := s.purchaseRepo.ListByBuyer(ctx, buyerUID)
	if err != nil {
		return nil, err
	}
	resp := make([]PurchaseWithListing, 0, len(purchases))
	for _, p := range purchases {
		l, _ := s.listingRepo.FindByID(ctx, p.ListingID)
		resp = append(resp, PurchaseWithListing{Purchase: p, Listing: l})
	}
	return resp, nil
}
