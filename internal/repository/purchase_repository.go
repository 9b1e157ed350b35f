package repository

import (
	"context"

	"github.com/snaplist/snaplist-backend/internal/model"
	"gorm.io/gorm"
)

type PurchaseRepository interface {
	Create(ctx context.Context, p *model.Purchase) error
	// Delete removes a purchase row; used to compensate when the listing
	// update loses the race after the purchase was already recorded.
	Delete(ctx context.Context, id uint64) error
	ExistsByListing(ctx context.Context, listingID uint64) (bool, error)
	ListByBuyer(ctx context.Context, buyerUID string) ([]model.Purchase, error)
	SetDB(db *gorm.DB)
}

type purchaseRepository struct {
	db *gorm.DB
}

func NewPurchaseRepository(db *gorm.DB) PurchaseRepository {
	return &purchaseRepository{db: db}
}

func (r *purchaseRepository) Create(ctx context.Context, p *model.Purchase) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *purchaseRepository) Delete(ctx context.Context, id uint64) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Delete(&model.Purchase{}, id).Error
}

func (r *purchaseRepository) ExistsByListing(ctx context.Context, listingID uint64) (bool, error) {
	if r.db == nil {
		return false, ErrDBNotReady
	}
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.Purchase{}).
		Where("listing_id = ?", listingID).
		Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *purchaseRepository) ListByBuyer(ctx context.Context, buyerUID string) ([]model.Purchase, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var list []model.Purchase
	if err := r.db.WithContext(ctx).
		Where("buyer_uid = ?", buyerUID).
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *purchaseRepository) SetDB(db *gorm.DB) {
	r.db = db
}
