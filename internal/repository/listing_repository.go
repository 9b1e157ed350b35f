package repository

import (
	"context"
	"errors"
	"time"

	"github.com/snaplist/snaplist-backend/internal/model"
	"gorm.io/gorm"
)

var ErrDBNotReady = errors.New("database not initialized")

type ListingRepository interface {
	Create(ctx context.Context, l *model.Listing) error
	FindByID(ctx context.Context, id uint64) (*model.Listing, error)
	ListAvailable(ctx context.Context, limit, offset int) ([]model.Listing, int64, error)
	ListBySeller(ctx context.Context, sellerUID string) ([]model.Listing, error)
	// MarkSoldIfAvailable flips status to sold and sets buyer/soldAt in a
	// single conditional update. Returns the number of rows affected:
	// zero means another buyer got there first.
	MarkSoldIfAvailable(ctx context.Context, id uint64, buyerUID string, soldAt time.Time) (int64, error)
	Delete(ctx context.Context, id uint64) error
	SetDB(db *gorm.DB)
}

type listingRepository struct {
	db *gorm.DB
}

func NewListingRepository(db *gorm.DB) ListingRepository {
	return &listingRepository{db: db}
}

func (r *listingRepository) Create(ctx context.Context, l *model.Listing) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *listingRepository) FindByID(ctx context.Context, id uint64) (*model.Listing, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var l model.Listing
	if err := r.db.WithContext(ctx).First(&l, id).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

// ListAvailable also returns rows with an empty status: records created
// before the status column existed count as available.
func (r *listingRepository) ListAvailable(ctx context.Context, limit, offset int) ([]model.Listing, int64, error) {
	if r.db == nil {
		return nil, 0, ErrDBNotReady
	}
	var (
		listings []model.Listing
		total    int64
	)
	q := r.db.WithContext(ctx).Model(&model.Listing{}).
		Where("status = ? OR status = '' OR status IS NULL", model.ListingStatusAvailable)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := q.Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&listings).Error; err != nil {
		return nil, 0, err
	}
	return listings, total, nil
}

func (r *listingRepository) ListBySeller(ctx context.Context, sellerUID string) ([]model.Listing, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var listings []model.Listing
	if err := r.db.WithContext(ctx).
		Where("seller_uid = ?", sellerUID).
		Order("created_at desc").
		Find(&listings).Error; err != nil {
		return nil, err
	}
	return listings, nil
}

func (r *listingRepository) MarkSoldIfAvailable(ctx context.Context, id uint64, buyerUID string, soldAt time.Time) (int64, error) {
	if r.db == nil {
		return 0, ErrDBNotReady
	}
	res := r.db.WithContext(ctx).
		Model(&model.Listing{}).
		Where("id = ? AND (status = ? OR status = '' OR status IS NULL)", id, model.ListingStatusAvailable).
		Updates(map[string]interface{}{
			"status":    model.ListingStatusSold,
			"buyer_uid": buyerUID,
			"sold_at":   soldAt,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *listingRepository) Delete(ctx context.Context, id uint64) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Delete(&model.Listing{}, id).Error
}

func (r *listingRepository) SetDB(db *gorm.DB) {
	r.db = db
}
