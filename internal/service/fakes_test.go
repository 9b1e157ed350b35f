package service

import (
	"context"
	"fmt"
	"time"

	"github.com/snaplist/snaplist-backend/internal/model"
	"gorm.io/gorm"
)

type fakeListingRepo struct {
	listings map[uint64]*model.Listing
	nextID   uint64
	// afterFind runs at the end of FindByID; tests use it to mutate
	// state between the read and the conditional sold update.
	afterFind func()
}

func newFakeListingRepo() *fakeListingRepo {
	return &fakeListingRepo{listings: map[uint64]*model.Listing{}, nextID: 1}
}

func (r *fakeListingRepo) Create(_ context.Context, l *model.Listing) error {
	l.ID = r.nextID
	r.nextID++
	l.CreatedAt = time.Now()
	cp := *l
	r.listings[l.ID] = &cp
	return nil
}

func (r *fakeListingRepo) FindByID(_ context.Context, id uint64) (*model.Listing, error) {
	l, ok := r.listings[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *l
	if r.afterFind != nil {
		r.afterFind()
	}
	return &cp, nil
}

func (r *fakeListingRepo) ListAvailable(_ context.Context, limit, offset int) ([]model.Listing, int64, error) {
	var out []model.Listing
	for _, l := range r.listings {
		if l.Available() {
			out = append(out, *l)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeListingRepo) ListBySeller(_ context.Context, sellerUID string) ([]model.Listing, error) {
	var out []model.Listing
	for _, l := range r.listings {
		if l.SellerUID == sellerUID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (r *fakeListingRepo) MarkSoldIfAvailable(_ context.Context, id uint64, buyerUID string, soldAt time.Time) (int64, error) {
	l, ok := r.listings[id]
	if !ok || !l.Available() {
		return 0, nil
	}
	l.Status = model.ListingStatusSold
	l.BuyerUID = &buyerUID
	l.SoldAt = &soldAt
	return 1, nil
}

func (r *fakeListingRepo) Delete(_ context.Context, id uint64) error {
	delete(r.listings, id)
	return nil
}

func (r *fakeListingRepo) SetDB(*gorm.DB) {}

type fakePurchaseRepo struct {
	purchases map[uint64]*model.Purchase
	nextID    uint64
	createErr error
}

func newFakePurchaseRepo() *fakePurchaseRepo {
	return &fakePurchaseRepo{purchases: map[uint64]*model.Purchase{}, nextID: 1}
}

func (r *fakePurchaseRepo) Create(_ context.Context, p *model.Purchase) error {
	if r.createErr != nil {
		return r.createErr
	}
	for _, existing := range r.purchases {
		if existing.ListingID == p.ListingID {
			return fmt.Errorf("duplicate entry for listing %d", p.ListingID)
		}
	}
	p.ID = r.nextID
	r.nextID++
	p.CreatedAt = time.Now()
	cp := *p
	r.purchases[p.ID] = &cp
	return nil
}

func (r *fakePurchaseRepo) Delete(_ context.Context, id uint64) error {
	delete(r.purchases, id)
	return nil
}

func (r *fakePurchaseRepo) ExistsByListing(_ context.Context, listingID uint64) (bool, error) {
	for _, p := range r.purchases {
		if p.ListingID == listingID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakePurchaseRepo) ListByBuyer(_ context.Context, buyerUID string) ([]model.Purchase, error) {
	var out []model.Purchase
	for _, p := range r.purchases {
		if p.BuyerUID == buyerUID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePurchaseRepo) SetDB(*gorm.DB) {}

type fakeNotificationRepo struct {
	notifications map[uint64]*model.Notification
	nextID        uint64
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{notifications: map[uint64]*model.Notification{}, nextID: 1}
}

func (r *fakeNotificationRepo) Create(_ context.Context, n *model.Notification) error {
	n.ID = r.nextID
	r.nextID++
	n.CreatedAt = time.Now()
	cp := *n
	r.notifications[n.ID] = &cp
	return nil
}

func (r *fakeNotificationRepo) ListByRecipient(_ context.Context, recipientUID string, limit int) ([]model.Notification, error) {
	var out []model.Notification
	for _, n := range r.notifications {
		if n.RecipientUID == recipientUID {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, id uint64, recipientUID string) error {
	if n, ok := r.notifications[id]; ok && n.RecipientUID == recipientUID {
		n.Read = true
	}
	return nil
}

func (r *fakeNotificationRepo) MarkAllRead(_ context.Context, recipientUID string) error {
	for _, n := range r.notifications {
		if n.RecipientUID == recipientUID {
			n.Read = true
		}
	}
	return nil
}

func (r *fakeNotificationRepo) CountUnread(_ context.Context, recipientUID string) (int64, error) {
	var cnt int64
	for _, n := range r.notifications {
		if n.RecipientUID == recipientUID && !n.Read {
			cnt++
		}
	}
	return cnt, nil
}

func (r *fakeNotificationRepo) SetDB(*gorm.DB) {}
