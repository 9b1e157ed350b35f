package service

import (
	"context"
	"testing"

	"github.com/snaplist/snaplist-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedListing(t *testing.T, repo *fakeListingRepo, sellerUID string) *model.Listing {
	t.Helper()
	l := &model.Listing{
		SellerUID:   sellerUID,
		Title:       "Bike",
		Description: "City bike, some wear.",
		Price:       120,
		Category:    "Sports",
		Condition:   model.ConditionUsed,
		ImageURL:    "https://img.example/bike.jpg",
		Status:      model.ListingStatusAvailable,
	}
	require.NoError(t, repo.Create(context.Background(), l))
	return l
}

func newPurchaseFixture() (*fakeListingRepo, *fakePurchaseRepo, *fakeNotificationRepo, PurchaseService) {
	listings := newFakeListingRepo()
	purchases := newFakePurchaseRepo()
	notifications := newFakeNotificationRepo()
	svc := NewPurchaseService(purchases, listings, NewNotificationService(notifications))
	return listings, purchases, notifications, svc
}

func TestBuyMarksListingSoldAndNotifiesSeller(t *testing.T) {
	ctx := context.Background()
	listings, purchases, notifications, svc := newPurchaseFixture()
	l := seedListing(t, listings, "seller-1")

	p, err := svc.Buy(ctx, l.ID, "buyer-1", "buyer@example.com")
	require.NoError(t, err)
	assert.Equal(t, l.ID, p.ListingID)
	assert.Equal(t, "buyer-1", p.BuyerUID)

	available, _, err := listings.ListAvailable(ctx, 20, 0)
	require.NoError(t, err)
	assert.Empty(t, available)

	mine, err := listings.ListBySeller(ctx, "seller-1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	sold := mine[0]
	assert.Equal(t, model.ListingStatusSold, sold.Status)
	require.NotNil(t, sold.BuyerUID)
	assert.Equal(t, "buyer-1", *sold.BuyerUID)
	assert.NotNil(t, sold.SoldAt)

	notifs, err := notifications.ListByRecipient(ctx, "seller-1", 10)
	require.NoError(t, err)
	require.Len(t, notifs, 1)
	assert.Equal(t, model.NotificationTypePurchase, notifs[0].Type)
	assert.Contains(t, notifs[0].Message, `"Bike"`)
	assert.Contains(t, notifs[0].Message, "buyer@example.com")

	assert.Len(t, purchases.purchases, 1)
}

func TestBuySoldListingFails(t *testing.T) {
	ctx := context.Background()
	listings, purchases, notifications, svc := newPurchaseFixture()
	l := seedListing(t, listings, "seller-1")

	_, err := svc.Buy(ctx, l.ID, "buyer-1", "")
	require.NoError(t, err)

	_, err = svc.Buy(ctx, l.ID, "buyer-2", "")
	assert.ErrorIs(t, err, ErrAlreadySold)

	// First buyer's purchase is the only one; the listing still belongs
	// to buyer-1 and the seller got exactly one notification.
	assert.Len(t, purchases.purchases, 1)
	stored := listings.listings[l.ID]
	require.NotNil(t, stored.BuyerUID)
	assert.Equal(t, "buyer-1", *stored.BuyerUID)
	notifs, _ := notifications.ListByRecipient(ctx, "seller-1", 10)
	assert.Len(t, notifs, 1)
}

func TestBuyCompensatesWhenRaceLost(t *testing.T) {
	ctx := context.Background()
	listings, purchases, _, svc := newPurchaseFixture()
	l := seedListing(t, listings, "seller-1")

	// Another buyer completes between our read and the conditional
	// update; the conditional update matches zero rows and the purchase
	// row we wrote must be deleted again.
	listings.afterFind = func() {
		stored := listings.listings[l.ID]
		if stored.Available() {
			buyer := "buyer-fast"
			stored.Status = model.ListingStatusSold
			stored.BuyerUID = &buyer
		}
	}

	_, err := svc.Buy(ctx, l.ID, "buyer-slow", "")
	assert.ErrorIs(t, err, ErrAlreadySold)
	assert.Empty(t, purchases.purchases)
}

func TestBuyOwnListingRejected(t *testing.T) {
	ctx := context.Background()
	listings, purchases, _, svc := newPurchaseFixture()
	l := seedListing(t, listings, "seller-1")

	_, err := svc.Buy(ctx, l.ID, "seller-1", "")
	assert.ErrorIs(t, err, ErrOwnListing)
	assert.Empty(t, purchases.purchases)
}

func TestBuyMissingListing(t *testing.T) {
	_, _, _, svc := newPurchaseFixture()
	_, err := svc.Buy(context.Background(), 999, "buyer-1", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBuyPurchaseWriteFailure(t *testing.T) {
	ctx := context.Background()
	listings, purchases, _, svc := newPurchaseFixture()
	l := seedListing(t, listings, "seller-1")
	purchases.createErr = assert.AnError

	_, err := svc.Buy(ctx, l.ID, "buyer-1", "")
	assert.ErrorIs(t, err, ErrPurchaseFailed)
	// Aborted before the listing update: still available.
	assert.True(t, listings.listings[l.ID].Available())
}

func TestListByBuyerJoinsListings(t *testing.T) {
	ctx := context.Background()
	listings, _, _, svc := newPurchaseFixture()
	l := seedListing(t, listings, "seller-1")

	_, err := svc.Buy(ctx, l.ID, "buyer-1", "")
	require.NoError(t, err)

	rows, err := svc.ListByBuyer(ctx, "buyer-1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].Listing)
	assert.Equal(t, "Bike", rows[0].Listing.Title)
}
