package model

import "time"

// Purchase records a completed buy. The unique index on listing_id
// guarantees at most one purchase per listing even if two buyers race.
type Purchase struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	ListingID uint64    `gorm:"column:listing_id;uniqueIndex:uk_purchases_listing;not null"`
	BuyerUID  string    `gorm:"column:buyer_uid;size:128;index;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (Purchase) TableName() string {
	return "purchases"
}
