package model

import "time"

type ListingStatus string

const (
	ListingStatusAvailable ListingStatus = "available"
	ListingStatusSold      ListingStatus = "sold"
)

type ListingCondition string

const (
	ConditionNew  ListingCondition = "New"
	ConditionUsed ListingCondition = "Used"
)

// Categories is the closed set a listing may be filed under. The AI
// draft suggests one of these; the seller can override it before
// publishing.
var Categories = []string{
	"Electronics",
	"Video Games & Consoles",
	"Home Appliances",
	"Fashion",
	"Health & Beauty",
	"Sports",
}

func ValidCategory(name string) bool {
	for _, c := range Categories {
		if c == name {
			return true
		}
	}
	return false
}

type Listing struct {
	ID          uint64           `gorm:"primaryKey;autoIncrement"`
	SellerUID   string           `gorm:"column:seller_uid;size:128;index;not null"`
	Title       string           `gorm:"size:120;not null"`
	Description string           `gorm:"type:text;not null"`
	Price       float64          `gorm:"not null"`
	Category    string           `gorm:"size:64;not null"`
	Condition   ListingCondition `gorm:"size:16;not null"`
	ImageURL    string           `gorm:"column:image_url;size:512;not null"`
	// Rows created before the status column existed have an empty
	// status and are treated as available.
	Status    ListingStatus `gorm:"size:16;index"`
	BuyerUID  *string       `gorm:"column:buyer_uid;size:128"`
	SoldAt    *time.Time    `gorm:"column:sold_at"`
	CreatedAt time.Time     `gorm:"autoCreateTime"`
	UpdatedAt time.Time     `gorm:"autoUpdateTime"`
}

func (Listing) TableName() string {
	return "listings"
}

func (l *Listing) Available() bool {
	return l.Status == ListingStatusAvailable || l.Status == ""
}
