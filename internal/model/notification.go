package model

import "time"

const NotificationTypePurchase = "purchase"

type Notification struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement"`
	RecipientUID string    `gorm:"column:recipient_uid;size:128;index;not null"`
	Type         string    `gorm:"size:64;not null"`
	Message      string    `gorm:"type:text;not null"`
	Read         bool      `gorm:"not null;default:false"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

func (Notification) TableName() string {
	return "notifications"
}
