package model

import (
	"time"

	"github.com/google/uuid"
)

type SubscriptionPayment struct {
	Id              uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SubscriptionId  uuid.UUID  `gorm:"type:uuid;not null;index"`
	PaymentMethodId *uuid.UUID `gorm:"type:uuid"`
	MerchantUid     string     `gorm:"type:varchar(255);uniqueIndex;not null"`
	Status          string     `gorm:"type:varchar(20);not null"`
	Amount          int64      `gorm:"not null"`
	PaidAt          *time.Time `gorm:""`
	Provider        string     `gorm:"type:varchar(50);not null"`
	RawResponse     string     `gorm:"type:text"`
	FailReason      *string    `gorm:"type:text"`
	CreatedAt       time.Time  `gorm:"autoCreateTime;index"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime"`
}

func (SubscriptionPayment) TableName() string {
	return "subscription_payments"
}
