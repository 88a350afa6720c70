package model

import (
	"time"

	"github.com/google/uuid"
)

type BillingKeyRequest struct {
	Id              uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId          uuid.UUID  `gorm:"type:uuid;not null;index"`
	MerchantUid     string     `gorm:"type:varchar(255);uniqueIndex;not null"`
	CustomerUid     string     `gorm:"type:varchar(255);not null;index"`
	Status          string     `gorm:"type:varchar(20);not null"`
	Provider        string     `gorm:"type:varchar(50);not null"`
	RequestPayload  string     `gorm:"type:text"`
	PgToken         string     `gorm:"type:varchar(255)"`
	ProductId       *uuid.UUID `gorm:"type:uuid"`
	PaymentMethodId *uuid.UUID `gorm:"type:uuid"`
	CreatedAt       time.Time  `gorm:"autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime"`
}

func (BillingKeyRequest) TableName() string {
	return "billing_key_requests"
}
