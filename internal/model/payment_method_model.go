package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentMethod struct {
	Id               uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId           uuid.UUID      `gorm:"type:uuid;not null;index"`
	Type             string         `gorm:"type:varchar(20);not null"`
	Provider         string         `gorm:"type:varchar(50);not null"`
	MaskedCardNumber string         `gorm:"type:varchar(32)"`
	CustomerUid      string         `gorm:"type:varchar(255);not null"`
	IsDefault        bool           `gorm:"default:false"`
	CreatedAt        time.Time      `gorm:"autoCreateTime"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime"`
	DeletedAt        gorm.DeletedAt `gorm:"index"`
}

func (PaymentMethod) TableName() string {
	return "payment_methods"
}
