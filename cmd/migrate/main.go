package main

import (
	"log"

	"subscription-billing-be/internal/config"
	"subscription-billing-be/internal/model"
	"subscription-billing-be/pkg/database"
)

func main() {
	cfg := config.Load()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	err = db.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.BillingKeyRequest{},
		&model.PaymentMethod{},
		&model.Subscription{},
		&model.SubscriptionPayment{},
	)
	if err != nil {
		log.Panicf("Migration failed: %v", err)
	}

	log.Println("✅ Migration complete")
}
