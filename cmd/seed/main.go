// Seeds the product catalog for local development.
package main

import (
	"context"
	"log"

	"subscription-billing-be/internal/config"
	"subscription-billing-be/internal/entity"
	"subscription-billing-be/internal/repository/unitofwork"
	"subscription-billing-be/pkg/database"
)

func main() {
	cfg := config.Load()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	products := []entity.Product{
		{Name: "Basic Monthly", Price: 4900, BillingPeriod: entity.BillingPeriodMonthly, IsActive: true},
		{Name: "Pro Monthly", Price: 14900, BillingPeriod: entity.BillingPeriodMonthly, IsActive: true},
		{Name: "Pro Yearly", Price: 149000, BillingPeriod: entity.BillingPeriodYearly, IsActive: true},
		{Name: "Free Tier", Price: 0, BillingPeriod: entity.BillingPeriodMonthly, IsActive: true},
	}

	ctx := context.Background()
	uow := unitofwork.NewRepositoryFactory(db).NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		log.Panicf("Unable to open transaction: %v", err)
	}
	defer uow.Rollback()

	for i := range products {
		if err := uow.ProductRepository().Create(ctx, &products[i]); err != nil {
			log.Panicf("Failed to seed product %q: %v", products[i].Name, err)
		}
		log.Printf("Seeded product %q (%d KRW, %s)", products[i].Name, products[i].Price, products[i].BillingPeriod)
	}

	if err := uow.Commit(); err != nil {
		log.Panicf("Failed to commit seed: %v", err)
	}
	log.Println("✅ Product seed complete")
}
