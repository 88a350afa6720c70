package implementation

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"subscription-billing-be/internal/entity"
	"subscription-billing-be/internal/mapper"
	"subscription-billing-be/internal/model"
	"subscription-billing-be/internal/repository/contract"
	"subscription-billing-be/internal/repository/scope"
	"subscription-billing-be/internal/repository/specification"
)

type BillingKeyRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.BillingKeyMapper
}

func NewBillingKeyRepository(db *gorm.DB) contract.BillingKeyRepository {
	return &BillingKeyRepositoryImpl{
		db:     db,
		mapper: mapper.NewBillingKeyMapper(),
	}
}

func (r *BillingKeyRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *BillingKeyRepositoryImpl) Create(ctx context.Context, req *entity.BillingKeyRequest) error {
	m := r.mapper.ToModel(req)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*req = *r.mapper.ToEntity(m)
	return nil
}

func (r *BillingKeyRepositoryImpl) Update(ctx context.Context, req *entity.BillingKeyRequest) error {
	m := r.mapper.ToModel(req)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*req = *r.mapper.ToEntity(m)
	return nil
}

func (r *BillingKeyRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.BillingKeyRequest, error) {
	var m model.BillingKeyRequest
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

// FindAll returns requests newest first; issuance attempts are an audit
// trail, the latest one is nearly always the interesting one.
func (r *BillingKeyRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.BillingKeyRequest, error) {
	var models []*model.BillingKeyRequest
	query := r.applySpecifications(r.db.WithContext(ctx).Scopes(scope.OrderByCreatedDesc), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.BillingKeyRequest, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}
