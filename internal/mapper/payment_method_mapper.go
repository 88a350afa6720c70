package mapper

import (
	"gorm.io/gorm"

	"subscription-billing-be/internal/entity"
	"subscription-billing-be/internal/model"
)

type PaymentMethodMapper struct{}

func NewPaymentMethodMapper() *PaymentMethodMapper {
	return &PaymentMethodMapper{}
}

func (m *PaymentMethodMapper) ToEntity(p *model.PaymentMethod) *entity.PaymentMethod {
	if p == nil {
		return nil
	}
	e := &entity.PaymentMethod{
		Id:               p.Id,
		UserId:           p.UserId,
		Type:             entity.PaymentMethodType(p.Type),
		Provider:         entity.PaymentProvider(p.Provider),
		MaskedCardNumber: p.MaskedCardNumber,
		CustomerUid:      p.CustomerUid,
		IsDefault:        p.IsDefault,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
	if p.DeletedAt.Valid {
		t := p.DeletedAt.Time
		e.DeletedAt = &t
	}
	return e
}

func (m *PaymentMethodMapper) ToModel(p *entity.PaymentMethod) *model.PaymentMethod {
	if p == nil {
		return nil
	}
	mdl := &model.PaymentMethod{
		Id:               p.Id,
		UserId:           p.UserId,
		Type:             string(p.Type),
		Provider:         string(p.Provider),
		MaskedCardNumber: p.MaskedCardNumber,
		CustomerUid:      p.CustomerUid,
		IsDefault:        p.IsDefault,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
	if p.DeletedAt != nil {
		mdl.DeletedAt = gorm.DeletedAt{Time: *p.DeletedAt, Valid: true}
	}
	return mdl
}
