package mapper

import (
	"subscription-billing-be/internal/entity"
	"subscription-billing-be/internal/model"
)

type BillingKeyMapper struct{}

func NewBillingKeyMapper() *BillingKeyMapper {
	return &BillingKeyMapper{}
}

func (m *BillingKeyMapper) ToEntity(r *model.BillingKeyRequest) *entity.BillingKeyRequest {
	if r == nil {
		return nil
	}
	return &entity.BillingKeyRequest{
		Id:              r.Id,
		UserId:          r.UserId,
		MerchantUid:     r.MerchantUid,
		CustomerUid:     r.CustomerUid,
		Status:          entity.BillingKeyRequestStatus(r.Status),
		Provider:        entity.PaymentProvider(r.Provider),
		RequestPayload:  r.RequestPayload,
		PgToken:         r.PgToken,
		ProductId:       r.ProductId,
		PaymentMethodId: r.PaymentMethodId,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func (m *BillingKeyMapper) ToModel(r *entity.BillingKeyRequest) *model.BillingKeyRequest {
	if r == nil {
		return nil
	}
	return &model.BillingKeyRequest{
		Id:              r.Id,
		UserId:          r.UserId,
		MerchantUid:     r.MerchantUid,
		CustomerUid:     r.CustomerUid,
		Status:          string(r.Status),
		Provider:        string(r.Provider),
		RequestPayload:  r.RequestPayload,
		PgToken:         r.PgToken,
		ProductId:       r.ProductId,
		PaymentMethodId: r.PaymentMethodId,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}
