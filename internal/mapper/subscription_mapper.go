package mapper

import (
	"subscription-billing-be/internal/entity"
	"subscription-billing-be/internal/model"
)

type SubscriptionMapper struct{}

func NewSubscriptionMapper() *SubscriptionMapper {
	return &SubscriptionMapper{}
}

func (m *SubscriptionMapper) ToEntity(s *model.Subscription) *entity.Subscription {
	if s == nil {
		return nil
	}
	return &entity.Subscription{
		Id:              s.Id,
		UserId:          s.UserId,
		ProductId:       s.ProductId,
		Status:          entity.SubscriptionStatus(s.Status),
		StartDate:       s.StartDate,
		EndDate:         s.EndDate,
		NextPaymentDate: s.NextPaymentDate,
		AutoRenew:       s.AutoRenew,
		CancelReason:    s.CancelReason,
		CancelledAt:     s.CancelledAt,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

func (m *SubscriptionMapper) ToModel(s *entity.Subscription) *model.Subscription {
	if s == nil {
		return nil
	}
	return &model.Subscription{
		Id:              s.Id,
		UserId:          s.UserId,
		ProductId:       s.ProductId,
		Status:          string(s.Status),
		StartDate:       s.StartDate,
		EndDate:         s.EndDate,
		NextPaymentDate: s.NextPaymentDate,
		AutoRenew:       s.AutoRenew,
		CancelReason:    s.CancelReason,
		CancelledAt:     s.CancelledAt,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

func (m *SubscriptionMapper) PaymentToEntity(p *model.SubscriptionPayment) *entity.SubscriptionPayment {
	if p == nil {
		return nil
	}
	return &entity.SubscriptionPayment{
		Id:              p.Id,
		SubscriptionId:  p.SubscriptionId,
		PaymentMethodId: p.PaymentMethodId,
		MerchantUid:     p.MerchantUid,
		Status:          entity.SubscriptionPaymentStatus(p.Status),
		Amount:          p.Amount,
		PaidAt:          p.PaidAt,
		Provider:        entity.PaymentProvider(p.Provider),
		RawResponse:     p.RawResponse,
		FailReason:      p.FailReason,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func (m *SubscriptionMapper) PaymentToModel(p *entity.SubscriptionPayment) *model.SubscriptionPayment {
	if p == nil {
		return nil
	}
	return &model.SubscriptionPayment{
		Id:              p.Id,
		SubscriptionId:  p.SubscriptionId,
		PaymentMethodId: p.PaymentMethodId,
		MerchantUid:     p.MerchantUid,
		Status:          string(p.Status),
		Amount:          p.Amount,
		PaidAt:          p.PaidAt,
		Provider:        string(p.Provider),
		RawResponse:     p.RawResponse,
		FailReason:      p.FailReason,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}
