package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"subscription-billing-be/internal/entity"
	"subscription-billing-be/internal/repository/contract"
	"subscription-billing-be/internal/repository/specification"
	"subscription-billing-be/internal/repository/unitofwork"
	"subscription-billing-be/pkg/events"
	"subscription-billing-be/pkg/pg"
)

// memStore is a process-local stand-in for the database. Specifications are
// interpreted per entity so service logic runs unchanged against it.
type memStore struct {
	mu            sync.Mutex
	seq           int
	users         map[uuid.UUID]*entity.User
	products      map[uuid.UUID]*entity.Product
	billingKeys   map[uuid.UUID]*entity.BillingKeyRequest
	methods       map[uuid.UUID]*entity.PaymentMethod
	subscriptions map[uuid.UUID]*entity.Subscription
	payments      map[uuid.UUID]*entity.SubscriptionPayment
}

func newMemStore() *memStore {
	return &memStore{
		users:         make(map[uuid.UUID]*entity.User),
		products:      make(map[uuid.UUID]*entity.Product),
		billingKeys:   make(map[uuid.UUID]*entity.BillingKeyRequest),
		methods:       make(map[uuid.UUID]*entity.PaymentMethod),
		subscriptions: make(map[uuid.UUID]*entity.Subscription),
		payments:      make(map[uuid.UUID]*entity.SubscriptionPayment),
	}
}

// nextCreatedAt hands out strictly increasing timestamps so created_at
// ordering is deterministic.
func (s *memStore) nextCreatedAt() time.Time {
	s.seq++
	return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(s.seq) * time.Second)
}

type fakeFactory struct {
	store *memStore
}

func newFakeFactory() *fakeFactory {
	return &fakeFactory{store: newMemStore()}
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &fakeUow{store: f.store}
}

type fakeUow struct {
	store *memStore
	inTx  bool
}

func (u *fakeUow) Begin(ctx context.Context) error { u.inTx = true; return nil }
func (u *fakeUow) Commit() error                   { u.inTx = false; return nil }
func (u *fakeUow) Rollback() error                 { u.inTx = false; return nil }

func (u *fakeUow) UserRepository() contract.UserRepository {
	return &fakeUserRepo{store: u.store}
}
func (u *fakeUow) ProductRepository() contract.ProductRepository {
	return &fakeProductRepo{store: u.store}
}
func (u *fakeUow) BillingKeyRepository() contract.BillingKeyRepository {
	return &fakeBillingKeyRepo{store: u.store}
}
func (u *fakeUow) PaymentMethodRepository() contract.PaymentMethodRepository {
	return &fakePaymentMethodRepo{store: u.store}
}
func (u *fakeUow) SubscriptionRepository() contract.SubscriptionRepository {
	return &fakeSubscriptionRepo{store: u.store}
}
func (u *fakeUow) SubscriptionPaymentRepository() contract.SubscriptionPaymentRepository {
	return &fakeSubscriptionPaymentRepo{store: u.store}
}

// querySpec is the interpreted form of a specification list.
type querySpec struct {
	orderField string
	orderDesc  bool
	limit      int
	offset     int
	filters    []specification.Specification
}

func parseSpecs(specs []specification.Specification) querySpec {
	q := querySpec{limit: -1}
	for _, sp := range specs {
		switch v := sp.(type) {
		case specification.OrderBy:
			q.orderField = v.Field
			q.orderDesc = v.Desc
		case specification.Pagination:
			q.limit = v.Limit
			q.offset = v.Offset
		default:
			q.filters = append(q.filters, sp)
		}
	}
	return q
}

func paginate[T any](items []T, q querySpec) []T {
	if q.offset > 0 {
		if q.offset >= len(items) {
			return nil
		}
		items = items[q.offset:]
	}
	if q.limit >= 0 && q.limit < len(items) {
		items = items[:q.limit]
	}
	return items
}

// --- users ---

type fakeUserRepo struct{ store *memStore }

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if user.Id == uuid.Nil {
		user.Id = uuid.New()
	}
	user.CreatedAt = r.store.nextCreatedAt()
	cp := *user
	r.store.users[user.Id] = &cp
	return nil
}

func (r *fakeUserRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	q := parseSpecs(specs)
	for _, u := range r.store.users {
		if matchUser(u, q.filters) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	q := parseSpecs(specs)
	var n int64
	for _, u := range r.store.users {
		if matchUser(u, q.filters) {
			n++
		}
	}
	return n, nil
}

func matchUser(u *entity.User, filters []specification.Specification) bool {
	for _, sp := range filters {
		switch v := sp.(type) {
		case specification.ByID:
			if u.Id != v.ID {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// --- products ---

type fakeProductRepo struct{ store *memStore }

func (r *fakeProductRepo) Create(ctx context.Context, product *entity.Product) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if product.Id == uuid.Nil {
		product.Id = uuid.New()
	}
	product.CreatedAt = r.store.nextCreatedAt()
	cp := *product
	r.store.products[product.Id] = &cp
	return nil
}

func (r *fakeProductRepo) Update(ctx context.Context, product *entity.Product) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *product
	r.store.products[product.Id] = &cp
	return nil
}

func (r *fakeProductRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Product, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

func (r *fakeProductRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	q := parseSpecs(specs)
	var out []*entity.Product
	for _, p := range r.store.products {
		if matchProduct(p, q.filters) {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		var less bool
		switch q.orderField {
		case "price":
			less = out[i].Price < out[j].Price
		default:
			less = out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		if q.orderDesc {
			return !less
		}
		return less
	})
	return paginate(out, q), nil
}

func matchProduct(p *entity.Product, filters []specification.Specification) bool {
	for _, sp := range filters {
		switch v := sp.(type) {
		case specification.ByID:
			if p.Id != v.ID {
				return false
			}
		case specification.FilterBy:
			if v.Field == "is_active" {
				if p.IsActive != v.Value.(bool) {
					return false
				}
			} else {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// --- billing key requests ---

type fakeBillingKeyRepo struct{ store *memStore }

func (r *fakeBillingKeyRepo) Create(ctx context.Context, req *entity.BillingKeyRequest) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if req.Id == uuid.Nil {
		req.Id = uuid.New()
	}
	req.CreatedAt = r.store.nextCreatedAt()
	cp := *req
	r.store.billingKeys[req.Id] = &cp
	return nil
}

func (r *fakeBillingKeyRepo) Update(ctx context.Context, req *entity.BillingKeyRequest) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *req
	r.store.billingKeys[req.Id] = &cp
	return nil
}

func (r *fakeBillingKeyRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.BillingKeyRequest, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

func (r *fakeBillingKeyRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.BillingKeyRequest, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	q := parseSpecs(specs)
	var out []*entity.BillingKeyRequest
	for _, b := range r.store.billingKeys {
		if matchBillingKey(b, q.filters) {
			cp := *b
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		less := out[i].CreatedAt.Before(out[j].CreatedAt)
		if q.orderDesc {
			return !less
		}
		return less
	})
	return paginate(out, q), nil
}

func matchBillingKey(b *entity.BillingKeyRequest, filters []specification.Specification) bool {
	for _, sp := range filters {
		switch v := sp.(type) {
		case specification.ByID:
			if b.Id != v.ID {
				return false
			}
		case specification.UserOwnedBy:
			if b.UserId != v.UserID {
				return false
			}
		case specification.ByMerchantUid:
			if b.MerchantUid != v.MerchantUid {
				return false
			}
		case specification.ByStatus:
			if string(b.Status) != v.Status {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// --- payment methods ---

type fakePaymentMethodRepo struct{ store *memStore }

func (r *fakePaymentMethodRepo) Create(ctx context.Context, method *entity.PaymentMethod) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if method.Id == uuid.Nil {
		method.Id = uuid.New()
	}
	method.CreatedAt = r.store.nextCreatedAt()
	cp := *method
	r.store.methods[method.Id] = &cp
	return nil
}

func (r *fakePaymentMethodRepo) Update(ctx context.Context, method *entity.PaymentMethod) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	existing, ok := r.store.methods[method.Id]
	if ok {
		method.CreatedAt = existing.CreatedAt
	}
	cp := *method
	r.store.methods[method.Id] = &cp
	return nil
}

func (r *fakePaymentMethodRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if m, ok := r.store.methods[id]; ok {
		now := time.Now()
		m.DeletedAt = &now
	}
	return nil
}

func (r *fakePaymentMethodRepo) ClearDefaults(ctx context.Context, userId uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, m := range r.store.methods {
		if m.UserId == userId && m.DeletedAt == nil {
			m.IsDefault = false
		}
	}
	return nil
}

func (r *fakePaymentMethodRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.PaymentMethod, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

func (r *fakePaymentMethodRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.PaymentMethod, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	q := parseSpecs(specs)
	var out []*entity.PaymentMethod
	for _, m := range r.store.methods {
		if m.DeletedAt != nil {
			continue
		}
		if matchPaymentMethod(m, q.filters) {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		less := out[i].CreatedAt.Before(out[j].CreatedAt)
		if q.orderDesc {
			return !less
		}
		return less
	})
	return paginate(out, q), nil
}

func (r *fakePaymentMethodRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, err := r.FindAll(ctx, specs...)
	return int64(len(all)), err
}

func matchPaymentMethod(m *entity.PaymentMethod, filters []specification.Specification) bool {
	for _, sp := range filters {
		switch v := sp.(type) {
		case specification.ByID:
			if m.Id != v.ID {
				return false
			}
		case specification.UserOwnedBy:
			if m.UserId != v.UserID {
				return false
			}
		case specification.DefaultOnly:
			if !m.IsDefault {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// --- subscriptions ---

type fakeSubscriptionRepo struct{ store *memStore }

func (r *fakeSubscriptionRepo) Create(ctx context.Context, sub *entity.Subscription) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if sub.Id == uuid.Nil {
		sub.Id = uuid.New()
	}
	sub.CreatedAt = r.store.nextCreatedAt()
	cp := *sub
	r.store.subscriptions[sub.Id] = &cp
	return nil
}

func (r *fakeSubscriptionRepo) Update(ctx context.Context, sub *entity.Subscription) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	existing, ok := r.store.subscriptions[sub.Id]
	if ok {
		sub.CreatedAt = existing.CreatedAt
	}
	cp := *sub
	r.store.subscriptions[sub.Id] = &cp
	return nil
}

func (r *fakeSubscriptionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Subscription, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

func (r *fakeSubscriptionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Subscription, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	q := parseSpecs(specs)
	var out []*entity.Subscription
	for _, s := range r.store.subscriptions {
		if matchSubscription(s, q.filters) {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		less := out[i].CreatedAt.Before(out[j].CreatedAt)
		if q.orderDesc {
			return !less
		}
		return less
	})
	return paginate(out, q), nil
}

func (r *fakeSubscriptionRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, err := r.FindAll(ctx, specs...)
	return int64(len(all)), err
}

func matchSubscription(s *entity.Subscription, filters []specification.Specification) bool {
	for _, sp := range filters {
		switch v := sp.(type) {
		case specification.ByID:
			if s.Id != v.ID {
				return false
			}
		case specification.UserOwnedBy:
			if s.UserId != v.UserID {
				return false
			}
		case specification.ByStatus:
			if string(s.Status) != v.Status {
				return false
			}
		case specification.AutoRenewing:
			if !s.AutoRenew {
				return false
			}
		case specification.DueWithin:
			if s.NextPaymentDate.Before(v.From) || !s.NextPaymentDate.Before(v.To) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// --- subscription payments ---

type fakeSubscriptionPaymentRepo struct{ store *memStore }

func (r *fakeSubscriptionPaymentRepo) Create(ctx context.Context, payment *entity.SubscriptionPayment) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if payment.Id == uuid.Nil {
		payment.Id = uuid.New()
	}
	payment.CreatedAt = r.store.nextCreatedAt()
	cp := *payment
	r.store.payments[payment.Id] = &cp
	return nil
}

func (r *fakeSubscriptionPaymentRepo) Update(ctx context.Context, payment *entity.SubscriptionPayment) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	existing, ok := r.store.payments[payment.Id]
	if ok {
		payment.CreatedAt = existing.CreatedAt
	}
	cp := *payment
	r.store.payments[payment.Id] = &cp
	return nil
}

func (r *fakeSubscriptionPaymentRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.SubscriptionPayment, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

func (r *fakeSubscriptionPaymentRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SubscriptionPayment, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	q := parseSpecs(specs)
	var out []*entity.SubscriptionPayment
	for _, p := range r.store.payments {
		if matchSubscriptionPayment(p, q.filters) {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		less := out[i].CreatedAt.Before(out[j].CreatedAt)
		if q.orderDesc {
			return !less
		}
		return less
	})
	return paginate(out, q), nil
}

func matchSubscriptionPayment(p *entity.SubscriptionPayment, filters []specification.Specification) bool {
	for _, sp := range filters {
		switch v := sp.(type) {
		case specification.ByID:
			if p.Id != v.ID {
				return false
			}
		case specification.ByMerchantUid:
			if p.MerchantUid != v.MerchantUid {
				return false
			}
		case specification.ByStatus:
			if string(p.Status) != v.Status {
				return false
			}
		case specification.FilterBy:
			if v.Field == "subscription_id" {
				id, ok := v.Value.(uuid.UUID)
				if !ok || p.SubscriptionId != id {
					return false
				}
			} else {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// --- collaborators ---

type fakePGClient struct {
	mu              sync.Mutex
	chargeFn        func(req pg.ChargeRequest) (*pg.PaymentInfo, error)
	getPaymentFn    func(impUid string) (*pg.PaymentInfo, error)
	getBillingKeyFn func(customerUid string) (*pg.BillingKeyInfo, error)
	chargeCalls     []pg.ChargeRequest
}

func (f *fakePGClient) GetAccessToken(ctx context.Context) (string, error) {
	return "test-token", nil
}

func (f *fakePGClient) GetBillingKey(ctx context.Context, customerUid string) (*pg.BillingKeyInfo, error) {
	if f.getBillingKeyFn != nil {
		return f.getBillingKeyFn(customerUid)
	}
	return &pg.BillingKeyInfo{CustomerUid: customerUid, CardNumberMasked: "1234-****-****-5678"}, nil
}

func (f *fakePGClient) GetPayment(ctx context.Context, impUid string) (*pg.PaymentInfo, error) {
	if f.getPaymentFn != nil {
		return f.getPaymentFn(impUid)
	}
	return nil, nil
}

func (f *fakePGClient) RequestCharge(ctx context.Context, req pg.ChargeRequest) (*pg.PaymentInfo, error) {
	f.mu.Lock()
	f.chargeCalls = append(f.chargeCalls, req)
	f.mu.Unlock()
	if f.chargeFn != nil {
		return f.chargeFn(req)
	}
	return &pg.PaymentInfo{
		ImpUid:      "imp_" + req.MerchantUid,
		MerchantUid: req.MerchantUid,
		Status:      "paid",
		Amount:      req.Amount,
		PaidAt:      time.Now().Unix(),
	}, nil
}

func (f *fakePGClient) CancelCharge(ctx context.Context, merchantUid, reason string) error {
	return nil
}

func (f *fakePGClient) chargeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.chargeCalls)
}

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event.EventType())
	return nil
}

type recordingMailer struct {
	mu       sync.Mutex
	subjects []string
}

func (m *recordingMailer) SendOperatorAlert(subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subjects = append(m.subjects, subject)
	return nil
}

func (m *recordingMailer) alertCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subjects)
}

// --- seed helpers ---

func seedUser(f *fakeFactory) *entity.User {
	u := &entity.User{Email: "user@example.com", FullName: "Test User"}
	_ = (&fakeUserRepo{store: f.store}).Create(context.Background(), u)
	return u
}

func seedProduct(f *fakeFactory, price int64, period entity.BillingPeriod) *entity.Product {
	p := &entity.Product{Name: "Pro Plan", Price: price, BillingPeriod: period, IsActive: true}
	_ = (&fakeProductRepo{store: f.store}).Create(context.Background(), p)
	return p
}

func seedPaymentMethod(f *fakeFactory, userId uuid.UUID, isDefault bool) *entity.PaymentMethod {
	m := &entity.PaymentMethod{
		UserId:           userId,
		Type:             entity.PaymentMethodCard,
		Provider:         entity.ProviderKakao,
		MaskedCardNumber: "1234-****-****-5678",
		CustomerUid:      "customer_" + userId.String(),
		IsDefault:        isDefault,
	}
	_ = (&fakePaymentMethodRepo{store: f.store}).Create(context.Background(), m)
	return m
}

func seedSubscription(f *fakeFactory, userId, productId uuid.UUID, next time.Time) *entity.Subscription {
	s := &entity.Subscription{
		UserId:          userId,
		ProductId:       productId,
		Status:          entity.SubscriptionStatusActive,
		StartDate:       next.AddDate(0, -1, 0),
		EndDate:         next,
		NextPaymentDate: next,
		AutoRenew:       true,
	}
	_ = (&fakeSubscriptionRepo{store: f.store}).Create(context.Background(), s)
	return s
}

func getSubscription(f *fakeFactory, id uuid.UUID) *entity.Subscription {
	s, _ := (&fakeSubscriptionRepo{store: f.store}).FindOne(context.Background(), specification.ByID{ID: id})
	return s
}

func paymentsOf(f *fakeFactory, subscriptionId uuid.UUID) []*entity.SubscriptionPayment {
	all, _ := (&fakeSubscriptionPaymentRepo{store: f.store}).FindAll(context.Background(),
		specification.Filter("subscription_id", subscriptionId))
	return all
}

func methodsOf(f *fakeFactory, userId uuid.UUID) []*entity.PaymentMethod {
	all, _ := (&fakePaymentMethodRepo{store: f.store}).FindAll(context.Background(),
		specification.UserOwnedBy{UserID: userId})
	return all
}
