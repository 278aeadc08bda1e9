package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zahrastore/storeapi/internal/domain"
	"github.com/zahrastore/storeapi/internal/repository"
	"github.com/zahrastore/storeapi/pkg/errors"
)

// In-memory repository fakes shared by the service tests.

func newFakeRepos() *repository.Repositories {
	return &repository.Repositories{
		Order:         &fakeOrderRepo{orders: map[uuid.UUID]*domain.Order{}},
		OrderItem:     &fakeOrderItemRepo{items: map[uuid.UUID][]*domain.OrderItem{}},
		Product:       &fakeProductRepo{products: map[uuid.UUID]*domain.Product{}},
		User:          &fakeUserRepo{users: map[uuid.UUID]*domain.User{}},
		PasswordReset: &fakePasswordResetRepo{resets: map[uuid.UUID]*domain.PasswordReset{}},
		TokenCache:    &fakeTokenCacheRepo{tokens: map[string]*domain.CachedToken{}},
	}
}

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*domain.Order

	fulfillmentErrors []string
	failSetSessionID  error
	dropOnMarkPaid    bool
}

func (r *fakeOrderRepo) Create(ctx context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *order
	r.orders[order.ID] = &cp
	return nil
}

func (r *fakeOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	cp := *order
	return &cp, nil
}

func (r *fakeOrderRepo) GetByCheckoutSessionID(ctx context.Context, sessionID string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, order := range r.orders {
		if order.CheckoutSessionID != nil && *order.CheckoutSessionID == sessionID {
			cp := *order
			return &cp, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "order", ID: sessionID}
}

func (r *fakeOrderRepo) MarkPaid(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.dropOnMarkPaid {
		delete(r.orders, id)
	}
	order, ok := r.orders[id]
	if !ok {
		return &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	order.PaymentStatus = domain.PaymentStatusPaid
	order.Status = domain.OrderStatusProcessing
	order.EmailSent = false
	return nil
}

func (r *fakeOrderRepo) SetEmailSent(ctx context.Context, id uuid.UUID, sent bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	order.EmailSent = sent
	return nil
}

func (r *fakeOrderRepo) SetCheckoutSessionID(ctx context.Context, id uuid.UUID, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failSetSessionID != nil {
		return r.failSetSessionID
	}
	order, ok := r.orders[id]
	if !ok {
		return &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	order.CheckoutSessionID = &sessionID
	return nil
}

func (r *fakeOrderRepo) SetFulfillmentOrder(ctx context.Context, id uuid.UUID, foID, foNumber string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return false, &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	if order.FulfillmentOrderID != nil {
		return false, nil
	}
	order.FulfillmentOrderID = &foID
	order.FulfillmentOrderNumber = &foNumber
	order.FulfillmentError = nil
	return true, nil
}

func (r *fakeOrderRepo) SetFulfillmentError(ctx context.Context, id uuid.UUID, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	order.FulfillmentError = &message
	r.fulfillmentErrors = append(r.fulfillmentErrors, message)
	return nil
}

func (r *fakeOrderRepo) UpdateTracking(ctx context.Context, id uuid.UUID, carrier, trackingNumber *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	if carrier != nil {
		order.TrackingCarrier = carrier
	}
	if trackingNumber != nil {
		order.TrackingNumber = trackingNumber
	}
	return nil
}

func (r *fakeOrderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	order.Status = status
	switch status {
	case domain.OrderStatusShipped:
		order.ShippedAt = &at
	case domain.OrderStatusDelivered:
		order.DeliveredAt = &at
	}
	return nil
}

func (r *fakeOrderRepo) ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Order
	for _, order := range r.orders {
		if order.UserID == userID {
			cp := *order
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) List(ctx context.Context, limit, offset int) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Order
	for _, order := range r.orders {
		cp := *order
		out = append(out, &cp)
	}
	return out, nil
}

type fakeOrderItemRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID][]*domain.OrderItem
}

func (r *fakeOrderItemRepo) CreateBatch(ctx context.Context, items []*domain.OrderItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range items {
		cp := *item
		r.items[item.OrderID] = append(r.items[item.OrderID], &cp)
	}
	return nil
}

func (r *fakeOrderItemRepo) GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]*domain.OrderItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.items[orderID], nil
}

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[uuid.UUID]*domain.Product

	productUpdates []domain.ProductFieldUpdate
	stockUpdates   []appliedStockUpdate
}

type appliedStockUpdate struct {
	id          uuid.UUID
	stock       int
	inStock     bool
	warehouseID *string
}

func (r *fakeProductRepo) Create(ctx context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *product
	r.products[product.ID] = &cp
	return nil
}

func (r *fakeProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	product, ok := r.products[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "product", ID: id.String()}
	}
	cp := *product
	return &cp, nil
}

func (r *fakeProductRepo) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, product := range r.products {
		if product.Slug == slug {
			cp := *product
			return &cp, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "product", ID: slug}
}

func (r *fakeProductRepo) GetByCJProductID(ctx context.Context, cjProductID string) (*domain.Product, error) {
	return r.findCJ(func(cj *domain.CJData) bool { return cj.ProductID == cjProductID }, cjProductID)
}

func (r *fakeProductRepo) GetByCJVariantID(ctx context.Context, cjVariantID string) (*domain.Product, error) {
	return r.findCJ(func(cj *domain.CJData) bool { return cj.VariantID == cjVariantID }, cjVariantID)
}

func (r *fakeProductRepo) GetByCJSKU(ctx context.Context, sku string) (*domain.Product, error) {
	return r.findCJ(func(cj *domain.CJData) bool { return cj.SKU == sku }, sku)
}

func (r *fakeProductRepo) findCJ(match func(*domain.CJData) bool, key string) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, product := range r.products {
		if product.CJ != nil && match(product.CJ) {
			cp := *product
			return &cp, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "product", ID: key}
}

func (r *fakeProductRepo) Update(ctx context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[product.ID]; !ok {
		return &errors.ErrNotFound{Resource: "product", ID: product.ID.String()}
	}
	cp := *product
	r.products[product.ID] = &cp
	return nil
}

func (r *fakeProductRepo) ApplyProductUpdate(ctx context.Context, id uuid.UUID, upd domain.ProductFieldUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	product, ok := r.products[id]
	if !ok {
		return &errors.ErrNotFound{Resource: "product", ID: id.String()}
	}
	if upd.Name != nil {
		product.Name = *upd.Name
	}
	if upd.Description != nil {
		product.Description = *upd.Description
	}
	if upd.Image != nil {
		product.Image = upd.Image
	}
	if upd.Price != nil {
		product.Price = *upd.Price
	}
	if upd.Variants != nil && product.CJ != nil {
		product.CJ.Variants = upd.Variants
	}
	if upd.Discontinue {
		product.Stock = 0
		product.InStock = false
	}
	r.productUpdates = append(r.productUpdates, upd)
	return nil
}

func (r *fakeProductRepo) ApplyStockUpdate(ctx context.Context, id uuid.UUID, stock int, inStock bool, warehouseID *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	product, ok := r.products[id]
	if !ok {
		return &errors.ErrNotFound{Resource: "product", ID: id.String()}
	}
	product.Stock = stock
	product.InStock = inStock
	if warehouseID != nil && product.CJ != nil {
		product.CJ.WarehouseID = warehouseID
	}
	r.stockUpdates = append(r.stockUpdates, appliedStockUpdate{id: id, stock: stock, inStock: inStock, warehouseID: warehouseID})
	return nil
}

func (r *fakeProductRepo) List(ctx context.Context, limit, offset int) ([]*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Product
	for _, product := range r.products {
		cp := *product
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return &errors.ErrNotFound{Resource: "product", ID: id.String()}
	}
	delete(r.products, id)
	return nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "user", ID: id.String()}
	}
	cp := *user
	return &cp, nil
}

func (r *fakeUserRepo) GetByAPIKeyLookup(ctx context.Context, lookup string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.APIKeyLookup == lookup {
			cp := *user
			return &cp, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "user", ID: lookup}
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			cp := *user
			return &cp, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "user", ID: email}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return &errors.ErrNotFound{Resource: "user", ID: id.String()}
	}
	user.PasswordHash = passwordHash
	return nil
}

type fakePasswordResetRepo struct {
	mu     sync.Mutex
	resets map[uuid.UUID]*domain.PasswordReset
}

func (r *fakePasswordResetRepo) Create(ctx context.Context, reset *domain.PasswordReset) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *reset
	r.resets[reset.ID] = &cp
	return nil
}

func (r *fakePasswordResetRepo) GetByTokenHash(ctx context.Context, tokenHash string) (*domain.PasswordReset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, reset := range r.resets {
		if reset.TokenHash == tokenHash {
			cp := *reset
			return &cp, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "password reset", ID: tokenHash}
}

func (r *fakePasswordResetRepo) MarkUsed(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	reset, ok := r.resets[id]
	if !ok {
		return &errors.ErrNotFound{Resource: "password reset", ID: id.String()}
	}
	reset.Used = true
	return nil
}

func (r *fakePasswordResetRepo) DeleteExpired(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, reset := range r.resets {
		if reset.ExpiresAt.Before(time.Now()) {
			delete(r.resets, id)
			n++
		}
	}
	return n, nil
}

type fakeTokenCacheRepo struct {
	mu     sync.Mutex
	tokens map[string]*domain.CachedToken
}

func (r *fakeTokenCacheRepo) Get(ctx context.Context, service string) (*domain.CachedToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	token, ok := r.tokens[service]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "cached token", ID: service}
	}
	cp := *token
	return &cp, nil
}

func (r *fakeTokenCacheRepo) Upsert(ctx context.Context, token *domain.CachedToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *token
	r.tokens[token.Service] = &cp
	return nil
}

func (r *fakeTokenCacheRepo) PurgeExpired(ctx context.Context, retention time.Duration) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := time.Now().Add(-retention)
	var n int64
	for service, token := range r.tokens {
		if token.AccessTokenExpiry.Before(cutoff) {
			delete(r.tokens, service)
			n++
		}
	}
	return n, nil
}

// recordingMailer captures sent mail for assertions; fails when told to.
type recordingMailer struct {
	mu      sync.Mutex
	sent    []sentMail
	failAll bool
}

type sentMail struct {
	to      string
	subject string
	body    string
}

func (m *recordingMailer) Send(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return errContext("mailer down")
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

type errContext string

func (e errContext) Error() string { return string(e) }
