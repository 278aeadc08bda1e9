package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zahrastore/storeapi/internal/domain"
	"github.com/zahrastore/storeapi/pkg/errors"
)

func TestCreateOrderSnapshotsItems(t *testing.T) {
	repos := newFakeRepos()
	product := seedProduct(t, repos.Product, 19.99)
	svc := NewOrderService(repos, zap.NewNop())

	result, err := svc.CreateOrder(context.Background(), uuid.New(), CreateOrderRequest{
		Items:           []CheckoutItem{{ProductID: product.ID.String(), Quantity: 2}},
		ShippingAddress: map[string]interface{}{"city": "Amman"},
		Shipping:        ShippingSelection{Label: "Standard", Price: 5.00},
	})
	require.NoError(t, err)

	// 2 x 19.99 + 5.00 shipping = 44.98
	assert.Equal(t, int64(4498), result.Order.TotalMinor)
	assert.Equal(t, domain.PaymentStatusPending, result.Order.PaymentStatus)

	require.Len(t, result.Items, 1)
	assert.Equal(t, "Widget", result.Items[0].Name)
	assert.Equal(t, 19.99, result.Items[0].UnitPrice)

	// The stored snapshot keeps the creation stamp it was written with.
	stored, err := repos.OrderItem.GetByOrderID(context.Background(), result.Order.ID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.False(t, stored[0].CreatedAt.IsZero())
	assert.Equal(t, result.Items[0].CreatedAt, stored[0].CreatedAt)
}

func TestCreateOrderOutOfStock(t *testing.T) {
	repos := newFakeRepos()
	product := &domain.Product{
		ID:      uuid.New(),
		Slug:    "sold-out",
		Name:    "Sold Out",
		Price:   9.99,
		Stock:   0,
		InStock: false,
	}
	require.NoError(t, repos.Product.Create(context.Background(), product))
	svc := NewOrderService(repos, zap.NewNop())

	_, err := svc.CreateOrder(context.Background(), uuid.New(), CreateOrderRequest{
		Items:           []CheckoutItem{{ProductID: product.ID.String(), Quantity: 1}},
		ShippingAddress: map[string]interface{}{"city": "Amman"},
	})
	require.Error(t, err)
	assert.IsType(t, &errors.ErrValidation{}, err)
}

func TestGetOrderOwnership(t *testing.T) {
	repos := newFakeRepos()
	product := seedProduct(t, repos.Product, 10.00)
	svc := NewOrderService(repos, zap.NewNop())

	owner := &domain.User{ID: uuid.New(), Role: domain.RoleCustomer}
	result, err := svc.CreateOrder(context.Background(), owner.ID, CreateOrderRequest{
		Items:           []CheckoutItem{{ProductID: product.ID.String(), Quantity: 1}},
		ShippingAddress: map[string]interface{}{"city": "Amman"},
	})
	require.NoError(t, err)

	_, err = svc.GetOrder(context.Background(), owner, result.Order.ID)
	assert.NoError(t, err)

	stranger := &domain.User{ID: uuid.New(), Role: domain.RoleCustomer}
	_, err = svc.GetOrder(context.Background(), stranger, result.Order.ID)
	assert.IsType(t, &errors.ErrForbidden{}, err)

	admin := &domain.User{ID: uuid.New(), Role: domain.RoleAdmin}
	_, err = svc.GetOrder(context.Background(), admin, result.Order.ID)
	assert.NoError(t, err)
}
