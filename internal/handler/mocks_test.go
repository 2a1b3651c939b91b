package handler

import (
	"context"

	"lensstore/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockProductService is a mock implementation of ProductService.
type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductService) GetByID(ctx context.Context, id string) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) CatalogStatus(ctx context.Context) (*model.CatalogStatus, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CatalogStatus), args.Error(1)
}

// MockCheckoutService is a mock implementation of CheckoutService.
type MockCheckoutService struct {
	mock.Mock
}

func (m *MockCheckoutService) CreatePix(ctx context.Context, req *model.CheckoutRequest, baseURL string) (*model.PixCheckoutResponse, error) {
	args := m.Called(ctx, req, baseURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PixCheckoutResponse), args.Error(1)
}

func (m *MockCheckoutService) CreatePreference(ctx context.Context, req *model.CheckoutRequest, baseURL string) (*model.PreferenceCheckoutResponse, error) {
	args := m.Called(ctx, req, baseURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PreferenceCheckoutResponse), args.Error(1)
}

// MockWebhookService is a mock implementation of WebhookService.
type MockWebhookService struct {
	mock.Mock
}

func (m *MockWebhookService) Reconcile(ctx context.Context, n model.PaymentNotification) (*model.ReconcileResult, error) {
	args := m.Called(ctx, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ReconcileResult), args.Error(1)
}

// MockAccountService is a mock implementation of AccountService.
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) ListOrders(ctx context.Context, userID uuid.UUID) ([]model.OrderDetail, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.OrderDetail), args.Error(1)
}

func (m *MockAccountService) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*model.OrderDetail, error) {
	args := m.Called(ctx, userID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderDetail), args.Error(1)
}

func (m *MockAccountService) Reorder(ctx context.Context, userID, orderID uuid.UUID, current []model.CartLine) (*model.ReorderResult, error) {
	args := m.Called(ctx, userID, orderID, current)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ReorderResult), args.Error(1)
}

func (m *MockAccountService) GetProfile(ctx context.Context, userID uuid.UUID) (*model.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Profile), args.Error(1)
}

func (m *MockAccountService) UpdateProfile(ctx context.Context, userID uuid.UUID, profile *model.Profile) (*model.Profile, error) {
	args := m.Called(ctx, userID, profile)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Profile), args.Error(1)
}

func (m *MockAccountService) ChangePassword(ctx context.Context, userID uuid.UUID, req *model.PasswordChangeRequest) error {
	return m.Called(ctx, userID, req).Error(0)
}
