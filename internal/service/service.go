package service

import (
	"context"

	"lensstore/internal/model"

	"github.com/google/uuid"
)

// ProductService defines read access to the catalogue.
type ProductService interface {
	// GetAll retrieves active products with pagination.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single active product by ID.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// CatalogStatus reports where the catalogue comes from and its size.
	CatalogStatus(ctx context.Context) (*model.CatalogStatus, error)
}

// OrderService defines order intake.
type OrderService interface {
	// CreateOrder validates the request and stores the order, its items and
	// an order.created event in one transaction.
	CreateOrder(ctx context.Context, req *model.CheckoutRequest) (*model.Order, []model.OrderItem, error)
}

// CheckoutService runs the two checkout flows: intake, stock reservation
// and payment initiation.
type CheckoutService interface {
	// CreatePix creates an order paid by Pix and returns its QR code.
	CreatePix(ctx context.Context, req *model.CheckoutRequest, baseURL string) (*model.PixCheckoutResponse, error)

	// CreatePreference creates an order paid through the hosted checkout.
	CreatePreference(ctx context.Context, req *model.CheckoutRequest, baseURL string) (*model.PreferenceCheckoutResponse, error)
}

// WebhookService reconciles orders with payment notifications.
type WebhookService interface {
	// Reconcile fetches the notified payment and applies its status to the order.
	Reconcile(ctx context.Context, n model.PaymentNotification) (*model.ReconcileResult, error)
}

// AccountService defines the operations of a signed-in customer.
type AccountService interface {
	ListOrders(ctx context.Context, userID uuid.UUID) ([]model.OrderDetail, error)
	GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*model.OrderDetail, error)
	Reorder(ctx context.Context, userID, orderID uuid.UUID, current []model.CartLine) (*model.ReorderResult, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*model.Profile, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, profile *model.Profile) (*model.Profile, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, req *model.PasswordChangeRequest) error
}
