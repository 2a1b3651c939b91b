package service

import (
	"context"
	"fmt"

	"lensstore/internal/cart"
	"lensstore/internal/catalog"
	"lensstore/internal/model"
	"lensstore/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"
)

// Reorder notices.
const (
	NoticeNothingToReorder = "this order has no items to reorder"
	NoticeReorderFailed    = "could not reorder this order"
	noticeReorderAdded     = "items added to cart: %d"
)

// accountService implements AccountService.
type accountService struct {
	orderRepo   repository.OrderRepository
	profileRepo repository.ProfileRepository
	userRepo    repository.UserRepository
	reader      catalog.Reader
	logger      zerolog.Logger
}

// NewAccountService creates a new account service.
func NewAccountService(
	orderRepo repository.OrderRepository,
	profileRepo repository.ProfileRepository,
	userRepo repository.UserRepository,
	reader catalog.Reader,
	logger zerolog.Logger,
) AccountService {
	return &accountService{
		orderRepo:   orderRepo,
		profileRepo: profileRepo,
		userRepo:    userRepo,
		reader:      reader,
		logger:      logger.With().Str("service", "account").Logger(),
	}
}

// ListOrders returns the user's orders, newest first, with their items.
func (s *accountService) ListOrders(ctx context.Context, userID uuid.UUID) ([]model.OrderDetail, error) {
	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	ids := make([]uuid.UUID, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}

	items, err := s.orderRepo.GetItemsByOrderIDs(ctx, ids)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to load order items")
		return nil, fmt.Errorf("failed to load order items: %w", err)
	}

	details := make([]model.OrderDetail, len(orders))
	for i, o := range orders {
		details[i] = model.OrderDetail{Order: o, Items: items[o.ID]}
		if details[i].Items == nil {
			details[i].Items = []model.OrderItem{}
		}
	}
	return details, nil
}

// GetOrder returns one order of the user. Orders of other users are
// reported as not found.
func (s *accountService) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*model.OrderDetail, error) {
	var (
		order *model.Order
		items []model.OrderItem
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		order, err = s.orderRepo.GetOrder(gctx, orderID)
		return err
	})
	g.Go(func() error {
		var err error
		items, err = s.orderRepo.GetItems(gctx, orderID)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order == nil || order.UserID == nil || *order.UserID != userID {
		s.logger.Debug().
			Str("order_id", orderID.String()).
			Str("user_id", userID.String()).
			Msg("order not found for user")
		return nil, model.ErrOrderNotFound
	}

	if items == nil {
		items = []model.OrderItem{}
	}
	return &model.OrderDetail{Order: *order, Items: items}, nil
}

// Reorder adds the lines of a past order to current using today's catalogue
// title, price and image with the historical quantities. Lines whose product
// or variant is gone or inactive are skipped.
func (s *accountService) Reorder(ctx context.Context, userID, orderID uuid.UUID, current []model.CartLine) (*model.ReorderResult, error) {
	detail, err := s.GetOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	c := cart.New(current...)
	if len(detail.Items) == 0 {
		return &model.ReorderResult{Lines: c.Lines(), Notice: NoticeNothingToReorder}, nil
	}

	products := make(map[string]*model.Product)
	added := 0
	for _, it := range detail.Items {
		if it.ProductID == model.UnknownRef || it.VariantID == model.UnknownRef {
			continue
		}

		product, seen := products[it.ProductID]
		if !seen {
			product, err = s.reader.GetProduct(ctx, it.ProductID)
			if err != nil {
				s.logger.Error().Err(err).Str("product_id", it.ProductID).Msg("failed to resolve product for reorder")
				return nil, fmt.Errorf("failed to resolve product: %w", err)
			}
			products[it.ProductID] = product
		}
		if product == nil {
			continue
		}

		variant, ok := product.Variant(it.VariantID)
		if !ok {
			continue
		}

		c.Add(model.CartLine{
			ProductID: product.ID,
			VariantID: variant.ID,
			SKU:       variant.SKU,
			Title:     product.Name,
			Image:     product.Image,
			Sph:       variant.Sph,
			UnitPrice: variant.Price,
			Quantity:  it.Quantity,
		})
		added++
	}

	notice := NoticeReorderFailed
	if added > 0 {
		notice = fmt.Sprintf(noticeReorderAdded, added)
	}

	s.logger.Info().
		Str("order_id", orderID.String()).
		Int("added", added).
		Int("skipped", len(detail.Items)-added).
		Msg("order reordered")

	return &model.ReorderResult{Lines: c.Lines(), Added: added, Notice: notice}, nil
}

// GetProfile returns the saved profile, or an empty one for a new user.
func (s *accountService) GetProfile(ctx context.Context, userID uuid.UUID) (*model.Profile, error) {
	profile, err := s.profileRepo.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	if profile == nil {
		return &model.Profile{UserID: userID}, nil
	}
	return profile, nil
}

// UpdateProfile saves the profile of userID. The id in the payload is ignored.
func (s *accountService) UpdateProfile(ctx context.Context, userID uuid.UUID, profile *model.Profile) (*model.Profile, error) {
	if profile == nil {
		return nil, model.NewValidationError("profile is required")
	}
	if err := validateStruct(profile); err != nil {
		return nil, err
	}

	profile.UserID = userID
	if err := s.profileRepo.Upsert(ctx, profile); err != nil {
		return nil, model.NewUpstreamPersistenceError("profile update failed", err)
	}

	s.logger.Info().Str("user_id", userID.String()).Msg("profile updated")
	return profile, nil
}

// ChangePassword stores a bcrypt hash of the new password.
func (s *accountService) ChangePassword(ctx context.Context, userID uuid.UUID, req *model.PasswordChangeRequest) error {
	if req == nil {
		return model.NewValidationError("password is required")
	}
	if err := validateStruct(req); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePasswordHash(ctx, userID, string(hash)); err != nil {
		return err
	}

	s.logger.Info().Str("user_id", userID.String()).Msg("password changed")
	return nil
}
