package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/marketplace/internal/domain"
	"github.com/Skotchmaster/marketplace/internal/logging"
	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/internal/mykafka"
	"github.com/Skotchmaster/marketplace/internal/repo"
)

type CartService struct {
	Repo   *repo.GormRepo
	Events mykafka.Publisher
}

// Add puts qty units into the user's cart, merging with an existing row.
// The product must exist, belong to someone else and have enough stock for
// the merged quantity.
func (s *CartService) Add(ctx context.Context, userID, productID uint, qty int) (*models.CartItem, error) {
	l := logging.FromContext(ctx).With("svc", "cart.add", "user_id", userID, "product_id", productID)

	if qty < 1 {
		return nil, fmt.Errorf("quantity must be at least 1: %w", domain.ErrValidation)
	}

	product, err := s.Repo.GetProduct(ctx, productID)
	if err != nil {
		return nil, notFound(err, domain.ErrNotFound, "product")
	}
	if product.UserID == userID {
		return nil, domain.ErrOwnProduct
	}
	if !product.Available() {
		return nil, domain.ErrUnavailable
	}

	inCart := 0
	existing, err := s.Repo.CartItem(ctx, userID, productID)
	switch {
	case err == nil:
		inCart = existing.Quantity
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}
	if inCart+qty > product.Quantity {
		return nil, fmt.Errorf("only %d available, %d already in cart: %w", product.Quantity, inCart, domain.ErrInsufficientStock)
	}

	item, err := s.Repo.AddToCart(ctx, userID, productID, qty)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			l.Warn("add_rejected", "reason", "user deleted")
			return nil, err
		}
		l.Error("add_error", "reason", "db error", "error", err)
		return nil, err
	}

	l.Info("cart_item_added", "quantity", item.Quantity)
	publish(ctx, s.Events, mykafka.TopicCarts, key(userID), "cart_item_added", map[string]any{
		"user_id":    userID,
		"product_id": productID,
		"added":      qty,
		"quantity":   item.Quantity,
	})
	return item, nil
}

// Remove deletes the product from the cart; a missing row is not an error.
func (s *CartService) Remove(ctx context.Context, userID, productID uint) error {
	err := s.Repo.RemoveFromCart(ctx, userID, productID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}

func (s *CartService) View(ctx context.Context, userID uint) ([]models.CartLine, decimal.Decimal, error) {
	lines, err := s.Repo.CartLines(ctx, userID)
	if err != nil {
		return nil, decimal.Zero, err
	}
	return lines, models.CartTotal(lines), nil
}

func (s *CartService) Clear(ctx context.Context, userID uint) error {
	return s.Repo.ClearCart(ctx, userID)
}
