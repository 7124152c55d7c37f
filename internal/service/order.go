package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Skotchmaster/marketplace/internal/domain"
	"github.com/Skotchmaster/marketplace/internal/logging"
	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/internal/mykafka"
	"github.com/Skotchmaster/marketplace/internal/repo"
	"github.com/Skotchmaster/marketplace/internal/retry"
	"github.com/Skotchmaster/marketplace/internal/transport"
	"github.com/Skotchmaster/marketplace/internal/util"
)

type OrderService struct {
	Repo   *repo.GormRepo
	Events mykafka.Publisher
	Retry  retry.Config
}

func (s *OrderService) retryConfig() retry.Config {
	if s.Retry.MaxAttempts == 0 {
		return retry.DefaultConfig()
	}
	return s.Retry
}

// Checkout turns the cart into a pending order. Store conflicts rerun the
// whole transaction.
func (s *OrderService) Checkout(ctx context.Context, userID uint) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.checkout", "user_id", userID)

	var order *models.Order
	attempt := 0
	err := retry.Do(ctx, s.retryConfig(), repo.IsRetryable, func(ctx context.Context) error {
		attempt++
		if attempt > 1 {
			l.Warn("checkout_retry", "attempt", attempt)
		}
		var err error
		order, err = s.Repo.Checkout(ctx, userID)
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmptyCart):
			l.Info("checkout_rejected", "reason", "empty cart")
		case errors.Is(err, domain.ErrUserNotFound):
			l.Warn("checkout_rejected", "reason", "user deleted")
		case errors.Is(err, domain.ErrInsufficientStock):
			l.Info("checkout_rejected", "reason", "insufficient stock", "error", err)
		default:
			l.Error("checkout_error", "error", err)
		}
		return nil, err
	}

	l.Info("order_created", "order_id", order.ID, "total", order.Total.StringFixed(2), "items", len(order.Items))
	publish(ctx, s.Events, mykafka.TopicOrders, key(order.ID), "order_created", map[string]any{
		"order_id": order.ID,
		"user_id":  userID,
		"total":    order.Total.StringFixed(2),
		"items":    order.Items,
	})
	return order, nil
}

func (s *OrderService) List(ctx context.Context, userID uint, page, size int) (transport.PageMeta, []models.Order, error) {
	page, size = util.Normalize(page, size)
	offset, limit := util.Calculate(page, size)

	total, orders, err := s.Repo.ListOrders(ctx, userID, offset, limit)
	if err != nil {
		return transport.PageMeta{}, nil, err
	}
	return transport.NewPageMeta(page, size, total), orders, nil
}

func (s *OrderService) Get(ctx context.Context, userID, id uint) (*models.Order, error) {
	order, err := s.Repo.GetOrder(ctx, userID, id)
	if err != nil {
		return nil, notFound(err, domain.ErrNotFound, fmt.Sprintf("order %d", id))
	}
	return order, nil
}

// Cancel cancels one of the user's pending orders and restocks its items.
func (s *OrderService) Cancel(ctx context.Context, userID, id uint) (*models.Order, error) {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return nil, err
	}
	return s.Transition(ctx, id, models.OrderStatusCanceled)
}

func (s *OrderService) Ship(ctx context.Context, id uint) (*models.Order, error) {
	return s.Transition(ctx, id, models.OrderStatusShipped)
}

func (s *OrderService) Transition(ctx context.Context, id uint, to models.OrderStatus) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.transition", "order_id", id, "to", string(to))

	if !to.Valid() {
		return nil, fmt.Errorf("unknown status %q: %w", to, domain.ErrValidation)
	}

	order, err := s.Repo.TransitionOrder(ctx, id, to)
	if err != nil {
		err = notFound(err, domain.ErrNotFound, fmt.Sprintf("order %d", id))
		if errors.Is(err, domain.ErrInvalidTransition) || errors.Is(err, domain.ErrNotFound) {
			l.Info("transition_rejected", "error", err)
		} else {
			l.Error("transition_error", "error", err)
		}
		return nil, err
	}

	l.Info("order_status_changed")
	publish(ctx, s.Events, mykafka.TopicOrders, key(id), "order_status_changed", map[string]any{
		"order_id": id,
		"user_id":  order.UserID,
		"status":   string(order.Status),
	})
	return order, nil
}
