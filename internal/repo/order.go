package repo

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/marketplace/internal/domain"
	"github.com/Skotchmaster/marketplace/internal/models"
)

// Checkout converts the user's cart into a pending order in one transaction:
// read the cart, decrement stock, insert the order, clear the cart.
// Either all four steps apply or none do. Only the cart rows that were read
// are deleted; rows added concurrently stay in the cart.
func (r *GormRepo) Checkout(ctx context.Context, userID uint) (*models.Order, error) {
	var order models.Order
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireUser(tx, userID); err != nil {
			return err
		}
		if isPostgres(tx) {
			var locked []models.CartItem
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("user_id = ?", userID).
				Find(&locked).Error; err != nil {
				return err
			}
		}

		lines, err := cartLines(tx, userID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return domain.ErrEmptyCart
		}

		for _, l := range lines {
			res := tx.Model(&models.Product{}).
				Where("id = ? AND quantity >= ?", l.ProductID, l.Quantity).
				Update("quantity", gorm.Expr("quantity - ?", l.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("%s: %w", l.Name, domain.ErrInsufficientStock)
			}
		}

		order = models.NewOrder(userID, lines)
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		ids := make([]uint, 0, len(lines))
		for _, l := range lines {
			ids = append(ids, l.CartID)
		}
		return tx.Where("id IN ?", ids).Delete(&models.CartItem{}).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListOrders returns the user's orders newest first.
func (r *GormRepo) ListOrders(ctx context.Context, userID uint, offset, limit int) (int64, []models.Order, error) {
	q := r.DB.WithContext(ctx).Model(&models.Order{}).Where("user_id = ?", userID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var orders []models.Order
	if err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&orders).Error; err != nil {
		return 0, nil, err
	}
	return total, orders, nil
}

// GetOrder returns the order only if it belongs to userID.
func (r *GormRepo) GetOrder(ctx context.Context, userID, id uint) (*models.Order, error) {
	var order models.Order
	if err := r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) GetOrderByID(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// TransitionOrder moves an order to status to. The update is conditional on
// the status read inside the transaction so concurrent transitions cannot both
// win. Canceling returns the ordered units to stock for products that still exist.
func (r *GormRepo) TransitionOrder(ctx context.Context, id uint, to models.OrderStatus) (*models.Order, error) {
	var order models.Order
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&order).Error; err != nil {
			return err
		}
		from := order.Status
		if !from.CanTransition(to) {
			return fmt.Errorf("%s -> %s: %w", from, to, domain.ErrInvalidTransition)
		}

		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", id, from).
			Update("status", to)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%s -> %s: %w", from, to, domain.ErrInvalidTransition)
		}

		if to == models.OrderStatusCanceled {
			for _, line := range order.Items {
				if err := tx.Model(&models.Product{}).
					Where("id = ?", line.ProductID).
					Update("quantity", gorm.Expr("quantity + ?", line.Quantity)).Error; err != nil {
					return err
				}
			}
		}

		return tx.Where("id = ?", id).First(&order).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}
