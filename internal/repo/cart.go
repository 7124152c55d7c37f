package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/marketplace/internal/models"
)

// AddToCart inserts a cart row or merges the quantity into the existing row
// for the same (user, product) pair.
func (r *GormRepo) AddToCart(ctx context.Context, userID, productID uint, qty int) (*models.CartItem, error) {
	var item models.CartItem
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireUser(tx, userID); err != nil {
			return err
		}

		row := models.CartItem{UserID: userID, ProductID: productID, Quantity: qty}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoUpdates: clause.Set{{
				Column: clause.Column{Name: "quantity"},
				Value:  gorm.Expr("carts.quantity + excluded.quantity"),
			}},
		}).Create(&row).Error; err != nil {
			return err
		}

		return tx.Where("user_id = ? AND product_id = ?", userID, productID).First(&item).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormRepo) CartItem(ctx context.Context, userID, productID uint) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.DB.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormRepo) RemoveFromCart(ctx context.Context, userID, productID uint) error {
	res := r.DB.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) ClearCart(ctx context.Context, userID uint) error {
	return r.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
}

func (r *GormRepo) CartLines(ctx context.Context, userID uint) ([]models.CartLine, error) {
	return cartLines(r.DB.WithContext(ctx), userID)
}

// cartLines prices the user's cart at current catalog prices, in insertion order.
func cartLines(tx *gorm.DB, userID uint) ([]models.CartLine, error) {
	var lines []models.CartLine
	err := tx.Table("carts").
		Select("carts.id AS cart_id, carts.product_id, products.name, products.price, carts.quantity").
		Joins("JOIN products ON products.id = carts.product_id").
		Where("carts.user_id = ?", userID).
		Order("carts.id ASC").
		Scan(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}
