package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/marketplace/internal/models"
)

func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	if err := r.DB.WithContext(ctx).Create(u).Error; err != nil {
		if IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *GormRepo) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) UserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) UpdateUsername(ctx context.Context, id uint, username string) error {
	res := r.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("username", username)
	if res.Error != nil {
		if IsUniqueViolation(res.Error) {
			return ErrDuplicate
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) UpdatePasswordHash(ctx context.Context, id uint, hash string) error {
	res := r.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("password_hash", hash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteUserCascade removes the user, their products, their cart and every
// cart row pointing at their products. Orders are kept as history.
// It returns the ids of the deleted products.
func (r *GormRepo) DeleteUserCascade(ctx context.Context, id uint) ([]uint, error) {
	var productIDs []uint
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Product{}).Where("user_id = ?", id).Pluck("id", &productIDs).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		if len(productIDs) > 0 {
			if err := tx.Where("product_id IN ?", productIDs).Delete(&models.CartItem{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", productIDs).Delete(&models.Product{}).Error; err != nil {
				return err
			}
		}

		res := tx.Where("id = ?", id).Delete(&models.User{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return productIDs, nil
}
