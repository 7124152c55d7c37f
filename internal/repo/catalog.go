package repo

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/internal/transport"
)

const productViewSelect = "products.*, users.username AS creator_name"

func (r *GormRepo) productViews(ctx context.Context) *gorm.DB {
	return r.DB.WithContext(ctx).
		Table("products").
		Select(productViewSelect).
		Joins("LEFT JOIN users ON users.id = products.user_id")
}

func (r *GormRepo) CreateProduct(ctx context.Context, prod *models.Product) (*models.Product, error) {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireUser(tx, prod.UserID); err != nil {
			return err
		}
		return tx.Create(prod).Error
	})
	if err != nil {
		return nil, err
	}
	return prod, nil
}

func (r *GormRepo) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *GormRepo) GetProductView(ctx context.Context, id uint) (*models.ProductView, error) {
	var view models.ProductView
	res := r.productViews(ctx).Where("products.id = ?", id).Limit(1).Scan(&view)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &view, nil
}

func (r *GormRepo) ListProducts(ctx context.Context, offset, limit int) (int64, []models.ProductView, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var items []models.ProductView
	if err := r.productViews(ctx).Order("products.id ASC").Offset(offset).Limit(limit).Scan(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) ListProductsByOwner(ctx context.Context, ownerID uint) ([]models.ProductView, error) {
	var items []models.ProductView
	if err := r.productViews(ctx).Where("products.user_id = ?", ownerID).Order("products.id ASC").Scan(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ProductViewsByIDs loads products keeping the order of ids; missing ids are skipped.
func (r *GormRepo) ProductViewsByIDs(ctx context.Context, ids []uint) ([]models.ProductView, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []models.ProductView
	if err := r.productViews(ctx).Where("products.id IN ?", ids).Scan(&found).Error; err != nil {
		return nil, err
	}

	byID := make(map[uint]models.ProductView, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	out := make([]models.ProductView, 0, len(found))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// SearchProducts is a case-insensitive substring match over name and description.
func (r *GormRepo) SearchProducts(ctx context.Context, q string, offset, limit int) (int64, []models.ProductView, error) {
	pattern := "%" + escapeLike(strings.ToLower(q)) + "%"
	where := "LOWER(products.name) LIKE ? ESCAPE '\\' OR LOWER(products.description) LIKE ? ESCAPE '\\'"

	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).Where(where, pattern, pattern).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var items []models.ProductView
	if err := r.productViews(ctx).Where(where, pattern, pattern).Order("products.id ASC").Offset(offset).Limit(limit).Scan(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

// PatchProduct writes only the supplied fields. An empty request performs no
// write and returns the stored product unchanged.
func (r *GormRepo) PatchProduct(ctx context.Context, id uint, req transport.PatchProductRequest) (*models.Product, error) {
	if req.Empty() {
		return r.GetProduct(ctx, id)
	}

	res := r.DB.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Updates(req.Changes())
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetProduct(ctx, id)
}

// DeleteProductCascade removes the product and every cart row referencing it.
func (r *GormRepo) DeleteProductCascade(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Product{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
