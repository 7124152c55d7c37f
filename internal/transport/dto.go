package transport

import "github.com/shopspring/decimal"

// PatchProductRequest carries only the fields the caller supplied; a nil
// pointer means "leave unchanged".
type PatchProductRequest struct {
	Name        *string          `json:"name"`
	Price       *decimal.Decimal `json:"price"`
	Description *string          `json:"description"`
	Quantity    *int             `json:"quantity"`
	AsciiArt    *string          `json:"ascii_art"`
}

func (r PatchProductRequest) Empty() bool {
	return r.Name == nil && r.Price == nil && r.Description == nil && r.Quantity == nil && r.AsciiArt == nil
}

// Changes returns the supplied fields keyed by column name.
func (r PatchProductRequest) Changes() map[string]any {
	changes := make(map[string]any, 5)
	if r.Name != nil {
		changes["name"] = *r.Name
	}
	if r.Price != nil {
		changes["price"] = *r.Price
	}
	if r.Description != nil {
		changes["description"] = *r.Description
	}
	if r.Quantity != nil {
		changes["quantity"] = *r.Quantity
	}
	if r.AsciiArt != nil {
		changes["ascii_art"] = *r.AsciiArt
	}
	return changes
}

type CreateProductRequest struct {
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	AsciiArt    *string         `json:"ascii_art"`
}

type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type UpdateUsernameRequest struct {
	Username string `json:"username"`
}

type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type AddToCartRequest struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresAt   int64  `json:"expires_at"`
	IsAdmin     bool   `json:"is_admin"`
}

type PageMeta struct {
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
	HasPrev    bool  `json:"has_prev"`
	HasNext    bool  `json:"has_next"`
}

func NewPageMeta(page, size int, total int64) PageMeta {
	if size < 1 {
		size = 1
	}
	offset := (page - 1) * size
	return PageMeta{
		Page:       page,
		Size:       size,
		Total:      total,
		TotalPages: (total + int64(size) - 1) / int64(size),
		HasPrev:    page > 1,
		HasNext:    int64(offset+size) < total,
	}
}
