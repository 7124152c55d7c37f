package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"unique;not null"          json:"username"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	Role         string    `gorm:"not null"                 json:"role"`
	CreatedAt    time.Time `                                json:"created_at"`
	UpdatedAt    time.Time `                                json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

type Product struct {
	ID          uint            `gorm:"primaryKey;autoIncrement"  json:"id"`
	Name        string          `gorm:"not null"                  json:"name"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Description string          `gorm:"not null"                  json:"description"`
	UserID      uint            `gorm:"index;not null"            json:"user_id"`
	AsciiArt    *string         `                                 json:"ascii_art,omitempty"`
	Quantity    int             `gorm:"not null;check:quantity>=0" json:"quantity"`
	CreatedAt   time.Time       `                                 json:"created_at"`
	UpdatedAt   time.Time       `                                 json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}

// Available reports whether at least one unit can be added to a cart.
func (p *Product) Available() bool {
	return p.Quantity > 0
}

// ProductView is a product joined with its creator's username.
type ProductView struct {
	Product
	CreatorName string `gorm:"column:creator_name" json:"creator_name"`
}

type CartItem struct {
	ID        uint `gorm:"primaryKey"                                    json:"id"`
	UserID    uint `gorm:"uniqueIndex:idx_carts_user_product;not null"   json:"user_id"`
	ProductID uint `gorm:"uniqueIndex:idx_carts_user_product;index;not null" json:"product_id"`
	Quantity  int  `gorm:"not null;check:quantity>0"                     json:"quantity"`
}

func (CartItem) TableName() string {
	return "carts"
}

// CartLine is one cart row priced at the current catalog price.
type CartLine struct {
	CartID    uint            `gorm:"column:cart_id"    json:"-"`
	ProductID uint            `gorm:"column:product_id" json:"product_id"`
	Name      string          `gorm:"column:name"       json:"name"`
	Price     decimal.Decimal `gorm:"column:price"      json:"price"`
	Quantity  int             `gorm:"column:quantity"   json:"quantity"`
}

func (l CartLine) LineTotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func CartTotal(lines []CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.LineTotal())
	}
	return total
}

type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "pending"
	OrderStatusShipped  OrderStatus = "shipped"
	OrderStatusCanceled OrderStatus = "canceled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusShipped, OrderStatusCanceled:
		return true
	}
	return false
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusShipped || s == OrderStatusCanceled
}

// CanTransition allows only pending -> shipped and pending -> canceled.
func (s OrderStatus) CanTransition(to OrderStatus) bool {
	return s == OrderStatusPending && (to == OrderStatusShipped || to == OrderStatusCanceled)
}

// OrderLine is the point-in-time snapshot of one purchased cart line.
type OrderLine struct {
	ProductID uint            `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type Order struct {
	ID        uint                           `gorm:"primaryKey"            json:"id"`
	UserID    uint                           `gorm:"index;not null"        json:"user_id"`
	Details   string                         `gorm:"not null"              json:"details"`
	Items     datatypes.JSONSlice[OrderLine] `                             json:"items"`
	Total     decimal.Decimal                `gorm:"type:decimal(14,2);not null" json:"total"`
	Status    OrderStatus                    `gorm:"index;not null"        json:"status"`
	CreatedAt time.Time                      `                             json:"created_at"`
	UpdatedAt time.Time                      `                             json:"updated_at"`
}

func (Order) TableName() string {
	return "orders"
}

// NewOrder snapshots cart lines into a pending order.
func NewOrder(userID uint, lines []CartLine) Order {
	items := make([]OrderLine, 0, len(lines))
	details := make([]string, 0, len(lines))
	for _, l := range lines {
		lt := l.LineTotal()
		items = append(items, OrderLine{
			ProductID: l.ProductID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.Price,
			LineTotal: lt,
		})
		details = append(details, fmt.Sprintf("%s (x%d) - $%s", l.Name, l.Quantity, lt.StringFixed(2)))
	}

	return Order{
		UserID:  userID,
		Details: strings.Join(details, "\n"),
		Items:   items,
		Total:   CartTotal(lines),
		Status:  OrderStatusPending,
	}
}

// All lists every table in migration order.
func All() []any {
	return []any{&User{}, &Product{}, &CartItem{}, &Order{}}
}
