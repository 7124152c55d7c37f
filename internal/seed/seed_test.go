package seed

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/marketplace/internal/db/dbtest"
	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/internal/repo"
	"github.com/Skotchmaster/marketplace/internal/service"
)

type staticImages struct{}

func (staticImages) FromURL(context.Context, string) (string, error) { return "@.", nil }

func TestSeeder_Run(t *testing.T) {
	t.Parallel()

	r := &repo.GormRepo{DB: dbtest.New(t)}
	s := New(
		&service.AuthService{Repo: r},
		&service.CatalogService{Repo: r, Images: staticImages{}},
		42,
	)

	res, err := s.Run(context.Background(), Options{Users: 2, ProductsPerUser: 3, ImageURL: "http://img"})
	require.NoError(t, err)
	assert.Equal(t, Result{Users: 2, Products: 6}, res)

	var products []models.Product
	require.NoError(t, r.DB.Find(&products).Error)
	require.Len(t, products, 6)
	for _, p := range products {
		assert.True(t, p.Price.GreaterThanOrEqual(decimal.NewFromInt(10)), p.Price.String())
		assert.True(t, p.Price.LessThanOrEqual(decimal.NewFromInt(100)), p.Price.String())
		assert.GreaterOrEqual(t, p.Quantity, 1)
		assert.LessOrEqual(t, p.Quantity, 20)
		require.NotNil(t, p.AsciiArt)
		assert.Equal(t, "@.", *p.AsciiArt)
	}

	var users int64
	require.NoError(t, r.DB.Model(&models.User{}).Count(&users).Error)
	assert.Equal(t, int64(2), users)
}
