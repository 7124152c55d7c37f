// Package seed fills the store with fake users and products.
package seed

import (
	"context"
	"errors"
	"strings"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/marketplace/internal/domain"
	"github.com/Skotchmaster/marketplace/internal/logging"
	"github.com/Skotchmaster/marketplace/internal/service"
	"github.com/Skotchmaster/marketplace/internal/transport"
)

const maxUsernameTries = 5

type Seeder struct {
	Auth    *service.AuthService
	Catalog *service.CatalogService
	Faker   *gofakeit.Faker
}

type Options struct {
	Users           int
	ProductsPerUser int
	ImageURL        string
}

type Result struct {
	Users    int
	Products int
}

func New(auth *service.AuthService, catalog *service.CatalogService, seed uint64) *Seeder {
	return &Seeder{Auth: auth, Catalog: catalog, Faker: gofakeit.New(seed)}
}

func (s *Seeder) Run(ctx context.Context, opts Options) (Result, error) {
	l := logging.FromContext(ctx).With("svc", "seed")

	var art *string
	if opts.ImageURL != "" {
		text, err := s.Catalog.ImageText(ctx, opts.ImageURL)
		if err != nil {
			l.Warn("image_error", "url", opts.ImageURL, "error", err)
		} else {
			art = &text
		}
	}

	var res Result
	for i := 0; i < opts.Users; i++ {
		userID, err := s.register(ctx)
		if err != nil {
			return res, err
		}
		res.Users++

		for j := 0; j < opts.ProductsPerUser; j++ {
			_, err := s.Catalog.Create(ctx, userID, transport.CreateProductRequest{
				Name:        s.productName(),
				Price:       decimal.NewFromFloat(s.Faker.Price(10, 100)).Round(2),
				Description: s.Faker.ProductDescription(),
				Quantity:    s.Faker.IntRange(1, 20),
				AsciiArt:    art,
			})
			if err != nil {
				return res, err
			}
			res.Products++
		}
	}

	l.Info("seed_done", "users", res.Users, "products", res.Products)
	return res, nil
}

func (s *Seeder) register(ctx context.Context) (uint, error) {
	password := s.Faker.Password(true, true, true, false, false, 12)
	var lastErr error
	for try := 0; try < maxUsernameTries; try++ {
		username := s.Faker.Username()
		if try > 0 {
			username += s.Faker.DigitN(3)
		}
		user, err := s.Auth.Register(ctx, username, password)
		if err == nil {
			return user.ID, nil
		}
		if !errors.Is(err, domain.ErrUserExists) && !errors.Is(err, domain.ErrValidation) {
			return 0, err
		}
		lastErr = err
	}
	return 0, lastErr
}

func (s *Seeder) productName() string {
	return capitalize(s.Faker.Adjective()) + " " + capitalize(s.Faker.Noun())
}

func capitalize(w string) string {
	if w == "" {
		return w
	}
	return strings.ToUpper(w[:1]) + w[1:]
}
