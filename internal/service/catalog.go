package service

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/Skotchmaster/marketplace/internal/domain"
	"github.com/Skotchmaster/marketplace/internal/logging"
	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/internal/mykafka"
	"github.com/Skotchmaster/marketplace/internal/repo"
	"github.com/Skotchmaster/marketplace/internal/transport"
	"github.com/Skotchmaster/marketplace/internal/util"
)

type CatalogService struct {
	Repo   *repo.GormRepo
	Events mykafka.Publisher
	Index  SearchIndex
	Images ImageConverter
}

// ProductInput is raw text input from the terminal.
type ProductInput struct {
	Name        string
	Price       string
	Description string
	Quantity    string
	ImageURL    string
}

func validateProduct(name *string, req transport.PatchProductRequest) error {
	if name != nil && strings.TrimSpace(*name) == "" {
		return fmt.Errorf("name is required: %w", domain.ErrValidation)
	}
	if req.Price != nil {
		if err := util.ValidatePrice(*req.Price); err != nil {
			return err
		}
	}
	if req.Quantity != nil && *req.Quantity < 0 {
		return fmt.Errorf("quantity must not be negative: %w", domain.ErrValidation)
	}
	return nil
}

func (s *CatalogService) Create(ctx context.Context, ownerID uint, req transport.CreateProductRequest) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.create", "user_id", ownerID)

	req.Name = strings.TrimSpace(req.Name)
	check := transport.PatchProductRequest{Price: &req.Price, Quantity: &req.Quantity}
	if err := validateProduct(&req.Name, check); err != nil {
		return nil, err
	}

	product, err := s.Repo.CreateProduct(ctx, &models.Product{
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
		UserID:      ownerID,
		AsciiArt:    req.AsciiArt,
		Quantity:    req.Quantity,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			l.Warn("create_rejected", "reason", "user deleted")
			return nil, err
		}
		l.Error("create_error", "reason", "db error", "error", err)
		return nil, err
	}

	s.reindex(ctx, product)
	l.Info("product_created", "product_id", product.ID)
	publish(ctx, s.Events, mykafka.TopicProducts, key(product.ID), "product_created", map[string]any{
		"product_id": product.ID,
		"user_id":    ownerID,
		"name":       product.Name,
		"price":      product.Price.StringFixed(2),
		"quantity":   product.Quantity,
	})
	return product, nil
}

// CreateFromInput parses terminal input and creates the product. An image
// that cannot be fetched is logged and the product is created without one.
func (s *CatalogService) CreateFromInput(ctx context.Context, ownerID uint, in ProductInput) (*models.Product, error) {
	price, err := util.ParsePrice(in.Price)
	if err != nil {
		return nil, err
	}
	qty := 0
	if strings.TrimSpace(in.Quantity) != "" {
		if qty, err = util.ParseQuantity(in.Quantity); err != nil {
			return nil, err
		}
	}

	req := transport.CreateProductRequest{
		Name:        in.Name,
		Price:       price,
		Description: strings.TrimSpace(in.Description),
		Quantity:    qty,
	}
	if url := strings.TrimSpace(in.ImageURL); url != "" {
		if art, err := s.ImageText(ctx, url); err != nil {
			logging.FromContext(ctx).Warn("image_error", "svc", "catalog.create", "url", url, "error", err)
		} else {
			req.AsciiArt = &art
		}
	}
	return s.Create(ctx, ownerID, req)
}

func (s *CatalogService) ImageText(ctx context.Context, url string) (string, error) {
	if s.Images == nil {
		return "", errors.New("image conversion is not configured")
	}
	return s.Images.FromURL(ctx, url)
}

func (s *CatalogService) Get(ctx context.Context, id uint) (*models.ProductView, error) {
	view, err := s.Repo.GetProductView(ctx, id)
	if err != nil {
		return nil, notFound(err, domain.ErrNotFound, "product")
	}
	return view, nil
}

func (s *CatalogService) List(ctx context.Context, page, size int) (transport.PageMeta, []models.ProductView, error) {
	page, size = util.Normalize(page, size)
	offset, limit := util.Calculate(page, size)

	total, items, err := s.Repo.ListProducts(ctx, offset, limit)
	if err != nil {
		return transport.PageMeta{}, nil, err
	}
	return transport.NewPageMeta(page, size, total), items, nil
}

func (s *CatalogService) ListMine(ctx context.Context, ownerID uint) ([]models.ProductView, error) {
	return s.Repo.ListProductsByOwner(ctx, ownerID)
}

// Search asks the index first and falls back to a store scan when the index
// is missing or failing.
func (s *CatalogService) Search(ctx context.Context, q string, page, size int) (transport.PageMeta, []models.ProductView, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.search")

	q = strings.TrimSpace(q)
	if q == "" {
		return transport.PageMeta{}, nil, fmt.Errorf("query is required: %w", domain.ErrValidation)
	}
	page, size = util.Normalize(page, size)
	offset, limit := util.Calculate(page, size)

	if s.Index != nil {
		total, ids, err := s.Index.Search(ctx, q, offset, limit)
		if err == nil {
			items, err := s.Repo.ProductViewsByIDs(ctx, ids)
			if err != nil {
				return transport.PageMeta{}, nil, err
			}
			return transport.NewPageMeta(page, size, total), items, nil
		}
		l.Warn("search_error", "reason", "index unavailable, using store", "error", err)
	}

	total, items, err := s.Repo.SearchProducts(ctx, q, offset, limit)
	if err != nil {
		return transport.PageMeta{}, nil, err
	}
	return transport.NewPageMeta(page, size, total), items, nil
}

func (s *CatalogService) owned(ctx context.Context, actorID, id uint) (*models.Product, error) {
	product, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, notFound(err, domain.ErrNotFound, "product")
	}
	if product.UserID != actorID {
		return nil, fmt.Errorf("product %d: %w", id, domain.ErrForbidden)
	}
	return product, nil
}

// Update writes the supplied fields of a product the actor owns.
func (s *CatalogService) Update(ctx context.Context, actorID, id uint, req transport.PatchProductRequest) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.update", "user_id", actorID, "product_id", id)

	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		req.Name = &trimmed
	}
	if err := validateProduct(req.Name, req); err != nil {
		return nil, err
	}
	if _, err := s.owned(ctx, actorID, id); err != nil {
		return nil, err
	}
	if req.Empty() {
		return s.Repo.GetProduct(ctx, id)
	}

	product, err := s.Repo.PatchProduct(ctx, id, req)
	if err != nil {
		err = notFound(err, domain.ErrNotFound, "product")
		if !errors.Is(err, domain.ErrNotFound) {
			l.Error("update_error", "error", err)
		}
		return nil, err
	}

	s.reindex(ctx, product)
	fields := slices.Sorted(maps.Keys(req.Changes()))
	l.Info("product_updated", "fields", fields)
	publish(ctx, s.Events, mykafka.TopicProducts, key(id), "product_updated", map[string]any{
		"product_id": id,
		"fields":     fields,
	})
	return product, nil
}

// Delete removes a product the actor owns together with every cart row
// referencing it.
func (s *CatalogService) Delete(ctx context.Context, actorID, id uint) error {
	l := logging.FromContext(ctx).With("svc", "catalog.delete", "user_id", actorID, "product_id", id)

	if _, err := s.owned(ctx, actorID, id); err != nil {
		return err
	}
	if err := s.Repo.DeleteProductCascade(ctx, id); err != nil {
		return notFound(err, domain.ErrNotFound, "product")
	}

	if s.Index != nil {
		if err := s.Index.DeleteProducts(ctx, id); err != nil {
			l.Warn("index_error", "reason", "cannot drop product from index", "error", err)
		}
	}
	l.Info("product_deleted")
	publish(ctx, s.Events, mykafka.TopicProducts, key(id), "product_deleted", map[string]any{
		"product_id": id,
		"user_id":    actorID,
	})
	return nil
}

func (s *CatalogService) reindex(ctx context.Context, p *models.Product) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexProduct(ctx, p); err != nil {
		logging.FromContext(ctx).Warn("index_error", "product_id", p.ID, "error", err)
	}
}
