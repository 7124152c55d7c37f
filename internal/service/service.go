package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/marketplace/internal/logging"
	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/internal/mykafka"
)

// SearchIndex is the external full-text index. A nil index means search
// runs against the store.
type SearchIndex interface {
	IndexProduct(ctx context.Context, p *models.Product) error
	DeleteProducts(ctx context.Context, ids ...uint) error
	Search(ctx context.Context, query string, from, size int) (int64, []uint, error)
}

type ImageConverter interface {
	FromURL(ctx context.Context, url string) (string, error)
}

func notFound(err error, target error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, target)
	}
	return err
}

func publish(ctx context.Context, p mykafka.Publisher, topic, key, typ string, data map[string]any) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, topic, key, mykafka.NewEvent(typ, data)); err != nil {
		logging.FromContext(ctx).Warn("publish_error", "topic", topic, "type", typ, "error", err)
	}
}

func key(id uint) string {
	return fmt.Sprint(id)
}
