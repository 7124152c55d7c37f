// Package es keeps the product search index in Elasticsearch.
package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/Skotchmaster/marketplace/internal/models"
)

type Config struct {
	URL      string
	Username string
	Password string
	Index    string
}

type Index struct {
	client *elasticsearch.Client
	name   string
}

type ProductDoc struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	UserID      uint   `json:"user_id"`
}

func NewIndex(cfg Config) (*Index, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("es: new client: %w", err)
	}
	return &Index{client: client, name: cfg.Index}, nil
}

// Ping checks that the cluster answers.
func (ix *Index) Ping(ctx context.Context) error {
	res, err := ix.client.Info(ix.client.Info.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("es: info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("es: info: %s: %s", res.Status(), body)
	}
	return nil
}

func (ix *Index) IndexProduct(ctx context.Context, p *models.Product) error {
	doc := ProductDoc{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.StringFixed(2),
		UserID:      p.UserID,
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(doc); err != nil {
		return err
	}

	res, err := ix.client.Index(ix.name, &buf,
		ix.client.Index.WithContext(ctx),
		ix.client.Index.WithDocumentID(strconv.FormatUint(uint64(p.ID), 10)),
	)
	if err != nil {
		return fmt.Errorf("es: index product %d: %w", p.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("es: index product %d: %s", p.ID, res.Status())
	}
	return nil
}

// DeleteProducts removes documents; missing documents are not an error.
func (ix *Index) DeleteProducts(ctx context.Context, ids ...uint) error {
	for _, id := range ids {
		res, err := ix.client.Delete(ix.name, strconv.FormatUint(uint64(id), 10),
			ix.client.Delete.WithContext(ctx),
		)
		if err != nil {
			return fmt.Errorf("es: delete product %d: %w", id, err)
		}
		res.Body.Close()
		if res.IsError() && res.StatusCode != 404 {
			return fmt.Errorf("es: delete product %d: %s", id, res.Status())
		}
	}
	return nil
}

func searchBody(query string, from, size int) map[string]any {
	return map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"name^2", "description"},
				"fuzziness": "AUTO",
			},
		},
		"from":    from,
		"size":    size,
		"_source": []string{"id"},
	}
}

// Search returns the total hit count and the matching product ids by score.
func (ix *Index) Search(ctx context.Context, query string, from, size int) (int64, []uint, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(searchBody(query, from, size)); err != nil {
		return 0, nil, err
	}

	res, err := ix.client.Search(
		ix.client.Search.WithContext(ctx),
		ix.client.Search.WithIndex(ix.name),
		ix.client.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("es: search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, fmt.Errorf("es: search: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source ProductDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("es: decode search: %w", err)
	}

	ids := make([]uint, 0, len(r.Hits.Hits))
	for _, h := range r.Hits.Hits {
		ids = append(ids, h.Source.ID)
	}
	return r.Hits.Total.Value, ids, nil
}
