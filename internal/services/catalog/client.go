// Package catalog is the client for the external product catalog
// collaborator. The catalog is read-only and possibly slow, so lookups are
// cached briefly; failures are surfaced, never silently defaulted.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"kredo/internal/repositories/cache"

	"github.com/shopspring/decimal"
)

// Service errors
var (
	ErrProductNotFound    = errors.New("product not found")
	ErrCatalogUnavailable = errors.New("catalog unavailable")
)

// Product is the catalog's view of a sellable item.
type Product struct {
	ID              uint            `json:"id"`
	Name            string          `json:"name"`
	Price           decimal.Decimal `json:"price"`
	DiscountPercent decimal.Decimal `json:"discount_percentage"`
	Stock           int             `json:"stock"`
}

// UnitPrice is the post-discount price of a single unit, rounded to cents.
func (p *Product) UnitPrice() decimal.Decimal {
	hundred := decimal.NewFromInt(100)
	return p.Price.Mul(hundred.Sub(p.DiscountPercent)).Div(hundred).Round(2)
}

// Service fetches products from the catalog collaborator.
type Service interface {
	GetProduct(ctx context.Context, productID uint) (*Product, error)
}

type client struct {
	baseURL string
	http    *http.Client
	cache   *cache.Service
	ttl     time.Duration
}

// NewClient creates a catalog client. The cache is optional.
func NewClient(baseURL string, timeout time.Duration, cacheSvc *cache.Service) Service {
	return &client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		cache:   cacheSvc,
		ttl:     time.Minute,
	}
}

func (c *client) GetProduct(ctx context.Context, productID uint) (*Product, error) {
	if c.cache != nil {
		var cached Product
		key := c.cache.Key("catalog", "product", productID)
		if found, err := c.cache.Get(ctx, key, &cached); err == nil && found {
			return &cached, nil
		}
	}

	url := fmt.Sprintf("%s/products/%d", c.baseURL, productID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrProductNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: status %d", ErrCatalogUnavailable, resp.StatusCode)
	}

	var product Product
	if err := json.NewDecoder(resp.Body).Decode(&product); err != nil {
		return nil, fmt.Errorf("%w: bad response body: %v", ErrCatalogUnavailable, err)
	}

	if c.cache != nil {
		key := c.cache.Key("catalog", "product", productID)
		if err := c.cache.SetWithTTL(ctx, key, &product, c.ttl); err != nil {
			log.Printf("failed to cache product %d: %v", productID, err)
		}
	}
	return &product, nil
}
