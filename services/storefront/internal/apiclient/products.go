package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"onlinemall/pkg/domain"
)

// ProductQuery filters the product list. Zero values are omitted.
type ProductQuery struct {
	CategoryID int64
	Keyword    string
}

func (q ProductQuery) values() url.Values {
	v := url.Values{}
	if q.CategoryID != 0 {
		v.Set("categoryId", strconv.FormatInt(q.CategoryID, 10))
	}
	if kw := strings.TrimSpace(q.Keyword); kw != "" {
		v.Set("keyword", kw)
	}
	return v
}

func (c *Client) ListProducts(ctx context.Context, q ProductQuery) ([]domain.Product, error) {
	var products []domain.Product
	if err := c.doJSON(ctx, http.MethodGet, "/products", q.values(), nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) Recommendations(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if err := c.doJSON(ctx, http.MethodGet, "/products/recommendations", nil, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// GetProduct returns ErrProductNotFound when the API answers with null.
func (c *Client) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	var product *domain.Product
	if err := c.doJSON(ctx, http.MethodGet, idPath("/products", id), nil, nil, &product); err != nil {
		return domain.Product{}, err
	}
	if product == nil {
		return domain.Product{}, ErrProductNotFound
	}
	return *product, nil
}

func (c *Client) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var categories []domain.Category
	if err := c.doJSON(ctx, http.MethodGet, "/categories", nil, nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}
