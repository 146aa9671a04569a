package apiclient

import (
	"context"
	"net/http"

	"onlinemall/pkg/domain"
)

// CreateOrder checks out the current cart.
func (c *Client) CreateOrder(ctx context.Context) (domain.Order, error) {
	var order domain.Order
	if err := c.doJSON(ctx, http.MethodPost, "/orders", nil, nil, &order); err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

func (c *Client) ListOrders(ctx context.Context) ([]domain.Order, error) {
	var orders []domain.Order
	if err := c.doJSON(ctx, http.MethodGet, "/orders", nil, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}
