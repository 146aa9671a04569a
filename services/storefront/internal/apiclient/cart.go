package apiclient

import (
	"context"
	"net/http"

	"onlinemall/pkg/domain"
)

// Every cart mutation answers with the whole updated cart.

func (c *Client) GetCart(ctx context.Context) (domain.Cart, error) {
	var cart domain.Cart
	if err := c.doJSON(ctx, http.MethodGet, "/cart", nil, nil, &cart); err != nil {
		return domain.Cart{}, err
	}
	return cart, nil
}

func (c *Client) AddCartItem(ctx context.Context, productID int64, quantity int) (domain.Cart, error) {
	payload := map[string]any{"productId": productID, "quantity": quantity}
	var cart domain.Cart
	if err := c.doJSON(ctx, http.MethodPost, "/cart/items", nil, payload, &cart); err != nil {
		return domain.Cart{}, err
	}
	return cart, nil
}

func (c *Client) UpdateCartItem(ctx context.Context, cartItemID int64, quantity int) (domain.Cart, error) {
	payload := map[string]any{"quantity": quantity}
	var cart domain.Cart
	if err := c.doJSON(ctx, http.MethodPut, idPath("/cart/items", cartItemID), nil, payload, &cart); err != nil {
		return domain.Cart{}, err
	}
	return cart, nil
}

func (c *Client) DeleteCartItems(ctx context.Context, cartItemIDs []int64) (domain.Cart, error) {
	if cartItemIDs == nil {
		cartItemIDs = []int64{}
	}
	payload := map[string]any{"cartItemIds": cartItemIDs}
	var cart domain.Cart
	if err := c.doJSON(ctx, http.MethodDelete, "/cart/items", nil, payload, &cart); err != nil {
		return domain.Cart{}, err
	}
	return cart, nil
}
