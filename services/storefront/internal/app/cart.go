package app

import (
	"context"

	"onlinemall/pkg/domain"
)

// Every cart operation replaces the local cart with the server's reply.

func (a *App) LoadCart(ctx context.Context) (domain.Cart, error) {
	cart, err := a.api.GetCart(ctx)
	if err != nil {
		return domain.Cart{}, a.fail("load cart", err)
	}
	a.cart.Set(cart)
	return a.cart.Snapshot(), nil
}

func (a *App) AddToCart(ctx context.Context, productID int64, quantity int) (domain.Cart, error) {
	cart, err := a.api.AddCartItem(ctx, productID, quantity)
	if err != nil {
		return domain.Cart{}, a.fail("add to cart", err)
	}
	a.cart.Set(cart)
	a.tracker.Track(ctx, productID, domain.EventAddToCart)
	a.notes.Success("Added to cart")
	return a.cart.Snapshot(), nil
}

func (a *App) UpdateCartItem(ctx context.Context, cartItemID int64, quantity int) (domain.Cart, error) {
	cart, err := a.api.UpdateCartItem(ctx, cartItemID, quantity)
	if err != nil {
		return domain.Cart{}, a.fail("update cart item", err)
	}
	a.cart.Set(cart)
	a.notes.Success("Cart updated")
	return a.cart.Snapshot(), nil
}

func (a *App) RemoveCartItems(ctx context.Context, cartItemIDs []int64) (domain.Cart, error) {
	if len(cartItemIDs) == 0 {
		return a.cart.Snapshot(), nil
	}
	cart, err := a.api.DeleteCartItems(ctx, cartItemIDs)
	if err != nil {
		return domain.Cart{}, a.fail("remove cart items", err)
	}
	a.cart.Set(cart)
	a.notes.Success("Removed from cart")
	return a.cart.Snapshot(), nil
}
