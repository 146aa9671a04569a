package app

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
	"onlinemall/pkg/domain"
	"onlinemall/services/storefront/internal/apiclient"
)

// HomeData is everything the home page shows.
type HomeData struct {
	Recommendations []domain.Product  `json:"recommendations"`
	Categories      []domain.Category `json:"categories"`
	Products        []domain.Product  `json:"products"`
}

// Home loads recommendations, categories and the product list in parallel.
func (a *App) Home(ctx context.Context) (HomeData, error) {
	var data HomeData
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		products, err := a.api.Recommendations(gctx)
		data.Recommendations = products
		return err
	})
	g.Go(func() error {
		categories, err := a.api.ListCategories(gctx)
		data.Categories = categories
		return err
	})
	g.Go(func() error {
		products, err := a.api.ListProducts(gctx, apiclient.ProductQuery{})
		data.Products = products
		return err
	})
	if err := g.Wait(); err != nil {
		return HomeData{}, a.fail("load home", err)
	}
	return data, nil
}

func (a *App) Products(ctx context.Context, q apiclient.ProductQuery) ([]domain.Product, error) {
	products, err := a.api.ListProducts(ctx, q)
	if err != nil {
		return nil, a.fail("list products", err)
	}
	return products, nil
}

func (a *App) Categories(ctx context.Context) ([]domain.Category, error) {
	categories, err := a.api.ListCategories(ctx)
	if err != nil {
		return nil, a.fail("list categories", err)
	}
	return categories, nil
}

// Product loads a product detail page and records a VIEW event.
func (a *App) Product(ctx context.Context, id int64) (domain.Product, error) {
	product, err := a.api.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, apiclient.ErrProductNotFound) {
			a.notes.Error("Product not found")
			return domain.Product{}, err
		}
		return domain.Product{}, a.fail("get product", err)
	}
	a.tracker.Track(ctx, product.ID, domain.EventView)
	return product, nil
}

// Login stores the returned session and loads the user's cart. A rejected
// login leaves any existing session in place.
func (a *App) Login(ctx context.Context, email, password string) (domain.UserInfo, error) {
	result, err := a.api.Login(ctx, email, password)
	if err != nil {
		return domain.UserInfo{}, a.report("login", err)
	}
	if result.Token == "" {
		return domain.UserInfo{}, a.report("login", errors.New("login response carried no token"))
	}
	if err := a.session.SetUser(result.Token, result.UserInfo); err != nil {
		a.logger.Warn("persist session failed", "err", err)
	}
	if cart, err := a.api.GetCart(ctx); err == nil {
		a.cart.Set(cart)
	} else {
		a.logger.Warn("load cart after login failed", "err", err)
	}
	a.notes.Success("Login successful")
	user, _ := a.session.UserInfo()
	return user, nil
}

func (a *App) Register(ctx context.Context, name, email, password string) error {
	if err := a.api.Register(ctx, name, email, password); err != nil {
		return a.fail("register", err)
	}
	a.notes.Success("Registration successful, please log in")
	return nil
}

// Logout clears the session and the cart.
func (a *App) Logout() error {
	err := a.session.ClearUser()
	a.cart.Clear()
	if err != nil {
		a.logger.Warn("clear session failed", "err", err)
	}
	a.notes.Success("Logged out")
	return err
}

// Checkout places an order for the current cart and empties it.
func (a *App) Checkout(ctx context.Context) (domain.Order, error) {
	order, err := a.api.CreateOrder(ctx)
	if err != nil {
		return domain.Order{}, a.fail("checkout", err)
	}
	a.cart.Clear()
	a.notes.Success("Order placed")
	return order, nil
}

func (a *App) Orders(ctx context.Context) ([]domain.Order, error) {
	orders, err := a.api.ListOrders(ctx)
	if err != nil {
		return nil, a.fail("list orders", err)
	}
	return orders, nil
}
