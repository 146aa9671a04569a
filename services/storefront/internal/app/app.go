package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"onlinemall/internal/ratelimit"
	"onlinemall/pkg/domain"
	"onlinemall/pkg/storage"
	"onlinemall/services/storefront/internal/apiclient"
	"onlinemall/services/storefront/internal/guard"
	"onlinemall/services/storefront/internal/state"
)

// API is the storefront backend as the views use it. *apiclient.Client implements it.
type API interface {
	ListProducts(ctx context.Context, q apiclient.ProductQuery) ([]domain.Product, error)
	Recommendations(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int64) (domain.Product, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	Login(ctx context.Context, email, password string) (apiclient.LoginResult, error)
	Register(ctx context.Context, name, email, password string) error
	GetCart(ctx context.Context) (domain.Cart, error)
	AddCartItem(ctx context.Context, productID int64, quantity int) (domain.Cart, error)
	UpdateCartItem(ctx context.Context, cartItemID int64, quantity int) (domain.Cart, error)
	DeleteCartItems(ctx context.Context, cartItemIDs []int64) (domain.Cart, error)
	CreateOrder(ctx context.Context) (domain.Order, error)
	ListOrders(ctx context.Context) ([]domain.Order, error)
	TrackBehavior(ctx context.Context, productID int64, eventType domain.EventType) error
	AdminAPI
}

// AdminAPI is the admin console part of the backend.
type AdminAPI interface {
	AdminListProducts(ctx context.Context) ([]domain.Product, error)
	AdminGetProduct(ctx context.Context, id int64) (domain.Product, error)
	AdminCreateProduct(ctx context.Context, input domain.ProductInput) (domain.Product, error)
	AdminUpdateProduct(ctx context.Context, id int64, input domain.ProductInput) (domain.Product, error)
	AdminDeleteProduct(ctx context.Context, id int64) error
	AdminListUsers(ctx context.Context) ([]domain.UserInfo, error)
	AdminGetUser(ctx context.Context, id int64) (domain.UserInfo, error)
	AdminCreateUser(ctx context.Context, input domain.UserInput) (domain.UserInfo, error)
	AdminUpdateUser(ctx context.Context, id int64, input domain.UserInput) (domain.UserInfo, error)
	AdminDeleteUser(ctx context.Context, id int64) error
	AdminListBehaviors(ctx context.Context, q apiclient.BehaviorQuery) ([]domain.Behavior, error)
	TriggerTraining(ctx context.Context) (domain.TrainingJob, error)
}

var _ API = (*apiclient.Client)(nil)
var _ apiclient.TokenSource = (*state.Session)(nil)
var _ guard.SessionView = (*state.Session)(nil)

// ErrImagesDisabled is returned when an image upload is requested without an object store.
var ErrImagesDisabled = errors.New("image uploads are not configured")

// RedirectError reports a navigation the guard refused. Redirect is the
// target route name and RedirectPath its path in the route table.
type RedirectError struct {
	Path         string
	Redirect     string
	RedirectPath string
	Reason       string
}

func (e *RedirectError) Error() string {
	switch e.Reason {
	case guard.ReasonLoginRequired:
		return "please log in to continue"
	case guard.ReasonRoleUnavailable:
		return "admin role could not be verified"
	default:
		return "admin access required"
	}
}

type Config struct {
	API      API
	Session  *state.Session
	Cart     *state.Cart
	Notifier *state.Notifier
	Guard    *guard.Guard
	Routes   *guard.Table
	// Limiter throttles behavior tracking. Nil tracks every event.
	Limiter ratelimit.Limiter
	// Images stores admin product images. Nil disables uploads.
	Images storage.ObjectStore
	Logger *slog.Logger
}

// App wires the API client to the session, cart and notification stores.
// Views apply API results to the stores and route every failure to the notifier.
type App struct {
	api     API
	session *state.Session
	cart    *state.Cart
	notes   *state.Notifier
	guard   *guard.Guard
	routes  *guard.Table
	tracker *Tracker
	images  storage.ObjectStore
	logger  *slog.Logger
}

func New(cfg Config) (*App, error) {
	if cfg.API == nil {
		return nil, errors.New("api client is required")
	}
	a := &App{
		api:     cfg.API,
		session: cfg.Session,
		cart:    cfg.Cart,
		notes:   cfg.Notifier,
		guard:   cfg.Guard,
		routes:  cfg.Routes,
		images:  cfg.Images,
		logger:  cfg.Logger,
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	if a.session == nil {
		a.session = state.NewSession(nil)
	}
	if a.cart == nil {
		a.cart = state.NewCart()
	}
	if a.notes == nil {
		a.notes = state.NewNotifier(state.NotifierConfig{})
	}
	if a.guard == nil {
		a.guard = guard.New(guard.Config{Logger: a.logger})
	}
	if a.routes == nil {
		a.routes = guard.NewTable(guard.DefaultRoutes())
	}
	a.tracker = NewTracker(cfg.API, a.session, cfg.Limiter, a.logger)
	return a, nil
}

func (a *App) Session() *state.Session   { return a.session }
func (a *App) Cart() *state.Cart         { return a.cart }
func (a *App) Notifier() *state.Notifier { return a.notes }

// Navigate checks whether path may be entered with the current session.
// A refusal is returned as *RedirectError and shown as an error notification.
func (a *App) Navigate(path string) (guard.Match, error) {
	match, decision, err := a.guard.Navigate(a.routes, path, a.session)
	if err != nil {
		return guard.Match{}, err
	}
	if !decision.Allowed {
		redirect := &RedirectError{Path: path, Redirect: decision.Redirect, Reason: decision.Reason}
		if target, err := a.routes.Named(decision.Redirect); err == nil {
			redirect.RedirectPath = target.Path
		} else {
			a.logger.Warn("redirect route not registered", "route", decision.Redirect)
		}
		a.notes.Error(redirect.Error())
		return match, redirect
	}
	return match, nil
}

// report routes err to the notifier and returns it wrapped with op.
func (a *App) report(op string, err error) error {
	a.notes.Error(apiclient.ErrorMessage(err))
	return fmt.Errorf("%s: %w", op, err)
}

// fail is report for calls made with the stored session. A 401 from the API
// means that session is no longer valid, so it is dropped.
func (a *App) fail(op string, err error) error {
	if err == nil {
		return nil
	}
	if apiclient.IsUnauthorized(err) && a.session.IsLoggedIn() {
		a.logger.Warn("session rejected by api, logging out", "op", op)
		if clearErr := a.session.ClearUser(); clearErr != nil {
			a.logger.Warn("clear session failed", "err", clearErr)
		}
		a.cart.Clear()
	}
	return a.report(op, err)
}
