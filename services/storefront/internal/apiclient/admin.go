package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"onlinemall/pkg/domain"
)

func (c *Client) AdminListProducts(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if err := c.doJSON(ctx, http.MethodGet, "/admin/products", nil, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) AdminGetProduct(ctx context.Context, id int64) (domain.Product, error) {
	var product *domain.Product
	if err := c.doJSON(ctx, http.MethodGet, idPath("/admin/products", id), nil, nil, &product); err != nil {
		return domain.Product{}, err
	}
	if product == nil {
		return domain.Product{}, ErrProductNotFound
	}
	return *product, nil
}

func (c *Client) AdminCreateProduct(ctx context.Context, input domain.ProductInput) (domain.Product, error) {
	var product domain.Product
	if err := c.doJSON(ctx, http.MethodPost, "/admin/products", nil, input, &product); err != nil {
		return domain.Product{}, err
	}
	return product, nil
}

func (c *Client) AdminUpdateProduct(ctx context.Context, id int64, input domain.ProductInput) (domain.Product, error) {
	var product domain.Product
	if err := c.doJSON(ctx, http.MethodPut, idPath("/admin/products", id), nil, input, &product); err != nil {
		return domain.Product{}, err
	}
	return product, nil
}

func (c *Client) AdminDeleteProduct(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, idPath("/admin/products", id), nil, nil, nil)
}

func (c *Client) AdminListUsers(ctx context.Context) ([]domain.UserInfo, error) {
	var users []domain.UserInfo
	if err := c.doJSON(ctx, http.MethodGet, "/admin/users", nil, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) AdminGetUser(ctx context.Context, id int64) (domain.UserInfo, error) {
	var user domain.UserInfo
	if err := c.doJSON(ctx, http.MethodGet, idPath("/admin/users", id), nil, nil, &user); err != nil {
		return domain.UserInfo{}, err
	}
	return user, nil
}

func (c *Client) AdminCreateUser(ctx context.Context, input domain.UserInput) (domain.UserInfo, error) {
	var user domain.UserInfo
	if err := c.doJSON(ctx, http.MethodPost, "/admin/users", nil, input, &user); err != nil {
		return domain.UserInfo{}, err
	}
	return user, nil
}

func (c *Client) AdminUpdateUser(ctx context.Context, id int64, input domain.UserInput) (domain.UserInfo, error) {
	var user domain.UserInfo
	if err := c.doJSON(ctx, http.MethodPut, idPath("/admin/users", id), nil, input, &user); err != nil {
		return domain.UserInfo{}, err
	}
	return user, nil
}

func (c *Client) AdminDeleteUser(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, idPath("/admin/users", id), nil, nil, nil)
}

// BehaviorQuery filters the admin behavior log. Zero values are omitted.
type BehaviorQuery struct {
	UserID    int64
	ProductID int64
	EventType domain.EventType
}

func (q BehaviorQuery) values() url.Values {
	v := url.Values{}
	if q.UserID != 0 {
		v.Set("userId", strconv.FormatInt(q.UserID, 10))
	}
	if q.ProductID != 0 {
		v.Set("productId", strconv.FormatInt(q.ProductID, 10))
	}
	if et := strings.TrimSpace(string(q.EventType)); et != "" {
		v.Set("eventType", et)
	}
	return v
}

func (c *Client) AdminListBehaviors(ctx context.Context, q BehaviorQuery) ([]domain.Behavior, error) {
	var behaviors []domain.Behavior
	if err := c.doJSON(ctx, http.MethodGet, "/admin/behaviors", q.values(), nil, &behaviors); err != nil {
		return nil, err
	}
	return behaviors, nil
}

// TriggerTraining asks the backend to retrain the recommendation model.
func (c *Client) TriggerTraining(ctx context.Context) (domain.TrainingJob, error) {
	var job domain.TrainingJob
	if err := c.doJSON(ctx, http.MethodPost, "/admin/recommendations/trigger-training", nil, nil, &job); err != nil {
		return domain.TrainingJob{}, err
	}
	return job, nil
}
