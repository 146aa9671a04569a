package app

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"onlinemall/internal/util"
	"onlinemall/pkg/domain"
	"onlinemall/services/storefront/internal/apiclient"
)

// ImageUpload is a product image to put in object storage before the
// product is saved.
type ImageUpload struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

func (a *App) AdminProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := a.api.AdminListProducts(ctx)
	if err != nil {
		return nil, a.fail("admin list products", err)
	}
	return products, nil
}

func (a *App) AdminProduct(ctx context.Context, id int64) (domain.Product, error) {
	product, err := a.api.AdminGetProduct(ctx, id)
	if err != nil {
		return domain.Product{}, a.fail("admin get product", err)
	}
	return product, nil
}

// AdminCreateProduct creates a product, uploading img first when given. The
// uploaded object is removed again if the API rejects the product.
func (a *App) AdminCreateProduct(ctx context.Context, input domain.ProductInput, img *ImageUpload) (domain.Product, error) {
	key, err := a.uploadImage(ctx, &input, img)
	if err != nil {
		return domain.Product{}, a.fail("upload image", err)
	}
	product, err := a.api.AdminCreateProduct(ctx, input)
	if err != nil {
		a.discardImage(ctx, key)
		return domain.Product{}, a.fail("admin create product", err)
	}
	a.notes.Success("Product created")
	return product, nil
}

func (a *App) AdminUpdateProduct(ctx context.Context, id int64, input domain.ProductInput, img *ImageUpload) (domain.Product, error) {
	key, err := a.uploadImage(ctx, &input, img)
	if err != nil {
		return domain.Product{}, a.fail("upload image", err)
	}
	product, err := a.api.AdminUpdateProduct(ctx, id, input)
	if err != nil {
		a.discardImage(ctx, key)
		return domain.Product{}, a.fail("admin update product", err)
	}
	a.notes.Success("Product updated")
	return product, nil
}

func (a *App) AdminDeleteProduct(ctx context.Context, id int64) error {
	if err := a.api.AdminDeleteProduct(ctx, id); err != nil {
		return a.fail("admin delete product", err)
	}
	a.notes.Success("Product deleted")
	return nil
}

func (a *App) uploadImage(ctx context.Context, input *domain.ProductInput, img *ImageUpload) (string, error) {
	if img == nil {
		return "", nil
	}
	if a.images == nil {
		return "", ErrImagesDisabled
	}
	contentType := img.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key := "products/" + util.NewID() + strings.ToLower(path.Ext(img.Name))
	if err := a.images.Put(ctx, key, img.Body, img.Size, contentType); err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}
	input.ImageURL = a.images.URL(key)
	a.logger.Info("product image uploaded", "key", key, "size", img.Size)
	return key, nil
}

func (a *App) discardImage(ctx context.Context, key string) {
	if key == "" || a.images == nil {
		return
	}
	if err := a.images.Delete(ctx, key); err != nil {
		a.logger.Warn("discard product image failed", "key", key, "err", err)
	}
}

func (a *App) AdminUsers(ctx context.Context) ([]domain.UserInfo, error) {
	users, err := a.api.AdminListUsers(ctx)
	if err != nil {
		return nil, a.fail("admin list users", err)
	}
	return users, nil
}

func (a *App) AdminUser(ctx context.Context, id int64) (domain.UserInfo, error) {
	user, err := a.api.AdminGetUser(ctx, id)
	if err != nil {
		return domain.UserInfo{}, a.fail("admin get user", err)
	}
	return user, nil
}

func (a *App) AdminCreateUser(ctx context.Context, input domain.UserInput) (domain.UserInfo, error) {
	user, err := a.api.AdminCreateUser(ctx, input)
	if err != nil {
		return domain.UserInfo{}, a.fail("admin create user", err)
	}
	a.notes.Success("User created")
	return user, nil
}

func (a *App) AdminUpdateUser(ctx context.Context, id int64, input domain.UserInput) (domain.UserInfo, error) {
	user, err := a.api.AdminUpdateUser(ctx, id, input)
	if err != nil {
		return domain.UserInfo{}, a.fail("admin update user", err)
	}
	a.notes.Success("User updated")
	return user, nil
}

func (a *App) AdminDeleteUser(ctx context.Context, id int64) error {
	if err := a.api.AdminDeleteUser(ctx, id); err != nil {
		return a.fail("admin delete user", err)
	}
	a.notes.Success("User deleted")
	return nil
}

func (a *App) AdminBehaviors(ctx context.Context, q apiclient.BehaviorQuery) ([]domain.Behavior, error) {
	behaviors, err := a.api.AdminListBehaviors(ctx, q)
	if err != nil {
		return nil, a.fail("admin list behaviors", err)
	}
	return behaviors, nil
}

func (a *App) TriggerTraining(ctx context.Context) (domain.TrainingJob, error) {
	job, err := a.api.TriggerTraining(ctx)
	if err != nil {
		return domain.TrainingJob{}, a.fail("trigger training", err)
	}
	a.notes.Success("Model training started")
	return job, nil
}
