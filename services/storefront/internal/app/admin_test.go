package app

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"onlinemall/pkg/domain"
	"onlinemall/services/storefront/internal/apiclient"
)

type memoryObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func newMemoryObjects() *memoryObjects {
	return &memoryObjects{objects: make(map[string][]byte)}
}

func (m *memoryObjects) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if m.putErr != nil {
		return m.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return nil
}

func (m *memoryObjects) URL(key string) string {
	return "http://img.local/products-bucket/" + key
}

func (m *memoryObjects) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memoryObjects) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

func pngUpload() *ImageUpload {
	body := "fake-png"
	return &ImageUpload{Name: "Mug.PNG", ContentType: "image/png", Size: int64(len(body)), Body: strings.NewReader(body)}
}

func TestAdminCreateProductUploadsImage(t *testing.T) {
	objects := newMemoryObjects()
	env := newTestEnv(t, func(c *Config) { c.Images = objects })
	env.login(t, domain.RoleAdmin)
	env.backend.handle("POST /admin/products", respond(domain.Product{ID: 20, Name: "Mug"}))

	product, err := env.app.AdminCreateProduct(context.Background(), domain.ProductInput{Name: "Mug", Price: 12}, pngUpload())
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	if product.ID != 20 {
		t.Fatalf("unexpected product %+v", product)
	}
	imageURL, _ := env.backend.body("POST /admin/products")["imageUrl"].(string)
	if !strings.HasPrefix(imageURL, "http://img.local/products-bucket/products/") || !strings.HasSuffix(imageURL, ".png") {
		t.Fatalf("imageUrl must point at the uploaded object, got %q", imageURL)
	}
	if objects.count() != 1 {
		t.Fatalf("expected one stored object, got %d", objects.count())
	}
}

func TestAdminCreateProductFailureRemovesImage(t *testing.T) {
	objects := newMemoryObjects()
	env := newTestEnv(t, func(c *Config) { c.Images = objects })
	env.login(t, domain.RoleAdmin)
	env.backend.handle("POST /admin/products", businessError(400, "name already used"))

	_, err := env.app.AdminCreateProduct(context.Background(), domain.ProductInput{Name: "Mug"}, pngUpload())
	if apiclient.ErrorMessage(err) != "name already used" {
		t.Fatalf("unexpected error %v", err)
	}
	if objects.count() != 0 {
		t.Fatalf("rejected product must not leave its image behind")
	}
}

func TestAdminImageUploadRequiresStore(t *testing.T) {
	env := newTestEnv(t)
	env.login(t, domain.RoleAdmin)

	_, err := env.app.AdminCreateProduct(context.Background(), domain.ProductInput{Name: "Mug"}, pngUpload())
	if !errors.Is(err, ErrImagesDisabled) {
		t.Fatalf("expected ErrImagesDisabled, got %v", err)
	}
}

func TestAdminUpdateProductWithoutImage(t *testing.T) {
	env := newTestEnv(t)
	env.login(t, domain.RoleAdmin)
	env.backend.handle("PUT /admin/products/20", respond(domain.Product{ID: 20, Name: "Mug XL", ImageURL: "/old.png"}))

	product, err := env.app.AdminUpdateProduct(context.Background(), 20, domain.ProductInput{Name: "Mug XL", ImageURL: "/old.png"}, nil)
	if err != nil {
		t.Fatalf("update product: %v", err)
	}
	if product.ImageURL != "/old.png" {
		t.Fatalf("unexpected product %+v", product)
	}
}

func TestAdminUsersAndTraining(t *testing.T) {
	env := newTestEnv(t)
	env.login(t, domain.RoleAdmin)
	env.backend.handle("GET /admin/users", respond([]domain.UserInfo{{ID: 1, Name: "Ann", Role: domain.RoleAdmin}}))
	env.backend.handle("POST /admin/users", respond(domain.UserInfo{ID: 2, Name: "Bo", Role: domain.RoleUser}))
	env.backend.handle("DELETE /admin/users/2", respond(nil))
	env.backend.handle("GET /admin/behaviors", respond([]domain.Behavior{{ID: 1, UserID: 2, ProductID: 6, EventType: domain.EventView}}))
	env.backend.handle("POST /admin/recommendations/trigger-training", respond(domain.TrainingJob{JobID: "job-9", Status: "QUEUED"}))
	ctx := context.Background()

	if users, err := env.app.AdminUsers(ctx); err != nil || len(users) != 1 {
		t.Fatalf("admin users: %+v %v", users, err)
	}
	if user, err := env.app.AdminCreateUser(ctx, domain.UserInput{Name: "Bo", Email: "bo@example.com", Password: "pw"}); err != nil || user.ID != 2 {
		t.Fatalf("admin create user: %+v %v", user, err)
	}
	if err := env.app.AdminDeleteUser(ctx, 2); err != nil {
		t.Fatalf("admin delete user: %v", err)
	}
	if behaviors, err := env.app.AdminBehaviors(ctx, apiclient.BehaviorQuery{EventType: domain.EventView}); err != nil || len(behaviors) != 1 {
		t.Fatalf("admin behaviors: %+v %v", behaviors, err)
	}
	job, err := env.app.TriggerTraining(ctx)
	if err != nil || job.JobID != "job-9" {
		t.Fatalf("trigger training: %+v %v", job, err)
	}
	if n := env.app.Notifier().Current(); n.Message != "Model training started" {
		t.Fatalf("unexpected notification %+v", n)
	}
}
