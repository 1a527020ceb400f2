package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"stockroom/internal/database"
	"stockroom/internal/handlers"
	"stockroom/internal/models"
	"stockroom/internal/repositories"
	"stockroom/internal/services"
	"stockroom/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

// setupApp builds the product API on a fresh in-memory SQLite database
// seeded with one product (ID 1, available).
func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Open(database.Config{
		Driver:       database.DriverSQLite,
		DSN:          fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
		LogLevel:     logger.Silent,
		MaxOpenConns: 1,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { database.Close(db) })

	repo := repositories.NewGORMProductRepository(db)
	require.NoError(t, repo.Create(context.Background(), &models.Product{Name: "Seeded monitor", Price: 300, Availability: true}))

	return newApp(repo)
}

func newApp(repo repositories.ProductRepository) *fiber.App {
	log := hclog.NewNullLogger()
	service := services.NewProductService(repo, nil, log)

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler(log)})
	app.Use(recover.New())
	handlers.NewHealthHandler(service).RegisterRoutes(app)
	handlers.NewProductHandler(service, validation.New(), log).RegisterRoutes(app.Group("/api"))
	return app
}

type envelope struct {
	Data   json.RawMessage         `json:"data"`
	Error  string                  `json:"error"`
	Errors []validation.FieldError `json:"errors"`
}

func do(t *testing.T, app *fiber.App, method, path string, body any) (int, envelope, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var env envelope
	var keys map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
		require.NoError(t, json.Unmarshal(raw, &keys))
	}
	return resp.StatusCode, env, keys
}

func decodeProduct(t *testing.T, env envelope) models.Product {
	t.Helper()
	var p models.Product
	require.NoError(t, json.Unmarshal(env.Data, &p))
	return p
}

func errorMessages(env envelope) []string {
	out := make([]string, 0, len(env.Errors))
	for _, e := range env.Errors {
		out = append(out, e.Message)
	}
	return out
}

func TestCreateProduct_Validation(t *testing.T) {
	app := setupApp(t)

	status, env, keys := do(t, app, http.MethodPost, "/api/products", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, keys, "errors")
	assert.Len(t, env.Errors, 5)

	status, env, _ = do(t, app, http.MethodPost, "/api/products", map[string]any{"name": "New item", "price": 0})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, []string{"Price must be greater than 0"}, errorMessages(env))

	status, env, _ = do(t, app, http.MethodPost, "/api/products", map[string]any{"name": "New item", "price": "Hello"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, []string{"Price must be a number", "Price must be greater than 0"}, errorMessages(env))

	status, env, _ = do(t, app, http.MethodPost, "/api/products", map[string]any{"name": "New item", "price": 9.999})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, []string{"Price must have at most 2 decimal places"}, errorMessages(env))
}

func TestCreateProduct_ColumnLimits(t *testing.T) {
	app := setupApp(t)
	longest := strings.Repeat("x", models.MaxNameLength)

	status, env, _ := do(t, app, http.MethodPost, "/api/products", map[string]any{"name": longest + "x", "price": 10})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, []string{"Name must be at most 100 characters long"}, errorMessages(env))

	status, env, _ = do(t, app, http.MethodPost, "/api/products", map[string]any{"name": "Mainframe", "price": 100000000})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, []string{"Price must be less than 100000000"}, errorMessages(env))

	status, env, _ = do(t, app, http.MethodPost, "/api/products", map[string]any{"name": longest, "price": 99999999.99})
	require.Equal(t, http.StatusCreated, status)
	created := decodeProduct(t, env)
	assert.Equal(t, longest, created.Name)
	assert.Equal(t, 99999999.99, created.Price)
}

func TestCreateProduct_InvalidJSON(t *testing.T) {
	app := setupApp(t)

	req := httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateProduct_RoundTrip(t *testing.T) {
	app := setupApp(t)

	status, env, keys := do(t, app, http.MethodPost, "/api/products", map[string]any{"name": "New item", "price": 50})
	require.Equal(t, http.StatusCreated, status)
	assert.NotContains(t, keys, "errors")

	created := decodeProduct(t, env)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "New item", created.Name)
	assert.Equal(t, 50.0, created.Price)
	assert.True(t, created.Availability)

	var data map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.NotContains(t, data, "CreatedAt")
	assert.NotContains(t, data, "createdAt")

	status, env, _ = do(t, app, http.MethodGet, "/api/products", nil)
	require.Equal(t, http.StatusOK, status)
	var products []models.Product
	require.NoError(t, json.Unmarshal(env.Data, &products))
	require.Len(t, products, 2)
	assert.Less(t, products[0].ID, products[1].ID)
	assert.Equal(t, created, products[1])
}

func TestCreateProduct_FormEncoded(t *testing.T) {
	app := setupApp(t)

	form := url.Values{"name": {"Desk lamp"}, "price": {"24.50"}}
	req := httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	created := decodeProduct(t, env)
	assert.Equal(t, 24.5, created.Price)
}

func TestGetProducts(t *testing.T) {
	app := setupApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	var products []models.Product
	require.NoError(t, json.Unmarshal(env.Data, &products))
	assert.Len(t, products, 1)
}

func TestGetProducts_EmptyIsArray(t *testing.T) {
	app := newApp(repositories.NewMemoryProductRepository())

	status, env, _ := do(t, app, http.MethodGet, "/api/products", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, "[]", string(env.Data))
}

func TestGetProductByID(t *testing.T) {
	app := setupApp(t)

	status, env, _ := do(t, app, http.MethodGet, "/api/products/2000", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Product not found", env.Error)

	status, env, _ = do(t, app, http.MethodGet, "/api/products/hello", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	require.Len(t, env.Errors, 1)
	assert.Equal(t, "Not a valid ID", env.Errors[0].Message)

	status, first, _ := do(t, app, http.MethodGet, "/api/products/1", nil)
	assert.Equal(t, http.StatusOK, status)
	_, second, _ := do(t, app, http.MethodGet, "/api/products/1", nil)
	assert.JSONEq(t, string(first.Data), string(second.Data))
}

func TestNonPositiveIDs(t *testing.T) {
	app := setupApp(t)
	valid := map[string]any{"name": "Test item", "price": 300, "availability": true}

	for _, id := range []string{"hello", "0", "-5", "1.5"} {
		for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodDelete} {
			var body any
			if method == http.MethodPut {
				body = valid
			}
			status, env, _ := do(t, app, method, "/api/products/"+id, body)
			assert.Equal(t, http.StatusBadRequest, status, "%s %s", method, id)
			require.Len(t, env.Errors, 1, "%s %s", method, id)
			assert.Equal(t, "Not a valid ID", env.Errors[0].Message)
		}
	}
}

func TestUpdateProduct(t *testing.T) {
	app := setupApp(t)

	status, env, keys := do(t, app, http.MethodPut, "/api/products/1", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Len(t, env.Errors, 6)
	assert.NotContains(t, keys, "data")

	status, env, _ = do(t, app, http.MethodPut, "/api/products/1", map[string]any{"name": "Updated item", "price": -300, "availability": false})
	assert.Equal(t, http.StatusBadRequest, status)
	require.Len(t, env.Errors, 1)
	assert.Equal(t, "Price must be greater than 0", env.Errors[0].Message)

	status, env, _ = do(t, app, http.MethodPut, "/api/products/1", map[string]any{"name": "Updated item", "price": "Hello", "availability": true})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, []string{"Price must be a number", "Price must be greater than 0"}, errorMessages(env))

	status, env, keys = do(t, app, http.MethodPut, "/api/products/2000", map[string]any{"name": "Updated item", "price": 100, "availability": false})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Product not found", env.Error)
	assert.NotContains(t, keys, "data")

	status, env, _ = do(t, app, http.MethodPut, "/api/products/1", map[string]any{"name": "Updated item", "price": "100.5", "availability": false})
	require.Equal(t, http.StatusOK, status)
	updated := decodeProduct(t, env)
	assert.Equal(t, uint(1), updated.ID)
	assert.Equal(t, "Updated item", updated.Name)
	assert.Equal(t, 100.5, updated.Price)
	assert.False(t, updated.Availability)

	_, env, _ = do(t, app, http.MethodGet, "/api/products/1", nil)
	assert.Equal(t, updated, decodeProduct(t, env))
}

func TestToggleAvailability(t *testing.T) {
	app := setupApp(t)

	status, env, keys := do(t, app, http.MethodPatch, "/api/products/2000", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Product not found", env.Error)
	assert.NotContains(t, keys, "data")

	status, env, _ = do(t, app, http.MethodPatch, "/api/products/1", nil)
	require.Equal(t, http.StatusOK, status)
	assert.False(t, decodeProduct(t, env).Availability)

	status, env, _ = do(t, app, http.MethodPatch, "/api/products/1", nil)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, decodeProduct(t, env).Availability)
}

func TestDeleteProduct(t *testing.T) {
	app := setupApp(t)

	status, env, _ := do(t, app, http.MethodDelete, "/api/products/not-valid-url", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Not a valid ID", env.Errors[0].Message)

	status, env, _ = do(t, app, http.MethodDelete, "/api/products/2000", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Product not found", env.Error)

	status, env, _ = do(t, app, http.MethodDelete, "/api/products/1", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `"Product deleted"`, string(env.Data))

	status, env, _ = do(t, app, http.MethodGet, "/api/products/1", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Product not found", env.Error)
}

// failingRepository simulates a store that lost its connection.
type failingRepository struct{}

var errConnectionLost = errors.New("dial tcp 10.0.0.5:5432: connection refused")

func (failingRepository) GetAll(context.Context) ([]models.Product, error) {
	return nil, errConnectionLost
}
func (failingRepository) GetByID(context.Context, uint) (*models.Product, error) {
	return nil, errConnectionLost
}
func (failingRepository) Create(context.Context, *models.Product) error { return errConnectionLost }
func (failingRepository) Update(context.Context, *models.Product) error { return errConnectionLost }
func (failingRepository) Delete(context.Context, uint) error            { return errConnectionLost }
func (failingRepository) Ping(context.Context) error                    { return errConnectionLost }

func TestStoreFailureIsGeneric500(t *testing.T) {
	app := newApp(failingRepository{})

	cases := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodGet, "/api/products", nil},
		{http.MethodGet, "/api/products/1", nil},
		{http.MethodPost, "/api/products", map[string]any{"name": "New item", "price": 50}},
		{http.MethodPut, "/api/products/1", map[string]any{"name": "New item", "price": 50, "availability": true}},
		{http.MethodPatch, "/api/products/1", nil},
		{http.MethodDelete, "/api/products/1", nil},
	}
	for _, tc := range cases {
		status, env, _ := do(t, app, tc.method, tc.path, tc.body)
		assert.Equal(t, http.StatusInternalServerError, status, "%s %s", tc.method, tc.path)
		assert.Equal(t, handlers.MsgInternalError, env.Error)
		assert.NotContains(t, env.Error, "connection refused")
	}

	status, _, keys := do(t, app, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "unavailable", keys["status"])
}

func TestHealth(t *testing.T) {
	app := setupApp(t)

	status, _, keys := do(t, app, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", keys["status"])

	status, _, keys = do(t, app, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ready", keys["status"])
}

func TestErrorHandler_UnknownRoute(t *testing.T) {
	app := setupApp(t)

	status, env, _ := do(t, app, http.MethodGet, "/api/unknown", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.NotEmpty(t, env.Error)
}
