package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/hashicorp/go-hclog"
)

const productsPath = "/api/products"

// StatusError is returned for non-2xx API responses.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

// Service talks to the products API. Every method swallows failures: it
// logs them and returns an empty result (nil or false), so callers treat a
// failure the same as "no data".
type Service struct {
	baseURL string
	timeout time.Duration
	logger  hclog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithTimeout bounds each request. The default is 10 seconds.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

// WithLogger sets the logger failures are reported to.
func WithLogger(logger hclog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// NewService creates a Service for the API served at baseURL.
func NewService(baseURL string, opts ...Option) *Service {
	s := &Service{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: 10 * time.Second,
		logger:  hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetProducts returns every product, or nil when the request or the
// response validation fails.
func (s *Service) GetProducts() []Product {
	data, err := s.send(fiber.Get(s.url()))
	if err != nil {
		s.logger.Error("error fetching products", "error", err)
		return nil
	}
	result := ParseProducts(data)
	if !result.Success() {
		s.logger.Error("error fetching products", "error", result.Err())
		return nil
	}
	return result.Output
}

// GetProductByID returns one product, or nil on any failure.
func (s *Service) GetProductByID(id int64) *Product {
	data, err := s.send(fiber.Get(s.url(id)))
	if err != nil {
		s.logger.Error("error fetching product", "id", id, "error", err)
		return nil
	}
	return s.product("error fetching product", data)
}

// AddProduct validates form input and creates the product.
func (s *Service) AddProduct(form map[string]string) *Product {
	draft := ParseDraft(form)
	if !draft.Success() {
		s.logger.Error("error adding product", "error", draft.Err())
		return nil
	}

	data, err := s.send(fiber.Post(s.url()).JSON(draft.Output))
	if err != nil {
		s.logger.Error("error adding product", "error", err)
		return nil
	}
	return s.product("error adding product", data)
}

// UpdateProduct validates edit form input and replaces the product.
func (s *Service) UpdateProduct(id int64, form map[string]string) *Product {
	parsed := ParseProductForm(id, form)
	if !parsed.Success() {
		s.logger.Error("error updating product", "id", id, "error", parsed.Err())
		return nil
	}

	payload := map[string]any{
		"name":         parsed.Output.Name,
		"price":        parsed.Output.Price,
		"availability": parsed.Output.Availability,
	}
	data, err := s.send(fiber.Put(s.url(id)).JSON(payload))
	if err != nil {
		s.logger.Error("error updating product", "id", id, "error", err)
		return nil
	}
	return s.product("error updating product", data)
}

// ToggleAvailability flips a product's availability.
func (s *Service) ToggleAvailability(id int64) *Product {
	data, err := s.send(fiber.Patch(s.url(id)))
	if err != nil {
		s.logger.Error("error toggling availability", "id", id, "error", err)
		return nil
	}
	return s.product("error toggling availability", data)
}

// DeleteProduct deletes a product and reports whether the API confirmed it.
func (s *Service) DeleteProduct(id int64) bool {
	if _, err := s.send(fiber.Delete(s.url(id))); err != nil {
		s.logger.Error("error deleting product", "id", id, "error", err)
		return false
	}
	return true
}

func (s *Service) product(msg string, data any) *Product {
	result := ParseProduct(data)
	if !result.Success() {
		s.logger.Error(msg, "error", result.Err())
		return nil
	}
	return &result.Output
}

func (s *Service) url(id ...int64) string {
	if len(id) == 0 {
		return s.baseURL + productsPath
	}
	return s.baseURL + productsPath + "/" + strconv.FormatInt(id[0], 10)
}

// send performs the request and returns the decoded "data" member of the
// response envelope.
func (s *Service) send(a *fiber.Agent) (any, error) {
	a.Timeout(s.timeout)
	if err := a.Parse(); err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	code, body, errs := a.Bytes()
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if code < fiber.StatusOK || code >= fiber.StatusMultipleChoices {
		return nil, &StatusError{Code: code, Body: string(body)}
	}
	if len(body) == 0 {
		return nil, nil
	}

	var envelope struct {
		Data any `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return envelope.Data, nil
}
