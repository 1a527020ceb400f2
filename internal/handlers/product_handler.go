package handlers

import (
	"errors"

	"stockroom/internal/middleware"
	"stockroom/internal/repositories"
	"stockroom/internal/services"
	"stockroom/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/hashicorp/go-hclog"
)

// Fixed response messages.
const (
	MsgProductNotFound = "Product not found"
	MsgProductDeleted  = "Product deleted"
	MsgInternalError   = "Internal server error"
	MsgInvalidBody     = "Invalid request body"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service    *services.ProductService
	validation *validation.Validation
	logger     hclog.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, v *validation.Validation, logger hclog.Logger) *ProductHandler {
	return &ProductHandler{
		service:    service,
		validation: v,
		logger:     logger,
	}
}

// RegisterRoutes registers the product routes on router.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Put("/:id", h.HandleUpdateProduct)
	productRoutes.Patch("/:id", h.HandleToggleAvailability)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
}

// HandleGetProducts lists every product ordered by ID.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts(c.UserContext())
	if err != nil {
		return h.fail(c, "list products", err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"data": products})
}

// HandleGetProductByID returns a single product.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	id, errs := h.validation.ValidateID(c.Params("id"))
	if len(errs) > 0 {
		return invalid(c, errs)
	}

	product, err := h.service.GetProductByID(c.UserContext(), id)
	if err != nil {
		return h.fail(c, "get product", err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"data": product})
}

// HandleCreateProduct creates an available product from name and price.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	in, err := readInput(c)
	if err != nil {
		h.logger.Debug("error parsing request body", "error", err)
		return invalidBody(c)
	}

	draft, errs := h.validation.ValidateDraft(in)
	if len(errs) > 0 {
		return invalid(c, errs)
	}

	product, err := h.service.CreateProduct(c.UserContext(), draft)
	if err != nil {
		return h.fail(c, "create product", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": product})
}

// HandleUpdateProduct replaces name, price and availability of a product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	in, err := readInput(c)
	if err != nil {
		h.logger.Debug("error parsing request body", "error", err)
		return invalidBody(c)
	}

	id, changes, errs := h.validation.ValidateUpdate(c.Params("id"), in)
	if len(errs) > 0 {
		return invalid(c, errs)
	}

	product, err := h.service.UpdateProduct(c.UserContext(), id, changes)
	if err != nil {
		return h.fail(c, "update product", err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"data": product})
}

// HandleToggleAvailability flips the availability of a product. No body.
func (h *ProductHandler) HandleToggleAvailability(c *fiber.Ctx) error {
	id, errs := h.validation.ValidateID(c.Params("id"))
	if len(errs) > 0 {
		return invalid(c, errs)
	}

	product, err := h.service.ToggleAvailability(c.UserContext(), id)
	if err != nil {
		return h.fail(c, "toggle availability", err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"data": product})
}

// HandleDeleteProduct hard-deletes a product.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id, errs := h.validation.ValidateID(c.Params("id"))
	if len(errs) > 0 {
		return invalid(c, errs)
	}

	if err := h.service.DeleteProduct(c.UserContext(), id); err != nil {
		return h.fail(c, "delete product", err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"data": MsgProductDeleted})
}

// fail maps a service error to 404 or a generic 500.
func (h *ProductHandler) fail(c *fiber.Ctx, op string, err error) error {
	if errors.Is(err, repositories.ErrProductNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": MsgProductNotFound})
	}
	h.logger.Error("request failed", "op", op, "request_id", middleware.RequestID(c), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": MsgInternalError})
}

func invalid(c *fiber.Ctx, errs validation.Errors) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": errs})
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"errors": validation.Errors{{Message: MsgInvalidBody, Location: "body"}},
	})
}
