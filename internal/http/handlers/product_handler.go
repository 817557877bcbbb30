package handlers

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"agrimarket/internal/domain"
	applog "agrimarket/internal/log"
	"agrimarket/internal/repos"
	"agrimarket/internal/services"
	"agrimarket/internal/validate"
)

type ProductHandler struct {
	Catalog  *services.CatalogService
	Activity *services.ActivityRecorder
}

// GET /products?category&minPrice&maxPrice&scope
// Identity is optional; scope=farmer demands a farmer identity.
func (h *ProductHandler) List(c *fiber.Ctx) error {
	views, err := h.Catalog.ListProducts(
		identityFrom(c),
		c.Query("scope"),
		c.Query("category"),
		c.Query("minPrice"),
		c.Query("maxPrice"),
	)
	if err != nil {
		if errors.Is(err, services.ErrForbidden) {
			return jsonError(c, fiber.StatusForbidden, "Farmer access required")
		}
		applog.Error(c, "products.list.fail", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "Internal server error")
	}
	return c.JSON(fiber.Map{"products": views})
}

// GET /products/:id — public catalog detail, no ownership check by design.
func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusNotFound, "Product not found")
	}
	p, err := h.Catalog.GetProduct(id)
	if err != nil {
		if errors.Is(err, repos.ErrNotFound) {
			return jsonError(c, fiber.StatusNotFound, "Product not found")
		}
		applog.Error(c, "products.detail.fail", err, map[string]any{"product_id": id})
		// this endpoint surfaces the underlying message
		return jsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{"product": p})
}

// POST /products — farmer only (guarded in routing). Accepts either a
// multipart form with binary images or a JSON body with pre-hosted URLs.
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	ident := identityFrom(c)

	var in services.NewProduct
	var uploads []services.ImageUpload
	var imageURLs []string

	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		form, err := c.MultipartForm()
		if err != nil {
			return jsonError(c, fiber.StatusBadRequest, "Invalid multipart form")
		}
		in = services.NewProduct{
			Title:           formValue(form.Value, "title"),
			Description:     formValue(form.Value, "description"),
			Category:        formValue(form.Value, "category"),
			Unit:            formValue(form.Value, "unit"),
			PriceRaw:        formValue(form.Value, "price"),
			QuantityRaw:     formValue(form.Value, "quantity"),
			MinimumOrderRaw: formValue(form.Value, "minimumOrder"),
		}
		files := form.File["images"]
		if len(files) > services.MaxImagesPerProduct {
			return jsonError(c, fiber.StatusBadRequest, "You can upload up to 6 images per product")
		}
		for _, fh := range files {
			if fh.Size == 0 {
				continue
			}
			if fh.Size > services.MaxImageSize {
				return jsonError(c, fiber.StatusBadRequest, "Each image must be 5 MiB or smaller")
			}
			f, err := fh.Open()
			if err != nil {
				return jsonError(c, fiber.StatusBadRequest, "Could not read uploaded image")
			}
			data, err := io.ReadAll(f)
			_ = f.Close()
			if err != nil {
				return jsonError(c, fiber.StatusBadRequest, "Could not read uploaded image")
			}
			uploads = append(uploads, services.ImageUpload{Filename: fh.Filename, Data: data})
		}
	} else {
		var body struct {
			Title        string   `json:"title"`
			Description  string   `json:"description"`
			Category     string   `json:"category"`
			Unit         string   `json:"unit"`
			Price        any      `json:"price"`
			Quantity     any      `json:"quantity"`
			MinimumOrder any      `json:"minimumOrder"`
			Images       []string `json:"images"`
		}
		if err := c.BodyParser(&body); err != nil {
			return jsonError(c, fiber.StatusBadRequest, "Invalid request body")
		}
		in = services.NewProduct{
			Title:           body.Title,
			Description:     body.Description,
			Category:        body.Category,
			Unit:            body.Unit,
			PriceRaw:        rawNumber(body.Price),
			QuantityRaw:     rawNumber(body.Quantity),
			MinimumOrderRaw: rawNumber(body.MinimumOrder),
		}
		imageURLs = body.Images
	}

	p, err := h.Catalog.CreateProduct(ident.ID, in, uploads, imageURLs)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrValidation):
			return jsonError(c, fiber.StatusBadRequest, strings.TrimPrefix(err.Error(), services.ErrValidation.Error()+": "))
		case errors.Is(err, services.ErrUpload):
			applog.Error(c, "products.create.upload", err, nil)
			return jsonError(c, fiber.StatusInternalServerError, "Failed to upload one of the images")
		default:
			applog.Error(c, "products.create.fail", err, nil)
			return jsonError(c, fiber.StatusInternalServerError, "Internal server error")
		}
	}

	h.Activity.Record(domain.ActivityEntry{
		UserID:      ident.ID,
		Type:        services.ActivityProductCreated,
		Description: "Listed product " + p.Title,
		ProductID:   p.ID,
	})
	applog.Audit(c, "products.create", map[string]any{"product_id": p.ID, "farmer_id": ident.ID})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Product created successfully", "product": p})
}

func formValue(values map[string][]string, key string) string {
	if v := values[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

// rawNumber normalizes a JSON field that clients send as string or number.
func rawNumber(v any) string {
	switch n := v.(type) {
	case nil:
		return ""
	case string:
		return n
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	default:
		return ""
	}
}
