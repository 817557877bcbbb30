package services

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"agrimarket/internal/auth"
	"agrimarket/internal/blob"
	"agrimarket/internal/domain"
	"agrimarket/internal/repos"
	"agrimarket/internal/validate"
)

const (
	MaxImagesPerProduct = 6
	MaxImageSize        = 5 << 20 // 5 MiB per file
)

var (
	ErrForbidden  = errors.New("forbidden")
	ErrValidation = errors.New("validation failed")
	ErrUpload     = errors.New("image upload failed")
)

// CatalogService is the role-scoped query gateway over products: it decides
// whose rows a caller may see and how much of each row comes back.
type CatalogService struct {
	Products *repos.ProductRepo
	Blobs    blob.Store
}

func NewCatalogService(products *repos.ProductRepo, blobs blob.Store) *CatalogService {
	return &CatalogService{Products: products, Blobs: blobs}
}

// ListProducts resolves the minimal role-correct listing. Farmer scope
// requires a farmer identity and returns the caller's own products in every
// status, enriched with recent orders; market scope (identity optional)
// returns available products only, with no order history.
func (s *CatalogService) ListProducts(ident *auth.Identity, scope, category, minPriceRaw, maxPriceRaw string) ([]repos.ProductView, error) {
	f := repos.Filters{Category: strings.TrimSpace(category)}
	if v, ok := validate.PriceFilter(minPriceRaw); ok {
		f.MinPrice = &v
	}
	if v, ok := validate.PriceFilter(maxPriceRaw); ok {
		f.MaxPrice = &v
	}

	if scope == "farmer" {
		if ident == nil || !ident.Is(domain.RoleFarmer) {
			return nil, ErrForbidden
		}
		return s.Products.ListByFarmer(ident.ID, f)
	}
	return s.Products.ListMarket(f)
}

// GetProduct returns the public detail view: full farmer contact plus the
// 10 most recent orders. A failing order-enrichment query degrades to an
// empty order list instead of failing the lookup — the only place in the
// API with partial-failure tolerance.
func (s *CatalogService) GetProduct(id string) (*repos.ProductView, error) {
	p, err := s.Products.GetDetail(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repos.ErrNotFound
		}
		return nil, err
	}
	orders, err := s.Products.RecentOrders(id, 10)
	if err != nil {
		log.Printf("catalog: order enrichment for %s failed: %v", id, err)
		orders = []repos.OrderPeek{}
	}
	p.Orders = orders
	return p, nil
}

// NewProduct carries raw creation input. Numeric fields stay strings until
// validation because clients send them as either strings or numbers.
type NewProduct struct {
	Title           string
	Description     string
	Category        string
	Unit            string
	PriceRaw        string
	QuantityRaw     string
	MinimumOrderRaw string
}

type ImageUpload struct {
	Filename string
	Data     []byte
}

// CreateProduct validates input, uploads binary images (all-or-nothing),
// and inserts the product row with its image rows in one transaction.
// Pre-hosted imageURLs bypass the blob store. If the insert fails after
// uploads succeeded, the uploaded blobs are deleted again so no orphans
// are left behind.
func (s *CatalogService) CreateProduct(farmerID string, in NewProduct, uploads []ImageUpload, imageURLs []string) (*repos.ProductView, error) {
	p, err := s.validateNew(farmerID, in)
	if err != nil {
		return nil, err
	}

	// All constraint checks happen before the first upload.
	if len(uploads) > MaxImagesPerProduct {
		return nil, fmt.Errorf("%w: at most %d images per product", ErrValidation, MaxImagesPerProduct)
	}
	for _, u := range uploads {
		if len(u.Data) > MaxImageSize {
			return nil, fmt.Errorf("%w: each image must be 5 MiB or smaller", ErrValidation)
		}
	}

	urls := make([]string, 0, len(uploads)+len(imageURLs))
	keys := make([]string, 0, len(uploads))
	for _, u := range uploads {
		key := farmerID + "/" + uuid.NewString() + "." + validate.ImageExt(u.Filename)
		url, err := s.Blobs.Put(key, u.Data)
		if err != nil {
			s.removeBlobs(keys)
			return nil, fmt.Errorf("%w: %v", ErrUpload, err)
		}
		keys = append(keys, key)
		urls = append(urls, url)
	}
	for _, url := range imageURLs {
		if u := strings.TrimSpace(url); u != "" {
			urls = append(urls, u)
		}
	}

	imageIDs := make([]string, len(urls))
	for i := range urls {
		imageIDs[i] = uuid.NewString()
	}
	if err := s.Products.Create(*p, imageIDs, urls); err != nil {
		// compensate: the row never landed, so the blobs must go too
		s.removeBlobs(keys)
		return nil, err
	}
	return s.Products.GetDetail(p.ID)
}

func (s *CatalogService) validateNew(farmerID string, in NewProduct) (*domain.Product, error) {
	title := strings.TrimSpace(in.Title)
	category := strings.TrimSpace(in.Category)
	unit := strings.TrimSpace(in.Unit)
	if title == "" || category == "" || unit == "" ||
		strings.TrimSpace(in.PriceRaw) == "" || strings.TrimSpace(in.QuantityRaw) == "" {
		return nil, fmt.Errorf("%w: missing required fields", ErrValidation)
	}
	price, ok := validate.PositiveNumber(in.PriceRaw)
	if !ok {
		return nil, fmt.Errorf("%w: price must be a positive number", ErrValidation)
	}
	quantity, ok := validate.PositiveNumber(in.QuantityRaw)
	if !ok {
		return nil, fmt.Errorf("%w: quantity must be a positive number", ErrValidation)
	}
	var minOrder *float64
	if strings.TrimSpace(in.MinimumOrderRaw) != "" {
		v, ok := validate.NonNegativeNumber(in.MinimumOrderRaw)
		if !ok {
			return nil, fmt.Errorf("%w: minimum order must be zero or more", ErrValidation)
		}
		minOrder = &v
	}
	var desc *string
	if d := strings.TrimSpace(in.Description); d != "" {
		desc = &d
	}
	return &domain.Product{
		ID:           uuid.NewString(),
		FarmerID:     farmerID,
		Title:        title,
		Description:  desc,
		Category:     category,
		Price:        price,
		Quantity:     quantity,
		Unit:         unit,
		MinimumOrder: minOrder,
		Status:       domain.ProductAvailable,
	}, nil
}

func (s *CatalogService) removeBlobs(keys []string) {
	for _, k := range keys {
		if err := s.Blobs.Remove(k); err != nil {
			log.Printf("catalog: orphan blob cleanup failed for %s: %v", k, err)
		}
	}
}
