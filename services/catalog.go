package services

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"

	"go-storefront/models"
	"go-storefront/store"
	"go-storefront/utils"
)

// BlobStore keeps uploaded files and serves them by public URL.
type BlobStore interface {
	Upload(ctx context.Context, folder, filename string, body io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, url string) error
	List(ctx context.Context, prefix string) ([]utils.BlobObject, error)
}

// CatalogService handles products, categories and product images.
type CatalogService struct {
	store store.Store
	blobs BlobStore
}

// NewCatalogService creates a new CatalogService. blobs may be nil, in which
// case image files are never deleted.
func NewCatalogService(st store.Store, blobs BlobStore) *CatalogService {
	return &CatalogService{store: st, blobs: blobs}
}

// ListProducts returns the products matching filter.
func (s *CatalogService) ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	products, err := s.store.ListProducts(ctx, filter)
	if err != nil {
		return nil, internal("failed to load products", err)
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}

// GetProduct returns one product.
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.store.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFound("Product not found")
		}
		return nil, internal("failed to load product", err)
	}
	return product, nil
}

func validateProduct(p *models.Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return validationError("Product name is required")
	}
	if p.Price.IsNegative() {
		return validationError("Price must not be negative")
	}
	if p.StockQuantity < 0 {
		return validationError("Stock quantity must not be negative")
	}
	if p.Rating < 0 || p.Rating > 5 {
		return validationError("Rating must be between 0 and 5")
	}
	return nil
}

// CreateProduct adds a product to the catalog.
func (s *CatalogService) CreateProduct(ctx context.Context, p *models.Product) error {
	if err := validateProduct(p); err != nil {
		return err
	}
	p.ID = ""
	if p.AdditionalImages == nil {
		p.AdditionalImages = []string{}
	}
	if err := s.store.CreateProduct(ctx, p); err != nil {
		return internal("failed to create product", err)
	}
	return nil
}

// UpdateProduct replaces a product's fields.
func (s *CatalogService) UpdateProduct(ctx context.Context, p *models.Product) error {
	if err := validateProduct(p); err != nil {
		return err
	}
	if err := s.store.UpdateProduct(ctx, p); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return notFound("Product not found")
		}
		return internal("failed to update product", err)
	}
	return nil
}

// DeleteProduct removes a product.
func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.store.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return notFound("Product not found")
		}
		return internal("failed to delete product", err)
	}
	return nil
}

// ListCategories returns every category by name.
func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, internal("failed to load categories", err)
	}
	if categories == nil {
		categories = []models.Category{}
	}
	return categories, nil
}

// CreateCategory adds a category. Names are unique.
func (s *CatalogService) CreateCategory(ctx context.Context, c *models.Category) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return validationError("Category name is required")
	}
	c.ID = ""
	if err := s.store.CreateCategory(ctx, c); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return validationError("Category already exists")
		}
		return internal("failed to create category", err)
	}
	return nil
}

// UpdateImages makes urls[0] the primary image and the rest the additional
// images, in order.
func (s *CatalogService) UpdateImages(ctx context.Context, id *Identity, productID string, urls []string) (*models.Product, error) {
	if !id.IsAdmin() {
		return nil, forbidden("Only admins can update product images")
	}
	product, err := s.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	product.ImageURL = ""
	product.AdditionalImages = []string{}
	if len(urls) > 0 {
		product.ImageURL = urls[0]
		product.AdditionalImages = append(product.AdditionalImages, urls[1:]...)
	}
	if err := s.store.UpdateProduct(ctx, product); err != nil {
		return nil, internal("failed to update product images", err)
	}
	return product, nil
}

// DeleteImage removes url from the product. Deleting the primary image
// promotes the first additional image. The file itself is deleted afterwards.
func (s *CatalogService) DeleteImage(ctx context.Context, id *Identity, productID, url string) (*models.Product, error) {
	if !id.IsAdmin() {
		return nil, forbidden("Only admins can delete product images")
	}
	product, err := s.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	remaining := make([]string, 0, len(product.AdditionalImages))
	found := false
	for _, u := range product.AdditionalImages {
		if u == url {
			found = true
			continue
		}
		remaining = append(remaining, u)
	}
	if product.ImageURL == url {
		found = true
		product.ImageURL = ""
		if len(remaining) > 0 {
			product.ImageURL, remaining = remaining[0], remaining[1:]
		}
	}
	if !found {
		return nil, notFound("Image not found on product")
	}
	product.AdditionalImages = remaining

	if err := s.store.UpdateProduct(ctx, product); err != nil {
		return nil, internal("failed to update product images", err)
	}
	if s.blobs != nil {
		if err := s.blobs.Delete(ctx, url); err != nil {
			log.Printf("delete image %s: %v", url, err)
		}
	}
	return product, nil
}
