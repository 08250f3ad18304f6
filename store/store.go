// Package store holds the persistence backends for the storefront: MongoDB,
// PostgreSQL and an in-memory store used by tests and local runs.
package store

import (
	"context"
	"errors"
	"fmt"

	"go-storefront/models"
)

var (
	// ErrNotFound is returned when a row does not exist
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when a unique key is already taken
	ErrDuplicate = errors.New("duplicate key")
)

// OrderFilter narrows an order listing. Zero Limit means no limit.
type OrderFilter struct {
	UserID string
	Limit  int
}

// Store is every table the storefront reads and writes.
type Store interface {
	// WithTransaction runs fn so that all writes made through the ctx it is
	// given commit or roll back together. Backends without transaction
	// support run fn directly.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	Close(ctx context.Context) error

	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByVerificationToken(ctx context.Context, token string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user *models.User) error
	ListUsers(ctx context.Context, role string) ([]models.User, error)

	GetProduct(ctx context.Context, id string) (*models.Product, error)
	ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) error
	UpdateProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, id string) error
	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, category *models.Category) error

	// IncrementCartItem adds quantity to the (user, product) line, creating
	// it when absent, as a single atomic write.
	IncrementCartItem(ctx context.Context, userID, productID string, quantity int) (*models.CartItem, error)
	SetCartItemQuantity(ctx context.Context, userID, itemID string, quantity int) error
	DeleteCartItem(ctx context.Context, userID, itemID string) error
	ListCartItems(ctx context.Context, userID string) ([]models.CartItem, error)
	CountCartItems(ctx context.Context, userID string) (int64, error)
	ClearCart(ctx context.Context, userID string) error

	InsertOrder(ctx context.Context, order *models.Order) error
	InsertOrderItems(ctx context.Context, items []models.OrderItem) error
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	ListOrderItems(ctx context.Context, orderID string) ([]models.OrderItem, error)
	ListOrders(ctx context.Context, filter OrderFilter) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, id, status string) error
	GetCheckoutRequest(ctx context.Context, id string) (*models.CheckoutRequest, error)
	SaveCheckoutRequest(ctx context.Context, req *models.CheckoutRequest) error

	ListWishlistItems(ctx context.Context, userID string) ([]models.WishlistItem, error)
	GetWishlistItem(ctx context.Context, userID, itemID string) (*models.WishlistItem, error)
	AddWishlistItem(ctx context.Context, item *models.WishlistItem) error
	DeleteWishlistItem(ctx context.Context, userID, itemID string) error

	// ListFeatured returns featured rows ordered by position.
	ListFeatured(ctx context.Context) ([]models.FeaturedProduct, error)
	AddFeatured(ctx context.Context, item *models.FeaturedProduct) error
	DeleteFeatured(ctx context.Context, id string) error
	SetFeaturedPosition(ctx context.Context, id string, position int) error

	GetAboutUs(ctx context.Context) (*models.AboutUs, error)
	SaveAboutUs(ctx context.Context, about *models.AboutUs) error
	GetContactUs(ctx context.Context) (*models.ContactUs, error)
	SaveContactUs(ctx context.Context, contact *models.ContactUs) error
	InsertContactMessage(ctx context.Context, msg *models.ContactMessage) error
	ListContactMessages(ctx context.Context) ([]models.ContactMessage, error)
	UpdateContactMessageStatus(ctx context.Context, id, status string) error
}

// Options configures Open.
type Options struct {
	Driver       string // "mongo", "postgres" or "memory"
	URI          string
	Database     string
	Transactions bool
}

// Open connects the backend named by opts.Driver.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case "mongo", "":
		return NewMongo(ctx, opts.URI, opts.Database, opts.Transactions)
	case "postgres":
		return NewPostgres(ctx, opts.URI)
	case "memory":
		return NewMemory(), nil
	}
	return nil, fmt.Errorf("store: unknown driver %q", opts.Driver)
}
