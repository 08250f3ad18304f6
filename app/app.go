// Package app wires the store, mailer, blob store and services from a
// config.Config. The HTTP server and the create-order function share it.
package app

import (
	"context"
	"fmt"
	"log"

	"go-storefront/config"
	"go-storefront/middleware"
	"go-storefront/services"
	"go-storefront/store"
	"go-storefront/utils"
)

// App holds everything built from a configuration.
type App struct {
	Config *config.Config
	Store  store.Store
	Tokens *utils.TokenIssuer
	Auth   *middleware.Auth
	Mailer *utils.EmailService

	Cart     *services.CartService
	Orders   *services.OrderService
	Catalog  *services.CatalogService
	Featured *services.FeaturedService
	Wishlist *services.WishlistService
	Content  *services.ContentService
	Admin    *services.AdminService
	Uploads  *services.UploadService
	Accounts *services.AccountService
}

// Options tweaks New for callers that should never forward orders.
type Options struct {
	// LocalOrders ignores CreateOrderFunctionURL and places orders in process.
	LocalOrders bool
}

// New connects the store and builds the services.
func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	st, err := store.Open(ctx, store.Options{
		Driver:       cfg.Database.Driver,
		URI:          cfg.StoreURI(),
		Database:     cfg.Database.Name,
		Transactions: cfg.Database.Transactions,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Database.Driver, err)
	}

	var blobs services.BlobStore
	if cfg.Storage.Bucket != "" {
		bs, err := utils.NewBlobStore(ctx, utils.BlobConfig{
			Bucket:          cfg.Storage.Bucket,
			Region:          cfg.Storage.Region,
			Endpoint:        cfg.Storage.Endpoint,
			PublicBaseURL:   cfg.Storage.PublicBaseURL,
			AccessKeyID:     cfg.Storage.AccessKeyID,
			SecretAccessKey: cfg.Storage.SecretAccessKey,
		})
		if err != nil {
			st.Close(ctx)
			return nil, err
		}
		blobs = bs
	} else {
		log.Println("No storage bucket configured. Uploads are disabled.")
	}

	return Build(cfg, st, blobs, opts), nil
}

// Build wires the services over an already open store. blobs may be nil.
func Build(cfg *config.Config, st store.Store, blobs services.BlobStore, opts Options) *App {
	a := &App{Config: cfg, Store: st}
	a.Tokens = utils.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	a.Auth = middleware.NewAuth(a.Tokens, cfg.Auth.ServiceRoleKey)
	a.Mailer = utils.NewEmailService(utils.EmailConfig{
		Provider:      cfg.Email.Provider,
		PostmarkToken: cfg.Email.PostmarkToken,
		SendGridKey:   cfg.Email.SendGridKey,
		Sender:        cfg.Email.Sender,
		Mailbox:       cfg.Email.Mailbox,
		BaseURL:       cfg.Server.BaseURL,
	})

	orderOpts := services.OrderOptions{Transactional: cfg.Database.Transactions}
	if url := cfg.Checkout.CreateOrderFunctionURL; url != "" && !opts.LocalOrders {
		orderOpts.Creator = services.NewRemoteOrderCreator(url, cfg.Auth.ServiceRoleKey)
	}

	a.Cart = services.NewCartService(st, services.Pricing{TaxRate: cfg.Checkout.TaxRate, Shipping: cfg.Checkout.Shipping})
	a.Orders = services.NewOrderService(st, a.Cart, a.Mailer, orderOpts)
	a.Catalog = services.NewCatalogService(st, blobs)
	a.Featured = services.NewFeaturedService(st)
	a.Wishlist = services.NewWishlistService(st, a.Cart)
	a.Content = services.NewContentService(st, a.Mailer)
	a.Admin = services.NewAdminService(st)
	a.Uploads = services.NewUploadService(blobs)
	a.Accounts = services.NewAccountService(st, a.Tokens, a.Mailer, a.Uploads)
	return a
}

// Close releases the store connection.
func (a *App) Close(ctx context.Context) error {
	return a.Store.Close(ctx)
}
