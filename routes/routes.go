// routes/routes.go
package routes

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"go-storefront/app"
	"go-storefront/controllers"
	"go-storefront/middleware"
)

// Controllers bundles every handler group the router serves
type Controllers struct {
	User     *controllers.UserController
	Product  *controllers.ProductController
	Cart     *controllers.CartController
	Order    *controllers.OrderController
	Wishlist *controllers.WishlistController
	Featured *controllers.FeaturedController
	Content  *controllers.ContentController
	Admin    *controllers.AdminController
	Upload   *controllers.UploadController
}

// NewControllers builds every handler group over the app's services
func NewControllers(a *app.App, metrics *middleware.Metrics) Controllers {
	return Controllers{
		User:     controllers.NewUserController(a.Accounts),
		Product:  controllers.NewProductController(a.Catalog),
		Cart:     controllers.NewCartController(a.Cart),
		Order:    controllers.NewOrderController(a.Orders),
		Wishlist: controllers.NewWishlistController(a.Wishlist),
		Featured: controllers.NewFeaturedController(a.Featured),
		Content:  controllers.NewContentController(a.Content),
		Admin:    controllers.NewAdminController(a.Admin, metrics),
		Upload:   controllers.NewUploadController(a.Uploads),
	}
}

// RegisterRoutes sets up all the routes for the application
func RegisterRoutes(router *mux.Router, auth *middleware.Auth, c Controllers) {
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}).Methods("GET")

	// Public routes
	router.HandleFunc("/register", c.User.Register).Methods("POST")
	router.HandleFunc("/login", c.User.Login).Methods("POST")
	router.HandleFunc("/verify", c.User.VerifyEmail).Methods("GET")

	router.HandleFunc("/products", c.Product.GetProducts).Methods("GET")
	router.HandleFunc("/products/{id}", c.Product.GetProductByID).Methods("GET")
	router.HandleFunc("/categories", c.Product.GetCategories).Methods("GET")
	router.HandleFunc("/featured", c.Featured.GetFeatured).Methods("GET")

	router.HandleFunc("/about-us", c.Content.GetAboutUs).Methods("GET")
	router.HandleFunc("/contact-us", c.Content.GetContactUs).Methods("GET")
	router.HandleFunc("/contact-messages", c.Content.SubmitMessage).Methods("POST")

	// Privileged create-order contract, shared with the serverless function
	api := router.PathPrefix("/api").Subrouter()
	api.Use(auth.Privileged)
	api.HandleFunc("/create-order", c.Order.CreateOrder).Methods("POST")

	// Admin routes
	admin := router.PathPrefix("/admin").Subrouter()
	admin.Use(auth.Required)
	admin.Use(auth.Admin)
	admin.HandleFunc("/products", c.Product.CreateProduct).Methods("POST")
	admin.HandleFunc("/products/{id}", c.Product.UpdateProduct).Methods("PUT")
	admin.HandleFunc("/products/{id}", c.Product.DeleteProduct).Methods("DELETE")
	admin.HandleFunc("/products/{id}/images", c.Product.UpdateProductImages).Methods("PUT")
	admin.HandleFunc("/products/{id}/images", c.Product.DeleteProductImage).Methods("DELETE")
	admin.HandleFunc("/categories", c.Product.CreateCategory).Methods("POST")

	admin.HandleFunc("/orders", c.Order.GetAllOrders).Methods("GET")
	admin.HandleFunc("/orders/{id}/status", c.Order.UpdateOrderStatus).Methods("PUT")

	admin.HandleFunc("/featured", c.Featured.AddFeatured).Methods("POST")
	admin.HandleFunc("/featured/reindex", c.Featured.ReindexFeatured).Methods("POST")
	admin.HandleFunc("/featured/{id}", c.Featured.RemoveFeatured).Methods("DELETE")
	admin.HandleFunc("/featured/{id}/move", c.Featured.MoveFeatured).Methods("POST")

	admin.HandleFunc("/about-us", c.Content.SaveAboutUs).Methods("PUT")
	admin.HandleFunc("/contact-us", c.Content.SaveContactUs).Methods("PUT")
	admin.HandleFunc("/contact-messages", c.Content.GetMessages).Methods("GET")
	admin.HandleFunc("/contact-messages/{id}/status", c.Content.UpdateMessageStatus).Methods("PUT")

	admin.HandleFunc("/users", c.Admin.GetUsers).Methods("GET")
	admin.HandleFunc("/users", c.Admin.AddUser).Methods("POST")
	admin.HandleFunc("/users/{id}/role", c.Admin.UpdateUserRole).Methods("PUT")
	admin.HandleFunc("/dashboard", c.Admin.GetDashboard).Methods("GET")
	admin.HandleFunc("/metrics", c.Admin.GetMetrics).Methods("GET")

	admin.HandleFunc("/uploads", c.Upload.Upload).Methods("POST")
	admin.HandleFunc("/uploads", c.Upload.List).Methods("GET")
	admin.HandleFunc("/uploads", c.Upload.Delete).Methods("DELETE")

	// Session optional: anonymous shoppers get a login hint or a zero count
	optional := router.NewRoute().Subrouter()
	optional.Use(auth.Optional)
	optional.HandleFunc("/cart", c.Cart.AddToCart).Methods("POST")
	optional.HandleFunc("/cart/count", c.Cart.GetCartCount).Methods("GET")

	// Protected routes
	protected := router.NewRoute().Subrouter()
	protected.Use(auth.Required)
	protected.HandleFunc("/profile", c.User.GetProfile).Methods("GET")
	protected.HandleFunc("/profile", c.User.UpdateProfile).Methods("PUT")
	protected.HandleFunc("/profile/image", c.User.UploadProfileImage).Methods("POST")

	protected.HandleFunc("/cart", c.Cart.GetCart).Methods("GET")
	protected.HandleFunc("/cart/quote", c.Cart.GetQuote).Methods("GET")
	protected.HandleFunc("/cart/{id}", c.Cart.UpdateCartItem).Methods("PUT")
	protected.HandleFunc("/cart/{id}", c.Cart.RemoveFromCart).Methods("DELETE")

	protected.HandleFunc("/checkout", c.Order.Checkout).Methods("POST")
	protected.HandleFunc("/orders", c.Order.GetOrders).Methods("GET")
	protected.HandleFunc("/orders/{id}", c.Order.GetOrder).Methods("GET")

	protected.HandleFunc("/wishlist", c.Wishlist.GetWishlist).Methods("GET")
	protected.HandleFunc("/wishlist", c.Wishlist.AddToWishlist).Methods("POST")
	protected.HandleFunc("/wishlist/{id}", c.Wishlist.RemoveFromWishlist).Methods("DELETE")
	protected.HandleFunc("/wishlist/{id}/move-to-cart", c.Wishlist.MoveToCart).Methods("POST")
}
