package services

import (
	"context"
	"errors"
	"log"

	"github.com/shopspring/decimal"

	"go-storefront/models"
	"go-storefront/store"
)

// OrderLine is one cart line submitted to CreateOrder, priced by the caller.
type OrderLine struct {
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// CreateOrderRequest is the privileged create-order contract.
type CreateOrderRequest struct {
	UserID          string                  `json:"userId"`
	Total           decimal.Decimal         `json:"total"`
	ShippingAddress *models.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                  `json:"paymentMethod"`
	CartItems       []OrderLine             `json:"cartItems"`
	// RequestID is an optional client generated idempotency key.
	RequestID string `json:"requestId,omitempty"`
}

// CreateOrderResult is returned on success.
type CreateOrderResult struct {
	Success bool   `json:"success"`
	OrderID string `json:"orderId"`
}

// OrderCreator places an order from a fully priced request.
type OrderCreator interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResult, error)
}

// CheckoutInput is what the signed-in shopper submits at checkout. Prices are
// never taken from the client.
type CheckoutInput struct {
	ShippingAddress models.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                 `json:"paymentMethod"`
	RequestID       string                 `json:"requestId,omitempty"`
}

// Mailer sends the storefront's transactional emails.
type Mailer interface {
	SendVerificationEmail(toEmail, token string) error
	SendOrderConfirmationEmail(toEmail string, order *models.Order) error
	SendContactNotification(msg *models.ContactMessage) error
}

// OrderOptions configures an OrderService.
type OrderOptions struct {
	// Transactional wraps the order header, its items and the idempotency
	// record in one store transaction.
	Transactional bool
	// Creator places orders for Checkout. Nil means the service itself.
	Creator OrderCreator
}

// OrderService handles order placement and order queries.
type OrderService struct {
	store         store.Store
	cart          *CartService
	mailer        Mailer
	transactional bool
	creator       OrderCreator
}

// NewOrderService creates a new OrderService. mailer may be nil.
func NewOrderService(st store.Store, cart *CartService, mailer Mailer, opts OrderOptions) *OrderService {
	s := &OrderService{
		store:         st,
		cart:          cart,
		mailer:        mailer,
		transactional: opts.Transactional,
		creator:       opts.Creator,
	}
	if s.creator == nil {
		s.creator = s
	}
	return s
}

func validateCreateOrder(req CreateOrderRequest) error {
	if req.UserID == "" || req.Total.IsZero() || req.ShippingAddress == nil || req.ShippingAddress.IsZero() ||
		req.PaymentMethod == "" || len(req.CartItems) == 0 {
		return validationError("Missing required fields")
	}
	if req.Total.IsNegative() {
		return validationError("Total must be positive")
	}
	if !models.ValidPaymentMethod(req.PaymentMethod) {
		return validationError("Unsupported payment method")
	}
	for _, line := range req.CartItems {
		if line.ProductID == "" || line.Quantity < 1 || line.Price.IsNegative() {
			return validationError("Invalid cart item")
		}
	}
	return nil
}

// CreateOrder writes the order header, then its items, then clears the
// user's cart. The cart clear is best-effort. Without Transactional a failed
// item insert leaves the header in place; the returned error carries its id.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResult, error) {
	if err := validateCreateOrder(req); err != nil {
		return nil, err
	}

	if req.RequestID != "" {
		prev, err := s.store.GetCheckoutRequest(ctx, req.RequestID)
		switch {
		case err == nil:
			return nil, &Error{Kind: KindDuplicateRequest, Message: "Order already placed for this request", OrderID: prev.OrderID}
		case !errors.Is(err, store.ErrNotFound):
			return nil, internal("failed to check request id", err)
		}
	}

	order := &models.Order{
		UserID:          req.UserID,
		Status:          models.OrderStatusPending,
		Total:           req.Total,
		ShippingAddress: *req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
	}

	place := func(ctx context.Context) error {
		if err := s.store.InsertOrder(ctx, order); err != nil || order.ID == "" {
			return &Error{Kind: KindOrderInsertFailed, Message: "Failed to create order", Err: err}
		}

		items := make([]models.OrderItem, 0, len(req.CartItems))
		for _, line := range req.CartItems {
			items = append(items, models.OrderItem{
				OrderID:   order.ID,
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				Price:     line.Price,
			})
		}
		if err := s.store.InsertOrderItems(ctx, items); err != nil {
			return &Error{Kind: KindOrderItemsInsertFailed, Message: "Failed to create order items", OrderID: order.ID, Err: err}
		}
		order.Items = items

		if req.RequestID == "" {
			return nil
		}
		err := s.store.SaveCheckoutRequest(ctx, &models.CheckoutRequest{ID: req.RequestID, UserID: req.UserID, OrderID: order.ID})
		if err == nil {
			return nil
		}
		if !s.transactional {
			log.Printf("create order %s: record request id %s: %v", order.ID, req.RequestID, err)
			return nil
		}
		if errors.Is(err, store.ErrDuplicate) {
			// A failed statement aborts a Postgres transaction, so the
			// original order id is looked up once the transaction is over.
			return &Error{Kind: KindDuplicateRequest, Message: "Order already placed for this request"}
		}
		return internal("failed to record request id", err)
	}

	var err error
	if s.transactional {
		err = s.store.WithTransaction(ctx, place)
		var se *Error
		if errors.As(err, &se) {
			switch se.Kind {
			case KindOrderItemsInsertFailed:
				se.OrderID = "" // the header was rolled back with the items
			case KindDuplicateRequest:
				if prev, lookupErr := s.store.GetCheckoutRequest(ctx, req.RequestID); lookupErr == nil {
					se.OrderID = prev.OrderID
				}
			}
		}
	} else {
		err = place(ctx)
	}
	if err != nil {
		log.Printf("create order for %s: %v", req.UserID, err)
		return nil, err
	}

	if err := s.store.ClearCart(ctx, req.UserID); err != nil {
		log.Printf("create order %s: clear cart for %s: %v", order.ID, req.UserID, err)
	}
	s.cart.Invalidate(req.UserID)

	return &CreateOrderResult{Success: true, OrderID: order.ID}, nil
}

// Checkout prices the caller's cart server side and places the order through
// the configured OrderCreator.
func (s *OrderService) Checkout(ctx context.Context, id *Identity, in CheckoutInput) (*CreateOrderResult, error) {
	if id == nil || id.UserID == "" {
		return nil, &Error{Kind: KindAuthenticationRequired, Message: "Please sign in to check out", RedirectURL: "/auth/login?redirect=/checkout"}
	}
	if in.PaymentMethod == "" {
		in.PaymentMethod = models.PaymentMethodPayPal
	}
	if !models.ValidPaymentMethod(in.PaymentMethod) {
		return nil, validationError("Unsupported payment method")
	}
	if in.ShippingAddress.IsZero() {
		return nil, validationError("Shipping address is required")
	}
	if _, err := s.cart.EnsureUser(ctx, id); err != nil {
		return nil, internal("failed to verify user account", err)
	}

	quote, err := s.cart.Quote(ctx, id.UserID)
	if err != nil {
		return nil, err
	}
	if len(quote.Items) == 0 {
		return nil, validationError("Your cart is empty")
	}

	lines := make([]OrderLine, 0, len(quote.Items))
	for _, item := range quote.Items {
		lines = append(lines, OrderLine{ProductID: item.ProductID, Quantity: item.Quantity, Price: item.Product.Price})
	}
	address := in.ShippingAddress
	res, err := s.creator.CreateOrder(ctx, CreateOrderRequest{
		UserID:          id.UserID,
		Total:           quote.Total,
		ShippingAddress: &address,
		PaymentMethod:   in.PaymentMethod,
		CartItems:       lines,
		RequestID:       in.RequestID,
	})
	if err != nil {
		return nil, err
	}
	// A remote creator cleared the cart on its side.
	s.cart.Invalidate(id.UserID)

	s.sendConfirmation(ctx, id.Email, res.OrderID)
	return res, nil
}

func (s *OrderService) sendConfirmation(ctx context.Context, email, orderID string) {
	if s.mailer == nil || email == "" {
		return
	}
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		log.Printf("order confirmation %s: %v", orderID, err)
		return
	}
	if err := s.mailer.SendOrderConfirmationEmail(email, order); err != nil {
		log.Printf("order confirmation %s: %v", orderID, err)
	}
}

// ListOrders returns the user's orders, newest first.
func (s *OrderService) ListOrders(ctx context.Context, userID string) ([]models.Order, error) {
	orders, err := s.store.ListOrders(ctx, store.OrderFilter{UserID: userID})
	if err != nil {
		return nil, internal("failed to load orders", err)
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

// ListAllOrders returns every order, newest first.
func (s *OrderService) ListAllOrders(ctx context.Context) ([]models.Order, error) {
	return s.ListOrders(ctx, "")
}

// GetOrder returns an order with its items. Orders of other users are
// reported as missing unless the caller is an admin.
func (s *OrderService) GetOrder(ctx context.Context, id *Identity, orderID string) (*models.Order, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFound("Order not found")
		}
		return nil, internal("failed to load order", err)
	}
	if !id.CanActFor(order.UserID) {
		return nil, notFound("Order not found")
	}

	items, err := s.store.ListOrderItems(ctx, order.ID)
	if err != nil {
		return nil, internal("failed to load order items", err)
	}
	for i := range items {
		if product, err := s.store.GetProduct(ctx, items[i].ProductID); err == nil {
			items[i].Product = product
		}
	}
	if items == nil {
		items = []models.OrderItem{}
	}
	order.Items = items
	return order, nil
}

// UpdateStatus sets an order's status.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID, status string) error {
	if !models.ValidOrderStatus(status) {
		return validationError("Invalid order status")
	}
	if err := s.store.UpdateOrderStatus(ctx, orderID, status); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return notFound("Order not found")
		}
		return internal("failed to update order status", err)
	}
	return nil
}
