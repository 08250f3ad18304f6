package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"go-storefront/models"
	"go-storefront/store"
)

const (
	recentOrderCount = 5
	salesWindowDays  = 30
)

// DailySales is the order total for one UTC day.
type DailySales struct {
	Date  string          `json:"date"`
	Sales decimal.Decimal `json:"sales"`
}

// Dashboard summarises the store for the back office.
type Dashboard struct {
	TotalSales        decimal.Decimal `json:"totalSales"`
	TotalOrders       int             `json:"totalOrders"`
	TotalCustomers    int             `json:"totalCustomers"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
	RecentOrders      []models.Order  `json:"recentOrders"`
	SalesByDay        []DailySales    `json:"salesByDay"`
}

// AdminService handles user roles and the dashboard.
type AdminService struct {
	store store.Store
	now   func() time.Time
}

// NewAdminService creates a new AdminService
func NewAdminService(st store.Store) *AdminService {
	return &AdminService{store: st, now: time.Now}
}

// ListUsers returns users newest first, optionally narrowed to role and to a
// case-insensitive search over email and name.
func (s *AdminService) ListUsers(ctx context.Context, role, query string) ([]models.User, error) {
	if role != "" && role != "all" && !models.ValidRole(role) {
		return nil, validationError("Invalid role")
	}
	if role == "all" {
		role = ""
	}
	users, err := s.store.ListUsers(ctx, role)
	if err != nil {
		return nil, internal("failed to load users", err)
	}
	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]models.User, 0, len(users))
	for _, u := range users {
		if query != "" &&
			!strings.Contains(strings.ToLower(u.Email), query) &&
			!strings.Contains(strings.ToLower(u.FullName()), query) {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

// AddUser creates a user row with a role and no password. The person signs
// in through the normal flow later.
func (s *AdminService) AddUser(ctx context.Context, email, role string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, validationError("A valid email is required")
	}
	if role == "" {
		role = models.RoleCustomer
	}
	if !models.ValidRole(role) {
		return nil, validationError("Invalid role")
	}
	user := &models.User{Email: email, Role: role}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, validationError("User already exists")
		}
		return nil, internal("failed to create user", err)
	}
	return user, nil
}

// SetRole changes a user's role.
func (s *AdminService) SetRole(ctx context.Context, userID, role string) (*models.User, error) {
	if !models.ValidRole(role) {
		return nil, validationError("Invalid role")
	}
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFound("User not found")
		}
		return nil, internal("failed to load user", err)
	}
	user.Role = role
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, internal("failed to update user", err)
	}
	return user, nil
}

// Dashboard computes the back office summary from orders and users.
func (s *AdminService) Dashboard(ctx context.Context) (*Dashboard, error) {
	orders, err := s.store.ListOrders(ctx, store.OrderFilter{})
	if err != nil {
		return nil, internal("failed to load orders", err)
	}
	customers, err := s.store.ListUsers(ctx, models.RoleCustomer)
	if err != nil {
		return nil, internal("failed to load users", err)
	}

	d := &Dashboard{
		TotalSales:        decimal.Zero,
		TotalOrders:       len(orders),
		TotalCustomers:    len(customers),
		AverageOrderValue: decimal.Zero,
		RecentOrders:      []models.Order{},
	}

	today := s.now().UTC().Truncate(24 * time.Hour)
	start := today.AddDate(0, 0, -(salesWindowDays - 1))
	byDay := make(map[string]decimal.Decimal, salesWindowDays)
	for _, o := range orders {
		d.TotalSales = d.TotalSales.Add(o.Total)
		if created := o.CreatedAt.UTC(); !created.Before(start) {
			day := created.Format(time.DateOnly)
			byDay[day] = byDay[day].Add(o.Total)
		}
	}
	if len(orders) > 0 {
		d.AverageOrderValue = d.TotalSales.Div(decimal.NewFromInt(int64(len(orders)))).Round(2)
	}

	// ListOrders is newest first.
	n := recentOrderCount
	if len(orders) < n {
		n = len(orders)
	}
	d.RecentOrders = append(d.RecentOrders, orders[:n]...)

	d.SalesByDay = make([]DailySales, 0, salesWindowDays)
	for i := 0; i < salesWindowDays; i++ {
		day := start.AddDate(0, 0, i).Format(time.DateOnly)
		d.SalesByDay = append(d.SalesByDay, DailySales{Date: day, Sales: byDay[day]})
	}
	return d, nil
}
