package services

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"go-storefront/models"
	"go-storefront/store"
)

type fakeMailer struct {
	mu           sync.Mutex
	verification []string
	confirmed    []string
	contact      []string
}

func (m *fakeMailer) SendVerificationEmail(toEmail, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verification = append(m.verification, toEmail)
	return nil
}

func (m *fakeMailer) SendOrderConfirmationEmail(toEmail string, order *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.confirmed = append(m.confirmed, order.ID)
	return nil
}

func (m *fakeMailer) SendContactNotification(msg *models.ContactMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contact = append(m.contact, msg.ID)
	return nil
}

func customer(id string) *Identity {
	return &Identity{UserID: id, Email: id + "@example.com", Role: models.RoleCustomer}
}

func admin() *Identity {
	return &Identity{UserID: "admin-1", Email: "admin@example.com", Role: models.RoleAdmin}
}

func seedProduct(t *testing.T, st store.Store, name, price string) *models.Product {
	t.Helper()
	p := &models.Product{Name: name, Price: decimal.RequireFromString(price), StockQuantity: 10}
	require.NoError(t, st.CreateProduct(context.Background(), p))
	return p
}

func shippingAddress() *models.ShippingAddress {
	return &models.ShippingAddress{
		Name:       "Ada Lovelace",
		Address:    "12 Analytical Way",
		City:       "London",
		PostalCode: "N1 9GU",
		Country:    "UK",
	}
}
