package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-storefront/models"
	"go-storefront/store"
)

func TestListUsersFilters(t *testing.T) {
	st := store.NewMemory()
	svc := NewAdminService(st)
	ctx := context.Background()
	require.NoError(t, st.CreateUser(ctx, &models.User{Email: "ada@example.com", FirstName: "Ada", Role: models.RoleCustomer}))
	require.NoError(t, st.CreateUser(ctx, &models.User{Email: "root@example.com", Role: models.RoleAdmin}))
	require.NoError(t, st.CreateUser(ctx, &models.User{Email: "grace@example.com", FirstName: "Grace", LastName: "Hopper", Role: models.RoleCustomer}))

	all, err := svc.ListUsers(ctx, "all", "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	admins, err := svc.ListUsers(ctx, models.RoleAdmin, "")
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, "root@example.com", admins[0].Email)

	found, err := svc.ListUsers(ctx, "", "hopper")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "grace@example.com", found[0].Email)

	_, err = svc.ListUsers(ctx, "superuser", "")
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestAddUserAndSetRole(t *testing.T) {
	svc := NewAdminService(store.NewMemory())
	ctx := context.Background()

	user, err := svc.AddUser(ctx, "staff@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, models.RoleCustomer, user.Role)

	_, err = svc.AddUser(ctx, "staff@example.com", models.RoleAdmin)
	assert.Equal(t, KindValidation, KindOf(err))
	_, err = svc.AddUser(ctx, "not-an-email", "")
	assert.Equal(t, KindValidation, KindOf(err))

	promoted, err := svc.SetRole(ctx, user.ID, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, promoted.Role)

	_, err = svc.SetRole(ctx, "missing", models.RoleAdmin)
	assert.Equal(t, KindNotFound, KindOf(err))
	_, err = svc.SetRole(ctx, user.ID, "owner")
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestDashboard(t *testing.T) {
	st := store.NewMemory()
	svc := NewAdminService(st)
	now := time.Date(2024, 3, 15, 18, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, st.CreateUser(ctx, &models.User{Email: "a@example.com", Role: models.RoleCustomer}))
	require.NoError(t, st.CreateUser(ctx, &models.User{Email: "b@example.com", Role: models.RoleAdmin}))

	orders := []struct {
		total string
		at    time.Time
	}{
		{"10", now.Add(-time.Hour)},
		{"20", now.AddDate(0, 0, -1)},
		{"30", now.AddDate(0, 0, -1).Add(time.Hour)},
		{"40", now.AddDate(0, 0, -45)},
	}
	for _, o := range orders {
		require.NoError(t, st.InsertOrder(ctx, &models.Order{
			UserID:    "u1",
			Status:    models.OrderStatusPending,
			Total:     decimal.RequireFromString(o.total),
			CreatedAt: o.at,
		}))
	}

	d, err := svc.Dashboard(ctx)
	require.NoError(t, err)

	assert.Equal(t, "100", d.TotalSales.String())
	assert.Equal(t, 4, d.TotalOrders)
	assert.Equal(t, 1, d.TotalCustomers)
	assert.Equal(t, "25", d.AverageOrderValue.String())
	assert.Len(t, d.RecentOrders, 4)

	require.Len(t, d.SalesByDay, 30)
	last := d.SalesByDay[29]
	assert.Equal(t, "2024-03-15", last.Date)
	assert.Equal(t, "10", last.Sales.String())
	assert.Equal(t, "2024-03-14", d.SalesByDay[28].Date)
	assert.Equal(t, "50", d.SalesByDay[28].Sales.String())
	assert.Equal(t, "2024-02-15", d.SalesByDay[0].Date)
}

func TestDashboardEmpty(t *testing.T) {
	d, err := NewAdminService(store.NewMemory()).Dashboard(context.Background())
	require.NoError(t, err)
	assert.True(t, d.TotalSales.IsZero())
	assert.True(t, d.AverageOrderValue.IsZero())
	assert.Empty(t, d.RecentOrders)
	assert.Len(t, d.SalesByDay, 30)
}
