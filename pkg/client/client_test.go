package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axxaxinx/user-management-final-123/internal/app/routes"
	"github.com/axxaxinx/user-management-final-123/internal/domain/models"
	"github.com/axxaxinx/user-management-final-123/internal/domain/services"
	"github.com/axxaxinx/user-management-final-123/internal/domain/services/container"
	"github.com/axxaxinx/user-management-final-123/internal/infrastructure/config"
	"github.com/axxaxinx/user-management-final-123/internal/infrastructure/database"
	"github.com/axxaxinx/user-management-final-123/internal/test/testdb"
)

func newServer(t *testing.T, jwtTTL time.Duration) (*httptest.Server, *container.ServiceContainer) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testdb.Open(t)
	cfg := &config.Config{
		JWTSecretKey:    "client-secret",
		JWTTTL:          jwtTTL,
		RefreshTokenTTL: time.Hour,
		CacheTTL:        time.Minute,
	}
	sc := container.NewServiceContainer(&database.ConnectionPool{DB: db, Driver: "sqlite"}, cfg, container.Dependencies{})
	srv := httptest.NewServer(routes.SetupRouter(sc))
	t.Cleanup(func() {
		srv.Close()
		sc.Close()
	})

	accounts := sc.GetService("account").(services.InterfaceAccountService)
	_, err := accounts.Create(context.Background(), services.CreateAccountParams{
		FirstName: "Ada", LastName: "Admin", Email: "admin@example.com", Password: "secret123", Role: models.RoleAdmin,
	})
	require.NoError(t, err)
	return srv, sc
}

func TestLoginRefreshLogout(t *testing.T) {
	srv, _ := newServer(t, 15*time.Minute)
	ctx := context.Background()

	c, err := New(srv.URL)
	require.NoError(t, err)
	t.Cleanup(c.Close)

	_, err = c.Login(ctx, "admin@example.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, StatusOf(err))
	assert.Nil(t, c.Session())

	s, err := c.Login(ctx, "admin@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "Admin", s.Role)
	assert.True(t, s.IsVerified)
	assert.NotEmpty(t, s.JWTToken)

	accounts, err := c.Accounts(ctx)
	require.NoError(t, err)
	assert.Len(t, accounts, 1)

	refreshed, err := c.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, s.ID, refreshed.ID)

	name := "Grace"
	updated, err := c.UpdateAccount(ctx, s.ID, AccountUpdate{FirstName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Grace", updated.FirstName)
	assert.Equal(t, "Grace", c.Session().FirstName)

	require.NoError(t, c.Logout(ctx))
	assert.Nil(t, c.Session())

	// the revoked cookie can no longer be exchanged
	_, err = c.Refresh(ctx)
	assert.Equal(t, http.StatusUnauthorized, StatusOf(err))
}

func TestRequestsThroughClient(t *testing.T) {
	srv, sc := newServer(t, 15*time.Minute)
	ctx := context.Background()

	c, err := New(srv.URL)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	s, err := c.Login(ctx, "admin@example.com", "secret123")
	require.NoError(t, err)

	_, err = c.CreateRequest(ctx, RequestInput{Type: models.RequestLeave, Items: []RequestItemInput{{Name: "Annual leave"}}})
	assert.Equal(t, http.StatusBadRequest, StatusOf(err))

	mine, err := c.MyRequests(ctx)
	require.NoError(t, err)
	assert.Empty(t, mine)

	emp := models.Employee{EmployeeCode: "EMP001", Position: "Lead", AccountID: &s.ID, Status: models.EmployeeActive}
	require.NoError(t, sc.GetDB().Create(&emp).Error)

	req, err := c.CreateRequest(ctx, RequestInput{
		Type:  models.RequestEquipment,
		Items: []RequestItemInput{{Name: "Laptop", Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Len(t, req.Items, 1)

	item, err := c.AddRequestItem(ctx, req.ID, RequestItemInput{Name: "Mouse"})
	require.NoError(t, err)
	assert.Equal(t, 1, item.Quantity)

	approved, err := c.SetRequestStatus(ctx, req.ID, models.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, approved.Status)

	history, err := c.RequestWorkflows(ctx, req.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)

	me, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, emp.ID, me.ID)

	require.NoError(t, c.DeleteRequest(ctx, req.ID))
	_, err = c.Request(ctx, req.ID)
	assert.Equal(t, http.StatusNotFound, StatusOf(err))
}

func TestBackgroundRefresh(t *testing.T) {
	srv, _ := newServer(t, 2*time.Second)

	var refreshes atomic.Int32
	c, err := New(srv.URL,
		WithRefreshMargin(1900*time.Millisecond),
		WithRefreshHook(func(s *Session, err error) {
			if err == nil && s != nil {
				refreshes.Add(1)
			}
		}),
	)
	require.NoError(t, err)
	t.Cleanup(c.Close)

	_, err = c.Login(context.Background(), "admin@example.com", "secret123")
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return refreshes.Load() > 0 }, 3*time.Second, 20*time.Millisecond)
	assert.NotNil(t, c.Session())
}

func TestRestoreRefreshCookie(t *testing.T) {
	srv, _ := newServer(t, 15*time.Minute)
	ctx := context.Background()

	first, err := New(srv.URL)
	require.NoError(t, err)
	t.Cleanup(first.Close)
	_, err = first.Login(ctx, "admin@example.com", "secret123")
	require.NoError(t, err)
	saved := first.RefreshCookie()
	require.NotEmpty(t, saved)

	second, err := New(srv.URL)
	require.NoError(t, err)
	t.Cleanup(second.Close)
	require.NoError(t, second.SetRefreshCookie(saved))

	s, err := second.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", s.Email)
	assert.NotEqual(t, saved, second.RefreshCookie())
}
