package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axxaxinx/user-management-final-123/internal/domain/models"
	"github.com/axxaxinx/user-management-final-123/internal/domain/policy"
	"github.com/axxaxinx/user-management-final-123/internal/domain/services"
	"github.com/axxaxinx/user-management-final-123/internal/domain/services/container"
	"github.com/axxaxinx/user-management-final-123/internal/infrastructure/config"
	"github.com/axxaxinx/user-management-final-123/internal/infrastructure/database"
	"github.com/axxaxinx/user-management-final-123/internal/test/testdb"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(r http.Handler, method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiter(t *testing.T) {
	r := gin.New()
	r.Use(IPRateLimiter(0.001, 2))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/ping", nil).Code)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/ping", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, perform(r, http.MethodGet, "/ping", nil).Code)
}

func TestResponseCache(t *testing.T) {
	store := NewMemoryStore()
	rc := NewResponseCache(store, time.Minute)
	calls := 0

	r := gin.New()
	r.GET("/departments", rc.Middleware(), func(c *gin.Context) {
		calls++
		c.JSON(http.StatusOK, gin.H{"calls": calls})
	})
	r.POST("/departments", rc.PurgeOnSuccess("/departments"), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	first := perform(r, http.MethodGet, "/departments?b=2&a=1", nil)
	second := perform(r, http.MethodGet, "/departments?a=1&b=2", nil)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, store.Len())

	assert.Equal(t, http.StatusCreated, perform(r, http.MethodPost, "/departments", nil).Code)
	assert.Zero(t, store.Len())

	perform(r, http.MethodGet, "/departments?a=1&b=2", nil)
	assert.Equal(t, 2, calls)
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "cache:/x", []byte("1"), -time.Second))
	_, found := store.Get(ctx, "cache:/x")
	assert.False(t, found)
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:4200"}))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	allowed := perform(r, http.MethodOptions, "/health", http.Header{"Origin": {"http://localhost:4200"}})
	assert.Equal(t, http.StatusNoContent, allowed.Code)
	assert.Equal(t, "http://localhost:4200", allowed.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", allowed.Header().Get("Access-Control-Allow-Credentials"))

	denied := perform(r, http.MethodGet, "/health", http.Header{"Origin": {"http://evil.example"}})
	assert.Equal(t, http.StatusOK, denied.Code)
	assert.Empty(t, denied.Header().Get("Access-Control-Allow-Origin"))
}

func TestAuthenticateAndPermit(t *testing.T) {
	db := testdb.Open(t)
	cfg := &config.Config{JWTSecretKey: "secret", JWTTTL: time.Minute}
	sc := container.NewServiceContainer(&database.ConnectionPool{DB: db, Driver: "sqlite"}, cfg, container.Dependencies{})

	now := time.Now()
	user := models.Account{FirstName: "U", LastName: "U", Email: "u@example.com", PasswordHash: "x", Role: models.RoleUser, Verified: &now}
	require.NoError(t, db.Create(&user).Error)
	emp := models.Employee{EmployeeCode: "E1", Position: "Dev", AccountID: &user.ID, Status: models.EmployeeActive}
	require.NoError(t, db.Create(&emp).Error)

	jwtService := sc.GetService("jwt").(services.InterfaceJWTService)
	token, _, err := jwtService.GenerateToken(&user)
	require.NoError(t, err)

	var seen policy.Subject
	r := gin.New()
	r.GET("/me", Authenticate(sc), func(c *gin.Context) {
		seen, _ = GetSubject(c)
		c.Status(http.StatusOK)
	})
	r.GET("/requests", Authenticate(sc), Permit(sc, policy.RequestList), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	bearer := http.Header{"Authorization": {"Bearer " + token}}
	assert.Equal(t, http.StatusUnauthorized, perform(r, http.MethodGet, "/me", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, perform(r, http.MethodGet, "/me", http.Header{"Authorization": {"Bearer junk"}}).Code)

	require.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/me", bearer).Code)
	assert.Equal(t, user.ID, seen.AccountID)
	require.NotNil(t, seen.EmployeeID)
	assert.Equal(t, emp.ID, *seen.EmployeeID)

	// users cannot list every request
	assert.Equal(t, http.StatusUnauthorized, perform(r, http.MethodGet, "/requests", bearer).Code)

	// promotion takes effect without a new token
	require.NoError(t, db.Model(&user).Update("role", models.RoleAdmin).Error)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/requests", bearer).Code)

	// deleted accounts are rejected
	require.NoError(t, db.Delete(&models.Account{}, user.ID).Error)
	assert.Equal(t, http.StatusUnauthorized, perform(r, http.MethodGet, "/me", bearer).Code)
}
