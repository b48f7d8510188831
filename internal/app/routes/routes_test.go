package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/axxaxinx/user-management-final-123/internal/domain/models"
	"github.com/axxaxinx/user-management-final-123/internal/domain/services"
	"github.com/axxaxinx/user-management-final-123/internal/domain/services/container"
	"github.com/axxaxinx/user-management-final-123/internal/error/code"
	"github.com/axxaxinx/user-management-final-123/internal/infrastructure/config"
	"github.com/axxaxinx/user-management-final-123/internal/infrastructure/database"
	"github.com/axxaxinx/user-management-final-123/internal/test/testdb"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
	sc     *container.ServiceContainer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := testdb.Open(t)
	cfg := &config.Config{
		AllowedOrigins:  []string{"http://localhost:4200"},
		AppBaseURL:      "http://localhost:4200",
		JWTSecretKey:    "route-secret",
		JWTIssuer:       "user-management",
		JWTTTL:          15 * time.Minute,
		RefreshTokenTTL: time.Hour,
		CacheTTL:        time.Minute,
	}
	sc := container.NewServiceContainer(&database.ConnectionPool{DB: db, Driver: "sqlite"}, cfg, container.Dependencies{})
	t.Cleanup(sc.Close)
	return &testServer{t: t, db: db, router: SetupRouter(sc), sc: sc}
}

func (s *testServer) do(method, path, token string, body interface{}, cookies ...*http.Cookie) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

// account creates a verified account and returns a JWT for it.
func (s *testServer) account(email string, role models.Role) (uint, string) {
	s.t.Helper()
	accounts := s.sc.GetService("account").(services.InterfaceAccountService)
	acc, err := accounts.Create(context.Background(), services.CreateAccountParams{
		FirstName: "Test", LastName: "User", Email: email, Password: "secret123", Role: role,
	})
	require.NoError(s.t, err)

	w, env := s.do(http.MethodPost, "/accounts/authenticate", "", gin.H{"email": email, "password": "secret123"})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	var auth struct {
		JWTToken string `json:"jwtToken"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &auth))
	require.NotEmpty(s.t, auth.JWTToken)
	return acc.ID, auth.JWTToken
}

func (s *testServer) employee(accountID uint, employeeCode string) uint {
	s.t.Helper()
	emp := models.Employee{EmployeeCode: employeeCode, Position: "Developer", AccountID: &accountID, Status: models.EmployeeActive}
	require.NoError(s.t, s.db.Create(&emp).Error)
	return emp.ID
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func refreshCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == "refreshToken" {
			return c
		}
	}
	return nil
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w, env := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, code.ErrSuccess, env.Code)
	assert.Contains(t, string(env.Data), `"healthy"`)
}

func TestAuthenticateAndRotateRefreshToken(t *testing.T) {
	s := newTestServer(t)
	_, _ = s.account("admin@example.com", models.RoleAdmin)

	w, env := s.do(http.MethodPost, "/accounts/authenticate", "", gin.H{"email": "ADMIN@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Email or password is incorrect", env.Message)

	w, env = s.do(http.MethodPost, "/accounts/authenticate", "", gin.H{"email": "admin@example.com", "password": "secret123"})
	require.Equal(t, http.StatusOK, w.Code)
	auth := decode[map[string]interface{}](t, env)
	assert.Equal(t, "admin@example.com", auth["email"])
	assert.Equal(t, "Admin", auth["role"])
	assert.NotEmpty(t, auth["jwtToken"])
	assert.NotContains(t, auth, "passwordHash")

	first := refreshCookie(w)
	require.NotNil(t, first)
	assert.True(t, first.HttpOnly)

	w, _ = s.do(http.MethodPost, "/accounts/refresh-token", "", nil, first)
	require.Equal(t, http.StatusOK, w.Code)
	second := refreshCookie(w)
	require.NotNil(t, second)
	assert.NotEqual(t, first.Value, second.Value)

	// a rotated token cannot be reused
	w, env = s.do(http.MethodPost, "/accounts/refresh-token", "", nil, first)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid token", env.Message)

	// the body token is accepted when no cookie is sent
	w, _ = s.do(http.MethodPost, "/accounts/refresh-token", "", gin.H{"token": second.Value})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRevokeTokenOwnership(t *testing.T) {
	s := newTestServer(t)
	_, adminToken := s.account("admin@example.com", models.RoleAdmin)
	_, userToken := s.account("user@example.com", models.RoleUser)

	w, _ := s.do(http.MethodPost, "/accounts/authenticate", "", gin.H{"email": "admin@example.com", "password": "secret123"})
	adminRefresh := refreshCookie(w)
	require.NotNil(t, adminRefresh)

	w, env := s.do(http.MethodPost, "/accounts/revoke-token", userToken, gin.H{"token": adminRefresh.Value})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Unauthorized", env.Message)

	w, _ = s.do(http.MethodPost, "/accounts/revoke-token", adminToken, gin.H{"token": adminRefresh.Value})
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(http.MethodPost, "/accounts/refresh-token", "", nil, adminRefresh)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterValidation(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(http.MethodPost, "/accounts/register", "", gin.H{
		"firstName": "Jane", "lastName": "Doe", "email": "jane@example.com",
		"password": "secret123", "confirmPassword": "different", "acceptTerms": true,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, code.ErrBind, env.Code)

	w, env = s.do(http.MethodPost, "/accounts/register", "", gin.H{
		"firstName": "Jane", "lastName": "Doe", "email": "jane@example.com",
		"password": "secret123", "confirmPassword": "secret123", "acceptTerms": true,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Registration successful, please check your email for verification instructions", env.Message)

	// unverified accounts cannot sign in
	w, _ = s.do(http.MethodPost, "/accounts/authenticate", "", gin.H{"email": "jane@example.com", "password": "secret123"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAccountAccess(t *testing.T) {
	s := newTestServer(t)
	adminID, adminToken := s.account("admin@example.com", models.RoleAdmin)
	userID, userToken := s.account("user@example.com", models.RoleUser)

	w, _ := s.do(http.MethodGet, "/accounts", userToken, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env := s.do(http.MethodGet, "/accounts/all", userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]services.AccountSummary](t, env), 2)

	w, _ = s.do(http.MethodGet, fmt.Sprintf("/accounts/%d", adminID), userToken, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = s.do(http.MethodGet, fmt.Sprintf("/accounts/%d", userID), userToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = s.do(http.MethodPut, fmt.Sprintf("/accounts/%d", userID), userToken, gin.H{"role": "Admin"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Only admins can change roles", env.Message)

	w, env = s.do(http.MethodPut, fmt.Sprintf("/accounts/%d", userID), userToken, gin.H{"password": "newsecret"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Passwords must match", env.Message)

	w, env = s.do(http.MethodPut, fmt.Sprintf("/accounts/%d", userID), userToken, gin.H{"firstName": "Renamed"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Renamed", decode[models.Account](t, env).FirstName)

	w, env = s.do(http.MethodPost, "/accounts", adminToken, gin.H{
		"firstName": "New", "lastName": "Hire", "email": "user@example.com",
		"password": "secret123", "confirmPassword": "secret123", "role": "User",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, code.ErrEmailAlreadyRegistered, env.Code)
}

func TestRequestLifecycle(t *testing.T) {
	s := newTestServer(t)
	_, adminToken := s.account("admin@example.com", models.RoleAdmin)
	ownerAccount, ownerToken := s.account("owner@example.com", models.RoleUser)
	otherAccount, otherToken := s.account("other@example.com", models.RoleUser)
	ownerEmployee := s.employee(ownerAccount, "EMP001")
	s.employee(otherAccount, "EMP002")

	w, env := s.do(http.MethodPost, "/requests", ownerToken, gin.H{
		"type":        "Equipment",
		"description": "Starter kit",
		"items":       []gin.H{{"name": "Laptop", "quantity": 1}, {"name": "Monitor"}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[models.Request](t, env)
	assert.Equal(t, models.StatusPending, created.Status)
	require.NotNil(t, created.EmployeeID)
	assert.Equal(t, ownerEmployee, *created.EmployeeID)
	require.Len(t, created.Items, 2)
	assert.Equal(t, 1, created.Items[1].Quantity)

	path := fmt.Sprintf("/requests/%d", created.ID)

	w, _ = s.do(http.MethodGet, path, otherToken, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w, _ = s.do(http.MethodGet, "/requests", ownerToken, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env = s.do(http.MethodPut, path, ownerToken, gin.H{"status": "Approved"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Only admins can update request status", env.Message)

	w, env = s.do(http.MethodPost, path+"/items", ownerToken, gin.H{"name": "Dock"})
	require.Equal(t, http.StatusCreated, w.Code)
	item := decode[models.RequestItem](t, env)

	w, _ = s.do(http.MethodDelete, fmt.Sprintf("%s/items/%d", path, item.ID), otherToken, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w, _ = s.do(http.MethodDelete, fmt.Sprintf("%s/items/%d", path, item.ID), ownerToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = s.do(http.MethodPut, path+"/status", adminToken, gin.H{"status": "Approved"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.StatusApproved, decode[models.Request](t, env).Status)

	w, env = s.do(http.MethodPost, path+"/items", ownerToken, gin.H{"name": "Mouse"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Can only add items to pending requests", env.Message)

	w, env = s.do(http.MethodDelete, path, ownerToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Can only delete pending requests", env.Message)

	w, env = s.do(http.MethodGet, path+"/workflows", ownerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	history := decode[[]models.Workflow](t, env)
	require.Len(t, history, 2)
	assert.Equal(t, models.WorkflowEquipmentRequest, history[0].Type)
	assert.Equal(t, models.StatusApproved, history[1].Status)

	w, env = s.do(http.MethodGet, "/requests/my-requests", ownerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Request](t, env), 1)

	w, _ = s.do(http.MethodDelete, path, adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = s.do(http.MethodGet, path, adminToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRequestsWithoutEmployeeRecord(t *testing.T) {
	s := newTestServer(t)
	_, token := s.account("solo@example.com", models.RoleUser)

	w, env := s.do(http.MethodPost, "/requests", token, gin.H{"type": "Leave", "items": []gin.H{{"name": "Annual leave"}}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, code.ErrNoEmployeeRecord, env.Code)

	w, env = s.do(http.MethodGet, "/requests/my-requests", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, string(env.Data))

	w, _ = s.do(http.MethodGet, "/employees/me", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDepartmentsAndEmployees(t *testing.T) {
	s := newTestServer(t)
	_, adminToken := s.account("admin@example.com", models.RoleAdmin)
	userAccount, userToken := s.account("user@example.com", models.RoleUser)

	w, env := s.do(http.MethodPost, "/departments", adminToken, gin.H{"name": "Engineering"})
	require.Equal(t, http.StatusCreated, w.Code)
	dept := decode[models.Department](t, env)

	w, env = s.do(http.MethodPost, "/departments", adminToken, gin.H{"name": " Engineering "})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, code.ErrDepartmentExists, env.Code)

	w, _ = s.do(http.MethodPost, "/departments", userToken, gin.H{"name": "Sales"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env = s.do(http.MethodGet, "/departments", userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
	assert.Zero(t, decode[[]models.Department](t, env)[0].EmployeeCount)

	w, _ = s.do(http.MethodGet, "/departments", userToken, nil)
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))

	w, env = s.do(http.MethodPost, "/employees", adminToken, gin.H{
		"employeeId": "EMP100", "accountId": userAccount, "departmentId": dept.ID,
		"position": "Developer", "hireDate": "2024-01-15",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	emp := decode[models.Employee](t, env)
	require.NotNil(t, emp.HireDate)

	// employee writes purge the cached department list
	w, env = s.do(http.MethodGet, "/departments", userToken, nil)
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
	assert.Equal(t, int64(1), decode[[]models.Department](t, env)[0].EmployeeCount)

	w, _ = s.do(http.MethodGet, fmt.Sprintf("/employees/%d", emp.ID), userToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = s.do(http.MethodGet, "/employees", userToken, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env = s.do(http.MethodGet, "/employees?departmentId="+fmt.Sprint(dept.ID), adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), decode[models.Page[models.Employee]](t, env).Total)

	w, env = s.do(http.MethodGet, fmt.Sprintf("/workflows/employee/%d", emp.ID), userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	workflows := decode[[]models.Workflow](t, env)
	require.Len(t, workflows, 1)
	assert.Equal(t, models.WorkflowOnboarding, workflows[0].Type)

	w, _ = s.do(http.MethodDelete, fmt.Sprintf("/departments/%d", dept.ID), adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, env = s.do(http.MethodGet, "/employees/me", userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decode[models.Employee](t, env).DepartmentID)
}

func TestUnknownTokenRejected(t *testing.T) {
	s := newTestServer(t)
	w, env := s.do(http.MethodGet, "/departments", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Unauthorized", env.Message)
}

func TestRequestItemValidation(t *testing.T) {
	s := newTestServer(t)
	account, token := s.account("owner@example.com", models.RoleUser)
	s.employee(account, "EMP001")

	w, env := s.do(http.MethodPost, "/requests", token, gin.H{"type": "Leave", "items": []gin.H{}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	empty := decode[models.Request](t, env)
	assert.Empty(t, empty.Items)

	w, env = s.do(http.MethodGet, fmt.Sprintf("/requests/%d/workflows", empty.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	history := decode[[]models.Workflow](t, env)
	require.Len(t, history, 1)
	assert.Equal(t, models.StatusPending, history[0].Status)

	w, _ = s.do(http.MethodPost, "/requests", token, gin.H{"type": "Leave"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(http.MethodPost, "/requests", token, gin.H{
		"type":  "Equipment",
		"items": []gin.H{{"name": "Laptop", "quantity": 0}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	path := fmt.Sprintf("/requests/%d/items", empty.ID)
	w, _ = s.do(http.MethodPost, path, token, gin.H{"name": "Laptop", "quantity": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = s.do(http.MethodPost, path, token, gin.H{"name": "Laptop"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, 1, decode[models.RequestItem](t, env).Quantity)
}
