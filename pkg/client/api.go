package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/axxaxinx/user-management-final-123/internal/domain/models"
)

type RegisterInput struct {
	Title           string `json:"title,omitempty"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	AcceptTerms     bool   `json:"acceptTerms"`
}

// AccountUpdate holds the fields to change. Nil fields are not sent.
type AccountUpdate struct {
	Title           *string      `json:"title,omitempty"`
	FirstName       *string      `json:"firstName,omitempty"`
	LastName        *string      `json:"lastName,omitempty"`
	Email           *string      `json:"email,omitempty"`
	Password        *string      `json:"password,omitempty"`
	ConfirmPassword *string      `json:"confirmPassword,omitempty"`
	Role            *models.Role `json:"role,omitempty"`
}

type RequestItemInput struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity,omitempty"`
	Details  string `json:"details,omitempty"`
}

type RequestInput struct {
	Type        models.RequestType `json:"type"`
	Description string             `json:"description,omitempty"`
	Items       []RequestItemInput `json:"items"`
}

func (c *Client) Register(ctx context.Context, in RegisterInput) error {
	return c.request(ctx, http.MethodPost, "/accounts/register", in, nil)
}

func (c *Client) VerifyEmail(ctx context.Context, token string) error {
	return c.request(ctx, http.MethodPost, "/accounts/verify-email", map[string]string{"token": token}, nil)
}

func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.request(ctx, http.MethodPost, "/accounts/forgot-password", map[string]string{"email": email}, nil)
}

func (c *Client) ResetPassword(ctx context.Context, token, password string) error {
	return c.request(ctx, http.MethodPost, "/accounts/reset-password", map[string]string{
		"token":           token,
		"password":        password,
		"confirmPassword": password,
	}, nil)
}

func (c *Client) Accounts(ctx context.Context) ([]models.Account, error) {
	var out []models.Account
	err := c.request(ctx, http.MethodGet, "/accounts", nil, &out)
	return out, err
}

func (c *Client) Account(ctx context.Context, id uint) (*models.Account, error) {
	var out models.Account
	if err := c.request(ctx, http.MethodGet, fmt.Sprintf("/accounts/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateAccount updates an account. Updating the signed-in account also
// refreshes the cached session names.
func (c *Client) UpdateAccount(ctx context.Context, id uint, in AccountUpdate) (*models.Account, error) {
	var out models.Account
	if err := c.request(ctx, http.MethodPut, fmt.Sprintf("/accounts/%d", id), in, &out); err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.session != nil && c.session.ID == id {
		c.session.Title = out.Title
		c.session.FirstName = out.FirstName
		c.session.LastName = out.LastName
		c.session.Email = out.Email
		c.session.Role = string(out.Role)
	}
	c.mu.Unlock()
	return &out, nil
}

// DeleteAccount deletes an account. Deleting the signed-in account ends the
// session.
func (c *Client) DeleteAccount(ctx context.Context, id uint) error {
	if err := c.request(ctx, http.MethodDelete, fmt.Sprintf("/accounts/%d", id), nil, nil); err != nil {
		return err
	}
	if s := c.Session(); s != nil && s.ID == id {
		c.clearSession()
	}
	return nil
}

func (c *Client) Me(ctx context.Context) (*models.Employee, error) {
	var out models.Employee
	if err := c.request(ctx, http.MethodGet, "/employees/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Departments(ctx context.Context) ([]models.Department, error) {
	var out []models.Department
	err := c.request(ctx, http.MethodGet, "/departments", nil, &out)
	return out, err
}

func (c *Client) CreateRequest(ctx context.Context, in RequestInput) (*models.Request, error) {
	var out models.Request
	if err := c.request(ctx, http.MethodPost, "/requests", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Requests(ctx context.Context) ([]models.Request, error) {
	var out []models.Request
	err := c.request(ctx, http.MethodGet, "/requests", nil, &out)
	return out, err
}

func (c *Client) MyRequests(ctx context.Context) ([]models.Request, error) {
	var out []models.Request
	err := c.request(ctx, http.MethodGet, "/requests/my-requests", nil, &out)
	return out, err
}

func (c *Client) Request(ctx context.Context, id uint) (*models.Request, error) {
	var out models.Request
	if err := c.request(ctx, http.MethodGet, fmt.Sprintf("/requests/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SetRequestStatus(ctx context.Context, id uint, status models.Status) (*models.Request, error) {
	var out models.Request
	if err := c.request(ctx, http.MethodPut, fmt.Sprintf("/requests/%d/status", id), map[string]models.Status{"status": status}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteRequest(ctx context.Context, id uint) error {
	return c.request(ctx, http.MethodDelete, fmt.Sprintf("/requests/%d", id), nil, nil)
}

func (c *Client) AddRequestItem(ctx context.Context, requestID uint, in RequestItemInput) (*models.RequestItem, error) {
	var out models.RequestItem
	if err := c.request(ctx, http.MethodPost, fmt.Sprintf("/requests/%d/items", requestID), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RequestWorkflows(ctx context.Context, requestID uint) ([]models.Workflow, error) {
	var out []models.Workflow
	err := c.request(ctx, http.MethodGet, fmt.Sprintf("/requests/%d/workflows", requestID), nil, &out)
	return out, err
}
