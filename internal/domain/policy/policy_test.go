package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/axxaxinx/user-management-final-123/internal/domain/models"
	"github.com/axxaxinx/user-management-final-123/internal/error/apperror"
)

func uintPtr(v uint) *uint { return &v }

func TestRequestPermissions(t *testing.T) {
	p := Default()

	admin := Subject{AccountID: 1, Role: models.RoleAdmin}
	owner := Subject{AccountID: 2, Role: models.RoleUser, EmployeeID: uintPtr(20)}
	stranger := Subject{AccountID: 3, Role: models.RoleUser, EmployeeID: uintPtr(30)}
	noEmployee := Subject{AccountID: 4, Role: models.RoleUser}

	pending := Resource{OwnerEmployeeID: uintPtr(20), State: models.StatusPending}
	approved := Resource{OwnerEmployeeID: uintPtr(20), State: models.StatusApproved}

	tests := []struct {
		name    string
		subject Subject
		action  Action
		res     Resource
		want    error
		kind    apperror.Kind
	}{
		{"admin lists", admin, RequestList, Resource{}, nil, 0},
		{"user cannot list", owner, RequestList, Resource{}, assert.AnError, apperror.KindForbidden},
		{"owner views", owner, RequestView, pending, nil, 0},
		{"stranger cannot view", stranger, RequestView, pending, assert.AnError, apperror.KindForbidden},
		{"user without employee cannot view", noEmployee, RequestView, pending, assert.AnError, apperror.KindForbidden},
		{"owner updates approved", owner, RequestUpdate, approved, nil, 0},
		{"owner cannot set status", owner, RequestSetStatus, pending, assert.AnError, apperror.KindForbidden},
		{"admin sets status", admin, RequestSetStatus, approved, nil, 0},
		{"owner deletes pending", owner, RequestDelete, pending, nil, 0},
		{"owner cannot delete approved", owner, RequestDelete, approved, assert.AnError, apperror.KindInvalidState},
		{"stranger cannot delete pending", stranger, RequestDelete, pending, assert.AnError, apperror.KindForbidden},
		{"admin deletes approved", admin, RequestDelete, approved, nil, 0},
		{"owner adds item to pending", owner, RequestAddItem, pending, nil, 0},
		{"admin cannot add item to approved", admin, RequestAddItem, approved, assert.AnError, apperror.KindInvalidState},
		{"owner cannot delete item of approved", owner, RequestDeleteItem, approved, assert.AnError, apperror.KindInvalidState},
		{"stranger cannot add item", stranger, RequestAddItem, pending, assert.AnError, apperror.KindForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.Check(tt.subject, tt.action, tt.res)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			assert.Equal(t, tt.kind, apperror.KindOf(err))
		})
	}
}

func TestStateMessages(t *testing.T) {
	p := Default()
	owner := Subject{AccountID: 2, Role: models.RoleUser, EmployeeID: uintPtr(20)}
	rejected := Resource{OwnerEmployeeID: uintPtr(20), State: models.StatusRejected}

	assert.EqualError(t, p.Check(owner, RequestDelete, rejected), "Can only delete pending requests")
	assert.EqualError(t, p.Check(owner, RequestAddItem, rejected), "Can only add items to pending requests")
	assert.EqualError(t, p.Check(owner, RequestDeleteItem, rejected), "Can only delete items from pending requests")
	assert.EqualError(t, p.Check(owner, RequestSetStatus, rejected), "Only admins can update request status")
}

func TestAccountOwnership(t *testing.T) {
	p := Default()
	user := Subject{AccountID: 7, Role: models.RoleUser}

	assert.NoError(t, p.Check(user, AccountUpdate, Resource{OwnerAccountID: uintPtr(7)}))
	assert.Error(t, p.Check(user, AccountUpdate, Resource{OwnerAccountID: uintPtr(8)}))
	assert.Error(t, p.Check(user, AccountSetRole, Resource{OwnerAccountID: uintPtr(7)}))
	assert.False(t, p.Allows(user, DepartmentManage))
	assert.True(t, p.Allows(Subject{AccountID: 1, Role: models.RoleAdmin}, DepartmentManage))
}

func TestUnknownRoleIsDenied(t *testing.T) {
	p := Default()
	err := p.Check(Subject{AccountID: 1, Role: "Guest"}, RequestView, Resource{OwnerAccountID: uintPtr(1)})
	assert.True(t, apperror.Is(err, apperror.KindForbidden))
}
