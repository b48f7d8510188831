// Package policy holds the permission table. Every access decision in the
// HTTP layer goes through Check.
package policy

import (
	"github.com/axxaxinx/user-management-final-123/internal/domain/models"
	"github.com/axxaxinx/user-management-final-123/internal/error/apperror"
	"github.com/axxaxinx/user-management-final-123/internal/error/code"
)

type Action string

const (
	RequestList       Action = "request.list"
	RequestView       Action = "request.view"
	RequestUpdate     Action = "request.update"
	RequestSetStatus  Action = "request.set_status"
	RequestDelete     Action = "request.delete"
	RequestAddItem    Action = "request.add_item"
	RequestDeleteItem Action = "request.delete_item"

	AccountList    Action = "account.list"
	AccountView    Action = "account.view"
	AccountCreate  Action = "account.create"
	AccountUpdate  Action = "account.update"
	AccountSetRole Action = "account.set_role"
	AccountDelete  Action = "account.delete"
	AccountRevoke  Action = "account.revoke_token"

	EmployeeList   Action = "employee.list"
	EmployeeView   Action = "employee.view"
	EmployeeManage Action = "employee.manage"

	DepartmentManage Action = "department.manage"

	WorkflowList   Action = "workflow.list"
	WorkflowView   Action = "workflow.view"
	WorkflowManage Action = "workflow.manage"
)

type Ownership int

const (
	AnyOwner Ownership = iota
	OwnOnly
)

// Grant allows Role to perform Action. With OwnOnly the subject must own the
// resource. A non-empty States restricts the resource states the grant covers.
type Grant struct {
	Action       Action
	Role         models.Role
	Ownership    Ownership
	States       []models.Status
	StateMessage string
}

// Subject is the authenticated caller.
type Subject struct {
	AccountID  uint
	Role       models.Role
	EmployeeID *uint
}

// Resource describes the target of an action. Zero value means no owner and
// no state.
type Resource struct {
	OwnerAccountID  *uint
	OwnerEmployeeID *uint
	State           models.Status
}

func (s Subject) IsAdmin() bool {
	return s.Role == models.RoleAdmin
}

// Owns reports whether the resource belongs to the subject, either directly
// through its account or through its employee record.
func (s Subject) Owns(r Resource) bool {
	if r.OwnerAccountID != nil && *r.OwnerAccountID == s.AccountID {
		return true
	}
	return r.OwnerEmployeeID != nil && s.EmployeeID != nil && *r.OwnerEmployeeID == *s.EmployeeID
}

var pendingOnly = []models.Status{models.StatusPending}

// DefaultGrants is the permission table of the application.
var DefaultGrants = []Grant{
	// requests
	{Action: RequestList, Role: models.RoleAdmin},
	{Action: RequestView, Role: models.RoleAdmin},
	{Action: RequestView, Role: models.RoleUser, Ownership: OwnOnly},
	{Action: RequestUpdate, Role: models.RoleAdmin},
	{Action: RequestUpdate, Role: models.RoleUser, Ownership: OwnOnly},
	{Action: RequestSetStatus, Role: models.RoleAdmin},
	{Action: RequestDelete, Role: models.RoleAdmin},
	{Action: RequestDelete, Role: models.RoleUser, Ownership: OwnOnly, States: pendingOnly,
		StateMessage: "Can only delete pending requests"},
	{Action: RequestAddItem, Role: models.RoleAdmin, States: pendingOnly,
		StateMessage: "Can only add items to pending requests"},
	{Action: RequestAddItem, Role: models.RoleUser, Ownership: OwnOnly, States: pendingOnly,
		StateMessage: "Can only add items to pending requests"},
	{Action: RequestDeleteItem, Role: models.RoleAdmin, States: pendingOnly,
		StateMessage: "Can only delete items from pending requests"},
	{Action: RequestDeleteItem, Role: models.RoleUser, Ownership: OwnOnly, States: pendingOnly,
		StateMessage: "Can only delete items from pending requests"},

	// accounts
	{Action: AccountList, Role: models.RoleAdmin},
	{Action: AccountCreate, Role: models.RoleAdmin},
	{Action: AccountSetRole, Role: models.RoleAdmin},
	{Action: AccountView, Role: models.RoleAdmin},
	{Action: AccountView, Role: models.RoleUser, Ownership: OwnOnly},
	{Action: AccountUpdate, Role: models.RoleAdmin},
	{Action: AccountUpdate, Role: models.RoleUser, Ownership: OwnOnly},
	{Action: AccountDelete, Role: models.RoleAdmin},
	{Action: AccountDelete, Role: models.RoleUser, Ownership: OwnOnly},
	{Action: AccountRevoke, Role: models.RoleAdmin},
	{Action: AccountRevoke, Role: models.RoleUser, Ownership: OwnOnly},

	// employees
	{Action: EmployeeList, Role: models.RoleAdmin},
	{Action: EmployeeManage, Role: models.RoleAdmin},
	{Action: EmployeeView, Role: models.RoleAdmin},
	{Action: EmployeeView, Role: models.RoleUser, Ownership: OwnOnly},

	// departments
	{Action: DepartmentManage, Role: models.RoleAdmin},

	// workflows
	{Action: WorkflowList, Role: models.RoleAdmin},
	{Action: WorkflowManage, Role: models.RoleAdmin},
	{Action: WorkflowView, Role: models.RoleAdmin},
	{Action: WorkflowView, Role: models.RoleUser, Ownership: OwnOnly},
}

// denyMessages overrides the generic denial message for some actions.
var denyMessages = map[Action]string{
	RequestSetStatus: "Only admins can update request status",
	AccountSetRole:   "Only admins can change roles",
}

type Policy struct {
	grants []Grant
}

func New(grants []Grant) *Policy {
	return &Policy{grants: grants}
}

func Default() *Policy {
	return New(DefaultGrants)
}

// Check returns nil when a grant covers the action. When grants exist for
// the subject but not for the resource's state it returns an InvalidState
// error, otherwise a Forbidden one.
func (p *Policy) Check(s Subject, action Action, r Resource) error {
	stateMessage := ""
	for _, g := range p.grants {
		if g.Action != action || g.Role != s.Role {
			continue
		}
		if g.Ownership == OwnOnly && !s.Owns(r) {
			continue
		}
		if len(g.States) > 0 && !hasState(g.States, r.State) {
			stateMessage = g.StateMessage
			continue
		}
		return nil
	}

	if stateMessage != "" {
		return apperror.InvalidState(stateMessage).WithCode(code.ErrRequestNotPending)
	}
	if msg, ok := denyMessages[action]; ok {
		return apperror.Forbidden(msg)
	}
	return apperror.Forbidden("Unauthorized")
}

// Allows is Check without a resource, for collection level actions.
func (p *Policy) Allows(s Subject, action Action) bool {
	return p.Check(s, action, Resource{}) == nil
}

func hasState(states []models.Status, state models.Status) bool {
	for _, s := range states {
		if s == state {
			return true
		}
	}
	return false
}
