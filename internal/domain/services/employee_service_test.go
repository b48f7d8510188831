package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axxaxinx/user-management-final-123/internal/domain/models"
	"github.com/axxaxinx/user-management-final-123/internal/error/apperror"
	"github.com/axxaxinx/user-management-final-123/internal/test/testdb"
)

func TestCreateEmployee(t *testing.T) {
	db := testdb.Open(t)
	notifier := &recordingNotifier{}
	svc := NewEmployeeService(db, notifier)
	ctx := context.Background()

	dept := seedDepartment(t, db, "Engineering")
	acc := seedAccount(t, db, "jane@example.com", models.RoleUser)
	hired := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	emp, err := svc.Create(ctx, CreateEmployeeParams{
		EmployeeCode: "EMP001",
		AccountID:    &acc.ID,
		DepartmentID: &dept.ID,
		Position:     "Developer",
		HireDate:     &hired,
	})
	require.NoError(t, err)
	assert.Equal(t, models.EmployeeActive, emp.Status)
	require.NotNil(t, emp.Account)
	assert.Equal(t, "jane@example.com", emp.Account.Email)
	require.NotNil(t, emp.Department)
	assert.Equal(t, "Engineering", emp.Department.Name)
	assert.Equal(t, []models.WorkflowType{models.WorkflowOnboarding}, notifier.types())

	_, err = svc.Create(ctx, CreateEmployeeParams{EmployeeCode: "EMP001", Position: "Dup"})
	assert.True(t, apperror.Is(err, apperror.KindConflict))

	_, err = svc.Create(ctx, CreateEmployeeParams{EmployeeCode: "EMP002", AccountID: &acc.ID, Position: "Dup"})
	assert.True(t, apperror.Is(err, apperror.KindConflict))

	_, err = svc.Create(ctx, CreateEmployeeParams{EmployeeCode: "EMP003", DepartmentID: uintPtr(999), Position: "X"})
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	_, err = svc.Create(ctx, CreateEmployeeParams{EmployeeCode: "EMP004", ReportingTo: uintPtr(999), Position: "X"})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = svc.Create(ctx, CreateEmployeeParams{EmployeeCode: "EMP005", Status: "Retired", Position: "X"})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	byAccount, err := svc.GetByAccountID(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, emp.ID, byAccount.ID)
}

func TestReportingLineValidation(t *testing.T) {
	db := testdb.Open(t)
	svc := NewEmployeeService(db, &recordingNotifier{})
	ctx := context.Background()

	boss := seedEmployee(t, db, "BOSS", nil)
	lead := seedEmployee(t, db, "LEAD", nil)
	dev := seedEmployee(t, db, "DEV", nil)

	_, err := svc.Update(ctx, lead.ID, UpdateEmployeeParams{ReportingTo: &boss.ID})
	require.NoError(t, err)
	_, err = svc.Update(ctx, dev.ID, UpdateEmployeeParams{ReportingTo: &lead.ID})
	require.NoError(t, err)

	// missing manager
	_, err = svc.Update(ctx, dev.ID, UpdateEmployeeParams{ReportingTo: uintPtr(999)})
	assert.True(t, apperror.Is(err, apperror.KindValidation))
	// self
	_, err = svc.Update(ctx, dev.ID, UpdateEmployeeParams{ReportingTo: &dev.ID})
	assert.True(t, apperror.Is(err, apperror.KindValidation))
	// indirect subordinate
	_, err = svc.Update(ctx, boss.ID, UpdateEmployeeParams{ReportingTo: &dev.ID})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	subs, err := svc.Subordinates(ctx, lead.ID)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, dev.ID, subs[0].ID)

	// zero clears the manager
	cleared, err := svc.Update(ctx, dev.ID, UpdateEmployeeParams{ReportingTo: uintPtr(0)})
	require.NoError(t, err)
	assert.Nil(t, cleared.ReportingTo)
}

func TestEmployeeUpdateEmitsWorkflows(t *testing.T) {
	db := testdb.Open(t)
	notifier := &recordingNotifier{}
	svc := NewEmployeeService(db, notifier)
	ctx := context.Background()

	eng := seedDepartment(t, db, "Engineering")
	ops := seedDepartment(t, db, "Operations")
	emp := seedEmployee(t, db, "E1", &eng.ID)

	// same department, no workflow
	_, err := svc.Update(ctx, emp.ID, UpdateEmployeeParams{DepartmentID: &eng.ID, Position: strPtr("Senior Engineer")})
	require.NoError(t, err)
	assert.Empty(t, notifier.types())

	updated, err := svc.Update(ctx, emp.ID, UpdateEmployeeParams{DepartmentID: &ops.ID})
	require.NoError(t, err)
	assert.Equal(t, ops.ID, *updated.DepartmentID)
	assert.Equal(t, "Senior Engineer", updated.Position)

	terminated := models.EmployeeTerminated
	_, err = svc.Update(ctx, emp.ID, UpdateEmployeeParams{Status: &terminated})
	require.NoError(t, err)

	assert.Equal(t, []models.WorkflowType{models.WorkflowDepartmentChange, models.WorkflowTermination}, notifier.types())

	var count int64
	require.NoError(t, db.Model(&models.Workflow{}).
		Where("employee_id = ? AND type = ?", emp.ID, models.WorkflowDepartmentChange).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestListEmployees(t *testing.T) {
	db := testdb.Open(t)
	svc := NewEmployeeService(db, &recordingNotifier{})
	ctx := context.Background()

	eng := seedDepartment(t, db, "Engineering")
	for _, code := range []string{"E1", "E2", "E3"} {
		seedEmployee(t, db, code, &eng.ID)
	}
	seedEmployee(t, db, "X1", nil)

	page, err := svc.GetAll(ctx, EmployeeFilter{DepartmentID: &eng.ID, Pagination: models.Pagination{Page: 1, PageSize: 2}})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, int64(2), page.TotalPages)

	page, err = svc.GetAll(ctx, EmployeeFilter{Search: "X"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, 20, page.PageSize)
}

func TestDeleteEmployee(t *testing.T) {
	db := testdb.Open(t)
	svc := NewEmployeeService(db, &recordingNotifier{})
	ctx := context.Background()

	boss := seedEmployee(t, db, "BOSS", nil)
	dev := seedEmployee(t, db, "DEV", nil)
	require.NoError(t, db.Model(dev).Update("reporting_to", boss.ID).Error)
	req := models.Request{Type: models.RequestLeave, Status: models.StatusPending, EmployeeID: &boss.ID}
	require.NoError(t, db.Create(&req).Error)

	require.NoError(t, svc.Delete(ctx, boss.ID))

	var reloadedDev models.Employee
	require.NoError(t, db.First(&reloadedDev, dev.ID).Error)
	assert.Nil(t, reloadedDev.ReportingTo)
	var reloadedReq models.Request
	require.NoError(t, db.First(&reloadedReq, req.ID).Error)
	assert.Nil(t, reloadedReq.EmployeeID)

	assert.True(t, apperror.Is(svc.Delete(ctx, boss.ID), apperror.KindNotFound))
	_, err := svc.GetByID(ctx, boss.ID)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}
