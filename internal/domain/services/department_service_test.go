package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axxaxinx/user-management-final-123/internal/domain/models"
	"github.com/axxaxinx/user-management-final-123/internal/error/apperror"
	"github.com/axxaxinx/user-management-final-123/internal/test/testdb"
)

func TestDepartmentNameIsUnique(t *testing.T) {
	db := testdb.Open(t)
	svc := NewDepartmentService(db, &recordingNotifier{})
	ctx := context.Background()

	eng, err := svc.Create(ctx, DepartmentParams{Name: "  Engineering ", Description: "Builds things"})
	require.NoError(t, err)
	assert.Equal(t, "Engineering", eng.Name)

	_, err = svc.Create(ctx, DepartmentParams{Name: "Engineering"})
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindConflict))
	assert.EqualError(t, err, `Department "Engineering" already exists`)

	_, err = svc.Create(ctx, DepartmentParams{Name: "   "})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	ops, err := svc.Create(ctx, DepartmentParams{Name: "Operations"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, ops.ID, UpdateDepartmentParams{Name: strPtr("Engineering")})
	assert.True(t, apperror.Is(err, apperror.KindConflict))

	// renaming to its own name is a no-op
	same, err := svc.Update(ctx, ops.ID, UpdateDepartmentParams{Name: strPtr("Operations"), Description: strPtr("Runs things")})
	require.NoError(t, err)
	assert.Equal(t, "Runs things", same.Description)
}

func TestDepartmentEmployeeCounts(t *testing.T) {
	db := testdb.Open(t)
	svc := NewDepartmentService(db, &recordingNotifier{})
	ctx := context.Background()

	eng := seedDepartment(t, db, "Engineering")
	hr := seedDepartment(t, db, "HR")
	seedDepartment(t, db, "Empty")
	seedEmployee(t, db, "E1", &eng.ID)
	seedEmployee(t, db, "E2", &eng.ID)
	seedEmployee(t, db, "E3", &hr.ID)
	seedEmployee(t, db, "E4", nil)

	all, err := svc.GetAll(ctx)
	require.NoError(t, err)
	counts := map[string]int64{}
	for _, d := range all {
		counts[d.Name] = d.EmployeeCount
	}
	assert.Equal(t, map[string]int64{"Engineering": 2, "HR": 1, "Empty": 0}, counts)

	one, err := svc.GetByID(ctx, eng.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), one.EmployeeCount)

	_, err = svc.GetByID(ctx, 999)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestDeleteDepartmentDetachesEmployees(t *testing.T) {
	db := testdb.Open(t)
	svc := NewDepartmentService(db, &recordingNotifier{})
	ctx := context.Background()

	eng := seedDepartment(t, db, "Engineering")
	emp := seedEmployee(t, db, "E1", &eng.ID)

	require.NoError(t, svc.Delete(ctx, eng.ID))
	var reloaded models.Employee
	require.NoError(t, db.First(&reloaded, emp.ID).Error)
	assert.Nil(t, reloaded.DepartmentID)

	assert.True(t, apperror.Is(svc.Delete(ctx, eng.ID), apperror.KindNotFound))
}

func TestAssignDepartment(t *testing.T) {
	db := testdb.Open(t)
	notifier := &recordingNotifier{}
	svc := NewDepartmentService(db, notifier)
	ctx := context.Background()

	eng := seedDepartment(t, db, "Engineering")
	ops := seedDepartment(t, db, "Operations")
	emp := seedEmployee(t, db, "E1", &eng.ID)

	moved, err := svc.AssignDepartment(ctx, emp.ID, ops.ID)
	require.NoError(t, err)
	assert.Equal(t, ops.ID, *moved.DepartmentID)

	var workflows []models.Workflow
	require.NoError(t, db.Where("employee_id = ?", emp.ID).Find(&workflows).Error)
	require.Len(t, workflows, 1)
	assert.Equal(t, models.WorkflowDepartmentChange, workflows[0].Type)
	assert.Equal(t, []models.WorkflowType{models.WorkflowDepartmentChange}, notifier.types())

	_, err = svc.AssignDepartment(ctx, emp.ID, 999)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
	_, err = svc.AssignDepartment(ctx, 999, ops.ID)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}
