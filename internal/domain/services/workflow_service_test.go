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

func TestWorkflowLifecycle(t *testing.T) {
	db := testdb.Open(t)
	notifier := &recordingNotifier{}
	svc := NewWorkflowService(db, notifier)
	ctx := context.Background()
	emp := seedEmployee(t, db, "E1", nil)

	wf, err := svc.Create(ctx, CreateWorkflowParams{Type: models.WorkflowOnboarding, Details: "Day one", EmployeeID: &emp.ID})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, wf.Status)
	assert.Equal(t, []models.WorkflowType{models.WorkflowOnboarding}, notifier.types())

	_, err = svc.Create(ctx, CreateWorkflowParams{Type: "Promotion"})
	assert.True(t, apperror.Is(err, apperror.KindValidation))
	_, err = svc.Create(ctx, CreateWorkflowParams{Type: models.WorkflowTermination, EmployeeID: uintPtr(999)})
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	updated, err := svc.UpdateStatus(ctx, wf.ID, models.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, updated.Status)

	mine, err := svc.GetByEmployeeID(ctx, emp.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)

	approved, err := svc.GetAll(ctx, WorkflowFilter{Status: models.StatusApproved})
	require.NoError(t, err)
	assert.Len(t, approved, 1)
	none, err := svc.GetAll(ctx, WorkflowFilter{Type: models.WorkflowTermination})
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = svc.GetByID(ctx, 999)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestRequestWorkflowsAreAppendOnly(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()
	emp := seedEmployee(t, db, "E1", nil)

	req, err := NewRequestService(db, &recordingNotifier{}).Create(ctx, emp.ID, CreateRequestParams{Type: models.RequestLeave})
	require.NoError(t, err)

	svc := NewWorkflowService(db, &recordingNotifier{})
	history, err := svc.GetByRequestID(ctx, req.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)

	_, err = svc.UpdateStatus(ctx, history[0].ID, models.StatusApproved)
	assert.True(t, apperror.Is(err, apperror.KindInvalidState))
}

func TestWorkflowTopic(t *testing.T) {
	assert.Equal(t, "hr/workflows/Onboarding", WorkflowTopic("hr", models.WorkflowOnboarding))
	assert.Equal(t, "acme/hr/workflows/LeaveRequest", WorkflowTopic("/acme/hr/", models.WorkflowLeaveRequest))
	assert.Equal(t, "hr/workflows/Termination", WorkflowTopic("", models.WorkflowTermination))
}
