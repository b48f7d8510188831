package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/axxaxinx/user-management-final-123/internal/domain/models"
	"github.com/axxaxinx/user-management-final-123/internal/infrastructure/config"
)

func testConfig() *config.Config {
	return &config.Config{
		AppBaseURL:      "http://localhost:4200",
		JWTSecretKey:    "test-secret",
		JWTIssuer:       "user-management",
		JWTTTL:          15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
		MQTTTopicPrefix: "hr",
	}
}

type recordingNotifier struct {
	mu        sync.Mutex
	workflows []models.Workflow
}

func (n *recordingNotifier) PublishWorkflow(_ context.Context, wf *models.Workflow) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.workflows = append(n.workflows, *wf)
	return nil
}

func (n *recordingNotifier) Close() {}

func (n *recordingNotifier) types() []models.WorkflowType {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]models.WorkflowType, 0, len(n.workflows))
	for _, wf := range n.workflows {
		out = append(out, wf.Type)
	}
	return out
}

type sentMail struct {
	To, Subject, Body string
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *recordingMailer) Send(to, subject, html string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: html})
	return nil
}

func (m *recordingMailer) last() sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return sentMail{}
	}
	return m.sent[len(m.sent)-1]
}

func uintPtr(v uint) *uint { return &v }

func strPtr(v string) *string { return &v }

func seedDepartment(t *testing.T, db *gorm.DB, name string) *models.Department {
	t.Helper()
	dept := models.Department{Name: name}
	require.NoError(t, db.Create(&dept).Error)
	return &dept
}

func seedEmployee(t *testing.T, db *gorm.DB, employeeCode string, departmentID *uint) *models.Employee {
	t.Helper()
	emp := models.Employee{
		EmployeeCode: employeeCode,
		Position:     "Engineer",
		DepartmentID: departmentID,
		Status:       models.EmployeeActive,
	}
	require.NoError(t, db.Create(&emp).Error)
	return &emp
}

func seedAccount(t *testing.T, db *gorm.DB, email string, role models.Role) *models.Account {
	t.Helper()
	now := time.Now()
	acc := models.Account{
		FirstName:    "Test",
		LastName:     "User",
		Email:        email,
		PasswordHash: "x",
		Role:         role,
		Verified:     &now,
	}
	require.NoError(t, db.Create(&acc).Error)
	return &acc
}
