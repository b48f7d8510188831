package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/axxaxinx/user-management-final-123/internal/domain/models"
	"github.com/axxaxinx/user-management-final-123/internal/domain/policy"
	"github.com/axxaxinx/user-management-final-123/internal/domain/services"
	"github.com/axxaxinx/user-management-final-123/internal/domain/services/container"
	"github.com/axxaxinx/user-management-final-123/internal/error/response"
)

// WorkflowController 处理工作流相关的请求
type WorkflowController struct {
	baseController
}

// NewWorkflowController 创建一个新的工作流控制器
func NewWorkflowController(ctx *gin.Context, container *container.ServiceContainer) *WorkflowController {
	return &WorkflowController{baseController{Ctx: ctx, Container: container}}
}

// CreateWorkflowRequest 创建工作流请求
type CreateWorkflowRequest struct {
	Type       models.WorkflowType `json:"type" binding:"required,oneof=Onboarding DepartmentChange Termination EquipmentRequest LeaveRequest ResourceRequest" example:"Onboarding"`
	Status     models.Status       `json:"status" binding:"omitempty,oneof=Pending Approved Rejected" example:"Pending"`
	Details    string              `json:"details" example:"Laptop setup"`
	EmployeeID *uint               `json:"employeeId" example:"1"`
}

// UpdateWorkflowStatusRequest 更新工作流状态请求
type UpdateWorkflowStatusRequest struct {
	Status models.Status `json:"status" binding:"required,oneof=Pending Approved Rejected" example:"Approved"`
}

// WorkflowQuery 工作流列表查询参数
type WorkflowQuery struct {
	Type       models.WorkflowType `form:"type"`
	Status     models.Status       `form:"status" binding:"omitempty,oneof=Pending Approved Rejected"`
	EmployeeID *uint               `form:"employeeId"`
}

func (w *WorkflowController) service() services.InterfaceWorkflowService {
	return w.Container.GetService("workflow").(services.InterfaceWorkflowService)
}

// GetAll 获取工作流列表
// @Summary      List workflows
// @Tags         Workflows
// @Produce      json
// @Param        type query string false "Workflow type"
// @Param        status query string false "Workflow status"
// @Param        employeeId query int false "Employee"
// @Success      200  {object}  SuccessResponse{data=[]models.Workflow}
// @Failure      401  {object}  ErrorResponse
// @Router       /workflows [get]
// @Security     BearerAuth
func (w *WorkflowController) GetAll() {
	var query WorkflowQuery
	if err := w.Ctx.ShouldBindQuery(&query); err != nil {
		response.BindError(w.Ctx, err)
		return
	}
	list, err := w.service().GetAll(w.Ctx.Request.Context(), services.WorkflowFilter{
		Type:       query.Type,
		Status:     query.Status,
		EmployeeID: query.EmployeeID,
	})
	if err != nil {
		response.Error(w.Ctx, err)
		return
	}
	response.Success(w.Ctx, list)
}

// GetByEmployee 获取员工的工作流
// @Summary      Workflows of an employee
// @Tags         Workflows
// @Produce      json
// @Param        employeeId path int true "Employee ID"
// @Success      200  {object}  SuccessResponse{data=[]models.Workflow}
// @Failure      401  {object}  ErrorResponse
// @Router       /workflows/employee/{employeeId} [get]
// @Security     BearerAuth
func (w *WorkflowController) GetByEmployee() {
	employeeID, ok := w.parseID("employeeId")
	if !ok {
		return
	}
	if !w.authorize(policy.WorkflowView, policy.Resource{OwnerEmployeeID: &employeeID}) {
		return
	}
	list, err := w.service().GetByEmployeeID(w.Ctx.Request.Context(), employeeID)
	if err != nil {
		response.Error(w.Ctx, err)
		return
	}
	response.Success(w.Ctx, list)
}

// GetByID 获取工作流
// @Summary      Get workflow
// @Tags         Workflows
// @Produce      json
// @Param        id path int true "Workflow ID"
// @Success      200  {object}  SuccessResponse{data=models.Workflow}
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /workflows/{id} [get]
// @Security     BearerAuth
func (w *WorkflowController) GetByID() {
	id, ok := w.parseID("id")
	if !ok {
		return
	}
	wf, err := w.service().GetByID(w.Ctx.Request.Context(), id)
	if err != nil {
		response.Error(w.Ctx, err)
		return
	}
	if !w.authorize(policy.WorkflowView, policy.Resource{OwnerEmployeeID: wf.EmployeeID, State: wf.Status}) {
		return
	}
	response.Success(w.Ctx, wf)
}

// Create 创建工作流
// @Summary      Create workflow
// @Tags         Workflows
// @Accept       json
// @Produce      json
// @Param        request body CreateWorkflowRequest true "Workflow"
// @Success      201  {object}  SuccessResponse{data=models.Workflow}
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /workflows [post]
// @Security     BearerAuth
func (w *WorkflowController) Create() {
	var req CreateWorkflowRequest
	if !w.bind(&req) {
		return
	}
	wf, err := w.service().Create(w.Ctx.Request.Context(), services.CreateWorkflowParams{
		Type:       req.Type,
		Status:     req.Status,
		Details:    req.Details,
		EmployeeID: req.EmployeeID,
	})
	if err != nil {
		response.Error(w.Ctx, err)
		return
	}
	response.Created(w.Ctx, wf)
}

// UpdateStatus 更新工作流状态
// @Summary      Update workflow status
// @Description  Request workflows are read-only here, they follow their request
// @Tags         Workflows
// @Accept       json
// @Produce      json
// @Param        id path int true "Workflow ID"
// @Param        request body UpdateWorkflowStatusRequest true "Status"
// @Success      200  {object}  SuccessResponse{data=models.Workflow}
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /workflows/{id}/status [put]
// @Security     BearerAuth
func (w *WorkflowController) UpdateStatus() {
	id, ok := w.parseID("id")
	if !ok {
		return
	}
	var req UpdateWorkflowStatusRequest
	if !w.bind(&req) {
		return
	}
	wf, err := w.service().UpdateStatus(w.Ctx.Request.Context(), id, req.Status)
	if err != nil {
		response.Error(w.Ctx, err)
		return
	}
	response.Success(w.Ctx, wf)
}

// HandleWorkflowFunc 返回一个处理工作流请求的Gin处理函数
func HandleWorkflowFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewWorkflowController(ctx, container)

		switch method {
		case "getAll":
			controller.GetAll()
		case "getByEmployee":
			controller.GetByEmployee()
		case "getByID":
			controller.GetByID()
		case "create":
			controller.Create()
		case "updateStatus":
			controller.UpdateStatus()
		default:
			invalidMethod(ctx)
		}
	}
}
