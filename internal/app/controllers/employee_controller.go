package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/axxaxinx/user-management-final-123/internal/domain/models"
	"github.com/axxaxinx/user-management-final-123/internal/domain/policy"
	"github.com/axxaxinx/user-management-final-123/internal/domain/services"
	"github.com/axxaxinx/user-management-final-123/internal/domain/services/container"
	"github.com/axxaxinx/user-management-final-123/internal/error/apperror"
	"github.com/axxaxinx/user-management-final-123/internal/error/code"
	"github.com/axxaxinx/user-management-final-123/internal/error/response"
)

// EmployeeController 处理员工相关的请求
type EmployeeController struct {
	baseController
}

// NewEmployeeController 创建一个新的员工控制器
func NewEmployeeController(ctx *gin.Context, container *container.ServiceContainer) *EmployeeController {
	return &EmployeeController{baseController{Ctx: ctx, Container: container}}
}

// CreateEmployeeRequest 创建员工请求
type CreateEmployeeRequest struct {
	EmployeeID   string                `json:"employeeId" binding:"required" example:"EMP001"`
	AccountID    *uint                 `json:"accountId" example:"2"`
	DepartmentID *uint                 `json:"departmentId" example:"1"`
	Position     string                `json:"position" binding:"required" example:"Developer"`
	JobTitle     string                `json:"jobTitle" example:"Backend Engineer"`
	HireDate     string                `json:"hireDate" example:"2024-01-15"`
	Status       models.EmployeeStatus `json:"status" binding:"omitempty,oneof=Active Inactive OnLeave Terminated" example:"Active"`
	ReportingTo  *uint                 `json:"reportingTo" example:"1"`
}

// UpdateEmployeeRequest 更新员工请求, 0 表示清除关联
type UpdateEmployeeRequest struct {
	EmployeeID   *string                `json:"employeeId" binding:"omitempty,min=1"`
	AccountID    *uint                  `json:"accountId"`
	DepartmentID *uint                  `json:"departmentId"`
	Position     *string                `json:"position" binding:"omitempty,min=1"`
	JobTitle     *string                `json:"jobTitle"`
	HireDate     *string                `json:"hireDate"`
	Status       *models.EmployeeStatus `json:"status" binding:"omitempty,oneof=Active Inactive OnLeave Terminated"`
	ReportingTo  *uint                  `json:"reportingTo"`
}

// TransferRequest 调动部门请求
type TransferRequest struct {
	DepartmentID uint `json:"departmentId" binding:"required" example:"2"`
}

// EmployeeQuery 员工列表查询参数
type EmployeeQuery struct {
	DepartmentID *uint                 `form:"departmentId"`
	Status       models.EmployeeStatus `form:"status" binding:"omitempty,oneof=Active Inactive OnLeave Terminated"`
	Search       string                `form:"search"`
	models.Pagination
}

func (e *EmployeeController) service() services.InterfaceEmployeeService {
	return e.Container.GetService("employee").(services.InterfaceEmployeeService)
}

// GetAll 获取员工列表
// @Summary      List employees
// @Tags         Employees
// @Produce      json
// @Param        departmentId query int false "Department filter"
// @Param        status query string false "Status filter"
// @Param        search query string false "Matches employee id, position or job title"
// @Param        page query int false "Page" default(1)
// @Param        pageSize query int false "Page size" default(20)
// @Success      200  {object}  SuccessResponse{data=models.Page[models.Employee]}
// @Failure      401  {object}  ErrorResponse
// @Router       /employees [get]
// @Security     BearerAuth
func (e *EmployeeController) GetAll() {
	var query EmployeeQuery
	if err := e.Ctx.ShouldBindQuery(&query); err != nil {
		response.BindError(e.Ctx, err)
		return
	}
	page, err := e.service().GetAll(e.Ctx.Request.Context(), services.EmployeeFilter{
		DepartmentID: query.DepartmentID,
		Status:       query.Status,
		Search:       query.Search,
		Pagination:   query.Pagination,
	})
	if err != nil {
		response.Error(e.Ctx, err)
		return
	}
	response.Success(e.Ctx, page)
}

// Me 获取当前账户的员工档案
// @Summary      My employee record
// @Tags         Employees
// @Produce      json
// @Success      200  {object}  SuccessResponse{data=models.Employee}
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /employees/me [get]
// @Security     BearerAuth
func (e *EmployeeController) Me() {
	emp, err := e.service().GetByAccountID(e.Ctx.Request.Context(), e.subject().AccountID)
	if err != nil {
		response.Error(e.Ctx, err)
		return
	}
	response.Success(e.Ctx, emp)
}

// GetByID 获取员工
// @Summary      Get employee
// @Tags         Employees
// @Produce      json
// @Param        id path int true "Employee ID"
// @Success      200  {object}  SuccessResponse{data=models.Employee}
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /employees/{id} [get]
// @Security     BearerAuth
func (e *EmployeeController) GetByID() {
	id, ok := e.parseID("id")
	if !ok {
		return
	}
	if !e.authorize(policy.EmployeeView, policy.Resource{OwnerEmployeeID: &id}) {
		return
	}
	emp, err := e.service().GetByID(e.Ctx.Request.Context(), id)
	if err != nil {
		response.Error(e.Ctx, err)
		return
	}
	response.Success(e.Ctx, emp)
}

// Subordinates 获取直属下级
// @Summary      Direct reports
// @Tags         Employees
// @Produce      json
// @Param        id path int true "Employee ID"
// @Success      200  {object}  SuccessResponse{data=[]models.Employee}
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /employees/{id}/subordinates [get]
// @Security     BearerAuth
func (e *EmployeeController) Subordinates() {
	id, ok := e.parseID("id")
	if !ok {
		return
	}
	if !e.authorize(policy.EmployeeView, policy.Resource{OwnerEmployeeID: &id}) {
		return
	}
	list, err := e.service().Subordinates(e.Ctx.Request.Context(), id)
	if err != nil {
		response.Error(e.Ctx, err)
		return
	}
	response.Success(e.Ctx, list)
}

// Create 创建员工
// @Summary      Create employee
// @Description  Creates the employee and an Onboarding workflow
// @Tags         Employees
// @Accept       json
// @Produce      json
// @Param        request body CreateEmployeeRequest true "Employee"
// @Success      201  {object}  SuccessResponse{data=models.Employee}
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /employees [post]
// @Security     BearerAuth
func (e *EmployeeController) Create() {
	var req CreateEmployeeRequest
	if !e.bind(&req) {
		return
	}
	hireDate, err := parseDate(req.HireDate)
	if err != nil {
		response.Error(e.Ctx, err)
		return
	}
	emp, err := e.service().Create(e.Ctx.Request.Context(), services.CreateEmployeeParams{
		EmployeeCode: req.EmployeeID,
		AccountID:    req.AccountID,
		DepartmentID: req.DepartmentID,
		Position:     req.Position,
		JobTitle:     req.JobTitle,
		HireDate:     hireDate,
		Status:       req.Status,
		ReportingTo:  req.ReportingTo,
	})
	if err != nil {
		response.Error(e.Ctx, err)
		return
	}
	response.Created(e.Ctx, emp)
}

// Update 更新员工
// @Summary      Update employee
// @Description  Department changes add a DepartmentChange workflow, termination adds a Termination workflow
// @Tags         Employees
// @Accept       json
// @Produce      json
// @Param        id path int true "Employee ID"
// @Param        request body UpdateEmployeeRequest true "Fields to change"
// @Success      200  {object}  SuccessResponse{data=models.Employee}
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /employees/{id} [put]
// @Security     BearerAuth
func (e *EmployeeController) Update() {
	id, ok := e.parseID("id")
	if !ok {
		return
	}
	var req UpdateEmployeeRequest
	if !e.bind(&req) {
		return
	}

	params := services.UpdateEmployeeParams{
		EmployeeCode: req.EmployeeID,
		AccountID:    req.AccountID,
		DepartmentID: req.DepartmentID,
		Position:     req.Position,
		JobTitle:     req.JobTitle,
		Status:       req.Status,
		ReportingTo:  req.ReportingTo,
	}
	if req.HireDate != nil {
		hireDate, err := parseDate(*req.HireDate)
		if err != nil {
			response.Error(e.Ctx, err)
			return
		}
		params.HireDate = hireDate
	}

	emp, err := e.service().Update(e.Ctx.Request.Context(), id, params)
	if err != nil {
		response.Error(e.Ctx, err)
		return
	}
	response.Success(e.Ctx, emp)
}

// Transfer 调动部门
// @Summary      Transfer employee
// @Description  Moves the employee to another department and records a DepartmentChange workflow
// @Tags         Employees
// @Accept       json
// @Produce      json
// @Param        id path int true "Employee ID"
// @Param        request body TransferRequest true "Target department"
// @Success      200  {object}  SuccessResponse{data=models.Employee}
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /employees/{id}/transfer [post]
// @Security     BearerAuth
func (e *EmployeeController) Transfer() {
	id, ok := e.parseID("id")
	if !ok {
		return
	}
	var req TransferRequest
	if !e.bind(&req) {
		return
	}
	departments := e.Container.GetService("department").(services.InterfaceDepartmentService)
	emp, err := departments.AssignDepartment(e.Ctx.Request.Context(), id, req.DepartmentID)
	if err != nil {
		response.Error(e.Ctx, err)
		return
	}
	response.Success(e.Ctx, emp)
}

// Delete 删除员工
// @Summary      Delete employee
// @Tags         Employees
// @Produce      json
// @Param        id path int true "Employee ID"
// @Success      200  {object}  MessageResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /employees/{id} [delete]
// @Security     BearerAuth
func (e *EmployeeController) Delete() {
	id, ok := e.parseID("id")
	if !ok {
		return
	}
	if err := e.service().Delete(e.Ctx.Request.Context(), id); err != nil {
		response.Error(e.Ctx, err)
		return
	}
	response.Message(e.Ctx, "Employee deleted successfully")
}

// requireEmployee 当前账户的员工ID, 没有档案时返回错误
func requireEmployee(s policy.Subject) (uint, error) {
	if s.EmployeeID == nil {
		return 0, apperror.Validation(code.GetMessage(code.ErrNoEmployeeRecord)).WithCode(code.ErrNoEmployeeRecord)
	}
	return *s.EmployeeID, nil
}

// HandleEmployeeFunc 返回一个处理员工请求的Gin处理函数
func HandleEmployeeFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewEmployeeController(ctx, container)

		switch method {
		case "getAll":
			controller.GetAll()
		case "me":
			controller.Me()
		case "getByID":
			controller.GetByID()
		case "subordinates":
			controller.Subordinates()
		case "create":
			controller.Create()
		case "update":
			controller.Update()
		case "transfer":
			controller.Transfer()
		case "delete":
			controller.Delete()
		default:
			invalidMethod(ctx)
		}
	}
}
