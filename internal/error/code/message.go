package code

// 错误码消息映射
var codeMessageMap = map[int]string{
	// 通用错误码
	ErrSuccess:         "Success",
	ErrUnknown:         "Internal server error",
	ErrBind:            "Invalid request body",
	ErrValidation:      "Validation error",
	ErrTokenInvalid:    "Unauthorized",
	ErrTooManyRequests: "Too many requests, please try again later",
	ErrUnauthorized:    "Unauthorized",
	ErrInvalidState:    "Operation not allowed in the current state",
	ErrConflict:        "Resource already exists",
	ErrNotFound:        "Resource not found",

	// 账户相关错误码
	ErrAccountNotFound:        "Account not found",
	ErrEmailAlreadyRegistered: "Email is already registered",
	ErrCredentialsIncorrect:   "Email or password is incorrect",
	ErrRefreshTokenInvalid:    "Invalid token",
	ErrVerificationFailed:     "Verification failed",
	ErrResetTokenInvalid:      "Invalid token",

	// 员工相关错误码
	ErrEmployeeNotFound:     "Employee not found",
	ErrEmployeeIDTaken:      "Employee ID already exists",
	ErrInvalidManager:       "Invalid reporting manager",
	ErrAccountAlreadyLinked: "Account is already linked to an employee",

	// 部门相关错误码
	ErrDepartmentNotFound: "Department not found",
	ErrDepartmentExists:   "Department already exists",

	// 申请相关错误码
	ErrRequestNotFound:     "Request not found",
	ErrRequestItemNotFound: "Request item not found",
	ErrRequestNotPending:   "Request is not pending",
	ErrNoEmployeeRecord:    "No employee record found for this account",

	// 工作流相关错误码
	ErrWorkflowNotFound: "Workflow not found",

	// 数据库相关错误码
	ErrDatabase:       "Database error",
	ErrRecordNotFound: "Record not found",
}

// 错误码HTTP状态码映射
var codeStatusMap = map[int]int{
	// 通用错误码
	ErrSuccess:         StatusOK,
	ErrUnknown:         StatusInternalServerError,
	ErrBind:            StatusBadRequest,
	ErrValidation:      StatusBadRequest,
	ErrTokenInvalid:    StatusUnauthorized,
	ErrTooManyRequests: StatusTooManyRequests,
	ErrUnauthorized:    StatusUnauthorized,
	ErrInvalidState:    StatusBadRequest,
	ErrConflict:        StatusConflict,
	ErrNotFound:        StatusNotFound,

	// 账户相关错误码
	ErrAccountNotFound:        StatusNotFound,
	ErrEmailAlreadyRegistered: StatusConflict,
	ErrCredentialsIncorrect:   StatusUnauthorized,
	ErrRefreshTokenInvalid:    StatusUnauthorized,
	ErrVerificationFailed:     StatusBadRequest,
	ErrResetTokenInvalid:      StatusBadRequest,

	// 员工相关错误码
	ErrEmployeeNotFound:     StatusNotFound,
	ErrEmployeeIDTaken:      StatusConflict,
	ErrInvalidManager:       StatusBadRequest,
	ErrAccountAlreadyLinked: StatusConflict,

	// 部门相关错误码
	ErrDepartmentNotFound: StatusNotFound,
	ErrDepartmentExists:   StatusConflict,

	// 申请相关错误码
	ErrRequestNotFound:     StatusNotFound,
	ErrRequestItemNotFound: StatusNotFound,
	ErrRequestNotPending:   StatusBadRequest,
	ErrNoEmployeeRecord:    StatusBadRequest,

	// 工作流相关错误码
	ErrWorkflowNotFound: StatusNotFound,

	// 数据库相关错误码
	ErrDatabase:       StatusInternalServerError,
	ErrRecordNotFound: StatusNotFound,
}

// GetMessage 获取错误码对应的消息
func GetMessage(code int) string {
	if msg, ok := codeMessageMap[code]; ok {
		return msg
	}
	return "Unknown error"
}

// GetStatus 获取错误码对应的HTTP状态码
func GetStatus(code int) int {
	if status, ok := codeStatusMap[code]; ok {
		return status
	}
	return StatusInternalServerError
}
