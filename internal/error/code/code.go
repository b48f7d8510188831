package code

// HTTP状态码.
const (
	// StatusOK - 200: 成功.
	StatusOK = 200
	// StatusCreated - 201: 已创建.
	StatusCreated = 201
	// StatusBadRequest - 400: 请求参数错误.
	StatusBadRequest = 400
	// StatusUnauthorized - 401: 未认证或无权限.
	StatusUnauthorized = 401
	// StatusNotFound - 404: 资源不存在.
	StatusNotFound = 404
	// StatusConflict - 409: 资源冲突.
	StatusConflict = 409
	// StatusTooManyRequests - 429: 请求过多.
	StatusTooManyRequests = 429
	// StatusInternalServerError - 500: 服务器内部错误.
	StatusInternalServerError = 500
)

// 通用错误码 (100xxx).
const (
	// ErrSuccess - 200: 成功.
	ErrSuccess int = iota + 100000
	// ErrUnknown - 500: 未知错误.
	ErrUnknown
	// ErrBind - 400: 请求参数绑定错误.
	ErrBind
	// ErrValidation - 400: 请求参数验证错误.
	ErrValidation
	// ErrTokenInvalid - 401: 令牌无效.
	ErrTokenInvalid
	// ErrTooManyRequests - 429: 请求频率过高.
	ErrTooManyRequests
	// ErrUnauthorized - 401: 无权执行该操作.
	ErrUnauthorized
	// ErrInvalidState - 400: 资源状态不允许该操作.
	ErrInvalidState
	// ErrConflict - 409: 资源冲突.
	ErrConflict
	// ErrNotFound - 404: 资源不存在.
	ErrNotFound
)

// 账户相关错误码 (101xxx).
const (
	// ErrAccountNotFound - 404: 账户不存在.
	ErrAccountNotFound int = iota + 101000
	// ErrEmailAlreadyRegistered - 409: 邮箱已注册.
	ErrEmailAlreadyRegistered
	// ErrCredentialsIncorrect - 401: 邮箱或密码错误.
	ErrCredentialsIncorrect
	// ErrRefreshTokenInvalid - 401: 刷新令牌无效.
	ErrRefreshTokenInvalid
	// ErrVerificationFailed - 400: 邮箱验证失败.
	ErrVerificationFailed
	// ErrResetTokenInvalid - 400: 重置令牌无效.
	ErrResetTokenInvalid
)

// 员工相关错误码 (102xxx).
const (
	// ErrEmployeeNotFound - 404: 员工不存在.
	ErrEmployeeNotFound int = iota + 102000
	// ErrEmployeeIDTaken - 409: 员工编号已存在.
	ErrEmployeeIDTaken
	// ErrInvalidManager - 400: 汇报对象无效.
	ErrInvalidManager
	// ErrAccountAlreadyLinked - 409: 账户已关联员工.
	ErrAccountAlreadyLinked
)

// 部门相关错误码 (103xxx).
const (
	// ErrDepartmentNotFound - 404: 部门不存在.
	ErrDepartmentNotFound int = iota + 103000
	// ErrDepartmentExists - 409: 部门名称已存在.
	ErrDepartmentExists
)

// 申请相关错误码 (104xxx).
const (
	// ErrRequestNotFound - 404: 申请不存在.
	ErrRequestNotFound int = iota + 104000
	// ErrRequestItemNotFound - 404: 申请条目不存在.
	ErrRequestItemNotFound
	// ErrRequestNotPending - 400: 申请不是待审批状态.
	ErrRequestNotPending
	// ErrNoEmployeeRecord - 400: 当前账户没有员工档案.
	ErrNoEmployeeRecord
)

// 工作流相关错误码 (105xxx).
const (
	// ErrWorkflowNotFound - 404: 工作流不存在.
	ErrWorkflowNotFound int = iota + 105000
)

// 数据库相关错误码 (106xxx).
const (
	// ErrDatabase - 500: 数据库错误.
	ErrDatabase int = iota + 106000
	// ErrRecordNotFound - 404: 记录不存在.
	ErrRecordNotFound
)
