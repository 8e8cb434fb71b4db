package response

const CodeSuccess int32 = 200

var (
	ErrInvalidRequest     = newError(40000, "请求参数错误")
	ErrOwnerCannotRequest = newError(40001, "活动创建者不能申请参加自己的活动")
	ErrTooEarly           = newError(40002, "当前时间不允许该操作")
	ErrInvalidTransition  = newError(40003, "不允许的状态变更")

	ErrUnauthorized    = newError(40100, "未登录")
	ErrTokenInvalid    = newError(40101, "登录凭证无效")
	ErrInvalidPassword = newError(40102, "用户名或密码错误")

	ErrForbidden     = newError(40300, "无权限")
	ErrAgeRestricted = newError(40301, "该活动仅限成年人参加")

	ErrNotFound = newError(40400, "资源不存在")

	ErrAlreadyExists    = newError(40900, "资源已存在")
	ErrCapacityExceeded = newError(40901, "活动名额已满")
	ErrDuplicateReview  = newError(40902, "已经评价过了")

	ErrServerInternal = newError(50000, "服务器内部错误")
	ErrDatabase       = newError(50001, "数据库错误")
)
