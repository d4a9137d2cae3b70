package service

import "errors"

// 领域错误，由各自持有不变量的服务返回；存储层错误用 %w 包装后向上传递。
var (
	// ErrInvalidAmount 金额/预算上限必须大于 0
	ErrInvalidAmount = errors.New("金额必须大于 0")
	// ErrInvalidKind 收支类型必须为 income 或 expense
	ErrInvalidKind = errors.New("无效的收支类型")
	// ErrInvalidPeriod 月份必须在 1-12 之间
	ErrInvalidPeriod = errors.New("无效的预算周期")
	// ErrInvalidCategory 类别不能为空
	ErrInvalidCategory = errors.New("类别不能为空")
	// ErrDuplicateBudget 同一用户同一周期下类别预算已存在
	ErrDuplicateBudget = errors.New("该类别在此月份已有预算")
	// ErrNotFound 记录不存在
	ErrNotFound = errors.New("记录不存在")
	// ErrNotFoundOrForbidden 记录不存在或不属于当前用户
	ErrNotFoundOrForbidden = errors.New("记录不存在或无权操作")
)
