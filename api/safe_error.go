package api

import (
	"errors"

	"ahorra/config"
	"ahorra/service"

	"github.com/gin-gonic/gin"
)

// SafeErrorMessage 生产环境下不向客户端暴露内部错误详情，避免信息泄露
func SafeErrorMessage(err error, fallback string) string {
	return config.SafeErrorMessage(err, fallback)
}

// ServiceError 把服务层领域错误映射为对应的 HTTP 响应
// 校验类错误返回 400，记录不存在返回 404，其余视为存储层错误返回 500。
func ServiceError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInvalidKind),
		errors.Is(err, service.ErrInvalidPeriod),
		errors.Is(err, service.ErrInvalidCategory),
		errors.Is(err, service.ErrDuplicateBudget):
		BadRequest(c, err.Error())
	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, service.ErrNotFoundOrForbidden):
		NotFound(c, err.Error())
	default:
		InternalError(c, SafeErrorMessage(err, fallback))
	}
}
