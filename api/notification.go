package api

import (
	"strconv"

	"ahorra/database"
	"ahorra/middleware"
	"ahorra/service"

	"github.com/gin-gonic/gin"
)

// NotificationHandler 通知处理器
type NotificationHandler struct{}

// NewNotificationHandler 创建通知处理器
func NewNotificationHandler() *NotificationHandler {
	return &NotificationHandler{}
}

// NotificationListRequest 通知列表请求
type NotificationListRequest struct {
	Page       int  `form:"page" example:"1"`
	PageSize   int  `form:"page_size" example:"20"`
	OnlyUnread bool `form:"only_unread" example:"false"`
}

// List 获取通知列表
// @Summary 获取通知列表
// @Description 获取当前用户的通知列表，按时间倒序，支持只看未读
// @Tags 通知
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Param only_unread query bool false "只返回未读"
// @Success 200 {object} Response{data=PageResponse{list=[]models.Notification}} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req NotificationListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	notifications, total, err := service.NewNotificationService(database.DB).List(userID, req.Page, req.PageSize, req.OnlyUnread)
	if err != nil {
		ServiceError(c, err, "查询失败")
		return
	}

	page := req.Page
	if page <= 0 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	Success(c, PageResponse{
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		List:     notifications,
	})
}

// UnreadCount 获取未读通知数
// @Summary 获取未读通知数
// @Description 获取当前用户的未读通知数量，用于角标展示
// @Tags 通知
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/notifications/unread-count [get]
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	count, err := service.NewNotificationService(database.DB).CountUnread(userID)
	if err != nil {
		ServiceError(c, err, "查询失败")
		return
	}

	Success(c, gin.H{"unread_count": count})
}

// MarkAsRead 标记通知为已读
// @Summary 标记通知为已读
// @Description 标记单条通知为已读，已读状态不可逆
// @Tags 通知
// @Produce json
// @Security BearerAuth
// @Param id path int true "通知ID"
// @Success 200 {object} Response "标记成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/notifications/{id}/read [put]
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	if err := service.NewNotificationService(database.DB).MarkAsRead(userID, uint(id)); err != nil {
		ServiceError(c, err, "标记失败")
		return
	}

	SuccessWithMessage(c, "标记成功", nil)
}

// MarkAllAsRead 标记全部通知为已读
// @Summary 标记全部通知为已读
// @Description 把当前用户的全部未读通知标记为已读
// @Tags 通知
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response "标记成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/notifications/read-all [put]
func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	updated, err := service.NewNotificationService(database.DB).MarkAllAsRead(userID)
	if err != nil {
		ServiceError(c, err, "标记失败")
		return
	}

	SuccessWithMessage(c, "标记成功", gin.H{"updated": updated})
}

// Delete 删除通知
// @Summary 删除通知
// @Description 删除单条通知
// @Tags 通知
// @Produce json
// @Security BearerAuth
// @Param id path int true "通知ID"
// @Success 200 {object} Response "删除成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/notifications/{id} [delete]
func (h *NotificationHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	if err := service.NewNotificationService(database.DB).Delete(userID, uint(id)); err != nil {
		ServiceError(c, err, "删除失败")
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}

// Purge 批量清理旧通知
// @Summary 批量清理旧通知
// @Description 删除超过保留天数的通知，days 省略时默认 30 天
// @Tags 通知
// @Produce json
// @Security BearerAuth
// @Param days query int false "保留天数" default(30)
// @Success 200 {object} Response "清理完成"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/notifications/purge [delete]
func (h *NotificationHandler) Purge(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	days := 0
	if s := c.Query("days"); s != "" {
		d, err := strconv.Atoi(s)
		if err != nil || d < 0 {
			BadRequest(c, "days 参数错误")
			return
		}
		days = d
	}

	deleted, err := service.NewNotificationService(database.DB).DeleteOlderThan(userID, days)
	if err != nil {
		ServiceError(c, err, "清理失败")
		return
	}

	SuccessWithMessage(c, "清理完成", gin.H{"deleted": deleted})
}
