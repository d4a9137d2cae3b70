package api

import (
	"fmt"
	"strconv"

	"ahorra/config"
	"ahorra/database"
	"ahorra/middleware"
	"ahorra/models"
	"ahorra/service"

	"github.com/gin-gonic/gin"
)

// BudgetHandler 预算处理器
type BudgetHandler struct{}

// NewBudgetHandler 创建预算处理器
func NewBudgetHandler() *BudgetHandler {
	return &BudgetHandler{}
}

// CreateBudgetRequest 创建预算请求
type CreateBudgetRequest struct {
	Category string  `json:"category" binding:"required" example:"餐饮"`
	Limit    float64 `json:"limit" binding:"required,gt=0" example:"500"`
	Month    int     `json:"month" binding:"required,min=1,max=12" example:"11"`
	Year     int     `json:"year" binding:"required" example:"2025"`
}

// UpdateBudgetRequest 修改预算上限请求
type UpdateBudgetRequest struct {
	Limit float64 `json:"limit" binding:"required,gt=0" example:"800"`
}

// PeriodRequest 预算周期参数
// 周期始终显式传入，核心逻辑不依赖系统时钟推断"当前月份"。
type PeriodRequest struct {
	Month int `json:"month" form:"month" binding:"required,min=1,max=12" example:"11"`
	Year  int `json:"year" form:"year" binding:"required" example:"2025"`
}

// Create 创建预算
// @Summary 创建预算
// @Description 为指定类别设置某月的支出上限，同一类别同一月份只能有一条预算
// @Tags 预算
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateBudgetRequest true "预算信息"
// @Success 200 {object} Response{data=models.Budget} "创建成功"
// @Failure 400 {object} Response "参数错误或预算已存在"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/budgets [post]
func (h *BudgetHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	budget, err := service.NewBudgetService(database.DB).Create(userID, req.Category, req.Limit, req.Month, req.Year)
	if err != nil {
		ServiceError(c, err, "创建预算失败")
		return
	}

	// 创建确认通知尽力而为
	_, _ = service.NewNotificationService(database.DB).Create(
		userID, models.NotificationKindInfo, "预算已创建",
		fmt.Sprintf("「%s」%d年%d月预算上限 %.2f 元", budget.Category, budget.Year, budget.Month, budget.LimitAmount),
		nil, 0)

	SuccessWithMessage(c, "创建成功", budget)
}

// List 获取某周期的预算列表
// @Summary 获取预算列表
// @Description 获取当前用户某月的全部预算及消费进度
// @Tags 预算
// @Produce json
// @Security BearerAuth
// @Param month query int true "月份 (1-12)"
// @Param year query int true "年份"
// @Success 200 {object} Response{data=[]models.Budget} "获取成功"
// @Failure 400 {object} Response "参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/budgets [get]
func (h *BudgetHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req PeriodRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	budgets, err := service.NewBudgetService(database.DB).ListForPeriod(userID, req.Month, req.Year)
	if err != nil {
		ServiceError(c, err, "查询失败")
		return
	}

	Success(c, budgets)
}

// Get 获取单条预算
// @Summary 获取单条预算
// @Description 根据ID获取预算详情
// @Tags 预算
// @Produce json
// @Security BearerAuth
// @Param id path int true "预算ID"
// @Success 200 {object} Response{data=models.Budget} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/budgets/{id} [get]
func (h *BudgetHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	budget, err := service.NewBudgetService(database.DB).Get(userID, uint(id))
	if err != nil {
		ServiceError(c, err, "查询失败")
		return
	}

	Success(c, budget)
}

// UpdateLimit 修改预算上限
// @Summary 修改预算上限
// @Description 调整预算上限，不影响已累计的消费金额；调整后立即重新做阈值检查
// @Tags 预算
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "预算ID"
// @Param request body UpdateBudgetRequest true "新的上限"
// @Success 200 {object} Response{data=models.Budget} "修改成功"
// @Failure 400 {object} Response "参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/budgets/{id} [put]
func (h *BudgetHandler) UpdateLimit(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var req UpdateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	svc := service.NewBudgetService(database.DB)
	if err := svc.UpdateLimit(userID, uint(id), req.Limit); err != nil {
		ServiceError(c, err, "修改失败")
		return
	}

	// 上限变化可能让比例跨过阈值
	service.NewAlertService(database.DB, config.GetConfig()).CheckBudgetByID(uint(id))

	budget, err := svc.Get(userID, uint(id))
	if err != nil {
		ServiceError(c, err, "查询失败")
		return
	}
	SuccessWithMessage(c, "修改成功", budget)
}

// Delete 删除预算
// @Summary 删除预算
// @Description 删除指定预算，不会级联删除收支记录
// @Tags 预算
// @Produce json
// @Security BearerAuth
// @Param id path int true "预算ID"
// @Success 200 {object} Response "删除成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/budgets/{id} [delete]
func (h *BudgetHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	svc := service.NewBudgetService(database.DB)
	budget, err := svc.Get(userID, uint(id))
	if err != nil {
		ServiceError(c, err, "查询失败")
		return
	}

	if err := svc.Delete(userID, uint(id)); err != nil {
		ServiceError(c, err, "删除失败")
		return
	}

	_, _ = service.NewNotificationService(database.DB).Create(
		userID, models.NotificationKindInfo, "预算已删除",
		fmt.Sprintf("「%s」%d年%d月的预算已删除", budget.Category, budget.Year, budget.Month),
		nil, 0)

	SuccessWithMessage(c, "删除成功", nil)
}

// Recalculate 重算某周期的预算消费
// @Summary 重算预算消费
// @Description 以收支记录为准重算某月每条预算的 consumed，用于修复账目漂移；幂等，可随时调用
// @Tags 预算
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body PeriodRequest true "预算周期"
// @Success 200 {object} Response{data=[]models.Budget} "重算完成，返回该周期最新预算"
// @Failure 400 {object} Response "参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/budgets/recalculate [post]
func (h *BudgetHandler) Recalculate(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req PeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	if err := service.NewRecalcService(database.DB).RecalculateForPeriod(userID, req.Month, req.Year); err != nil {
		ServiceError(c, err, "重算失败")
		return
	}

	budgets, err := service.NewBudgetService(database.DB).ListForPeriod(userID, req.Month, req.Year)
	if err != nil {
		ServiceError(c, err, "查询失败")
		return
	}
	SuccessWithMessage(c, "重算完成", budgets)
}

// CheckThresholds 对某周期的预算做阈值检查
// @Summary 预算阈值检查
// @Description 检查某月全部预算的消费比例，跨过 80%%/100%% 阈值时生成通知（同一阈值不重复通知）
// @Tags 预算
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body PeriodRequest true "预算周期"
// @Success 200 {object} Response "检查完成"
// @Failure 400 {object} Response "参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/budgets/check [post]
func (h *BudgetHandler) CheckThresholds(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req PeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	if err := service.NewAlertService(database.DB, config.GetConfig()).CheckThresholds(userID, req.Month, req.Year); err != nil {
		ServiceError(c, err, "检查失败")
		return
	}

	SuccessWithMessage(c, "检查完成", nil)
}
