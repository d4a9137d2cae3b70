package api

import (
	"strconv"
	"strings"
	"time"

	"ahorra/config"
	"ahorra/database"
	"ahorra/middleware"
	"ahorra/models"
	"ahorra/service"

	"github.com/gin-gonic/gin"
)

// TransactionHandler 收支记录处理器
type TransactionHandler struct{}

// NewTransactionHandler 创建收支记录处理器
func NewTransactionHandler() *TransactionHandler {
	return &TransactionHandler{}
}

// transactionService 每次请求时基于当前数据库句柄构建服务
func transactionService() *service.TransactionService {
	db := database.GetDB()
	return service.NewTransactionService(db, service.NewAlertService(db, config.GetConfig()))
}

// CreateTransactionRequest 创建收支记录请求
type CreateTransactionRequest struct {
	Kind        string  `json:"kind" binding:"required" example:"expense"`
	Amount      float64 `json:"amount" binding:"required,gt=0" example:"99.99"`
	Description string  `json:"description" example:"午餐"`
	Category    string  `json:"category" binding:"required" example:"餐饮"`
	Icon        string  `json:"icon" example:"food"`
	OccurredAt  string  `json:"occurred_at" example:"2025-11-15 12:30:00"` // 省略时默认当前时间
}

// UpdateTransactionRequest 更新收支记录请求
type UpdateTransactionRequest struct {
	Kind        string  `json:"kind" binding:"required" example:"expense"`
	Amount      float64 `json:"amount" binding:"required,gt=0" example:"99.99"`
	Description string  `json:"description" example:"午餐"`
	Category    string  `json:"category" binding:"required" example:"餐饮"`
	Icon        string  `json:"icon" example:"food"`
	OccurredAt  string  `json:"occurred_at" example:"2025-11-15 12:30:00"`
}

// TransactionListRequest 收支记录列表请求
type TransactionListRequest struct {
	Page      int    `form:"page" example:"1"`
	PageSize  int    `form:"page_size" example:"10"`
	Kind      string `form:"kind" example:"expense"`
	Category  string `form:"category" example:"餐饮"`
	StartTime string `form:"start_time" example:"2025-11-01"`
	EndTime   string `form:"end_time" example:"2025-11-30"`
}

// Create 创建收支记录
// @Summary 创建收支记录
// @Description 创建一条收入或支出记录；支出会自动累计到同月同类别的预算上并触发阈值检查
// @Tags 收支记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTransactionRequest true "收支记录信息"
// @Success 200 {object} Response{data=models.Transaction} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/transactions [post]
func (h *TransactionHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	var occurredAt time.Time
	if req.OccurredAt != "" {
		t, err := time.ParseInLocation("2006-01-02 15:04:05", req.OccurredAt, time.Local)
		if err != nil {
			BadRequest(c, "时间格式错误，应为: 2006-01-02 15:04:05")
			return
		}
		occurredAt = t
	}

	txn, err := transactionService().Create(userID, req.Kind, req.Amount, req.Description, req.Category, req.Icon, occurredAt)
	if err != nil {
		ServiceError(c, err, "创建收支记录失败")
		return
	}

	SuccessWithMessage(c, "创建成功", txn)
}

// List 获取收支记录列表
// @Summary 获取收支记录列表
// @Description 获取当前用户的收支记录列表，支持分页与类型/类别/时间范围筛选
// @Tags 收支记录
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Param kind query string false "类型筛选 (income/expense)"
// @Param category query string false "类别筛选"
// @Param start_time query string false "开始时间 (2025-11-01)"
// @Param end_time query string false "结束时间 (2025-11-30)"
// @Success 200 {object} Response{data=PageResponse{list=[]models.Transaction}} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/transactions [get]
func (h *TransactionHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req TransactionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	filter := service.TransactionFilter{
		Kind:     strings.TrimSpace(req.Kind),
		Category: strings.TrimSpace(req.Category),
	}
	if req.StartTime != "" {
		if t, err := time.ParseInLocation("2006-01-02", req.StartTime, time.Local); err == nil {
			filter.StartTime = t
		}
	}
	if req.EndTime != "" {
		if t, err := time.ParseInLocation("2006-01-02", req.EndTime, time.Local); err == nil {
			// 包含结束日期当天
			filter.EndTime = t.Add(24*time.Hour - time.Second)
		}
	}

	txns, total, err := transactionService().List(userID, req.Page, req.PageSize, filter)
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
		pageSize = 10
	}
	Success(c, PageResponse{
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		List:     txns,
	})
}

// Get 获取单条收支记录
// @Summary 获取单条收支记录
// @Description 根据ID获取收支记录详情
// @Tags 收支记录
// @Produce json
// @Security BearerAuth
// @Param id path int true "收支记录ID"
// @Success 200 {object} Response{data=models.Transaction} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/transactions/{id} [get]
func (h *TransactionHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	txn, err := transactionService().Get(userID, uint(id))
	if err != nil {
		ServiceError(c, err, "查询失败")
		return
	}

	Success(c, txn)
}

// Update 更新收支记录
// @Summary 更新收支记录
// @Description 更新指定的收支记录；旧支出的预算贡献会被扣除，新值重新计入，保持账目一致
// @Tags 收支记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "收支记录ID"
// @Param request body UpdateTransactionRequest true "收支记录信息"
// @Success 200 {object} Response{data=models.Transaction} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/transactions/{id} [put]
func (h *TransactionHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	var occurredAt time.Time
	if req.OccurredAt != "" {
		t, err := time.ParseInLocation("2006-01-02 15:04:05", req.OccurredAt, time.Local)
		if err != nil {
			BadRequest(c, "时间格式错误，应为: 2006-01-02 15:04:05")
			return
		}
		occurredAt = t
	}

	txn, err := transactionService().Update(userID, uint(id), req.Kind, req.Amount, req.Description, req.Category, req.Icon, occurredAt)
	if err != nil {
		ServiceError(c, err, "更新失败")
		return
	}

	SuccessWithMessage(c, "更新成功", txn)
}

// Delete 删除收支记录
// @Summary 删除收支记录
// @Description 删除属于自己的收支记录；支出删除时同步扣减对应预算的消费
// @Tags 收支记录
// @Produce json
// @Security BearerAuth
// @Param id path int true "收支记录ID"
// @Success 200 {object} Response "删除成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在或无权操作"
// @Router /api/v1/transactions/{id} [delete]
func (h *TransactionHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	if err := transactionService().Delete(userID, uint(id)); err != nil {
		ServiceError(c, err, "删除失败")
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}

// GetStatistics 获取支出统计
// @Summary 获取支出统计
// @Description 获取指定时间范围内按类别汇总的支出统计
// @Tags 收支记录
// @Produce json
// @Security BearerAuth
// @Param start_time query string false "开始时间 (2025-11-01)"
// @Param end_time query string false "结束时间 (2025-11-30)"
// @Success 200 {object} Response "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/transactions/statistics [get]
func (h *TransactionHandler) GetStatistics(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	query := database.DB.Model(&models.Transaction{}).
		Where("user_id = ? AND kind = ?", userID, models.KindExpense)

	if s := c.Query("start_time"); s != "" {
		if t, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
			query = query.Where("occurred_at >= ?", t)
		}
	}
	if s := c.Query("end_time"); s != "" {
		if t, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
			t = t.Add(24*time.Hour - time.Second)
			query = query.Where("occurred_at <= ?", t)
		}
	}

	// 总金额
	var totalAmount float64
	query.Select("COALESCE(SUM(amount), 0)").Scan(&totalAmount)

	// 按类别统计
	type CategoryStat struct {
		Category string  `json:"category"`
		Total    float64 `json:"total"`
		Count    int64   `json:"count"`
	}
	var categoryStats []CategoryStat
	query.Select("category, SUM(amount) as total, COUNT(*) as count").
		Group("category").
		Order("total DESC").
		Scan(&categoryStats)

	Success(c, gin.H{
		"total_amount":   totalAmount,
		"category_stats": categoryStats,
	})
}

// SummaryResponse 收支汇总返回
type SummaryResponse struct {
	TotalExpense float64 `json:"total_expense" example:"123.45"` // 支出总和
	TotalIncome  float64 `json:"total_income" example:"5000.00"` // 收入总和
}

// GetSummary 获取收支汇总
// @Summary 获取收支汇总
// @Description 统计当前用户全部收入与支出的总和
// @Tags 收支记录
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=SummaryResponse} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/transactions/summary [get]
func (h *TransactionHandler) GetSummary(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	svc := transactionService()
	totalExpense, err := svc.TotalByKind(userID, models.KindExpense)
	if err != nil {
		ServiceError(c, err, "统计失败")
		return
	}
	totalIncome, err := svc.TotalByKind(userID, models.KindIncome)
	if err != nil {
		ServiceError(c, err, "统计失败")
		return
	}

	Success(c, SummaryResponse{
		TotalExpense: totalExpense,
		TotalIncome:  totalIncome,
	})
}
