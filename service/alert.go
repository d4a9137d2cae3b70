package service

import (
	"fmt"
	"log"

	"ahorra/config"
	"ahorra/models"

	"gorm.io/gorm"
)

// 阈值与通知文案常量
const (
	// ThresholdReminderRatio 达到上限 80% 时发提醒
	ThresholdReminderRatio = 0.8
	// ThresholdExceededRatio 达到或超过上限时发警告
	ThresholdExceededRatio = 1.0

	// ThresholdReminder / ThresholdExceeded 通知记录中的阈值标记
	ThresholdReminder = 80
	ThresholdExceeded = 100

	reminderTitle = "预算提醒"
	exceededTitle = "预算超支"
)

// AlertService 预算警告服务
// 检查预算消费与上限的比例，跨过阈值时生成通知。
// 所有失败只记日志不上抛：警告是尽力而为的，绝不能让已成功的记账回滚。
type AlertService struct {
	db            *gorm.DB
	notifications *NotificationService
	email         *EmailService
}

// NewAlertService 创建预算警告服务
func NewAlertService(db *gorm.DB, cfg *config.Config) *AlertService {
	var email *EmailService
	if cfg != nil {
		email = NewEmailService(&cfg.Email)
	}
	return &AlertService{
		db:            db,
		notifications: NewNotificationService(db),
		email:         email,
	}
}

// CheckBudgetByID 重新加载预算后做阈值检查，记录不存在时静默返回
func (s *AlertService) CheckBudgetByID(budgetID uint) {
	var budget models.Budget
	if err := s.db.First(&budget, budgetID).Error; err != nil {
		log.Printf("警告检查失败: 加载预算 %d: %v", budgetID, err)
		return
	}
	s.CheckBudget(&budget)
}

// CheckBudget 对单条预算做阈值检查
// ratio >= 1.0 发超支警告；0.8 <= ratio < 1.0 发提醒；低于 0.8 不通知。
// 同一预算的同一阈值只通知一次（跨过 80% 后再跨过 100% 仍会发超支警告）。
func (s *AlertService) CheckBudget(budget *models.Budget) {
	ratio := budget.Ratio()

	var (
		threshold int
		kind      string
		title     string
		body      string
	)
	switch {
	case ratio >= ThresholdExceededRatio:
		threshold = ThresholdExceeded
		kind = models.NotificationKindAlert
		title = exceededTitle
		body = fmt.Sprintf("「%s」%d月预算已超支 %.2f 元（上限 %.2f 元）",
			budget.Category, budget.Month, budget.Consumed-budget.LimitAmount, budget.LimitAmount)
	case ratio >= ThresholdReminderRatio:
		threshold = ThresholdReminder
		kind = models.NotificationKindReminder
		title = reminderTitle
		body = fmt.Sprintf("「%s」%d月预算已使用 %.0f%%，请注意控制支出",
			budget.Category, budget.Month, ratio*100)
	default:
		return
	}

	// 去重：同一 (预算, 阈值) 已通知过则跳过
	var count int64
	if err := s.db.Model(&models.Notification{}).
		Where("budget_id = ? AND threshold = ?", budget.ID, threshold).
		Count(&count).Error; err != nil {
		log.Printf("警告检查失败: 查询通知 (预算 %d): %v", budget.ID, err)
		return
	}
	if count > 0 {
		return
	}

	budgetID := budget.ID
	if _, err := s.notifications.Create(budget.UserID, kind, title, body, &budgetID, threshold); err != nil {
		log.Printf("警告检查失败: 创建通知 (预算 %d): %v", budget.ID, err)
		return
	}

	// 超支时额外发邮件提醒（开启邮件服务时）
	if threshold == ThresholdExceeded && s.email != nil {
		s.sendExceededEmail(budget)
	}
}

// CheckThresholds 对某用户某周期下全部预算做阈值检查
func (s *AlertService) CheckThresholds(userID uint, month, year int) error {
	if !ValidPeriod(month, year) {
		return ErrInvalidPeriod
	}
	var budgets []models.Budget
	if err := s.db.Where("user_id = ? AND month = ? AND year = ?", userID, month, year).
		Find(&budgets).Error; err != nil {
		return fmt.Errorf("查询预算失败: %w", err)
	}
	for i := range budgets {
		s.CheckBudget(&budgets[i])
	}
	return nil
}

// sendExceededEmail 给用户发超支邮件，失败只记日志
func (s *AlertService) sendExceededEmail(budget *models.Budget) {
	var user models.User
	if err := s.db.First(&user, budget.UserID).Error; err != nil {
		log.Printf("发送超支邮件失败: 加载用户 %d: %v", budget.UserID, err)
		return
	}
	if user.Email == "" {
		return
	}
	if err := s.email.SendBudgetAlertEmail(user.Email, user.Name, budget); err != nil {
		log.Printf("发送超支邮件失败: %v", err)
	}
}
