package service

import (
	"errors"
	"fmt"
	"time"

	"ahorra/models"

	"gorm.io/gorm"
)

// DefaultPurgeDays 批量清理通知时的默认保留天数
const DefaultPurgeDays = 30

// NotificationService 通知服务
// 通知只有两个状态变化：未读 -> 已读（单向）、删除（硬删除语义）。
type NotificationService struct {
	db *gorm.DB
}

// NewNotificationService 创建通知服务
func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// Create 创建通知
// budgetID/threshold 仅预算警告类通知使用，其余传 nil/0。
func (s *NotificationService) Create(userID uint, kind, title, body string, budgetID *uint, threshold int) (*models.Notification, error) {
	notification := models.Notification{
		UserID:    userID,
		BudgetID:  budgetID,
		Kind:      kind,
		Threshold: threshold,
		Title:     title,
		Body:      body,
	}
	if err := s.db.Create(&notification).Error; err != nil {
		return nil, fmt.Errorf("创建通知失败: %w", err)
	}
	return &notification, nil
}

// List 分页获取通知，onlyUnread 为 true 时只返回未读
func (s *NotificationService) List(userID uint, page, pageSize int, onlyUnread bool) ([]models.Notification, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	query := s.db.Model(&models.Notification{}).Where("user_id = ?", userID)
	if onlyUnread {
		query = query.Where("`read` = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("查询通知失败: %w", err)
	}

	var notifications []models.Notification
	offset := (page - 1) * pageSize
	if err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&notifications).Error; err != nil {
		return nil, 0, fmt.Errorf("查询通知失败: %w", err)
	}
	return notifications, total, nil
}

// MarkAsRead 标记单条通知为已读
func (s *NotificationService) MarkAsRead(userID, id uint) error {
	var notification models.Notification
	if err := s.db.Where("id = ? AND user_id = ?", id, userID).First(&notification).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("查询通知失败: %w", err)
	}
	if notification.Read {
		return nil
	}
	if err := s.db.Model(&notification).Update("read", true).Error; err != nil {
		return fmt.Errorf("更新通知失败: %w", err)
	}
	return nil
}

// MarkAllAsRead 标记全部通知为已读，返回更新条数
func (s *NotificationService) MarkAllAsRead(userID uint) (int64, error) {
	result := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND `read` = ?", userID, false).
		Update("read", true)
	if result.Error != nil {
		return 0, fmt.Errorf("更新通知失败: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// Delete 删除单条通知
func (s *NotificationService) Delete(userID, id uint) error {
	var notification models.Notification
	if err := s.db.Where("id = ? AND user_id = ?", id, userID).First(&notification).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("查询通知失败: %w", err)
	}
	if err := s.db.Delete(&notification).Error; err != nil {
		return fmt.Errorf("删除通知失败: %w", err)
	}
	return nil
}

// DeleteOlderThan 批量删除超过保留期的通知，days <= 0 时使用默认 30 天
func (s *NotificationService) DeleteOlderThan(userID uint, days int) (int64, error) {
	if days <= 0 {
		days = DefaultPurgeDays
	}
	cutoff := time.Now().AddDate(0, 0, -days)
	result := s.db.Where("user_id = ? AND created_at < ?", userID, cutoff).
		Delete(&models.Notification{})
	if result.Error != nil {
		return 0, fmt.Errorf("清理通知失败: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// CountUnread 统计未读通知数
func (s *NotificationService) CountUnread(userID uint) (int64, error) {
	var count int64
	if err := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND `read` = ?", userID, false).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("查询通知失败: %w", err)
	}
	return count, nil
}
