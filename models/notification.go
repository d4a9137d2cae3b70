package models

import (
	"time"

	"gorm.io/gorm"
)

// 通知类型常量
const (
	NotificationKindAlert       = "alert"       // 预算超支警告
	NotificationKindReminder    = "reminder"    // 预算接近上限提醒
	NotificationKindAchievement = "achievement" // 达成类消息
	NotificationKindInfo        = "info"        // 普通信息
)

// Notification 通知模型
// BudgetID 与 Threshold 用于预算警告去重：同一预算的同一阈值只通知一次。
type Notification struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	UserID    uint           `json:"user_id" gorm:"index;not null"`
	BudgetID  *uint          `json:"budget_id,omitempty" gorm:"index"`
	Kind      string         `json:"kind" gorm:"size:20;not null;index"`
	Threshold int            `json:"threshold,omitempty" gorm:"default:0"` // 0/80/100
	Title     string         `json:"title" gorm:"size:100;not null"`
	Body      string         `json:"body" gorm:"size:255"`
	Read      bool           `json:"read" gorm:"default:false;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
	User      User           `json:"-" gorm:"foreignKey:UserID"`
}

// TableName 设置表名
func (Notification) TableName() string {
	return "notifications"
}
