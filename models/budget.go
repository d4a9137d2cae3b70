package models

import (
	"time"

	"gorm.io/gorm"
)

// Budget 预算模型
// 同一用户在同一月份下每个类别最多一条预算（应用层保证，类别比较忽略大小写）。
// Consumed 为派生值：等于该周期内匹配类别的支出记录金额之和。
type Budget struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	UserID      uint           `json:"user_id" gorm:"index;not null"`
	Category    string         `json:"category" gorm:"size:50;not null"`
	LimitAmount float64        `json:"limit" gorm:"column:limit_amount;type:decimal(10,2);not null"`
	Consumed    float64        `json:"consumed" gorm:"type:decimal(10,2);not null;default:0"`
	Month       int            `json:"month" gorm:"not null;index:idx_budget_period"` // 1-12
	Year        int            `json:"year" gorm:"not null;index:idx_budget_period"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
	User        User           `json:"-" gorm:"foreignKey:UserID"`
}

// TableName 设置表名
func (Budget) TableName() string {
	return "budgets"
}

// Ratio 消费占预算上限的比例，上限非法时返回 0
func (b *Budget) Ratio() float64 {
	if b.LimitAmount <= 0 {
		return 0
	}
	return b.Consumed / b.LimitAmount
}
