package models

import (
	"time"

	"gorm.io/gorm"
)

// 收支类型常量
const (
	KindIncome  = "income"
	KindExpense = "expense"
)

// Transaction 收支记录模型
// 记账数据的权威来源：预算的 consumed 字段是由本表派生的缓存值。
type Transaction struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	UserID      uint           `json:"user_id" gorm:"index;not null"`
	Kind        string         `json:"kind" gorm:"size:10;not null;index"` // income / expense
	Amount      float64        `json:"amount" gorm:"type:decimal(10,2);not null"`
	Description string         `json:"description" gorm:"size:255"`
	Category    string         `json:"category" gorm:"size:50;not null"`
	Icon        string         `json:"icon" gorm:"size:50"`
	OccurredAt  time.Time      `json:"occurred_at" gorm:"not null;index"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
	User        User           `json:"-" gorm:"foreignKey:UserID"`
}

// TableName 设置表名
func (Transaction) TableName() string {
	return "transactions"
}

// IsValidKind 校验收支类型
func IsValidKind(kind string) bool {
	return kind == KindIncome || kind == KindExpense
}
