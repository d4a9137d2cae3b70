package service

import (
	"fmt"

	"ahorra/models"

	"gorm.io/gorm"
)

// RecalcService 预算消费重算服务
// 以收支记录表为权威数据源，把某周期下每条预算的 consumed 从头重算。
// 幂等、无其它副作用，可在任意时刻调用；本身不产生警告通知，
// 需要警告的调用方应在重算后另行触发阈值检查。
type RecalcService struct {
	db *gorm.DB
}

// NewRecalcService 创建重算服务
func NewRecalcService(db *gorm.DB) *RecalcService {
	return &RecalcService{db: db}
}

// RecalculateForPeriod 重算某用户某周期下全部预算的 consumed
// 任一预算重算失败则整体回滚：静默的部分重算只会让账目进一步漂移。
func (s *RecalcService) RecalculateForPeriod(userID uint, month, year int) error {
	if !ValidPeriod(month, year) {
		return ErrInvalidPeriod
	}
	start, end := PeriodRange(month, year)

	return s.db.Transaction(func(tx *gorm.DB) error {
		var budgets []models.Budget
		if err := tx.Where("user_id = ? AND month = ? AND year = ?", userID, month, year).
			Find(&budgets).Error; err != nil {
			return fmt.Errorf("查询预算失败: %w", err)
		}

		for _, budget := range budgets {
			var sum float64
			err := tx.Model(&models.Transaction{}).
				Where("user_id = ? AND kind = ? AND LOWER(category) = ? AND occurred_at >= ? AND occurred_at < ?",
					userID, models.KindExpense, NormalizeCategory(budget.Category), start, end).
				Select("COALESCE(SUM(amount), 0)").Scan(&sum).Error
			if err != nil {
				return fmt.Errorf("汇总支出失败: %w", err)
			}
			if err := tx.Model(&models.Budget{}).Where("id = ?", budget.ID).
				UpdateColumn("consumed", sum).Error; err != nil {
				return fmt.Errorf("写入预算消费失败: %w", err)
			}
		}
		return nil
	})
}
