package service

import (
	"errors"
	"fmt"
	"strings"

	"ahorra/models"

	"gorm.io/gorm"
)

// BudgetService 预算台账服务
// 负责预算的增删改查与 (用户, 类别, 月份, 年份) 唯一性约束。
// 唯一性在应用层保证：嵌入式对象存储类后端没有原生唯一约束可依赖。
type BudgetService struct {
	db *gorm.DB
}

// NewBudgetService 创建预算服务
func NewBudgetService(db *gorm.DB) *BudgetService {
	return &BudgetService{db: db}
}

// Create 创建预算，初始 consumed 为 0
func (s *BudgetService) Create(userID uint, category string, limit float64, month, year int) (*models.Budget, error) {
	if limit <= 0 {
		return nil, ErrInvalidAmount
	}
	if !ValidPeriod(month, year) {
		return nil, ErrInvalidPeriod
	}
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, ErrInvalidCategory
	}

	// 查重：同一用户同一周期下类别唯一（忽略大小写）
	existing, err := s.FindByCategory(userID, category, month, year)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateBudget
	}

	budget := models.Budget{
		UserID:      userID,
		Category:    category,
		LimitAmount: limit,
		Consumed:    0,
		Month:       month,
		Year:        year,
	}
	if err := s.db.Create(&budget).Error; err != nil {
		return nil, fmt.Errorf("创建预算失败: %w", err)
	}
	return &budget, nil
}

// UpdateLimit 修改预算上限，不触碰 consumed
func (s *BudgetService) UpdateLimit(userID, budgetID uint, newLimit float64) error {
	if newLimit <= 0 {
		return ErrInvalidAmount
	}
	var budget models.Budget
	if err := s.db.Where("id = ? AND user_id = ?", budgetID, userID).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("查询预算失败: %w", err)
	}
	if err := s.db.Model(&budget).Update("limit_amount", newLimit).Error; err != nil {
		return fmt.Errorf("更新预算失败: %w", err)
	}
	return nil
}

// SetConsumed 直接写入 consumed（内部操作，供收支记录与重算使用）
// tx 可以是外层事务句柄，也可以直接传业务库连接。
func (s *BudgetService) SetConsumed(tx *gorm.DB, budgetID uint, amount float64) error {
	if amount < 0 {
		return ErrInvalidAmount
	}
	if tx == nil {
		tx = s.db
	}
	if err := tx.Model(&models.Budget{}).Where("id = ?", budgetID).
		UpdateColumn("consumed", amount).Error; err != nil {
		return fmt.Errorf("写入预算消费失败: %w", err)
	}
	return nil
}

// Delete 删除预算，不级联删除收支记录
func (s *BudgetService) Delete(userID, budgetID uint) error {
	var budget models.Budget
	if err := s.db.Where("id = ? AND user_id = ?", budgetID, userID).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("查询预算失败: %w", err)
	}
	if err := s.db.Delete(&budget).Error; err != nil {
		return fmt.Errorf("删除预算失败: %w", err)
	}
	return nil
}

// Get 获取单条预算
func (s *BudgetService) Get(userID, budgetID uint) (*models.Budget, error) {
	var budget models.Budget
	if err := s.db.Where("id = ? AND user_id = ?", budgetID, userID).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("查询预算失败: %w", err)
	}
	return &budget, nil
}

// ListForPeriod 获取某周期下的全部预算
func (s *BudgetService) ListForPeriod(userID uint, month, year int) ([]models.Budget, error) {
	if !ValidPeriod(month, year) {
		return nil, ErrInvalidPeriod
	}
	var budgets []models.Budget
	if err := s.db.Where("user_id = ? AND month = ? AND year = ?", userID, month, year).
		Order("category ASC").Find(&budgets).Error; err != nil {
		return nil, fmt.Errorf("查询预算失败: %w", err)
	}
	return budgets, nil
}

// FindByCategory 按类别查找某周期的预算，未找到返回 (nil, nil)
func (s *BudgetService) FindByCategory(userID uint, category string, month, year int) (*models.Budget, error) {
	return findBudgetByCategory(s.db, userID, category, month, year)
}

// findBudgetByCategory 类别匹配统一走 NormalizeCategory，支持在事务内调用
func findBudgetByCategory(tx *gorm.DB, userID uint, category string, month, year int) (*models.Budget, error) {
	var budget models.Budget
	err := tx.Where("user_id = ? AND month = ? AND year = ? AND LOWER(category) = ?",
		userID, month, year, NormalizeCategory(category)).First(&budget).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询预算失败: %w", err)
	}
	return &budget, nil
}
