package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"ahorra/models"

	"gorm.io/gorm"
)

// TransactionService 收支记录服务
// 支出记录的增删改与对应预算 consumed 的增减在同一个数据库事务内完成，
// 崩溃不会再留下"记录已写入、预算未更新"的中间态；重算仅作为修复工具保留。
type TransactionService struct {
	db     *gorm.DB
	alerts *AlertService
}

// NewTransactionService 创建收支记录服务
func NewTransactionService(db *gorm.DB, alerts *AlertService) *TransactionService {
	return &TransactionService{db: db, alerts: alerts}
}

// TransactionFilter 列表筛选条件
type TransactionFilter struct {
	Kind      string
	Category  string
	StartTime time.Time
	EndTime   time.Time
}

// Create 创建收支记录
// occurredAt 为零值时默认当前时间；支出记录会把金额累加到所属周期的匹配预算上。
// 没有匹配预算的支出照常入账，只是不影响任何预算。
func (s *TransactionService) Create(userID uint, kind string, amount float64, description, category, icon string, occurredAt time.Time) (*models.Transaction, error) {
	kind = strings.ToLower(strings.TrimSpace(kind))
	if !models.IsValidKind(kind) {
		return nil, ErrInvalidKind
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, ErrInvalidCategory
	}
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}

	txn := models.Transaction{
		UserID:      userID,
		Kind:        kind,
		Amount:      amount,
		Description: description,
		Category:    category,
		Icon:        icon,
		OccurredAt:  occurredAt,
	}

	var touchedBudget uint
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&txn).Error; err != nil {
			return fmt.Errorf("创建收支记录失败: %w", err)
		}
		if txn.Kind == models.KindExpense {
			id, err := adjustBudgetConsumed(tx, userID, txn.Category, txn.OccurredAt, txn.Amount)
			if err != nil {
				return err
			}
			touchedBudget = id
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// 警告检查尽力而为，失败不回滚已成功的记账
	if touchedBudget != 0 && s.alerts != nil {
		s.alerts.CheckBudgetByID(touchedBudget)
	}
	return &txn, nil
}

// Update 更新收支记录
// 旧支出的贡献先从原预算中扣除，新值再计入新匹配的预算，两步在同一事务内完成。
func (s *TransactionService) Update(userID, id uint, kind string, amount float64, description, category, icon string, occurredAt time.Time) (*models.Transaction, error) {
	kind = strings.ToLower(strings.TrimSpace(kind))
	if !models.IsValidKind(kind) {
		return nil, ErrInvalidKind
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, ErrInvalidCategory
	}

	var txn models.Transaction
	var touched []uint
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&txn).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("查询收支记录失败: %w", err)
		}

		// 扣除旧贡献
		if txn.Kind == models.KindExpense {
			bid, err := adjustBudgetConsumed(tx, userID, txn.Category, txn.OccurredAt, -txn.Amount)
			if err != nil {
				return err
			}
			if bid != 0 {
				touched = append(touched, bid)
			}
		}

		txn.Kind = kind
		txn.Amount = amount
		txn.Description = description
		txn.Category = category
		txn.Icon = icon
		if !occurredAt.IsZero() {
			txn.OccurredAt = occurredAt
		}
		if err := tx.Save(&txn).Error; err != nil {
			return fmt.Errorf("更新收支记录失败: %w", err)
		}

		// 计入新贡献
		if txn.Kind == models.KindExpense {
			bid, err := adjustBudgetConsumed(tx, userID, txn.Category, txn.OccurredAt, txn.Amount)
			if err != nil {
				return err
			}
			if bid != 0 {
				touched = append(touched, bid)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.alerts != nil {
		for _, bid := range touched {
			s.alerts.CheckBudgetByID(bid)
		}
	}
	return &txn, nil
}

// Delete 删除收支记录
// 只能删除属于自己的记录；支出删除时同步扣减匹配预算的 consumed。
func (s *TransactionService) Delete(userID, id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var txn models.Transaction
		if err := tx.Where("id = ?", id).First(&txn).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFoundOrForbidden
			}
			return fmt.Errorf("查询收支记录失败: %w", err)
		}
		// 不区分"不存在"与"他人记录"，避免泄露他人记录的存在性
		if txn.UserID != userID {
			return ErrNotFoundOrForbidden
		}
		if err := tx.Delete(&txn).Error; err != nil {
			return fmt.Errorf("删除收支记录失败: %w", err)
		}
		if txn.Kind == models.KindExpense {
			if _, err := adjustBudgetConsumed(tx, userID, txn.Category, txn.OccurredAt, -txn.Amount); err != nil {
				return err
			}
		}
		return nil
	})
}

// Get 获取单条收支记录
func (s *TransactionService) Get(userID, id uint) (*models.Transaction, error) {
	var txn models.Transaction
	if err := s.db.Where("id = ? AND user_id = ?", id, userID).First(&txn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("查询收支记录失败: %w", err)
	}
	return &txn, nil
}

// List 分页获取收支记录，支持类型/类别/时间范围筛选
func (s *TransactionService) List(userID uint, page, pageSize int, filter TransactionFilter) ([]models.Transaction, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	if pageSize > 100 {
		pageSize = 100
	}

	query := s.db.Model(&models.Transaction{}).Where("user_id = ?", userID)
	if filter.Kind != "" {
		query = query.Where("kind = ?", filter.Kind)
	}
	if filter.Category != "" {
		query = query.Where("LOWER(category) = ?", NormalizeCategory(filter.Category))
	}
	if !filter.StartTime.IsZero() {
		query = query.Where("occurred_at >= ?", filter.StartTime)
	}
	if !filter.EndTime.IsZero() {
		query = query.Where("occurred_at <= ?", filter.EndTime)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("查询收支记录失败: %w", err)
	}

	var txns []models.Transaction
	offset := (page - 1) * pageSize
	if err := query.Order("occurred_at DESC").Offset(offset).Limit(pageSize).Find(&txns).Error; err != nil {
		return nil, 0, fmt.Errorf("查询收支记录失败: %w", err)
	}
	return txns, total, nil
}

// ListByDateRange 按时间范围获取收支记录
func (s *TransactionService) ListByDateRange(userID uint, start, end time.Time) ([]models.Transaction, error) {
	var txns []models.Transaction
	if err := s.db.Where("user_id = ? AND occurred_at >= ? AND occurred_at <= ?", userID, start, end).
		Order("occurred_at DESC").Find(&txns).Error; err != nil {
		return nil, fmt.Errorf("查询收支记录失败: %w", err)
	}
	return txns, nil
}

// ListByCategory 按类别获取收支记录（忽略大小写）
func (s *TransactionService) ListByCategory(userID uint, category string) ([]models.Transaction, error) {
	var txns []models.Transaction
	if err := s.db.Where("user_id = ? AND LOWER(category) = ?", userID, NormalizeCategory(category)).
		Order("occurred_at DESC").Find(&txns).Error; err != nil {
		return nil, fmt.Errorf("查询收支记录失败: %w", err)
	}
	return txns, nil
}

// TotalByKind 统计某类型的总金额
func (s *TransactionService) TotalByKind(userID uint, kind string) (float64, error) {
	if !models.IsValidKind(kind) {
		return 0, ErrInvalidKind
	}
	var total float64
	if err := s.db.Model(&models.Transaction{}).
		Where("user_id = ? AND kind = ?", userID, kind).
		Select("COALESCE(SUM(amount), 0)").Scan(&total).Error; err != nil {
		return 0, fmt.Errorf("统计失败: %w", err)
	}
	return total, nil
}

// adjustBudgetConsumed 把 delta 累加到记录所属周期的匹配预算上
// 使用原子 UPDATE 表达式避免并发写入丢失；扣减时在 0 处截断（记录早于预算创建的场景），
// 精确值交由重算恢复。没有匹配预算时返回 0。
func adjustBudgetConsumed(tx *gorm.DB, userID uint, category string, occurredAt time.Time, delta float64) (uint, error) {
	month, year := PeriodOf(occurredAt)
	budget, err := findBudgetByCategory(tx, userID, category, month, year)
	if err != nil {
		return 0, err
	}
	if budget == nil {
		return 0, nil
	}

	var expr interface{}
	if delta >= 0 {
		expr = gorm.Expr("consumed + ?", delta)
	} else {
		expr = gorm.Expr("CASE WHEN consumed + ? < 0 THEN 0 ELSE consumed + ? END", delta, delta)
	}
	if err := tx.Model(&models.Budget{}).Where("id = ?", budget.ID).
		UpdateColumn("consumed", expr).Error; err != nil {
		return 0, fmt.Errorf("更新预算消费失败: %w", err)
	}
	return budget.ID, nil
}
