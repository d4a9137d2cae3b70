package service

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, func()) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock, func() { sqlDB.Close() }
}

func mockBudgetRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "category", "limit_amount", "consumed", "month", "year", "created_at", "updated_at", "deleted_at"})
}

func TestBudgetService_Create(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `budgets`").
		WithArgs(uint(1), 11, 2025, "餐饮").
		WillReturnRows(mockBudgetRows())
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `budgets`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	budget, err := NewBudgetService(db).Create(1, "餐饮", 500, 11, 2025)
	require.NoError(t, err)
	assert.Equal(t, "餐饮", budget.Category)
	assert.Equal(t, 500.0, budget.LimitAmount)
	assert.Equal(t, 0.0, budget.Consumed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBudgetService_Create_TrimsCategory(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `budgets`").
		WithArgs(uint(1), 11, 2025, "comida").
		WillReturnRows(mockBudgetRows())
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `budgets`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	budget, err := NewBudgetService(db).Create(1, "  Comida  ", 300, 11, 2025)
	require.NoError(t, err)
	// 存储保留去空白后的原始大小写，匹配时才统一小写
	assert.Equal(t, "Comida", budget.Category)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBudgetService_Create_Duplicate(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `budgets`").
		WithArgs(uint(1), 11, 2025, "餐饮").
		WillReturnRows(mockBudgetRows().
			AddRow(7, 1, "餐饮", 500.0, 0.0, 11, 2025, time.Now(), time.Now(), nil))

	_, err := NewBudgetService(db).Create(1, "餐饮", 800, 11, 2025)
	assert.ErrorIs(t, err, ErrDuplicateBudget)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBudgetService_Create_Invalid(t *testing.T) {
	db, _, cleanup := newMockDB(t)
	defer cleanup()

	svc := NewBudgetService(db)

	// 上限必须大于 0
	_, err := svc.Create(1, "餐饮", 0, 11, 2025)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = svc.Create(1, "餐饮", -100, 11, 2025)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	// 周期越界
	_, err = svc.Create(1, "餐饮", 500, 13, 2025)
	assert.ErrorIs(t, err, ErrInvalidPeriod)
	_, err = svc.Create(1, "餐饮", 500, 0, 2025)
	assert.ErrorIs(t, err, ErrInvalidPeriod)

	// 类别为空
	_, err = svc.Create(1, "   ", 500, 11, 2025)
	assert.ErrorIs(t, err, ErrInvalidCategory)
}

func TestBudgetService_UpdateLimit(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `budgets`").
		WithArgs(uint(5), uint(1)).
		WillReturnRows(mockBudgetRows().
			AddRow(5, 1, "餐饮", 500.0, 450.0, 11, 2025, time.Now(), time.Now(), nil))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `budgets`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// 上限调整不触碰 consumed
	err := NewBudgetService(db).UpdateLimit(1, 5, 800)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBudgetService_UpdateLimit_NotFound(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `budgets`").
		WithArgs(uint(99), uint(1)).
		WillReturnRows(mockBudgetRows())

	err := NewBudgetService(db).UpdateLimit(1, 99, 800)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBudgetService_SetConsumed_Negative(t *testing.T) {
	db, _, cleanup := newMockDB(t)
	defer cleanup()

	err := NewBudgetService(db).SetConsumed(nil, 5, -1)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestBudgetService_FindByCategory_NotFound(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `budgets`").
		WithArgs(uint(1), 11, 2025, "旅行").
		WillReturnRows(mockBudgetRows())

	budget, err := NewBudgetService(db).FindByCategory(1, "旅行", 11, 2025)
	require.NoError(t, err)
	assert.Nil(t, budget)
	require.NoError(t, mock.ExpectationsWereMet())
}
