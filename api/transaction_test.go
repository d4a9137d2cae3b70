package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func transactionRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "kind", "amount", "description", "category", "icon", "occurred_at", "created_at", "updated_at", "deleted_at"})
}

func TestTransactionHandler_Create_Expense(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	_, restore := setupTestConfig()
	defer restore()

	// 记录写入与预算累计在同一事务内
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `transactions`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT .* FROM `budgets`").
		WithArgs(uint(1), 11, 2025, "餐饮").
		WillReturnRows(budgetRows().
			AddRow(5, 1, "餐饮", 500.0, 100.0, 11, 2025, time.Now(), time.Now(), nil))
	mock.ExpectExec("UPDATE `budgets`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// 提交后做阈值检查：199.99/500 低于 80%，不产生通知
	mock.ExpectQuery("SELECT .* FROM `budgets`").
		WithArgs(uint(5)).
		WillReturnRows(budgetRows().
			AddRow(5, 1, "餐饮", 500.0, 199.99, 11, 2025, time.Now(), time.Now(), nil))

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/transactions", NewTransactionHandler().Create)

	body := `{"kind":"expense","amount":99.99,"category":"餐饮","description":"午餐","occurred_at":"2025-11-15 12:30:00"}`
	req := httptest.NewRequest("POST", "/transactions", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "创建成功", resp["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionHandler_Create_TriggersReminder(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	_, restore := setupTestConfig()
	defer restore()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `transactions`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT .* FROM `budgets`").
		WithArgs(uint(1), 11, 2025, "餐饮").
		WillReturnRows(budgetRows().
			AddRow(5, 1, "餐饮", 100.0, 50.0, 11, 2025, time.Now(), time.Now(), nil))
	mock.ExpectExec("UPDATE `budgets`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// 95/100 跨过 80% 阈值 -> 去重检查 + 生成提醒
	mock.ExpectQuery("SELECT .* FROM `budgets`").
		WithArgs(uint(5)).
		WillReturnRows(budgetRows().
			AddRow(5, 1, "餐饮", 100.0, 95.0, 11, 2025, time.Now(), time.Now(), nil))
	mock.ExpectQuery("SELECT count.* FROM `notifications`").
		WithArgs(uint(5), 80).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `notifications`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/transactions", NewTransactionHandler().Create)

	body := `{"kind":"expense","amount":45,"category":"餐饮","occurred_at":"2025-11-20 09:00:00"}`
	req := httptest.NewRequest("POST", "/transactions", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionHandler_Create_NoMatchingBudget(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	_, restore := setupTestConfig()
	defer restore()

	// 没有匹配预算的支出照常入账
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `transactions`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT .* FROM `budgets`").
		WithArgs(uint(1), 11, 2025, "旅行").
		WillReturnRows(budgetRows())
	mock.ExpectCommit()

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/transactions", NewTransactionHandler().Create)

	body := `{"kind":"expense","amount":1200,"category":"旅行","occurred_at":"2025-11-10 08:00:00"}`
	req := httptest.NewRequest("POST", "/transactions", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionHandler_Create_Income_SkipsBudget(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	_, restore := setupTestConfig()
	defer restore()

	// 收入不触碰预算
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `transactions`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/transactions", NewTransactionHandler().Create)

	body := `{"kind":"income","amount":5000,"category":"工资","occurred_at":"2025-11-01 09:00:00"}`
	req := httptest.NewRequest("POST", "/transactions", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionHandler_Create_InvalidAmount(t *testing.T) {
	_, cleanup := setupMockDB(t)
	defer cleanup()

	_, restore := setupTestConfig()
	defer restore()

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/transactions", NewTransactionHandler().Create)

	body := `{"kind":"expense","amount":-5,"category":"餐饮"}`
	req := httptest.NewRequest("POST", "/transactions", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
}

func TestTransactionHandler_Create_InvalidKind(t *testing.T) {
	_, cleanup := setupMockDB(t)
	defer cleanup()

	_, restore := setupTestConfig()
	defer restore()

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/transactions", NewTransactionHandler().Create)

	body := `{"kind":"transfer","amount":50,"category":"餐饮"}`
	req := httptest.NewRequest("POST", "/transactions", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "无效的收支类型", resp["message"])
}

func TestTransactionHandler_Delete(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	_, restore := setupTestConfig()
	defer restore()

	occurred := time.Date(2025, 11, 15, 12, 30, 0, 0, time.Local)

	// 删除与预算扣减在同一事务内
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `transactions`").
		WithArgs(uint(9)).
		WillReturnRows(transactionRows().
			AddRow(9, 1, "expense", 99.99, "午餐", "餐饮", "", occurred, time.Now(), time.Now(), nil))
	mock.ExpectExec("UPDATE `transactions`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT .* FROM `budgets`").
		WithArgs(uint(1), 11, 2025, "餐饮").
		WillReturnRows(budgetRows().
			AddRow(5, 1, "餐饮", 500.0, 199.99, 11, 2025, time.Now(), time.Now(), nil))
	mock.ExpectExec("UPDATE `budgets`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.DELETE("/transactions/:id", NewTransactionHandler().Delete)

	req := httptest.NewRequest("DELETE", "/transactions/9", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "删除成功", resp["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionHandler_Delete_OtherUsersRecord(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	_, restore := setupTestConfig()
	defer restore()

	// 记录属于用户 2，当前用户 1 无权删除
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `transactions`").
		WithArgs(uint(9)).
		WillReturnRows(transactionRows().
			AddRow(9, 2, "expense", 99.99, "午餐", "餐饮", "", time.Now(), time.Now(), time.Now(), nil))
	mock.ExpectRollback()

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.DELETE("/transactions/:id", NewTransactionHandler().Delete)

	req := httptest.NewRequest("DELETE", "/transactions/9", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 404, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "记录不存在或无权操作", resp["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionHandler_Delete_NotFound(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	_, restore := setupTestConfig()
	defer restore()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `transactions`").
		WithArgs(uint(404)).
		WillReturnRows(transactionRows())
	mock.ExpectRollback()

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.DELETE("/transactions/:id", NewTransactionHandler().Delete)

	req := httptest.NewRequest("DELETE", "/transactions/404", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 404, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionHandler_GetSummary(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	_, restore := setupTestConfig()
	defer restore()

	mock.ExpectQuery("SELECT COALESCE").
		WithArgs(uint(1), "expense").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(123.45))
	mock.ExpectQuery("SELECT COALESCE").
		WithArgs(uint(1), "income").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(5000.0))

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/transactions/summary", NewTransactionHandler().GetSummary)

	req := httptest.NewRequest("GET", "/transactions/summary", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, 123.45, data["total_expense"])
	assert.Equal(t, 5000.0, data["total_income"])
	require.NoError(t, mock.ExpectationsWereMet())
}
