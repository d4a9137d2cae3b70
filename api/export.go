package api

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"ahorra/database"
	"ahorra/middleware"
	"ahorra/models"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// ExportHandler 导出处理器
type ExportHandler struct{}

// NewExportHandler 创建导出处理器
func NewExportHandler() *ExportHandler {
	return &ExportHandler{}
}

// parseExportRange 解析导出时间范围参数
func parseExportRange(c *gin.Context) (time.Time, time.Time, bool) {
	startTimeStr := c.Query("start_time")
	endTimeStr := c.Query("end_time")

	if startTimeStr == "" || endTimeStr == "" {
		BadRequest(c, "请提供开始时间和结束时间")
		return time.Time{}, time.Time{}, false
	}

	startTime, err := time.ParseInLocation("2006-01-02", startTimeStr, time.Local)
	if err != nil {
		BadRequest(c, "开始时间格式错误，应为: 2006-01-02")
		return time.Time{}, time.Time{}, false
	}

	endTime, err := time.ParseInLocation("2006-01-02", endTimeStr, time.Local)
	if err != nil {
		BadRequest(c, "结束时间格式错误，应为: 2006-01-02")
		return time.Time{}, time.Time{}, false
	}
	// 包含结束日期当天
	endTime = endTime.Add(24*time.Hour - time.Second)
	return startTime, endTime, true
}

// queryExportTransactions 查询导出范围内的收支记录
func queryExportTransactions(c *gin.Context, userID uint, start, end time.Time) ([]models.Transaction, bool) {
	var txns []models.Transaction
	if err := database.DB.Where("user_id = ? AND occurred_at >= ? AND occurred_at <= ?", userID, start, end).
		Order("occurred_at DESC").
		Find(&txns).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询数据失败"))
		return nil, false
	}
	return txns, true
}

// kindLabel 收支类型的导出文案
func kindLabel(kind string) string {
	if kind == models.KindIncome {
		return "收入"
	}
	return "支出"
}

// ExportCSV 导出收支记录为 CSV
// @Summary 导出收支记录为 CSV
// @Description 根据时间范围导出收支记录为 CSV 文件
// @Tags 导出
// @Produce text/csv
// @Security BearerAuth
// @Param start_time query string true "开始时间 (2025-11-01)"
// @Param end_time query string true "结束时间 (2025-11-30)"
// @Success 200 {file} file "CSV 文件"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/export/csv [get]
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	startTime, endTime, ok := parseExportRange(c)
	if !ok {
		return
	}
	txns, ok := queryExportTransactions(c, userID, startTime, endTime)
	if !ok {
		return
	}

	// 生成 CSV
	buf := new(bytes.Buffer)
	// 添加 BOM 以支持 Excel 中文显示
	buf.WriteString("\xEF\xBB\xBF")

	writer := csv.NewWriter(buf)

	// 写入表头
	headers := []string{"ID", "类型", "金额", "类别", "描述", "发生时间", "创建时间"}
	if err := writer.Write(headers); err != nil {
		InternalError(c, "生成 CSV 失败")
		return
	}

	// 写入数据
	for _, txn := range txns {
		row := []string{
			fmt.Sprintf("%d", txn.ID),
			kindLabel(txn.Kind),
			fmt.Sprintf("%.2f", txn.Amount),
			txn.Category,
			txn.Description,
			txn.OccurredAt.Format("2006-01-02 15:04:05"),
			txn.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := writer.Write(row); err != nil {
			InternalError(c, "生成 CSV 失败")
			return
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		InternalError(c, "生成 CSV 失败")
		return
	}

	// 设置响应头
	filename := fmt.Sprintf("transactions_%s_%s.csv", c.Query("start_time"), c.Query("end_time"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Header("Content-Length", fmt.Sprintf("%d", buf.Len()))

	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportJSON 导出收支记录为 JSON
// @Summary 导出收支记录为 JSON
// @Description 根据时间范围导出收支记录为 JSON 格式
// @Tags 导出
// @Produce json
// @Security BearerAuth
// @Param start_time query string true "开始时间 (2025-11-01)"
// @Param end_time query string true "结束时间 (2025-11-30)"
// @Success 200 {object} Response{data=[]models.Transaction} "导出成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/export/json [get]
func (h *ExportHandler) ExportJSON(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	startTime, endTime, ok := parseExportRange(c)
	if !ok {
		return
	}
	txns, ok := queryExportTransactions(c, userID, startTime, endTime)
	if !ok {
		return
	}

	Success(c, txns)
}

// ExportExcel 导出收支记录为 Excel
// @Summary 导出收支记录为 Excel
// @Description 根据时间范围导出收支记录为 xlsx 文件
// @Tags 导出
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param start_time query string true "开始时间 (2025-11-01)"
// @Param end_time query string true "结束时间 (2025-11-30)"
// @Success 200 {file} file "Excel 文件"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/export/excel [get]
func (h *ExportHandler) ExportExcel(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	startTime, endTime, ok := parseExportRange(c)
	if !ok {
		return
	}
	txns, ok := queryExportTransactions(c, userID, startTime, endTime)
	if !ok {
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "收支记录"
	f.SetSheetName("Sheet1", sheetName)

	// 设置表头样式
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})

	// 数据样式
	dataStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})

	// 设置列宽
	f.SetColWidth(sheetName, "A", "A", 10)
	f.SetColWidth(sheetName, "B", "B", 10)
	f.SetColWidth(sheetName, "C", "C", 15)
	f.SetColWidth(sheetName, "D", "D", 12)
	f.SetColWidth(sheetName, "E", "E", 30)
	f.SetColWidth(sheetName, "F", "F", 20)
	f.SetColWidth(sheetName, "G", "G", 20)

	// 写入表头
	headers := []string{"ID", "类型", "金额", "类别", "描述", "发生时间", "创建时间"}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	// 写入数据
	for i, txn := range txns {
		row := i + 2
		values := []interface{}{
			txn.ID,
			kindLabel(txn.Kind),
			txn.Amount,
			txn.Category,
			txn.Description,
			txn.OccurredAt.Format("2006-01-02 15:04:05"),
			txn.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for j, v := range values {
			cell := fmt.Sprintf("%c%d", 'A'+j, row)
			f.SetCellValue(sheetName, cell, v)
			f.SetCellStyle(sheetName, cell, cell, dataStyle)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		InternalError(c, "生成 Excel 失败")
		return
	}

	filename := fmt.Sprintf("transactions_%s_%s.xlsx", c.Query("start_time"), c.Query("end_time"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Header("Content-Length", fmt.Sprintf("%d", buf.Len()))

	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
