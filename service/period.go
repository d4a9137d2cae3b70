package service

import (
	"strings"
	"time"
)

// NormalizeCategory 类别统一化：去除首尾空白并转小写。
// 创建查重、支出匹配、重算三条路径都使用同一策略，避免大小写不一致导致的漂移。
func NormalizeCategory(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}

// ValidPeriod 校验预算周期
func ValidPeriod(month, year int) bool {
	return month >= 1 && month <= 12 && year >= 2000 && year <= 2100
}

// PeriodRange 返回某年某月的时间窗口 [start, end)
// 使用本地时区日历，与记录时间的解析方式保持一致。
func PeriodRange(month, year int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
	return start, start.AddDate(0, 1, 0)
}

// PeriodOf 取某个时间点所属的预算周期（本地日历）
func PeriodOf(t time.Time) (month, year int) {
	local := t.In(time.Local)
	return int(local.Month()), local.Year()
}
