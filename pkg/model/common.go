// Package model 定义排班引擎的核心数据模型
package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateRange 日期范围
type DateRange struct {
	StartDate string `json:"start_date"` // YYYY-MM-DD
	EndDate   string `json:"end_date"`   // YYYY-MM-DD
}

// Dates 展开日期范围内的所有日期
func (dr DateRange) Dates() ([]string, error) {
	start, err := time.Parse("2006-01-02", dr.StartDate)
	if err != nil {
		return nil, fmt.Errorf("开始日期格式无效: %w", err)
	}
	end, err := time.Parse("2006-01-02", dr.EndDate)
	if err != nil {
		return nil, fmt.Errorf("结束日期格式无效: %w", err)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("结束日期早于开始日期")
	}

	var dates []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format("2006-01-02"))
	}
	return dates, nil
}

// NextDate 获取后一天日期
func NextDate(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return ""
	}
	return t.AddDate(0, 0, 1).Format("2006-01-02")
}

// PrevDate 获取前一天日期
func PrevDate(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return ""
	}
	return t.AddDate(0, 0, -1).Format("2006-01-02")
}

// IsConsecutiveDate 检查两个日期是否为相邻的自然日
func IsConsecutiveDate(date1, date2 string) bool {
	t1, err1 := time.Parse("2006-01-02", date1)
	t2, err2 := time.Parse("2006-01-02", date2)
	if err1 != nil || err2 != nil {
		return false
	}
	return t2.Sub(t1) == 24*time.Hour
}

// DayOfMonth 获取日期的"日"数字（奇偶轮换使用）
func DayOfMonth(date string) int {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return 0
	}
	return t.Day()
}

// WeekStart 获取日期所在周的开始日期（周日）
func WeekStart(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	weekday := int(t.Weekday())
	return t.AddDate(0, 0, -weekday).Format("2006-01-02")
}

// WeekEnd 获取日期所在周的结束日期（周六）
func WeekEnd(date string) string {
	start := WeekStart(date)
	t, err := time.Parse("2006-01-02", start)
	if err != nil {
		return date
	}
	return t.AddDate(0, 0, 6).Format("2006-01-02")
}

// MonthKey 获取日期所在月份（YYYY-MM）
func MonthKey(date string) string {
	if len(date) >= 7 {
		return date[:7]
	}
	return date
}

// ParseClock 解析 HH:MM 为自零点起的分钟数
func ParseClock(s string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("时间格式无效: %s", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("小时无效: %s", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("分钟无效: %s", s)
	}
	return h*60 + m, nil
}

// ClockRange 一天内的勤务时间段（分钟表示）
// End 数值小于 Start 表示勤务跨越午夜
type ClockRange struct {
	Start int
	End   int
}

// NewClockRange 从 HH:MM 字符串创建时间段
func NewClockRange(start, end string) (ClockRange, error) {
	s, err := ParseClock(start)
	if err != nil {
		return ClockRange{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return ClockRange{}, err
	}
	return ClockRange{Start: s, End: e}, nil
}

// normalizedEnd 跨午夜时将结束时间折算到次日
func (r ClockRange) normalizedEnd() int {
	if r.End < r.Start {
		return r.End + 24*60
	}
	return r.End
}

// DurationMinutes 返回时长（分钟），跨午夜自动折算
func (r ClockRange) DurationMinutes() int {
	return r.normalizedEnd() - r.Start
}

// DurationHours 返回时长（小时）
func (r ClockRange) DurationHours() float64 {
	return float64(r.DurationMinutes()) / 60.0
}

// Overlaps 检查同一日期上的两个时间段是否重叠（半开区间 [start,end)）
func (r ClockRange) Overlaps(other ClockRange) bool {
	return r.Start < other.normalizedEnd() && other.Start < r.normalizedEnd()
}
