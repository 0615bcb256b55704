// Package model 定义排班引擎的核心数据模型
package model

import (
	"github.com/google/uuid"
)

// 班次状态
const (
	ShiftScheduled = "scheduled"
	ShiftConfirmed = "confirmed"
	ShiftCancelled = "cancelled"
)

// MultiDayInfo 跨日任务的日序描述
type MultiDayInfo struct {
	DayIndex  int    `json:"day_index"`  // 第几天（从1开始）
	TotalDays int    `json:"total_days"` // 总天数
	Direction string `json:"direction"`  // outbound/return
}

// DutyShift 排班结果记录
// 由引擎创建，外部持久化；重新分配时删除重建，不做原地修改
type DutyShift struct {
	ID           uuid.UUID     `json:"id" db:"id"`
	Date         string        `json:"date" db:"date"` // YYYY-MM-DD
	EmployeeID   string        `json:"employee_id" db:"employee_id"`
	EmployeeName string        `json:"employee_name" db:"employee_name"`
	BusinessID   string        `json:"business_master_id" db:"business_id"`
	BusinessName string        `json:"business_name" db:"business_name"`
	Group        string        `json:"business_group" db:"business_group"`
	StartTime    string        `json:"start_time" db:"start_time"` // HH:MM
	EndTime      string        `json:"end_time" db:"end_time"`     // HH:MM
	Status       string        `json:"status" db:"status"`
	BatchID      uuid.UUID     `json:"generation_batch_id" db:"batch_id"`
	Location     string        `json:"location" db:"location"`
	SetID        *uuid.UUID    `json:"multi_day_set_id,omitempty" db:"set_id"`
	MultiDay     *MultiDayInfo `json:"multi_day_info,omitempty" db:"-"`

	// Exclusive 互斥组标签，创建班次时从任务上复制，仅供约束评估使用
	Exclusive string `json:"-" db:"-"`
}

// Clock 返回班次的时间段
func (s *DutyShift) Clock() (ClockRange, error) {
	return NewClockRange(s.StartTime, s.EndTime)
}

// DurationHours 返回班次时长（小时），跨午夜折算为 end+24h-start
func (s *DutyShift) DurationHours() float64 {
	r, err := s.Clock()
	if err != nil {
		return 0
	}
	return r.DurationHours()
}

// OverlapsOn 检查同一日期上两个班次的时间段是否重叠
func (s *DutyShift) OverlapsOn(other *DutyShift) bool {
	if s.Date != other.Date {
		return false
	}
	r1, err1 := s.Clock()
	r2, err2 := other.Clock()
	if err1 != nil || err2 != nil {
		return false
	}
	return r1.Overlaps(r2)
}

// IsOnDate 检查班次是否在指定日期
func (s *DutyShift) IsOnDate(date string) bool {
	return s.Date == date
}
