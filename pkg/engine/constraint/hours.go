// Package constraint 提供规则约束的纯函数评估器
package constraint

import (
	"fmt"

	"github.com/paiche/paiche/pkg/model"
)

// 工时阈值默认值（小时）
const (
	DefaultMaxDailyHours   = 15.0
	DefaultMaxWeeklyHours  = 44.0
	DefaultMaxMonthlyHours = 180.0
)

// MaxDailyWorkHours 每日最大工时约束
// 跨午夜班次时长折算为 end+24h-start
type MaxDailyWorkHours struct{}

// Type 返回规则类型
func (MaxDailyWorkHours) Type() model.RuleType { return model.RuleMaxDailyWorkHours }

// Evaluate 评估候选分配当日总工时
func (MaxDailyWorkHours) Evaluate(rule *model.Rule, emp *model.Employee, candidate *model.DutyShift, existing []*model.DutyShift) *Violation {
	maxHours := rule.Config.MaxHours
	if maxHours <= 0 {
		maxHours = DefaultMaxDailyHours
	}

	total := candidate.DurationHours()
	for _, s := range shiftsOn(existing, candidate.Date) {
		total += s.DurationHours()
	}

	if total > maxHours {
		return newViolation(rule, emp, candidate.Date,
			fmt.Sprintf("员工 %s 在 %s 工作 %.1f 小时，超过限制 %.1f 小时", emp.Name, candidate.Date, total, maxHours))
	}
	return nil
}

// MaxWeeklyHours 每周最大工时约束（周日为一周开始）
type MaxWeeklyHours struct{}

// Type 返回规则类型
func (MaxWeeklyHours) Type() model.RuleType { return model.RuleMaxWeeklyHours }

// Evaluate 评估候选分配所在周的累计工时
func (MaxWeeklyHours) Evaluate(rule *model.Rule, emp *model.Employee, candidate *model.DutyShift, existing []*model.DutyShift) *Violation {
	maxHours := rule.Config.MaxHours
	if maxHours <= 0 {
		maxHours = DefaultMaxWeeklyHours
	}

	weekStart := model.WeekStart(candidate.Date)
	weekEnd := model.WeekEnd(candidate.Date)

	total := candidate.DurationHours()
	for _, s := range existing {
		if s.Date >= weekStart && s.Date <= weekEnd {
			total += s.DurationHours()
		}
	}

	if total > maxHours {
		return newViolation(rule, emp, candidate.Date,
			fmt.Sprintf("员工 %s 在 %s 开始的一周工作 %.1f 小时，超过限制 %.1f 小时", emp.Name, weekStart, total, maxHours))
	}
	return nil
}

// MaxMonthlyHours 每月最大工时约束（自然月）
type MaxMonthlyHours struct{}

// Type 返回规则类型
func (MaxMonthlyHours) Type() model.RuleType { return model.RuleMaxMonthlyHours }

// Evaluate 评估候选分配所在月的累计工时
func (MaxMonthlyHours) Evaluate(rule *model.Rule, emp *model.Employee, candidate *model.DutyShift, existing []*model.DutyShift) *Violation {
	maxHours := rule.Config.MaxHours
	if maxHours <= 0 {
		maxHours = DefaultMaxMonthlyHours
	}

	month := model.MonthKey(candidate.Date)

	total := candidate.DurationHours()
	for _, s := range existing {
		if model.MonthKey(s.Date) == month {
			total += s.DurationHours()
		}
	}

	if total > maxHours {
		return newViolation(rule, emp, candidate.Date,
			fmt.Sprintf("员工 %s 在 %s 月工作 %.1f 小时，超过限制 %.1f 小时", emp.Name, month, total, maxHours))
	}
	return nil
}
