// Package constraint 提供规则约束的纯函数评估器
package constraint

import (
	"fmt"

	"github.com/paiche/paiche/pkg/model"
)

// DefaultMaxDailyShifts 每日班次数默认上限
const DefaultMaxDailyShifts = 3

// MaxDailyShifts 每日最大班次数约束
type MaxDailyShifts struct{}

// Type 返回规则类型
func (MaxDailyShifts) Type() model.RuleType { return model.RuleMaxDailyShifts }

// Evaluate 评估候选分配当日班次数（已有 + 新增）
func (MaxDailyShifts) Evaluate(rule *model.Rule, emp *model.Employee, candidate *model.DutyShift, existing []*model.DutyShift) *Violation {
	maxShifts := rule.Config.MaxShifts
	if maxShifts <= 0 {
		maxShifts = DefaultMaxDailyShifts
	}

	count := len(shiftsOn(existing, candidate.Date)) + 1
	if count > maxShifts {
		return newViolation(rule, emp, candidate.Date,
			fmt.Sprintf("员工 %s 在 %s 已有 %d 个班次，超过限制 %d 个", emp.Name, candidate.Date, count, maxShifts))
	}
	return nil
}

// ExclusiveAssignment 互斥任务约束
// 任务的互斥组标签在数据接入时确定，这里只比较标签：
// 同一天已持有同互斥组且任务名不同的班次则失败
type ExclusiveAssignment struct{}

// Type 返回规则类型
func (ExclusiveAssignment) Type() model.RuleType { return model.RuleExclusiveAssignment }

// Evaluate 评估候选分配是否与当日已有班次互斥
func (ExclusiveAssignment) Evaluate(rule *model.Rule, emp *model.Employee, candidate *model.DutyShift, existing []*model.DutyShift) *Violation {
	if candidate.Exclusive == "" {
		return nil
	}

	for _, s := range shiftsOn(existing, candidate.Date) {
		if s.Exclusive == candidate.Exclusive && s.BusinessName != candidate.BusinessName {
			return newViolation(rule, emp, candidate.Date,
				fmt.Sprintf("员工 %s 在 %s 已持有互斥组 %s 的任务 %s，不能再分配 %s",
					emp.Name, candidate.Date, candidate.Exclusive, s.BusinessName, candidate.BusinessName))
		}
	}
	return nil
}
