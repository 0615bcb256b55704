// Package constraint 提供规则约束的纯函数评估器
package constraint

import (
	"fmt"
	"sort"

	"github.com/paiche/paiche/pkg/model"
)

// 休息保障默认值
const (
	DefaultMaxConsecutiveDays = 6
	DefaultMinRestHours       = 11.0
)

// MaxConsecutiveDays 最大连续工作天数约束
type MaxConsecutiveDays struct{}

// Type 返回规则类型
func (MaxConsecutiveDays) Type() model.RuleType { return model.RuleMaxConsecutiveDays }

// Evaluate 合并已有日期与候选日期后计算最长连续自然日区间
func (MaxConsecutiveDays) Evaluate(rule *model.Rule, emp *model.Employee, candidate *model.DutyShift, existing []*model.DutyShift) *Violation {
	maxDays := rule.Config.MaxDays
	if maxDays <= 0 {
		maxDays = DefaultMaxConsecutiveDays
	}

	dateSet := map[string]bool{candidate.Date: true}
	for _, s := range existing {
		dateSet[s.Date] = true
	}
	dates := make([]string, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	run := 1
	longest := 1
	for i := 1; i < len(dates); i++ {
		if model.IsConsecutiveDate(dates[i-1], dates[i]) {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 1
		}
	}

	if longest > maxDays {
		return newViolation(rule, emp, candidate.Date,
			fmt.Sprintf("员工 %s 连续工作 %d 天，超过限制 %d 天", emp.Name, longest, maxDays))
	}
	return nil
}

// MinRestHours 班次间最小休息时间约束
// 只检查前一个自然日最晚结束的班次与候选班次开始之间的间隔
type MinRestHours struct{}

// Type 返回规则类型
func (MinRestHours) Type() model.RuleType { return model.RuleMinRestHours }

// Evaluate 评估候选分配与前日末班的休息间隔
func (MinRestHours) Evaluate(rule *model.Rule, emp *model.Employee, candidate *model.DutyShift, existing []*model.DutyShift) *Violation {
	minRest := rule.Config.MinRestHours
	if minRest <= 0 {
		minRest = DefaultMinRestHours
	}

	prevDate := model.PrevDate(candidate.Date)
	if prevDate == "" {
		return nil
	}

	// 以前一日零点为原点的分钟坐标，跨午夜班次结束落在候选日
	latestEnd := -1
	for _, s := range shiftsOn(existing, prevDate) {
		r, err := s.Clock()
		if err != nil {
			continue
		}
		end := r.End
		if r.End < r.Start {
			end += 24 * 60
		}
		if end > latestEnd {
			latestEnd = end
		}
	}
	if latestEnd < 0 {
		return nil
	}

	candClock, err := candidate.Clock()
	if err != nil {
		return nil
	}
	candStart := 24*60 + candClock.Start

	rest := float64(candStart-latestEnd) / 60.0
	if rest < minRest {
		return newViolation(rule, emp, candidate.Date,
			fmt.Sprintf("员工 %s 班次间隔仅 %.1f 小时，少于要求的 %.1f 小时", emp.Name, rest, minRest))
	}
	return nil
}
