// Package constraint 提供规则约束的纯函数评估器
package constraint

import (
	"github.com/paiche/paiche/pkg/model"
)

// Violation 规则违反详情
type Violation struct {
	RuleID       string         `json:"rule_id"`
	RuleName     string         `json:"rule_name"`
	RuleType     model.RuleType `json:"rule_type"`
	EmployeeID   string         `json:"employee_id"`
	EmployeeName string         `json:"employee_name"`
	Date         string         `json:"date"`
	Message      string         `json:"message"`
	Mandatory    bool           `json:"mandatory"`
}

// Evaluator 单一规则类型的评估器
// 评估必须是纯函数：候选班次与该员工的周期内已有班次全部作为参数传入，
// 不依赖任何隐藏状态
type Evaluator interface {
	// Type 返回评估器处理的规则类型
	Type() model.RuleType

	// Evaluate 评估候选分配，满足返回 nil，违反返回详情
	Evaluate(rule *model.Rule, emp *model.Employee, candidate *model.DutyShift, existing []*model.DutyShift) *Violation
}

// Registry 评估器注册表
type Registry struct {
	evaluators map[model.RuleType]Evaluator
}

// NewRegistry 创建注册表并注册全部内置评估器
func NewRegistry() *Registry {
	r := &Registry{evaluators: make(map[model.RuleType]Evaluator)}
	r.Register(&MaxDailyWorkHours{})
	r.Register(&MaxWeeklyHours{})
	r.Register(&MaxMonthlyHours{})
	r.Register(&MaxDailyShifts{})
	r.Register(&ExclusiveAssignment{})
	r.Register(&MaxConsecutiveDays{})
	r.Register(&MinRestHours{})
	return r
}

// Register 注册评估器（同类型后注册者覆盖）
func (r *Registry) Register(e Evaluator) {
	r.evaluators[e.Type()] = e
}

// Get 获取指定类型的评估器
func (r *Registry) Get(t model.RuleType) Evaluator {
	return r.evaluators[t]
}

// Types 返回全部已注册的规则类型
func (r *Registry) Types() []model.RuleType {
	types := make([]model.RuleType, 0, len(r.evaluators))
	for _, e := range builtinOrder {
		if _, ok := r.evaluators[e]; ok {
			types = append(types, e)
		}
	}
	return types
}

// builtinOrder 内置评估器的稳定枚举顺序
var builtinOrder = []model.RuleType{
	model.RuleMaxDailyWorkHours,
	model.RuleMaxWeeklyHours,
	model.RuleMaxMonthlyHours,
	model.RuleMaxDailyShifts,
	model.RuleExclusiveAssignment,
	model.RuleMaxConsecutiveDays,
	model.RuleMinRestHours,
}

// Check 用全部适用规则评估一个候选分配
// 返回值：hardFail 表示候选人被强制规则排除（priority 0 且 mandatory，
// 不产生可见违反记录）；soft 为其余失败规则的软违反列表，软违反只影响
// 排序与上报，不排除候选人
func (r *Registry) Check(rules []*model.Rule, emp *model.Employee, candidate *model.DutyShift, existing []*model.DutyShift) (hardFail bool, soft []*Violation) {
	for _, rule := range rules {
		if !rule.Active || !rule.AppliesTo(candidate.Location) {
			continue
		}
		e := r.evaluators[rule.Type]
		if e == nil {
			continue
		}
		v := e.Evaluate(rule, emp, candidate, existing)
		if v == nil {
			continue
		}
		if rule.IsMandatory() {
			// 强制规则失败：候选人完全不可用，静默跳过
			return true, nil
		}
		soft = append(soft, v)
	}
	return false, soft
}

// EvaluateSchedule 评估一份完整班次列表（验证接口使用）
// 对每个班次，把该员工的其余班次作为已有周期数据评估
func (r *Registry) EvaluateSchedule(rules []*model.Rule, employees []*model.Employee, shifts []*model.DutyShift) []*Violation {
	byEmp := make(map[string][]*model.DutyShift)
	for _, s := range shifts {
		byEmp[s.EmployeeID] = append(byEmp[s.EmployeeID], s)
	}
	empByID := make(map[string]*model.Employee, len(employees))
	for _, e := range employees {
		empByID[e.ID] = e
	}

	var violations []*Violation
	for _, s := range shifts {
		emp := empByID[s.EmployeeID]
		if emp == nil {
			emp = &model.Employee{ID: s.EmployeeID, Name: s.EmployeeName}
		}
		others := make([]*model.DutyShift, 0, len(byEmp[s.EmployeeID])-1)
		for _, o := range byEmp[s.EmployeeID] {
			if o != s {
				others = append(others, o)
			}
		}
		for _, rule := range rules {
			if !rule.Active || !rule.AppliesTo(s.Location) {
				continue
			}
			e := r.evaluators[rule.Type]
			if e == nil {
				continue
			}
			if v := e.Evaluate(rule, emp, s, others); v != nil {
				v.Mandatory = rule.IsMandatory()
				violations = append(violations, v)
			}
		}
	}
	return violations
}

// shiftsOn 过滤出指定日期的班次
func shiftsOn(shifts []*model.DutyShift, date string) []*model.DutyShift {
	var result []*model.DutyShift
	for _, s := range shifts {
		if s.Date == date {
			result = append(result, s)
		}
	}
	return result
}

// newViolation 创建违反详情
func newViolation(rule *model.Rule, emp *model.Employee, date, message string) *Violation {
	return &Violation{
		RuleID:       rule.ID,
		RuleName:     rule.Name,
		RuleType:     rule.Type,
		EmployeeID:   emp.ID,
		EmployeeName: emp.Name,
		Date:         date,
		Message:      message,
		Mandatory:    rule.IsMandatory(),
	}
}
