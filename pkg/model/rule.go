// Package model 定义排班引擎的核心数据模型
package model

// RuleType 规则类型标识
type RuleType string

const (
	RuleMaxDailyWorkHours   RuleType = "max_daily_work_hours"
	RuleMaxDailyShifts      RuleType = "max_daily_shifts"
	RuleExclusiveAssignment RuleType = "exclusive_assignment"
	RuleMaxConsecutiveDays  RuleType = "max_consecutive_days"
	RuleMinRestHours        RuleType = "min_rest_hours"
	RuleMaxWeeklyHours      RuleType = "max_weekly_hours"
	RuleMaxMonthlyHours     RuleType = "max_monthly_hours"
)

// EnforcementLevel 规则执行级别
type EnforcementLevel string

const (
	EnforcementMandatory   EnforcementLevel = "mandatory"   // 强制：不可违反
	EnforcementStrict      EnforcementLevel = "strict"      // 严格：违反需上报
	EnforcementRecommended EnforcementLevel = "recommended" // 建议
	EnforcementOptional    EnforcementLevel = "optional"    // 可选
)

// ExclusiveGroup 互斥任务组定义
// Keywords 仅在数据接入时用于给任务打互斥标签，核心评估只比较标签
type ExclusiveGroup struct {
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
}

// RuleConfig 规则参数载荷（constraint_type 已由 Rule.Type 承担）
type RuleConfig struct {
	MaxHours        float64          `json:"max_hours,omitempty"`
	MaxShifts       int              `json:"max_shifts,omitempty"`
	MaxDays         int              `json:"max_days,omitempty"`
	MinRestHours    float64          `json:"min_rest_hours,omitempty"`
	ExclusiveGroups []ExclusiveGroup `json:"exclusive_groups,omitempty"`
}

// Rule 排班规则/约束记录
// 由规则库外部维护，每次生成运行开始时加载，运行期间不可变
type Rule struct {
	ID          string           `json:"id" db:"id"`
	Name        string           `json:"rule_name" db:"rule_name"`
	Category    string           `json:"category" db:"category"`
	Locations   []string         `json:"applicable_locations" db:"-"`
	Type        RuleType         `json:"rule_type" db:"rule_type"`
	Config      RuleConfig       `json:"rule_config" db:"-"`
	Priority    int              `json:"priority_level" db:"priority_level"` // 0 = 最高
	Enforcement EnforcementLevel `json:"enforcement_level" db:"enforcement_level"`
	Active      bool             `json:"is_active" db:"is_active"`
}

// IsMandatory 检查规则是否为强制排除级别
// 仅 priority_level=0 且 enforcement=mandatory 的失败会使候选人完全不可用，
// 其余失败一律作为软违反记录（影响排序，不排除候选人）
func (r *Rule) IsMandatory() bool {
	return r.Priority == 0 && r.Enforcement == EnforcementMandatory
}

// AppliesTo 检查规则是否适用于指定营业所
// 适用地点为空表示全局适用
func (r *Rule) AppliesTo(location string) bool {
	if len(r.Locations) == 0 {
		return true
	}
	for _, loc := range r.Locations {
		if loc == location || loc == "all" {
			return true
		}
	}
	return false
}
