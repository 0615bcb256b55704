// Package model 定义排班引擎的核心数据模型
package model

import "strings"

// 方向后缀识别表
// 上游数据用显示名后缀表达去程/回程，这里在接入时一次性归一化，
// 核心算法只使用 Direction 和 PairKey 字段
var directionSuffixes = []struct {
	suffix    string
	direction string
}{
	{"（去程）", DirectionOutbound},
	{"（回程）", DirectionReturn},
	{"(去程)", DirectionOutbound},
	{"(回程)", DirectionReturn},
	{"（往路）", DirectionOutbound},
	{"（復路）", DirectionReturn},
	{"(Outbound)", DirectionOutbound},
	{"(Return)", DirectionReturn},
}

// 点呼任务名称关键词，仅在未显式标注 duty_class 时使用
var rollCallKeywords = []string{"点呼", "點呼", "点名", "roll call"}

// NormalizeBusinesses 对业务任务做接入归一化
// 填充默认人数、推断任务类别与往返方向、计算配对键，
// 归一化之后核心算法不再对名称做任何分支判断
func NormalizeBusinesses(businesses []*Business) {
	for _, b := range businesses {
		if b.Headcount <= 0 {
			b.Headcount = 1
		}
		if b.DurationDays <= 0 {
			b.DurationDays = 1
		}

		normalizeDirection(b)

		if b.Class == "" {
			b.Class = detectClass(b)
		}
	}
}

// normalizeDirection 从显示名后缀提取方向并计算配对键
func normalizeDirection(b *Business) {
	base := strings.TrimSpace(b.Name)
	for _, ds := range directionSuffixes {
		if strings.HasSuffix(base, ds.suffix) {
			if b.Direction == "" {
				b.Direction = ds.direction
			}
			base = strings.TrimSpace(strings.TrimSuffix(base, ds.suffix))
			break
		}
	}
	b.PairKey = base
}

// detectClass 未显式标注时从数据特征推断任务类别
func detectClass(b *Business) DutyClass {
	if b.DurationDays == 2 && b.Direction != "" {
		return DutyRoundTrip
	}
	lower := strings.ToLower(b.Name)
	for _, kw := range rollCallKeywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return DutyRollCall
		}
	}
	return DutyRegular
}

// TagExclusiveGroups 根据规则里的互斥组定义给任务打标签
// 关键词只在这里用一次，之后的互斥评估只比较 Exclusive 字段
func TagExclusiveGroups(businesses []*Business, rules []*Rule) {
	for _, r := range rules {
		if r.Type != RuleExclusiveAssignment || !r.Active {
			continue
		}
		for _, g := range r.Config.ExclusiveGroups {
			for _, b := range businesses {
				if b.Exclusive != "" {
					continue
				}
				for _, kw := range g.Keywords {
					if kw != "" && strings.Contains(b.Name, kw) {
						b.Exclusive = g.Name
						break
					}
				}
			}
		}
	}
}
