// Package engine 提供按日排班的调度编排器
package engine

import (
	"fmt"
	"sort"

	"github.com/paiche/paiche/pkg/model"
)

// CheckDoubleBooking 审计班次列表中的重复占用
// 同一员工同一日期的两个班次时间段（含跨午夜折算）不得重叠，
// 返回每处冲突的描述，空切片表示无冲突
func CheckDoubleBooking(shifts []*model.DutyShift) []string {
	byKey := make(map[string][]*model.DutyShift)
	var keys []string
	for _, s := range shifts {
		key := s.EmployeeID + "|" + s.Date
		if _, seen := byKey[key]; !seen {
			keys = append(keys, key)
		}
		byKey[key] = append(byKey[key], s)
	}
	sort.Strings(keys)

	var conflicts []string
	for _, key := range keys {
		group := byKey[key]
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				if group[i].OverlapsOn(group[j]) {
					conflicts = append(conflicts, fmt.Sprintf(
						"员工 %s 在 %s 的班次 %s(%s-%s) 与 %s(%s-%s) 时间重叠",
						group[i].EmployeeName, group[i].Date,
						group[i].BusinessName, group[i].StartTime, group[i].EndTime,
						group[j].BusinessName, group[j].StartTime, group[j].EndTime))
				}
			}
		}
	}
	return conflicts
}
