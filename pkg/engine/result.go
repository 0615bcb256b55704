// Package engine 提供按日排班的调度编排器
package engine

import (
	"time"

	"github.com/google/uuid"
	"github.com/paiche/paiche/pkg/engine/constraint"
	"github.com/paiche/paiche/pkg/model"
)

// UnassignedBusiness 未能分配的任务实例（某日期上的某任务）
type UnassignedBusiness struct {
	Date         string `json:"date"`
	BusinessID   string `json:"business_id"`
	BusinessName string `json:"business_name"`
	Reason       string `json:"reason"`
}

// UnassignedEmployee 整个批次内未获得任何分配的员工
type UnassignedEmployee struct {
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
}

// Summary 排班汇总统计
type Summary struct {
	TotalBusinesses      int `json:"total_businesses"`
	AssignedBusinesses   int `json:"assigned_businesses"`
	UnassignedBusinesses int `json:"unassigned_businesses"`
	TotalEmployees       int `json:"total_employees"`
	AssignedEmployees    int `json:"assigned_employees"`
	UnassignedEmployees  int `json:"unassigned_employees"`
}

// Result 排班生成结果
type Result struct {
	// Success 仅当整个请求产生零班次时为 false
	Success bool `json:"success"`

	// Degraded 持久化失败时为 true，内存结果仍完整返回
	Degraded bool `json:"degraded,omitempty"`

	Message              string                  `json:"message,omitempty"`
	BatchID              uuid.UUID               `json:"generation_batch_id"`
	Shifts               []*model.DutyShift      `json:"shifts"`
	Violations           []*constraint.Violation `json:"violations"`
	UnassignedBusinesses []UnassignedBusiness    `json:"unassigned_businesses"`
	UnassignedEmployees  []UnassignedEmployee    `json:"unassigned_employees"`
	Summary              Summary                 `json:"summary"`
	Duration             time.Duration           `json:"-"`
}
