// Package handler 提供HTTP请求处理器
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/paiche/paiche/pkg/engine"
	"github.com/paiche/paiche/pkg/engine/constraint"
	"github.com/paiche/paiche/pkg/errors"
	"github.com/paiche/paiche/pkg/model"
)

// ShiftRecordInput 既有班次输入（验证接口使用）
type ShiftRecordInput struct {
	Date         string `json:"date"`
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name,omitempty"`
	BusinessID   string `json:"business_master_id"`
	BusinessName string `json:"business_name,omitempty"`
	Group        string `json:"business_group,omitempty"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
}

// ValidateRequest 排班验证请求
type ValidateRequest struct {
	Location  string             `json:"location"`
	Employees []EmployeeInput    `json:"employees,omitempty"`
	Shifts    []ShiftRecordInput `json:"shifts"`
	Rules     []*model.Rule      `json:"rules,omitempty"` // 内联规则，为空时从规则库加载
}

// ValidateResponse 验证响应
type ValidateResponse struct {
	IsValid    bool                    `json:"is_valid"`
	Violations []*constraint.Violation `json:"violations"`
	Conflicts  []string                `json:"conflicts"` // 同员工同日时间重叠
}

// Validate 验证既有排班是否满足规则
// 对每个班次以员工其余班次作为周期数据评估全部适用规则，
// 并附带同日重复占用审计
func (h *ShiftHandler) Validate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	if len(req.Shifts) == 0 {
		respondError(w, errors.InvalidInput("shifts", "班次列表不能为空"))
		return
	}

	rules := req.Rules
	if len(rules) == 0 && h.rules != nil {
		loaded, err := h.rules.Get(r.Context(), req.Location)
		if err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "加载规则失败"))
			return
		}
		rules = loaded
	}

	employees := make([]*model.Employee, 0, len(req.Employees))
	for _, e := range req.Employees {
		employees = append(employees, &model.Employee{
			ID:       e.ID,
			Name:     e.Name,
			Office:   req.Location,
			Team:     e.Team,
			RollCall: e.RollCall,
			Skills:   e.Skills,
		})
	}

	shifts := make([]*model.DutyShift, 0, len(req.Shifts))
	for _, s := range req.Shifts {
		shifts = append(shifts, &model.DutyShift{
			ID:           uuid.New(),
			Date:         s.Date,
			EmployeeID:   s.EmployeeID,
			EmployeeName: s.EmployeeName,
			BusinessID:   s.BusinessID,
			BusinessName: s.BusinessName,
			Group:        s.Group,
			StartTime:    s.StartTime,
			EndTime:      s.EndTime,
			Status:       model.ShiftScheduled,
			Location:     req.Location,
		})
	}

	violations := h.registry.EvaluateSchedule(rules, employees, shifts)
	conflicts := engine.CheckDoubleBooking(shifts)
	recordRuleOutcomes(violations)

	if violations == nil {
		violations = make([]*constraint.Violation, 0)
	}
	if conflicts == nil {
		conflicts = make([]string, 0)
	}

	respondJSON(w, http.StatusOK, ValidateResponse{
		IsValid:    len(violations) == 0 && len(conflicts) == 0,
		Violations: violations,
		Conflicts:  conflicts,
	})
}
