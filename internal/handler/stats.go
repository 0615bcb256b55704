// Package handler 提供HTTP请求处理器
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/paiche/paiche/pkg/errors"
	"github.com/paiche/paiche/pkg/model"
	"github.com/paiche/paiche/pkg/stats"
)

// StatsRequest 排班统计请求
type StatsRequest struct {
	Location  string             `json:"location"`
	Employees []EmployeeInput    `json:"employees,omitempty"`
	Shifts    []ShiftRecordInput `json:"shifts"`
}

// Stats 分析一批班次的负载与公平性
func (h *ShiftHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req StatsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}
	if len(req.Shifts) == 0 {
		respondError(w, errors.InvalidInput("shifts", "班次列表不能为空"))
		return
	}

	employees := make([]*model.Employee, 0, len(req.Employees))
	for _, e := range req.Employees {
		employees = append(employees, &model.Employee{ID: e.ID, Name: e.Name, Office: req.Location})
	}

	shifts := make([]*model.DutyShift, 0, len(req.Shifts))
	for _, s := range req.Shifts {
		shifts = append(shifts, &model.DutyShift{
			Date:         s.Date,
			EmployeeID:   s.EmployeeID,
			EmployeeName: s.EmployeeName,
			BusinessID:   s.BusinessID,
			BusinessName: s.BusinessName,
			Group:        s.Group,
			StartTime:    s.StartTime,
			EndTime:      s.EndTime,
		})
	}

	respondJSON(w, http.StatusOK, stats.Analyze(shifts, employees))
}
