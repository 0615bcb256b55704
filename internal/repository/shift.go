// Package repository 提供数据访问层
package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/paiche/paiche/pkg/engine/constraint"
	"github.com/paiche/paiche/pkg/model"
)

// ShiftRepository 班次仓储
// 同时实现引擎的 Store 接口，供生成运行增量持久化
type ShiftRepository struct {
	db DB
}

// NewShiftRepository 创建班次仓储
func NewShiftRepository(db DB) *ShiftRepository {
	return &ShiftRepository{db: db}
}

// SaveShifts 批量写入班次
func (r *ShiftRepository) SaveShifts(ctx context.Context, shifts []*model.DutyShift) error {
	if len(shifts) == 0 {
		return nil
	}

	var values []string
	var args []interface{}
	argIndex := 1

	now := time.Now()
	for _, s := range shifts {
		if s.ID == uuid.Nil {
			s.ID = uuid.New()
		}

		values = append(values, fmt.Sprintf(
			"($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			argIndex, argIndex+1, argIndex+2, argIndex+3, argIndex+4, argIndex+5,
			argIndex+6, argIndex+7, argIndex+8, argIndex+9, argIndex+10, argIndex+11,
			argIndex+12, argIndex+13,
		))
		args = append(args,
			s.ID, s.Date, s.EmployeeID, s.EmployeeName, s.BusinessID, s.BusinessName,
			s.Group, s.StartTime, s.EndTime, s.Status, s.BatchID, s.Location,
			s.SetID, now,
		)
		argIndex += 14
	}

	query := fmt.Sprintf(`
		INSERT INTO duty_shifts (
			id, date, employee_id, employee_name, business_id, business_name,
			business_group, start_time, end_time, status, batch_id, location,
			set_id, created_at
		) VALUES %s
	`, strings.Join(values, ", "))

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("写入班次失败: %w", err)
	}

	return nil
}

// SaveViolations 写入批次的违反记录
func (r *ShiftRepository) SaveViolations(ctx context.Context, batchID uuid.UUID, violations []*constraint.Violation) error {
	if len(violations) == 0 {
		return nil
	}

	var values []string
	var args []interface{}
	argIndex := 1

	now := time.Now()
	for _, v := range violations {
		values = append(values, fmt.Sprintf(
			"($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			argIndex, argIndex+1, argIndex+2, argIndex+3, argIndex+4,
			argIndex+5, argIndex+6, argIndex+7, argIndex+8,
		))
		args = append(args,
			uuid.New(), batchID, v.RuleID, v.RuleType, v.EmployeeID, v.Date, v.Message, v.Mandatory, now,
		)
		argIndex += 9
	}

	query := fmt.Sprintf(`
		INSERT INTO shift_violations (
			id, batch_id, rule_id, rule_type, employee_id, date, message, mandatory, created_at
		) VALUES %s
	`, strings.Join(values, ", "))

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("写入违反记录失败: %w", err)
	}

	return nil
}

// ListByDateRange 查询日期范围内的班次
func (r *ShiftRepository) ListByDateRange(ctx context.Context, location, startDate, endDate string) ([]*model.DutyShift, error) {
	query := `
		SELECT id, date, employee_id, employee_name, business_id, business_name,
			business_group, start_time, end_time, status, batch_id, location, set_id
		FROM duty_shifts
		WHERE location = $1 AND date >= $2 AND date <= $3
		ORDER BY date, start_time, employee_id
	`

	rows, err := r.db.QueryContext(ctx, query, location, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("查询班次失败: %w", err)
	}
	defer rows.Close()

	var shifts []*model.DutyShift
	for rows.Next() {
		s := &model.DutyShift{}
		if err := rows.Scan(
			&s.ID, &s.Date, &s.EmployeeID, &s.EmployeeName, &s.BusinessID, &s.BusinessName,
			&s.Group, &s.StartTime, &s.EndTime, &s.Status, &s.BatchID, &s.Location, &s.SetID,
		); err != nil {
			return nil, fmt.Errorf("扫描行失败: %w", err)
		}
		shifts = append(shifts, s)
	}

	return shifts, nil
}

// DeleteByBatch 删除批次的全部班次
// 重新生成时先清空旧批次，班次记录不做原地更新
func (r *ShiftRepository) DeleteByBatch(ctx context.Context, batchID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM duty_shifts WHERE batch_id = $1`, batchID); err != nil {
		return fmt.Errorf("删除批次班次失败: %w", err)
	}
	return nil
}
