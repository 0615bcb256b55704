// Package repository 提供数据访问层
package repository

import (
	"context"
	"fmt"
)

// VacationRepository 员工休假仓储
type VacationRepository struct {
	db DB
}

// NewVacationRepository 创建休假仓储
func NewVacationRepository(db DB) *VacationRepository {
	return &VacationRepository{db: db}
}

// ListByDateRange 加载日期范围内的休假记录
// 返回 日期 -> 休假员工ID列表
func (r *VacationRepository) ListByDateRange(ctx context.Context, location, startDate, endDate string) (map[string][]string, error) {
	query := `
		SELECT date, employee_id
		FROM employee_vacations
		WHERE location = $1 AND date >= $2 AND date <= $3
		ORDER BY date, employee_id
	`

	rows, err := r.db.QueryContext(ctx, query, location, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("查询休假记录失败: %w", err)
	}
	defer rows.Close()

	vacations := make(map[string][]string)
	for rows.Next() {
		var date, empID string
		if err := rows.Scan(&date, &empID); err != nil {
			return nil, fmt.Errorf("扫描行失败: %w", err)
		}
		vacations[date] = append(vacations[date], empID)
	}

	return vacations, nil
}
