// Package repository 提供数据访问层
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// HistoryRepository 员工业务执行历史仓储
// 历史集合是多样性排序的输入，每次生成运行开始时整体加载
type HistoryRepository struct {
	db DB
}

// NewHistoryRepository 创建历史仓储
func NewHistoryRepository(db DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Load 加载全部员工的历史业务集合
// 返回 员工ID -> 业务ID集合
func (r *HistoryRepository) Load(ctx context.Context, location string) (map[string]map[string]bool, error) {
	query := `
		SELECT DISTINCT employee_id, business_id
		FROM employee_business_history
		WHERE location = $1
	`

	rows, err := r.db.QueryContext(ctx, query, location)
	if err != nil {
		return nil, fmt.Errorf("加载执行历史失败: %w", err)
	}
	defer rows.Close()

	history := make(map[string]map[string]bool)
	for rows.Next() {
		var empID, businessID string
		if err := rows.Scan(&empID, &businessID); err != nil {
			return nil, fmt.Errorf("扫描行失败: %w", err)
		}
		if history[empID] == nil {
			history[empID] = make(map[string]bool)
		}
		history[empID][businessID] = true
	}

	return history, nil
}

// Append 追加一条执行历史
// 重复记录由唯一约束吸收，不视为错误
func (r *HistoryRepository) Append(ctx context.Context, location, empID, businessID string) error {
	query := `
		INSERT INTO employee_business_history (id, location, employee_id, business_id, recorded_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (location, employee_id, business_id) DO NOTHING
	`

	if _, err := r.db.ExecContext(ctx, query, uuid.New(), location, empID, businessID, time.Now()); err != nil {
		return fmt.Errorf("写入执行历史失败: %w", err)
	}

	return nil
}
