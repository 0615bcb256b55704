// Package repository 提供数据访问层
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/paiche/paiche/pkg/model"
)

// RuleRepository 排班规则仓储
type RuleRepository struct {
	db DB
}

// NewRuleRepository 创建规则仓储
func NewRuleRepository(db DB) *RuleRepository {
	return &RuleRepository{db: db}
}

// Create 创建规则
func (r *RuleRepository) Create(ctx context.Context, rule *model.Rule) error {
	if rule.ID == "" {
		rule.ID = uuid.New().String()
	}

	configJSON, err := json.Marshal(rule.Config)
	if err != nil {
		return fmt.Errorf("序列化规则配置失败: %w", err)
	}

	query := `
		INSERT INTO scheduling_rules (
			id, rule_name, category, applicable_locations, rule_type,
			rule_config, priority_level, enforcement_level, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = r.db.ExecContext(ctx, query,
		rule.ID, rule.Name, rule.Category, pq.Array(rule.Locations), rule.Type,
		configJSON, rule.Priority, rule.Enforcement, rule.Active,
	)
	if err != nil {
		return fmt.Errorf("创建规则失败: %w", err)
	}

	return nil
}

// GetByID 根据ID获取规则
func (r *RuleRepository) GetByID(ctx context.Context, id string) (*model.Rule, error) {
	query := `
		SELECT id, rule_name, category, applicable_locations, rule_type,
			rule_config, priority_level, enforcement_level, is_active
		FROM scheduling_rules
		WHERE id = $1
	`

	rule, err := scanRule(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("查询规则失败: %w", err)
	}
	return rule, nil
}

// Update 更新规则
func (r *RuleRepository) Update(ctx context.Context, rule *model.Rule) error {
	configJSON, err := json.Marshal(rule.Config)
	if err != nil {
		return fmt.Errorf("序列化规则配置失败: %w", err)
	}

	query := `
		UPDATE scheduling_rules SET
			rule_name = $2, category = $3, applicable_locations = $4, rule_type = $5,
			rule_config = $6, priority_level = $7, enforcement_level = $8, is_active = $9
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		rule.ID, rule.Name, rule.Category, pq.Array(rule.Locations), rule.Type,
		configJSON, rule.Priority, rule.Enforcement, rule.Active,
	)
	if err != nil {
		return fmt.Errorf("更新规则失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("规则不存在")
	}

	return nil
}

// Delete 删除规则
func (r *RuleRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM scheduling_rules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("删除规则失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("规则不存在")
	}

	return nil
}

// ListActive 获取适用于指定营业所的全部启用规则
// 按优先级升序、名称升序返回，保证评估顺序确定
func (r *RuleRepository) ListActive(ctx context.Context, location string) ([]*model.Rule, error) {
	query := `
		SELECT id, rule_name, category, applicable_locations, rule_type,
			rule_config, priority_level, enforcement_level, is_active
		FROM scheduling_rules
		WHERE is_active = true
		ORDER BY priority_level ASC, rule_name ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("查询规则列表失败: %w", err)
	}
	defer rows.Close()

	var rules []*model.Rule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("扫描行失败: %w", err)
		}
		if rule.AppliesTo(location) {
			rules = append(rules, rule)
		}
	}

	return rules, nil
}

// ListAll 获取全部规则（规则库管理接口使用）
func (r *RuleRepository) ListAll(ctx context.Context) ([]*model.Rule, error) {
	query := `
		SELECT id, rule_name, category, applicable_locations, rule_type,
			rule_config, priority_level, enforcement_level, is_active
		FROM scheduling_rules
		ORDER BY priority_level ASC, rule_name ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("查询规则列表失败: %w", err)
	}
	defer rows.Close()

	var rules []*model.Rule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("扫描行失败: %w", err)
		}
		rules = append(rules, rule)
	}

	return rules, nil
}

// scanRule 从行扫描规则记录
func scanRule(row Scanner) (*model.Rule, error) {
	rule := &model.Rule{}
	var configJSON []byte
	var locations pq.StringArray

	if err := row.Scan(
		&rule.ID, &rule.Name, &rule.Category, &locations, &rule.Type,
		&configJSON, &rule.Priority, &rule.Enforcement, &rule.Active,
	); err != nil {
		return nil, err
	}

	rule.Locations = []string(locations)
	if len(configJSON) > 0 {
		if err := json.Unmarshal(configJSON, &rule.Config); err != nil {
			return nil, fmt.Errorf("解析规则配置失败: %w", err)
		}
	}

	return rule, nil
}
