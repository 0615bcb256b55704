// Package handler 提供HTTP请求处理器
package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/paiche/paiche/internal/repository"
	"github.com/paiche/paiche/internal/rulecache"
	"github.com/paiche/paiche/pkg/engine/constraint"
	"github.com/paiche/paiche/pkg/errors"
	"github.com/paiche/paiche/pkg/model"
)

// RuleHandler 规则库处理器
// repo 为 nil 时仅提供只读的规则定义库接口
type RuleHandler struct {
	registry *constraint.Registry
	repo     *repository.RuleRepository
	cache    *rulecache.Cache
}

// NewRuleHandler 创建规则库处理器
func NewRuleHandler(registry *constraint.Registry, repo *repository.RuleRepository, cache *rulecache.Cache) *RuleHandler {
	return &RuleHandler{registry: registry, repo: repo, cache: cache}
}

// RuleParam 规则参数定义
type RuleParam struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // int, float, array
	Description string `json:"description"`
	Default     string `json:"default"`
}

// RuleDefinition 规则定义（规则库中的完整定义）
type RuleDefinition struct {
	Type        model.RuleType `json:"rule_type"`
	DisplayName string         `json:"display_name"`
	Category    string         `json:"category"`
	Description string         `json:"description"`
	Params      []RuleParam    `json:"params"`
}

// RuleLibraryResponse 规则库响应
type RuleLibraryResponse struct {
	Library []RuleDefinition `json:"library"`
}

// ruleLibrary 引擎支持的全部规则类型定义
var ruleLibrary = map[model.RuleType]RuleDefinition{
	model.RuleMaxDailyWorkHours: {
		Type:        model.RuleMaxDailyWorkHours,
		DisplayName: "每日最大工时",
		Category:    "工时限制",
		Description: "限制员工单日累计勤务时长，跨午夜班次按实际时长折算。",
		Params: []RuleParam{
			{Name: "max_hours", Type: "float", Description: "最大工时(小时)", Default: "15"},
		},
	},
	model.RuleMaxWeeklyHours: {
		Type:        model.RuleMaxWeeklyHours,
		DisplayName: "每周最大工时",
		Category:    "工时限制",
		Description: "限制员工自然周（周日起始）内的累计勤务时长。",
		Params: []RuleParam{
			{Name: "max_hours", Type: "float", Description: "最大工时(小时)", Default: "44"},
		},
	},
	model.RuleMaxMonthlyHours: {
		Type:        model.RuleMaxMonthlyHours,
		DisplayName: "每月最大工时",
		Category:    "工时限制",
		Description: "限制员工自然月内的累计勤务时长。",
		Params: []RuleParam{
			{Name: "max_hours", Type: "float", Description: "最大工时(小时)", Default: "180"},
		},
	},
	model.RuleMaxDailyShifts: {
		Type:        model.RuleMaxDailyShifts,
		DisplayName: "每日最大班次数",
		Category:    "工时限制",
		Description: "限制员工单日可承接的任务数量。",
		Params: []RuleParam{
			{Name: "max_shifts", Type: "int", Description: "最大班次数", Default: "3"},
		},
	},
	model.RuleExclusiveAssignment: {
		Type:        model.RuleExclusiveAssignment,
		DisplayName: "互斥任务限制",
		Category:    "任务组合",
		Description: "同一互斥组内的不同任务不得在同日分配给同一员工。",
		Params: []RuleParam{
			{Name: "exclusive_groups", Type: "array", Description: "互斥组定义（名称+关键词）", Default: "[]"},
		},
	},
	model.RuleMaxConsecutiveDays: {
		Type:        model.RuleMaxConsecutiveDays,
		DisplayName: "最大连续工作天数",
		Category:    "休息保障",
		Description: "限制员工连续勤务的自然日天数。",
		Params: []RuleParam{
			{Name: "max_days", Type: "int", Description: "最大连续天数", Default: "6"},
		},
	},
	model.RuleMinRestHours: {
		Type:        model.RuleMinRestHours,
		DisplayName: "班次间最小休息时间",
		Category:    "休息保障",
		Description: "确保员工前一日最晚下班与当日上班之间有足够休息，跨午夜下班按次日时刻折算。",
		Params: []RuleParam{
			{Name: "min_rest_hours", Type: "float", Description: "最小休息时间(小时)", Default: "11"},
		},
	},
}

// Library 返回引擎支持的全部规则类型定义
func (h *RuleHandler) Library(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET方法"))
		return
	}

	library := make([]RuleDefinition, 0, len(ruleLibrary))
	for _, t := range h.registry.Types() {
		if def, ok := ruleLibrary[t]; ok {
			library = append(library, def)
		}
	}

	respondJSON(w, http.StatusOK, RuleLibraryResponse{Library: library})
}

// Collection 处理规则集合请求（GET 列表 / POST 创建）
func (h *RuleHandler) Collection(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		respondError(w, errors.New(errors.CodeInternal, "规则库未挂载数据库"))
		return
	}

	switch r.Method {
	case http.MethodGet:
		rules, err := h.repo.ListAll(r.Context())
		if err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询规则失败"))
			return
		}
		if rules == nil {
			rules = make([]*model.Rule, 0)
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{"rules": rules})

	case http.MethodPost:
		rule, appErr := decodeRule(r)
		if appErr != nil {
			respondError(w, appErr)
			return
		}
		if err := h.repo.Create(r.Context(), rule); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "创建规则失败"))
			return
		}
		h.invalidate()
		respondJSON(w, http.StatusCreated, rule)

	default:
		respondError(w, errors.New(errors.CodeInvalidInput, "不支持的方法"))
	}
}

// Item 处理单条规则请求（GET / PUT / DELETE）
func (h *RuleHandler) Item(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		respondError(w, errors.New(errors.CodeInternal, "规则库未挂载数据库"))
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/v1/rules/")
	if id == "" || strings.Contains(id, "/") {
		respondError(w, errors.InvalidInput("id", "规则ID无效"))
		return
	}

	switch r.Method {
	case http.MethodGet:
		rule, err := h.repo.GetByID(r.Context(), id)
		if err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询规则失败"))
			return
		}
		if rule == nil {
			respondError(w, errors.NotFound("规则", id))
			return
		}
		respondJSON(w, http.StatusOK, rule)

	case http.MethodPut:
		rule, appErr := decodeRule(r)
		if appErr != nil {
			respondError(w, appErr)
			return
		}
		rule.ID = id
		if err := h.repo.Update(r.Context(), rule); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "更新规则失败"))
			return
		}
		h.invalidate()
		respondJSON(w, http.StatusOK, rule)

	case http.MethodDelete:
		if err := h.repo.Delete(r.Context(), id); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "删除规则失败"))
			return
		}
		h.invalidate()
		w.WriteHeader(http.StatusNoContent)

	default:
		respondError(w, errors.New(errors.CodeInvalidInput, "不支持的方法"))
	}
}

// decodeRule 解析并校验规则请求体
func decodeRule(r *http.Request) (*model.Rule, *errors.AppError) {
	var rule model.Rule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败")
	}

	ve := &errors.ValidationErrors{}
	if rule.Name == "" {
		ve.Add("rule_name", "规则名称不能为空")
	}
	if _, ok := ruleLibrary[rule.Type]; !ok {
		ve.Add("rule_type", "不支持的规则类型: "+string(rule.Type))
	}
	switch rule.Enforcement {
	case model.EnforcementMandatory, model.EnforcementStrict, model.EnforcementRecommended, model.EnforcementOptional:
	default:
		ve.Add("enforcement_level", "执行级别无效")
	}
	if ve.HasErrors() {
		return nil, ve.ToAppError()
	}

	return &rule, nil
}

// invalidate 规则变更后失效全部缓存
func (h *RuleHandler) invalidate() {
	if h.cache != nil {
		h.cache.InvalidateAll()
	}
}
