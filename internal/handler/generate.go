// Package handler 提供HTTP请求处理器
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/paiche/paiche/internal/metrics"
	"github.com/paiche/paiche/internal/repository"
	"github.com/paiche/paiche/internal/rulecache"
	"github.com/paiche/paiche/pkg/engine"
	"github.com/paiche/paiche/pkg/engine/constraint"
	"github.com/paiche/paiche/pkg/engine/roundtrip"
	"github.com/paiche/paiche/pkg/errors"
	"github.com/paiche/paiche/pkg/model"
)

// ShiftHandler 排班处理器
// repositories 为 nil 时以独立模式运行：输入全部来自请求体，不做持久化
type ShiftHandler struct {
	registry  *constraint.Registry
	opts      engine.Options
	timeout   time.Duration
	rules     *rulecache.Cache
	shifts    *repository.ShiftRepository
	history   *repository.HistoryRepository
	vacations *repository.VacationRepository
}

// NewShiftHandler 创建排班处理器
func NewShiftHandler(registry *constraint.Registry, opts engine.Options, timeout time.Duration) *ShiftHandler {
	return &ShiftHandler{
		registry: registry,
		opts:     opts,
		timeout:  timeout,
	}
}

// WithRepositories 挂载持久化依赖
func (h *ShiftHandler) WithRepositories(rules *rulecache.Cache, shifts *repository.ShiftRepository, history *repository.HistoryRepository, vacations *repository.VacationRepository) *ShiftHandler {
	h.rules = rules
	h.shifts = shifts
	h.history = history
	h.vacations = vacations
	return h
}

// EmployeeInput 员工输入
type EmployeeInput struct {
	ID       string   `json:"employee_id"`
	Name     string   `json:"name"`
	Team     string   `json:"team,omitempty"`
	RollCall bool     `json:"roll_call_capable,omitempty"`
	Skills   []string `json:"skills,omitempty"`
}

// BusinessInput 业务任务输入
type BusinessInput struct {
	ID           string          `json:"business_id"`
	Name         string          `json:"name"`
	Group        string          `json:"business_group,omitempty"`
	StartTime    string          `json:"start_time"` // HH:MM
	EndTime      string          `json:"end_time"`   // HH:MM
	Headcount    int             `json:"required_headcount,omitempty"`
	PairID       string          `json:"pair_business_id,omitempty"`
	DurationDays int             `json:"duration_days,omitempty"`
	Direction    string          `json:"direction,omitempty"`
	Class        string          `json:"duty_class,omitempty"`
	Rotation     *model.Rotation `json:"rotation,omitempty"`
}

// GenerateOptions 生成选项
type GenerateOptions struct {
	Timeout int  `json:"timeout_seconds,omitempty"`
	Persist bool `json:"persist,omitempty"` // 需要数据库支撑，独立模式下忽略
}

// GenerateRequest 排班生成请求
type GenerateRequest struct {
	Location   string              `json:"location"`
	StartDate  string              `json:"start_date"`
	EndDate    string              `json:"end_date"`
	Employees  []EmployeeInput     `json:"employees"`
	Businesses []BusinessInput     `json:"businesses"`
	Rules      []*model.Rule       `json:"rules,omitempty"`     // 内联规则，为空时从规则库加载
	Vacations  map[string][]string `json:"vacations,omitempty"` // 日期 -> 休假员工
	History    map[string][]string `json:"history,omitempty"`   // 员工 -> 历史业务
	Options    *GenerateOptions    `json:"options,omitempty"`
}

// GenerateResponse 排班生成响应
type GenerateResponse struct {
	*engine.Result
	Duration string `json:"duration"`
}

// Generate 生成排班
func (h *ShiftHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	if appErr := validateGenerateRequest(&req); appErr != nil {
		respondError(w, appErr)
		return
	}

	in, appErr := h.buildInput(r.Context(), &req)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	timeout := h.timeout
	if req.Options != nil && req.Options.Timeout > 0 {
		timeout = time.Duration(req.Options.Timeout) * time.Second
	}
	runCtx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	var store engine.Store
	if req.Options != nil && req.Options.Persist && h.shifts != nil {
		store = &requestStore{shifts: h.shifts, history: h.history, location: req.Location}
	}

	eng := engine.New(h.registry, store, h.opts)

	if g := metrics.ActiveGenerations(); g != nil {
		g.Inc()
		defer g.Dec()
	}

	result, err := eng.Run(runCtx, in)
	if err != nil {
		respondFailure(w, err, "排班失败")
		return
	}

	metrics.RecordGeneration(req.Location, result.Success, result.Degraded,
		len(result.Shifts), len(result.UnassignedBusinesses), result.Duration)
	recordRuleOutcomes(result.Violations)

	respondJSON(w, http.StatusOK, GenerateResponse{
		Result:   result,
		Duration: result.Duration.String(),
	})
}

// recordRuleOutcomes 把带规则来源的违反计入规则评估指标
func recordRuleOutcomes(violations []*constraint.Violation) {
	for _, v := range violations {
		if v.RuleType != "" {
			metrics.RecordRuleEvaluation(string(v.RuleType), false)
		}
	}
}

// buildInput 把请求体组装为引擎输入
// 内联数据优先；缺失的规则/休假/历史在有数据库时从仓储补齐
func (h *ShiftHandler) buildInput(ctx context.Context, req *GenerateRequest) (*engine.Input, *errors.AppError) {
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

	businesses := make([]*model.Business, 0, len(req.Businesses))
	for _, b := range req.Businesses {
		businesses = append(businesses, &model.Business{
			ID:           b.ID,
			Name:         b.Name,
			Office:       req.Location,
			Group:        b.Group,
			StartTime:    b.StartTime,
			EndTime:      b.EndTime,
			Headcount:    b.Headcount,
			PairID:       b.PairID,
			DurationDays: b.DurationDays,
			Direction:    b.Direction,
			Class:        model.DutyClass(b.Class),
			Rotation:     b.Rotation,
		})
	}

	rules := req.Rules
	if len(rules) == 0 && h.rules != nil {
		loaded, err := h.rules.Get(ctx, req.Location)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeDatabaseError, "加载规则失败")
		}
		rules = loaded
	}

	// 接入归一化：类别推断、方向后缀、互斥组标签只在这里做一次
	model.NormalizeBusinesses(businesses)
	model.TagExclusiveGroups(businesses, rules)

	vacations := req.Vacations
	if vacations == nil && h.vacations != nil {
		loaded, err := h.vacations.ListByDateRange(ctx, req.Location, req.StartDate, req.EndDate)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeDatabaseError, "加载休假记录失败")
		}
		vacations = loaded
	}

	history := make(map[string]map[string]bool)
	if req.History != nil {
		for empID, ids := range req.History {
			history[empID] = make(map[string]bool, len(ids))
			for _, id := range ids {
				history[empID][id] = true
			}
		}
	} else if h.history != nil {
		loaded, err := h.history.Load(ctx, req.Location)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeDatabaseError, "加载执行历史失败")
		}
		history = loaded
	}

	return &engine.Input{
		Location:   req.Location,
		Range:      model.DateRange{StartDate: req.StartDate, EndDate: req.EndDate},
		Employees:  employees,
		Businesses: businesses,
		Rules:      rules,
		Vacations:  vacations,
		History:    history,
	}, nil
}

// validateGenerateRequest 验证请求
func validateGenerateRequest(req *GenerateRequest) *errors.AppError {
	ve := &errors.ValidationErrors{}

	if req.Location == "" {
		ve.Add("location", "营业所不能为空")
	}
	if req.StartDate == "" {
		ve.Add("start_date", "开始日期不能为空")
	}
	if req.EndDate == "" {
		ve.Add("end_date", "结束日期不能为空")
	}
	if len(req.Employees) == 0 {
		ve.Add("employees", "员工列表不能为空")
	}
	if len(req.Businesses) == 0 {
		ve.Add("businesses", "任务列表不能为空")
	}

	if req.StartDate != "" {
		if _, err := time.Parse("2006-01-02", req.StartDate); err != nil {
			ve.Add("start_date", "日期格式无效，应为YYYY-MM-DD")
		}
	}
	if req.EndDate != "" {
		if _, err := time.Parse("2006-01-02", req.EndDate); err != nil {
			ve.Add("end_date", "日期格式无效，应为YYYY-MM-DD")
		}
	}

	for _, b := range req.Businesses {
		if _, err := model.NewClockRange(b.StartTime, b.EndTime); err != nil {
			ve.Add("businesses", "任务 "+b.Name+" 时间格式无效，应为HH:MM")
			break
		}
	}

	if ve.HasErrors() {
		return ve.ToAppError()
	}
	return nil
}

// requestStore 单次请求的持久化适配器，把营业所绑定到历史写入
type requestStore struct {
	shifts   *repository.ShiftRepository
	history  *repository.HistoryRepository
	location string
}

func (s *requestStore) SaveShifts(ctx context.Context, shifts []*model.DutyShift) error {
	return s.shifts.SaveShifts(ctx, shifts)
}

func (s *requestStore) SaveHistory(ctx context.Context, empID, businessID string) error {
	if s.history == nil {
		return nil
	}
	return s.history.Append(ctx, s.location, empID, businessID)
}

func (s *requestStore) SaveViolations(ctx context.Context, batchID uuid.UUID, violations []*constraint.Violation) error {
	return s.shifts.SaveViolations(ctx, batchID, violations)
}

// DefaultRotation 从配置构造默认轮换
func DefaultRotation(odd, even string) roundtrip.Options {
	opt := roundtrip.DefaultOptions()
	if odd != "" {
		opt.OddDayTeam = odd
	}
	if even != "" {
		opt.EvenDayTeam = even
	}
	return opt
}
