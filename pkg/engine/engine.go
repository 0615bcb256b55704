// Package engine 提供按日排班的调度编排器
//
// 引擎对目标范围内的每个日期执行一次状态机：
// 加载 -> 休假过滤 -> 任务分区（点呼/成组/单一）-> 三阶段分配 -> 汇总。
// 跨日往返任务由独立子流程在通用阶段之前处理，其占用的员工
// 从候选池中扣除。同一运行内的历史与计数增量可见，后续任务的
// 排序依赖先前分配的副作用，因此日期之间严格串行。
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/paiche/paiche/pkg/engine/constraint"
	"github.com/paiche/paiche/pkg/engine/ranking"
	"github.com/paiche/paiche/pkg/engine/roundtrip"
	"github.com/paiche/paiche/pkg/errors"
	"github.com/paiche/paiche/pkg/logger"
	"github.com/paiche/paiche/pkg/model"
)

// Store 排班结果的持久化协作方
// 写入失败不中断排班，只将结果标记为降级
type Store interface {
	// SaveShifts 持久化班次（增量写入，不做批末汇总）
	SaveShifts(ctx context.Context, shifts []*model.DutyShift) error

	// SaveHistory 追加员工的业务执行历史
	SaveHistory(ctx context.Context, empID, businessID string) error

	// SaveViolations 持久化本批次的违反记录
	SaveViolations(ctx context.Context, batchID uuid.UUID, violations []*constraint.Violation) error
}

// Options 引擎配置
type Options struct {
	// Rotation 往返任务的默认班组轮换
	Rotation roundtrip.Options

	// SettleDelay 多日生成时相邻日期之间的等待时间，
	// 仅用于让持久化层沉降
	SettleDelay time.Duration
}

// DefaultOptions 默认引擎配置
func DefaultOptions() Options {
	return Options{
		Rotation:    roundtrip.DefaultOptions(),
		SettleDelay: 100 * time.Millisecond,
	}
}

// Input 一次生成运行的全部输入
// 运行期间输入不可变，规则已按营业所过滤加载
type Input struct {
	Location   string
	Range      model.DateRange
	Employees  []*model.Employee
	Businesses []*model.Business
	Rules      []*model.Rule
	Vacations  map[string][]string // 日期 -> 休假员工
	History    map[string]map[string]bool
}

// Engine 排班编排器
type Engine struct {
	registry *constraint.Registry
	store    Store
	opts     Options
	log      *logger.EngineLogger
}

// New 创建排班引擎
// store 为 nil 时跳过持久化（独立模式）
func New(registry *constraint.Registry, store Store, opts Options) *Engine {
	return &Engine{
		registry: registry,
		store:    store,
		opts:     opts,
		log:      logger.NewEngineLogger(),
	}
}

// runState 单次运行的可变状态
type runState struct {
	rank        *ranking.Context
	shiftsByEmp map[string][]*model.DutyShift
}

// add 记录一次分配并更新计数，对同一运行内的后续任务立即可见
func (s *runState) add(shift *model.DutyShift) {
	s.shiftsByEmp[shift.EmployeeID] = append(s.shiftsByEmp[shift.EmployeeID], shift)
	s.rank.Record(shift.EmployeeID, shift.BusinessID)
}

// sameDayCounts 统计各员工在指定日期的班次数
func (s *runState) sameDayCounts(date string) map[string]int {
	counts := make(map[string]int)
	for empID, shifts := range s.shiftsByEmp {
		for _, sh := range shifts {
			if sh.Date == date {
				counts[empID]++
			}
		}
	}
	return counts
}

// overlaps 检查候选班次是否与员工已有班次时间重叠
func (s *runState) overlaps(candidate *model.DutyShift) bool {
	for _, sh := range s.shiftsByEmp[candidate.EmployeeID] {
		if sh.OverlapsOn(candidate) {
			return true
		}
	}
	return false
}

// Run 执行一次排班生成
// 输入错误直接返回错误；运行中的崩溃转换为失败结果，
// 崩溃信息作为唯一违反记录返回，不向传输层传播
func (e *Engine) Run(ctx context.Context, in *Input) (result *Result, err error) {
	if len(in.Employees) == 0 {
		return nil, errors.InvalidInput("employees", "员工列表不能为空")
	}
	if len(in.Businesses) == 0 {
		return nil, errors.InvalidInput("businesses", "任务列表不能为空")
	}
	dates, derr := in.Range.Dates()
	if derr != nil {
		return nil, errors.Wrap(derr, errors.CodeInvalidTimeRange, "日期范围无效")
	}

	start := time.Now()
	batchID := uuid.New()

	result = &Result{
		BatchID:              batchID,
		Shifts:               make([]*model.DutyShift, 0),
		Violations:           make([]*constraint.Violation, 0),
		UnassignedBusinesses: make([]UnassignedBusiness, 0),
		UnassignedEmployees:  make([]UnassignedEmployee, 0),
	}

	defer func() {
		if p := recover(); p != nil {
			result = &Result{
				BatchID: batchID,
				Success: false,
				Message: "排班运行异常中止",
				Shifts:  make([]*model.DutyShift, 0),
				Violations: []*constraint.Violation{{
					Message: fmt.Sprintf("排班运行异常: %v", p),
				}},
			}
			err = nil
		}
	}()

	e.log.StartGeneration(batchID.String(), in.Location, len(in.Employees), len(dates))

	state := &runState{
		rank:        ranking.NewContext(copyHistory(in.History)),
		shiftsByEmp: make(map[string][]*model.DutyShift),
	}

	// 往返任务子流程先行，占用的员工从通用候选池扣除
	pairs := roundtrip.DetectPairs(in.Businesses)
	rt := roundtrip.Assign(dates, pairs, in.Employees, e.opts.Rotation, batchID, in.Location)
	for _, s := range rt.Shifts {
		state.add(s)
		result.Shifts = append(result.Shifts, s)
		e.persistShift(ctx, result, s)
	}
	for _, u := range rt.Unassigned {
		result.UnassignedBusinesses = append(result.UnassignedBusinesses, UnassignedBusiness{
			Date: u.Date, BusinessID: u.BusinessID, BusinessName: u.BusinessName, Reason: u.Reason,
		})
	}
	for _, d := range rt.Departures {
		e.log.RoundTripAssigned(d.PairKey, d.Date, d.Team, d.Employees)
	}

	// 逐日串行处理：后一日的排序依赖前一日写入的历史
	for i, date := range dates {
		if ctx.Err() != nil {
			result.Message = "排班被中断，返回已完成日期的结果"
			break
		}

		e.runDate(ctx, in, state, result, date, rt.Consumed)

		if e.opts.SettleDelay > 0 && i < len(dates)-1 {
			time.Sleep(e.opts.SettleDelay)
		}
	}

	e.finalize(ctx, in, result, dates)
	result.Duration = time.Since(start)
	e.log.GenerationComplete(batchID.String(), result.Duration, len(result.Shifts))
	return result, nil
}

// runDate 处理单个日期的全部阶段
func (e *Engine) runDate(ctx context.Context, in *Input, state *runState, result *Result, date string, consumed map[string]bool) {
	vacationing := make(map[string]bool)
	for _, empID := range in.Vacations[date] {
		vacationing[empID] = true
	}

	var pool []*model.Employee
	for _, emp := range in.Employees {
		if vacationing[emp.ID] || consumed[emp.ID] {
			continue
		}
		pool = append(pool, emp)
	}

	rollCall, groups, singles := partition(in.Businesses)

	// 候选池为空：该日整体失败，不做部分分配
	if len(pool) == 0 {
		result.Violations = append(result.Violations, &constraint.Violation{
			Date:    date,
			Message: fmt.Sprintf("%s 无可用员工，当日排班未执行", date),
		})
		for _, b := range in.Businesses {
			if b.IsRoundTrip() {
				continue
			}
			result.UnassignedBusinesses = append(result.UnassignedBusinesses, UnassignedBusiness{
				Date: date, BusinessID: b.ID, BusinessName: b.Name, Reason: "无可用员工",
			})
		}
		e.log.DateComplete(date, 0, len(rollCall)+len(singles))
		return
	}

	assignedBefore := len(result.Shifts)

	// 阶段0：点呼任务，限定点呼资格池，只做时间重叠检查
	for _, duty := range rollCall {
		e.assignRollCall(ctx, state, result, duty, pool, date, in.Location)
	}

	// 阶段1：成组任务，整组原子分配给同一员工
	for _, group := range groups {
		e.assignGroup(ctx, in, state, result, group, pool, date)
	}

	// 阶段2：剩余单一任务
	for _, duty := range singles {
		e.assignSingle(ctx, in, state, result, duty, pool, date)
	}

	e.log.DateComplete(date, len(result.Shifts)-assignedBefore, 0)
}

// partition 把任务分为点呼、成组、单一三类（往返任务不参与）
// 成组优先使用显式配对标识；其余任务中同一业务分组内时间互不
// 重叠的多任务簇自动成组
func partition(businesses []*model.Business) (rollCall []*model.Business, groups [][]*model.Business, singles []*model.Business) {
	byPair := make(map[string][]*model.Business)
	var pairOrder []string
	var rest []*model.Business

	for _, b := range businesses {
		if b.IsRoundTrip() {
			continue
		}
		if b.Class == model.DutyRollCall {
			rollCall = append(rollCall, b)
			continue
		}
		if b.PairID != "" {
			if _, seen := byPair[b.PairID]; !seen {
				pairOrder = append(pairOrder, b.PairID)
			}
			byPair[b.PairID] = append(byPair[b.PairID], b)
			continue
		}
		rest = append(rest, b)
	}

	for _, key := range pairOrder {
		g := byPair[key]
		if len(g) > 1 {
			groups = append(groups, g)
		} else {
			singles = append(singles, g...)
		}
	}

	// 自动成簇：同业务分组、时间互不冲突的多任务
	byGroup := make(map[string][]*model.Business)
	var groupOrder []string
	for _, b := range rest {
		if _, seen := byGroup[b.Group]; !seen {
			groupOrder = append(groupOrder, b.Group)
		}
		byGroup[b.Group] = append(byGroup[b.Group], b)
	}
	for _, key := range groupOrder {
		g := byGroup[key]
		if len(g) > 1 && !selfConflicting(g) {
			groups = append(groups, g)
		} else {
			singles = append(singles, g...)
		}
	}

	return rollCall, groups, singles
}

// selfConflicting 检查任务组内部是否存在时间重叠
func selfConflicting(group []*model.Business) bool {
	for i := 0; i < len(group); i++ {
		ri, err := group[i].Clock()
		if err != nil {
			return true
		}
		for j := i + 1; j < len(group); j++ {
			rj, err := group[j].Clock()
			if err != nil {
				return true
			}
			if ri.Overlaps(rj) {
				return true
			}
		}
	}
	return false
}

// newShift 从任务创建候选班次
func newShift(b *model.Business, emp *model.Employee, date string, batchID uuid.UUID, location string) *model.DutyShift {
	return &model.DutyShift{
		ID:           uuid.New(),
		Date:         date,
		EmployeeID:   emp.ID,
		EmployeeName: emp.Name,
		BusinessID:   b.ID,
		BusinessName: b.Name,
		Group:        b.Group,
		StartTime:    b.StartTime,
		EndTime:      b.EndTime,
		Status:       model.ShiftScheduled,
		BatchID:      batchID,
		Location:     location,
		Exclusive:    b.Exclusive,
	}
}

// skillPool 过滤出具备任务业务分组技能的员工
// 未登记任何技能的员工视为不受限
func skillPool(pool []*model.Employee, group string) []*model.Employee {
	if group == "" {
		return pool
	}
	var result []*model.Employee
	for _, e := range pool {
		if len(e.Skills) == 0 || e.HasSkill(group) {
			result = append(result, e)
		}
	}
	return result
}

// assignRollCall 阶段0：分配单个点呼任务
func (e *Engine) assignRollCall(ctx context.Context, state *runState, result *Result, duty *model.Business, pool []*model.Employee, date, location string) {
	assigned := 0

	for slot := 0; slot < duty.Headcount; slot++ {
		capped := ranking.FilterPool(pool, state.sameDayCounts(date))
		ranked := state.rank.RankRollCall(capped)

		var chosen *model.Employee
		for _, emp := range ranked {
			if state.onDuty(emp.ID, duty.ID, date) {
				continue
			}
			candidate := newShift(duty, emp, date, result.BatchID, location)
			if state.overlaps(candidate) {
				continue
			}
			chosen = emp
			break
		}

		if chosen == nil {
			break
		}

		shift := newShift(duty, chosen, date, result.BatchID, location)
		state.add(shift)
		result.Shifts = append(result.Shifts, shift)
		e.persistShift(ctx, result, shift)
		assigned++
	}

	if assigned < duty.Headcount {
		result.UnassignedBusinesses = append(result.UnassignedBusinesses, UnassignedBusiness{
			Date: date, BusinessID: duty.ID, BusinessName: duty.Name,
			Reason: fmt.Sprintf("所需 %d 人，仅分配 %d 人", duty.Headcount, assigned),
		})
		result.Violations = append(result.Violations, &constraint.Violation{
			Date:    date,
			Message: fmt.Sprintf("点呼任务 %s 在 %s 无足够具备点呼资格的员工", duty.Name, date),
		})
	}
}

// onDuty 检查员工当日是否已分配到指定任务
func (s *runState) onDuty(empID, businessID, date string) bool {
	for _, sh := range s.shiftsByEmp[empID] {
		if sh.Date == date && sh.BusinessID == businessID {
			return true
		}
	}
	return false
}

// groupCandidate 成组分配的候选评估结果
type groupCandidate struct {
	emp        *model.Employee
	violations []*constraint.Violation
}

// assignGroup 阶段1：把一组任务原子分配给单个员工
// 组内任一任务不可分配则整组落空，不产生部分分配
func (e *Engine) assignGroup(ctx context.Context, in *Input, state *runState, result *Result, group []*model.Business, pool []*model.Employee, date string) {
	reportGroup := func(reason string) {
		for _, duty := range group {
			result.UnassignedBusinesses = append(result.UnassignedBusinesses, UnassignedBusiness{
				Date: date, BusinessID: duty.ID, BusinessName: duty.Name, Reason: reason,
			})
		}
		result.Violations = append(result.Violations, &constraint.Violation{
			Date:    date,
			Message: fmt.Sprintf("任务组 %s 在 %s 未能分配: %s", group[0].Name, date, reason),
		})
	}

	if selfConflicting(group) {
		reportGroup("任务组内部时间冲突")
		return
	}

	candidates := pool
	for _, duty := range group {
		candidates = skillPool(candidates, duty.Group)
	}
	dayCounts := state.sameDayCounts(date)
	capped := ranking.FilterPool(candidates, dayCounts)
	ranked := state.rank.Rank(group[0], capped)

	var best *groupCandidate
	for _, emp := range ranked {
		var soft []*constraint.Violation
		eligible := true

		// 组内前序任务的候选班次计入累计约束与当日上限，
		// 整组的合计负载与逐个分配时看到的一致
		built := make([]*model.DutyShift, 0, len(group))
		for _, duty := range group {
			if dayCounts[emp.ID]+len(built) >= ranking.SameDayHardCap {
				eligible = false
				break
			}
			candidate := newShift(duty, emp, date, result.BatchID, in.Location)
			if state.overlaps(candidate) {
				eligible = false
				break
			}
			existing := make([]*model.DutyShift, 0, len(state.shiftsByEmp[emp.ID])+len(built))
			existing = append(existing, state.shiftsByEmp[emp.ID]...)
			existing = append(existing, built...)
			hardFail, vs := e.registry.Check(in.Rules, emp, candidate, existing)
			if hardFail {
				eligible = false
				break
			}
			soft = append(soft, vs...)
			built = append(built, candidate)
		}
		if !eligible {
			continue
		}

		// 优先零软违反，其次软违反最少（同数量取排序靠前者）
		if len(soft) == 0 {
			best = &groupCandidate{emp: emp, violations: soft}
			break
		}
		if best == nil || len(soft) < len(best.violations) {
			best = &groupCandidate{emp: emp, violations: soft}
		}
	}

	if best == nil {
		reportGroup("无满足全部约束的员工")
		return
	}

	for _, duty := range group {
		shift := newShift(duty, best.emp, date, result.BatchID, in.Location)
		state.add(shift)
		result.Shifts = append(result.Shifts, shift)
		e.persistShift(ctx, result, shift)
	}
	for _, v := range best.violations {
		e.log.RuleViolation(v.RuleName, v.Message)
	}
	result.Violations = append(result.Violations, best.violations...)
}

// assignSingle 阶段2：分配单个任务
func (e *Engine) assignSingle(ctx context.Context, in *Input, state *runState, result *Result, duty *model.Business, pool []*model.Employee, date string) {
	assigned := 0

	for slot := 0; slot < duty.Headcount; slot++ {
		candidates := skillPool(pool, duty.Group)
		capped := ranking.FilterPool(candidates, state.sameDayCounts(date))
		ranked := state.rank.Rank(duty, capped)

		var best *groupCandidate
		for _, emp := range ranked {
			if state.onDuty(emp.ID, duty.ID, date) {
				continue
			}
			candidate := newShift(duty, emp, date, result.BatchID, in.Location)
			if state.overlaps(candidate) {
				continue
			}
			hardFail, soft := e.registry.Check(in.Rules, emp, candidate, state.shiftsByEmp[emp.ID])
			if hardFail {
				continue
			}
			if len(soft) == 0 {
				best = &groupCandidate{emp: emp, violations: soft}
				break
			}
			if best == nil || len(soft) < len(best.violations) {
				best = &groupCandidate{emp: emp, violations: soft}
			}
		}

		if best == nil {
			break
		}

		shift := newShift(duty, best.emp, date, result.BatchID, in.Location)
		state.add(shift)
		result.Shifts = append(result.Shifts, shift)
		for _, v := range best.violations {
			e.log.RuleViolation(v.RuleName, v.Message)
		}
		result.Violations = append(result.Violations, best.violations...)
		e.persistShift(ctx, result, shift)
		assigned++
	}

	if assigned < duty.Headcount {
		result.UnassignedBusinesses = append(result.UnassignedBusinesses, UnassignedBusiness{
			Date: date, BusinessID: duty.ID, BusinessName: duty.Name,
			Reason: fmt.Sprintf("所需 %d 人，仅分配 %d 人", duty.Headcount, assigned),
		})
		result.Violations = append(result.Violations, &constraint.Violation{
			Date:    date,
			Message: fmt.Sprintf("任务 %s 在 %s 无可用员工", duty.Name, date),
		})
	}
}

// persistShift 增量持久化单个班次与历史更新
// 失败只记录日志并标记结果降级
func (e *Engine) persistShift(ctx context.Context, result *Result, shift *model.DutyShift) {
	if e.store == nil {
		return
	}
	if err := e.store.SaveShifts(ctx, []*model.DutyShift{shift}); err != nil {
		e.log.PersistenceFailed("shift", err)
		result.Degraded = true
	}
	if err := e.store.SaveHistory(ctx, shift.EmployeeID, shift.BusinessID); err != nil {
		e.log.PersistenceFailed("history", err)
		result.Degraded = true
	}
}

// finalize 计算汇总统计并持久化违反记录
func (e *Engine) finalize(ctx context.Context, in *Input, result *Result, dates []string) {
	assignedEmp := make(map[string]bool)
	for _, s := range result.Shifts {
		assignedEmp[s.EmployeeID] = true
	}
	for _, emp := range in.Employees {
		if !assignedEmp[emp.ID] {
			result.UnassignedEmployees = append(result.UnassignedEmployees, UnassignedEmployee{
				EmployeeID: emp.ID, EmployeeName: emp.Name,
			})
		}
	}

	// 任务实例总数 = 每日期上的非往返任务 + 往返对的可出发日实例
	perDate := 0
	for _, b := range in.Businesses {
		if !b.IsRoundTrip() {
			perDate++
		}
	}
	total := perDate * len(dates)
	pairDates := len(dates) - 1
	if pairDates < 0 {
		pairDates = 0
	}
	total += len(roundtrip.DetectPairs(in.Businesses)) * pairDates

	result.Summary = Summary{
		TotalBusinesses:      total,
		UnassignedBusinesses: len(result.UnassignedBusinesses),
		AssignedBusinesses:   total - len(result.UnassignedBusinesses),
		TotalEmployees:       len(in.Employees),
		AssignedEmployees:    len(assignedEmp),
		UnassignedEmployees:  len(result.UnassignedEmployees),
	}

	result.Success = len(result.Shifts) > 0
	if result.Message == "" {
		if result.Success {
			result.Message = fmt.Sprintf("排班完成，生成 %d 个班次", len(result.Shifts))
		} else {
			result.Message = "未生成任何班次"
		}
	}

	if e.store != nil && len(result.Violations) > 0 {
		if err := e.store.SaveViolations(ctx, result.BatchID, result.Violations); err != nil {
			e.log.PersistenceFailed("violations", err)
			result.Degraded = true
		}
	}
}

// copyHistory 复制历史数据，避免运行中的增量更新污染调用方输入
func copyHistory(history map[string]map[string]bool) map[string]map[string]bool {
	if history == nil {
		return nil
	}
	dup := make(map[string]map[string]bool, len(history))
	for empID, set := range history {
		inner := make(map[string]bool, len(set))
		for k, v := range set {
			inner[k] = v
		}
		dup[empID] = inner
	}
	return dup
}
