package engine

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/paiche/paiche/pkg/engine/constraint"
	"github.com/paiche/paiche/pkg/errors"
	"github.com/paiche/paiche/pkg/model"
)

func newEngine() *Engine {
	opts := DefaultOptions()
	opts.SettleDelay = 0
	return New(constraint.NewRegistry(), nil, opts)
}

func emp(id, team string) *model.Employee {
	return &model.Employee{ID: id, Name: "员工" + id, Team: team}
}

// duty 构造单日普通任务，业务分组默认取任务名以避免自动成簇
func duty(id, name, start, end string) *model.Business {
	return &model.Business{
		ID: id, Name: name, Group: name,
		StartTime: start, EndTime: end,
		Headcount: 1, DurationDays: 1, Class: model.DutyRegular,
		PairKey: name,
	}
}

func singleDayInput(employees []*model.Employee, businesses []*model.Business, rules []*model.Rule) *Input {
	return &Input{
		Location:   "东京",
		Range:      model.DateRange{StartDate: "2025-12-10", EndDate: "2025-12-10"},
		Employees:  employees,
		Businesses: businesses,
		Rules:      rules,
	}
}

func TestRunBasicAssignment(t *testing.T) {
	e := newEngine()
	in := singleDayInput(
		[]*model.Employee{emp("e1", ""), emp("e2", "")},
		[]*model.Business{
			duty("b1", "市内巡回", "08:00", "12:00"),
			duty("b2", "车站接驳", "13:00", "17:00"),
		},
		nil,
	)

	result, err := e.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !result.Success {
		t.Error("有班次产生应为成功")
	}
	if len(result.Shifts) != 2 {
		t.Fatalf("应产生2个班次, got %d", len(result.Shifts))
	}
	if len(result.UnassignedBusinesses) != 0 {
		t.Errorf("不应有未分配任务: %+v", result.UnassignedBusinesses)
	}
	if conflicts := CheckDoubleBooking(result.Shifts); len(conflicts) != 0 {
		t.Errorf("不应有重复占用: %v", conflicts)
	}
}

func TestRunInputValidation(t *testing.T) {
	e := newEngine()

	if _, err := e.Run(context.Background(), &Input{
		Location:   "东京",
		Range:      model.DateRange{StartDate: "2025-12-10", EndDate: "2025-12-10"},
		Businesses: []*model.Business{duty("b1", "市内巡回", "08:00", "12:00")},
	}); !errors.Is(err, errors.CodeInvalidInput) {
		t.Errorf("空员工列表应返回输入错误, got %v", err)
	}

	if _, err := e.Run(context.Background(), &Input{
		Location:  "东京",
		Range:     model.DateRange{StartDate: "2025-12-10", EndDate: "2025-12-10"},
		Employees: []*model.Employee{emp("e1", "")},
	}); err == nil {
		t.Error("空任务列表应返回错误")
	}

	if _, err := e.Run(context.Background(), singleDayInput(
		[]*model.Employee{emp("e1", "")},
		[]*model.Business{duty("b1", "市内巡回", "08:00", "12:00")},
		nil,
	)); err != nil {
		t.Errorf("有效输入不应报错: %v", err)
	}

	bad := singleDayInput([]*model.Employee{emp("e1", "")},
		[]*model.Business{duty("b1", "市内巡回", "08:00", "12:00")}, nil)
	bad.Range = model.DateRange{StartDate: "2025-12-12", EndDate: "2025-12-10"}
	if _, err := e.Run(context.Background(), bad); !errors.Is(err, errors.CodeInvalidTimeRange) {
		t.Errorf("倒置日期范围应返回时间范围错误, got %v", err)
	}
}

func TestRunDeterministic(t *testing.T) {
	employees := []*model.Employee{emp("e1", ""), emp("e2", ""), emp("e3", "")}
	businesses := []*model.Business{
		duty("b1", "市内巡回", "08:00", "12:00"),
		duty("b2", "车站接驳", "09:00", "13:00"),
		duty("b3", "夜间巡回", "20:00", "23:00"),
	}

	run := func() []string {
		e := newEngine()
		in := &Input{
			Location:   "东京",
			Range:      model.DateRange{StartDate: "2025-12-10", EndDate: "2025-12-12"},
			Employees:  employees,
			Businesses: businesses,
		}
		result, err := e.Run(context.Background(), in)
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		var keys []string
		for _, s := range result.Shifts {
			keys = append(keys, fmt.Sprintf("%s|%s|%s", s.Date, s.BusinessID, s.EmployeeID))
		}
		return keys
	}

	first := run()
	for i := 0; i < 3; i++ {
		again := run()
		if len(first) != len(again) {
			t.Fatalf("班次数不一致: %d vs %d", len(first), len(again))
		}
		for j := range first {
			if first[j] != again[j] {
				t.Fatalf("相同输入应产生相同分配: %s vs %s", first[j], again[j])
			}
		}
	}
}

func TestRunNoOverlapSameEmployee(t *testing.T) {
	// 两个时间重叠的任务，只有1名员工：第二个任务落空
	e := newEngine()
	in := singleDayInput(
		[]*model.Employee{emp("e1", "")},
		[]*model.Business{
			duty("b1", "市内巡回", "08:00", "12:00"),
			duty("b2", "车站接驳", "10:00", "14:00"),
		},
		nil,
	)

	result, err := e.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Shifts) != 1 {
		t.Fatalf("重叠任务只应分配1个, got %d", len(result.Shifts))
	}
	if len(result.UnassignedBusinesses) != 1 {
		t.Errorf("应有1条未分配记录, got %d", len(result.UnassignedBusinesses))
	}
}

func TestRunMandatoryExclusionSilent(t *testing.T) {
	// 强制日工时规则：e1 已不可能承接两个8小时任务，
	// 第二个任务由 e2 承接，且不产生 e1 的可见违反
	e := newEngine()
	rules := []*model.Rule{
		{ID: "r1", Name: "日工时上限", Type: model.RuleMaxDailyWorkHours,
			Config: model.RuleConfig{MaxHours: 10}, Priority: 0,
			Enforcement: model.EnforcementMandatory, Active: true},
	}
	in := singleDayInput(
		[]*model.Employee{emp("e1", ""), emp("e2", "")},
		[]*model.Business{
			duty("b1", "上午长班", "06:00", "14:00"), // 8h
			duty("b2", "下午长班", "15:00", "23:00"), // 8h
		},
		rules,
	)

	result, err := e.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Shifts) != 2 {
		t.Fatalf("两个任务都应分配, got %d", len(result.Shifts))
	}
	byEmp := make(map[string]int)
	for _, s := range result.Shifts {
		byEmp[s.EmployeeID]++
	}
	if byEmp["e1"] != 1 || byEmp["e2"] != 1 {
		t.Errorf("强制规则应使任务分散到两人: %v", byEmp)
	}
	for _, v := range result.Violations {
		if v.Mandatory {
			t.Errorf("强制排除不应产生可见违反: %+v", v)
		}
	}
}

func TestRunSoftViolationRecordedButAssigned(t *testing.T) {
	// 非强制规则：唯一员工仍被分配，违反作为记录返回
	e := newEngine()
	rules := []*model.Rule{
		{ID: "r1", Name: "日工时上限", Type: model.RuleMaxDailyWorkHours,
			Config: model.RuleConfig{MaxHours: 10}, Priority: 1,
			Enforcement: model.EnforcementStrict, Active: true},
	}
	in := singleDayInput(
		[]*model.Employee{emp("e1", "")},
		[]*model.Business{
			duty("b1", "上午长班", "06:00", "14:00"),
			duty("b2", "下午长班", "15:00", "23:00"),
		},
		rules,
	)

	result, err := e.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Shifts) != 2 {
		t.Fatalf("软违反不应阻止分配, got %d 班次", len(result.Shifts))
	}
	found := false
	for _, v := range result.Violations {
		if v.RuleID == "r1" {
			found = true
		}
	}
	if !found {
		t.Error("软违反应出现在结果中")
	}
}

func TestRunGroupAtomicity(t *testing.T) {
	// 显式配对组：两任务给同一员工；组内冲突则整组落空
	t.Run("整组同一员工", func(t *testing.T) {
		e := newEngine()
		a := duty("b1", "早班段", "06:00", "10:00")
		b := duty("b2", "晚班段", "16:00", "20:00")
		a.PairID, b.PairID = "p1", "p1"
		in := singleDayInput([]*model.Employee{emp("e1", ""), emp("e2", "")},
			[]*model.Business{a, b}, nil)

		result, err := e.Run(context.Background(), in)
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if len(result.Shifts) != 2 {
			t.Fatalf("组内2任务都应分配, got %d", len(result.Shifts))
		}
		if result.Shifts[0].EmployeeID != result.Shifts[1].EmployeeID {
			t.Error("配对任务应分给同一员工")
		}
	})

	t.Run("组内冲突整组落空", func(t *testing.T) {
		e := newEngine()
		a := duty("b1", "早班段", "06:00", "12:00")
		b := duty("b2", "重叠段", "10:00", "14:00")
		a.PairID, b.PairID = "p1", "p1"
		in := singleDayInput([]*model.Employee{emp("e1", ""), emp("e2", "")},
			[]*model.Business{a, b}, nil)

		result, err := e.Run(context.Background(), in)
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if len(result.Shifts) != 0 {
			t.Errorf("组内冲突不应部分分配, got %d 班次", len(result.Shifts))
		}
		if len(result.UnassignedBusinesses) != 2 {
			t.Errorf("组内2任务都应记为未分配, got %d", len(result.UnassignedBusinesses))
		}
	})
}

func TestRunGroupCumulativeConstraints(t *testing.T) {
	// 组内各任务的负载必须合并评估：两段各8小时的配对任务
	// 对强制日工时15小时的唯一员工不可分配，整组落空且不产生可见违反
	t.Run("合计工时超限整组落空", func(t *testing.T) {
		e := newEngine()
		rules := []*model.Rule{
			{ID: "r1", Name: "日工时上限", Type: model.RuleMaxDailyWorkHours,
				Config: model.RuleConfig{MaxHours: 15}, Priority: 0,
				Enforcement: model.EnforcementMandatory, Active: true},
		}
		a := duty("b1", "早班段", "06:00", "14:00") // 8h
		b := duty("b2", "晚班段", "15:00", "23:00") // 8h
		a.PairID, b.PairID = "p1", "p1"
		in := singleDayInput([]*model.Employee{emp("e1", "")},
			[]*model.Business{a, b}, rules)

		result, err := e.Run(context.Background(), in)
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if len(result.Shifts) != 0 {
			t.Fatalf("合计16小时超过强制上限15，整组不应分配, got %d 班次", len(result.Shifts))
		}
		if len(result.UnassignedBusinesses) != 2 {
			t.Errorf("组内2任务都应记为未分配, got %d", len(result.UnassignedBusinesses))
		}
		for _, v := range result.Violations {
			if v.Mandatory {
				t.Errorf("强制排除不应产生可见违反: %+v", v)
			}
		}
	})

	t.Run("组大小超过当日上限整组落空", func(t *testing.T) {
		e := newEngine()
		duties := []*model.Business{
			duty("b1", "一段", "06:00", "08:00"),
			duty("b2", "二段", "09:00", "11:00"),
			duty("b3", "三段", "12:00", "14:00"),
			duty("b4", "四段", "15:00", "17:00"),
		}
		for _, d := range duties {
			d.PairID = "p1"
		}
		in := singleDayInput([]*model.Employee{emp("e1", "")}, duties, nil)

		result, err := e.Run(context.Background(), in)
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if len(result.Shifts) != 0 {
			t.Errorf("4任务组超过当日上限3，不应部分分配, got %d 班次", len(result.Shifts))
		}
		if len(result.UnassignedBusinesses) != 4 {
			t.Errorf("组内4任务都应记为未分配, got %d", len(result.UnassignedBusinesses))
		}
	})
}

func TestRunAutoClusterSameGroup(t *testing.T) {
	// 同业务分组、互不冲突的两个任务自动成组给同一员工
	e := newEngine()
	a := duty("b1", "环线A", "06:00", "10:00")
	b := duty("b2", "环线B", "14:00", "18:00")
	a.Group, b.Group = "环线", "环线"
	in := singleDayInput([]*model.Employee{emp("e1", ""), emp("e2", "")},
		[]*model.Business{a, b}, nil)

	result, err := e.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Shifts) != 2 {
		t.Fatalf("簇内2任务都应分配, got %d", len(result.Shifts))
	}
	if result.Shifts[0].EmployeeID != result.Shifts[1].EmployeeID {
		t.Error("同分组互不冲突的任务应给同一员工")
	}
}

func TestRunRollCallPhase(t *testing.T) {
	// 点呼任务只给有资格的员工，且先于普通任务分配
	e := newEngine()
	rc := duty("b1", "早间点呼", "05:00", "06:00")
	rc.Class = model.DutyRollCall
	regular := duty("b2", "市内巡回", "08:00", "12:00")

	employees := []*model.Employee{
		emp("e1", ""),
		{ID: "e2", Name: "员工e2", RollCall: true},
	}
	in := singleDayInput(employees, []*model.Business{regular, rc}, nil)

	result, err := e.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	var rcShift *model.DutyShift
	for _, s := range result.Shifts {
		if s.BusinessID == "b1" {
			rcShift = s
		}
	}
	if rcShift == nil {
		t.Fatal("点呼任务应被分配")
	}
	if rcShift.EmployeeID != "e2" {
		t.Errorf("点呼应分给有资格的 e2, got %s", rcShift.EmployeeID)
	}
}

func TestRunRollCallNoCapablePool(t *testing.T) {
	e := newEngine()
	rc := duty("b1", "早间点呼", "05:00", "06:00")
	rc.Class = model.DutyRollCall
	in := singleDayInput([]*model.Employee{emp("e1", "")}, []*model.Business{rc}, nil)

	result, err := e.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Shifts) != 0 {
		t.Error("无点呼资格员工时点呼任务应落空")
	}
	if result.Success {
		t.Error("零班次应为失败")
	}
	if len(result.UnassignedBusinesses) != 1 {
		t.Errorf("应有1条未分配记录, got %d", len(result.UnassignedBusinesses))
	}
}

func TestRunRollCallPartialReported(t *testing.T) {
	// 点呼需2人但只有1人有资格：已分配1人，缺口计入未分配记录
	e := newEngine()
	rc := duty("b1", "早间点呼", "05:00", "06:00")
	rc.Class = model.DutyRollCall
	rc.Headcount = 2
	employees := []*model.Employee{
		emp("e1", ""),
		{ID: "e2", Name: "员工e2", RollCall: true},
	}
	in := singleDayInput(employees, []*model.Business{rc}, nil)

	result, err := e.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Shifts) != 1 {
		t.Fatalf("有资格的1人仍应分配, got %d 班次", len(result.Shifts))
	}
	if len(result.UnassignedBusinesses) != 1 {
		t.Fatalf("人数缺口应产生1条未分配记录, got %d", len(result.UnassignedBusinesses))
	}
	reason := result.UnassignedBusinesses[0].Reason
	if !strings.Contains(reason, "仅分配 1") {
		t.Errorf("未分配原因应包含已分配人数: %s", reason)
	}
}

func TestRunVacationExcluded(t *testing.T) {
	e := newEngine()
	in := singleDayInput(
		[]*model.Employee{emp("e1", ""), emp("e2", "")},
		[]*model.Business{duty("b1", "市内巡回", "08:00", "12:00")},
		nil,
	)
	in.Vacations = map[string][]string{"2025-12-10": {"e1"}}

	result, err := e.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, s := range result.Shifts {
		if s.EmployeeID == "e1" {
			t.Error("休假员工不应被分配")
		}
	}
}

func TestRunEmptyPoolDate(t *testing.T) {
	e := newEngine()
	in := singleDayInput(
		[]*model.Employee{emp("e1", "")},
		[]*model.Business{duty("b1", "市内巡回", "08:00", "12:00")},
		nil,
	)
	in.Vacations = map[string][]string{"2025-12-10": {"e1"}}

	result, err := e.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Success {
		t.Error("全员休假应为失败")
	}
	if len(result.Violations) == 0 {
		t.Error("空池应产生诊断违反记录")
	}
	if len(result.UnassignedBusinesses) != 1 {
		t.Errorf("当日任务应整体落空, got %d", len(result.UnassignedBusinesses))
	}
}

func TestRunRoundTripConsumesEmployees(t *testing.T) {
	// 往返任务占用的员工不参与后续普通任务分配
	e := newEngine()
	out := &model.Business{
		ID: "t-out", Name: "东京线（去程）", PairKey: "东京线",
		Direction: model.DirectionOutbound, Class: model.DutyRoundTrip,
		DurationDays: 2, Headcount: 1, StartTime: "08:00", EndTime: "18:00",
	}
	ret := &model.Business{
		ID: "t-ret", Name: "东京线（回程）", PairKey: "东京线",
		Direction: model.DirectionReturn, Class: model.DutyRoundTrip,
		DurationDays: 2, Headcount: 1, StartTime: "09:00", EndTime: "19:00",
	}
	regular := duty("b1", "市内巡回", "08:00", "12:00")

	in := &Input{
		Location: "东京",
		Range:    model.DateRange{StartDate: "2025-12-10", EndDate: "2025-12-11"},
		Employees: []*model.Employee{
			{ID: "a", Name: "A", Team: "Galaxy"},
			{ID: "b", Name: "B", Team: "Aube"},
		},
		Businesses: []*model.Business{out, ret, regular},
	}

	result, err := e.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// 12-10 偶数日 Aube 的 B 出发，两腿各1班次
	var legs, regulars []*model.DutyShift
	for _, s := range result.Shifts {
		if s.SetID != nil {
			legs = append(legs, s)
		} else {
			regulars = append(regulars, s)
		}
	}
	if len(legs) != 2 {
		t.Fatalf("往返应产生2腿, got %d", len(legs))
	}
	for _, s := range legs {
		if s.EmployeeID != "b" {
			t.Errorf("出发员工应为 B, got %s", s.EmployeeID)
		}
	}
	// 普通任务（每日1个）全部由 A 承接
	if len(regulars) != 2 {
		t.Fatalf("普通任务2天应产生2班次, got %d", len(regulars))
	}
	for _, s := range regulars {
		if s.EmployeeID != "a" {
			t.Errorf("被占用的 B 不应承接普通任务, got %s", s.EmployeeID)
		}
	}
	if conflicts := CheckDoubleBooking(result.Shifts); len(conflicts) != 0 {
		t.Errorf("不应有重复占用: %v", conflicts)
	}
}

func TestRunDiversitySpreadsDuties(t *testing.T) {
	// e1 历史执行过 b1：当日 b1 应优先给 e2
	e := newEngine()
	in := singleDayInput(
		[]*model.Employee{emp("e1", ""), emp("e2", "")},
		[]*model.Business{duty("b1", "市内巡回", "08:00", "12:00")},
		nil,
	)
	in.History = map[string]map[string]bool{"e1": {"b1": true}}

	result, err := e.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Shifts) != 1 || result.Shifts[0].EmployeeID != "e2" {
		t.Errorf("多样性优先应选 e2, got %+v", result.Shifts)
	}
}

func TestRunHistoryInputNotMutated(t *testing.T) {
	e := newEngine()
	history := map[string]map[string]bool{"e1": {"b0": true}}
	in := singleDayInput(
		[]*model.Employee{emp("e1", "")},
		[]*model.Business{duty("b1", "市内巡回", "08:00", "12:00")},
		nil,
	)
	in.History = history

	if _, err := e.Run(context.Background(), in); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(history["e1"]) != 1 {
		t.Error("运行不应修改调用方的历史数据")
	}
}

func TestRunSameDayHardCap(t *testing.T) {
	// 1名员工、4个互不冲突的任务：硬上限3使第4个落空
	e := newEngine()
	in := singleDayInput(
		[]*model.Employee{emp("e1", "")},
		[]*model.Business{
			duty("b1", "一班", "06:00", "08:00"),
			duty("b2", "二班", "09:00", "11:00"),
			duty("b3", "三班", "12:00", "14:00"),
			duty("b4", "四班", "15:00", "17:00"),
		},
		nil,
	)

	result, err := e.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Shifts) != 3 {
		t.Errorf("单日硬上限3应限制班次数, got %d", len(result.Shifts))
	}
	if len(result.UnassignedBusinesses) != 1 {
		t.Errorf("第4个任务应落空, got %d", len(result.UnassignedBusinesses))
	}
}

func TestRunSummaryAndUnassignedEmployees(t *testing.T) {
	e := newEngine()
	in := singleDayInput(
		[]*model.Employee{emp("e1", ""), emp("e2", ""), emp("e3", "")},
		[]*model.Business{duty("b1", "市内巡回", "08:00", "12:00")},
		nil,
	)

	result, err := e.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Summary.TotalBusinesses != 1 {
		t.Errorf("TotalBusinesses = %d, want 1", result.Summary.TotalBusinesses)
	}
	if result.Summary.AssignedEmployees != 1 {
		t.Errorf("AssignedEmployees = %d, want 1", result.Summary.AssignedEmployees)
	}
	if len(result.UnassignedEmployees) != 2 {
		t.Errorf("应有2名未分配员工, got %d", len(result.UnassignedEmployees))
	}
}

// failingStore 持久化永远失败
type failingStore struct{}

func (failingStore) SaveShifts(ctx context.Context, shifts []*model.DutyShift) error {
	return fmt.Errorf("写入失败")
}
func (failingStore) SaveHistory(ctx context.Context, empID, businessID string) error {
	return fmt.Errorf("写入失败")
}
func (failingStore) SaveViolations(ctx context.Context, batchID uuid.UUID, violations []*constraint.Violation) error {
	return fmt.Errorf("写入失败")
}

func TestRunPersistenceFailureDegrades(t *testing.T) {
	opts := DefaultOptions()
	opts.SettleDelay = 0
	e := New(constraint.NewRegistry(), failingStore{}, opts)

	in := singleDayInput(
		[]*model.Employee{emp("e1", "")},
		[]*model.Business{duty("b1", "市内巡回", "08:00", "12:00")},
		nil,
	)

	result, err := e.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("持久化失败不应中断排班: %v", err)
	}
	if !result.Success {
		t.Error("内存结果完整时仍应成功")
	}
	if !result.Degraded {
		t.Error("持久化失败应标记降级")
	}
	if len(result.Shifts) != 1 {
		t.Errorf("班次仍应完整返回, got %d", len(result.Shifts))
	}
}

func TestRunContextCancelled(t *testing.T) {
	e := newEngine()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	in := singleDayInput(
		[]*model.Employee{emp("e1", "")},
		[]*model.Business{duty("b1", "市内巡回", "08:00", "12:00")},
		nil,
	)

	result, err := e.Run(ctx, in)
	if err != nil {
		t.Fatalf("取消不应返回错误: %v", err)
	}
	if len(result.Shifts) != 0 {
		t.Errorf("已取消的运行不应产生班次, got %d", len(result.Shifts))
	}
}

func TestCheckDoubleBooking(t *testing.T) {
	s1 := &model.DutyShift{Date: "2025-12-10", EmployeeID: "e1", EmployeeName: "A",
		BusinessName: "一班", StartTime: "08:00", EndTime: "12:00"}
	s2 := &model.DutyShift{Date: "2025-12-10", EmployeeID: "e1", EmployeeName: "A",
		BusinessName: "二班", StartTime: "10:00", EndTime: "14:00"}
	s3 := &model.DutyShift{Date: "2025-12-10", EmployeeID: "e2", EmployeeName: "B",
		BusinessName: "三班", StartTime: "10:00", EndTime: "14:00"}

	if got := CheckDoubleBooking([]*model.DutyShift{s1, s3}); len(got) != 0 {
		t.Errorf("不同员工不冲突: %v", got)
	}
	if got := CheckDoubleBooking([]*model.DutyShift{s1, s2}); len(got) != 1 {
		t.Errorf("同员工重叠应检出1处冲突, got %d", len(got))
	}
}
