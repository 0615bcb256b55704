// Package stats 提供排班结果的统计分析
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/paiche/paiche/pkg/model"
)

// EmployeeStat 单个员工的勤务统计
type EmployeeStat struct {
	EmployeeID         string  `json:"employee_id"`
	EmployeeName       string  `json:"employee_name"`
	TotalHours         float64 `json:"total_hours"`
	ShiftCount         int     `json:"shift_count"`
	NightShifts        int     `json:"night_shifts"`
	WeekendShifts      int     `json:"weekend_shifts"`
	DistinctBusinesses int     `json:"distinct_businesses"`
	Deviation          float64 `json:"deviation"` // 工时与人均值的偏差百分比
}

// DayLoad 单日负载
type DayLoad struct {
	Date       string  `json:"date"`
	ShiftCount int     `json:"shift_count"`
	StaffCount int     `json:"staff_count"`
	TotalHours float64 `json:"total_hours"`
}

// Report 排班统计报告
type Report struct {
	TotalShifts    int     `json:"total_shifts"`
	TotalEmployees int     `json:"total_employees"`
	IdleEmployees  int     `json:"idle_employees"` // 无任何班次的员工数

	AvgHoursPerEmployee float64 `json:"avg_hours_per_employee"`
	MaxHours            float64 `json:"max_hours"`
	MinHours            float64 `json:"min_hours"`
	WorkloadStdDev      float64 `json:"workload_std_dev"`

	// 基尼系数：0 完全均衡，1 完全集中
	WorkloadGini   float64 `json:"workload_gini"`
	NightShiftGini float64 `json:"night_shift_gini"`

	// DiversityCoverage 人均执行过的业务种类占业务总数的比例
	DiversityCoverage float64 `json:"diversity_coverage"`

	FairnessScore float64 `json:"fairness_score"` // 0-100

	EmployeeStats []EmployeeStat     `json:"employee_stats"`
	DailyLoad     map[string]DayLoad `json:"daily_load"`
}

const nightStartMinutes = 22 * 60 // 22:00 以后开始的班次计为夜班

// Analyze 对一批班次做负载与公平性分析
// employees 可为 nil，此时仅统计出现在班次中的员工
func Analyze(shifts []*model.DutyShift, employees []*model.Employee) *Report {
	report := &Report{
		TotalShifts:   len(shifts),
		DailyLoad:     make(map[string]DayLoad),
		EmployeeStats: make([]EmployeeStat, 0),
		FairnessScore: 100,
	}
	if len(shifts) == 0 {
		report.TotalEmployees = len(employees)
		report.IdleEmployees = len(employees)
		return report
	}

	nameByID := make(map[string]string, len(employees))
	for _, e := range employees {
		nameByID[e.ID] = e.Name
	}

	statByEmp := make(map[string]*EmployeeStat)
	businessByEmp := make(map[string]map[string]bool)
	allBusinesses := make(map[string]bool)
	dayStaff := make(map[string]map[string]bool)

	for _, s := range shifts {
		stat := statByEmp[s.EmployeeID]
		if stat == nil {
			name := nameByID[s.EmployeeID]
			if name == "" {
				name = s.EmployeeName
			}
			stat = &EmployeeStat{EmployeeID: s.EmployeeID, EmployeeName: name}
			statByEmp[s.EmployeeID] = stat
			businessByEmp[s.EmployeeID] = make(map[string]bool)
		}

		hours := shiftHours(s)
		stat.TotalHours += hours
		stat.ShiftCount++
		if isNightShift(s) {
			stat.NightShifts++
		}
		if isWeekend(s.Date) {
			stat.WeekendShifts++
		}
		businessByEmp[s.EmployeeID][s.BusinessID] = true
		allBusinesses[s.BusinessID] = true

		load := report.DailyLoad[s.Date]
		load.Date = s.Date
		load.ShiftCount++
		load.TotalHours += hours
		report.DailyLoad[s.Date] = load
		if dayStaff[s.Date] == nil {
			dayStaff[s.Date] = make(map[string]bool)
		}
		dayStaff[s.Date][s.EmployeeID] = true
	}

	for date, staff := range dayStaff {
		load := report.DailyLoad[date]
		load.StaffCount = len(staff)
		report.DailyLoad[date] = load
	}

	// 未承接任何班次的员工以零值参与公平性计算
	for _, e := range employees {
		if _, ok := statByEmp[e.ID]; !ok {
			statByEmp[e.ID] = &EmployeeStat{EmployeeID: e.ID, EmployeeName: e.Name}
			businessByEmp[e.ID] = make(map[string]bool)
			report.IdleEmployees++
		}
	}
	report.TotalEmployees = len(statByEmp)

	hours := make([]float64, 0, len(statByEmp))
	nights := make([]float64, 0, len(statByEmp))
	coverageSum := 0.0
	for empID, stat := range statByEmp {
		stat.DistinctBusinesses = len(businessByEmp[empID])
		hours = append(hours, stat.TotalHours)
		nights = append(nights, float64(stat.NightShifts))
		if len(allBusinesses) > 0 {
			coverageSum += float64(stat.DistinctBusinesses) / float64(len(allBusinesses))
		}
		report.EmployeeStats = append(report.EmployeeStats, *stat)
	}
	sort.Slice(report.EmployeeStats, func(i, j int) bool {
		a, b := report.EmployeeStats[i], report.EmployeeStats[j]
		if a.TotalHours != b.TotalHours {
			return a.TotalHours > b.TotalHours
		}
		return a.EmployeeID < b.EmployeeID
	})

	avg := mean(hours)
	report.AvgHoursPerEmployee = avg
	report.MaxHours, report.MinHours = bounds(hours)
	report.WorkloadStdDev = math.Sqrt(variance(hours, avg))
	report.WorkloadGini = gini(hours)
	report.NightShiftGini = gini(nights)
	report.DiversityCoverage = coverageSum / float64(len(statByEmp))

	for i := range report.EmployeeStats {
		if avg > 0 {
			report.EmployeeStats[i].Deviation = (report.EmployeeStats[i].TotalHours - avg) / avg * 100
		}
	}

	report.FairnessScore = fairnessScore(report.WorkloadGini, report.NightShiftGini, report.WorkloadStdDev, avg)
	return report
}

// shiftHours 班次时长，跨午夜按实际时长折算
func shiftHours(s *model.DutyShift) float64 {
	r, err := model.NewClockRange(s.StartTime, s.EndTime)
	if err != nil {
		return 0
	}
	return r.DurationHours()
}

// isNightShift 开始于22:00以后或跨午夜的班次计为夜班
func isNightShift(s *model.DutyShift) bool {
	r, err := model.NewClockRange(s.StartTime, s.EndTime)
	if err != nil {
		return false
	}
	return r.Start >= nightStartMinutes || r.End < r.Start
}

func isWeekend(date string) bool {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return false
	}
	return d.Weekday() == time.Saturday || d.Weekday() == time.Sunday
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func variance(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return sum / float64(len(values))
}

func bounds(values []float64) (max, min float64) {
	if len(values) == 0 {
		return 0, 0
	}
	max, min = values[0], values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
		if v < min {
			min = v
		}
	}
	return
}

// gini 基尼系数，输入全零时返回0
func gini(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	if sum == 0 {
		return 0
	}

	g := 0.0
	for i, v := range sorted {
		g += (2*float64(i+1) - float64(n) - 1) * v
	}
	g /= float64(n) * sum
	return math.Max(0, math.Min(1, g))
}

// fairnessScore 综合公平性评分
// 工时均衡占大头，夜班均衡与变异系数次之
func fairnessScore(workloadGini, nightGini, stdDev, avgHours float64) float64 {
	const (
		workloadWeight = 0.5
		nightWeight    = 0.3
		cvWeight       = 0.2
	)

	cvScore := 100.0
	if avgHours > 0 {
		cv := stdDev / avgHours
		cvScore = math.Max(0, 100-cv*200)
	}

	score := workloadWeight*(1-workloadGini)*100 +
		nightWeight*(1-nightGini)*100 +
		cvWeight*cvScore
	return math.Max(0, math.Min(100, score))
}
