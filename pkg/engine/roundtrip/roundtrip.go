// Package roundtrip 处理跨日往返任务的配对与分配
//
// 往返任务是持续两个运行日的成对任务（去程+回程），
// 由同一批员工连续执行，按日期奇偶轮换出发班组。
// 该子流程在通用排班各阶段之前独立运行，其占用的员工
// 必须从后续阶段的候选池中扣除。
package roundtrip

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/paiche/paiche/pkg/model"
)

// Pair 往返任务对（去程与回程两条任务记录）
type Pair struct {
	Key      string
	Outbound *model.Business
	Return   *model.Business
}

// Options 班组轮换配置
// 任务自带 Rotation 时优先使用任务配置
type Options struct {
	OddDayTeam  string `json:"odd_day_team"`
	EvenDayTeam string `json:"even_day_team"`
}

// DefaultOptions 默认轮换配置
func DefaultOptions() Options {
	return Options{OddDayTeam: "Galaxy", EvenDayTeam: "Aube"}
}

// DepartingTeam 确定指定日期的出发班组
// 仅由"日"数字的奇偶决定：奇数日为奇数班组，偶数日为偶数班组
func (o Options) DepartingTeam(date string, rotation *model.Rotation) string {
	if rotation != nil && rotation.OddDayTeam != "" && rotation.EvenDayTeam != "" {
		return rotation.TeamForDay(date)
	}
	if model.DayOfMonth(date)%2 == 1 {
		return o.OddDayTeam
	}
	return o.EvenDayTeam
}

// DetectPairs 从任务列表中检测往返任务对
// 只考虑持续 2 个运行日的往返类任务，按配对键（去除方向后缀的
// 基础名称）匹配；两条腿缺一则该对不可用。结果顺序跟随去程任务
// 的输入顺序，保证确定性
func DetectPairs(businesses []*model.Business) []Pair {
	outbound := make(map[string]*model.Business)
	inbound := make(map[string]*model.Business)
	var keys []string

	for _, b := range businesses {
		if !b.IsRoundTrip() || b.DurationDays != 2 {
			continue
		}
		switch b.Direction {
		case model.DirectionOutbound:
			if _, seen := outbound[b.PairKey]; !seen {
				outbound[b.PairKey] = b
				keys = append(keys, b.PairKey)
			}
		case model.DirectionReturn:
			if _, seen := inbound[b.PairKey]; !seen {
				inbound[b.PairKey] = b
			}
		}
	}

	var pairs []Pair
	for _, key := range keys {
		ret := inbound[key]
		if ret == nil {
			continue
		}
		pairs = append(pairs, Pair{Key: key, Outbound: outbound[key], Return: ret})
	}
	return pairs
}

// Unassigned 未能分配的往返任务对
type Unassigned struct {
	Date         string `json:"date"`
	BusinessID   string `json:"business_id"`
	BusinessName string `json:"business_name"`
	Reason       string `json:"reason"`
}

// Departure 已成行的往返出发记录
type Departure struct {
	PairKey   string
	Date      string
	Team      string
	Employees int
}

// Result 往返任务分配结果
type Result struct {
	Shifts     []*model.DutyShift
	Consumed   map[string]bool // 被往返任务占用的员工，需从通用候选池扣除
	Unassigned []Unassigned
	Departures []Departure
}

// Assign 对日期范围内的全部往返任务对执行分配
//
// 每个可作为出发日的日期、每个任务对各执行一次：
//  1. 按日期奇偶确定出发班组
//  2. 候选池限定为该班组员工及未分组员工，排除本次运行已占用者
//  3. 可用人数不足所需人数时整对跳过（无部分分配）
//  4. 按输入顺序取前 N 名，不再做其他评分
//  5. 每名入选员工产生两条班次：出发日去程、次日回程，
//     共享同一个生成的组标识并带日序/方向注解
//
// 回程日落在范围之外的日期不作为出发日
func Assign(dates []string, pairs []Pair, pool []*model.Employee, opt Options, batchID uuid.UUID, location string) *Result {
	result := &Result{Consumed: make(map[string]bool)}
	if len(dates) == 0 || len(pairs) == 0 {
		return result
	}
	endDate := dates[len(dates)-1]

	for _, date := range dates {
		returnDate := model.NextDate(date)
		if returnDate == "" || returnDate > endDate {
			// 回程超出目标范围，该日不出发
			continue
		}

		for _, pair := range pairs {
			team := opt.DepartingTeam(date, pair.Outbound.Rotation)

			var eligible []*model.Employee
			for _, e := range pool {
				if result.Consumed[e.ID] {
					continue
				}
				if e.InTeamPool(team) {
					eligible = append(eligible, e)
				}
			}

			need := pair.Outbound.Headcount
			if need <= 0 {
				need = 1
			}
			if len(eligible) < need {
				result.Unassigned = append(result.Unassigned, Unassigned{
					Date:         date,
					BusinessID:   pair.Outbound.ID,
					BusinessName: pair.Outbound.Name,
					Reason:       fmt.Sprintf("班组 %s 可用员工 %d 人，少于所需 %d 人", team, len(eligible), need),
				})
				continue
			}

			for i := 0; i < need; i++ {
				emp := eligible[i]
				setID := uuid.New()

				result.Shifts = append(result.Shifts,
					newLegShift(pair.Outbound, emp, date, batchID, location, setID, 1),
					newLegShift(pair.Return, emp, returnDate, batchID, location, setID, 2))
				result.Consumed[emp.ID] = true
			}
			result.Departures = append(result.Departures, Departure{
				PairKey: pair.Key, Date: date, Team: team, Employees: need,
			})
		}
	}

	return result
}

// newLegShift 创建往返任务单腿班次
func newLegShift(b *model.Business, emp *model.Employee, date string, batchID uuid.UUID, location string, setID uuid.UUID, dayIndex int) *model.DutyShift {
	direction := b.Direction
	set := setID
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
		SetID:        &set,
		MultiDay: &model.MultiDayInfo{
			DayIndex:  dayIndex,
			TotalDays: b.DurationDays,
			Direction: direction,
		},
		Exclusive: b.Exclusive,
	}
}
