// Package model 定义排班引擎的核心数据模型
package model

// DutyClass 任务类别
// 在数据接入时一次性确定，核心算法不再依赖名称匹配
type DutyClass string

const (
	DutyRegular   DutyClass = "regular"    // 普通单一任务
	DutyRollCall  DutyClass = "roll_call"  // 点呼任务（需点呼资格）
	DutyRoundTrip DutyClass = "round_trip" // 跨日往返任务
)

// Direction 往返任务方向
const (
	DirectionOutbound = "outbound" // 去程
	DirectionReturn   = "return"   // 回程
)

// Rotation 往返任务的班组轮换配置
// 按日期"日"数字的奇偶决定当日出发班组
type Rotation struct {
	OddDayTeam  string `json:"odd_day_team"`
	EvenDayTeam string `json:"even_day_team"`
}

// TeamForDay 根据日期奇偶返回出发班组
func (r Rotation) TeamForDay(date string) string {
	if DayOfMonth(date)%2 == 1 {
		return r.OddDayTeam
	}
	return r.EvenDayTeam
}

// Business 业务任务（固定时间段的勤务单元）
type Business struct {
	ID           string    `json:"business_id" db:"business_id"`
	Name         string    `json:"name" db:"name"`
	Office       string    `json:"office" db:"office"`
	Group        string    `json:"business_group" db:"business_group"`
	StartTime    string    `json:"start_time" db:"start_time"` // HH:MM
	EndTime      string    `json:"end_time" db:"end_time"`     // HH:MM，数值小于开始时间表示跨午夜
	Headcount    int       `json:"required_headcount" db:"headcount"`
	PairID       string    `json:"pair_business_id,omitempty" db:"pair_id"` // 显式配对任务
	DurationDays int       `json:"duration_days" db:"duration_days"`
	Direction    string    `json:"direction,omitempty" db:"direction"`
	Class        DutyClass `json:"duty_class" db:"duty_class"`
	Exclusive    string    `json:"exclusive_group,omitempty" db:"exclusive_group"` // 互斥组标识
	Rotation     *Rotation `json:"rotation,omitempty" db:"-"`

	// PairKey 往返任务配对键（去除方向后缀的基础名称），接入时计算
	PairKey string `json:"-" db:"-"`
}

// Clock 返回任务的时间段
func (b *Business) Clock() (ClockRange, error) {
	return NewClockRange(b.StartTime, b.EndTime)
}

// CrossesMidnight 检查任务是否跨越午夜
func (b *Business) CrossesMidnight() bool {
	r, err := b.Clock()
	if err != nil {
		return false
	}
	return r.End < r.Start
}

// DurationHours 返回任务时长（小时），跨午夜自动折算
func (b *Business) DurationHours() float64 {
	r, err := b.Clock()
	if err != nil {
		return 0
	}
	return r.DurationHours()
}

// IsRoundTrip 检查是否为跨日往返任务
func (b *Business) IsRoundTrip() bool {
	return b.Class == DutyRoundTrip
}
