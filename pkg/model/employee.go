// Package model 定义排班引擎的核心数据模型
package model

// TeamNone 未分组员工的哨兵值
const TeamNone = "none"

// Employee 乘务员工
// 由外部系统创建导入，引擎只读
type Employee struct {
	ID       string   `json:"employee_id" db:"employee_id"`
	Name     string   `json:"name" db:"name"`
	Office   string   `json:"office" db:"office"`
	Team     string   `json:"team,omitempty" db:"team"`        // 轮换班组（如 Galaxy/Aube），空或 none 表示未分组
	RollCall bool     `json:"roll_call_capable" db:"roll_call"` // 是否具备点呼资格
	Skills   []string `json:"skills,omitempty" db:"-"`          // 可执行的业务分组
}

// HasSkill 检查员工是否具备某业务分组的技能
func (e *Employee) HasSkill(group string) bool {
	for _, s := range e.Skills {
		if s == group {
			return true
		}
	}
	return false
}

// Unaffiliated 检查员工是否未分组（可被任一班组吸纳）
func (e *Employee) Unaffiliated() bool {
	return e.Team == "" || e.Team == TeamNone
}

// InTeamPool 检查员工是否可进入指定班组的出发池
func (e *Employee) InTeamPool(team string) bool {
	return e.Team == team || e.Unaffiliated()
}
