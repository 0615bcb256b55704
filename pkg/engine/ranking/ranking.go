// Package ranking 提供候选员工排序
package ranking

import (
	"sort"

	"github.com/paiche/paiche/pkg/model"
)

// SameDayHardCap 单日分配数硬上限
// 达到上限的员工在排序前直接移出候选池，与配置规则无关
const SameDayHardCap = 3

// Context 排班运行中的可变计数状态
// 显式传递给各阶段，后续任务的排序依赖先前分配的副作用
type Context struct {
	// History 员工历史执行过的业务集合（多样性偏置输入）
	History map[string]map[string]bool

	// Counts 员工在本批次的累计分配数（批次内负载均衡）
	Counts map[string]int
}

// NewContext 创建排序上下文
// history 可为 nil，表示无历史数据
func NewContext(history map[string]map[string]bool) *Context {
	if history == nil {
		history = make(map[string]map[string]bool)
	}
	return &Context{
		History: history,
		Counts:  make(map[string]int),
	}
}

// Record 记录一次成功分配，立即影响后续任务的排序
func (c *Context) Record(empID, businessID string) {
	if c.History[empID] == nil {
		c.History[empID] = make(map[string]bool)
	}
	c.History[empID][businessID] = true
	c.Counts[empID]++
}

// HasDone 检查员工是否执行过指定业务
func (c *Context) HasDone(empID, businessID string) bool {
	return c.History[empID][businessID]
}

// HistorySize 返回员工历史执行过的不同业务数
func (c *Context) HistorySize(empID string) int {
	return len(c.History[empID])
}

// FilterPool 移出当日分配数已达硬上限的员工
func FilterPool(pool []*model.Employee, sameDay map[string]int) []*model.Employee {
	result := make([]*model.Employee, 0, len(pool))
	for _, e := range pool {
		if sameDay[e.ID] >= SameDayHardCap {
			continue
		}
		result = append(result, e)
	}
	return result
}

// Rank 普通任务的候选排序
// 排序键依次为：
//  1. 未执行过该业务者优先（多样性优先）
//  2. 历史业务种类少者优先（把经验向覆盖面窄的员工倾斜）
//  3. 本批次分配数少者优先（批次内负载均衡）
//
// 全部相等时保持输入顺序，保证确定性
func (c *Context) Rank(duty *model.Business, pool []*model.Employee) []*model.Employee {
	ranked := make([]*model.Employee, len(pool))
	copy(ranked, pool)

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]

		aDone := c.HasDone(a.ID, duty.ID)
		bDone := c.HasDone(b.ID, duty.ID)
		if aDone != bDone {
			return !aDone
		}

		aSize := c.HistorySize(a.ID)
		bSize := c.HistorySize(b.ID)
		if aSize != bSize {
			return aSize < bSize
		}

		return c.Counts[a.ID] < c.Counts[b.ID]
	})

	return ranked
}

// RankRollCall 点呼任务的候选排序
// 点呼池已限定为具备点呼资格的员工，不适用多样性优先规则，
// 只按历史业务种类与本批次分配数两键排序
func (c *Context) RankRollCall(pool []*model.Employee) []*model.Employee {
	ranked := make([]*model.Employee, 0, len(pool))
	for _, e := range pool {
		if e.RollCall {
			ranked = append(ranked, e)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]

		aSize := c.HistorySize(a.ID)
		bSize := c.HistorySize(b.ID)
		if aSize != bSize {
			return aSize < bSize
		}

		return c.Counts[a.ID] < c.Counts[b.ID]
	})

	return ranked
}
