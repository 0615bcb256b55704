package ranking

import (
	"testing"

	"github.com/paiche/paiche/pkg/model"
)

func poolOf(ids ...string) []*model.Employee {
	pool := make([]*model.Employee, 0, len(ids))
	for _, id := range ids {
		pool = append(pool, &model.Employee{ID: id, Name: id})
	}
	return pool
}

func ids(pool []*model.Employee) []string {
	out := make([]string, len(pool))
	for i, e := range pool {
		out[i] = e.ID
	}
	return out
}

func TestRankDiversityFirst(t *testing.T) {
	// e1 执行过该任务，e2 没有：e2 排前
	c := NewContext(map[string]map[string]bool{
		"e1": {"b1": true},
	})
	duty := &model.Business{ID: "b1", Name: "市内巡回"}

	ranked := c.Rank(duty, poolOf("e1", "e2"))
	if ranked[0].ID != "e2" {
		t.Errorf("未执行过任务者应排前, got %v", ids(ranked))
	}
}

func TestRankHistorySizeSecond(t *testing.T) {
	// 两人都没执行过 b9；e1 历史种类多，e2 少：e2 排前
	c := NewContext(map[string]map[string]bool{
		"e1": {"b1": true, "b2": true, "b3": true},
		"e2": {"b1": true},
	})
	duty := &model.Business{ID: "b9"}

	ranked := c.Rank(duty, poolOf("e1", "e2"))
	if ranked[0].ID != "e2" {
		t.Errorf("历史种类少者应排前, got %v", ids(ranked))
	}
}

func TestRankBatchCountThird(t *testing.T) {
	c := NewContext(nil)
	// e1 本批次已有2次分配，e2 有1次
	c.Counts["e1"] = 2
	c.Counts["e2"] = 1
	duty := &model.Business{ID: "b1"}

	ranked := c.Rank(duty, poolOf("e1", "e2"))
	if ranked[0].ID != "e2" {
		t.Errorf("批次分配少者应排前, got %v", ids(ranked))
	}
}

func TestRankStableOnTies(t *testing.T) {
	c := NewContext(nil)
	duty := &model.Business{ID: "b1"}
	pool := poolOf("e3", "e1", "e2")

	ranked := c.Rank(duty, pool)
	want := []string{"e3", "e1", "e2"}
	for i := range want {
		if ranked[i].ID != want[i] {
			t.Fatalf("全部同分时应保持输入顺序, got %v", ids(ranked))
		}
	}

	// 重复调用结果一致
	again := c.Rank(duty, pool)
	for i := range ranked {
		if ranked[i].ID != again[i].ID {
			t.Fatal("相同输入重复排序结果应一致")
		}
	}
}

func TestRankDoesNotMutateInput(t *testing.T) {
	c := NewContext(map[string]map[string]bool{"e1": {"b1": true}})
	duty := &model.Business{ID: "b1"}
	pool := poolOf("e1", "e2")

	c.Rank(duty, pool)
	if pool[0].ID != "e1" || pool[1].ID != "e2" {
		t.Error("排序不应修改调用方的切片")
	}
}

func TestRecordAffectsSubsequentRank(t *testing.T) {
	c := NewContext(nil)
	duty := &model.Business{ID: "b1"}

	ranked := c.Rank(duty, poolOf("e1", "e2"))
	if ranked[0].ID != "e1" {
		t.Fatalf("初始应按输入顺序, got %v", ids(ranked))
	}

	// e1 获得 b1 后，e2 应排前
	c.Record("e1", "b1")
	ranked = c.Rank(duty, poolOf("e1", "e2"))
	if ranked[0].ID != "e2" {
		t.Errorf("分配记录应立即影响排序, got %v", ids(ranked))
	}
}

func TestRankRollCall(t *testing.T) {
	c := NewContext(map[string]map[string]bool{
		"e1": {"b1": true, "b2": true},
		"e2": {"b1": true},
	})
	pool := []*model.Employee{
		{ID: "e1", RollCall: true},
		{ID: "e2", RollCall: true},
		{ID: "e3", RollCall: false},
	}

	ranked := c.RankRollCall(pool)
	if len(ranked) != 2 {
		t.Fatalf("无点呼资格者应被过滤, got %d", len(ranked))
	}
	// 点呼排序不看是否执行过该任务，只看历史种类：e2 历史少排前
	if ranked[0].ID != "e2" {
		t.Errorf("历史种类少者应排前, got %v", ids(ranked))
	}
}

func TestFilterPool(t *testing.T) {
	pool := poolOf("e1", "e2", "e3")
	sameDay := map[string]int{
		"e1": SameDayHardCap,     // 达到上限
		"e2": SameDayHardCap - 1, // 未达
	}

	filtered := FilterPool(pool, sameDay)
	if len(filtered) != 2 {
		t.Fatalf("达上限者应被移出, got %d", len(filtered))
	}
	for _, e := range filtered {
		if e.ID == "e1" {
			t.Error("e1 当日已达3班不应在池中")
		}
	}
}
