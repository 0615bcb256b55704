package model

import "testing"

func TestNormalizeBusinesses(t *testing.T) {
	tests := []struct {
		name          string
		business      *Business
		wantClass     DutyClass
		wantDirection string
		wantPairKey   string
		wantHeadcount int
	}{
		{
			name:          "普通任务默认值",
			business:      &Business{ID: "b1", Name: "市内巡回"},
			wantClass:     DutyRegular,
			wantPairKey:   "市内巡回",
			wantHeadcount: 1,
		},
		{
			name:          "去程后缀提取方向与配对键",
			business:      &Business{ID: "b2", Name: "东京线（去程）", DurationDays: 2},
			wantClass:     DutyRoundTrip,
			wantDirection: DirectionOutbound,
			wantPairKey:   "东京线",
			wantHeadcount: 1,
		},
		{
			name:          "回程后缀",
			business:      &Business{ID: "b3", Name: "东京线（回程）", DurationDays: 2},
			wantClass:     DutyRoundTrip,
			wantDirection: DirectionReturn,
			wantPairKey:   "东京线",
			wantHeadcount: 1,
		},
		{
			name:          "英文后缀",
			business:      &Business{ID: "b4", Name: "Tokyo Line (Outbound)", DurationDays: 2},
			wantClass:     DutyRoundTrip,
			wantDirection: DirectionOutbound,
			wantPairKey:   "Tokyo Line",
			wantHeadcount: 1,
		},
		{
			name:          "点呼任务名称推断",
			business:      &Business{ID: "b5", Name: "早间点呼", Headcount: 2},
			wantClass:     DutyRollCall,
			wantPairKey:   "早间点呼",
			wantHeadcount: 2,
		},
		{
			name:          "显式类别不被覆盖",
			business:      &Business{ID: "b6", Name: "早间点呼", Class: DutyRegular},
			wantClass:     DutyRegular,
			wantPairKey:   "早间点呼",
			wantHeadcount: 1,
		},
		{
			name:          "单日带方向后缀仍为普通任务",
			business:      &Business{ID: "b7", Name: "近郊线（去程）"},
			wantClass:     DutyRegular,
			wantDirection: DirectionOutbound,
			wantPairKey:   "近郊线",
			wantHeadcount: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			NormalizeBusinesses([]*Business{tt.business})
			b := tt.business
			if b.Class != tt.wantClass {
				t.Errorf("Class = %s, want %s", b.Class, tt.wantClass)
			}
			if b.Direction != tt.wantDirection {
				t.Errorf("Direction = %s, want %s", b.Direction, tt.wantDirection)
			}
			if b.PairKey != tt.wantPairKey {
				t.Errorf("PairKey = %q, want %q", b.PairKey, tt.wantPairKey)
			}
			if b.Headcount != tt.wantHeadcount {
				t.Errorf("Headcount = %d, want %d", b.Headcount, tt.wantHeadcount)
			}
		})
	}
}

func TestTagExclusiveGroups(t *testing.T) {
	businesses := []*Business{
		{ID: "b1", Name: "检票A段"},
		{ID: "b2", Name: "检票B段"},
		{ID: "b3", Name: "市内巡回"},
	}
	rules := []*Rule{
		{
			ID:     "r1",
			Type:   RuleExclusiveAssignment,
			Active: true,
			Config: RuleConfig{
				ExclusiveGroups: []ExclusiveGroup{
					{Name: "检票", Keywords: []string{"检票"}},
				},
			},
		},
	}

	TagExclusiveGroups(businesses, rules)

	if businesses[0].Exclusive != "检票" || businesses[1].Exclusive != "检票" {
		t.Errorf("检票任务应打上互斥标签, got %q %q", businesses[0].Exclusive, businesses[1].Exclusive)
	}
	if businesses[2].Exclusive != "" {
		t.Errorf("无关任务不应打标签, got %q", businesses[2].Exclusive)
	}
}

func TestTagExclusiveGroupsInactiveRule(t *testing.T) {
	businesses := []*Business{{ID: "b1", Name: "检票A段"}}
	rules := []*Rule{
		{
			ID:     "r1",
			Type:   RuleExclusiveAssignment,
			Active: false,
			Config: RuleConfig{
				ExclusiveGroups: []ExclusiveGroup{{Name: "检票", Keywords: []string{"检票"}}},
			},
		},
	}

	TagExclusiveGroups(businesses, rules)

	if businesses[0].Exclusive != "" {
		t.Errorf("停用规则不应打标签, got %q", businesses[0].Exclusive)
	}
}

func TestRuleIsMandatory(t *testing.T) {
	tests := []struct {
		name        string
		priority    int
		enforcement EnforcementLevel
		want        bool
	}{
		{name: "优先级0且强制", priority: 0, enforcement: EnforcementMandatory, want: true},
		{name: "优先级0但严格级别", priority: 0, enforcement: EnforcementStrict, want: false},
		{name: "强制但优先级非0", priority: 1, enforcement: EnforcementMandatory, want: false},
		{name: "建议级别", priority: 2, enforcement: EnforcementRecommended, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Rule{Priority: tt.priority, Enforcement: tt.enforcement}
			if got := r.IsMandatory(); got != tt.want {
				t.Errorf("IsMandatory() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRuleAppliesTo(t *testing.T) {
	if !(&Rule{}).AppliesTo("东京") {
		t.Error("无适用地点的规则应全局适用")
	}
	if !(&Rule{Locations: []string{"all"}}).AppliesTo("大阪") {
		t.Error("all 应匹配任意营业所")
	}
	r := &Rule{Locations: []string{"东京"}}
	if !r.AppliesTo("东京") || r.AppliesTo("大阪") {
		t.Error("指定地点的规则只适用于该营业所")
	}
}

func TestEmployeeTeamPool(t *testing.T) {
	galaxy := &Employee{ID: "e1", Team: "Galaxy"}
	free := &Employee{ID: "e2"}
	noneTeam := &Employee{ID: "e3", Team: TeamNone}

	if !galaxy.InTeamPool("Galaxy") || galaxy.InTeamPool("Aube") {
		t.Error("分组员工只进入本班组池")
	}
	if !free.InTeamPool("Galaxy") || !free.InTeamPool("Aube") {
		t.Error("未分组员工可进入任一班组池")
	}
	if !noneTeam.InTeamPool("Aube") {
		t.Error("team=none 视为未分组")
	}
}
