package rulecache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/paiche/paiche/pkg/model"
)

// fakeLoader 记录加载次数，可切换为失败
type fakeLoader struct {
	calls int
	fail  bool
	rules []*model.Rule
}

func (f *fakeLoader) ListActive(ctx context.Context, location string) ([]*model.Rule, error) {
	f.calls++
	if f.fail {
		return nil, fmt.Errorf("数据库不可用")
	}
	return f.rules, nil
}

func TestGetCachesWithinTTL(t *testing.T) {
	loader := &fakeLoader{rules: []*model.Rule{{ID: "r1", Name: "日工时上限"}}}
	c := New(loader, time.Minute)

	for i := 0; i < 3; i++ {
		rules, err := c.Get(context.Background(), "东京")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if len(rules) != 1 {
			t.Fatalf("rules = %d", len(rules))
		}
	}
	if loader.calls != 1 {
		t.Errorf("TTL内应只加载1次, got %d", loader.calls)
	}
}

func TestGetReloadsAfterTTL(t *testing.T) {
	loader := &fakeLoader{}
	c := New(loader, time.Nanosecond)

	c.Get(context.Background(), "东京")
	time.Sleep(time.Millisecond)
	c.Get(context.Background(), "东京")

	if loader.calls != 2 {
		t.Errorf("过期后应重新加载, got %d", loader.calls)
	}
}

func TestGetPerLocationEntries(t *testing.T) {
	loader := &fakeLoader{}
	c := New(loader, time.Minute)

	c.Get(context.Background(), "东京")
	c.Get(context.Background(), "大阪")

	if loader.calls != 2 {
		t.Errorf("不同营业所应分别加载, got %d", loader.calls)
	}
}

func TestGetStaleFallbackOnReloadFailure(t *testing.T) {
	loader := &fakeLoader{rules: []*model.Rule{{ID: "r1"}}}
	c := New(loader, time.Nanosecond)

	if _, err := c.Get(context.Background(), "东京"); err != nil {
		t.Fatalf("首次加载: %v", err)
	}

	// 缓存过期且加载失败：降级返回过期数据
	loader.fail = true
	time.Sleep(time.Millisecond)
	rules, err := c.Get(context.Background(), "东京")
	if err != nil {
		t.Fatalf("应降级而非报错: %v", err)
	}
	if len(rules) != 1 || rules[0].ID != "r1" {
		t.Errorf("应返回过期缓存, got %v", rules)
	}
}

func TestGetFailureWithoutCache(t *testing.T) {
	loader := &fakeLoader{fail: true}
	c := New(loader, time.Minute)

	if _, err := c.Get(context.Background(), "东京"); err == nil {
		t.Error("无缓存且加载失败应报错")
	}
}

func TestInvalidate(t *testing.T) {
	loader := &fakeLoader{}
	c := New(loader, time.Minute)

	c.Get(context.Background(), "东京")
	c.Invalidate("东京")
	c.Get(context.Background(), "东京")

	if loader.calls != 2 {
		t.Errorf("失效后应重新加载, got %d", loader.calls)
	}
}

func TestInvalidateAll(t *testing.T) {
	loader := &fakeLoader{}
	c := New(loader, time.Minute)

	c.Get(context.Background(), "东京")
	c.Get(context.Background(), "大阪")
	c.InvalidateAll()
	c.Get(context.Background(), "东京")
	c.Get(context.Background(), "大阪")

	if loader.calls != 4 {
		t.Errorf("全部失效后应重新加载, got %d", loader.calls)
	}
}
