package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRecordRuleEvaluationExported(t *testing.T) {
	RecordRuleEvaluation("max_daily_work_hours", false)
	RecordRuleEvaluation("max_daily_work_hours", false)
	RecordRuleEvaluation("min_rest_hours", true)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()

	if !strings.Contains(body, `paiche_rule_evaluations_total{rule_type="max_daily_work_hours",result="violated"} 2`) {
		t.Errorf("违反计数未出现在指标输出:\n%s", body)
	}
	if !strings.Contains(body, `paiche_rule_evaluations_total{rule_type="min_rest_hours",result="satisfied"} 1`) {
		t.Errorf("满足计数未出现在指标输出:\n%s", body)
	}
}

func TestHandlerContentType(t *testing.T) {
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "text/plain") {
		t.Errorf("Content-Type = %s", ct)
	}
}
