package observ

import (
	"strings"
	"testing"
)

func TestTimerSummary(t *testing.T) {
	tm := NewTimer()
	a := tm.Begin("check")
	b := tm.Begin("infer")
	tm.End(b, "3 modules")
	tm.End(a, "")
	tm.End(42, "ignored")

	r := tm.Report()
	if len(r.Phases) != 2 || r.Phases[0].Name != "check" || r.Phases[1].Note != "3 modules" {
		t.Fatalf("report = %+v", r)
	}
	sum := tm.Summary()
	for _, want := range []string{"timings:", "check", "infer", "3 modules", "total"} {
		if !strings.Contains(sum, want) {
			t.Errorf("summary lacks %q:\n%s", want, sum)
		}
	}
}
