package analysis

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"finsight/internal/report"
)

func TestParse_PlainJSON(t *testing.T) {
	raw := `{
		"revenue": "$96.8 billion",
		"profit": "$15 billion",
		"growth_rate": "19% YoY",
		"key_insights": ["strong delivery growth", "margin expansion"],
		"trends": ["capacity buildout"]
	}`

	got, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := &report.Analysis{
		Metrics: map[string]string{
			"revenue":     "$96.8 billion",
			"profit":      "$15 billion",
			"growth_rate": "19% YoY",
		},
		Insights: []string{"strong delivery growth", "margin expansion"},
		Trends:   []string{"capacity buildout"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Parse mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_FencedJSON(t *testing.T) {
	raw := "Here is the analysis:\n```json\n{\"revenue\": \"$10M\", \"key_insights\": [\"x\"], \"trends\": []}\n```\nDone."
	got, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse fenced: %v", err)
	}
	if got.Metrics["revenue"] != "$10M" {
		t.Errorf("revenue: got %q", got.Metrics["revenue"])
	}
	if len(got.Insights) != 1 {
		t.Errorf("insights: got %d, want 1", len(got.Insights))
	}
}

func TestParse_SurroundingProse(t *testing.T) {
	raw := `Sure! {"revenue": "unknown", "profit": "", "key_insights": [" a ", ""], "trends": ["t1", "t2"]} hope that helps`
	got, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse prose: %v", err)
	}
	// Empty metric values are dropped; vague values are kept for the gate to judge.
	if _, ok := got.Metrics["profit"]; ok {
		t.Error("empty profit value should be dropped")
	}
	if got.Metrics["revenue"] != "unknown" {
		t.Errorf("revenue: got %q", got.Metrics["revenue"])
	}
	if len(got.Insights) != 1 || got.Insights[0] != "a" {
		t.Errorf("insights not compacted: %v", got.Insights)
	}
	if len(got.Trends) != 2 {
		t.Errorf("trends: got %d, want 2", len(got.Trends))
	}
}

func TestParse_Malformed(t *testing.T) {
	for _, raw := range []string{"", "no json here", "{truncated", "```\nnot json\n```"} {
		if _, err := Parse(raw); err == nil {
			t.Errorf("Parse(%q): expected error", raw)
		}
	}
}
