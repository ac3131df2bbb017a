// Package analysis parses the Generator's structured-extraction output into a
// report.Analysis. A malformed response returns an error the Analyze stage
// converts into an empty analysis, which the quality gate then rejects
// through the normal retry path.
package analysis

import (
	"encoding/json"
	"fmt"
	"strings"

	"finsight/internal/report"
)

// extraction mirrors the JSON shape the analysis prompt asks for.
type extraction struct {
	Revenue     string   `json:"revenue"`
	Profit      string   `json:"profit"`
	GrowthRate  string   `json:"growth_rate"`
	KeyInsights []string `json:"key_insights"`
	Trends      []string `json:"trends"`
}

// Parse extracts a structured Analysis from raw model output. It tolerates
// markdown code fences and leading/trailing prose around the JSON object.
func Parse(raw string) (*report.Analysis, error) {
	text := stripFences(raw)
	text = isolateObject(text)
	if text == "" {
		return nil, fmt.Errorf("no JSON object in analysis output")
	}

	var ex extraction
	if err := json.Unmarshal([]byte(text), &ex); err != nil {
		return nil, fmt.Errorf("parse analysis output: %w", err)
	}

	a := &report.Analysis{
		Metrics:  make(map[string]string),
		Insights: compact(ex.KeyInsights),
		Trends:   compact(ex.Trends),
	}
	if v := strings.TrimSpace(ex.Revenue); v != "" {
		a.Metrics["revenue"] = v
	}
	if v := strings.TrimSpace(ex.Profit); v != "" {
		a.Metrics["profit"] = v
	}
	if v := strings.TrimSpace(ex.GrowthRate); v != "" {
		a.Metrics["growth_rate"] = v
	}
	return a, nil
}

// stripFences removes a surrounding markdown code fence, if present.
func stripFences(s string) string {
	if i := strings.Index(s, "```json"); i >= 0 {
		s = s[i+len("```json"):]
		if j := strings.Index(s, "```"); j >= 0 {
			s = s[:j]
		}
		return strings.TrimSpace(s)
	}
	if i := strings.Index(s, "```"); i >= 0 {
		s = s[i+3:]
		if j := strings.Index(s, "```"); j >= 0 {
			s = s[:j]
		}
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(s)
}

// isolateObject trims any prose outside the outermost braces.
func isolateObject(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

func compact(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if t := strings.TrimSpace(it); t != "" {
			out = append(out, t)
		}
	}
	return out
}
