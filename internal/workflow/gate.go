package workflow

import (
	"fmt"
	"regexp"
	"strings"

	"finsight/internal/report"
)

// Thresholds holds the configurable acceptance criteria for both gate modes.
type Thresholds struct {
	// Data-quality evaluation (after Analyze).
	MinDataChunks int `yaml:"min_data_chunks" json:"min_data_chunks"`
	MinDataChars  int `yaml:"min_data_chars" json:"min_data_chars"`
	MinInsights   int `yaml:"min_insights" json:"min_insights"`
	MinTrends     int `yaml:"min_trends" json:"min_trends"`

	// Report-quality evaluation (after Edit).
	MinReportLength int `yaml:"min_report_length" json:"min_report_length"`
	MinMentions     int `yaml:"min_mentions" json:"min_mentions"`
	MinMetrics      int `yaml:"min_metrics" json:"min_metrics"`
}

// DefaultThresholds returns the production acceptance criteria.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinDataChunks:   5,
		MinDataChars:    2000,
		MinInsights:     3,
		MinTrends:       3,
		MinReportLength: 3000,
		MinMentions:     10,
		MinMetrics:      5,
	}
}

// RequiredSections are the six headings every finished report must carry,
// in order. The gate matches them case-insensitively as heading lines.
var RequiredSections = []string{
	"Executive Summary",
	"Company Overview",
	"Financial Performance",
	"Market Position",
	"Key Insights",
	"Conclusion",
}

// knownMetrics is the recognized metric name set for the data gate.
var knownMetrics = []string{"revenue", "profit", "growth_rate", "net_income", "operating_margin", "eps"}

// vagueTerms mark metric values that carry no real signal.
var vagueTerms = []string{"unknown", "not available", "not disclosed", "not found", "no data", "estimated"}

// quantPattern matches quantitative tokens: dollar amounts (optionally with a
// B/M/K suffix) and percentages.
var quantPattern = regexp.MustCompile(`\$[\d,]+\.?\d*[BMK]?|\d+\.?\d*%`)

// QualityGate scores produced artifacts against the threshold policy.
// It is deterministic and makes no collaborator calls.
type QualityGate struct {
	Thresholds Thresholds
}

// EvaluateData scores the analysis produced from the collected raw data.
// It returns accept plus the diagnostics for every unmet condition. An absent
// analysis is a contract violation by the caller, not a quality failure.
func (g *QualityGate) EvaluateData(state *report.RunState) (bool, []string, error) {
	if state.Analysis == nil {
		return false, nil, fmt.Errorf("%w: data gate invoked with no analysis", ErrContractViolation)
	}
	th := g.Thresholds
	var diags []string

	if n := len(state.RawData); n < th.MinDataChunks {
		diags = append(diags, fmt.Sprintf("insufficient data chunks: %d (need at least %d)", n, th.MinDataChunks))
	}
	if chars := state.RawDataChars(); chars < th.MinDataChars {
		diags = append(diags, fmt.Sprintf("insufficient raw data: %d chars (need at least %d)", chars, th.MinDataChars))
	}
	if n := len(state.Analysis.Insights); n < th.MinInsights {
		diags = append(diags, fmt.Sprintf("insufficient insights: %d (need at least %d)", n, th.MinInsights))
	}
	if n := len(state.Analysis.Trends); n < th.MinTrends {
		diags = append(diags, fmt.Sprintf("insufficient trends: %d (need at least %d)", n, th.MinTrends))
	}
	if countKnownMetrics(state.Analysis.Metrics) == 0 {
		diags = append(diags, "no recognized financial metric extracted")
	}

	return len(diags) == 0, diags, nil
}

// EvaluateReport scores the edited draft. An empty draft is a contract
// violation: the Write stage always leaves a non-empty draft, so an empty one
// means the gate was invoked out of order.
func (g *QualityGate) EvaluateReport(state *report.RunState) (bool, []string, error) {
	if state.DraftReport == "" {
		return false, nil, fmt.Errorf("%w: report gate invoked with no draft", ErrContractViolation)
	}
	th := g.Thresholds
	text := state.DraftReport
	var diags []string

	if len(text) < th.MinReportLength {
		diags = append(diags, fmt.Sprintf("report too short: %d chars (minimum %d)", len(text), th.MinReportLength))
	}

	mentions := 0
	if topic := strings.ToLower(strings.TrimSpace(state.Topic)); topic != "" {
		mentions = strings.Count(strings.ToLower(text), topic)
	}
	if mentions < th.MinMentions {
		diags = append(diags, fmt.Sprintf("company barely discussed: mentioned only %d times (need at least %d)", mentions, th.MinMentions))
	}

	if n := len(quantPattern.FindAllString(text, -1)); n < th.MinMetrics {
		diags = append(diags, fmt.Sprintf("lacks specific data points: only %d quantitative metrics (need at least %d)", n, th.MinMetrics))
	}

	if missing := missingSections(text); len(missing) > 0 {
		diags = append(diags, fmt.Sprintf("missing sections: %s", strings.Join(missing, ", ")))
	}

	return len(diags) == 0, diags, nil
}

// countKnownMetrics counts recognized metrics with non-vague values.
func countKnownMetrics(metrics map[string]string) int {
	count := 0
	for _, name := range knownMetrics {
		value, ok := metrics[name]
		if !ok {
			continue
		}
		if isVague(value) {
			continue
		}
		count++
	}
	return count
}

func isVague(value string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return true
	}
	for _, term := range vagueTerms {
		if strings.Contains(v, term) {
			return true
		}
	}
	return false
}

// missingSections returns the required headings not present as heading lines.
func missingSections(text string) []string {
	var headings []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "#") {
			continue
		}
		headings = append(headings, strings.ToLower(strings.TrimLeft(trimmed, "# ")))
	}

	var missing []string
	for _, section := range RequiredSections {
		want := strings.ToLower(section)
		found := false
		for _, h := range headings {
			if strings.Contains(h, want) {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, section)
		}
	}
	return missing
}
