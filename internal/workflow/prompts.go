package workflow

import (
	"fmt"
	"strings"

	"finsight/internal/report"
)

// maxAnalysisChars caps the raw data fed to the analysis prompt.
const maxAnalysisChars = 8000

// buildQueries produces the three sub-queries for one collection pass.
// Retry passes broaden the terms so repeated attempts surface new sources.
func buildQueries(topic, focus string, retry int) []string {
	subject := topic
	if focus != "" {
		subject = topic + " " + focus
	}
	queries := []string{
		fmt.Sprintf("%s financial results revenue profit", subject),
		fmt.Sprintf("%s quarterly earnings report", topic),
		fmt.Sprintf("%s market performance analysis", topic),
	}
	if retry > 0 {
		for i := range queries {
			queries[i] += " financial report earnings annual results"
		}
	}
	return queries
}

// analysisPrompt asks the generator for a structured extraction over the
// collected data. The shape must stay in sync with the analysis parser.
func analysisPrompt(topic string, chunks []report.TextChunk) string {
	var b strings.Builder
	for _, c := range chunks {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(c.Text)
		if b.Len() > maxAnalysisChars {
			break
		}
	}
	combined := b.String()
	if len(combined) > maxAnalysisChars {
		combined = combined[:maxAnalysisChars] + "...[truncated]"
	}

	return fmt.Sprintf(`Analyze this financial data about %s:

%s

Return your analysis in this EXACT JSON format:
{
  "revenue": "value or unknown",
  "profit": "value or unknown",
  "growth_rate": "value or unknown",
  "key_insights": ["insight1", "insight2", "insight3"],
  "trends": ["trend1", "trend2"]
}

Return ONLY the JSON, no other text.`, topic, combined)
}

// writerPrompt asks for the full six-section report from the analysis.
func writerPrompt(topic, focus string, a *report.Analysis, revision int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a senior financial analyst writing an executive report about %s.\n", topic)
	if focus != "" {
		fmt.Fprintf(&b, "Focus the analysis on: %s.\n", focus)
	}
	b.WriteString("\nFINANCIAL METRICS:\n")
	for _, name := range []string{"revenue", "profit", "growth_rate"} {
		value := a.Metrics[name]
		if value == "" {
			value = "Not available"
		}
		fmt.Fprintf(&b, "- %s: %s\n", name, value)
	}
	b.WriteString("\nKEY INSIGHTS:\n")
	for _, in := range a.Insights {
		fmt.Fprintf(&b, "- %s\n", in)
	}
	b.WriteString("\nMARKET TRENDS:\n")
	for _, tr := range a.Trends {
		fmt.Fprintf(&b, "- %s\n", tr)
	}

	b.WriteString("\nWrite a comprehensive financial analysis report in markdown with these ## sections, in order:\n")
	for i, s := range RequiredSections {
		fmt.Fprintf(&b, "%d. %s\n", i+1, s)
	}
	b.WriteString(`
Use specific numbers and data points from the metrics, a professional
analytical tone, and complete paragraphs. Aim for 2000-3000 words.
`)
	if revision > 0 {
		fmt.Fprintf(&b, "\nThis is revision %d: the previous draft was rejected for thin content. Add depth, specifics, and quantitative detail.\n", revision)
	}
	return b.String()
}

// editorPrompt asks for a publication polish without content changes.
func editorPrompt(topic, draft string) string {
	return fmt.Sprintf(`You are a professional editor reviewing a financial analysis report.

Polish and format this report for final publication.

ORIGINAL REPORT:
%s

Keep all ## section headings, fix grammar and flow, keep the professional
tone, and use the company name "%s" consistently. Do NOT change the core
content or analysis. Return the polished report only.`, draft, topic)
}
