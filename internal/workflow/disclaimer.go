package workflow

import (
	"fmt"
	"strings"
	"time"

	"finsight/internal/report"
)

// DisclaimerMarker appears in every early-exit report so callers and tests
// can distinguish a disclaimer from a full analysis.
const DisclaimerMarker = "Insufficient Data Available"

// disclaimerReport synthesizes the early-exit artifact: a fixed template
// citing insufficient public data, embedding whatever partial analysis
// exists. Write and Edit are never invoked on this path.
func disclaimerReport(state *report.RunState) string {
	var b strings.Builder
	fmt.Fprintf(&b, `---
**Financial Analysis Report**

**Company:** %s

**Generated:** %s

**Status:** %s

---

## Data Collection Notice

After %d attempts to gather financial information about **%s**, we were
unable to find sufficient publicly available data to generate a
comprehensive financial analysis report.

### Possible Reasons

- The company may be privately held with limited public disclosures
- The company name may be misspelled or not widely recognized
- The company may be very small or newly established
- The company may not exist or may have recently ceased operations

### Recommendation

Please verify the company name and spelling, whether the company has public
financial disclosures, and any alternative names it might trade under. If
this looks like an error, retry with the full legal name, a stock ticker
symbol, or the industry and location.
`,
		state.Topic,
		time.Now().UTC().Format("2006-01-02"),
		DisclaimerMarker,
		state.DataRetryCount+1,
		state.Topic,
	)

	if a := state.Analysis; !a.Empty() {
		b.WriteString("\n### Partial Findings\n\n")
		b.WriteString("The following fragments were extracted before the run stopped and should be treated as unverified:\n\n")
		for name, value := range a.Metrics {
			fmt.Fprintf(&b, "- %s: %s\n", name, value)
		}
		for _, in := range a.Insights {
			fmt.Fprintf(&b, "- %s\n", in)
		}
		for _, tr := range a.Trends {
			fmt.Fprintf(&b, "- %s\n", tr)
		}
	}

	b.WriteString("\n---\n*This report was generated automatically after failing to collect sufficient data for analysis.*\n")
	return b.String()
}
