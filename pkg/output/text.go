package output

import (
	"fmt"
	"sort"
	"strings"
)

const divider = "======================================================================"

var statusGlyphs = map[string]string{
	"ok":                "✅",
	"missing":           "❌",
	"locked":            "🔒",
	"external_required": "🔗",
}

// RenderText renders the report as the terminal panel: one section per
// timeframe, a glyph per metric, and an overall summary footer. Verbose mode
// adds the status word and the notes to every non-ok line.
func RenderText(report Report, verbose bool) string {
	var b strings.Builder

	sections := []struct {
		title string
		items []Item
	}{
		{"DAILY METRICS", report.Daily},
		{"WEEKLY METRICS", report.Weekly},
		{"MONTHLY METRICS", report.Monthly},
	}

	total, ok := 0, 0
	for _, section := range sections {
		if len(section.items) == 0 {
			continue
		}
		b.WriteString(divider + "\n")
		b.WriteString(section.title + "\n")
		b.WriteString(divider + "\n")
		for _, item := range section.items {
			writeLine(&b, item, verbose)
			total++
			if item.Status == "ok" {
				ok++
			}
		}
		b.WriteString("\n")
	}

	b.WriteString(divider + "\n")
	fmt.Fprintf(&b, "SUMMARY: %d/%d metrics OK\n", ok, total)
	b.WriteString(divider + "\n")
	return b.String()
}

func writeLine(b *strings.Builder, item Item, verbose bool) {
	glyph, known := statusGlyphs[item.Status]
	if !known {
		glyph = "❓"
	}
	fmt.Fprintf(b, "%s %s: %s", glyph, item.Name, formatValue(item))
	if item.Status != "ok" {
		fmt.Fprintf(b, " [%s]", item.Status)
		if verbose && item.Notes != "" {
			fmt.Fprintf(b, " (%s)", item.Notes)
		}
	}
	b.WriteString("\n")
}

// formatValue renders a metric value for the text panel according to its
// unit. Units it does not know fall back to a generic numeric format.
func formatValue(item Item) string {
	if item.Value == nil {
		return "-"
	}
	switch v := item.Value.(type) {
	case map[string]any:
		if item.Unit == "funding_regime" {
			return formatRegime(v)
		}
		return formatDict(v)
	case []any:
		return fmt.Sprintf("[%d items]", len(v))
	case string:
		return v
	}

	num, ok := asFloat(item.Value)
	if !ok {
		return fmt.Sprintf("%v", item.Value)
	}
	switch item.Unit {
	case "percent":
		return fmt.Sprintf("%+.2f%%", num)
	case "billion_usd":
		return fmt.Sprintf("$%.2fB", num)
	case "million_usd":
		return fmt.Sprintf("$%.2fM", num)
	case "ratio":
		return fmt.Sprintf("%.3f", num)
	default:
		return fmt.Sprintf("%.4f", num)
	}
}

// formatRegime packs the funding regime diagnostics into one line.
func formatRegime(v map[string]any) string {
	return fmt.Sprintf("%v | last8h=%v%% | mean8h=%v%% | stdev8h=%v | pos=%v | annCarry=%v%% | flips30=%v | z=%v | slope=%v | cum30=%v%% | crowd=%v | squeeze=%v | chop=%v",
		v["regime"], v["last_pct"], v["mean_pct"], v["stdev_pct"], v["pos_ratio"],
		v["ann_carry_pct"], v["flips"], v["z_last"], v["slope_pct_per_bar"],
		v["cum_30_pct"], v["crowding_score"], v["squeeze_score"], v["chop_score"])
}

// formatDict renders a map value as "{k=v, ...}" with deterministic key
// order.
func formatDict(v map[string]any) string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, v[k]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func asFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}
