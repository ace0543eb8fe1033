package output

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleReport() Report {
	return Report{
		Daily: []Item{
			{ID: "daily_01_total_open_interest", Name: "Total Open Interest", Timeframe: "daily",
				Category: "open_interest", Status: "ok", Unit: "billion_usd", Value: 27.68},
			{ID: "daily_02_oi_change_1h", Name: "OI Change 1h", Timeframe: "daily",
				Category: "open_interest", Status: "missing", Unit: "percent",
				Notes: "fetch failed: timeout"},
		},
		Weekly: []Item{
			{ID: "weekly_08_net_flow", Name: "Exchange Net Flow", Timeframe: "weekly",
				Category: "open_interest", Status: "locked", Unit: "btc",
				Notes: "Requires standard plan or higher"},
			{ID: "weekly_17_options_put_call_ratio", Name: "Options Put/Call Ratio", Timeframe: "weekly",
				Category: "open_interest", Status: "external_required", Unit: "ratio",
				Notes: "Requires options chain data (Deribit)"},
		},
	}
}

func TestRenderTextGlyphsAndSummary(t *testing.T) {
	text := RenderText(sampleReport(), false)

	require.Contains(t, text, "DAILY METRICS")
	require.Contains(t, text, "WEEKLY METRICS")
	require.NotContains(t, text, "MONTHLY METRICS")

	require.Contains(t, text, "✅ Total Open Interest: $27.68B")
	require.Contains(t, text, "❌ OI Change 1h: - [missing]")
	require.Contains(t, text, "🔒 Exchange Net Flow: - [locked]")
	require.Contains(t, text, "🔗 Options Put/Call Ratio: - [external_required]")
	require.Contains(t, text, "SUMMARY: 1/4 metrics OK")
	require.Contains(t, text, strings.Repeat("=", 70))

	// Non-verbose output omits the notes.
	require.NotContains(t, text, "timeout")
}

func TestRenderTextVerboseIncludesNotes(t *testing.T) {
	text := RenderText(sampleReport(), true)
	require.Contains(t, text, "(fetch failed: timeout)")
	require.Contains(t, text, "(Requires standard plan or higher)")
}

func TestFormatValueUnits(t *testing.T) {
	cases := []struct {
		name string
		item Item
		want string
	}{
		{"percent", Item{Unit: "percent", Status: "ok", Value: 2.5}, "+2.50%"},
		{"negative percent", Item{Unit: "percent", Status: "ok", Value: -1.25}, "-1.25%"},
		{"billions", Item{Unit: "billion_usd", Status: "ok", Value: 27.684}, "$27.68B"},
		{"millions", Item{Unit: "million_usd", Status: "ok", Value: 152.3}, "$152.30M"},
		{"ratio", Item{Unit: "ratio", Status: "ok", Value: 1.2345}, "1.234"},
		{"fallback", Item{Unit: "contracts", Status: "ok", Value: 30500.0}, "30500.0000"},
		{"nil", Item{Unit: "percent", Status: "missing"}, "-"},
		{"list", Item{Unit: "events", Status: "ok", Value: []any{1, 2, 3}}, "[3 items]"},
		{"string", Item{Unit: "index", Status: "ok", Value: "Greed"}, "Greed"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, formatValue(tc.item))
		})
	}
}

func TestFormatValueDict(t *testing.T) {
	item := Item{Unit: "ratio", Status: "ok", Value: map[string]any{
		"ratio": 1.5,
		"long":  60.0,
		"short": 40.0,
	}}
	require.Equal(t, "{long=60, ratio=1.5, short=40}", formatValue(item))
}

func TestFormatValueFundingRegime(t *testing.T) {
	item := Item{Unit: "funding_regime", Status: "ok", Value: map[string]any{
		"regime":            "LONG_PAYS_LOW_VOL",
		"last_pct":          0.01,
		"mean_pct":          0.01,
		"stdev_pct":         0.0,
		"pos_ratio":         1.0,
		"ann_carry_pct":     10.95,
		"flips":             0,
		"z_last":            0.0,
		"slope_pct_per_bar": 0.0,
		"cum_30_pct":        0.3,
		"crowding_score":    20.0,
		"squeeze_score":     0.0,
		"chop_score":        0.0,
	}}
	got := formatValue(item)
	require.True(t, strings.HasPrefix(got, "LONG_PAYS_LOW_VOL | last8h=0.01% | "))
	require.Contains(t, got, "annCarry=10.95%")
	require.Contains(t, got, "flips30=0")
	require.Contains(t, got, "chop=0")
}
