package metrics

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Shared payload plumbing for normalizers.
//
// Cross-cutting rules every normalizer follows:
//   - the body-level success code is re-checked even though the provider
//     already classified the response
//   - timestamps arrive in milliseconds and are converted to epoch seconds
//     exactly once, here
//   - series are explicitly sorted ascending before any "latest" or "N ago"
//     selection; upstream ordering is not trusted
//   - numeric fields may arrive as JSON numbers or as strings and are
//     coerced either way
//   - a normalizer that cannot produce a sound value reports ok=false, it
//     never panics and never returns a partial result

// bodyOK reports whether the envelope carries an application-level success
// code ("0", "00" or "success" depending on endpoint generation).
func bodyOK(raw map[string]any) bool {
	code, ok := raw["code"]
	if !ok {
		return false
	}
	s := strings.ToLower(strings.TrimSpace(stringify(code)))
	return s == "0" || s == "00" || s == "success"
}

// payloadRows extracts the envelope's data field as a list of row objects.
func payloadRows(raw map[string]any) []map[string]any {
	list, ok := raw["data"].([]any)
	if !ok {
		return nil
	}
	rows := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if row, ok := item.(map[string]any); ok {
			rows = append(rows, row)
		}
	}
	return rows
}

// payloadObject extracts the envelope's data field as a single object.
func payloadObject(raw map[string]any) map[string]any {
	obj, _ := raw["data"].(map[string]any)
	return obj
}

// toFloat coerces a JSON value to float64. Strings are parsed; anything else
// non-numeric fails.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func fieldFloat(row map[string]any, keys ...string) (float64, bool) {
	for _, key := range keys {
		if v, ok := row[key]; ok && v != nil {
			if f, ok := toFloat(v); ok {
				return f, true
			}
		}
	}
	return 0, false
}

// point is one bar of a (timestamp, value) series. The timestamp unit is
// whatever the caller extracted; conversion to seconds happens where the
// contract requires it.
type point struct {
	ts  int64
	val float64
}

// seriesOpts controls series extraction.
type seriesOpts struct {
	tsKeys       []string
	valKeys      []string
	positiveOnly bool
}

// extractSeries builds an ascending (timestamp, value) series from envelope
// rows, dropping rows with missing or unparsable fields.
func extractSeries(raw map[string]any, opts seriesOpts) []point {
	if !bodyOK(raw) {
		return nil
	}
	rows := payloadRows(raw)
	pts := make([]point, 0, len(rows))
	for _, row := range rows {
		ts, tsOK := fieldFloat(row, opts.tsKeys...)
		val, valOK := fieldFloat(row, opts.valKeys...)
		if !tsOK || !valOK {
			continue
		}
		if opts.positiveOnly && val <= 0 {
			continue
		}
		pts = append(pts, point{ts: int64(ts), val: val})
	}
	sort.Slice(pts, func(i, j int) bool { return pts[i].ts < pts[j].ts })
	return pts
}

// closeSeries is the common time/close extraction used by OHLC-style
// endpoints.
func closeSeries(raw map[string]any, positiveOnly bool) []point {
	return extractSeries(raw, seriesOpts{
		tsKeys:       []string{"time"},
		valKeys:      []string{"close"},
		positiveOnly: positiveOnly,
	})
}

func round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}

// pctChange returns the percent change from prev to latest, rounded to two
// decimals.
func pctChange(prev, latest float64) (float64, bool) {
	if prev == 0 {
		return 0, false
	}
	return round((latest-prev)/prev*100, 2), true
}

// fundingPercent converts a funding rate to percent. Rates usually arrive as
// decimals (0.0001 for 0.01%), but some endpoints already emit percent;
// anything with magnitude below one is treated as a decimal.
func fundingPercent(rate float64) float64 {
	if math.Abs(rate) < 1 {
		return rate * 100
	}
	return rate
}

const (
	dayMs             = int64(86400000)
	millisecondCutoff = 1e12
)

// epochSeconds normalizes a timestamp that may be in milliseconds.
func epochSeconds(ts int64) int64 {
	if float64(ts) > millisecondCutoff {
		return ts / 1000
	}
	return ts
}

// ============================================================
// Daily normalizers
// ============================================================

// normalizeTotalOpenInterest reads the latest aggregated OI close and reports
// it in billions of dollars.
func normalizeTotalOpenInterest(raw map[string]any) (any, bool) {
	if !bodyOK(raw) {
		return nil, false
	}
	rows := payloadRows(raw)
	if len(rows) == 0 {
		return nil, false
	}
	closeVal, ok := fieldFloat(rows[len(rows)-1], "close")
	if !ok || closeVal <= 0 {
		return nil, false
	}
	return round(closeVal/1e9, 2), true
}

// normalizeOIChange computes the percent change between the two most recent
// OI bars. Bound to both the 1h and the 4h metric; the window difference
// lives entirely in the request params.
func normalizeOIChange(raw map[string]any) (any, bool) {
	pts := closeSeries(raw, true)
	if len(pts) < 2 {
		return nil, false
	}
	prev, latest := pts[len(pts)-2].val, pts[len(pts)-1].val
	change, ok := pctChange(prev, latest)
	if !ok {
		return nil, false
	}
	return change, true
}

// normalizeWeightedFunding reports the latest OI-weighted funding rate as a
// percent.
func normalizeWeightedFunding(raw map[string]any) (any, bool) {
	if !bodyOK(raw) {
		return nil, false
	}
	rows := payloadRows(raw)
	if len(rows) == 0 {
		return nil, false
	}
	rate, ok := fieldFloat(rows[len(rows)-1], "close")
	if !ok {
		return nil, false
	}
	return round(fundingPercent(rate), 4), true
}

// minFundingHistoryBars is the sparseness floor for the funding series: below
// this the history is not worth reporting.
const minFundingHistoryBars = 5

// normalizeFundingHistory emits the funding series as a list of
// {timestamp, value} rows with epoch-second timestamps and percent values,
// oldest first.
func normalizeFundingHistory(raw map[string]any) (any, bool) {
	if !bodyOK(raw) {
		return nil, false
	}
	rows := payloadRows(raw)
	if len(rows) < minFundingHistoryBars {
		return nil, false
	}

	type bar struct {
		ts  int64
		val float64
	}
	bars := make([]bar, 0, len(rows))
	for _, row := range rows {
		ts, tsOK := fieldFloat(row, "time")
		rate, rateOK := fieldFloat(row, "close")
		if !tsOK || !rateOK {
			continue
		}
		bars = append(bars, bar{ts: int64(ts) / 1000, val: round(fundingPercent(rate), 4)})
	}
	if len(bars) < minFundingHistoryBars {
		return nil, false
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].ts < bars[j].ts })

	out := make([]any, 0, len(bars))
	for _, b := range bars {
		out = append(out, map[string]any{"timestamp": b.ts, "value": b.val})
	}
	return out, true
}

// normalizeLongShortGlobal reports the latest global account long/short
// split. The ratio comes from the payload when present, otherwise long/short.
func normalizeLongShortGlobal(raw map[string]any) (any, bool) {
	if !bodyOK(raw) {
		return nil, false
	}
	rows := payloadRows(raw)
	if len(rows) == 0 {
		return nil, false
	}
	latest := rows[len(rows)-1]

	long, longOK := fieldFloat(latest, "global_account_long_percent")
	short, shortOK := fieldFloat(latest, "global_account_short_percent")
	if !longOK || !shortOK || short <= 0 {
		return nil, false
	}
	ratio, ok := fieldFloat(latest, "global_account_long_short_ratio")
	if !ok {
		ratio = long / short
	}
	return map[string]any{
		"long":  round(long, 2),
		"short": round(short, 2),
		"ratio": round(ratio, 3),
	}, true
}

// normalizeLongShortHyperliquid extracts a venue-scoped long/short split.
// The field names differ from the global endpoint and the venue endpoint is
// unverified, so the metric stays unimplemented in the catalog; the
// normalizer exists for when it lands.
func normalizeLongShortHyperliquid(raw map[string]any) (any, bool) {
	if !bodyOK(raw) {
		return nil, false
	}
	rows := payloadRows(raw)
	if len(rows) == 0 {
		return nil, false
	}
	latest := rows[len(rows)-1]

	long, longOK := fieldFloat(latest, "long_percent", "longAccount")
	short, shortOK := fieldFloat(latest, "short_percent", "shortAccount")
	if !longOK || !shortOK || short <= 0 {
		return nil, false
	}
	return map[string]any{
		"long":  round(long, 2),
		"short": round(short, 2),
		"ratio": round(long/short, 3),
	}, true
}

// liquidationBuckets24h is the number of 4h buckets summed for the 24h
// liquidation totals.
const liquidationBuckets24h = 6

// Liquidation USD fields, newest schema first with legacy fallbacks.
var (
	longLiquidationKeys  = []string{"aggregated_long_liquidation_usd", "longLiquidationUsd", "longLiquidation", "longVolUsd"}
	shortLiquidationKeys = []string{"aggregated_short_liquidation_usd", "shortLiquidationUsd", "shortLiquidation", "shortVolUsd"}
)

// normalizeLiquidationsTotal sums 24h of liquidation buckets into a combined
// long/short/total summary in millions of dollars.
func normalizeLiquidationsTotal(raw map[string]any) (any, bool) {
	if !bodyOK(raw) {
		return nil, false
	}
	rows := payloadRows(raw)
	if len(rows) < liquidationBuckets24h {
		return nil, false
	}

	var totalLong, totalShort float64
	for _, row := range rows[:liquidationBuckets24h] {
		if v, ok := fieldFloat(row, longLiquidationKeys...); ok {
			totalLong += v
		}
		if v, ok := fieldFloat(row, shortLiquidationKeys...); ok {
			totalShort += v
		}
	}
	total := totalLong + totalShort
	if total <= 0 {
		return nil, false
	}
	return map[string]any{
		"long":          round(totalLong/1e6, 2),
		"short":         round(totalShort/1e6, 2),
		"total":         round(total/1e6, 2),
		"long_percent":  round(totalLong/total*100, 1),
		"short_percent": round(totalShort/total*100, 1),
	}, true
}

// normalizeLiquidationEvents synthesizes a top-10 event list from aggregated
// liquidation buckets. The upstream plan tier does not expose individual
// orders, so each bucket side becomes one pseudo-event; this is a documented
// approximation, not real order flow.
func normalizeLiquidationEvents(raw map[string]any) (any, bool) {
	if !bodyOK(raw) {
		return nil, false
	}
	rows := payloadRows(raw)
	if len(rows) == 0 {
		return nil, false
	}

	type event struct {
		ts     int64
		side   string
		amount float64
	}
	var events []event
	for _, row := range rows {
		ts, ok := fieldFloat(row, "time")
		if !ok {
			continue
		}
		sec := int64(ts) / 1000
		if v, ok := fieldFloat(row, longLiquidationKeys...); ok && v > 0 {
			events = append(events, event{ts: sec, side: "long", amount: v / 1e6})
		}
		if v, ok := fieldFloat(row, shortLiquidationKeys...); ok && v > 0 {
			events = append(events, event{ts: sec, side: "short", amount: v / 1e6})
		}
	}
	if len(events) == 0 {
		return nil, false
	}
	sort.Slice(events, func(i, j int) bool { return events[i].amount > events[j].amount })
	if len(events) > 10 {
		events = events[:10]
	}

	out := make([]any, 0, len(events))
	for _, e := range events {
		out = append(out, map[string]any{
			"timestamp": e.ts,
			"side":      e.side,
			"amount":    round(e.amount, 2),
			"exchange":  "Aggregated",
		})
	}
	return out, true
}

// normalizeCoinbasePremium reports the latest Coinbase premium rate in
// percent plus the 1h delta when a previous bar is available. This endpoint
// returns newest-first, so the latest bar is the head of the list.
func normalizeCoinbasePremium(raw map[string]any) (any, bool) {
	if !bodyOK(raw) {
		return nil, false
	}
	rows := payloadRows(raw)
	if len(rows) == 0 {
		return nil, false
	}

	rate, ok := fieldFloat(rows[0], "premium_rate")
	if !ok {
		return nil, false
	}
	premium := rate * 100

	var change1h any
	if len(rows) >= 2 {
		if prevRate, ok := fieldFloat(rows[1], "premium_rate"); ok {
			change1h = round(premium-prevRate*100, 4)
		}
	}
	return map[string]any{
		"premium":   round(premium, 4),
		"change_1h": change1h,
	}, true
}

// normalizePriceLastClose reads the last close from Binance klines. Kline
// rows are positional arrays; index 4 is the close.
func normalizePriceLastClose(raw map[string]any) (any, bool) {
	if !bodyOK(raw) {
		return nil, false
	}
	klines, ok := raw["data"].([]any)
	if !ok || len(klines) == 0 {
		return nil, false
	}
	last, ok := klines[len(klines)-1].([]any)
	if !ok || len(last) < 5 {
		return nil, false
	}
	closeVal, ok := toFloat(last[4])
	if !ok || closeVal <= 0 {
		return nil, false
	}
	return round(closeVal, 2), true
}

// normalizeBinanceFundingLast reports the most recent Binance funding entry
// as percent plus its funding time in epoch seconds.
func normalizeBinanceFundingLast(raw map[string]any) (any, bool) {
	if !bodyOK(raw) {
		return nil, false
	}
	rows := payloadRows(raw)
	var (
		bestTs   int64 = -1
		bestRate float64
	)
	for _, row := range rows {
		ts, tsOK := fieldFloat(row, "fundingTime", "time")
		rate, rateOK := fieldFloat(row, "fundingRate", "close")
		if !tsOK || !rateOK {
			continue
		}
		if int64(ts) > bestTs {
			bestTs = int64(ts)
			bestRate = rate
		}
	}
	if bestTs < 0 {
		return nil, false
	}
	return map[string]any{
		"value":        round(fundingPercent(bestRate), 4),
		"funding_time": epochSeconds(bestTs),
	}, true
}

// normalizeBinanceOpenInterest reads the single-object open interest
// snapshot, reported in base-asset units.
func normalizeBinanceOpenInterest(raw map[string]any) (any, bool) {
	if !bodyOK(raw) {
		return nil, false
	}
	obj := payloadObject(raw)
	if obj == nil {
		return nil, false
	}
	oi, ok := fieldFloat(obj, "openInterest")
	if !ok || oi <= 0 {
		return nil, false
	}
	return round(oi, 2), true
}

// normalizeBinanceOIChange computes the percent change between the two most
// recent Binance OI history rows, preferring the USD-valued field.
func normalizeBinanceOIChange(raw map[string]any) (any, bool) {
	pts := extractSeries(raw, seriesOpts{
		tsKeys:       []string{"timestamp"},
		valKeys:      []string{"sumOpenInterestValue", "sumOpenInterest"},
		positiveOnly: true,
	})
	if len(pts) < 2 {
		return nil, false
	}
	change, ok := pctChange(pts[len(pts)-2].val, pts[len(pts)-1].val)
	if !ok {
		return nil, false
	}
	return change, true
}
