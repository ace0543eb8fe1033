package metrics

import (
	"math"
	"sort"
	"strings"
	"time"
)

// monthlyWindowBars is the minimum series length for 30d comparisons: the
// current bar plus 30 history bars.
const monthlyWindowBars = 31

// normalizeVolatility30d computes annualized realized volatility from daily
// closes: sample stdev of log returns scaled by sqrt(365), in percent.
func normalizeVolatility30d(raw map[string]any) (any, bool) {
	pts := closeSeries(raw, true)
	if len(pts) < monthlyWindowBars {
		return nil, false
	}
	closes := pts[len(pts)-monthlyWindowBars:]

	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		returns = append(returns, math.Log(closes[i].val/closes[i-1].val))
	}

	var mean float64
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns) - 1)

	return round(math.Sqrt(variance)*math.Sqrt(365)*100, 2), true
}

// normalizeStablecoinMarketCap sums the per-coin market caps at the latest
// timestamp and reports the total in billions plus the 30d change. The
// payload carries parallel lists: time_list and data_list, where each
// data_list entry maps coin symbol to market cap USD.
func normalizeStablecoinMarketCap(raw map[string]any) (any, bool) {
	if !bodyOK(raw) {
		return nil, false
	}
	inner := payloadObject(raw)
	if inner == nil {
		return nil, false
	}
	times, timesOK := inner["time_list"].([]any)
	data, dataOK := inner["data_list"].([]any)
	if !timesOK || !dataOK || len(times) == 0 || len(times) != len(data) {
		return nil, false
	}

	sumAt := func(idx int) (float64, bool) {
		coins, ok := data[idx].(map[string]any)
		if !ok {
			return 0, false
		}
		var total float64
		for _, v := range coins {
			if cap, ok := toFloat(v); ok {
				total += cap
			}
		}
		return total, total > 0
	}

	last := len(times) - 1
	total, ok := sumAt(last)
	if !ok {
		return nil, false
	}

	var change any
	if len(times) >= monthlyWindowBars {
		if prev, ok := sumAt(last - 30); ok {
			change = round((total-prev)/1e9, 2)
		}
	}

	ts, tsOK := toFloat(times[last])
	if !tsOK {
		return nil, false
	}
	tsSec := epochSeconds(int64(ts))
	return map[string]any{
		"value_b":      round(total/1e9, 2),
		"change_30d_b": change,
		"timestamp":    tsSec,
		"date":         time.Unix(tsSec, 0).UTC().Format("2006-01-02"),
	}, true
}

// normalizeOIGrowth30d reports the percent change of aggregated open
// interest over the last 30 daily bars.
func normalizeOIGrowth30d(raw map[string]any) (any, bool) {
	pts := closeSeries(raw, true)
	if len(pts) < monthlyWindowBars {
		return nil, false
	}
	curr := pts[len(pts)-1].val
	prev := pts[len(pts)-monthlyWindowBars].val
	change, ok := pctChange(prev, curr)
	if !ok {
		return nil, false
	}
	return change, true
}

// normalizeOptionsVolumeGrowth30d compares total options volume over the
// last 30 days against the 30 days before. The payload carries parallel
// time_list and data_list totals.
func normalizeOptionsVolumeGrowth30d(raw map[string]any) (any, bool) {
	if !bodyOK(raw) {
		return nil, false
	}
	inner := payloadObject(raw)
	if inner == nil {
		return nil, false
	}
	times, timesOK := inner["time_list"].([]any)
	data, dataOK := inner["data_list"].([]any)
	if !timesOK || !dataOK || len(times) != len(data) {
		return nil, false
	}

	pts := make([]point, 0, len(times))
	for i := range times {
		ts, tsOK := toFloat(times[i])
		val, valOK := toFloat(data[i])
		if !tsOK || !valOK {
			continue
		}
		pts = append(pts, point{ts: int64(ts), val: val})
	}
	if len(pts) < 60 {
		return nil, false
	}
	sort.Slice(pts, func(i, j int) bool { return pts[i].ts < pts[j].ts })

	var curr, prev float64
	for _, p := range pts[len(pts)-30:] {
		curr += p.val
	}
	for _, p := range pts[len(pts)-60 : len(pts)-30] {
		prev += p.val
	}
	change, ok := pctChange(prev, curr)
	if !ok {
		return nil, false
	}
	return change, true
}

// etfHoldingQuantity sums holding_quantity across a fund's asset detail
// entries.
func etfHoldingQuantity(row map[string]any) float64 {
	details, ok := row["asset_details"].([]any)
	if !ok {
		return 0
	}
	var total float64
	for _, d := range details {
		detail, ok := d.(map[string]any)
		if !ok {
			continue
		}
		if qty, ok := fieldFloat(detail, "holding_quantity"); ok {
			total += qty
		}
	}
	return total
}

// normalizeETFHoldings sums BTC held by US spot ETFs.
func normalizeETFHoldings(raw map[string]any) (any, bool) {
	if !bodyOK(raw) {
		return nil, false
	}
	rows := payloadRows(raw)
	var total float64
	var funds int
	for _, row := range rows {
		fundType, _ := row["fund_type"].(string)
		region, _ := row["region"].(string)
		if !strings.EqualFold(fundType, "Spot") || !strings.EqualFold(region, "us") {
			continue
		}
		if qty := etfHoldingQuantity(row); qty > 0 {
			total += qty
			funds++
		}
	}
	if funds == 0 {
		return nil, false
	}
	return map[string]any{
		"value": round(total, 0),
		"funds": funds,
	}, true
}

// normalizeGrayscaleHoldings sums BTC held by US Grayscale products,
// matched by fund name.
func normalizeGrayscaleHoldings(raw map[string]any) (any, bool) {
	if !bodyOK(raw) {
		return nil, false
	}
	rows := payloadRows(raw)
	var total float64
	var funds int
	for _, row := range rows {
		region, _ := row["region"].(string)
		name, _ := row["fund_name"].(string)
		if name == "" {
			name, _ = row["name"].(string)
		}
		if !strings.EqualFold(region, "us") || !strings.Contains(strings.ToLower(name), "grayscale") {
			continue
		}
		if qty := etfHoldingQuantity(row); qty > 0 {
			total += qty
			funds++
		}
	}
	if funds == 0 {
		return nil, false
	}
	return map[string]any{
		"value": round(total, 0),
		"funds": funds,
	}, true
}
