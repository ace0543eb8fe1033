package metrics

import (
	"sort"
	"strings"
)

// Weekly normalizers. The common pattern is a 14-bar daily series split into
// a previous and a current 7-bar window; fewer than 14 usable bars makes the
// whole metric unusable rather than silently narrowing the window.

// weeklyWindowBars is the minimum series length for 7d-over-7d comparisons.
const weeklyWindowBars = 14

// lastWindow returns the trailing n points of an ascending series, or nil
// when the series is too short.
func lastWindow(pts []point, n int) []point {
	if len(pts) < n {
		return nil
	}
	return pts[len(pts)-n:]
}

// valueBefore scans an ascending series backwards for the newest point at or
// before the target timestamp.
func valueBefore(pts []point, target int64) (float64, bool) {
	for i := len(pts) - 1; i >= 0; i-- {
		if pts[i].ts <= target {
			return pts[i].val, true
		}
	}
	return 0, false
}

// normalizeOITrend7d reports the latest aggregated OI in billions plus the
// 7d net change (last close vs the close one week earlier).
func normalizeOITrend7d(raw map[string]any) (any, bool) {
	pts := closeSeries(raw, true)
	last14 := lastWindow(pts, weeklyWindowBars)
	if last14 == nil {
		return nil, false
	}
	prevClose := last14[6].val
	currClose := last14[len(last14)-1].val
	return map[string]any{
		"value":     round(currClose/1e9, 2),
		"change_7d": round((currClose-prevClose)/1e9, 2),
	}, true
}

// normalizeCMEOpenInterest reads CME Bitcoin futures open interest from a
// CFTC commitment-of-traders row set (Socrata, newest first). The weekly
// change needs a second report row.
func normalizeCMEOpenInterest(raw map[string]any) (any, bool) {
	if !bodyOK(raw) {
		return nil, false
	}
	rows := cmeBitcoinRows(payloadRows(raw))
	if len(rows) == 0 {
		return nil, false
	}
	oi, ok := fieldFloat(rows[0], "open_interest_all")
	if !ok || oi <= 0 {
		return nil, false
	}
	var change any
	if len(rows) >= 2 {
		if prev, ok := fieldFloat(rows[1], "open_interest_all"); ok {
			change = round(oi-prev, 0)
		}
	}
	return map[string]any{
		"value":     round(oi, 0),
		"change_7d": change,
	}, true
}

// normalizeCMELongShort derives positioning ratios from the latest COT row:
// non-commercial (speculators), commercial (hedgers) and non-reportable
// long/short ratios.
func normalizeCMELongShort(raw map[string]any) (any, bool) {
	if !bodyOK(raw) {
		return nil, false
	}
	rows := cmeBitcoinRows(payloadRows(raw))
	if len(rows) == 0 {
		return nil, false
	}
	latest := rows[0]

	ratio := func(longKey, shortKey string) (float64, bool) {
		long, longOK := fieldFloat(latest, longKey)
		short, shortOK := fieldFloat(latest, shortKey)
		if !longOK || !shortOK || short <= 0 {
			return 0, false
		}
		return round(long/short, 3), true
	}

	noncomm, ok1 := ratio("noncomm_positions_long_all", "noncomm_positions_short_all")
	comm, ok2 := ratio("comm_positions_long_all", "comm_positions_short_all")
	nonrept, ok3 := ratio("nonrept_positions_long_all", "nonrept_positions_short_all")
	if !ok1 || !ok2 || !ok3 {
		return nil, false
	}
	return map[string]any{
		"noncommercial": noncomm,
		"commercial":    comm,
		"nonreportable": nonrept,
	}, true
}

// normalizeBasisSpread reports the latest close basis and its change vs the
// newest bar at least seven days older.
func normalizeBasisSpread(raw map[string]any) (any, bool) {
	pts := extractSeries(raw, seriesOpts{tsKeys: []string{"time"}, valKeys: []string{"close_basis"}})
	if len(pts) == 0 {
		return nil, false
	}
	latest := pts[len(pts)-1]

	var change any
	if prev, ok := valueBefore(pts, latest.ts-7*dayMs); ok {
		change = round(latest.val-prev, 4)
	}
	return map[string]any{
		"value":     round(latest.val, 4),
		"change_7d": change,
	}, true
}

// normalizeFundingAvg7d averages daily funding closes over the current and
// previous week and reports the level plus the week-over-week delta.
func normalizeFundingAvg7d(raw map[string]any) (any, bool) {
	pts := closeSeries(raw, false)
	last14 := lastWindow(pts, weeklyWindowBars)
	if last14 == nil {
		return nil, false
	}

	avg := func(window []point) float64 {
		var sum float64
		for _, p := range window {
			sum += p.val
		}
		return sum / float64(len(window))
	}
	currAvg := avg(last14[7:])
	prevAvg := avg(last14[:7])
	return map[string]any{
		"value":     round(currAvg, 6),
		"change_7d": round(currAvg-prevAvg, 6),
	}, true
}

// liquidations7d sums long and short liquidation USD over the current and
// previous 7-day windows.
func liquidations7d(raw map[string]any) (longCurr, longPrev, shortCurr, shortPrev float64, ok bool) {
	if !bodyOK(raw) {
		return 0, 0, 0, 0, false
	}
	rows := payloadRows(raw)

	type bar struct {
		ts          int64
		long, short float64
	}
	bars := make([]bar, 0, len(rows))
	for _, row := range rows {
		ts, tsOK := fieldFloat(row, "time")
		long, longOK := fieldFloat(row, longLiquidationKeys...)
		short, shortOK := fieldFloat(row, shortLiquidationKeys...)
		if !tsOK || !longOK || !shortOK {
			continue
		}
		bars = append(bars, bar{ts: int64(ts), long: long, short: short})
	}
	if len(bars) < weeklyWindowBars {
		return 0, 0, 0, 0, false
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].ts < bars[j].ts })
	last14 := bars[len(bars)-weeklyWindowBars:]

	for _, b := range last14[7:] {
		longCurr += b.long
		shortCurr += b.short
	}
	for _, b := range last14[:7] {
		longPrev += b.long
		shortPrev += b.short
	}
	return longCurr, longPrev, shortCurr, shortPrev, true
}

// normalizeLongLiquidations7d reports the 7d long liquidation total and its
// week-over-week change in millions of dollars.
func normalizeLongLiquidations7d(raw map[string]any) (any, bool) {
	longCurr, longPrev, _, _, ok := liquidations7d(raw)
	if !ok {
		return nil, false
	}
	return map[string]any{
		"value":     round(longCurr/1e6, 2),
		"change_7d": round((longCurr-longPrev)/1e6, 2),
	}, true
}

// normalizeShortLiquidations7d is the short-side counterpart of
// normalizeLongLiquidations7d.
func normalizeShortLiquidations7d(raw map[string]any) (any, bool) {
	_, _, shortCurr, shortPrev, ok := liquidations7d(raw)
	if !ok {
		return nil, false
	}
	return map[string]any{
		"value":     round(shortCurr/1e6, 2),
		"change_7d": round((shortCurr-shortPrev)/1e6, 2),
	}, true
}

// normalizeActiveAddresses7d averages daily active addresses over the
// current and previous week. The endpoint ignores limit and returns full
// history, so the series is sliced here. Timestamps on this endpoint are
// already epoch seconds. Values are reported in thousands.
func normalizeActiveAddresses7d(raw map[string]any) (any, bool) {
	pts := extractSeries(raw, seriesOpts{
		tsKeys:  []string{"timestamp"},
		valKeys: []string{"active_address_count"},
	})
	last14 := lastWindow(pts, weeklyWindowBars)
	if last14 == nil {
		return nil, false
	}

	avg := func(window []point) float64 {
		var sum float64
		for _, p := range window {
			sum += p.val
		}
		return sum / float64(len(window))
	}
	currAvg := avg(last14[7:])
	prevAvg := avg(last14[:7])
	return map[string]any{
		"value":     round(currAvg/1000, 2),
		"change_7d": round((currAvg-prevAvg)/1000, 2),
	}, true
}

// normalizeDominanceChange reports the latest BTC dominance percent and its
// change vs one week earlier. The endpoint returns full history keyed by
// "timestamp" in milliseconds.
func normalizeDominanceChange(raw map[string]any) (any, bool) {
	pts := extractSeries(raw, seriesOpts{
		tsKeys:  []string{"timestamp"},
		valKeys: []string{"bitcoin_dominance"},
	})
	if len(pts) == 0 {
		return nil, false
	}
	latest := pts[len(pts)-1]
	if latest.val < 0 || latest.val > 100 {
		return nil, false
	}

	var change any
	if prev, ok := valueBefore(pts, latest.ts-7*dayMs); ok {
		change = round(latest.val-prev, 2)
	}
	return map[string]any{
		"value":     round(latest.val, 2),
		"change_7d": change,
	}, true
}

// normalizeETHBTCRatio combines two spot price histories (fetch plan legs
// "eth" and "btc") into the current ratio and its 7d change.
func normalizeETHBTCRatio(raw map[string]any) (any, bool) {
	latestAndPrev := func(leg any) (latest, prev float64, hasPrev, ok bool) {
		resp, isMap := leg.(map[string]any)
		if !isMap {
			return 0, 0, false, false
		}
		pts := closeSeries(resp, false)
		if len(pts) == 0 {
			return 0, 0, false, false
		}
		last := pts[len(pts)-1]
		p, hasP := valueBefore(pts, last.ts-7*dayMs)
		return last.val, p, hasP, true
	}

	ethLatest, ethPrev, ethHasPrev, ethOK := latestAndPrev(raw["eth"])
	btcLatest, btcPrev, btcHasPrev, btcOK := latestAndPrev(raw["btc"])
	if !ethOK || !btcOK || btcLatest <= 0 {
		return nil, false
	}

	var change any
	if ethHasPrev && btcHasPrev && btcPrev > 0 {
		change = round(ethLatest/btcLatest-ethPrev/btcPrev, 8)
	}
	return map[string]any{
		"value":     round(ethLatest/btcLatest, 8),
		"change_7d": change,
	}, true
}

// takerVolume7d sums taker buy+sell USD volume over the current and previous
// 7-day windows, in billions.
func takerVolume7d(raw map[string]any) (curr, prev float64, ok bool) {
	if !bodyOK(raw) {
		return 0, 0, false
	}
	rows := payloadRows(raw)

	type bar struct {
		ts    int64
		total float64
	}
	bars := make([]bar, 0, len(rows))
	for _, row := range rows {
		ts, tsOK := fieldFloat(row, "time")
		buy, buyOK := fieldFloat(row, "aggregated_buy_volume_usd")
		sell, sellOK := fieldFloat(row, "aggregated_sell_volume_usd")
		if !tsOK || !buyOK || !sellOK {
			continue
		}
		bars = append(bars, bar{ts: int64(ts), total: buy + sell})
	}
	if len(bars) < weeklyWindowBars {
		return 0, 0, false
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].ts < bars[j].ts })
	last14 := bars[len(bars)-weeklyWindowBars:]

	for _, b := range last14[7:] {
		curr += b.total
	}
	for _, b := range last14[:7] {
		prev += b.total
	}
	return curr / 1e9, prev / 1e9, true
}

// normalizeMajorExchangeVolume7d reports 7d taker volume on major venues in
// billions plus the absolute week-over-week change.
func normalizeMajorExchangeVolume7d(raw map[string]any) (any, bool) {
	curr, prev, ok := takerVolume7d(raw)
	if !ok {
		return nil, false
	}
	return map[string]any{
		"value":     round(curr, 2),
		"change_7d": round(curr-prev, 2),
	}, true
}

// normalizePerpVolumeChange7d reports the same 7d volume level, but the
// change field is percent rather than absolute.
func normalizePerpVolumeChange7d(raw map[string]any) (any, bool) {
	curr, prev, ok := takerVolume7d(raw)
	if !ok {
		return nil, false
	}
	var pct float64
	if prev > 0 {
		pct = (curr - prev) / prev * 100
	}
	return map[string]any{
		"value":     round(curr, 2),
		"change_7d": round(pct, 2),
	}, true
}

// normalizeUSDTPremium7d derives the USDT premium from the USDC/USDT peg:
// premium percent is (close - 1) * 100, so a quote above par means USDT
// trades at a discount.
func normalizeUSDTPremium7d(raw map[string]any) (any, bool) {
	pts := closeSeries(raw, false)
	last14 := lastWindow(pts, weeklyWindowBars)
	if last14 == nil {
		return nil, false
	}
	currPremium := (last14[len(last14)-1].val - 1) * 100
	prevPremium := (last14[6].val - 1) * 100
	return map[string]any{
		"value":     round(currPremium, 2),
		"change_7d": round(currPremium-prevPremium, 2),
	}, true
}

// fearGreedLabel buckets the 0-100 index into the standard sentiment bands.
func fearGreedLabel(value float64) string {
	switch {
	case value <= 24:
		return "Extreme Fear"
	case value <= 44:
		return "Fear"
	case value <= 55:
		return "Neutral"
	case value <= 75:
		return "Greed"
	default:
		return "Extreme Greed"
	}
}

// normalizeFearGreed reads the fear & greed index from its parallel-list
// payload and reports the latest value, its sentiment label and the 7d
// change.
func normalizeFearGreed(raw map[string]any) (any, bool) {
	if !bodyOK(raw) {
		return nil, false
	}
	inner := payloadObject(raw)
	if inner == nil {
		return nil, false
	}
	values, valuesOK := inner["data_list"].([]any)
	times, timesOK := inner["time_list"].([]any)
	if !valuesOK || !timesOK || len(values) == 0 || len(values) != len(times) {
		return nil, false
	}

	pts := make([]point, 0, len(values))
	for i := range values {
		ts, tsOK := toFloat(times[i])
		val, valOK := toFloat(values[i])
		if !tsOK || !valOK {
			continue
		}
		pts = append(pts, point{ts: int64(ts), val: val})
	}
	if len(pts) == 0 {
		return nil, false
	}
	sort.Slice(pts, func(i, j int) bool { return pts[i].ts < pts[j].ts })

	latest := pts[len(pts)-1]
	if latest.val < 0 || latest.val > 100 {
		return nil, false
	}
	var change any
	if prev, ok := valueBefore(pts, latest.ts-7*dayMs); ok {
		change = round(latest.val-prev, 1)
	}
	return map[string]any{
		"value":     int(latest.val),
		"label":     fearGreedLabel(latest.val),
		"change_7d": change,
	}, true
}

// cmeBitcoinMarket is the COT market filter for CME Bitcoin futures rows.
const cmeBitcoinMarket = "BITCOIN - CHICAGO MERCANTILE EXCHANGE"

// cmeBitcoinRows keeps only COT rows for the CME Bitcoin futures market.
// The provider filters server-side; this guards against broader result sets.
// Rows without a market name are kept.
func cmeBitcoinRows(rows []map[string]any) []map[string]any {
	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		name, _ := row["market_and_exchange_names"].(string)
		if name == "" || strings.EqualFold(name, cmeBitcoinMarket) {
			out = append(out, row)
		}
	}
	return out
}
