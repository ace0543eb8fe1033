package metrics

import "math"

// Funding regime classification over a trailing window of 8h funding bars.
// The regime label combines a bias axis (who pays whom on average) with a
// volatility axis, e.g. "LONG_PAYS_LOW_VOL". Thresholds are in percent per
// 8h bar.
const (
	minRegimeBars = 10

	regimeNeutralBias = 0.01
	regimeLowVol      = 0.20
	regimeMidVol      = 0.50

	// 3 funding bars per day, 365 days: simple annualization factor for the
	// mean 8h rate.
	fundingBarsPerYear = 1095
)

func clamp100(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func regimeLabel(mean, stdev float64) string {
	bias := "NEUTRAL"
	switch {
	case math.Abs(mean) < regimeNeutralBias:
	case mean > 0:
		bias = "LONG_PAYS"
	default:
		bias = "SHORT_PAYS"
	}
	vol := "HIGH_VOL"
	switch {
	case stdev < regimeLowVol:
		vol = "LOW_VOL"
	case stdev < regimeMidVol:
		vol = "MID_VOL"
	}
	return bias + "_" + vol
}

// normalizeFundingRegime characterizes the funding environment from a
// history of 8h funding bars: bias and volatility regime, annualized carry,
// sign-flip count, trend slope and three 0-100 condition scores.
func normalizeFundingRegime(raw map[string]any) (any, bool) {
	pts := closeSeries(raw, false)
	if len(pts) < minRegimeBars {
		return nil, false
	}

	rates := make([]float64, len(pts))
	for i, p := range pts {
		rates[i] = fundingPercent(p.val)
	}
	n := float64(len(rates))

	var mean float64
	for _, r := range rates {
		mean += r
	}
	mean /= n

	var variance float64
	for _, r := range rates {
		variance += (r - mean) * (r - mean)
	}
	stdev := math.Sqrt(variance / n)

	var flips, positive int
	for i, r := range rates {
		if r > 0 {
			positive++
		}
		if i > 0 && (rates[i-1] > 0) != (r > 0) {
			flips++
		}
	}

	// Least-squares slope against the bar index, percent per bar.
	var slope float64
	{
		xMean := (n - 1) / 2
		var num, den float64
		for i, r := range rates {
			dx := float64(i) - xMean
			num += dx * (r - mean)
			den += dx * dx
		}
		if den > 0 {
			slope = num / den
		}
	}

	last := rates[len(rates)-1]
	var zLast float64
	if stdev > 0 {
		zLast = (last - mean) / stdev
	}

	// Compounded return of paying/receiving funding over the window.
	cum := 1.0
	for _, r := range rates {
		cum *= 1 + r/100
	}

	crowding := clamp100(math.Abs(mean) / 0.05 * 100)
	squeeze := clamp100(math.Abs(zLast)*25 + stdev/0.5*50)
	chop := clamp100(float64(flips) / (n - 1) * 100)

	return map[string]any{
		"regime":            regimeLabel(mean, stdev),
		"last_pct":          round(last, 4),
		"mean_pct":          round(mean, 4),
		"stdev_pct":         round(stdev, 4),
		"pos_ratio":         round(float64(positive)/n, 2),
		"ann_carry_pct":     round(mean*fundingBarsPerYear, 2),
		"flips":             flips,
		"z_last":            round(zLast, 2),
		"slope_pct_per_bar": round(slope, 6),
		"cum_30_pct":        round((cum-1)*100, 2),
		"crowding_score":    round(crowding, 1),
		"squeeze_score":     round(squeeze, 1),
		"chop_score":        round(chop, 1),
	}, true
}
