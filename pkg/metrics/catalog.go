package metrics

// The static metric catalog. IDs are frozen; new metrics get the next free
// number in their timeframe, removed metrics leave their number retired.
// Display order within a timeframe is the slice order and may differ from
// numeric order.

// Endpoints shared by several metrics.
const (
	epOIAggregatedHistory = "/api/futures/open-interest/aggregated-history"
	epFundingOIWeight     = "/api/futures/funding-rate/oi-weight-history"
	epLiquidationHistory  = "/api/futures/liquidation/aggregated-history"
	epSpotPriceHistory    = "/api/spot/price/history"
	epETFBitcoinList      = "/api/etf/bitcoin/list"
	epCFTCCMEBitcoin      = "cftc://legacy/futonly/6dca-aqww/cme-bitcoin"
)

// allExchanges covers every venue the liquidation aggregate should include.
const allExchanges = "ApeX Omni,Aster,Binance,BingX,Bitfinex,Bitget,Bitmex,Bitunix,Bybit,CME,CoinEx,Coinbase,Crypto.com,Deribit,Drift,EdgeX,Extended,Gate,Gemini,HTX,Hyperliquid,Kraken,KuCoin,LBank,Lighter,MEXC,OKX,Paradex,WhiteBIT,dYdX"

// majorExchanges is the venue filter for weekly liquidation and volume
// metrics.
const majorExchanges = "Binance,OKX,Bybit,Bitget,Gate"

func dailyMetrics() []Definition {
	return []Definition{
		newPanelMetric("daily_01_total_open_interest", "Total Open Interest", "snapshot", "open_interest",
			epOIAggregatedHistory, map[string]any{"interval": "8h", "limit": 1, "symbol": "BTC"},
			ConfidenceConfirmed, normalizeTotalOpenInterest, "billion_usd",
			"Aggregated BTC futures open interest across all venues.", ""),
		newPanelMetric("daily_02_oi_change_1h", "OI Change 1h", "1h", "open_interest",
			epOIAggregatedHistory, map[string]any{"interval": "1h", "limit": 5, "symbol": "BTC"},
			ConfidenceConfirmed, normalizeOIChange, "percent",
			"Percent change of aggregated open interest over the last hour.", ""),
		newPanelMetric("daily_03_oi_change_4h", "OI Change 4h", "4h", "open_interest",
			epOIAggregatedHistory, map[string]any{"interval": "4h", "limit": 2, "symbol": "BTC"},
			ConfidenceConfirmed, normalizeOIChange, "percent",
			"Percent change of aggregated open interest over the last four hours.", ""),
		newPanelMetric("daily_04_weighted_funding_rate", "OI-Weighted Funding Rate", "snapshot", "funding",
			epFundingOIWeight, map[string]any{"interval": "8h", "limit": 1, "symbol": "BTC"},
			ConfidenceConfirmed, normalizeWeightedFunding, "percent",
			"Current open-interest-weighted funding rate.", ""),
		newPanelMetric("daily_05_funding_rate_history", "Funding Rate History", "8h", "funding",
			epFundingOIWeight, map[string]any{"interval": "8h", "limit": 30, "symbol": "BTC"},
			ConfidenceConfirmed, normalizeFundingHistory, "time_series",
			"Recent OI-weighted funding bars as a time series.", ""),
		newPanelMetric("daily_06_long_short_global", "Global Long/Short Ratio", "1h", "long_short",
			"/api/futures/global-long-short-account-ratio/history",
			map[string]any{"interval": "1h", "limit": 1, "symbol": "BTCUSDT", "exchange": "Binance"},
			ConfidenceConfirmed, normalizeLongShortGlobal, "ratio",
			"Global account long/short ratio on Binance.", ""),
		{
			ID:            "daily_07_long_short_hyperliquid",
			Name:          "Hyperliquid Long/Short Ratio",
			Interval:      "snapshot",
			Category:      "long_short",
			APIConfidence: ConfidenceUnverified,
			DefaultStatus: StatusExternalRequired,
			DataSource:    SourceCoinGlass,
			MinPlan:       PlanStartup,
			Normalize:     normalizeLongShortHyperliquid,
			Unit:          "ratio",
			Description:   "Hyperliquid account positioning ratio.",
			Notes:         "No verified endpoint for Hyperliquid positioning yet",
		},
		newPanelMetric("daily_08_liquidations_24h_total", "24h Liquidations", "24h", "liquidations",
			epLiquidationHistory,
			map[string]any{"interval": "4h", "limit": 6, "symbol": "BTC", "exchange_list": allExchanges},
			ConfidenceConfirmed, normalizeLiquidationsTotal, "million_usd",
			"Long and short liquidation totals over the last 24 hours.", ""),
		{
			ID:            "daily_09_top_liquidation_events",
			Name:          "Top Liquidation Events",
			Interval:      "24h",
			Category:      "liquidations",
			Endpoint:      "/api/futures/liquidation/order",
			Params:        map[string]any{"symbol": "BTC", "exchange_list": "Binance,OKX,Bybit", "limit": 10},
			APIConfidence: ConfidenceUnverified,
			DefaultStatus: StatusLocked,
			DataSource:    SourceCoinGlass,
			MinPlan:       PlanStandard,
			Normalize:     normalizeLiquidationEvents,
			Unit:          "events",
			Description:   "Largest individual liquidation orders of the last 24 hours.",
		},
		newPanelMetric("daily_10_coinbase_premium_index", "Coinbase Premium Index", "snapshot", "premium",
			"/api/coinbase-premium-index", map[string]any{"interval": "1h", "limit": 2, "symbol": "BTC"},
			ConfidenceConfirmed, normalizeCoinbasePremium, "percent",
			"Coinbase vs Binance spot premium, a US demand proxy.", ""),
		newPanelMetric("daily_13_binance_funding_rate_last", "Binance Funding Rate", "8h", "funding",
			"/fapi/v1/fundingRate", map[string]any{"symbol": "BTCUSDT", "limit": 1},
			ConfidenceUnverified, normalizeBinanceFundingLast, "percent",
			"Last settled funding rate on Binance perpetuals.", ""),
		newPanelMetric("daily_14_binance_open_interest", "Binance Open Interest", "snapshot", "open_interest",
			"/fapi/v1/openInterest", map[string]any{"symbol": "BTCUSDT"},
			ConfidenceUnverified, normalizeBinanceOpenInterest, "btc",
			"Current Binance perpetual open interest in BTC.", ""),
		newPanelMetric("daily_15_binance_oi_change_1h", "Binance OI Change 1h", "1h", "open_interest",
			"/futures/data/openInterestHist", map[string]any{"symbol": "BTCUSDT", "period": "1h", "limit": 2},
			ConfidenceConfirmed, normalizeBinanceOIChange, "percent",
			"Percent change of Binance open interest over the last hour.", ""),
		newPanelMetric("daily_16_binance_oi_change_4h", "Binance OI Change 4h", "4h", "open_interest",
			"/futures/data/openInterestHist", map[string]any{"symbol": "BTCUSDT", "period": "4h", "limit": 2},
			ConfidenceConfirmed, normalizeBinanceOIChange, "percent",
			"Percent change of Binance open interest over the last four hours.", ""),
		newPanelMetric("daily_11_funding_regime_8h", "Funding Regime", "8h", "funding",
			epFundingOIWeight, map[string]any{"interval": "8h", "limit": 30, "symbol": "BTC"},
			ConfidenceConfirmed, normalizeFundingRegime, "funding_regime",
			"Funding bias and volatility regime with carry, squeeze and crowding diagnostics.", ""),
		newPanelMetric("daily_12_price_last_close", "BTC Price", "1h", "price",
			"/api/v3/klines", map[string]any{"symbol": "BTCUSDT", "interval": "1h", "limit": 2},
			ConfidenceConfirmed, normalizePriceLastClose, "usd",
			"Last hourly close of BTCUSDT spot.", ""),
	}
}

func weeklyMetrics() []Definition {
	return []Definition{
		newPanelMetric("weekly_01_oi_trend", "Open Interest Trend", "7d", "open_interest",
			epOIAggregatedHistory, map[string]any{"symbol": "BTC", "interval": "1d", "limit": 14},
			ConfidenceConfirmed, normalizeOITrend7d, "billion_usd",
			"Aggregated open interest level and its 7d change.", ""),
		{
			ID:            "weekly_02_cme_oi",
			Name:          "CME Open Interest",
			Interval:      "7d",
			Category:      "open_interest",
			Endpoint:      epCFTCCMEBitcoin,
			Params:        map[string]any{"limit": 2},
			APIConfidence: ConfidenceConfirmed,
			DefaultStatus: StatusOK,
			DataSource:    SourceCFTC,
			MinPlan:       PlanStartup,
			Implemented:   true,
			Normalize:     normalizeCMEOpenInterest,
			Unit:          "contracts",
			Description:   "CME Bitcoin futures open interest from the weekly COT report.",
		},
		{
			ID:            "weekly_03_cme_long_short",
			Name:          "CME Positioning",
			Interval:      "7d",
			Category:      "long_short",
			Endpoint:      epCFTCCMEBitcoin,
			Params:        map[string]any{"limit": 1},
			APIConfidence: ConfidenceConfirmed,
			DefaultStatus: StatusOK,
			DataSource:    SourceCFTC,
			MinPlan:       PlanStartup,
			Implemented:   true,
			Normalize:     normalizeCMELongShort,
			Unit:          "ratio",
			Description:   "Long/short ratios by trader class from the weekly COT report.",
		},
		newPanelMetric("weekly_04_basis_spread", "Basis Spread", "7d", "premium",
			"/api/futures/basis/history",
			map[string]any{"exchange": "Binance", "symbol": "BTCUSDT", "interval": "1d", "limit": 14},
			ConfidenceConfirmed, normalizeBasisSpread, "percent",
			"Futures basis on Binance and its 7d change.", ""),
		newPanelMetric("weekly_05_funding_rate_avg", "Funding Rate 7d Average", "7d", "funding",
			"/api/futures/funding-rate/history",
			map[string]any{"exchange": "Binance", "symbol": "BTCUSDT", "interval": "1d", "limit": 14},
			ConfidenceConfirmed, normalizeFundingAvg7d, "percent",
			"Average funding over the last week vs the week before.", ""),
		newPanelMetric("weekly_06_long_liquidations", "Long Liquidations 7d", "7d", "liquidations",
			epLiquidationHistory,
			map[string]any{"symbol": "BTC", "interval": "1d", "limit": 14, "exchange_list": majorExchanges},
			ConfidenceConfirmed, normalizeLongLiquidations7d, "million_usd",
			"Long liquidation volume over the last week.", ""),
		newPanelMetric("weekly_07_short_liquidations", "Short Liquidations 7d", "7d", "liquidations",
			epLiquidationHistory,
			map[string]any{"symbol": "BTC", "interval": "1d", "limit": 14, "exchange_list": majorExchanges},
			ConfidenceConfirmed, normalizeShortLiquidations7d, "million_usd",
			"Short liquidation volume over the last week.", ""),
		newRegistryMetric("weekly_08_net_flow", "Exchange Net Flow", "7d", "open_interest",
			SourceExternal, PlanStandard, "btc",
			"Net BTC flow into or out of exchange wallets.",
			"Requires exchange flow data (Glassnode or CryptoQuant)"),
		newRegistryMetric("weekly_09_large_holder_acc", "Large Holder Accumulation", "7d", "open_interest",
			SourceExternal, PlanStandard, "percent",
			"Supply change in wallets above 1k BTC.",
			"Requires on-chain holder cohort data"),
		newPanelMetric("weekly_10_active_addresses", "Active Addresses", "7d", "open_interest",
			"/api/index/bitcoin-active-addresses", map[string]any{},
			ConfidenceConfirmed, normalizeActiveAddresses7d, "thousand_addresses",
			"Weekly average of daily active BTC addresses.", ""),
		newPanelMetric("weekly_11_btc_dominance_change", "BTC Dominance", "7d", "open_interest",
			"/api/index/bitcoin-dominance", map[string]any{},
			ConfidenceConfirmed, normalizeDominanceChange, "percent",
			"BTC market cap dominance and its 7d change.", ""),
		{
			ID:       "weekly_12_eth_btc_ratio_change",
			Name:     "ETH/BTC Ratio",
			Interval: "7d",
			Category: "open_interest",
			FetchPlan: []SubRequest{
				{Name: "eth", Endpoint: epSpotPriceHistory,
					Params: map[string]any{"exchange": "Binance", "symbol": "ETHUSDT", "interval": "1d", "limit": 8}},
				{Name: "btc", Endpoint: epSpotPriceHistory,
					Params: map[string]any{"exchange": "Binance", "symbol": "BTCUSDT", "interval": "1d", "limit": 8}},
			},
			APIConfidence: ConfidenceConfirmed,
			DefaultStatus: StatusOK,
			DataSource:    SourceComputed,
			MinPlan:       PlanStartup,
			Implemented:   true,
			Normalize:     normalizeETHBTCRatio,
			Unit:          "ratio",
			Description:   "ETH/BTC price ratio and its 7d change, a rotation gauge.",
		},
		newPanelMetric("weekly_13_major_exchange_volume", "Major Exchange Volume", "7d", "open_interest",
			"/api/futures/aggregated-taker-buy-sell-volume/history",
			map[string]any{"symbol": "BTC", "interval": "1d", "limit": 14, "exchange_list": majorExchanges},
			ConfidenceConfirmed, normalizeMajorExchangeVolume7d, "billion_usd",
			"7d taker volume across major venues.", ""),
		newPanelMetric("weekly_14_perp_volume_change", "Perp Volume Change", "7d", "open_interest",
			"/api/futures/aggregated-taker-buy-sell-volume/history",
			map[string]any{"symbol": "BTC", "interval": "1d", "limit": 14, "exchange_list": majorExchanges},
			ConfidenceConfirmed, normalizePerpVolumeChange7d, "percent",
			"Week-over-week percent change of perpetual taker volume.", ""),
		newPanelMetric("weekly_15_usdt_premium", "USDT Premium", "7d", "premium",
			epSpotPriceHistory,
			map[string]any{"exchange": "Binance", "symbol": "USDCUSDT", "interval": "1d", "limit": 14},
			ConfidenceConfirmed, normalizeUSDTPremium7d, "percent",
			"USDT premium derived from the USDC/USDT peg.", ""),
		newPanelMetric("weekly_16_fear_greed_index", "Fear & Greed Index", "7d", "open_interest",
			"/api/index/fear-greed-history", map[string]any{},
			ConfidenceConfirmed, normalizeFearGreed, "index",
			"Crypto fear & greed index with sentiment label.", ""),
		newRegistryMetric("weekly_17_options_put_call_ratio", "Options Put/Call Ratio", "7d", "open_interest",
			SourceExternal, PlanStartup, "ratio",
			"Put/call open interest ratio on major options venues.",
			"Requires options chain data (Deribit)"),
		newRegistryMetric("weekly_18_market_cap_rank_changes", "Market Cap Rank Changes", "7d", "open_interest",
			SourceExternal, PlanStartup, "count",
			"Top-100 rank shuffles as an altcoin rotation signal.",
			"Requires a market cap ranking feed (CoinGecko)"),
	}
}

func monthlyMetrics() []Definition {
	return []Definition{
		newPanelMetric("monthly_01_volatility", "Realized Volatility 30d", "30d", "open_interest",
			epSpotPriceHistory,
			map[string]any{"exchange": "Binance", "symbol": "BTCUSDT", "interval": "1d", "limit": 35},
			ConfidenceConfirmed, normalizeVolatility30d, "percent",
			"Annualized 30d realized volatility from daily closes.", ""),
		newRegistryMetric("monthly_02_mvrv_ratio", "MVRV Ratio", "30d", "open_interest",
			SourceExternal, PlanStandard, "ratio",
			"Market value to realized value ratio.",
			"Requires on-chain valuation data"),
		newRegistryMetric("monthly_03_nvt_ratio", "NVT Ratio", "30d", "open_interest",
			SourceExternal, PlanStandard, "ratio",
			"Network value to transaction volume ratio.",
			"Requires on-chain transaction volume data"),
		newRegistryMetric("monthly_04_supply_on_exchanges", "Supply on Exchanges", "30d", "open_interest",
			SourceExternal, PlanStandard, "percent",
			"Share of circulating BTC held on exchanges.",
			"Requires exchange balance data"),
		newRegistryMetric("monthly_05_miner_reserve", "Miner Reserve", "30d", "open_interest",
			SourceExternal, PlanStandard, "btc",
			"BTC held in miner wallets.",
			"Requires miner wallet tracking"),
		newRegistryMetric("monthly_06_long_term_holder_supply", "Long-Term Holder Supply", "30d", "open_interest",
			SourceExternal, PlanStandard, "percent",
			"Share of supply unmoved for over 155 days.",
			"Requires UTXO age cohort data"),
		newRegistryMetric("monthly_07_hash_rate_growth", "Hash Rate Growth", "30d", "open_interest",
			SourceExternal, PlanStartup, "percent",
			"30d change of network hash rate.",
			"Requires a mining statistics feed"),
		newRegistryMetric("monthly_08_realized_cap_change", "Realized Cap Change", "30d", "open_interest",
			SourceExternal, PlanStandard, "percent",
			"30d change of realized capitalization.",
			"Requires on-chain valuation data"),
		newPanelMetric("monthly_09_stablecoin_market_cap", "Stablecoin Market Cap", "30d", "open_interest",
			"/api/index/stableCoin-marketCap-history", map[string]any{},
			ConfidenceConfirmed, normalizeStablecoinMarketCap, "billion_usd",
			"Total stablecoin market cap, dry powder for crypto.", ""),
		newPanelMetric("monthly_10_futures_oi_growth", "Futures OI Growth", "30d", "open_interest",
			epOIAggregatedHistory, map[string]any{"interval": "1d", "limit": 35, "symbol": "BTC"},
			ConfidenceConfirmed, normalizeOIGrowth30d, "percent",
			"30d percent change of aggregated futures open interest.", ""),
		newPanelMetric("monthly_11_options_vol_growth", "Options Volume Growth", "30d", "open_interest",
			"/api/option/exchange-vol-history",
			map[string]any{"symbol": "BTC", "exchange": "All", "range": "60d", "interval": "1d", "limit": 60, "unit": "usd"},
			ConfidenceUnverified, normalizeOptionsVolumeGrowth30d, "percent",
			"Options volume of the last 30 days vs the 30 days before.", ""),
		newPanelMetric("monthly_12_etf_holdings", "Spot ETF Holdings", "30d", "open_interest",
			epETFBitcoinList, map[string]any{},
			ConfidenceConfirmed, normalizeETFHoldings, "btc",
			"Total BTC held by US spot ETFs.", ""),
		newPanelMetric("monthly_13_grayscale_institutional", "Grayscale Holdings", "30d", "open_interest",
			epETFBitcoinList, map[string]any{},
			ConfidenceConfirmed, normalizeGrayscaleHoldings, "btc",
			"BTC held by US Grayscale products.", ""),
		newRegistryMetric("monthly_14_social_volume", "Social Volume", "30d", "open_interest",
			SourceExternal, PlanPremium, "index",
			"BTC mention volume across social platforms.",
			"Requires social analytics data (Santiment)"),
		newRegistryMetric("monthly_15_developer_activity", "Developer Activity", "30d", "open_interest",
			SourceExternal, PlanPremium, "commits",
			"Commit activity across core BTC repositories.",
			"Requires repository activity data"),
	}
}
