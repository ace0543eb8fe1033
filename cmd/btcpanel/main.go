package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/zeromicro/go-zero/core/logx"

	"btcpanel/pkg/confkit"
	"btcpanel/pkg/metrics"
	"btcpanel/pkg/output"
	providerpkg "btcpanel/pkg/provider"

	// Import for side-effects: registers the provider builders.
	_ "btcpanel/pkg/provider/binancefree"
	_ "btcpanel/pkg/provider/coinglass"
)

// dailyMinimalIDs is the core daily panel: the ten metrics shown in minimal
// mode.
var dailyMinimalIDs = []string{
	"daily_01_total_open_interest",
	"daily_02_oi_change_1h",
	"daily_03_oi_change_4h",
	"daily_04_weighted_funding_rate",
	"daily_05_funding_rate_history",
	"daily_06_long_short_global",
	"daily_07_long_short_hyperliquid",
	"daily_08_liquidations_24h_total",
	"daily_09_top_liquidation_events",
	"daily_10_coinbase_premium_index",
}

func fatalf(code int, format string, args ...interface{}) {
	logx.Errorf(format, args...)
	os.Exit(code)
}

func main() {
	var (
		configPath   = flag.String("config", "etc/panel.yaml", "path to provider configuration")
		providerName = flag.String("provider", "", "provider entry to use (defaults to the config default)")
		timeframe    = flag.String("timeframe", "all", "timeframe to evaluate: all, daily, weekly or monthly")
		format       = flag.String("format", "text", "output format: text, json or msgpack")
		outPath      = flag.String("out", "", "write output to file instead of stdout")
		panel        = flag.String("panel", "full", "panel scope: full or minimal (core daily metrics only)")
		verbose      = flag.Bool("verbose", false, "include status notes in text output")
	)
	flag.Parse()
	logx.MustSetup(logx.LogConf{})
	logx.DisableStat()

	confkit.LoadDotenvOnce()

	cfg, err := providerpkg.LoadConfig(*configPath)
	if err != nil {
		fatalf(1, "load provider config: %v", err)
	}
	providers, err := cfg.BuildProviders()
	if err != nil {
		fatalf(1, "build providers: %v", err)
	}
	name := *providerName
	if name == "" {
		name = cfg.Default
	}
	prov, ok := providers[name]
	if !ok {
		fatalf(1, "provider %q not defined in %s", name, *configPath)
	}

	registry, err := metrics.BuildRegistry()
	if err != nil {
		fatalf(2, "build metric registry: %v", err)
	}
	orch := metrics.NewOrchestrator(registry, prov)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	results, err := evaluate(ctx, orch, registry, *timeframe, *panel)
	if err != nil {
		fatalf(1, "evaluate metrics: %v", err)
	}

	report, err := output.BuildReport(registry, results)
	if err != nil {
		fatalf(1, "build report: %v", err)
	}
	if err := output.Validate(report); err != nil {
		fatalf(1, "report failed contract validation: %v", err)
	}

	encoded, err := encode(report, *format, *verbose)
	if err != nil {
		fatalf(1, "encode report: %v", err)
	}
	if err := emit(encoded, *outPath); err != nil {
		fatalf(1, "write output: %v", err)
	}

	var all []metrics.Result
	for _, tag := range registry.Timeframes() {
		all = append(all, results[tag]...)
	}
	summary := metrics.Summarize(all)
	logx.Infof("panel complete: %d/%d ok, %d missing, %d locked, %d external",
		summary.OK, summary.Total, summary.Missing, summary.Locked, summary.ExternalRequired)
}

// evaluate runs the requested slice of the registry. Minimal mode restricts
// the run to the core daily metrics and never touches the other timeframes.
func evaluate(ctx context.Context, orch *metrics.Orchestrator, registry *metrics.Registry,
	timeframe, panel string) (map[string][]metrics.Result, error) {
	switch panel {
	case "full":
	case "minimal":
		results := make([]metrics.Result, 0, len(dailyMinimalIDs))
		for _, id := range dailyMinimalIDs {
			res, err := orch.EvaluateByID(ctx, id)
			if err != nil {
				return nil, err
			}
			results = append(results, res)
		}
		return map[string][]metrics.Result{metrics.TimeframeDaily: results}, nil
	default:
		return nil, fmt.Errorf("unknown panel scope %q", panel)
	}

	if timeframe == "all" {
		return orch.EvaluateAll(ctx)
	}
	results, err := orch.EvaluateTimeframe(ctx, timeframe)
	if err != nil {
		return nil, err
	}
	return map[string][]metrics.Result{timeframe: results}, nil
}

func encode(report output.Report, format string, verbose bool) ([]byte, error) {
	switch format {
	case "text":
		return []byte(output.RenderText(report, verbose)), nil
	case "json":
		return output.EncodeJSON(report, true)
	case "msgpack":
		return output.EncodeMsgpack(report)
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

func emit(data []byte, outPath string) error {
	if outPath == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(outPath, data, 0o644)
}
