package metrics

import (
	"context"
	"fmt"

	"github.com/zeromicro/go-zero/core/logx"

	"btcpanel/pkg/provider"
)

// Result is one evaluated metric. Value is nil unless Status is ok; Err is
// set only for missing metrics that failed on the way.
type Result struct {
	MetricID string
	Status   Status
	Value    any
	Err      string
}

// Orchestrator walks the registry, fetches raw payloads through a provider
// and runs the normalizers. It holds no per-evaluation state and is safe for
// concurrent use as long as the provider is.
type Orchestrator struct {
	registry *Registry
	provider provider.Provider
}

func NewOrchestrator(registry *Registry, p provider.Provider) *Orchestrator {
	return &Orchestrator{registry: registry, provider: p}
}

// Evaluate runs one metric through the full decision tree. Unimplemented
// metrics report their build-time default status without touching the
// provider; implemented metrics are fetched and normalized, with any failure
// along the way degrading to missing rather than erroring out.
func (o *Orchestrator) Evaluate(ctx context.Context, def Definition) Result {
	if !def.Implemented {
		return Result{MetricID: def.ID, Status: def.DefaultStatus}
	}

	raw, err := o.fetch(ctx, def)
	if err != nil {
		logx.Infof("metric %s: %v", def.ID, err)
		return Result{MetricID: def.ID, Status: StatusMissing, Err: err.Error()}
	}

	value, ok := def.Normalize(raw)
	if !ok {
		return Result{MetricID: def.ID, Status: StatusMissing, Err: "normalization produced no value"}
	}
	return Result{MetricID: def.ID, Status: StatusOK, Value: value}
}

// fetch resolves either the single endpoint or the fetch plan. A plan is
// all-or-nothing: one failed leg fails the metric, and the normalizer
// receives a map of leg name to decoded response body.
func (o *Orchestrator) fetch(ctx context.Context, def Definition) (map[string]any, error) {
	if len(def.FetchPlan) == 0 {
		resp := o.provider.Fetch(ctx, def.Endpoint, NormalizeParams(def.Params))
		if !resp.Success {
			return nil, fmt.Errorf("fetch %s failed: %s", def.Endpoint, resp.Err)
		}
		return resp.Data, nil
	}

	combined := make(map[string]any, len(def.FetchPlan))
	for _, leg := range def.FetchPlan {
		resp := o.provider.Fetch(ctx, leg.Endpoint, NormalizeParams(leg.Params))
		if !resp.Success {
			return nil, fmt.Errorf("fetch plan leg %q (%s) failed: %s", leg.Name, leg.Endpoint, resp.Err)
		}
		combined[leg.Name] = resp.Data
	}
	return combined, nil
}

// EvaluateTimeframe evaluates every metric of one timeframe tag, in display
// order.
func (o *Orchestrator) EvaluateTimeframe(ctx context.Context, tag string) ([]Result, error) {
	defs, err := o.registry.Timeframe(tag)
	if err != nil {
		return nil, err
	}
	results := make([]Result, 0, len(defs))
	for _, def := range defs {
		results = append(results, o.Evaluate(ctx, def))
	}
	return results, nil
}

// EvaluateAll evaluates the whole registry, keyed by timeframe tag.
func (o *Orchestrator) EvaluateAll(ctx context.Context) (map[string][]Result, error) {
	out := make(map[string][]Result, len(o.registry.Timeframes()))
	for _, tag := range o.registry.Timeframes() {
		results, err := o.EvaluateTimeframe(ctx, tag)
		if err != nil {
			return nil, err
		}
		out[tag] = results
	}
	return out, nil
}

// EvaluateImplemented evaluates only the implemented metrics across all
// timeframes.
func (o *Orchestrator) EvaluateImplemented(ctx context.Context) []Result {
	defs := o.registry.Implemented()
	results := make([]Result, 0, len(defs))
	for _, def := range defs {
		results = append(results, o.Evaluate(ctx, def))
	}
	return results
}

// EvaluateByID evaluates a single metric.
func (o *Orchestrator) EvaluateByID(ctx context.Context, id string) (Result, error) {
	def, err := o.registry.ByID(id)
	if err != nil {
		return Result{}, err
	}
	return o.Evaluate(ctx, def), nil
}

// Summary counts results by status.
type Summary struct {
	Total            int
	OK               int
	Missing          int
	Locked           int
	ExternalRequired int
}

// Summarize tallies a result set by status.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		switch r.Status {
		case StatusOK:
			s.OK++
		case StatusMissing:
			s.Missing++
		case StatusLocked:
			s.Locked++
		case StatusExternalRequired:
			s.ExternalRequired++
		}
	}
	return s
}

// FilterByStatus keeps only results with the given status.
func FilterByStatus(results []Result, status Status) []Result {
	var out []Result
	for _, r := range results {
		if r.Status == status {
			out = append(out, r)
		}
	}
	return out
}
