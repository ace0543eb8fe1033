// Package metrics holds the panel's metric catalog, the registry built from
// it, the normalizer functions that turn raw provider payloads into
// contract-stable values, and the orchestrator that ties them together.
//
// Metric IDs are contract-stable: once defined they are never renumbered or
// renamed, and downstream consumers lock onto them. Display names, by
// contrast, may change freely.
package metrics

import "regexp"

// Status is the per-metric evaluation outcome.
type Status string

const (
	// StatusOK means the metric was fetched and normalized successfully.
	StatusOK Status = "ok"
	// StatusMissing covers temporary failures and unimplemented fetches.
	StatusMissing Status = "missing"
	// StatusLocked marks metrics gated behind a higher provider plan.
	StatusLocked Status = "locked"
	// StatusExternalRequired marks metrics that need a data source the
	// configured providers do not carry.
	StatusExternalRequired Status = "external_required"
)

// DataSource identifies where a metric's data comes from.
type DataSource string

const (
	SourceCoinGlass DataSource = "coinglass"
	SourceExternal  DataSource = "external"
	SourceComputed  DataSource = "computed"
	SourceCFTC      DataSource = "cftc"
)

// PlanTier is the minimum provider plan a metric needs.
type PlanTier string

const (
	PlanStartup  PlanTier = "startup"
	PlanStandard PlanTier = "standard"
	PlanPremium  PlanTier = "premium"
)

// APIConfidence records whether an endpoint has been verified against the
// live API.
type APIConfidence string

const (
	ConfidenceConfirmed  APIConfidence = "confirmed"
	ConfidenceUnverified APIConfidence = "unverified"
)

// Registry timeframe tags. These group metrics for display; they are distinct
// from Definition.Interval, which names the bar interval of the underlying
// series.
const (
	TimeframeDaily   = "daily"
	TimeframeWeekly  = "weekly"
	TimeframeMonthly = "monthly"
)

// Canonical interval values for Definition.Interval.
var canonicalIntervals = map[string]struct{}{
	"snapshot": {}, "1h": {}, "4h": {}, "8h": {}, "24h": {}, "7d": {}, "30d": {},
}

// Canonical categories. Soft-validated: a non-canonical category logs a
// warning at registry build but does not fail it.
var canonicalCategories = map[string]struct{}{
	"open_interest": {}, "funding": {}, "long_short": {}, "liquidations": {}, "premium": {},
}

// ID format: {timeframe}_{NN}_{slug}. No double underscores, no trailing
// underscore, no timeframe suffix in the slug.
var idPattern = regexp.MustCompile(`^(daily|weekly|monthly)_\d{2}_[a-z0-9]+(_[a-z0-9]+)*$`)

// Normalizer transforms a raw provider payload into a contract value. It
// never panics and never returns an error: ok=false signals that the payload
// could not be normalized, whatever the reason.
type Normalizer func(raw map[string]any) (any, bool)

// SubRequest is one leg of a multi-endpoint fetch plan. The orchestrator
// fetches every leg and hands the normalizer a map keyed by Name.
type SubRequest struct {
	Name     string
	Endpoint string
	Params   map[string]any
}

// Definition describes one panel metric.
type Definition struct {
	// ID is immutable and contract-stable.
	ID string
	// Name is display-only and may change.
	Name string
	// Interval is the canonical bar interval of the metric's series.
	Interval string
	Category string

	// Endpoint + Params drive a single fetch; FetchPlan drives a
	// multi-endpoint fetch. An implemented metric carries exactly one of
	// the two.
	Endpoint      string
	Params        map[string]any
	FetchPlan     []SubRequest
	APIConfidence APIConfidence

	// DefaultStatus is reported verbatim for unimplemented metrics.
	DefaultStatus Status
	DataSource    DataSource
	MinPlan       PlanTier

	Implemented bool
	Normalize   Normalizer

	Unit        string
	Description string
	Notes       string
}

// Timeframe derives the registry grouping tag from the metric ID prefix.
func (d Definition) Timeframe() string {
	for _, tag := range []string{TimeframeDaily, TimeframeWeekly, TimeframeMonthly} {
		if len(d.ID) > len(tag) && d.ID[:len(tag)+1] == tag+"_" {
			return tag
		}
	}
	return ""
}

// newPanelMetric builds a fully implemented metric: fetched, normalized, OK
// by default, available on the startup plan.
func newPanelMetric(id, name, interval, category, endpoint string, params map[string]any,
	confidence APIConfidence, fn Normalizer, unit, description, notes string) Definition {
	return Definition{
		ID:            id,
		Name:          name,
		Interval:      interval,
		Category:      category,
		Endpoint:      endpoint,
		Params:        params,
		APIConfidence: confidence,
		DefaultStatus: StatusOK,
		DataSource:    SourceCoinGlass,
		MinPlan:       PlanStartup,
		Implemented:   true,
		Normalize:     fn,
		Unit:          unit,
		Description:   description,
		Notes:         notes,
	}
}

// newRegistryMetric builds a display-only metric. Its status is fixed at
// build time: a plan restriction takes precedence over everything else, and
// anything else resolves to external-required.
func newRegistryMetric(id, name, interval, category string, source DataSource, plan PlanTier,
	unit, description, notes string) Definition {
	status := StatusExternalRequired
	if plan != PlanStartup {
		status = StatusLocked
	}
	return Definition{
		ID:            id,
		Name:          name,
		Interval:      interval,
		Category:      category,
		APIConfidence: ConfidenceUnverified,
		DefaultStatus: status,
		DataSource:    source,
		MinPlan:       plan,
		Implemented:   false,
		Unit:          unit,
		Description:   description,
		Notes:         notes,
	}
}
