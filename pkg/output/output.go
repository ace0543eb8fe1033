// Package output turns evaluated metric results into the stable report
// contract: JSON and msgpack documents plus a human-readable text panel.
package output

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/vmihailenco/msgpack/v5"

	"btcpanel/pkg/metrics"
)

// Item is one metric in the report contract. The field set and the id values
// are stable; consumers key on them.
type Item struct {
	ID        string `json:"id" msgpack:"id"`
	Name      string `json:"name" msgpack:"name"`
	Timeframe string `json:"timeframe" msgpack:"timeframe"`
	Category  string `json:"category" msgpack:"category"`
	Status    string `json:"status" msgpack:"status"`
	Unit      string `json:"unit" msgpack:"unit"`
	Value     any    `json:"value" msgpack:"value"`
	Source    string `json:"source,omitempty" msgpack:"source,omitempty"`
	Notes     string `json:"notes,omitempty" msgpack:"notes,omitempty"`
}

// Report is the full panel document, grouped by timeframe in display order.
type Report struct {
	Daily   []Item `json:"daily" msgpack:"daily"`
	Weekly  []Item `json:"weekly" msgpack:"weekly"`
	Monthly []Item `json:"monthly" msgpack:"monthly"`
}

// BuildItem assembles one report item from a definition and its evaluation
// result. Values are sanitized so the document always encodes cleanly.
func BuildItem(def metrics.Definition, res metrics.Result) Item {
	return Item{
		ID:        def.ID,
		Name:      def.Name,
		Timeframe: def.Timeframe(),
		Category:  def.Category,
		Status:    string(res.Status),
		Unit:      def.Unit,
		Value:     Sanitize(res.Value),
		Source:    string(def.DataSource),
		Notes:     notes(def, res),
	}
}

// notes explains a non-ok status to the reader: the fetch error for missing
// metrics, the plan requirement for locked ones, and the external data
// dependency otherwise.
func notes(def metrics.Definition, res metrics.Result) string {
	switch res.Status {
	case metrics.StatusMissing:
		return res.Err
	case metrics.StatusLocked:
		return fmt.Sprintf("Requires %s plan or higher", def.MinPlan)
	case metrics.StatusExternalRequired:
		if def.Notes != "" {
			return def.Notes
		}
		return "Requires external data source"
	}
	return ""
}

// BuildTimeframe assembles the items of one timeframe tag in registry
// display order. Results are matched by metric ID; a metric without a result
// is skipped rather than emitted half-empty.
func BuildTimeframe(reg *metrics.Registry, tag string, results []metrics.Result) ([]Item, error) {
	defs, err := reg.Timeframe(tag)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]metrics.Result, len(results))
	for _, res := range results {
		byID[res.MetricID] = res
	}
	items := make([]Item, 0, len(defs))
	for _, def := range defs {
		res, ok := byID[def.ID]
		if !ok {
			continue
		}
		items = append(items, BuildItem(def, res))
	}
	return items, nil
}

// BuildReport assembles the full document from per-timeframe results.
func BuildReport(reg *metrics.Registry, results map[string][]metrics.Result) (Report, error) {
	var report Report
	for tag, dest := range map[string]*[]Item{
		metrics.TimeframeDaily:   &report.Daily,
		metrics.TimeframeWeekly:  &report.Weekly,
		metrics.TimeframeMonthly: &report.Monthly,
	} {
		items, err := BuildTimeframe(reg, tag, results[tag])
		if err != nil {
			return Report{}, err
		}
		*dest = items
	}
	return report, nil
}

// Sanitize recursively replaces NaN and infinite floats with nil so the
// value always survives JSON encoding. Maps and slices are rebuilt; all
// other values pass through untouched.
func Sanitize(value any) any {
	switch v := value.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil
		}
		return v
	case float32:
		return Sanitize(float64(v))
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[k] = Sanitize(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = Sanitize(item)
		}
		return out
	default:
		return value
	}
}

// EncodeJSON renders the report as JSON, indented when pretty is set.
func EncodeJSON(report Report, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(report, "", "  ")
	}
	return json.Marshal(report)
}

// EncodeMsgpack renders the report as msgpack.
func EncodeMsgpack(report Report) ([]byte, error) {
	return msgpack.Marshal(report)
}

var validStatuses = map[string]struct{}{
	string(metrics.StatusOK):               {},
	string(metrics.StatusMissing):          {},
	string(metrics.StatusLocked):           {},
	string(metrics.StatusExternalRequired): {},
}

// Validate checks the report against the contract: every item carries an ID
// and a known status, and a value exactly when the status is ok.
func Validate(report Report) error {
	for _, items := range [][]Item{report.Daily, report.Weekly, report.Monthly} {
		for _, item := range items {
			if item.ID == "" {
				return fmt.Errorf("report item without id (name %q)", item.Name)
			}
			if _, ok := validStatuses[item.Status]; !ok {
				return fmt.Errorf("item %s: unknown status %q", item.ID, item.Status)
			}
			if item.Status == string(metrics.StatusOK) && item.Value == nil {
				return fmt.Errorf("item %s: ok status without a value", item.ID)
			}
			if item.Status != string(metrics.StatusOK) && item.Value != nil {
				return fmt.Errorf("item %s: status %s must not carry a value", item.ID, item.Status)
			}
		}
	}
	return nil
}
