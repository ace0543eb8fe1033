package metrics

import (
	"errors"
	"fmt"
	"sort"

	"github.com/zeromicro/go-zero/core/logx"
)

var (
	// ErrMetricNotFound is returned for lookups of unknown metric IDs or
	// timeframe tags.
	ErrMetricNotFound = errors.New("metric not found")
	// ErrDuplicateMetricID is returned when the catalog defines the same
	// ID twice. IDs are contract-stable, so this always means a broken
	// catalog edit.
	ErrDuplicateMetricID = errors.New("duplicate metric id")
)

// Registry is the validated, read-only metric catalog grouped by timeframe
// tag. Build it with BuildRegistry; there is no package-level instance and no
// init-time side effects.
type Registry struct {
	groups map[string][]Definition
	byID   map[string]Definition
}

// Stats summarizes the registry composition.
type Stats struct {
	Total        int
	Daily        int
	Weekly       int
	Monthly      int
	Implemented  int
	RegistryOnly int
}

// BuildRegistry constructs and validates the registry from the static
// catalog. Hard violations (duplicate IDs, malformed IDs, implemented metrics
// without a normalizer or with an ambiguous fetch configuration) fail the
// build; soft issues (non-contiguous numbering, non-canonical categories) are
// logged and tolerated.
func BuildRegistry() (*Registry, error) {
	return newRegistry(map[string][]Definition{
		TimeframeDaily:   dailyMetrics(),
		TimeframeWeekly:  weeklyMetrics(),
		TimeframeMonthly: monthlyMetrics(),
	})
}

func newRegistry(groups map[string][]Definition) (*Registry, error) {
	r := &Registry{groups: groups, byID: make(map[string]Definition)}

	for _, tag := range r.Timeframes() {
		for _, def := range groups[tag] {
			if err := validateDefinition(tag, def); err != nil {
				return nil, err
			}
			if _, exists := r.byID[def.ID]; exists {
				return nil, fmt.Errorf("%w: %s", ErrDuplicateMetricID, def.ID)
			}
			r.byID[def.ID] = def
		}
		checkNumbering(tag, groups[tag])
	}
	return r, nil
}

func validateDefinition(tag string, def Definition) error {
	if !idPattern.MatchString(def.ID) {
		return fmt.Errorf("metric %q: invalid id format, want %s_NN_slug", def.ID, tag)
	}
	if def.Timeframe() != tag {
		return fmt.Errorf("metric %q: id prefix does not match timeframe %q", def.ID, tag)
	}
	if _, ok := canonicalIntervals[def.Interval]; !ok {
		return fmt.Errorf("metric %q: invalid interval %q", def.ID, def.Interval)
	}
	if _, ok := canonicalCategories[def.Category]; !ok {
		logx.Infof("registry warning: metric %s uses non-canonical category %q", def.ID, def.Category)
	}
	if def.Implemented {
		if def.Normalize == nil {
			return fmt.Errorf("metric %q: implemented but no normalizer bound", def.ID)
		}
		hasEndpoint := def.Endpoint != ""
		hasPlan := len(def.FetchPlan) > 0
		if hasEndpoint == hasPlan {
			return fmt.Errorf("metric %q: implemented metrics need exactly one of endpoint or fetch plan", def.ID)
		}
	}
	return nil
}

// checkNumbering soft-checks that sequence numbers within a timeframe cover
// 1..n without gaps. Display order may differ from numeric order, so numbers
// are sorted before comparison.
func checkNumbering(tag string, defs []Definition) {
	nums := make([]int, 0, len(defs))
	for _, def := range defs {
		m := idPattern.FindStringSubmatch(def.ID)
		if m == nil {
			continue
		}
		var n int
		fmt.Sscanf(def.ID[len(m[1])+1:], "%02d", &n)
		nums = append(nums, n)
	}
	sort.Ints(nums)
	for i, n := range nums {
		if n != i+1 {
			logx.Infof("registry warning: %s metric numbering is not contiguous: %v", tag, nums)
			return
		}
	}
}

// Timeframes returns the timeframe tags in display order.
func (r *Registry) Timeframes() []string {
	return []string{TimeframeDaily, TimeframeWeekly, TimeframeMonthly}
}

// Timeframe returns the metrics of one timeframe tag in display order.
func (r *Registry) Timeframe(tag string) ([]Definition, error) {
	defs, ok := r.groups[tag]
	if !ok {
		return nil, fmt.Errorf("%w: timeframe %q", ErrMetricNotFound, tag)
	}
	return defs, nil
}

// ByID looks up a single metric definition.
func (r *Registry) ByID(id string) (Definition, error) {
	def, ok := r.byID[id]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %s", ErrMetricNotFound, id)
	}
	return def, nil
}

// Implemented returns every implemented metric across all timeframes, in
// display order.
func (r *Registry) Implemented() []Definition {
	var out []Definition
	for _, tag := range r.Timeframes() {
		for _, def := range r.groups[tag] {
			if def.Implemented {
				out = append(out, def)
			}
		}
	}
	return out
}

// Stats reports registry composition counts.
func (r *Registry) Stats() Stats {
	s := Stats{
		Daily:   len(r.groups[TimeframeDaily]),
		Weekly:  len(r.groups[TimeframeWeekly]),
		Monthly: len(r.groups[TimeframeMonthly]),
	}
	s.Total = s.Daily + s.Weekly + s.Monthly
	s.Implemented = len(r.Implemented())
	s.RegistryOnly = s.Total - s.Implemented
	return s
}
