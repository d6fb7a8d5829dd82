package metrics

import (
	"fmt"
	"ipfee/internal/global"
	"math"
	"strconv"
	"time"
)

// Reduces all matching metric values in the time window to a single metric using the requested function (sum/min/max/avg)
func (registry *Registry) Aggregate(function, name string, namespacePrefix []string, start, end time.Time) (result Metric, err error) {
	matches := registry.Search(name, namespacePrefix, start, end)
	if len(matches) == 0 {
		err = fmt.Errorf("no metrics found for name %q in namespace %v", name, namespacePrefix)
		return
	}

	values := make([]float64, 0, len(matches))
	for _, metric := range matches {
		var value float64
		value, err = toFloat(metric.Value.Raw)
		if err != nil {
			err = fmt.Errorf("metric %q: %w", metric.Name, err)
			return
		}
		values = append(values, value)
	}

	var aggregated float64
	switch function {
	case global.MetricSum, global.MetricAvg:
		for _, value := range values {
			aggregated += value
		}
		if function == global.MetricAvg {
			aggregated = aggregated / float64(len(values))
		}
	case global.MetricMin:
		aggregated = math.Inf(1)
		for _, value := range values {
			aggregated = math.Min(aggregated, value)
		}
	case global.MetricMax:
		aggregated = math.Inf(-1)
		for _, value := range values {
			aggregated = math.Max(aggregated, value)
		}
	default:
		err = fmt.Errorf("unsupported aggregation function %q", function)
		return
	}

	// Descriptive fields come from the newest sample
	latest := matches[len(matches)-1]
	result = Metric{
		Name:        latest.Name,
		Description: latest.Description,
		Namespace:   latest.Namespace,
		Type:        Summary,
		Timestamp:   latest.Timestamp,
		Value: MetricValue{
			Raw:      aggregated,
			Unit:     latest.Value.Unit,
			Interval: latest.Timestamp.Sub(matches[0].Timestamp) + latest.Value.Interval,
		},
	}
	return
}

func toFloat(raw interface{}) (value float64, err error) {
	switch v := raw.(type) {
	case int:
		value = float64(v)
	case int64:
		value = float64(v)
	case uint64:
		value = float64(v)
	case float64:
		value = v
	case string:
		value, err = strconv.ParseFloat(v, 64)
	default:
		err = fmt.Errorf("non-numeric value type %T", raw)
	}
	return
}
