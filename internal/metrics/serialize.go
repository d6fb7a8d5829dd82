package metrics

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Converts a sample to its JSON form
func (inMetric Metric) Convert() (outMetric JMetric) {
	outMetric = JMetric{
		Name:        inMetric.Name,
		Description: inMetric.Description,
		Namespace:   strings.Join(inMetric.Namespace, "/"),
		Type:        string(inMetric.Type),
		Timestamp:   inMetric.Timestamp.Format(time.RFC3339Nano),
		Value: JMetricValue{
			Raw:      formatRaw(inMetric.Value.Raw),
			Unit:     inMetric.Value.Unit,
			Interval: inMetric.Value.Interval.String(),
		},
	}
	return
}

func formatRaw(raw interface{}) (text string) {
	switch value := raw.(type) {
	case uint64:
		text = strconv.FormatUint(value, 10)
	case int64:
		text = strconv.FormatInt(value, 10)
	case int:
		text = strconv.Itoa(value)
	case float64:
		text = strconv.FormatFloat(value, 'g', -1, 64)
	case string:
		text = value
	default:
		text = fmt.Sprintf("%v", raw)
	}
	return
}
