package server

import (
	"context"
	"fmt"
	"ipfee/internal/global"
	"ipfee/internal/metrics"
	"net/http"
	"strings"
)

// Lists the series available under a namespace (no values)
func handleDiscovery(baseCtx context.Context, discover Discoverer, serverResponder http.ResponseWriter, clientRequest *http.Request) {
	reqType, err := parseMetricType(clientRequest.FormValue("type"))
	if err != nil {
		serverResponder.WriteHeader(http.StatusBadRequest)
		return
	}

	found := discover(
		clientRequest.FormValue("name"),
		clientRequest.FormValue("description"),
		namespaceFromPath(clientRequest.URL.Path, global.DiscoveryPath),
		clientRequest.FormValue("unit"),
		reqType,
	)
	respondMetrics(baseCtx, serverResponder, found)
}

// Case-insensitive metric type; empty means any type
func parseMetricType(raw string) (metricType metrics.MetricType, err error) {
	metricType = metrics.MetricType(strings.ToLower(raw))
	switch metricType {
	case "", metrics.Counter, metrics.Gauge, metrics.Summary:
	default:
		err = fmt.Errorf("unknown metric type %q", raw)
	}
	return
}

// Sends metrics as a JSON array, or an error object when there are none
func respondMetrics(ctx context.Context, serverResponder http.ResponseWriter, found []metrics.Metric) {
	if len(found) == 0 {
		jResp(ctx, serverResponder, Jerror{Msg: "Search returned no results"})
		return
	}

	results := make([]metrics.JMetric, 0, len(found))
	for _, metric := range found {
		results = append(results, metric.Convert())
	}
	jResp(ctx, serverResponder, results)
}
