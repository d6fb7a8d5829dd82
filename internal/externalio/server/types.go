package server

import (
	"context"
	metricGlb "ipfee/internal/metrics"
	"time"
)

type httpLogWriter struct {
	ctx context.Context
}

type Jerror struct {
	Msg string `json:"error"`
}

// Root response listing available query endpoints
type Jindex struct {
	Program   string            `json:"program"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

type DataSearcher func(name string, namespacePrefix []string, start, end time.Time) []metricGlb.Metric
type Discoverer func(name, description string, namespacePrefix []string, unit string, metricType metricGlb.MetricType) []metricGlb.Metric
type AggSearcher func(aggType string, name string, namespacePrefix []string, start, end time.Time) (metricGlb.Metric, error)
