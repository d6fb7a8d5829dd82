package metrics

import (
	"sort"
	"strings"
	"time"
)

// Prefix match on namespace components. Empty prefix matches everything.
func matchesNamespace(metricNS, queryNS []string) (matches bool) {
	if len(metricNS) < len(queryNS) {
		return
	}
	for i := range queryNS {
		if metricNS[i] != queryNS[i] {
			return
		}
	}
	matches = true
	return
}

// Returns samples with exactly this name (any when empty) under namespacePrefix,
// oldest slice first, optionally limited to slices inside [start, end].
func (registry *Registry) Search(name string, namespacePrefix []string, start, end time.Time) (results []Metric) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	for _, slice := range registry.window(start, end) {
		for _, sample := range slice.samples {
			if name != "" && sample.Name != name {
				continue
			}
			if !matchesNamespace(sample.Namespace, namespacePrefix) {
				continue
			}
			results = append(results, sample)
		}
	}
	return
}

// Lists distinct series (namespace, name, type, unit) matching the filters, without values or timestamps.
// Name and description are substring filters; empty filters match everything.
func (registry *Registry) Discover(name, description string, namespacePrefix []string, unit string, metricType MetricType) (results []Metric) {
	type discoveryKey struct {
		series     seriesKey
		metricType MetricType
		unit       string
	}

	registry.mu.RLock()
	defer registry.mu.RUnlock()

	seen := make(map[discoveryKey]struct{})
	for _, slice := range registry.slices {
		for _, sample := range slice.samples {
			switch {
			case name != "" && !strings.Contains(sample.Name, name):
				continue
			case description != "" && !strings.Contains(sample.Description, description):
				continue
			case unit != "" && sample.Value.Unit != unit:
				continue
			case metricType != "" && sample.Type != metricType:
				continue
			case !matchesNamespace(sample.Namespace, namespacePrefix):
				continue
			}

			key := discoveryKey{
				series:     seriesKey{namespace: strings.Join(sample.Namespace, "/"), name: sample.Name},
				metricType: sample.Type,
				unit:       sample.Value.Unit,
			}
			if _, exists := seen[key]; exists {
				continue
			}
			seen[key] = struct{}{}

			results = append(results, Metric{
				Name:        sample.Name,
				Description: sample.Description,
				Namespace:   sample.Namespace,
				Type:        sample.Type,
				Value:       MetricValue{Unit: sample.Value.Unit},
			})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Name != results[j].Name {
			return results[i].Name < results[j].Name
		}
		return strings.Join(results[i].Namespace, "/") < strings.Join(results[j].Namespace, "/")
	})
	return
}
