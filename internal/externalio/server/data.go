package server

import (
	"context"
	"ipfee/internal/global"
	"net/http"
	"time"
)

// Series selection shared by the data and aggregation endpoints
type seriesQuery struct {
	namespace []string
	name      string
	start     time.Time
	end       time.Time
}

func parseSeriesQuery(clientRequest *http.Request, pathPrefix string) (query seriesQuery, err error) {
	query.start, query.end, err = parseWindow(clientRequest, time.Now())
	if err != nil {
		return
	}
	query.namespace = namespaceFromPath(clientRequest.URL.Path, pathPrefix)
	query.name = clientRequest.FormValue("name")
	return
}

// Returns raw samples in a time window
func handleData(baseCtx context.Context, search DataSearcher, serverResponder http.ResponseWriter, clientRequest *http.Request) {
	query, err := parseSeriesQuery(clientRequest, global.DataPath)
	if err != nil {
		serverResponder.WriteHeader(http.StatusBadRequest)
		return
	}
	respondMetrics(baseCtx, serverResponder, search(query.name, query.namespace, query.start, query.end))
}

// Reduces the samples in a time window with ?aggregation= (sum, min, max, avg)
func handleAggregation(baseCtx context.Context, aggregate AggSearcher, serverResponder http.ResponseWriter, clientRequest *http.Request) {
	query, err := parseSeriesQuery(clientRequest, global.AggregationPath)
	if err != nil {
		serverResponder.WriteHeader(http.StatusBadRequest)
		return
	}

	result, err := aggregate(clientRequest.FormValue("aggregation"), query.name, query.namespace, query.start, query.end)
	if err != nil {
		jResp(baseCtx, serverResponder, Jerror{Msg: err.Error()})
		return
	}
	jResp(baseCtx, serverResponder, result.Convert())
}
