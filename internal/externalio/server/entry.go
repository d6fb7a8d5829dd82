// HTTP server to expose discovery and querying of metric data to other programs only on the local system
package server

import (
	"context"
	"encoding/json"
	"ipfee/internal/global"
	"ipfee/internal/logctx"
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"
)

// Sets up HTTP listener configuration for metric querying
func SetupListener(ctx context.Context, port int, search DataSearcher, discover Discoverer, aggregation AggSearcher) (server *http.Server) {
	requestMultiplexer := http.NewServeMux()

	index := Jindex{
		Program: global.ProgBaseName,
		Version: global.ProgVersion,
		Endpoints: map[string]string{
			global.DataPath:        "metric values: <namespace>?name=&starttime=&endtime=",
			global.DiscoveryPath:   "available metrics: <namespace>?name=&description=&unit=&type=",
			global.AggregationPath: "aggregated value: <namespace>?name=&aggregation=sum|min|max|avg&starttime=&endtime=",
		},
	}

	// Method patterns answer 405 to anything but GET
	requestMultiplexer.HandleFunc("GET /{$}", func(serverResponder http.ResponseWriter, clientRequest *http.Request) {
		jResp(ctx, serverResponder, index)
	})
	requestMultiplexer.HandleFunc("GET "+global.DiscoveryPath, func(serverResponder http.ResponseWriter, clientRequest *http.Request) {
		handleDiscovery(ctx, discover, serverResponder, clientRequest)
	})
	requestMultiplexer.HandleFunc("GET "+global.DataPath, func(serverResponder http.ResponseWriter, clientRequest *http.Request) {
		handleData(ctx, search, serverResponder, clientRequest)
	})
	requestMultiplexer.HandleFunc("GET "+global.AggregationPath, func(serverResponder http.ResponseWriter, clientRequest *http.Request) {
		handleAggregation(ctx, aggregation, serverResponder, clientRequest)
	})

	server = &http.Server{
		Addr:         net.JoinHostPort(global.HTTPListenAddr, strconv.Itoa(port)),
		Handler:      requestMultiplexer,
		ReadTimeout:  global.HTTPReadTimeout,
		WriteTimeout: global.HTTPWriteTimeout,
		IdleTimeout:  global.HTTPIdleTimeout,
		ErrorLog:     log.New(httpLogWriter{ctx: ctx}, "", 0),
	}
	return
}

// Starts the metric HTTP server and waits for requests
func Start(ctx context.Context, server *http.Server) {
	logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog, "Metric query server starting on http://%s/\n", server.Addr)
	err := server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog, "Metric query server failed to start: %v\n", err)
	}
}

// Writes content as a JSON body, or a 500 when it cannot be encoded
func jResp(ctx context.Context, serverResponder http.ResponseWriter, content any) {
	body, err := json.Marshal(content)
	if err != nil {
		serverResponder.WriteHeader(http.StatusInternalServerError)
		logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog, "Failed marshaling metric results: %v\n", err)
		return
	}
	serverResponder.Header().Set("Content-Type", "application/json")
	serverResponder.WriteHeader(http.StatusOK)
	serverResponder.Write(append(body, '\n'))
}

// Logs HTTP server errors to internal program buffer (via context logger)
func (logWriter httpLogWriter) Write(p []byte) (n int, err error) {
	n = len(p)
	if n == 0 {
		return
	}
	logctx.LogEvent(logWriter.ctx, global.VerbosityStandard, global.ErrorLog,
		"%s\n", strings.TrimSpace(string(p)))
	return
}
