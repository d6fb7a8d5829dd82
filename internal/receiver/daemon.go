// Daemon for reception of forwarded events and delivery to configured output destinations
package receiver

import (
	"context"
	"fmt"
	"ipfee/internal/externalio/beats"
	"ipfee/internal/externalio/file"
	"ipfee/internal/externalio/kafka"
	"ipfee/internal/externalio/server"
	"ipfee/internal/global"
	"ipfee/internal/lifecycle"
	"ipfee/internal/logctx"
	"ipfee/internal/metrics"
	"ipfee/internal/queue/bounded"
	"ipfee/internal/receiver/listener"
	"ipfee/internal/receiver/output"
	"ipfee/pkg/protocol"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"
)

// Create new receiver daemon instance
func NewDaemon(cfg Config) (new *Daemon) {
	new = &Daemon{
		cfg: cfg,
	}
	return
}

// Starts pipeline worker threads in background - gracefully shuts down if startup error is encountered
func (daemon *Daemon) Start(globalCtx context.Context) (err error) {
	// New context for the daemon
	daemon.ctx, daemon.cancel = context.WithCancel(context.Background())
	daemon.ctx = logctx.WithLogger(daemon.ctx, logctx.GetLogger(globalCtx))

	// Top level tag for daemon logs
	daemon.ctx = logctx.AppendCtxTag(daemon.ctx, global.NSRecv)

	logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.InfoLog, "Starting...\n")

	err = daemon.cfg.validate()
	if err != nil {
		return
	}
	daemon.cfg.setDefaults()
	global.PID = os.Getpid()

	// Stage 2 - Output
	daemon.Queue, err = bounded.New[protocol.Received]([]string{global.NSRecv, global.NSOut}, daemon.cfg.OutputQueueSize)
	if err != nil {
		err = fmt.Errorf("failed creating output queue: %w", err)
		return
	}
	daemon.Output = output.New([]string{global.NSRecv}, daemon.Queue)
	if daemon.cfg.StdoutEnabled {
		daemon.Output.SetStdout(os.Stdout, daemon.cfg.StdoutFormat)
	}
	daemon.Output.FileMod, err = file.NewOutput(daemon.cfg.OutputFilePath)
	if err != nil {
		err = fmt.Errorf("failed starting file output: %w", err)
		return
	}
	daemon.Output.BeatsMod, err = beats.NewOutput(daemon.cfg.BeatsEndpoint, daemon.cfg.OutputTimeout)
	if err != nil {
		err = fmt.Errorf("failed starting beats output: %w", err)
		daemon.Output.Shutdown()
		return
	}
	daemon.Output.KafkaMod, err = kafka.NewOutput(daemon.cfg.KafkaBrokers, daemon.cfg.KafkaTopic, daemon.cfg.OutputTimeout)
	if err != nil {
		err = fmt.Errorf("failed starting kafka output: %w", err)
		daemon.Output.Shutdown()
		return
	}

	// Output keeps running past listener shutdown so it can drain the queue
	outputCtx := context.WithoutCancel(logctx.AppendCtxTag(daemon.ctx, global.NSOut))
	outputCtx, daemon.outputCancel = context.WithCancel(outputCtx)
	daemon.wg.Add(1)
	go func() {
		defer daemon.wg.Done()
		daemon.Output.Run(outputCtx)
	}()

	// Stage 1 - Listener
	listenAddr := net.JoinHostPort(daemon.cfg.ListenIP, strconv.Itoa(daemon.cfg.ListenPort))
	listenCtx := logctx.AppendCtxTag(daemon.ctx, global.NSListen)
	daemon.Listener, err = listener.New(listenCtx, []string{global.NSRecv}, listenAddr,
		daemon.cfg.MaxConnections, daemon.cfg.IdleTimeout, daemon.Queue)
	if err != nil {
		daemon.Shutdown()
		return
	}
	daemon.listenWg.Add(1)
	go func() {
		defer daemon.listenWg.Done()
		err := daemon.Listener.Run(listenCtx)
		if err != nil {
			logctx.LogEvent(listenCtx, global.VerbosityStandard, global.ErrorLog, "listener stopped: %v\n", err)
		}
	}()
	logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.InfoLog,
		"Listening for forwarders on %s\n", daemon.Listener.Addr())

	// Metrics Collector
	daemon.metricsCollector = metrics.NewGatherer(daemon.cfg.MetricCollectionInterval, daemon.cfg.MetricMaxAge,
		daemon.Listener,
		daemon.Output,
	)
	workerCtx := daemon.ctx
	daemon.wg.Add(1)
	go func() {
		defer daemon.wg.Done()
		daemon.metricsCollector.Run(workerCtx)
	}()
	daemon.MetricDataSearcher = daemon.metricsCollector.Registry.Search
	daemon.MetricDiscoverer = daemon.metricsCollector.Registry.Discover
	daemon.MetricAggregator = daemon.metricsCollector.Registry.Aggregate

	// Metric Server
	if daemon.cfg.MetricQueryServerEnabled {
		// Top level tag for metric server logs (copy so later tag changes do not apply)
		serverCtx := logctx.AppendCtxTag(daemon.ctx, global.NSMetric)
		serverCtx = logctx.AppendCtxTag(serverCtx, global.NSMetricSrv)

		daemon.MetricServer = server.SetupListener(serverCtx, daemon.cfg.MetricQueryServerPort,
			daemon.MetricDataSearcher, daemon.MetricDiscoverer, daemon.MetricAggregator)
		daemon.wg.Add(1)
		go func() {
			defer daemon.wg.Done()
			server.Start(serverCtx, daemon.MetricServer)
		}()
	}

	err = lifecycle.NotifyReady(daemon.ctx)
	if err != nil {
		logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog,
			"Systemd notify ready failed: %v\n", err)
		err = nil
	}
	err = lifecycle.NotifyStatus(daemon.ctx, "listening on "+daemon.Listener.Addr().String())
	if err != nil {
		logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog,
			"Systemd notify status failed: %v\n", err)
		err = nil
	}

	logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.InfoLog, "Startup complete.\n")
	return
}

// Closed once shutdown has started; nil (never ready) before Start
func (daemon *Daemon) Done() (done <-chan struct{}) {
	if daemon.ctx == nil {
		return
	}
	done = daemon.ctx.Done()
	return
}

// Blocking daemon waiter
func (daemon *Daemon) Run() {
	<-daemon.Done()
}

// Gracefully shutdown pipeline worker threads (errors are printed to program log buffer)
func (daemon *Daemon) Shutdown() {
	daemon.shutdownOnce.Do(daemon.shutdown)
}

func (daemon *Daemon) shutdown() {
	if daemon.ctx == nil {
		return
	}
	logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.InfoLog,
		"Daemon shutdown started...\n")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), global.ReceiveShutdownTimeout)
	defer cancelShutdown()

	// Stop metric server
	if daemon.MetricServer != nil {
		err := daemon.MetricServer.Shutdown(shutdownCtx)
		if err != nil && err != http.ErrServerClosed {
			logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog,
				"metric HTTP server did not shutdown gracefully: %v\n", err)
		}
	}

	// Stop listener and connection handlers (closes all forwarder connections)
	daemon.cancel()
	daemon.listenWg.Wait()

	// Output drains what the connections already decoded, then stops
	if daemon.outputCancel != nil {
		daemon.outputCancel()
	}

	// Wait for all workers to finish (with timeout)
	done := make(chan struct{})
	go func() {
		daemon.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		if daemon.Output != nil {
			err := daemon.Output.Shutdown()
			if err != nil {
				logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog,
					"outputs did not close cleanly: %v\n", err)
			}
		}
		logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.InfoLog,
			"Daemon shutdown completed successfully\n")
	case <-time.After(global.ReceiveShutdownTimeout):
		logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog,
			"Timeout: receive daemon did not shutdown within %v seconds\n",
			global.ReceiveShutdownTimeout.Seconds())
	}
}
