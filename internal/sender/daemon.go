// Daemon that reads events from a local source and forwards them to a remote collector
package sender

import (
	"context"
	"fmt"
	"io"
	"ipfee/internal/atomics"
	"ipfee/internal/externalio/file"
	"ipfee/internal/externalio/server"
	"ipfee/internal/forwarder"
	"ipfee/internal/global"
	"ipfee/internal/lifecycle"
	"ipfee/internal/logctx"
	"ipfee/internal/metrics"
	"ipfee/internal/sender/ingest"
	"net/http"
	"os"
	"time"
)

// Create new sending daemon instance
func NewDaemon(cfg Config) (new *Daemon) {
	new = &Daemon{
		cfg:  cfg,
		done: make(chan struct{}),
	}
	return
}

// Starts forwarding in background - gracefully shuts down if startup error is encountered
func (daemon *Daemon) Start(globalCtx context.Context) (err error) {
	// New context for the daemon
	daemon.ctx, daemon.cancel = context.WithCancel(context.Background())
	daemon.ctx = logctx.WithLogger(daemon.ctx, logctx.GetLogger(globalCtx))

	// Top level tag for daemon logs
	daemon.ctx = logctx.AppendCtxTag(daemon.ctx, global.NSSend)

	logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.InfoLog, "Starting...\n")

	err = daemon.cfg.validate()
	if err != nil {
		return
	}
	daemon.cfg.setDefaults()
	global.PID = os.Getpid()

	// Input source
	if daemon.cfg.InputPath == "-" {
		daemon.input = io.NopCloser(os.Stdin)
	} else if daemon.cfg.InputFollow {
		daemon.follower, err = file.NewFollower(daemon.ctx, []string{global.NSSend}, daemon.cfg.InputPath, false)
		if err != nil {
			err = fmt.Errorf("failed to follow input: %w", err)
			return
		}
		daemon.input = daemon.follower
	} else {
		daemon.input, err = os.Open(daemon.cfg.InputPath)
		if err != nil {
			err = fmt.Errorf("failed to open input: %w", err)
			return
		}
	}

	// Forwarder
	daemon.Forwarder, err = forwarder.New(daemon.cfg.Forwarder)
	if err != nil {
		err = fmt.Errorf("failed to create forwarder: %w", err)
		daemon.input.Close()
		return
	}
	daemon.Forwarder.Start(daemon.ctx, daemon.cfg.CollectorAddress)

	// Ingest
	inputName := daemon.cfg.InputPath
	if inputName == "-" {
		inputName = "stdin"
	}
	daemon.Ingest = ingest.New([]string{global.NSSend}, inputName, daemon.input, daemon.Forwarder)
	ingestCtx := daemon.ctx
	go daemon.runIngest(ingestCtx)

	// Metrics Collector
	daemon.metricsCollector = metrics.NewGatherer(daemon.cfg.MetricCollectionInterval, daemon.cfg.MetricMaxAge,
		daemon.Forwarder,
		daemon.Ingest,
	)
	if daemon.follower != nil {
		daemon.metricsCollector.AddSource(daemon.follower)
	}
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
	err = lifecycle.NotifyStatus(daemon.ctx, "forwarding to "+daemon.cfg.CollectorAddress)
	if err != nil {
		logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog,
			"Systemd notify status failed: %v\n", err)
		err = nil
	}

	logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.InfoLog, "Startup complete.\n")
	return
}

// Feeds input into the forwarder; optionally finishes the daemon once input is exhausted and delivered
func (daemon *Daemon) runIngest(ctx context.Context) {
	err := daemon.Ingest.Run(ctx)
	if err != nil {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog, "Ingest stopped: %v\n", err)
	}
	if !daemon.cfg.ExitOnEOF || ctx.Err() != nil {
		return
	}

	pending := func() uint64 { return uint64(daemon.Forwarder.Pending()) }
	drained, last := atomics.WaitUntilZero(ctx, pending, daemon.cfg.DrainTimeout)
	if !drained {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
			"input finished but %d events were still queued after %v\n", last, daemon.cfg.DrainTimeout)
	}
	daemon.finish()
}

func (daemon *Daemon) finish() {
	daemon.doneOnce.Do(func() { close(daemon.done) })
}

// Closed when the daemon has nothing left to do (input exhausted with exitOnEOF, or shutdown)
func (daemon *Daemon) Done() (done <-chan struct{}) {
	done = daemon.done
	return
}

// Blocking daemon waiter
func (daemon *Daemon) Run() {
	<-daemon.done
}

// Gracefully stops forwarding, metric collection and the metric server
func (daemon *Daemon) Shutdown() {
	daemon.shutdownOnce.Do(daemon.shutdown)
}

func (daemon *Daemon) shutdown() {
	defer daemon.finish()
	if daemon.ctx == nil {
		// never started
		return
	}

	logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.InfoLog,
		"Daemon shutdown started...\n")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), global.SendShutdownTimeout)
	defer cancelShutdown()

	// Stop metric server
	if daemon.MetricServer != nil {
		err := daemon.MetricServer.Shutdown(shutdownCtx)
		if err != nil && err != http.ErrServerClosed {
			logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog,
				"metric HTTP server did not shutdown gracefully: %v\n", err)
		}
	}

	// Stop ingest (a read blocked on stdin is abandoned)
	daemon.cancel()
	if daemon.input != nil {
		daemon.input.Close()
	}

	// Stop forwarder
	if daemon.Forwarder != nil {
		pending := daemon.Forwarder.Pending()
		err := daemon.Forwarder.Shutdown(shutdownCtx)
		if err != nil {
			logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog, "%v\n", err)
		}
		if pending > 0 {
			logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog,
				"dropped %d queued events at shutdown\n", pending)
		}
	}

	// Wait for all workers to finish (with timeout)
	done := make(chan struct{})
	go func() {
		daemon.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.InfoLog,
			"Daemon shutdown completed successfully\n")
	case <-time.After(global.SendShutdownTimeout):
		logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog,
			"Timeout: send daemon did not shutdown within %v seconds\n",
			global.SendShutdownTimeout.Seconds())
	}
}
