// Handles writing received events to configured output destinations (stdout, file, beats, kafka)
package output

import (
	"bufio"
	"context"
	"io"
	"ipfee/internal/global"
	"ipfee/internal/logctx"
	"ipfee/internal/queue/bounded"
	"ipfee/pkg/protocol"
	"runtime/debug"
)

// Creates new worker instance
func New(namespace []string, inQueue *bounded.Queue[protocol.Received]) (new *Instance) {
	new = &Instance{
		Namespace: append(append([]string(nil), namespace...), global.NSOut),
		Format:    FormatText,
		Inbox:     inQueue,
	}
	return
}

// Enables line output to w
func (instance *Instance) SetStdout(w io.Writer, format string) {
	if w == nil {
		instance.Stdout = nil
		return
	}
	instance.Stdout = bufio.NewWriter(w)
	if format != "" {
		instance.Format = format
	}
}

// Take received events and write to configured outputs until ctx is done and the inbox is empty
func (instance *Instance) Run(ctx context.Context) {
	defer instance.flush(ctx)

	for {
		rec, ok := instance.Inbox.Pop(ctx)
		if !ok {
			return
		}
		instance.write(ctx, rec)

		// Buffer may never fill on a slow stream
		if instance.Inbox.Len() == 0 {
			instance.flush(ctx)
		}
	}
}

func (instance *Instance) write(ctx context.Context, rec protocol.Received) {
	// Record panics and continue output
	defer func() {
		if fatalError := recover(); fatalError != nil {
			stack := debug.Stack()
			logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog,
				"panic in output worker thread: %v\n%s", fatalError, stack)
		}
	}()

	instance.Metrics.ReceivedEvents.Add(1)

	if instance.Stdout != nil {
		line, err := FormatLine(rec, instance.Format)
		if err == nil {
			_, err = instance.Stdout.WriteString(line)
		}
		if err != nil {
			instance.Metrics.FailedWrites.Add(1)
			logctx.LogEvent(logctx.AppendCtxTag(ctx, global.NSoStdout), global.VerbosityStandard, global.ErrorLog,
				"Failed to write event to stdout output: %v\n", err)
		} else {
			instance.Metrics.SuccessfulStdoutLines.Add(1)
		}
	}

	if instance.FileMod != nil {
		line, err := FormatLine(rec, FormatJSON)
		var n int
		if err == nil {
			n, err = instance.FileMod.Write(line)
		}
		if err != nil {
			instance.Metrics.FailedWrites.Add(1)
			logctx.LogEvent(logctx.AppendCtxTag(ctx, global.NSoFile), global.VerbosityStandard, global.ErrorLog,
				"Failed to write event to file output: %v\n", err)
		}
		instance.Metrics.SuccessfulFileLines.Add(uint64(n))
	}

	n, err := instance.BeatsMod.Write(ctx, rec)
	if err != nil {
		instance.Metrics.FailedWrites.Add(1)
		logctx.LogEvent(logctx.AppendCtxTag(ctx, global.NSoBeats), global.VerbosityStandard, global.ErrorLog,
			"Failed to write event to beats output: %v\n", err)
	}
	instance.Metrics.SuccessfulBeatsWrites.Add(uint64(n))

	n, err = instance.KafkaMod.Write(ctx, rec)
	if err != nil {
		instance.Metrics.FailedWrites.Add(1)
		logctx.LogEvent(logctx.AppendCtxTag(ctx, global.NSoKafka), global.VerbosityStandard, global.ErrorLog,
			"Failed to write event to kafka output: %v\n", err)
	}
	instance.Metrics.SuccessfulKafkaWrites.Add(uint64(n))
}

func (instance *Instance) flush(ctx context.Context) {
	if instance.Stdout != nil {
		err := instance.Stdout.Flush()
		if err != nil {
			logctx.LogEvent(logctx.AppendCtxTag(ctx, global.NSoStdout), global.VerbosityStandard, global.ErrorLog,
				"Failed to flush stdout output: %v\n", err)
		}
	}

	n, err := instance.FileMod.FlushBuffer()
	if err != nil {
		instance.Metrics.FailedWrites.Add(1)
		logctx.LogEvent(logctx.AppendCtxTag(ctx, global.NSoFile), global.VerbosityStandard, global.ErrorLog,
			"Failed to flush file output: %v\n", err)
	}
	instance.Metrics.SuccessfulFileLines.Add(uint64(n))
}

// Closes file and network outputs, returning the first error
func (instance *Instance) Shutdown() (err error) {
	for _, shutdown := range []func() error{
		instance.FileMod.Shutdown,
		instance.BeatsMod.Shutdown,
		instance.KafkaMod.Shutdown,
	} {
		closeErr := shutdown()
		if err == nil {
			err = closeErr
		}
	}
	return
}
