package ingest

import (
	"io"
	"ipfee/pkg/protocol"
	"sync/atomic"
)

// Destination for parsed events
type Submitter interface {
	Submit(event protocol.Event) (queued bool)
}

// Reads newline-delimited JSON events from a stream and submits them
type Reader struct {
	Namespace []string
	Name      string // source name for logs (file path or "stdin")
	source    io.Reader
	out       Submitter
	Metrics   MetricStorage
}

type MetricStorage struct {
	Lines     atomic.Uint64 // non-blank lines read
	Invalid   atomic.Uint64 // lines that did not parse into an event
	Submitted atomic.Uint64 // events the forwarder queued
	Rejected  atomic.Uint64 // events the forwarder dropped on submit
}
