package output

import (
	"bufio"
	"ipfee/internal/externalio/beats"
	"ipfee/internal/externalio/file"
	"ipfee/internal/externalio/kafka"
	"ipfee/internal/queue/bounded"
	"ipfee/pkg/protocol"
	"sync/atomic"
)

const (
	FormatText string = "text"
	FormatJSON string = "json"
)

type Instance struct {
	Namespace []string
	Format    string          // stdout line format (text or json)
	Stdout    *bufio.Writer   // nil disables stdout output
	FileMod   *file.OutModule // JSON lines, one event per line
	BeatsMod  *beats.OutModule
	KafkaMod  *kafka.OutModule
	Inbox     *bounded.Queue[protocol.Received]
	Metrics   MetricStorage
}

type MetricStorage struct {
	ReceivedEvents        atomic.Uint64
	SuccessfulStdoutLines atomic.Uint64
	SuccessfulFileLines   atomic.Uint64
	SuccessfulBeatsWrites atomic.Uint64
	SuccessfulKafkaWrites atomic.Uint64
	FailedWrites          atomic.Uint64
}
