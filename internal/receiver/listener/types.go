package listener

import (
	"ipfee/internal/queue/bounded"
	"ipfee/pkg/protocol"
	"net"
	"sync/atomic"
	"time"
)

type Instance struct {
	Namespace   []string
	listener    net.Listener
	maxConns    int
	idleTimeout time.Duration // zero waits forever for the next record
	Outbox      *bounded.Queue[protocol.Received]
	Metrics     MetricStorage
}

type MetricStorage struct {
	Accepted       atomic.Uint64 // connections accepted
	Rejected       atomic.Uint64 // connections refused at the limit
	Active         atomic.Uint64 // gauge
	Events         atomic.Uint64 // records decoded
	BytesRead      atomic.Uint64
	DecodeErrors   atomic.Uint64 // connections closed on a bad record
	QueueFullDrops atomic.Uint64 // decoded events lost to a full output queue
}
