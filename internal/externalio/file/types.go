package file

import (
	"context"
	"io"
	"os"
	"sync"
	"sync/atomic"
)

type OutModule struct {
	sink        io.WriteCloser
	batchBuffer *[]string
}

// Reads a growing file, waiting at end of file for more data and reopening after rotation
type Follower struct {
	Namespace []string
	filePath  string
	mu        sync.Mutex // guards file against Close
	file      *os.File
	offset    int64

	ctx    context.Context
	cancel context.CancelFunc

	changed chan struct{} // file was written to
	rotated chan struct{} // path now names a different file

	pendingRotate bool
	Metrics       MetricStorage
}

type MetricStorage struct {
	BytesRead  atomic.Uint64 // bytes handed to the reader
	Reopens    atomic.Uint64 // times the path was reopened after rotation
	Truncation atomic.Uint64 // times the file shrank under us
}
