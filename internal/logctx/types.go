package logctx

import (
	"sync"
	"sync/atomic"
	"time"
)

// Single log record
type Event struct {
	Timestamp time.Time
	Severity  string
	Tags      []string // broad -> specific
	Message   string   // caller supplies any trailing newline
}

// Buffered logger shared through a context. Producers append, watchers drain.
type Logger struct {
	ID         string
	CreatedAt  time.Time
	PrintLevel int           // events above this level are discarded (errors always kept)
	MaxQueued  int           // buffer bound, oldest events go first; 0 = unbounded
	Dropped    atomic.Uint64 // events lost to MaxQueued
	Done       <-chan struct{}

	mutex sync.Mutex
	cond  *sync.Cond // signalled on every append and by Wake
	queue []Event
	wg    *sync.WaitGroup // running watchers
}

// Repeat tracking for one watcher's output
type dedupState struct {
	lastMsg        string
	repeats        int
	lastSuppressed time.Time
}
