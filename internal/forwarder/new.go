// Best-effort event forwarder: producers never block, one background loop owns the collector connection
package forwarder

import (
	"context"
	"errors"
	"fmt"
	"ipfee/internal/global"
	"ipfee/internal/queue/bounded"
	"ipfee/pkg/protocol"
)

var (
	ErrInvalidCapacity = errors.New("invalid queue capacity")
	ErrInvalidInterval = errors.New("invalid retry interval")
)

// Creates an unstarted forwarder
func New(cfg Config) (new *Forwarder, err error) {
	err = cfg.setDefaults()
	if err != nil {
		return
	}

	namespace := []string{global.NSFwd}
	queue, err := bounded.New[protocol.Event](namespace, cfg.Capacity)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrInvalidCapacity, err)
		return
	}

	new = &Forwarder{
		Namespace: namespace,
		cfg:       cfg,
		queue:     queue,
		done:      make(chan struct{}),
		Metrics:   &MetricStorage{},
	}
	new.stopCtx, new.stopLoop = context.WithCancel(context.Background())
	return
}

func (cfg *Config) setDefaults() (err error) {
	if cfg.Capacity == 0 {
		cfg.Capacity = global.DefaultQueueCapacity
	}
	if cfg.Capacity < 0 {
		err = fmt.Errorf("%w: %d", ErrInvalidCapacity, cfg.Capacity)
		return
	}
	if cfg.RetryInterval == 0 {
		cfg.RetryInterval = global.DefaultConnectRetryInterval
	}
	if cfg.RetryInterval < 0 {
		err = fmt.Errorf("%w: %v", ErrInvalidInterval, cfg.RetryInterval)
		return
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = global.DefaultDialTimeout
	}
	if cfg.KeepAlive == 0 {
		cfg.KeepAlive = global.DefaultKeepAlive
	}
	if cfg.WriteTimeout < 0 {
		cfg.WriteTimeout = 0
	}
	return
}
