package file

import (
	"context"
	"fmt"
	"io"
	"ipfee/internal/global"
	"os"
)

// Opens filePath for following. Without fromStart, only data appended after opening is read.
func NewFollower(ctx context.Context, namespace []string, filePath string, fromStart bool) (module *Follower, err error) {
	file, err := os.Open(filePath)
	if err != nil {
		err = fmt.Errorf("failed to open source file: %w", err)
		return
	}

	var offset int64
	if !fromStart {
		offset, err = file.Seek(0, io.SeekEnd)
		if err != nil {
			file.Close()
			err = fmt.Errorf("failed to seek to end of source file: %w", err)
			return
		}
	}

	module = &Follower{
		Namespace: append(append([]string(nil), namespace...), global.NSiFile),
		filePath:  filePath,
		file:      file,
		offset:    offset,
		changed:   make(chan struct{}, 1),
		rotated:   make(chan struct{}, 1),
	}
	module.ctx, module.cancel = context.WithCancel(ctx)

	ready := make(chan error, 1)
	go watcher(module.ctx, filePath, module.changed, module.rotated, ready)
	err = <-ready
	if err != nil {
		module.cancel()
		file.Close()
		module = nil
		return
	}
	return
}

// Creates new file output module. Returns nil nil if no path.
func NewOutput(filePath string) (module *OutModule, err error) {
	if filePath == "" {
		return
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0640)
	if err != nil {
		err = fmt.Errorf("failed to open output file: %w", err)
		return
	}

	module = &OutModule{
		sink:        file,
		batchBuffer: &[]string{},
	}
	return
}
