package file

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"ipfee/internal/global"
	"ipfee/internal/logctx"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

const watcherPollInterval = 200 // milliseconds

// Signals file writes and rotations of logFileInput until ctx is done.
// Setup result is reported once on ready.
func watcher(ctx context.Context, logFileInput string, fileHasChanged chan struct{}, fileHasRotated chan struct{}, ready chan<- error) {
	// Non-blocking so cancellation is noticed between polls
	fd, err := unix.InotifyInit1(unix.IN_NONBLOCK | unix.IN_CLOEXEC)
	if err != nil {
		ready <- fmt.Errorf("failed to initialize inotify: %w", err)
		return
	}
	defer unix.Close(fd)

	watchDescriptorFile, err := unix.InotifyAddWatch(fd, logFileInput, unix.IN_MODIFY|unix.IN_CLOSE_WRITE)
	if err != nil {
		ready <- fmt.Errorf("failed to add file '%s' to inotify watcher: %w", logFileInput, err)
		return
	}

	logDirectory := filepath.Dir(logFileInput)
	watchDescriptorDir, err := unix.InotifyAddWatch(fd, logDirectory, unix.IN_MOVED_FROM|unix.IN_MOVED_TO|unix.IN_DELETE|unix.IN_CREATE)
	if err != nil {
		ready <- fmt.Errorf("failed to add directory '%s' to inotify watcher: %w", logDirectory, err)
		return
	}
	ready <- nil

	buf := make([]byte, unix.SizeofInotifyEvent+8192)
	logFileName := filepath.Base(logFileInput)
	pollFds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}

	for ctx.Err() == nil {
		nReady, err := unix.Poll(pollFds, watcherPollInterval)
		if err != nil && !errors.Is(err, unix.EINTR) {
			logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog, "error polling inotify: %v\n", err)
			return
		}
		if nReady <= 0 {
			continue
		}

		n, err := unix.Read(fd, buf)
		if err != nil {
			if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR) {
				continue
			}
			logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog, "error reading inotify event: %v\n", err)
			return
		}

		var offset uint32
		for offset+unix.SizeofInotifyEvent <= uint32(n) {
			var event unix.InotifyEvent
			err = binary.Read(bytes.NewReader(buf[offset:offset+unix.SizeofInotifyEvent]), binary.LittleEndian, &event)
			if err != nil {
				logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog, "failed to read event content: %v\n", err)
				break
			}

			// Name field has the filename for dir events (null-terminated)
			nameStart := offset + unix.SizeofInotifyEvent
			name := strings.TrimRight(string(buf[nameStart:nameStart+event.Len]), "\x00")

			if event.Mask&(unix.IN_MODIFY|unix.IN_CLOSE_WRITE) != 0 && event.Wd == int32(watchDescriptorFile) {
				notify(fileHasChanged)
			}

			// Directory events - only look for our file
			if event.Wd == int32(watchDescriptorDir) && name == logFileName {
				unix.InotifyRmWatch(fd, uint32(watchDescriptorFile))
				watchDescriptorFile, err = rewatch(ctx, fd, logFileInput)
				if err != nil {
					logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog,
						"failed to add rotated file to inotify watcher: %v\n", err)
				} else {
					notify(fileHasRotated)
					notify(fileHasChanged)
				}
			}

			offset += unix.SizeofInotifyEvent + event.Len
		}
	}
}

// Watches the new inode behind logFileInput, waiting briefly for it to appear
func rewatch(ctx context.Context, fd int, logFileInput string) (watchDescriptor int, err error) {
	const maxRetries = 5
	delay := 100 * time.Millisecond

	for range maxRetries {
		watchDescriptor, err = unix.InotifyAddWatch(fd, logFileInput, unix.IN_MODIFY|unix.IN_CLOSE_WRITE)
		if err == nil {
			return
		}

		// Errors not solved by waiting
		if !errors.Is(err, unix.EACCES) && !errors.Is(err, unix.EPERM) && !errors.Is(err, unix.ENOENT) {
			return
		}

		select {
		case <-ctx.Done():
			err = ctx.Err()
			return
		case <-time.After(delay):
		}
		delay *= 2
	}
	return
}

// Non-blocking send on a 1-buffered signal channel
func notify(signal chan struct{}) {
	select {
	case signal <- struct{}{}:
	default:
	}
}
