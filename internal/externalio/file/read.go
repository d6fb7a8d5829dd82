package file

import (
	"errors"
	"io"
	"io/fs"
	"os"
)

// Reads from the followed file, blocking at end of file until more data arrives.
// Returns io.EOF only once the follower's context is done.
func (mod *Follower) Read(p []byte) (n int, err error) {
	for {
		mod.mu.Lock()
		if mod.file == nil {
			mod.mu.Unlock()
			err = io.EOF
			return
		}
		n, err = mod.file.Read(p)
		mod.mu.Unlock()
		if n > 0 {
			mod.offset += int64(n)
			mod.Metrics.BytesRead.Add(uint64(n))
			err = nil
			return
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return
		}

		// Old file fully read, move to the new one
		if mod.pendingRotate {
			mod.mu.Lock()
			err = mod.reopen()
			mod.mu.Unlock()
			if err == nil {
				continue
			}
			if !errors.Is(err, fs.ErrNotExist) {
				return
			}
			// Replacement not created yet
			err = nil
		}

		select {
		case <-mod.ctx.Done():
			err = io.EOF
			return
		case <-mod.changed:
			mod.mu.Lock()
			mod.checkTruncated()
			mod.mu.Unlock()
		case <-mod.rotated:
			mod.pendingRotate = true
		}
	}
}

// Switches to whatever file now lives at the path
func (mod *Follower) reopen() (err error) {
	if mod.file == nil {
		err = io.EOF
		return
	}
	file, err := os.Open(mod.filePath)
	if err != nil {
		return
	}
	mod.file.Close()
	mod.file = file
	mod.offset = 0
	mod.pendingRotate = false
	mod.Metrics.Reopens.Add(1)
	return
}

// Starts over when the file was truncated in place
func (mod *Follower) checkTruncated() {
	if mod.file == nil {
		return
	}
	info, err := mod.file.Stat()
	if err != nil {
		return
	}
	if info.Size() >= mod.offset {
		return
	}
	_, err = mod.file.Seek(0, io.SeekStart)
	if err != nil {
		return
	}
	mod.offset = 0
	mod.Metrics.Truncation.Add(1)
}
