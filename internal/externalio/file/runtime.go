package file

// Stops watching and closes the file; pending reads return io.EOF
func (mod *Follower) Close() (err error) {
	if mod == nil {
		return
	}
	mod.cancel()

	mod.mu.Lock()
	defer mod.mu.Unlock()
	if mod.file != nil {
		err = mod.file.Close()
		mod.file = nil
	}
	return
}

// Gracefully stops module
func (mod *OutModule) Shutdown() (err error) {
	if mod == nil {
		return
	}
	_, err = mod.FlushBuffer()
	if mod.sink != nil {
		closeErr := mod.sink.Close()
		if err == nil {
			err = closeErr
		}
	}
	return
}
