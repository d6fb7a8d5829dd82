package file

import "strings"

const batchLines = 20

// Buffers one formatted line for the output file, writing once a batch has built up
func (mod *OutModule) Write(line string) (linesWritten int, err error) {
	if mod == nil {
		return
	}

	// Always ensure outputs have only one trailing newline
	line = strings.TrimRight(line, "\n") + "\n"

	*mod.batchBuffer = append(*mod.batchBuffer, line)

	if len(*mod.batchBuffer) >= batchLines {
		linesWritten, err = mod.FlushBuffer()
		if err != nil {
			return
		}
	}
	return
}

// Flushes line buffer to the file
func (mod *OutModule) FlushBuffer() (flushedCnt int, err error) {
	if mod == nil || mod.batchBuffer == nil {
		return
	}

	for _, line := range *mod.batchBuffer {
		data := []byte(line)
		for len(data) > 0 {
			var n int
			n, err = mod.sink.Write(data)
			if err != nil {
				// Keep what was not written for the next attempt
				*mod.batchBuffer = (*mod.batchBuffer)[flushedCnt:]
				return
			}
			data = data[n:] // remove the bytes that were successfully written
		}
		flushedCnt++
	}

	// All writes succeeded, empty buffer
	*mod.batchBuffer = (*mod.batchBuffer)[:0]
	return
}
