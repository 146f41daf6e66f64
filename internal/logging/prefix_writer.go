package logging

import (
	"bytes"
	"io"
	"sync"
)

// PrefixWriter wraps an io.Writer and adds a prefix to each line.
type PrefixWriter struct {
	mu     sync.Mutex
	prefix string
	writer io.Writer
	buffer bytes.Buffer
}

// NewPrefixWriter creates a new PrefixWriter.
func NewPrefixWriter(prefix string, w io.Writer) *PrefixWriter {
	return &PrefixWriter{
		prefix: prefix,
		writer: w,
	}
}

// Write buffers data until a newline is seen, then writes the prefixed line.
func (pw *PrefixWriter) Write(p []byte) (int, error) {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	n := len(p)
	pw.buffer.Write(p)

	for {
		line, err := pw.buffer.ReadBytes('\n')
		if err != nil {
			// incomplete line, keep it for the next write
			if len(line) > 0 {
				pw.buffer.Write(line)
			}
			break
		}

		if _, err := pw.writer.Write(append([]byte(pw.prefix), line...)); err != nil {
			return 0, err
		}
	}

	return n, nil
}
