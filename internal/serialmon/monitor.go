// Package serialmon reads the JSON-line event stream the board prints over
// its serial port and renders it for humans.
package serialmon

import (
	"bytes"
	"context"
	"errors"
	"io"
	"time"
)

// Monitor splits a byte stream into lines and decodes each into an Event.
type Monitor struct {
	r    io.Reader
	idle time.Duration
}

// NewMonitor reads from r, typically a port returned by Open.
func NewMonitor(r io.Reader) *Monitor {
	return &Monitor{r: r, idle: 50 * time.Millisecond}
}

// Run calls handle for every non-empty line until ctx is cancelled or the
// reader reaches EOF. Invalid UTF-8 is dropped. Reads returning no data (a
// serial read timeout) are retried after a short pause.
func (m *Monitor) Run(ctx context.Context, handle func(Event)) error {
	buf := make([]byte, 1024)
	var pending []byte

	emit := func(line []byte) {
		s := string(bytes.TrimSpace(bytes.ToValidUTF8(line, nil)))
		if s != "" {
			handle(Decode(s))
		}
	}

	for {
		if ctx.Err() != nil {
			return nil
		}

		n, err := m.r.Read(buf)
		if n > 0 {
			pending = append(pending, buf[:n]...)
			for {
				i := bytes.IndexByte(pending, '\n')
				if i < 0 {
					break
				}
				emit(pending[:i])
				pending = pending[i+1:]
			}
		}
		if errors.Is(err, io.EOF) {
			emit(pending)
			return nil
		}
		if err != nil {
			return err
		}

		if n == 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(m.idle):
			}
		}
	}
}
