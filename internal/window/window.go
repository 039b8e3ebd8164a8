// Package window keeps the sliding history of scaled daily rows that forms
// the model input. Its capacity comes straight from the shape constants.
package window

import (
	"errors"
	"fmt"
	"sync"

	"github.com/i474232898/weather-predictor/internal/shape"
)

var (
	// ErrNotReady is returned when fewer than shape.HistoryDays rows were pushed.
	ErrNotReady = errors.New("history window not full")
	// ErrCurrentRows is returned when Sequence gets the wrong number of current rows.
	ErrCurrentRows = errors.New("wrong number of current rows")
)

// Row is one scaled day in tensor column order.
type Row [shape.NumFeatures]float32

// RowOf converts a scaled feature vector to a Row.
func RowOf(f shape.Features) Row {
	var r Row
	for i, v := range f {
		r[i] = float32(v)
	}
	return r
}

// Window is a fixed-size ring of the most recent shape.HistoryDays rows.
// It is safe for concurrent use.
type Window struct {
	mu    sync.RWMutex
	rows  [shape.HistoryDays]Row
	start int // index of the oldest row
	n     int
}

// New returns an empty Window.
func New() *Window {
	return &Window{}
}

// Push appends row, evicting the oldest once the window is full.
func (w *Window) Push(row Row) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.push(row)
}

func (w *Window) push(row Row) {
	if w.n < len(w.rows) {
		w.rows[(w.start+w.n)%len(w.rows)] = row
		w.n++
		return
	}
	w.rows[w.start] = row
	w.start = (w.start + 1) % len(w.rows)
}

// Replace discards the current contents and pushes rows in order.
func (w *Window) Replace(rows []Row) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.start, w.n = 0, 0
	for _, r := range rows {
		w.push(r)
	}
}

// Reset empties the window.
func (w *Window) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.start, w.n = 0, 0
}

// Len returns the number of rows held.
func (w *Window) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.n
}

// Cap returns shape.HistoryDays.
func (w *Window) Cap() int {
	return len(w.rows)
}

// Ready reports whether the window holds a full history.
func (w *Window) Ready() bool {
	return w.Len() == w.Cap()
}

// Rows returns a copy of the held rows, oldest first.
func (w *Window) Rows() []Row {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.snapshot()
}

func (w *Window) snapshot() []Row {
	out := make([]Row, w.n)
	for i := range out {
		out[i] = w.rows[(w.start+i)%len(w.rows)]
	}
	return out
}

// Sequence builds one flattened model input: the full history oldest to
// newest followed by exactly shape.FutureDays current rows, row-major.
func (w *Window) Sequence(current []Row) ([]float32, error) {
	if len(current) != shape.FutureDays {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrCurrentRows, len(current), shape.FutureDays)
	}

	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.n < len(w.rows) {
		return nil, fmt.Errorf("%w: %d of %d days", ErrNotReady, w.n, len(w.rows))
	}

	out := make([]float32, 0, shape.TotalDays*shape.NumFeatures)
	for _, r := range w.snapshot() {
		out = append(out, r[:]...)
	}
	for _, r := range current {
		out = append(out, r[:]...)
	}
	return out, nil
}

// Status is a point-in-time summary of the window.
type Status struct {
	Days     int  `json:"days"`
	Capacity int  `json:"capacity"`
	Ready    bool `json:"ready"`
}

// Status returns the current fill level.
func (w *Window) Status() Status {
	n := w.Len()
	return Status{Days: n, Capacity: w.Cap(), Ready: n == w.Cap()}
}
