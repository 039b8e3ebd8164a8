package window

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/i474232898/weather-predictor/internal/shape"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func rowN(n int) Row {
	var r Row
	for i := range r {
		r[i] = float32(n) + float32(i)/10
	}
	return r
}

func fill(w *Window, from, count int) {
	for i := 0; i < count; i++ {
		w.Push(rowN(from + i))
	}
}

func TestCapacityFollowsShape(t *testing.T) {
	w := New()
	assert.Equal(t, shape.HistoryDays, w.Cap())
	assert.False(t, w.Ready())
	assert.Equal(t, Status{Days: 0, Capacity: shape.HistoryDays}, w.Status())
}

func TestPushEvictsOldest(t *testing.T) {
	w := New()
	fill(w, 0, shape.HistoryDays+5)

	require.True(t, w.Ready())
	rows := w.Rows()
	require.Len(t, rows, shape.HistoryDays)
	assert.Equal(t, rowN(5), rows[0])
	assert.Equal(t, rowN(shape.HistoryDays+4), rows[len(rows)-1])
}

func TestSequence(t *testing.T) {
	w := New()
	fill(w, 0, shape.HistoryDays)

	current := make([]Row, shape.FutureDays)
	for i := range current {
		current[i] = rowN(1000 + i)
	}

	seq, err := w.Sequence(current)
	require.NoError(t, err)
	require.Len(t, seq, shape.TotalDays*shape.NumFeatures)

	// First row is the oldest history day, last row the current day.
	first := rowN(0)
	assert.Equal(t, first[:], seq[:shape.NumFeatures])
	last := seq[len(seq)-shape.NumFeatures:]
	assert.Equal(t, current[len(current)-1][:], last)

	// Day 10, feature 2.
	assert.InDelta(t, 10.2, seq[10*shape.NumFeatures+2], 1e-6)
}

func TestSequenceErrors(t *testing.T) {
	w := New()
	fill(w, 0, shape.HistoryDays-1)

	_, err := w.Sequence(make([]Row, shape.FutureDays))
	assert.ErrorIs(t, err, ErrNotReady)

	w.Push(rowN(99))
	_, err = w.Sequence(nil)
	assert.ErrorIs(t, err, ErrCurrentRows)
	_, err = w.Sequence(make([]Row, shape.FutureDays+1))
	assert.ErrorIs(t, err, ErrCurrentRows)
}

func TestReplaceAndReset(t *testing.T) {
	w := New()
	fill(w, 0, 10)

	w.Replace([]Row{rowN(7), rowN(8)})
	assert.Equal(t, []Row{rowN(7), rowN(8)}, w.Rows())

	w.Reset()
	assert.Equal(t, 0, w.Len())
	assert.Empty(t, w.Rows())
}

func TestRowOf(t *testing.T) {
	r := RowOf(shape.Features{0.25, 0.5, 0.75, 1})
	assert.Equal(t, Row{0.25, 0.5, 0.75, 1}, r)
}

func TestConcurrentAccess(t *testing.T) {
	w := New()
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				w.Push(rowN(g*100 + i))
				_ = w.Rows()
				_ = w.Status()
			}
		}(g)
	}
	wg.Wait()
	assert.True(t, w.Ready())
}
