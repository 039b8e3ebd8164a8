// Package shape holds the input tensor geometry the deployed model was
// exported with. Buffer sizing, scaling and model validation all read these
// constants; they must match the model compiled into the binary.
package shape

import "fmt"

const (
	// HistoryDays is the number of past days the model looks at for a single
	// prediction. Must match the training-time window size.
	HistoryDays = 59

	// FutureDays is the number of days predicted per inference call
	// (usually 1, for "today").
	FutureDays = 1

	// TotalDays is the number of days in one input sequence.
	TotalDays = HistoryDays + FutureDays

	// NumFeatures is the number of measured variables per day.
	NumFeatures = 4
)

// FeatureNames lists the per-day features in tensor column order.
var FeatureNames = [...]string{"meantemp", "humidity", "wind_speed", "meanpressure"}

// Compile-time checks: every dimension is positive and the feature table
// has exactly NumFeatures entries. uint conversion of a negative constant
// does not compile.
const (
	_ = uint(HistoryDays - 1)
	_ = uint(FutureDays - 1)
	_ = uint(NumFeatures - 1)
	_ = uint(TotalDays - HistoryDays - FutureDays)
	_ = uint(HistoryDays + FutureDays - TotalDays)
	_ = uint(len(FeatureNames) - NumFeatures)
	_ = uint(NumFeatures - len(FeatureNames))
)

// Shape is a runtime view of a tensor geometry, used to compare the compiled
// constants against what a model artifact declares.
type Shape struct {
	History  int `json:"history_days"`
	Future   int `json:"future_days"`
	Features int `json:"num_features"`
}

// Default is the shape compiled into this binary.
var Default = Shape{History: HistoryDays, Future: FutureDays, Features: NumFeatures}

// Total returns History + Future. It is always derived, never stored.
func (s Shape) Total() int {
	return s.History + s.Future
}

// Validate reports an error if any dimension is not strictly positive.
func (s Shape) Validate() error {
	if s.History <= 0 {
		return fmt.Errorf("history days must be positive, got %d", s.History)
	}
	if s.Future <= 0 {
		return fmt.Errorf("future days must be positive, got %d", s.Future)
	}
	if s.Features <= 0 {
		return fmt.Errorf("feature count must be positive, got %d", s.Features)
	}
	return nil
}

// Equal reports whether both shapes describe the same geometry.
func (s Shape) Equal(other Shape) bool {
	return s.History == other.History && s.Future == other.Future && s.Features == other.Features
}

func (s Shape) String() string {
	return fmt.Sprintf("history=%d future=%d total=%d features=%d", s.History, s.Future, s.Total(), s.Features)
}

// InputDims returns the dims of the model input tensor: [batch, days, features].
func (s Shape) InputDims() []int {
	return []int{1, s.Total(), s.Features}
}

// OutputDims returns the dims of the model output tensor: [batch, future days].
func (s Shape) OutputDims() []int {
	return []int{1, s.Future}
}

// InputLen is the number of scalars in one flattened input sequence.
func (s Shape) InputLen() int {
	return s.Total() * s.Features
}

// Features is one day of measurements in FeatureNames order.
type Features [NumFeatures]float64
