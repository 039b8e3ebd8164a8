// Package tflite reads the tensor signature of a TensorFlow Lite flatbuffer
// without executing it. It is used to check that a model blob accepts the
// input geometry this binary was compiled for.
package tflite

import (
	"errors"
	"fmt"

	flatbuffers "github.com/google/flatbuffers/go"
)

var (
	// ErrNotTFLite is returned when the buffer does not carry the TFL3 identifier.
	ErrNotTFLite = errors.New("not a tflite flatbuffer")
	// ErrMalformed is returned when offsets in the buffer point outside of it.
	ErrMalformed = errors.New("malformed tflite flatbuffer")
)

// minSize covers the root offset plus the file identifier.
const minSize = flatbuffers.SizeUOffsetT + 4

// TensorInfo describes one graph input or output.
type TensorInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Dims []int  `json:"dims"`
}

// Info is the signature of subgraph 0.
type Info struct {
	Version     uint32       `json:"version"`
	Description string       `json:"description,omitempty"`
	Subgraphs   int          `json:"subgraphs"`
	Buffers     int          `json:"buffers"`
	Inputs      []TensorInfo `json:"inputs"`
	Outputs     []TensorInfo `json:"outputs"`
}

// Inspect decodes the main subgraph's input and output tensors.
func Inspect(buf []byte) (info Info, err error) {
	if len(buf) < minSize || !ModelBufferHasIdentifier(buf) {
		return Info{}, ErrNotTFLite
	}

	// The flatbuffers runtime trusts its input and panics on out-of-range
	// offsets.
	defer func() {
		if r := recover(); r != nil {
			info = Info{}
			err = fmt.Errorf("%w: %v", ErrMalformed, r)
		}
	}()

	m := GetRootAsModel(buf, 0)
	info.Version = m.Version()
	info.Description = string(m.Description())
	info.Subgraphs = m.SubgraphsLength()
	info.Buffers = m.BuffersLength()

	if info.Subgraphs == 0 {
		return Info{}, fmt.Errorf("%w: model has no subgraphs", ErrMalformed)
	}

	var sg SubGraph
	m.Subgraphs(&sg, 0)
	numTensors := sg.TensorsLength()

	tensorAt := func(idx int32) (TensorInfo, error) {
		if idx < 0 || int(idx) >= numTensors {
			return TensorInfo{}, fmt.Errorf("%w: tensor index %d out of range (%d tensors)", ErrMalformed, idx, numTensors)
		}
		var t Tensor
		sg.Tensors(&t, int(idx))
		dims := make([]int, t.ShapeLength())
		for i := range dims {
			dims[i] = int(t.Shape(i))
		}
		return TensorInfo{Name: string(t.Name()), Type: t.Type().String(), Dims: dims}, nil
	}

	for i := 0; i < sg.InputsLength(); i++ {
		ti, err := tensorAt(sg.Inputs(i))
		if err != nil {
			return Info{}, err
		}
		info.Inputs = append(info.Inputs, ti)
	}
	for i := 0; i < sg.OutputsLength(); i++ {
		ti, err := tensorAt(sg.Outputs(i))
		if err != nil {
			return Info{}, err
		}
		info.Outputs = append(info.Outputs, ti)
	}

	if len(info.Inputs) == 0 {
		return Info{}, fmt.Errorf("%w: subgraph has no inputs", ErrMalformed)
	}
	return info, nil
}
