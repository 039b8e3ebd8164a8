package tflite

import (
	flatbuffers "github.com/google/flatbuffers/go"
)

// BuildSpec describes a single-subgraph model with one input and one output
// tensor and no operators. It produces signature-only models for tests and
// fixtures. A nil OutputDims leaves the subgraph without outputs.
type BuildSpec struct {
	Description string
	InputName   string
	InputDims   []int
	OutputName  string
	OutputDims  []int
}

// Build serializes spec into a TFLite flatbuffer.
func Build(spec BuildSpec) []byte {
	b := flatbuffers.NewBuilder(256)

	withOutput := spec.OutputDims != nil

	inName := b.CreateString(spec.InputName)
	inTensor := buildTensor(b, inName, spec.InputDims)
	var outTensor flatbuffers.UOffsetT
	if withOutput {
		outName := b.CreateString(spec.OutputName)
		outTensor = buildTensor(b, outName, spec.OutputDims)
	}

	numTensors := 1
	if withOutput {
		numTensors = 2
	}
	SubGraphStartTensorsVector(b, numTensors)
	if withOutput {
		b.PrependUOffsetT(outTensor)
	}
	b.PrependUOffsetT(inTensor)
	tensors := b.EndVector(numTensors)

	SubGraphStartInputsVector(b, 1)
	b.PrependInt32(0)
	inputs := b.EndVector(1)

	numOutputs := 0
	if withOutput {
		numOutputs = 1
	}
	SubGraphStartOutputsVector(b, numOutputs)
	if withOutput {
		b.PrependInt32(1)
	}
	outputs := b.EndVector(numOutputs)

	sgName := b.CreateString("main")
	SubGraphStart(b)
	SubGraphAddTensors(b, tensors)
	SubGraphAddInputs(b, inputs)
	SubGraphAddOutputs(b, outputs)
	SubGraphAddName(b, sgName)
	sg := SubGraphEnd(b)

	ModelStartSubgraphsVector(b, 1)
	b.PrependUOffsetT(sg)
	subgraphs := b.EndVector(1)

	// Buffer 0 is the empty sentinel every TFLite model carries.
	BufferStart(b)
	empty := BufferEnd(b)
	ModelStartBuffersVector(b, 1)
	b.PrependUOffsetT(empty)
	buffers := b.EndVector(1)

	desc := b.CreateString(spec.Description)

	ModelStart(b)
	ModelAddVersion(b, 3)
	ModelAddSubgraphs(b, subgraphs)
	ModelAddDescription(b, desc)
	ModelAddBuffers(b, buffers)
	root := ModelEnd(b)
	FinishModelBuffer(b, root)

	return b.FinishedBytes()
}

func buildTensor(b *flatbuffers.Builder, name flatbuffers.UOffsetT, dims []int) flatbuffers.UOffsetT {
	TensorStartShapeVector(b, len(dims))
	for i := len(dims) - 1; i >= 0; i-- {
		b.PrependInt32(int32(dims[i]))
	}
	shapeVec := b.EndVector(len(dims))

	TensorStart(b)
	TensorAddShape(b, shapeVec)
	TensorAddType(b, TensorTypeFLOAT32)
	TensorAddBuffer(b, 0)
	TensorAddName(b, name)
	return TensorEnd(b)
}
