package intent

import (
	"math"

	"github.com/ghostlabs/ghost-core/internal/model"
)

const vectorDim = 128
const featureWeight = 0.3

// classSeeds are the per-class LCG seeds; they pin vector determinism.
var classSeeds = map[model.IntentClass]uint32{
	model.IntentDataEntry:          0x1a2b3c4d,
	model.IntentNavigation:         0x2b3c4d5e,
	model.IntentCommunication:      0x3c4d5e6f,
	model.IntentResearch:           0x4d5e6f70,
	model.IntentApproval:           0x5e6f7081,
	model.IntentFileOperation:      0x6f708192,
	model.IntentAuthentication:     0x708192a3,
	model.IntentConfiguration:      0x8192a3b4,
	model.IntentDataExtraction:     0x92a3b4c5,
	model.IntentWorkflowTransition: 0xa3b4c5d6,
	model.IntentErrorHandling:      0xb4c5d6e7,
	model.IntentUnknown:            0xc5d6e7f8,
}

// lcgNext advances a glibc-style linear congruential generator.
func lcgNext(state uint32) uint32 {
	return state*1103515245 + 12345
}

// Vector builds the deterministic 128-d intent vector for label using the
// per-class seed plus a feature mix at weight 0.3. Two calls with
// the same label and byte-identical features yield a byte-identical vector.
func Vector(label model.IntentClass, f Features) []float64 {
	seed, ok := classSeeds[label]
	if !ok {
		seed = classSeeds[model.IntentUnknown]
	}

	featureSlice := []float64{
		f.ActionIndex, f.TagHash, f.DOMPathDepth, f.RelX, f.RelY, f.MethodIndex, f.NormalizedStatus,
	}

	out := make([]float64, vectorDim)
	state := seed
	for i := 0; i < vectorDim; i++ {
		state = lcgNext(state)
		base := (float64(state>>8) / float64(1<<24)) - 0.5 // in [-0.5, 0.5)

		feat := featureSlice[i%len(featureSlice)]
		out[i] = (1-featureWeight)*base + featureWeight*feat
	}

	return quantizeVector(l2Normalize(out))
}

func l2Normalize(v []float64) []float64 {
	var sumSq float64
	for _, x := range v {
		sumSq += x * x
	}
	norm := math.Sqrt(sumSq)
	if norm == 0 {
		return v
	}
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}

func quantizeVector(v []float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = math.Round(x*10000) / 10000
	}
	return out
}
