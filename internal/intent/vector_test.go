package intent

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ghostlabs/ghost-core/internal/model"
)

func TestVectorIsDeterministic(t *testing.T) {
	f := Features{ActionIndex: 2, TagHash: 0.3, DOMPathDepth: 4, RelX: 0.5, RelY: 0.25, MethodIndex: 1, NormalizedStatus: 0.3}
	a := Vector(model.IntentDataEntry, f)
	b := Vector(model.IntentDataEntry, f)
	require.Equal(t, a, b)
	require.Len(t, a, vectorDim)
}

func TestVectorDiffersByClass(t *testing.T) {
	f := Features{}
	a := Vector(model.IntentDataEntry, f)
	b := Vector(model.IntentNavigation, f)
	require.NotEqual(t, a, b)
}

func TestVectorIsL2Normalized(t *testing.T) {
	f := Features{ActionIndex: 3, RelX: 0.7}
	v := Vector(model.IntentResearch, f)
	var sumSq float64
	for _, x := range v {
		sumSq += x * x
	}
	require.InDelta(t, 1.0, math.Sqrt(sumSq), 0.01)
}

func TestVectorUnknownClassFallsBackToUnknownSeed(t *testing.T) {
	a := Vector(model.IntentClass("not-a-real-class"), Features{})
	b := Vector(model.IntentUnknown, Features{})
	require.Equal(t, a, b)
}
