package vecmath

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, Cosine([]float32{1, 2, 3}, []float32{2, 4, 6}), 1e-9)
	assert.InDelta(t, 0.0, Cosine([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, Cosine([]float32{1, 0}, []float32{-1, 0}), 1e-9)
}

func TestCosine_Degenerate(t *testing.T) {
	assert.Zero(t, Cosine(nil, nil))
	assert.Zero(t, Cosine([]float32{1}, []float32{1, 2}))
	assert.Zero(t, Cosine([]float32{0, 0}, []float32{1, 1}))
}

func TestFloat32Bytes_RoundTrip(t *testing.T) {
	in := []float32{0, 1.5, -2.25, 3.4028235e38}
	buf := Float32sToBytes(in)
	assert.Len(t, buf, 16)
	assert.Equal(t, in, BytesToFloat32s(buf))

	assert.Nil(t, Float32sToBytes(nil))
	assert.Nil(t, BytesToFloat32s(nil))
}

func TestTopK(t *testing.T) {
	query := []float32{1, 0}
	candidates := [][]float32{
		{0, 1},     // 0
		{1, 0},     // 1
		{1, 1},     // ~0.707
		{-1, 0},    // -1
		{2, 0},     // 1, ties with index 1
	}

	got := TopK(query, candidates, 3)

	assert.Len(t, got, 3)
	assert.Equal(t, 1, got[0].Index)
	assert.Equal(t, 4, got[1].Index)
	assert.Equal(t, 2, got[2].Index)
}
